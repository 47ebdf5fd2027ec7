package connector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"encoding/json/v2"

	"github.com/partlogicapp/partlogic-server/internal/config"
	"github.com/partlogicapp/partlogic-server/internal/domain"
	"github.com/partlogicapp/partlogic-server/internal/fetch"
	"github.com/partlogicapp/partlogic-server/internal/query"
)

const (
	ebayProductionBase = "https://api.ebay.com"
	ebaySandboxBase    = "https://api.sandbox.ebay.com"
	ebayOAuthScope     = "https://api.ebay.com/oauth/api_scope"
)

// EBayConnector searches the eBay Browse API. Auth is the OAuth
// client-credentials flow; the application token is cached until shortly
// before expiry.
type EBayConnector struct {
	base
	cfg    config.EBayConfig
	client *http.Client
	// apiBase overrides the marketplace endpoint in tests.
	apiBase string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewEBay(cfg config.EBayConfig, timeout time.Duration) *EBayConnector {
	apiBase := ebayProductionBase
	if cfg.Sandbox {
		apiBase = ebaySandboxBase
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &EBayConnector{
		base:    base{name: "ebay"},
		cfg:     cfg,
		client:  &http.Client{Timeout: timeout},
		apiBase: apiBase,
	}
}

// browseSearchResponse is the subset of the Browse API response we read.
type browseSearchResponse struct {
	ItemSummaries []struct {
		Title string `json:"title"`
		Price struct {
			Value    string `json:"value"`
			Currency string `json:"currency"`
		} `json:"price"`
		Condition  string `json:"condition"`
		ItemWebURL string `json:"itemWebUrl"`
		Seller     struct {
			Username string `json:"username"`
		} `json:"seller"`
		Image struct {
			ImageURL string `json:"imageUrl"`
		} `json:"image"`
		ShippingOptions []struct {
			ShippingCost struct {
				Value string `json:"value"`
			} `json:"shippingCost"`
		} `json:"shippingOptions"`
		BuyingOptions []string `json:"buyingOptions"`
	} `json:"itemSummaries"`
}

// Search implements Connector.
func (c *EBayConnector) Search(ctx context.Context, q string, opts Options) (*Result, error) {
	if c.cfg.AppID == "" {
		return &Result{Err: "eBay App ID not configured"}, nil
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return &Result{Err: err.Error()}, nil
	}

	limit := opts.MaxResults
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	searchURL := fmt.Sprintf("%s/buy/browse/v1/item_summary/search?q=%s&limit=%d",
		c.apiBase, url.QueryEscape(q), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-EBAY-C-MARKETPLACE-ID", "EBAY_US")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return &Result{Err: fmt.Sprintf("eBay API error: %d", resp.StatusCode)}, nil
	}

	var decoded browseSearchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode eBay response: %w", err)
	}

	result := &Result{}
	for _, item := range decoded.ItemSummaries {
		if item.Title == "" {
			continue
		}
		listing := domain.MarketListing{
			Source:      "ebay",
			Title:       item.Title,
			Price:       fetch.ParsePrice(item.Price.Value),
			Currency:    orDefault(item.Price.Currency, "USD"),
			Condition:   fetch.NormalizeCondition(item.Condition),
			URL:         fetch.CleanURL(item.ItemWebURL, ""),
			PartNumbers: query.ExtractPartNumbers(item.Title),
			Vendor:      item.Seller.Username,
			ImageURL:    item.Image.ImageURL,
		}
		if len(item.ShippingOptions) > 0 {
			if cost, err := strconv.ParseFloat(item.ShippingOptions[0].ShippingCost.Value, 64); err == nil {
				listing.ShippingCost = &cost
			}
		}
		if len(item.BuyingOptions) > 0 {
			listing.ListingType = strings.ToLower(item.BuyingOptions[0])
		}
		result.MarketListings = append(result.MarketListings, listing)
	}
	return result, nil
}

// accessToken returns a valid application token, minting one via the
// client-credentials grant when the cached token is missing or stale.
func (c *EBayConnector) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{
		"grant_type": {"client_credentials"},
		"scope":      {ebayOAuthScope},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiBase+"/identity/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.AppID, c.cfg.CertID)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("eBay token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("eBay API error: %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("decode eBay token: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("eBay token response had no access_token")
	}

	c.token = tokenResp.AccessToken
	// Refresh a minute early so in-flight searches never carry an expired token.
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - time.Minute)
	return c.token, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
