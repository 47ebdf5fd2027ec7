// Package community pulls part-related discussion threads from
// automotive subreddits through Reddit's public JSON API.
package community

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"encoding/json/v2"

	"github.com/partlogicapp/partlogic-server/internal/cache"
	"github.com/partlogicapp/partlogic-server/internal/config"
	"github.com/partlogicapp/partlogic-server/internal/domain"
)

// makeSubreddits maps vehicle makes to their enthusiast subreddits.
var makeSubreddits = map[string][]string{
	"bmw":           {"BMW", "BmwTech"},
	"porsche":       {"Porsche"},
	"audi":          {"Audi"},
	"volkswagen":    {"Volkswagen", "tdi"},
	"vw":            {"Volkswagen", "tdi"},
	"volvo":         {"Volvo"},
	"mercedes":      {"mercedes_benz", "MercedesBenz"},
	"mercedes-benz": {"mercedes_benz", "MercedesBenz"},
	"toyota":        {"Toyota", "ToyotaTacoma", "4Runner"},
	"honda":         {"Honda", "CivicSi"},
	"subaru":        {"subaru", "WRX"},
	"ford":          {"Ford", "FordTrucks"},
	"chevrolet":     {"Chevrolet", "Corvette"},
	"mazda":         {"mazda", "Miata"},
	"nissan":        {"Nissan", "350z"},
	"lexus":         {"Lexus"},
	"hyundai":       {"Hyundai"},
	"kia":           {"kia"},
	"jeep":          {"Jeep"},
	"dodge":         {"Dodge"},
	"mini":          {"MINI"},
}

// generalSubreddits are searched on every query.
var generalSubreddits = []string{"MechanicAdvice", "AutoDIY", "cars"}

const (
	maxThreads = 10
	// minScore filters out low-engagement posts.
	minScore = 5
)

// Client fetches community discussions. Every failure is soft: a fetch
// problem yields an empty slice, never an error to the search pipeline.
type Client struct {
	cfg     config.CommunityConfig
	baseURL string
	http    *http.Client
	cache   cache.Cache
	logger  *slog.Logger
}

// New builds a community client. A nil cache disables caching.
func New(cfg config.CommunityConfig, c cache.Cache, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "PartLogic/1.0"
	}
	if c == nil {
		c = cache.Noop{}
	}
	return &Client{
		cfg:     cfg,
		baseURL: "https://www.reddit.com",
		http:    &http.Client{Timeout: cfg.Timeout},
		cache:   c,
		logger:  logger,
	}
}

// NewWithBaseURL is New pointed at a different endpoint, for tests.
func NewWithBaseURL(cfg config.CommunityConfig, baseURL string, c cache.Cache, logger *slog.Logger) *Client {
	client := New(cfg, c, logger)
	client.baseURL = strings.TrimSuffix(baseURL, "/")
	return client
}

// Fetch returns up to ten threads for a query, highest score first,
// deduplicated by URL. The vehicle hint picks make subreddits; the part
// description plus hint form the search terms when present.
func (c *Client) Fetch(ctx context.Context, query, vehicleHint, partDescription string) []domain.CommunitySource {
	if !c.cfg.Enabled {
		return nil
	}

	cacheKey := "community:" + strings.ToLower(strings.TrimSpace(query))
	if cached := c.readCache(ctx, cacheKey); cached != nil {
		return cached
	}

	subs := append([]string(nil), generalSubreddits...)
	if vehicleHint != "" {
		hint := strings.ToLower(vehicleHint)
		for make, makeSubs := range makeSubreddits {
			if strings.Contains(hint, make) {
				subs = append(subs, makeSubs...)
				break
			}
		}
	}

	var terms []string
	if partDescription != "" {
		terms = append(terms, partDescription)
	}
	if vehicleHint != "" {
		terms = append(terms, vehicleHint)
	}
	if len(terms) == 0 {
		terms = append(terms, query)
	}
	searchQuery := strings.Join(terms, " ")

	// Dedupe subreddits, then fan out.
	seen := make(map[string]struct{}, len(subs))
	unique := subs[:0]
	for _, sub := range subs {
		if _, dup := seen[sub]; dup {
			continue
		}
		seen[sub] = struct{}{}
		unique = append(unique, sub)
	}

	perSub := make([][]domain.CommunitySource, len(unique))
	var wg sync.WaitGroup
	for i, sub := range unique {
		wg.Go(func() {
			perSub[i] = c.searchSubreddit(ctx, sub, searchQuery)
		})
	}
	wg.Wait()

	var threads []domain.CommunitySource
	for _, batch := range perSub {
		threads = append(threads, batch...)
	}

	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].Score > threads[j].Score
	})
	seenURLs := make(map[string]struct{}, len(threads))
	final := threads[:0]
	for _, thread := range threads {
		if _, dup := seenURLs[thread.URL]; dup {
			continue
		}
		seenURLs[thread.URL] = struct{}{}
		final = append(final, thread)
		if len(final) == maxThreads {
			break
		}
	}

	c.writeCache(ctx, cacheKey, final)
	return final
}

// redditListing is the subset of Reddit's search response we read.
type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title             string `json:"title"`
				Permalink         string `json:"permalink"`
				Score             int    `json:"score"`
				RemovedByCategory string `json:"removed_by_category"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (c *Client) searchSubreddit(ctx context.Context, subreddit, query string) []domain.CommunitySource {
	endpoint := fmt.Sprintf("%s/r/%s/search.json", c.baseURL, subreddit)
	params := url.Values{
		"q":           {query},
		"sort":        {"relevance"},
		"limit":       {"5"},
		"restrict_sr": {"on"},
		"t":           {"all"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("subreddit search failed", "subreddit", subreddit, "error", err)
		}
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		if c.logger != nil {
			c.logger.Warn("rate limited by reddit", "subreddit", subreddit)
		}
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil
	}
	var listing redditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		if c.logger != nil {
			c.logger.Warn("unreadable reddit response", "subreddit", subreddit, "error", err)
		}
		return nil
	}

	var threads []domain.CommunitySource
	for _, child := range listing.Data.Children {
		post := child.Data
		if post.Score < minScore || post.RemovedByCategory != "" {
			continue
		}
		if post.Title == "" || post.Permalink == "" {
			continue
		}
		threads = append(threads, domain.CommunitySource{
			Title:  post.Title,
			URL:    "https://www.reddit.com" + post.Permalink,
			Source: subreddit,
			Score:  post.Score,
		})
	}
	return threads
}

func (c *Client) readCache(ctx context.Context, key string) []domain.CommunitySource {
	data, err := c.cache.Get(ctx, key)
	if err != nil || data == nil {
		return nil
	}
	var threads []domain.CommunitySource
	if err := json.Unmarshal(data, &threads); err != nil {
		return nil
	}
	return threads
}

func (c *Client) writeCache(ctx context.Context, key string, threads []domain.CommunitySource) {
	data, err := json.Marshal(threads)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, c.cfg.TTL); err != nil && c.logger != nil {
		c.logger.Warn("cache community threads", "key", key, "error", err)
	}
}
