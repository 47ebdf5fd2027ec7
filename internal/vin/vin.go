// Package vin decodes 17-character VINs through the NHTSA vPIC API.
// The API is free and unauthenticated; decoded VINs never change, so
// results are cached for 30 days.
package vin

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"encoding/json/v2"

	"github.com/partlogicapp/partlogic-server/internal/cache"
	"github.com/partlogicapp/partlogic-server/internal/errors"
)

const (
	defaultBaseURL = "https://vpic.nhtsa.dot.gov"
	cacheTTL       = 30 * 24 * time.Hour
	requestTimeout = 10 * time.Second
)

// VINs never contain I, O or Q.
var vinPattern = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)

// Result is a decoded VIN. Error carries soft decode failures so the
// route can return them with the VIN echoed back.
type Result struct {
	VIN                 string  `json:"vin"`
	Year                int     `json:"year,omitempty"`
	Make                string  `json:"make,omitempty"`
	Model               string  `json:"model,omitempty"`
	Trim                string  `json:"trim,omitempty"`
	EngineDisplacementL float64 `json:"engine_displacement_l,omitempty"`
	EngineCode          string  `json:"engine_code,omitempty"`
	DriveType           string  `json:"drive_type,omitempty"`
	BodyClass           string  `json:"body_class,omitempty"`
	Error               string  `json:"error,omitempty"`
}

// Decoder is the vPIC client.
type Decoder struct {
	baseURL string
	client  *http.Client
	cache   cache.Cache
	logger  *slog.Logger
}

// New builds a Decoder. A nil cache disables caching.
func New(c cache.Cache, logger *slog.Logger) *Decoder {
	if c == nil {
		c = cache.Noop{}
	}
	return &Decoder{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: requestTimeout},
		cache:   c,
		logger:  logger,
	}
}

// NewWithBaseURL is New pointed at a different vPIC endpoint.
func NewWithBaseURL(baseURL string, c cache.Cache, logger *slog.Logger) *Decoder {
	d := New(c, logger)
	d.baseURL = strings.TrimSuffix(baseURL, "/")
	return d
}

// Validate checks the VIN's shape. Returns "" when valid.
func Validate(vin string) string {
	if len(vin) != 17 {
		return "VIN must be exactly 17 characters"
	}
	if !vinPattern.MatchString(strings.ToUpper(vin)) {
		return "VIN contains invalid characters (I, O, Q not allowed)"
	}
	return ""
}

// vpicEnvelope is the DecodeVinValues response shape.
type vpicEnvelope struct {
	Results []map[string]string `json:"Results"`
}

// Decode resolves a VIN to vehicle details. Validation failures come
// back as a Result with Error set, not as an error return; errors are
// reserved for transport and decode problems.
func (d *Decoder) Decode(ctx context.Context, vin string) (*Result, error) {
	vin = strings.ToUpper(strings.TrimSpace(vin))
	if msg := Validate(vin); msg != "" {
		return &Result{VIN: vin, Error: msg}, nil
	}

	cacheKey := "vin:" + vin
	if cached := d.readCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	url := fmt.Sprintf("%s/api/vehicles/DecodeVinValues/%s?format=json", d.baseURL, vin)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "build vPIC request")
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeProviderFailure, "decode VIN %s", vin)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(
			fmt.Errorf("status %d", resp.StatusCode),
			errors.CodeProviderFailure, "vPIC decode for %s", vin)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeProviderFailure, "read vPIC response")
	}
	var envelope vpicEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.Wrap(err, errors.CodeProviderFailure, "parse vPIC response")
	}
	if len(envelope.Results) == 0 {
		return &Result{VIN: vin, Error: "no results from NHTSA"}, nil
	}

	fields := envelope.Results[0]
	result := &Result{
		VIN:        vin,
		Make:       cleanField(fields["Make"]),
		Model:      cleanField(fields["Model"]),
		Trim:       cleanField(fields["Trim"]),
		EngineCode: cleanField(fields["EngineModel"]),
		DriveType:  cleanField(fields["DriveType"]),
		BodyClass:  cleanField(fields["BodyClass"]),
	}
	if year := cleanField(fields["ModelYear"]); year != "" {
		if n, err := strconv.Atoi(year); err == nil {
			result.Year = n
		}
	}
	if displacement := cleanField(fields["DisplacementL"]); displacement != "" {
		if f, err := strconv.ParseFloat(displacement, 64); err == nil {
			result.EngineDisplacementL = f
		}
	}

	// Non-zero error codes are warnings; partial data still comes back.
	if code := fields["ErrorCode"]; code != "" && code != "0" && !containsCode(code, "0") {
		if d.logger != nil {
			d.logger.Warn("vPIC decode warning", "vin", vin, "error_text", fields["ErrorText"])
		}
	}

	d.writeCache(ctx, cacheKey, result)
	return result, nil
}

// cleanField trims a vPIC value; "Not Applicable" means absent.
func cleanField(value string) string {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "not applicable") {
		return ""
	}
	return value
}

func containsCode(codes, want string) bool {
	for _, code := range strings.Split(codes, ",") {
		if strings.TrimSpace(code) == want {
			return true
		}
	}
	return false
}

func (d *Decoder) readCache(ctx context.Context, key string) *Result {
	data, err := d.cache.Get(ctx, key)
	if err != nil || data == nil {
		return nil
	}
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return &result
}

func (d *Decoder) writeCache(ctx context.Context, key string, result *Result) {
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := d.cache.Set(ctx, key, data, cacheTTL); err != nil && d.logger != nil {
		d.logger.Warn("cache VIN result", "key", key, "error", err)
	}
}
