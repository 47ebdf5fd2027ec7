// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App         AppConfig
	Logger      LoggerConfig
	Data        DataConfig
	Server      ServerConfig
	Cache       CacheConfig
	Search      SearchConfig
	Interchange InterchangeConfig
	Community   CommunityConfig
	Advisor     AdvisorConfig
	EBay        EBayConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds local data storage configuration.
// The base path contains the cache store, the SQLite database,
// the catalog index, and the source registry file.
type DataConfig struct {
	BasePath string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 60s, searches can run long)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// CacheConfig holds result cache configuration.
type CacheConfig struct {
	// Backend selects the cache implementation: "badger" (embedded, default)
	// or "redis" (external).
	Backend string
	// TTL is how long connector results stay fresh (default: 6h).
	TTL time.Duration
	// Redis connection settings, used when Backend is "redis".
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// SearchConfig holds connector and orchestration configuration.
type SearchConfig struct {
	// ConnectorTimeout is the per-connector deadline (default: 15s).
	ConnectorTimeout time.Duration
	// RequestTimeout bounds individual outbound HTTP requests (default: 30s).
	RequestTimeout time.Duration
	// MaxResultsPerSource caps listings per connector (default: 20).
	MaxResultsPerSource int
	// RateLimitDelay is the minimum spacing between requests to one host (default: 1s).
	RateLimitDelay time.Duration
	// ScrapeEnabled is the global kill switch; when false scraper connectors
	// degrade to search-link generation.
	ScrapeEnabled bool
	// BrowserEnabled allows the headless-browser fetcher for JS-heavy sources.
	BrowserEnabled bool
	// DefaultZip is used by used-part aggregators that require a location.
	DefaultZip string
}

// InterchangeConfig holds cross-reference expansion configuration.
type InterchangeConfig struct {
	Enabled bool
	// MaxProviders bounds the cross-reference fan-out (default: 3).
	MaxProviders int
}

// CommunityConfig holds community-discussion fetch configuration.
type CommunityConfig struct {
	Enabled bool
	// TTL for cached community results (default: 168h).
	TTL time.Duration
	// Timeout per subreddit fetch (default: 8s).
	Timeout time.Duration
	// UserAgent sent to the public JSON endpoints.
	UserAgent string
}

// AdvisorConfig holds AI recommendation synthesis configuration.
type AdvisorConfig struct {
	Enabled bool
	// BaseURL of an OpenAI-compatible chat completion endpoint.
	BaseURL string
	APIKey  string
	Model   string
	// Timeout for a synthesis call (default: 25s).
	Timeout time.Duration
}

// EBayConfig holds eBay Browse API configuration.
type EBayConfig struct {
	AppID  string
	CertID string
	// Sandbox selects the sandbox marketplace endpoints (default: true).
	Sandbox bool
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	// Define command-line flags.
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for local data storage")

	// Server flags
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 60s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	// Cache flags
	cacheBackend := flag.String("cache-backend", "", "Cache backend (badger, redis)")
	cacheTTL := flag.String("cache-ttl", "", "Connector result cache TTL (default: 6h)")

	// Search flags
	connectorTimeout := flag.String("connector-timeout", "", "Per-connector timeout (default: 15s)")
	maxResults := flag.String("max-results", "", "Max listings per source (default: 20)")
	scrapeEnabled := flag.String("scrape-enabled", "", "Enable scraper connectors (default: true)")
	browserEnabled := flag.String("browser-enabled", "", "Enable headless-browser fetcher (default: false)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	// Build config with proper precedence.
	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Cache: CacheConfig{
			Backend:       getConfigValue(*cacheBackend, "CACHE_BACKEND", "badger"),
			RedisAddr:     getConfigValue("", "REDIS_ADDR", "localhost:6379"),
			RedisPassword: getConfigValue("", "REDIS_PASSWORD", ""),
			RedisDB:       getIntConfigValue("", "REDIS_DB", 0),
		},
		Search: SearchConfig{
			MaxResultsPerSource: getIntConfigValue(*maxResults, "MAX_RESULTS_PER_SOURCE", 20),
			ScrapeEnabled:       getBoolConfigValue(*scrapeEnabled, "SCRAPE_ENABLED", true),
			BrowserEnabled:      getBoolConfigValue(*browserEnabled, "BROWSER_ENABLED", false),
			DefaultZip:          getConfigValue("", "CARPART_DEFAULT_ZIP", ""),
		},
		Interchange: InterchangeConfig{
			Enabled:      getBoolConfigValue("", "INTERCHANGE_ENABLED", true),
			MaxProviders: getIntConfigValue("", "MAX_INTERCHANGE_PROVIDERS", 3),
		},
		Community: CommunityConfig{
			Enabled:   getBoolConfigValue("", "COMMUNITY_ENABLED", true),
			UserAgent: getConfigValue("", "COMMUNITY_USER_AGENT", "PartLogic/1.0"),
		},
		Advisor: AdvisorConfig{
			Enabled: getBoolConfigValue("", "ADVISOR_ENABLED", false),
			BaseURL: getConfigValue("", "ADVISOR_BASE_URL", ""),
			APIKey:  getConfigValue("", "ADVISOR_API_KEY", ""),
			Model:   getConfigValue("", "ADVISOR_MODEL", "gpt-4o-mini"),
		},
		EBay: EBayConfig{
			AppID:   getConfigValue("", "EBAY_APP_ID", ""),
			CertID:  getConfigValue("", "EBAY_CERT_ID", ""),
			Sandbox: getBoolConfigValue("", "EBAY_SANDBOX", true),
		},
	}

	// Parse durations.
	var err error
	if cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Cache.TTL, err = parseDurationValue(*cacheTTL, "CACHE_TTL", "6h"); err != nil {
		return nil, err
	}
	if cfg.Search.ConnectorTimeout, err = parseDurationValue(*connectorTimeout, "CONNECTOR_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Search.RequestTimeout, err = parseDurationValue("", "REQUEST_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.Search.RateLimitDelay, err = parseDurationValue("", "RATE_LIMIT_DELAY", "1s"); err != nil {
		return nil, err
	}
	if cfg.Community.TTL, err = parseDurationValue("", "COMMUNITY_CACHE_TTL", "168h"); err != nil {
		return nil, err
	}
	if cfg.Community.Timeout, err = parseDurationValue("", "COMMUNITY_TIMEOUT", "8s"); err != nil {
		return nil, err
	}
	if cfg.Advisor.Timeout, err = parseDurationValue("", "ADVISOR_TIMEOUT", "25s"); err != nil {
		return nil, err
	}

	// Expand and validate the data path.
	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	validBackends := map[string]bool{
		"badger": true,
		"redis":  true,
	}
	if !validBackends[c.Cache.Backend] {
		return fmt.Errorf("invalid cache backend: %s (must be badger or redis)", c.Cache.Backend)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.Search.ConnectorTimeout <= 0 {
		return errors.New("connector timeout must be positive")
	}
	if c.Search.MaxResultsPerSource <= 0 {
		return errors.New("max results per source must be positive")
	}
	if c.Interchange.MaxProviders < 0 {
		return errors.New("max interchange providers cannot be negative")
	}

	return nil
}

// CachePath returns the directory for the embedded cache store.
func (c *Config) CachePath() string {
	return filepath.Join(c.Data.BasePath, "cache")
}

// DatabasePath returns the SQLite database file location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Data.BasePath, "partlogic.db")
}

// CatalogIndexPath returns the directory for the catalog keyword index.
func (c *Config) CatalogIndexPath() string {
	return filepath.Join(c.Data.BasePath, "index")
}

// RegistryPath returns the source registry JSON file location.
func (c *Config) RegistryPath() string {
	return filepath.Join(c.Data.BasePath, "sources.json")
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath expands ~ and makes the path absolute.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "PartLogic", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// parseDurationValue resolves a duration with the usual precedence and parses it.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	raw := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(strings.ReplaceAll(envKey, "_", " ")), raw, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
