// ABOUTME: Configuration management for the pipeline with environment variable support
// ABOUTME: Produces one immutable Config validated once at startup

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"article-enhancer/core/errors"
)

// Config holds all application configuration. Loaded once at startup,
// validated, and passed by reference into every component constructor.
type Config struct {
	// Backend configures the source/publish article API
	Backend BackendConfig

	// Search configures the reference search provider
	Search SearchConfig

	// LLM configures the completion endpoint
	LLM LLMConfig

	// Scraping configures the content extractor
	Scraping ScrapingConfig

	// Enhancement configures the content rewriter
	Enhancement EnhancementConfig

	// Pipeline configures the orchestrator
	Pipeline PipelineConfig

	// Cache contains cache backend configuration
	Cache CacheConfig
}

// BackendConfig holds article API connection details
type BackendConfig struct {
	// APIURL is the base URL of the article CRUD API
	APIURL string

	// Token is an optional bearer token
	Token string
}

// SearchConfig holds search provider settings
type SearchConfig struct {
	// APIURL is the search endpoint base URL
	APIURL string

	// APIKey authenticates search requests; when empty the feed-based
	// provider is used instead
	APIKey string

	// Feeds lists RSS feed URLs for the degraded-mode provider
	Feeds []string

	// MaxResults is the requested result count, hard-capped at 20
	MaxResults int
}

// LLMConfig holds completion endpoint settings
type LLMConfig struct {
	// APIURL is the chat-completions endpoint
	APIURL string

	// APIKey is the bearer token, required
	APIKey string

	// Model is the model identifier
	Model string

	// MaxTokens is the output token budget
	MaxTokens int

	// Temperature controls sampling
	Temperature float64
}

// ScrapingConfig holds content extractor settings
type ScrapingConfig struct {
	// RequestTimeout bounds each HTTP fetch and browser navigation
	RequestTimeout time.Duration

	// SettleDelay is the extra wait after browser navigation for
	// deferred rendering
	SettleDelay time.Duration

	// MinContentLength is the substantive-content threshold below which
	// an extraction counts as a failure
	MinContentLength int

	// MaxContentLength caps extracted text
	MaxContentLength int

	// BatchSize is the number of URLs scraped concurrently
	BatchSize int

	// BatchPause is the pause between scraping batches
	BatchPause time.Duration

	// FallbackOn4xx makes a definitive 4xx trigger the rendered-browser
	// fallback. Block-like statuses (403, 429) always fall back; a 404
	// never does.
	FallbackOn4xx bool

	// RequestsPerSecond paces outbound page fetches
	RequestsPerSecond float64
}

// EnhancementConfig holds content rewriter settings
type EnhancementConfig struct {
	// MinLength is the minimum substantial length of an enhanced article
	MinLength int

	// ReferenceExcerptLength caps each reference excerpt in the prompt
	ReferenceExcerptLength int

	// SourceExcerptLength caps the source content in the prompt
	SourceExcerptLength int

	// TargetReferences is how many reference pages to scrape
	TargetReferences int
}

// PipelineConfig holds orchestrator settings
type PipelineConfig struct {
	// InterRunDelay is the polite pause between batch runs
	InterRunDelay time.Duration

	// RunTimeout caps a whole run; 0 disables the cap
	RunTimeout time.Duration
}

// CacheConfig holds cache backend configuration
type CacheConfig struct {
	// Type specifies the cache backend (redis/memory)
	Type string

	// Redis contains Redis-specific configuration
	Redis RedisConfig

	// Memory contains in-memory cache configuration
	Memory MemoryConfig
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// Address is the Redis server address
	Address string

	// Password is the Redis authentication password
	Password string

	// DB is the Redis database number
	DB int
}

// MemoryConfig holds in-memory cache configuration
type MemoryConfig struct {
	// DefaultExpiration is the default TTL for cache entries in seconds
	DefaultExpiration int
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Backend: BackendConfig{
			APIURL: os.Getenv("BACKEND_API_URL"),
			Token:  os.Getenv("BACKEND_API_TOKEN"),
		},
		Search: SearchConfig{
			APIURL:     getEnvOrDefault("SEARCH_API_URL", "https://serpapi.com/search"),
			APIKey:     os.Getenv("SEARCH_API_KEY"),
			Feeds:      splitList(os.Getenv("SEARCH_FEEDS")),
			MaxResults: getEnvAsIntOrDefault("SEARCH_MAX_RESULTS", 10),
		},
		LLM: LLMConfig{
			APIURL:      getEnvOrDefault("LLM_API_URL", "https://api.openai.com/v1/chat/completions"),
			APIKey:      os.Getenv("LLM_API_KEY"),
			Model:       getEnvOrDefault("LLM_MODEL", "gpt-4o-mini"),
			MaxTokens:   getEnvAsIntOrDefault("LLM_MAX_TOKENS", 4000),
			Temperature: getEnvAsFloatOrDefault("LLM_TEMPERATURE", 0.7),
		},
		Scraping: ScrapingConfig{
			RequestTimeout:    getEnvAsDurationOrDefault("SCRAPE_TIMEOUT", 30*time.Second),
			SettleDelay:       getEnvAsDurationOrDefault("SCRAPE_SETTLE_DELAY", 2*time.Second),
			MinContentLength:  getEnvAsIntOrDefault("SCRAPE_MIN_CONTENT", 100),
			MaxContentLength:  getEnvAsIntOrDefault("SCRAPE_MAX_CONTENT", 50000),
			BatchSize:         getEnvAsIntOrDefault("SCRAPE_BATCH_SIZE", 3),
			BatchPause:        getEnvAsDurationOrDefault("SCRAPE_BATCH_PAUSE", time.Second),
			FallbackOn4xx:     getEnvAsBoolOrDefault("SCRAPE_FALLBACK_ON_4XX", false),
			RequestsPerSecond: getEnvAsFloatOrDefault("SCRAPE_RATE", 2),
		},
		Enhancement: EnhancementConfig{
			MinLength:              getEnvAsIntOrDefault("ENHANCE_MIN_LENGTH", 500),
			ReferenceExcerptLength: getEnvAsIntOrDefault("ENHANCE_REF_EXCERPT", 1000),
			SourceExcerptLength:    getEnvAsIntOrDefault("ENHANCE_SOURCE_EXCERPT", 8000),
			TargetReferences:       getEnvAsIntOrDefault("ENHANCE_TARGET_REFERENCES", 2),
		},
		Pipeline: PipelineConfig{
			InterRunDelay: getEnvAsDurationOrDefault("PIPELINE_RUN_DELAY", 5*time.Second),
			RunTimeout:    getEnvAsDurationOrDefault("PIPELINE_RUN_TIMEOUT", 0),
		},
		Cache: CacheConfig{
			Type: getEnvOrDefault("CACHE_TYPE", "memory"),
			Redis: RedisConfig{
				Address:  getEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
				Password: getEnvOrDefault("REDIS_PASSWORD", ""),
				DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
			},
			Memory: MemoryConfig{
				DefaultExpiration: getEnvAsIntOrDefault("MEMORY_CACHE_EXPIRATION", 3600),
			},
		},
	}

	return cfg, nil
}

// Validate checks if the configuration is valid. The process refuses to
// start on missing required values.
func (c *Config) Validate() error {
	if c.Backend.APIURL == "" {
		return &errors.ConfigurationError{Setting: "BACKEND_API_URL", Message: "must not be empty"}
	}

	if c.LLM.APIKey == "" {
		return &errors.ConfigurationError{Setting: "LLM_API_KEY", Message: "must not be empty"}
	}

	if c.Search.APIKey == "" && len(c.Search.Feeds) == 0 {
		return &errors.ConfigurationError{Setting: "SEARCH_API_KEY", Message: "set a search API key or SEARCH_FEEDS"}
	}

	if c.Search.MaxResults < 1 {
		return &errors.ConfigurationError{Setting: "SEARCH_MAX_RESULTS", Message: "must be at least 1"}
	}

	if c.Scraping.RequestTimeout < time.Second {
		return &errors.ConfigurationError{Setting: "SCRAPE_TIMEOUT", Message: "must be at least 1s"}
	}

	if c.Scraping.BatchSize < 1 {
		return &errors.ConfigurationError{Setting: "SCRAPE_BATCH_SIZE", Message: "must be at least 1"}
	}

	if c.Scraping.MinContentLength < 1 || c.Scraping.MinContentLength >= c.Scraping.MaxContentLength {
		return &errors.ConfigurationError{Setting: "SCRAPE_MIN_CONTENT", Message: "must be positive and below SCRAPE_MAX_CONTENT"}
	}

	if c.Enhancement.TargetReferences < 0 {
		return &errors.ConfigurationError{Setting: "ENHANCE_TARGET_REFERENCES", Message: "must not be negative"}
	}

	if c.Cache.Type != "redis" && c.Cache.Type != "memory" {
		return &errors.ConfigurationError{Setting: "CACHE_TYPE", Message: "must be 'redis' or 'memory'"}
	}

	if c.Cache.Type == "redis" && c.Cache.Redis.Address == "" {
		return &errors.ConfigurationError{Setting: "REDIS_ADDRESS", Message: "must not be empty when using redis cache"}
	}

	return nil
}

// MaxSearchResults returns the configured result count, hard-capped at 20
// to reduce block risk.
func (c *Config) MaxSearchResults() int {
	if c.Search.MaxResults > 20 {
		return 20
	}
	return c.Search.MaxResults
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the environment variable as int or a default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloatOrDefault returns the environment variable as float64 or a default
func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsBoolOrDefault returns the environment variable as bool or a default
func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDurationOrDefault returns the environment variable as a duration
// or a default. Accepts Go duration syntax ("30s", "2m").
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// splitList splits a comma-separated env value into trimmed entries
func splitList(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
