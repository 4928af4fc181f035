package config

import (
	"testing"
	"time"

	"article-enhancer/core/errors"
)

func validConfig() *Config {
	cfg, _ := LoadFromEnv()
	cfg.Backend.APIURL = "https://backend.example.com/api"
	cfg.LLM.APIKey = "sk-test"
	cfg.Search.APIKey = "search-key"
	return cfg
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv returned error: %v", err)
	}

	if cfg.Scraping.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.Scraping.RequestTimeout)
	}
	if cfg.Scraping.MinContentLength != 100 {
		t.Errorf("MinContentLength = %d, want 100", cfg.Scraping.MinContentLength)
	}
	if cfg.Scraping.MaxContentLength != 50000 {
		t.Errorf("MaxContentLength = %d, want 50000", cfg.Scraping.MaxContentLength)
	}
	if cfg.Scraping.BatchSize != 3 {
		t.Errorf("BatchSize = %d, want 3", cfg.Scraping.BatchSize)
	}
	if cfg.Enhancement.MinLength != 500 {
		t.Errorf("Enhancement.MinLength = %d, want 500", cfg.Enhancement.MinLength)
	}
	if cfg.Enhancement.TargetReferences != 2 {
		t.Errorf("TargetReferences = %d, want 2", cfg.Enhancement.TargetReferences)
	}
	if cfg.Pipeline.InterRunDelay != 5*time.Second {
		t.Errorf("InterRunDelay = %v, want 5s", cfg.Pipeline.InterRunDelay)
	}
	if cfg.Cache.Type != "memory" {
		t.Errorf("Cache.Type = %q, want memory", cfg.Cache.Type)
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate returned error for valid config: %v", err)
	}
}

func TestValidate_MissingBackendURL(t *testing.T) {
	cfg := validConfig()
	cfg.Backend.APIURL = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate should fail without backend URL")
	}
	if !errors.IsConfiguration(err) {
		t.Errorf("Validate error = %T, want ConfigurationError", err)
	}
}

func TestValidate_MissingLLMKey(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.APIKey = ""

	if cfg.Validate() == nil {
		t.Error("Validate should fail without LLM API key")
	}
}

func TestValidate_NoSearchProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Search.APIKey = ""
	cfg.Search.Feeds = nil

	if cfg.Validate() == nil {
		t.Error("Validate should fail with neither search key nor feeds")
	}
}

func TestValidate_FeedsAloneSufficient(t *testing.T) {
	cfg := validConfig()
	cfg.Search.APIKey = ""
	cfg.Search.Feeds = []string{"https://example.com/feed.xml"}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate returned error with feeds configured: %v", err)
	}
}

func TestValidate_BadCacheType(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Type = "sqlite"

	if cfg.Validate() == nil {
		t.Error("Validate should reject unknown cache type")
	}
}

func TestValidate_MinContentAboveMax(t *testing.T) {
	cfg := validConfig()
	cfg.Scraping.MinContentLength = 60000

	if cfg.Validate() == nil {
		t.Error("Validate should reject min content length above max")
	}
}

func TestMaxSearchResults_HardCap(t *testing.T) {
	cfg := validConfig()
	cfg.Search.MaxResults = 50

	if got := cfg.MaxSearchResults(); got != 20 {
		t.Errorf("MaxSearchResults = %d, want hard cap 20", got)
	}
}

func TestMaxSearchResults_BelowCap(t *testing.T) {
	cfg := validConfig()
	cfg.Search.MaxResults = 10

	if got := cfg.MaxSearchResults(); got != 10 {
		t.Errorf("MaxSearchResults = %d, want 10", got)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" https://a.example/feed.xml, https://b.example/rss ,")

	if len(got) != 2 {
		t.Fatalf("splitList returned %d entries, want 2", len(got))
	}
	if got[0] != "https://a.example/feed.xml" || got[1] != "https://b.example/rss" {
		t.Errorf("splitList = %v", got)
	}
}

func TestSplitList_Empty(t *testing.T) {
	if got := splitList(""); got != nil {
		t.Errorf("splitList(\"\") = %v, want nil", got)
	}
}
