// ABOUTME: Main entry point for the article enhancement pipeline
// ABOUTME: Wires components from config, parses flags, and runs the pipeline

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"article-enhancer/core/domain"
	"article-enhancer/core/enhancer"
	"article-enhancer/core/extractor"
	"article-enhancer/core/interfaces"
	"article-enhancer/core/metadata"
	"article-enhancer/core/pipeline"
	"article-enhancer/core/references"
	"article-enhancer/infrastructure/backend"
	"article-enhancer/infrastructure/browser"
	"article-enhancer/infrastructure/cache/memory"
	"article-enhancer/infrastructure/cache/redis"
	stdhttp "article-enhancer/infrastructure/http/standard"
	"article-enhancer/infrastructure/llm/openai"
	logruslogger "article-enhancer/infrastructure/logger/logrus"
	"article-enhancer/infrastructure/search"
	"article-enhancer/pkg/config"
)

func main() {
	mode := flag.String("mode", enhancer.ModeComprehensive, "enhancement mode: structure, seo, or comprehensive")
	publish := flag.Bool("publish", false, "publish the enhanced article back to the backend")
	update := flag.Bool("update", false, "overwrite the source article instead of creating a new one (implies -publish)")
	articleID := flag.String("article-id", "", "enhance a specific article instead of the latest")
	count := flag.Int("count", 1, "number of articles to enhance sequentially")
	continueOnError := flag.Bool("continue-on-error", false, "keep going past per-article failures in batch mode")
	selftest := flag.Bool("selftest", false, "check connectivity to the backend, search, and LLM endpoints, then exit")
	flag.Parse()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logruslogger.NewLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting article enhancer", map[string]interface{}{
		"mode":       *mode,
		"publish":    *publish || *update,
		"cache_type": cfg.Cache.Type,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cache := buildCache(cfg, logger)

	scrapeClient := stdhttp.NewScrapingClient(cfg.Scraping.RequestTimeout, cfg.Scraping.RequestsPerSecond)
	apiClient := stdhttp.NewClient(cfg.Scraping.RequestTimeout)

	scrapeDeps := interfaces.Dependencies{Cache: cache, HTTPClient: scrapeClient, Logger: logger}
	apiDeps := interfaces.Dependencies{Cache: cache, HTTPClient: apiClient, Logger: logger}

	var provider interfaces.SearchProvider
	if cfg.Search.APIKey != "" {
		provider = search.NewWebAPIProvider(apiDeps, cfg.Search.APIURL, cfg.Search.APIKey)
	} else {
		logger.Info("No search API key set, using feed-based search", map[string]interface{}{
			"feeds": len(cfg.Search.Feeds),
		})
		provider = search.NewFeedProvider(cfg.Search.Feeds, logger)
	}

	backendClient := backend.NewClient(cfg.Backend, cfg.Scraping.RequestTimeout, logger)
	chatClient := openai.NewClient(cfg.LLM, cfg.Scraping.RequestTimeout)
	renderer := browser.NewSession(cfg.Scraping.SettleDelay, logger)

	finder := references.NewService(provider, logger, cfg.MaxSearchResults())
	extractorService := extractor.NewService(scrapeDeps, renderer, cfg.Scraping)
	metadataService := metadata.NewService(scrapeDeps, cfg.Scraping.RequestTimeout)
	enhancerService := enhancer.NewService(chatClient, logger, cfg.Enhancement)

	runner := pipeline.NewRunner(
		backendClient, finder, extractorService, metadataService, enhancerService,
		backendClient, renderer, logger, cfg.Pipeline, cfg.Enhancement.TargetReferences,
	)

	if *selftest {
		os.Exit(printSelfTest(pipeline.SelfTest(ctx, backendClient, provider, chatClient, renderer)))
	}

	opts := pipeline.Options{
		Mode:          *mode,
		ArticleID:     *articleID,
		Publish:       *publish || *update,
		UpdateInPlace: *update,
	}

	summaries, err := runner.RunBatch(ctx, *count, opts, *continueOnError)
	printSummaries(summaries)

	if err != nil {
		cause, step := err, ""
		if n := len(summaries); n > 0 && summaries[n-1].Err != nil {
			cause = summaries[n-1].Err
			step = summaries[n-1].Step
		}
		fmt.Fprintf(os.Stderr, "run failed at step %s: %v\n", step, cause)
		if hint := pipeline.Remediation(step, cause); hint != "" {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
		}
		os.Exit(1)
	}

	failed := 0
	for _, s := range summaries {
		if s.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d runs failed\n", failed, len(summaries))
		os.Exit(1)
	}
}

func buildCache(cfg *config.Config, logger interfaces.Logger) interfaces.Cache {
	if cfg.Cache.Type == "redis" {
		redisCache, err := redis.NewRedisCache(cfg.Cache.Redis)
		if err == nil {
			logger.Info("Using Redis cache", map[string]interface{}{
				"address": cfg.Cache.Redis.Address,
			})
			return redisCache
		}
		logger.Error("Failed to create Redis cache, falling back to memory", map[string]interface{}{
			"error": err.Error(),
		})
	}

	logger.Info("Using memory cache", nil)
	return memory.NewMemoryCache(time.Duration(cfg.Cache.Memory.DefaultExpiration)*time.Second, 10*time.Minute)
}

func printSummaries(summaries []domain.RunSummary) {
	for i, s := range summaries {
		status := "ok"
		if s.Err != nil {
			status = "failed at " + s.Step
		}

		published := s.PublishedID
		if published == "" {
			published = "-"
		}

		fmt.Printf("run %d: %s  candidates=%d scraped=%d/%d published=%s elapsed=%s\n",
			i+1, status,
			s.Candidates, s.ScrapedOK, s.ScrapedOK+s.ScrapedFailed,
			published,
			s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond),
		)
	}
}

// printSelfTest reports each check result and returns the process exit
// status: zero only when every check passed.
func printSelfTest(results []pipeline.CheckResult) int {
	ok := true
	for _, r := range results {
		if r.Err != nil {
			ok = false
			fmt.Printf("FAIL %-8s %v\n", r.Name, r.Err)
			continue
		}
		fmt.Printf("ok   %s\n", r.Name)
	}

	if !ok {
		return 1
	}
	fmt.Println("all checks passed")
	return 0
}
