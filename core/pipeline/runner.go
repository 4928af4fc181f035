// ABOUTME: Pipeline orchestrator, sequences fetch, search, scrape, enhance, publish
// ABOUTME: Tracks the current step for error guidance and always runs cleanup

package pipeline

import (
	"context"
	"fmt"
	"time"

	"article-enhancer/core/domain"
	"article-enhancer/core/errors"
	"article-enhancer/core/interfaces"
	"article-enhancer/pkg/config"
)

// Pipeline steps, recorded in the run summary so failures can point at
// the stage that broke.
const (
	StepFetch   = "fetch"
	StepSearch  = "search"
	StepScrape  = "scrape"
	StepEnhance = "enhance"
	StepPublish = "publish"
)

// ReferenceFinder discovers reference candidates for an article title
type ReferenceFinder interface {
	FindSimilarArticles(ctx context.Context, query string, targetCount int) ([]domain.ReferenceCandidate, error)
}

// ContentExtractor scrapes readable text from candidate URLs
type ContentExtractor interface {
	ExtractMany(ctx context.Context, urls []string) ([]domain.ExtractedContent, error)
}

// ContentEnhancer rewrites an article using reference texts
type ContentEnhancer interface {
	Enhance(ctx context.Context, article *domain.SourceArticle, references []domain.ExtractedContent, mode string) (*domain.EnhancedArticle, error)
}

// Options selects what one run does
type Options struct {
	// Mode is the enhancement mode (structure/seo/comprehensive)
	Mode string

	// ArticleID selects a specific article; empty means latest
	ArticleID string

	// Publish writes the result back through the publish gateway. When
	// false the run stops after enhancement (dry run).
	Publish bool

	// UpdateInPlace overwrites the source record instead of creating a
	// new one. Only honored when Publish is set.
	UpdateInPlace bool
}

// Runner executes the enhancement pipeline for one article at a time
type Runner struct {
	source    interfaces.ArticleSource
	finder    ReferenceFinder
	extractor ContentExtractor
	metadata  interfaces.MetadataService
	enhancer  ContentEnhancer
	publisher interfaces.ArticlePublisher
	renderer  interfaces.Renderer
	logger    interfaces.Logger
	cfg       config.PipelineConfig
	targets   int
}

// NewRunner wires the pipeline stages. metadata and renderer may be
// nil; renderer is only held for end-of-run teardown.
func NewRunner(
	source interfaces.ArticleSource,
	finder ReferenceFinder,
	extractor ContentExtractor,
	metadata interfaces.MetadataService,
	enhancer ContentEnhancer,
	publisher interfaces.ArticlePublisher,
	renderer interfaces.Renderer,
	logger interfaces.Logger,
	cfg config.PipelineConfig,
	targetReferences int,
) *Runner {
	return &Runner{
		source:    source,
		finder:    finder,
		extractor: extractor,
		metadata:  metadata,
		enhancer:  enhancer,
		publisher: publisher,
		renderer:  renderer,
		logger:    logger,
		cfg:       cfg,
		targets:   targetReferences,
	}
}

// Run executes one full pipeline pass. The returned summary is always
// populated, error or not. Cleanup (closing the shared browser) runs on
// every path.
func (r *Runner) Run(ctx context.Context, opts Options) (*domain.RunSummary, error) {
	summary := &domain.RunSummary{StartedAt: time.Now().UTC()}

	defer func() {
		summary.FinishedAt = time.Now().UTC()
		r.cleanup()
	}()

	if r.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.RunTimeout)
		defer cancel()
	}

	err := r.run(ctx, opts, summary)
	summary.Err = err
	return summary, err
}

func (r *Runner) run(ctx context.Context, opts Options, summary *domain.RunSummary) error {
	summary.Step = StepFetch
	article, err := r.fetchArticle(ctx, opts.ArticleID)
	if err != nil {
		return err
	}

	r.logger.Info("Enhancing article", map[string]interface{}{
		"article_id": article.ID,
		"title":      article.Title,
		"mode":       opts.Mode,
	})

	summary.Step = StepSearch
	candidates, err := r.finder.FindSimilarArticles(ctx, article.Title, r.targets)
	if err != nil {
		return err
	}
	summary.Candidates = len(candidates)

	summary.Step = StepScrape
	references, err := r.scrapeReferences(ctx, candidates)
	if err != nil {
		return err
	}
	summary.ScrapedOK = len(references)
	summary.ScrapedFailed = len(candidates) - len(references)

	summary.Step = StepEnhance
	enhanced, err := r.enhancer.Enhance(ctx, article, references, opts.Mode)
	if err != nil {
		return err
	}

	if !opts.Publish {
		r.logger.Info("Dry run, skipping publish", map[string]interface{}{
			"article_id": article.ID,
			"title":      enhanced.Title,
			"length":     len(enhanced.Content),
		})
		return nil
	}

	summary.Step = StepPublish
	result, err := r.publish(ctx, article.ID, enhanced, opts.UpdateInPlace)
	if err != nil {
		return err
	}
	summary.PublishedID = result.ID

	r.logger.Info("Published enhanced article", map[string]interface{}{
		"source_id":    article.ID,
		"published_id": result.ID,
		"references":   len(references),
	})
	return nil
}

func (r *Runner) fetchArticle(ctx context.Context, id string) (*domain.SourceArticle, error) {
	if id != "" {
		return r.source.FetchByID(ctx, id)
	}

	article, err := r.source.FetchLatest(ctx)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, &errors.NotFoundError{Resource: "article"}
	}
	return article, nil
}

// scrapeReferences extracts content for each candidate and enriches
// titleless results from page metadata. Individual scrape failures are
// absorbed by the extractor; only cancellation propagates.
func (r *Runner) scrapeReferences(ctx context.Context, candidates []domain.ReferenceCandidate) ([]domain.ExtractedContent, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	urls := make([]string, 0, len(candidates))
	byURL := make(map[string]domain.ReferenceCandidate, len(candidates))
	for _, c := range candidates {
		urls = append(urls, c.URL)
		byURL[c.URL] = c
	}

	references, err := r.extractor.ExtractMany(ctx, urls)
	if err != nil {
		return nil, err
	}

	for i := range references {
		if references[i].Title != "Untitled" {
			continue
		}
		references[i].Title = r.lookupTitle(ctx, references[i].URL, byURL[references[i].URL])
	}

	return references, nil
}

// lookupTitle fills in a missing extraction title from the search hit
// or, failing that, the page's og:title.
func (r *Runner) lookupTitle(ctx context.Context, url string, candidate domain.ReferenceCandidate) string {
	if candidate.Title != "" {
		return candidate.Title
	}

	if r.metadata != nil {
		if meta, err := r.metadata.ExtractMetadata(ctx, url); err == nil && meta != nil && meta.Title != "" {
			return meta.Title
		}
	}

	return "Untitled"
}

func (r *Runner) publish(ctx context.Context, sourceID string, enhanced *domain.EnhancedArticle, updateInPlace bool) (*interfaces.PublishResult, error) {
	if updateInPlace {
		return r.publisher.Update(ctx, sourceID, enhanced)
	}
	return r.publisher.Publish(ctx, enhanced)
}

// cleanup closes the shared browser. A close failure is logged, never
// fatal.
func (r *Runner) cleanup() {
	if r.renderer == nil {
		return
	}

	if err := r.renderer.Close(); err != nil {
		r.logger.Warn("Failed to close browser", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// RunBatch runs the pipeline count times sequentially with a polite
// delay between runs. With continueOnError set, per-article failures
// are recorded in their summaries and the batch moves on; otherwise the
// first failure aborts the batch.
func (r *Runner) RunBatch(ctx context.Context, count int, opts Options, continueOnError bool) ([]domain.RunSummary, error) {
	if count < 1 {
		count = 1
	}

	summaries := make([]domain.RunSummary, 0, count)
	for i := 0; i < count; i++ {
		if i > 0 && r.cfg.InterRunDelay > 0 {
			select {
			case <-time.After(r.cfg.InterRunDelay):
			case <-ctx.Done():
				return summaries, ctx.Err()
			}
		}

		summary, err := r.Run(ctx, opts)
		summaries = append(summaries, *summary)

		if err != nil {
			r.logger.Error("Run failed", map[string]interface{}{
				"run":   i + 1,
				"step":  summary.Step,
				"error": err.Error(),
			})
			if !continueOnError {
				return summaries, fmt.Errorf("run %d failed at %s: %w", i+1, summary.Step, err)
			}
		}
	}

	return summaries, nil
}

// Remediation maps a failed step and error to a short operator hint
func Remediation(step string, err error) string {
	switch {
	case errors.IsConfiguration(err):
		return "check the environment configuration"
	case errors.IsAuth(err):
		switch step {
		case StepEnhance:
			return "check LLM_API_KEY"
		case StepSearch:
			return "check SEARCH_API_KEY"
		default:
			return "check BACKEND_API_TOKEN"
		}
	case errors.IsRateLimit(err):
		return "rate limited upstream, wait and rerun"
	case errors.IsValidation(err):
		return "inspect the article content, it failed a validation gate"
	case errors.IsNotFound(err):
		return "verify the article id exists in the backend"
	default:
		return ""
	}
}
