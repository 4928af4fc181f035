// ABOUTME: Content extractor service, static strategy with rendered-browser fallback
// ABOUTME: Batch extraction with bounded concurrency and inter-batch pacing

package extractor

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"article-enhancer/core/domain"
	"article-enhancer/core/errors"
	"article-enhancer/core/interfaces"
	"article-enhancer/pkg/config"
	"article-enhancer/pkg/retry"
)

// Service extracts readable article text from URLs. The static strategy
// runs first; the rendered-browser strategy is the fallback when the
// static path fails or yields insufficient content.
type Service struct {
	deps     interfaces.Dependencies
	renderer interfaces.Renderer
	cfg      config.ScrapingConfig
	policy   retry.Policy
	uaIndex  atomic.Uint64
}

// NewService creates a content extractor. renderer may be nil, which
// disables the rendered fallback.
func NewService(deps interfaces.Dependencies, renderer interfaces.Renderer, cfg config.ScrapingConfig) *Service {
	return &Service{
		deps:     deps,
		renderer: renderer,
		cfg:      cfg,
		policy:   retry.ScrapingPolicy(),
	}
}

// Extract scrapes one URL, trying the static strategy and then the
// rendered fallback. Both strategies run under the scraping retry
// policy. When both fail the error is a ScrapingError carrying the URL
// and both failure reasons.
func (s *Service) Extract(ctx context.Context, pageURL string) (*domain.ExtractedContent, error) {
	pageDomain, err := domain.RegisteredDomain(pageURL)
	if err != nil {
		return nil, &errors.ScrapingError{URL: pageURL, Reasons: []string{err.Error()}}
	}

	var reasons []string
	userAgent := s.nextUserAgent()

	var title, content string
	staticErr := retry.Do(ctx, s.deps.Logger, "extract static", s.policy, func(ctx context.Context) error {
		var opErr error
		title, content, opErr = s.extractStatic(ctx, pageURL, userAgent)
		return opErr
	})

	method := domain.MethodStatic
	if staticErr != nil {
		reasons = append(reasons, fmt.Sprintf("static: %v", staticErr))

		if !s.shouldFallback(staticErr) {
			return nil, &errors.ScrapingError{URL: pageURL, Reasons: reasons}
		}

		s.deps.Logger.Info("Falling back to rendered extraction", map[string]interface{}{
			"url":    pageURL,
			"reason": staticErr.Error(),
		})

		renderedErr := retry.Do(ctx, s.deps.Logger, "extract rendered", s.policy, func(ctx context.Context) error {
			var opErr error
			title, content, opErr = s.extractRendered(ctx, pageURL, s.nextUserAgent())
			return opErr
		})
		if renderedErr != nil {
			reasons = append(reasons, fmt.Sprintf("rendered: %v", renderedErr))
			return nil, &errors.ScrapingError{URL: pageURL, Reasons: reasons}
		}
		method = domain.MethodRendered
	}

	if title == "" {
		title = "Untitled"
	}

	return &domain.ExtractedContent{
		URL:       pageURL,
		Title:     title,
		Content:   content,
		Domain:    pageDomain,
		Method:    method,
		ScrapedAt: time.Now().UTC(),
	}, nil
}

// shouldFallback decides whether a static failure is worth a browser
// attempt. Block-like statuses (403, 429) always fall back. A definitive
// 404 never does: the page does not exist, rendering cannot help. Other
// 4xx statuses follow the FallbackOn4xx knob.
func (s *Service) shouldFallback(err error) bool {
	if s.renderer == nil {
		return false
	}

	status := errors.StatusCode(err)
	switch {
	case status == http.StatusNotFound:
		return false
	case status == http.StatusForbidden || status == http.StatusTooManyRequests:
		return true
	case status >= 400 && status < 500:
		return s.cfg.FallbackOn4xx
	default:
		return true
	}
}

// ExtractMany scrapes URLs in fixed-size concurrent batches with a short
// pause between batches. Individual failures are logged and discarded;
// the call only fails when the context is cancelled.
func (s *Service) ExtractMany(ctx context.Context, urls []string) ([]domain.ExtractedContent, error) {
	var results []domain.ExtractedContent
	var mu sync.Mutex

	batchSize := s.cfg.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}

	for start := 0; start < len(urls); start += batchSize {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		end := start + batchSize
		if end > len(urls) {
			end = len(urls)
		}

		var wg sync.WaitGroup
		for _, pageURL := range urls[start:end] {
			wg.Add(1)
			go func(pageURL string) {
				defer wg.Done()

				extracted, err := s.Extract(ctx, pageURL)
				if err != nil {
					s.deps.Logger.Warn("Skipping reference URL", map[string]interface{}{
						"url":   pageURL,
						"error": err.Error(),
					})
					return
				}

				mu.Lock()
				results = append(results, *extracted)
				mu.Unlock()
			}(pageURL)
		}
		wg.Wait()

		if end < len(urls) && s.cfg.BatchPause > 0 {
			select {
			case <-time.After(s.cfg.BatchPause):
			case <-ctx.Done():
				return results, ctx.Err()
			}
		}
	}

	return results, nil
}

// nextUserAgent rotates through the user agent pool
func (s *Service) nextUserAgent() string {
	index := s.uaIndex.Add(1)
	return userAgents[int(index)%len(userAgents)]
}
