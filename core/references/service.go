// ABOUTME: Reference discovery service, turns search hits into citation candidates
// ABOUTME: Filters junk domains and file links, then prefers domain diversity

package references

import (
	"context"
	"path"
	"strings"

	"article-enhancer/core/domain"
	"article-enhancer/core/interfaces"
	"article-enhancer/pkg/retry"
)

// excludedDomains lists sites that never make useful article references.
// Matching is substring-based in both directions so "youtube.com" also
// covers "m.youtube.com" and bare "youtube".
var excludedDomains = []string{
	"youtube.com",
	"facebook.com",
	"twitter.com",
	"x.com",
	"instagram.com",
	"tiktok.com",
	"pinterest.com",
	"reddit.com",
	"wikipedia.org",
	"amazon.com",
	"linkedin.com",
}

// excludedExtensions lists URL path suffixes that point at files rather
// than readable pages.
var excludedExtensions = []string{
	".pdf", ".doc", ".docx", ".ppt", ".pptx", ".xls", ".xlsx",
	".zip", ".rar", ".gz",
	".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg",
	".mp3", ".mp4", ".avi", ".mov", ".webm",
}

const minTitleLength = 10

// Service finds reference candidates for an article via a search
// provider. Search failure degrades to an empty candidate list so the
// pipeline can continue without references.
type Service struct {
	provider   interfaces.SearchProvider
	logger     interfaces.Logger
	maxResults int
	policy     retry.Policy
}

// NewService creates a reference discovery service. maxResults bounds
// the raw hits requested from the provider.
func NewService(provider interfaces.SearchProvider, logger interfaces.Logger, maxResults int) *Service {
	policy := retry.DefaultPolicy()
	policy.MaxAttempts = 2

	return &Service{
		provider:   provider,
		logger:     logger,
		maxResults: maxResults,
		policy:     policy,
	}
}

// FindSimilarArticles searches for pages related to the query and
// returns up to targetCount filtered candidates, preferring one
// candidate per registered domain. A failed search is logged and
// returns an empty slice, not an error.
func (s *Service) FindSimilarArticles(ctx context.Context, query string, targetCount int) ([]domain.ReferenceCandidate, error) {
	if targetCount < 1 || strings.TrimSpace(query) == "" {
		return nil, nil
	}

	hits, err := retry.DoValue(ctx, s.logger, "reference search", s.policy, func(ctx context.Context) ([]domain.SearchResult, error) {
		return s.provider.Search(ctx, query, s.maxResults)
	})
	if err != nil {
		s.logger.Warn("Reference search failed, continuing without references", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return nil, nil
	}

	candidates := filterHits(hits)
	selected := selectDiverse(candidates, targetCount)

	s.logger.Info("Selected reference candidates", map[string]interface{}{
		"query":      query,
		"hits":       len(hits),
		"candidates": len(candidates),
		"selected":   len(selected),
	})

	return selected, nil
}

// filterHits normalizes raw hits and drops junk: empty fields, invalid
// URLs, excluded domains, file links, too-short titles, and duplicate
// URLs. Order is preserved.
func filterHits(hits []domain.SearchResult) []domain.ReferenceCandidate {
	seen := make(map[string]bool, len(hits))
	candidates := make([]domain.ReferenceCandidate, 0, len(hits))

	for _, hit := range hits {
		url := strings.TrimSpace(hit.URL)
		title := strings.TrimSpace(hit.Title)
		if url == "" || title == "" {
			continue
		}
		if seen[url] {
			continue
		}

		registered, err := domain.RegisteredDomain(url)
		if err != nil {
			continue
		}
		if isExcludedDomain(registered) {
			continue
		}
		if hasExcludedExtension(url) {
			continue
		}
		if len(title) < minTitleLength {
			continue
		}

		seen[url] = true
		candidates = append(candidates, domain.ReferenceCandidate{
			URL:     url,
			Title:   title,
			Snippet: strings.TrimSpace(hit.Snippet),
			Domain:  registered,
		})
	}

	return candidates
}

// isExcludedDomain matches substring in both directions so subdomains
// of excluded sites and bare-host variants are both caught.
func isExcludedDomain(registered string) bool {
	for _, excluded := range excludedDomains {
		if strings.Contains(registered, excluded) || strings.Contains(excluded, registered) {
			return true
		}
	}
	return false
}

func hasExcludedExtension(url string) bool {
	// Strip query and fragment before looking at the extension.
	trimmed := url
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}

	ext := strings.ToLower(path.Ext(trimmed))
	if ext == "" {
		return false
	}
	for _, excluded := range excludedExtensions {
		if ext == excluded {
			return true
		}
	}
	return false
}

// selectDiverse picks up to targetCount candidates, first one per
// registered domain in hit order, then fills remaining slots with
// repeat-domain candidates.
func selectDiverse(candidates []domain.ReferenceCandidate, targetCount int) []domain.ReferenceCandidate {
	if targetCount < 1 {
		return nil
	}

	selected := make([]domain.ReferenceCandidate, 0, targetCount)
	usedDomains := make(map[string]bool)
	usedURLs := make(map[string]bool)

	for _, c := range candidates {
		if len(selected) == targetCount {
			return selected
		}
		if usedDomains[c.Domain] {
			continue
		}
		usedDomains[c.Domain] = true
		usedURLs[c.URL] = true
		selected = append(selected, c)
	}

	for _, c := range candidates {
		if len(selected) == targetCount {
			break
		}
		if usedURLs[c.URL] {
			continue
		}
		usedURLs[c.URL] = true
		selected = append(selected, c)
	}

	return selected
}
