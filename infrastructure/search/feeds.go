// ABOUTME: RSS feed-backed search provider for degraded mode
// ABOUTME: Scans configured feeds and keyword-matches titles when no search API key is set

package search

import (
	"context"
	"strings"

	"article-enhancer/core/domain"
	"article-enhancer/core/interfaces"

	"github.com/mmcdole/gofeed"
)

// FeedProvider implements SearchProvider by scanning configured RSS
// feeds for items whose titles share keywords with the query. Quality is
// lower than a real search API but keeps the pipeline running without one.
type FeedProvider struct {
	feeds  []string
	logger interfaces.Logger
	parser *gofeed.Parser
}

// NewFeedProvider creates a feed-backed search provider
func NewFeedProvider(feeds []string, logger interfaces.Logger) *FeedProvider {
	return &FeedProvider{
		feeds:  feeds,
		logger: logger,
		parser: gofeed.NewParser(),
	}
}

// Search scans every configured feed and returns matching items. Feeds
// that fail to parse are logged and skipped; the provider only fails
// when no feed could be read at all.
func (p *FeedProvider) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	keywords := queryKeywords(query)

	var results []domain.SearchResult
	var lastErr error
	parsed := 0

	for _, feedURL := range p.feeds {
		feed, err := p.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			lastErr = err
			p.logger.Warn("Failed to parse feed", map[string]interface{}{
				"feed":  feedURL,
				"error": err.Error(),
			})
			continue
		}
		parsed++

		for _, item := range feed.Items {
			if item.Link == "" || item.Title == "" {
				continue
			}
			if !matchesKeywords(item.Title, keywords) {
				continue
			}

			results = append(results, domain.SearchResult{
				URL:     item.Link,
				Title:   item.Title,
				Snippet: item.Description,
			})
			if len(results) >= maxResults {
				return results, nil
			}
		}
	}

	if parsed == 0 && lastErr != nil {
		return nil, lastErr
	}

	return results, nil
}

// queryKeywords lowercases the query and keeps words long enough to be
// meaningful matches
func queryKeywords(query string) []string {
	var keywords []string
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if len(word) >= 4 {
			keywords = append(keywords, word)
		}
	}
	return keywords
}

func matchesKeywords(title string, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}

	lower := strings.ToLower(title)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
