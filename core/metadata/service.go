// ABOUTME: Page metadata service for enriching reference candidates
// ABOUTME: Uses colly to scrape Open Graph tags and favicons from page heads

package metadata

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"

	"article-enhancer/core/domain"
	"article-enhancer/core/interfaces"
)

const (
	collyUserAgent = "facebookexternalhit/1.1 (+http://www.facebook.com/externalhit_uatext.php)"

	metadataCacheTTL = 24 * time.Hour
)

// Service extracts lightweight head metadata (og tags, favicon) from
// pages. Used to fill in reference titles when content extraction found
// none worth keeping.
type Service struct {
	deps    interfaces.Dependencies
	timeout time.Duration
}

// NewService creates a metadata service
func NewService(deps interfaces.Dependencies, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{deps: deps, timeout: timeout}
}

// ExtractMetadata fetches and parses the page head for one URL.
// Results are cached for 24 hours; failures yield an empty result, not
// an error, since metadata is best-effort enrichment.
func (s *Service) ExtractMetadata(ctx context.Context, targetURL string) (*interfaces.PageMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.deps.Cache != nil {
		cacheKey := "metadata:" + targetURL
		if data, err := s.deps.Cache.Get(ctx, cacheKey); err == nil && data != nil {
			var result interfaces.PageMetadata
			if err := json.Unmarshal(data, &result); err == nil {
				return &result, nil
			}
		}
	}

	result := s.extractFromURL(targetURL)

	if s.deps.Cache != nil && result != nil {
		cacheKey := "metadata:" + targetURL
		if data, err := json.Marshal(result); err == nil {
			_ = s.deps.Cache.Set(ctx, cacheKey, data, metadataCacheTTL)
		}
	}

	return result, nil
}

// extractFromURL performs the actual scrape
func (s *Service) extractFromURL(targetURL string) *interfaces.PageMetadata {
	if targetURL == "" || targetURL == "about:blank" {
		return nil
	}

	result := &interfaces.PageMetadata{}
	if registered, err := domain.RegisteredDomain(targetURL); err == nil {
		result.Domain = registered
	}

	c := colly.NewCollector(
		colly.UserAgent(collyUserAgent),
		colly.MaxBodySize(5*1024*1024),
		colly.Async(false),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnHTML("meta", func(e *colly.HTMLElement) {
		property := e.Attr("property")
		content := e.Attr("content")
		if content == "" {
			return
		}

		switch property {
		case "og:title":
			if result.Title == "" {
				result.Title = strings.TrimSpace(content)
			}
		case "og:description":
			if result.Description == "" {
				result.Description = strings.TrimSpace(content)
			}
		}
	})

	c.OnHTML("head", func(e *colly.HTMLElement) {
		if result.Title == "" {
			if title := e.DOM.Find("title").First().Text(); title != "" {
				result.Title = strings.TrimSpace(title)
			}
		}

		if result.Description == "" {
			e.DOM.Find("meta[name='description']").Each(func(_ int, sel *goquery.Selection) {
				if content, exists := sel.Attr("content"); exists && content != "" {
					result.Description = strings.TrimSpace(content)
				}
			})
		}

		e.DOM.Find("link[rel]").Each(func(_ int, sel *goquery.Selection) {
			rel := sel.AttrOr("rel", "")
			href := sel.AttrOr("href", "")
			for _, rv := range strings.Fields(rel) {
				if rv == "icon" || rv == "shortcut" || rv == "apple-touch-icon" {
					if href != "" && result.Favicon == "" {
						result.Favicon = e.Request.AbsoluteURL(href)
					}
				}
			}
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		s.deps.Logger.Debug("Metadata fetch failed", map[string]interface{}{
			"url":    targetURL,
			"error":  err.Error(),
			"status": r.StatusCode,
		})
	})

	if err := c.Visit(targetURL); err != nil {
		s.deps.Logger.Debug("Metadata visit failed", map[string]interface{}{
			"url":   targetURL,
			"error": err.Error(),
		})
		return result
	}

	return result
}
