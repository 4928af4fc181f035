// ABOUTME: Static extraction strategy, HTTP GET plus HTML-tree parsing
// ABOUTME: No JavaScript execution; readability is the last-resort body extractor

package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"article-enhancer/core/errors"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

const maxBodyBytes = 5 * 1024 * 1024

// fetchStatic issues a browser-like GET and returns the raw HTML.
// Non-200 statuses become typed errors so the retry predicate and the
// fallback rule can tell a block from a missing page.
func (s *Service) fetchStatic(ctx context.Context, pageURL, userAgent string) ([]byte, error) {
	headers := http.Header{}
	headers.Set("User-Agent", userAgent)
	headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	headers.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.deps.HTTPClient.GetWithHeaders(ctx, pageURL, headers)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body().Close()

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusForbidden:
		return nil, &errors.ExternalAPIError{StatusCode: http.StatusForbidden, Message: "blocked", API: "page"}
	case http.StatusNotFound:
		return nil, &errors.ExternalAPIError{StatusCode: http.StatusNotFound, Message: "not found", API: "page"}
	case http.StatusTooManyRequests:
		return nil, &errors.ExternalAPIError{StatusCode: http.StatusTooManyRequests, Message: "rate limited", API: "page"}
	default:
		return nil, &errors.ExternalAPIError{
			StatusCode: resp.StatusCode(),
			Message:    fmt.Sprintf("unexpected status %d", resp.StatusCode()),
			API:        "page",
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body(), maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}

// extractStatic runs the static strategy once: fetch, parse, shared
// post-processing, minimum-content gate. A page that parses but yields
// no substantial text is a failure, not a short success.
func (s *Service) extractStatic(ctx context.Context, pageURL, userAgent string) (string, string, error) {
	html, err := s.fetchStatic(ctx, pageURL, userAgent)
	if err != nil {
		return "", "", err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", "", fmt.Errorf("parse html: %w", err)
	}

	title, content := extractFromDocument(doc, s.cfg.MaxContentLength)

	if len(content) < s.cfg.MinContentLength {
		// Selector-driven extraction came up short; let readability
		// take one last pass over the original markup.
		if text := s.readabilityText(pageURL, html); len(text) >= s.cfg.MinContentLength {
			content = normalizeText(text, s.cfg.MaxContentLength)
		}
	}

	if len(content) < s.cfg.MinContentLength {
		return "", "", fmt.Errorf("insufficient content (%d chars, need %d)", len(content), s.cfg.MinContentLength)
	}

	return title, content, nil
}

// readabilityText extracts the article text with go-readability
func (s *Service) readabilityText(pageURL string, html []byte) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	article, err := readability.FromReader(bytes.NewReader(html), parsed)
	if err != nil {
		s.deps.Logger.Debug("Readability fallback failed", map[string]interface{}{
			"url":   pageURL,
			"error": err.Error(),
		})
		return ""
	}

	return strings.TrimSpace(article.TextContent)
}
