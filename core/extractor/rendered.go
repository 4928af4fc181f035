// ABOUTME: Rendered extraction strategy backed by the shared headless browser
// ABOUTME: Same post-processing as the static path, run against the live DOM

package extractor

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractRendered loads the page in the shared browser, waits for it to
// settle, and runs the shared post-processing against the rendered DOM.
func (s *Service) extractRendered(ctx context.Context, pageURL, userAgent string) (string, string, error) {
	if s.renderer == nil {
		return "", "", fmt.Errorf("no renderer configured")
	}

	html, err := s.renderer.RenderHTML(ctx, pageURL, userAgent)
	if err != nil {
		return "", "", fmt.Errorf("render failed: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", fmt.Errorf("parse rendered html: %w", err)
	}

	title, content := extractFromDocument(doc, s.cfg.MaxContentLength)

	if len(content) < s.cfg.MinContentLength {
		return "", "", fmt.Errorf("insufficient rendered content (%d chars, need %d)", len(content), s.cfg.MinContentLength)
	}

	return title, content, nil
}
