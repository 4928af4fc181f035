// ABOUTME: Extraction domain model for scraped reference pages
// ABOUTME: Defines the normalized result shape shared by both scraping strategies

package domain

import "time"

// Extraction method tags. Both strategies produce the same shape so the
// rest of the pipeline never cares which one succeeded.
const (
	MethodStatic   = "static"
	MethodRendered = "rendered"
)

// ExtractedContent is the result of scraping one URL
type ExtractedContent struct {
	// URL is the page that was scraped
	URL string

	// Title is the extracted title, "Untitled" when none was found
	Title string

	// Content is cleaned plain text, whitespace-normalized and length-capped
	Content string

	// Domain is the registered domain of the URL
	Domain string

	// Method is how the content was obtained (static or rendered)
	Method string

	// ScrapedAt is when the extraction completed
	ScrapedAt time.Time
}

// HasSubstantialContent reports whether the extracted text meets the
// minimum-content invariant. A title with no substantial body is a
// failed extraction, not a short success.
func (e *ExtractedContent) HasSubstantialContent(minLength int) bool {
	return len(e.Content) >= minLength
}
