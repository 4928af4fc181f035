// ABOUTME: Article domain models for the enhancement pipeline
// ABOUTME: Defines source articles, enhanced output, and per-run reporting

package domain

import "time"

// SourceArticle is the article to enhance, fetched once per run from the
// backend. It is a read-only snapshot and is never mutated by the pipeline.
type SourceArticle struct {
	// ID is the backend identifier, normalized to a string
	ID string

	// Title is the article headline
	Title string

	// Content is the article body, may contain markup
	Content string

	// Author is the original author, optional
	Author string
}

// IsValid checks if the source article has the fields the pipeline requires
func (a *SourceArticle) IsValid() bool {
	if a.Title == "" {
		return false
	}

	if a.Content == "" {
		return false
	}

	return true
}

// Reference is a citation entry attached to an enhanced article
type Reference struct {
	// Title is the reference page title
	Title string `json:"title"`

	// Domain is the registered domain of the reference URL
	Domain string `json:"domain"`

	// URL is the reference page URL
	URL string `json:"url"`
}

// EnhancementMetadata describes how an enhanced article was produced
type EnhancementMetadata struct {
	// SourceArticleID is the ID of the article that was enhanced
	SourceArticleID string `json:"source_article_id"`

	// EnhancedAt is when the enhancement completed
	EnhancedAt time.Time `json:"enhanced_at"`

	// ModelUsed is the LLM model identifier
	ModelUsed string `json:"model_used"`

	// EnhancementType is the prompt mode used (structure/seo/comprehensive)
	EnhancementType string `json:"enhancement_type"`

	// References lists the cited source pages
	References []Reference `json:"references"`
}

// EnhancedArticle is the rewritten article ready for publishing
type EnhancedArticle struct {
	// Title is the possibly-improved headline
	Title string

	// Content is markdown-ish text with headings and a trailing
	// References section when references were scraped
	Content string

	// Metadata records provenance of the enhancement
	Metadata EnhancementMetadata
}

// RunSummary aggregates one pipeline execution for reporting
type RunSummary struct {
	// StartedAt is when the run began
	StartedAt time.Time

	// FinishedAt is when the run ended, success or failure
	FinishedAt time.Time

	// Candidates is the number of reference candidates selected from the
	// search results
	Candidates int

	// ScrapedOK is the number of reference URLs extracted successfully
	ScrapedOK int

	// ScrapedFailed is the number of reference URLs that failed extraction
	ScrapedFailed int

	// PublishedID is the backend id of the published record, if any
	PublishedID string

	// Step is the pipeline step that was executing when the run ended
	Step string

	// Err is the terminal error, nil on success
	Err error
}
