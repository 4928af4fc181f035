// ABOUTME: Search domain models for reference discovery
// ABOUTME: Defines raw search hits and filtered reference candidates

package domain

// SearchResult represents a raw hit returned by a search provider
type SearchResult struct {
	// URL is the absolute URL of the hit
	URL string

	// Title is the hit's title
	Title string

	// Snippet is a short excerpt, optional
	Snippet string
}

// ReferenceCandidate is a filtered, deduplicated search hit eligible
// for scraping and citation
type ReferenceCandidate struct {
	// URL is the candidate page URL, syntactically valid
	URL string

	// Title is the candidate title from the search hit
	Title string

	// Snippet is the search snippet, optional
	Snippet string

	// Domain is the registered domain, lowercased with "www." stripped
	Domain string
}
