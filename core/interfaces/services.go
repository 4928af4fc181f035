// ABOUTME: Service interfaces for the core business logic
// ABOUTME: Defines contracts for the pipeline's external collaborators

package interfaces

import (
	"context"

	"article-enhancer/core/domain"
)

// SearchProvider performs a web search for a text query. Concrete
// providers (search API, RSS feeds) are infrastructure details; the
// reference filtering logic does not depend on them.
type SearchProvider interface {
	// Search returns up to maxResults raw hits for the query.
	Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error)
}

// ChatClient invokes an LLM chat-completion endpoint
type ChatClient interface {
	// Complete sends a single user-role prompt and returns the raw
	// completion text.
	Complete(ctx context.Context, prompt string) (string, error)

	// Model returns the model identifier used for completions.
	Model() string
}

// Renderer loads a page in a real browser and returns the rendered HTML.
// It owns one shared browser instance: lazily launched on first use,
// reused across calls within a run, closed once at run end.
type Renderer interface {
	// RenderHTML navigates to the URL with the given user agent, waits
	// for the page to settle, and returns the live DOM serialized as HTML.
	RenderHTML(ctx context.Context, url string, userAgent string) (string, error)

	// Close tears the browser down. Idempotent.
	Close() error
}

// ArticleSource reads articles from the backend API
type ArticleSource interface {
	// FetchLatest returns the most recently created article, or nil
	// when the collection is empty.
	FetchLatest(ctx context.Context) (*domain.SourceArticle, error)

	// FetchByID returns the article with the given id.
	FetchByID(ctx context.Context, id string) (*domain.SourceArticle, error)
}

// PublishResult identifies a record written through the publish gateway
type PublishResult struct {
	ID          string
	PublishedAt string
}

// ArticlePublisher writes enhanced articles through the backend API
type ArticlePublisher interface {
	// Publish creates a new article record.
	Publish(ctx context.Context, article *domain.EnhancedArticle) (*PublishResult, error)

	// Update overwrites an existing record. Only used when the caller
	// explicitly asks for update semantics.
	Update(ctx context.Context, id string, article *domain.EnhancedArticle) (*PublishResult, error)
}

// PageMetadata holds lightweight metadata scraped from a page head
type PageMetadata struct {
	Title       string
	Description string
	Favicon     string
	Domain      string
}

// MetadataService extracts og-tag metadata from web pages, used to
// enrich reference titles when extraction found none
type MetadataService interface {
	ExtractMetadata(ctx context.Context, url string) (*PageMetadata, error)
}
