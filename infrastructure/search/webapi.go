// ABOUTME: Web search provider backed by a SerpAPI-shaped JSON endpoint
// ABOUTME: Cache-first with a 24h TTL since queries repeat across scheduled runs

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"article-enhancer/core/domain"
	"article-enhancer/core/errors"
	"article-enhancer/core/interfaces"
)

// WebAPIProvider implements SearchProvider against a JSON search API
// returning organic results shaped as {link, title, snippet}.
type WebAPIProvider struct {
	deps   interfaces.Dependencies
	apiURL string
	apiKey string
}

// NewWebAPIProvider creates a search provider for the given endpoint
func NewWebAPIProvider(deps interfaces.Dependencies, apiURL, apiKey string) *WebAPIProvider {
	return &WebAPIProvider{
		deps:   deps,
		apiURL: apiURL,
		apiKey: apiKey,
	}
}

// Search returns up to maxResults raw hits for the query
func (p *WebAPIProvider) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	cacheKey := fmt.Sprintf("search:web:%s:%d", query, maxResults)
	if p.deps.Cache != nil {
		if data, err := p.deps.Cache.Get(ctx, cacheKey); err == nil && data != nil {
			var cached []domain.SearchResult
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("num", strconv.Itoa(maxResults))
	params.Set("api_key", p.apiKey)

	resp, err := p.deps.HTTPClient.Get(ctx, p.apiURL+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body().Close()

	switch {
	case resp.StatusCode() == 401 || resp.StatusCode() == 403:
		return nil, &errors.AuthError{API: "search"}
	case resp.StatusCode() == 429:
		return nil, &errors.RateLimitError{API: "search", RetryAfter: retryAfter(resp)}
	case resp.StatusCode() != 200:
		return nil, &errors.ExternalAPIError{
			StatusCode: resp.StatusCode(),
			Message:    "search request rejected",
			API:        "search",
		}
	}

	bodyBytes, err := io.ReadAll(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	var apiResponse struct {
		OrganicResults []struct {
			Link    string `json:"link"`
			URL     string `json:"url"`
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
		} `json:"organic_results"`
	}

	if err := json.Unmarshal(bodyBytes, &apiResponse); err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(apiResponse.OrganicResults))
	for _, r := range apiResponse.OrganicResults {
		link := r.Link
		if link == "" {
			link = r.URL
		}
		results = append(results, domain.SearchResult{
			URL:     link,
			Title:   r.Title,
			Snippet: r.Snippet,
		})
		if len(results) >= maxResults {
			break
		}
	}

	if p.deps.Cache != nil && len(results) > 0 {
		if data, err := json.Marshal(results); err == nil {
			_ = p.deps.Cache.Set(ctx, cacheKey, data, 24*time.Hour)
		}
	}

	return results, nil
}

func retryAfter(resp interfaces.Response) time.Duration {
	if v := resp.Header("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}
