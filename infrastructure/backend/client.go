// ABOUTME: Source and publish gateways for the backend article API
// ABOUTME: Normalizes envelope/bare response shapes and maps HTTP statuses to typed errors

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"article-enhancer/core/domain"
	"article-enhancer/core/errors"
	"article-enhancer/core/interfaces"
	"article-enhancer/pkg/config"
	"article-enhancer/pkg/retry"
)

// Client implements both ArticleSource and ArticlePublisher against the
// backend's JSON CRUD API. Every call runs under the default retry
// policy, so transient 5xx and network failures never abort a run on
// their own.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     interfaces.Logger
	policy     retry.Policy
}

var (
	_ interfaces.ArticleSource    = (*Client)(nil)
	_ interfaces.ArticlePublisher = (*Client)(nil)
)

// NewClient creates a backend API client
func NewClient(cfg config.BackendConfig, timeout time.Duration, logger interfaces.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.APIURL, "/"),
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
		policy: retry.DefaultPolicy(),
	}
}

// articlePayload tolerates both integer and string ids
type articlePayload struct {
	ID      json.RawMessage `json:"id"`
	Title   string          `json:"title"`
	Content string          `json:"content"`
	Author  string          `json:"author"`
}

// FetchLatest requests the most recently created article. Returns nil
// when the collection is empty.
func (c *Client) FetchLatest(ctx context.Context) (*domain.SourceArticle, error) {
	url := c.baseURL + "/articles?per_page=1&sort=created_at&order=desc"

	body, err := retry.DoValue(ctx, c.logger, "backend fetch latest", c.policy, func(ctx context.Context) ([]byte, error) {
		return c.get(ctx, url, "latest")
	})
	if err != nil {
		return nil, err
	}

	payloads, err := decodeArticleList(body)
	if err != nil {
		return nil, err
	}
	if len(payloads) == 0 {
		return nil, nil
	}

	return toSourceArticle(payloads[0])
}

// FetchByID requests one article by identifier
func (c *Client) FetchByID(ctx context.Context, id string) (*domain.SourceArticle, error) {
	url := fmt.Sprintf("%s/articles/%s", c.baseURL, id)

	body, err := retry.DoValue(ctx, c.logger, "backend fetch by id", c.policy, func(ctx context.Context) ([]byte, error) {
		return c.get(ctx, url, id)
	})
	if err != nil {
		return nil, err
	}

	payload, err := decodeArticle(body)
	if err != nil {
		return nil, err
	}

	return toSourceArticle(payload)
}

// publishBody is the write shape the backend expects
type publishBody struct {
	Title       string                     `json:"title"`
	Content     string                     `json:"content"`
	Status      string                     `json:"status"`
	Author      string                     `json:"author,omitempty"`
	Category    string                     `json:"category,omitempty"`
	Tags        []string                   `json:"tags,omitempty"`
	Metadata    domain.EnhancementMetadata `json:"metadata"`
	PublishedAt string                     `json:"published_at"`
}

type publishResponse struct {
	ID          json.RawMessage `json:"id"`
	PublishedAt string          `json:"published_at"`
	UpdatedAt   string          `json:"updated_at"`
}

// Publish creates a new article record
func (c *Client) Publish(ctx context.Context, article *domain.EnhancedArticle) (*interfaces.PublishResult, error) {
	if err := validateForPublish(article); err != nil {
		return nil, err
	}

	body, err := retry.DoValue(ctx, c.logger, "backend publish", c.policy, func(ctx context.Context) ([]byte, error) {
		return c.write(ctx, http.MethodPost, c.baseURL+"/articles", "", article)
	})
	if err != nil {
		return nil, err
	}

	return toPublishResult(body)
}

// Update overwrites an existing record
func (c *Client) Update(ctx context.Context, id string, article *domain.EnhancedArticle) (*interfaces.PublishResult, error) {
	if err := validateForPublish(article); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/articles/%s", c.baseURL, id)

	body, err := retry.DoValue(ctx, c.logger, "backend update", c.policy, func(ctx context.Context) ([]byte, error) {
		return c.write(ctx, http.MethodPut, url, id, article)
	})
	if err != nil {
		return nil, err
	}

	return toPublishResult(body)
}

func (c *Client) get(ctx context.Context, url, id string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, id); err != nil {
		return nil, err
	}

	return io.ReadAll(resp.Body)
}

func (c *Client) write(ctx context.Context, method, url, id string, article *domain.EnhancedArticle) ([]byte, error) {
	payload, err := json.Marshal(publishBody{
		Title:       article.Title,
		Content:     article.Content,
		Status:      "published",
		Metadata:    article.Metadata,
		PublishedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal publish payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, id); err != nil {
		return nil, err
	}

	return io.ReadAll(resp.Body)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// checkStatus maps backend HTTP errors to the pipeline's error taxonomy.
// id is the bare article identifier for not-found reporting.
func (c *Client) checkStatus(resp *http.Response, id string) error {
	switch {
	case resp.StatusCode < 400:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return &errors.NotFoundError{Resource: "article", ID: id}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &errors.AuthError{API: "backend"}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &errors.RateLimitError{API: "backend", RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return parseValidationError(resp.Body)
	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &errors.ExternalAPIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(detail)),
			API:        "backend",
		}
	}
}

// parseValidationError extracts per-field details from a 422 payload
func parseValidationError(body io.Reader) error {
	var payload struct {
		Errors  map[string][]string `json:"errors"`
		Message string              `json:"message"`
	}

	raw, _ := io.ReadAll(io.LimitReader(body, 4096))
	if err := json.Unmarshal(raw, &payload); err == nil && len(payload.Errors) > 0 {
		for field, messages := range payload.Errors {
			return &errors.ValidationError{Field: field, Message: strings.Join(messages, "; ")}
		}
	}

	message := payload.Message
	if message == "" {
		message = "backend rejected the article"
	}
	return &errors.ValidationError{Field: "article", Message: message}
}

// decodeArticleList accepts {data: [...]} envelopes and bare arrays
func decodeArticleList(body []byte) ([]articlePayload, error) {
	var envelope struct {
		Data []articlePayload `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}

	var bare []articlePayload
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, nil
	}

	return nil, &errors.ValidationError{Field: "response", Message: "unrecognized article list shape"}
}

// decodeArticle accepts {data: {...}} envelopes and bare objects
func decodeArticle(body []byte) (articlePayload, error) {
	var envelope struct {
		Data *articlePayload `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Data != nil {
		return *envelope.Data, nil
	}

	var bare articlePayload
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, nil
	}

	return articlePayload{}, &errors.ValidationError{Field: "response", Message: "unrecognized article shape"}
}

// toSourceArticle validates the article schema and normalizes the id
func toSourceArticle(payload articlePayload) (*domain.SourceArticle, error) {
	article := &domain.SourceArticle{
		ID:      normalizeID(payload.ID),
		Title:   strings.TrimSpace(payload.Title),
		Content: payload.Content,
		Author:  payload.Author,
	}

	if article.Title == "" {
		return nil, &errors.ValidationError{Field: "title", Message: "missing or empty"}
	}
	if article.Content == "" {
		return nil, &errors.ValidationError{Field: "content", Message: "missing or empty"}
	}

	return article, nil
}

func toPublishResult(body []byte) (*interfaces.PublishResult, error) {
	var parsed publishResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse publish response: %w", err)
	}

	publishedAt := parsed.PublishedAt
	if publishedAt == "" {
		publishedAt = parsed.UpdatedAt
	}

	return &interfaces.PublishResult{
		ID:          normalizeID(parsed.ID),
		PublishedAt: publishedAt,
	}, nil
}

// normalizeID renders a JSON number or string id as a plain string
func normalizeID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	return strings.Trim(string(raw), `"`)
}

// validateForPublish applies the pre-publish content gate
func validateForPublish(article *domain.EnhancedArticle) error {
	if article == nil || strings.TrimSpace(article.Title) == "" {
		return &errors.ValidationError{Field: "title", Message: "missing or empty"}
	}
	if strings.TrimSpace(article.Content) == "" {
		return &errors.ValidationError{Field: "content", Message: "missing or empty"}
	}
	return nil
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	var secs int
	if _, err := fmt.Sscanf(value, "%d", &secs); err == nil {
		return time.Duration(secs) * time.Second
	}
	return 0
}
