// ABOUTME: Standard HTTP client implementation with timeout, redirect cap and pacing
// ABOUTME: Retry lives at call sites via pkg/retry; this client does one attempt per call

package standard

import (
	"context"
	"io"
	"net/http"

	"time"

	"article-enhancer/core/interfaces"
	"golang.org/x/time/rate"
)

const (
	defaultUserAgent = "article-enhancer/1.0"
	maxRedirects     = 5
)

// Client implements the HTTPClient interface using the standard library.
// An optional rate limiter paces outbound requests; the scraping client
// uses it to avoid bursty request patterns against reference sites.
type Client struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient creates an HTTP client with the specified timeout
func NewClient(timeout time.Duration) *Client {
	return &Client{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// NewScrapingClient creates a client that additionally paces requests at
// requestsPerSecond, for outbound page fetches.
func NewScrapingClient(timeout time.Duration, requestsPerSecond float64) *Client {
	c := NewClient(timeout)
	if requestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return c
}

// Get performs an HTTP GET request
func (c *Client) Get(ctx context.Context, url string) (interfaces.Response, error) {
	return c.GetWithHeaders(ctx, url, nil)
}

// GetWithHeaders performs a GET with extra request headers
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers http.Header) (interfaces.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", defaultUserAgent)
	for key, values := range headers {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	return c.do(ctx, req)
}

// Post performs an HTTP POST request with a JSON body
func (c *Client) Post(ctx context.Context, url string, body io.Reader) (interfaces.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Content-Type", "application/json")

	return c.do(ctx, req)
}

func (c *Client) do(ctx context.Context, req *http.Request) (interfaces.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	return &httpResponse{
		statusCode: resp.StatusCode,
		body:       resp.Body,
		headers:    resp.Header,
	}, nil
}

// httpResponse implements the Response interface
type httpResponse struct {
	statusCode int
	body       io.ReadCloser
	headers    http.Header
}

// StatusCode returns the HTTP status code
func (r *httpResponse) StatusCode() int {
	return r.statusCode
}

// Body returns the response body
func (r *httpResponse) Body() io.ReadCloser {
	return r.body
}

// Header returns the value of the specified header
func (r *httpResponse) Header(key string) string {
	return r.headers.Get(key)
}
