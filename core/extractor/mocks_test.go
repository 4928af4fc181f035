package extractor

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"article-enhancer/core/interfaces"
	"article-enhancer/pkg/config"
)

// mockHTTPClient is a mock implementation of the HTTPClient interface
type mockHTTPClient struct {
	getFunc func(ctx context.Context, url string, headers http.Header) (interfaces.Response, error)
}

func (m *mockHTTPClient) Get(ctx context.Context, url string) (interfaces.Response, error) {
	return m.GetWithHeaders(ctx, url, nil)
}

func (m *mockHTTPClient) GetWithHeaders(ctx context.Context, url string, headers http.Header) (interfaces.Response, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, url, headers)
	}
	return nil, nil
}

func (m *mockHTTPClient) Post(ctx context.Context, url string, body io.Reader) (interfaces.Response, error) {
	return nil, nil
}

// mockResponse is a mock implementation of the Response interface
type mockResponse struct {
	statusCode int
	body       string
}

func (m *mockResponse) StatusCode() int {
	return m.statusCode
}

func (m *mockResponse) Body() io.ReadCloser {
	return io.NopCloser(strings.NewReader(m.body))
}

func (m *mockResponse) Header(key string) string {
	return ""
}

// mockRenderer is a mock implementation of the Renderer interface
type mockRenderer struct {
	renderFunc func(ctx context.Context, url string, userAgent string) (string, error)
	closed     bool
}

func (m *mockRenderer) RenderHTML(ctx context.Context, url string, userAgent string) (string, error) {
	if m.renderFunc != nil {
		return m.renderFunc(ctx, url, userAgent)
	}
	return "", nil
}

func (m *mockRenderer) Close() error {
	m.closed = true
	return nil
}

// mockLogger is a no-op implementation of the Logger interface
type mockLogger struct{}

func (m *mockLogger) Debug(msg string, fields map[string]interface{}) {}
func (m *mockLogger) Info(msg string, fields map[string]interface{})  {}
func (m *mockLogger) Warn(msg string, fields map[string]interface{})  {}
func (m *mockLogger) Error(msg string, fields map[string]interface{}) {}

func testScrapingConfig() config.ScrapingConfig {
	return config.ScrapingConfig{
		RequestTimeout:   5 * time.Second,
		SettleDelay:      time.Millisecond,
		MinContentLength: 100,
		MaxContentLength: 50000,
		BatchSize:        3,
		BatchPause:       time.Millisecond,
	}
}

func newTestService(client *mockHTTPClient, renderer interfaces.Renderer, cfg config.ScrapingConfig) *Service {
	deps := interfaces.Dependencies{
		HTTPClient: client,
		Logger:     &mockLogger{},
	}
	return NewService(deps, renderer, cfg)
}

// articleHTML builds a fixture page with an article body long enough to
// pass the minimum-content gate.
func articleHTML(title, body string) string {
	return `<html><head><title>Head title</title></head><body>
<nav>Site navigation links</nav>
<header>Masthead</header>
<div class="cookie-banner">We use cookies</div>
<article>
<h1>` + title + `</h1>
<p>` + body + `</p>
<p>` + body + `</p>
<p>` + body + `</p>
</article>
<footer>Footer text</footer>
<script>analytics()</script>
</body></html>`
}

const fixtureParagraph = "The quick brown fox jumps over the lazy dog while the market for small-business chat automation keeps growing at a steady pace every quarter."
