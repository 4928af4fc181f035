// ABOUTME: URL helpers shared by the reference finder and content extractor
// ABOUTME: Normalizes hosts to registered domains for diversity selection and citations

package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// RegisteredDomain extracts the host of an absolute http(s) URL,
// lowercased with any "www." prefix stripped.
func RegisteredDomain(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return "", fmt.Errorf("url %q has no host", rawURL)
	}

	return strings.TrimPrefix(host, "www."), nil
}
