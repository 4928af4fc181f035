// ABOUTME: Custom error types for the enhancement pipeline
// ABOUTME: Provides structured errors so callers can classify failures for retry and reporting

package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ConfigurationError represents an invalid or missing startup setting.
// Always fatal and only raised before the pipeline starts.
type ConfigurationError struct {
	Setting string
	Message string
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for '%s': %s", e.Setting, e.Message)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ExternalAPIError represents an error from an external API
type ExternalAPIError struct {
	StatusCode int
	Message    string
	API        string
}

// Error implements the error interface
func (e *ExternalAPIError) Error() string {
	return fmt.Sprintf("external API error from %s: %d - %s", e.API, e.StatusCode, e.Message)
}

// RateLimitError represents an HTTP 429 with an optional retry-after hint
type RateLimitError struct {
	API        string
	RetryAfter time.Duration
}

// Error implements the error interface
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited by %s, retry after %s", e.API, e.RetryAfter)
	}
	return fmt.Sprintf("rate limited by %s", e.API)
}

// AuthError represents a rejected credential. Never retryable.
type AuthError struct {
	API string
}

// Error implements the error interface
func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for %s", e.API)
}

// ScrapingError represents a URL whose extraction failed after every
// fallback strategy. Carries the per-strategy reasons.
type ScrapingError struct {
	URL     string
	Reasons []string
}

// Error implements the error interface
func (e *ScrapingError) Error() string {
	return fmt.Sprintf("scraping failed for %s: %s", e.URL, strings.Join(e.Reasons, "; "))
}

// EnhancementError represents an LLM call or output that could not be
// turned into a valid enhanced article
type EnhancementError struct {
	Message string
	Err     error
}

// Error implements the error interface
func (e *EnhancementError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("enhancement failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("enhancement failed: %s", e.Message)
}

// Unwrap exposes the underlying cause
func (e *EnhancementError) Unwrap() error {
	return e.Err
}

// IsConfiguration checks if an error is a ConfigurationError
func IsConfiguration(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsExternalAPI checks if an error is an ExternalAPIError
func IsExternalAPI(err error) bool {
	var apiErr *ExternalAPIError
	return errors.As(err, &apiErr)
}

// IsRateLimit checks if an error is a RateLimitError
func IsRateLimit(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr)
}

// IsAuth checks if an error is an AuthError
func IsAuth(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsScraping checks if an error is a ScrapingError
func IsScraping(err error) bool {
	var scrapeErr *ScrapingError
	return errors.As(err, &scrapeErr)
}

// IsEnhancement checks if an error is an EnhancementError
func IsEnhancement(err error) bool {
	var enhErr *EnhancementError
	return errors.As(err, &enhErr)
}

// StatusCode extracts the HTTP status from an ExternalAPIError, or 0
func StatusCode(err error) int {
	var apiErr *ExternalAPIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
