// ABOUTME: Headless browser session for the rendered extraction strategy
// ABOUTME: One shared rod instance, lazily launched, reused within a run, closed once

package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"article-enhancer/core/interfaces"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

const (
	viewportWidth  = 1280
	viewportHeight = 800
)

// Session owns the process-wide headless browser. The launch is deferred
// to the first RenderHTML call so runs that never need the rendered
// fallback pay no browser startup cost.
type Session struct {
	settleDelay time.Duration
	logger      interfaces.Logger

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

var _ interfaces.Renderer = (*Session)(nil)

// NewSession creates a browser session. settleDelay is the extra wait
// after navigation for deferred rendering.
func NewSession(settleDelay time.Duration, logger interfaces.Logger) *Session {
	return &Session{
		settleDelay: settleDelay,
		logger:      logger,
	}
}

// RenderHTML navigates to the URL in a fresh page and returns the live
// DOM serialized as HTML once network activity has settled.
func (s *Session) RenderHTML(ctx context.Context, url string, userAgent string) (string, error) {
	browser, err := s.ensureBrowser()
	if err != nil {
		return "", fmt.Errorf("launch browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return "", fmt.Errorf("open page: %w", err)
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			s.logger.Debug("Failed to close page", map[string]interface{}{
				"url":   url,
				"error": closeErr.Error(),
			})
		}
	}()

	page = page.Context(ctx)

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: userAgent}); err != nil {
		return "", fmt.Errorf("set user agent: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidth,
		Height:            viewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		return "", fmt.Errorf("set viewport: %w", err)
	}

	if err := page.Navigate(url); err != nil {
		return "", fmt.Errorf("navigate: %w", err)
	}

	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("wait load: %w", err)
	}

	// Give deferred scripts a moment to populate the DOM.
	select {
	case <-time.After(s.settleDelay):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("serialize dom: %w", err)
	}

	return html, nil
}

// ensureBrowser lazily launches the shared browser instance
func (s *Session) ensureBrowser() (*rod.Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser != nil {
		return s.browser, nil
	}

	l := launcher.New().Headless(true)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, err
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, err
	}

	s.logger.Info("Headless browser launched", nil)
	s.launcher = l
	s.browser = browser
	return browser, nil
}

// Close tears the current browser down. Safe to call multiple times and
// on a session that never launched; a later RenderHTML relaunches.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser == nil {
		return nil
	}

	err := s.browser.Close()
	if s.launcher != nil {
		s.launcher.Cleanup()
	}
	s.browser = nil
	s.launcher = nil

	return err
}
