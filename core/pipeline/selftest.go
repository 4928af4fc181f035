// ABOUTME: Connectivity self-test for every external collaborator
// ABOUTME: Checks backend, search, LLM, and the headless browser launch

package pipeline

import (
	"context"

	"article-enhancer/core/interfaces"
)

// CheckResult is one self-test check outcome
type CheckResult struct {
	Name string
	Err  error
}

const selfTestUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

// SelfTest exercises each external collaborator once: backend read,
// search query, LLM completion, and a browser launch. Results come back
// in check order; a nil renderer is reported as a failure since the
// rendered fallback would be unavailable mid-run.
func SelfTest(ctx context.Context, source interfaces.ArticleSource, provider interfaces.SearchProvider, chat interfaces.ChatClient, renderer interfaces.Renderer) []CheckResult {
	results := make([]CheckResult, 0, 4)

	_, err := source.FetchLatest(ctx)
	results = append(results, CheckResult{Name: "backend", Err: err})

	_, err = provider.Search(ctx, "connectivity test", 1)
	results = append(results, CheckResult{Name: "search", Err: err})

	_, err = chat.Complete(ctx, "Reply with the single word OK.")
	results = append(results, CheckResult{Name: "llm", Err: err})

	results = append(results, CheckResult{Name: "browser", Err: checkBrowser(ctx, renderer)})

	return results
}

// checkBrowser forces a launch by rendering a blank page, then tears
// the browser back down so the self-test leaves no process behind.
func checkBrowser(ctx context.Context, renderer interfaces.Renderer) error {
	if renderer == nil {
		return &noRendererError{}
	}

	_, err := renderer.RenderHTML(ctx, "about:blank", selfTestUserAgent)
	if closeErr := renderer.Close(); err == nil {
		err = closeErr
	}
	return err
}

type noRendererError struct{}

func (e *noRendererError) Error() string {
	return "no browser renderer configured"
}
