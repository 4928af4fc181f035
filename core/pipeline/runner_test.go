package pipeline

import (
	"context"
	"testing"

	"article-enhancer/core/domain"
	"article-enhancer/core/errors"
	"article-enhancer/core/interfaces"
	"article-enhancer/pkg/config"
)

type mockSource struct {
	latestFunc func(ctx context.Context) (*domain.SourceArticle, error)
	byIDFunc   func(ctx context.Context, id string) (*domain.SourceArticle, error)
}

func (m *mockSource) FetchLatest(ctx context.Context) (*domain.SourceArticle, error) {
	if m.latestFunc != nil {
		return m.latestFunc(ctx)
	}
	return testArticle(), nil
}

func (m *mockSource) FetchByID(ctx context.Context, id string) (*domain.SourceArticle, error) {
	if m.byIDFunc != nil {
		return m.byIDFunc(ctx, id)
	}
	return testArticle(), nil
}

type mockFinder struct {
	findFunc func(ctx context.Context, query string, targetCount int) ([]domain.ReferenceCandidate, error)
	query    string
}

func (m *mockFinder) FindSimilarArticles(ctx context.Context, query string, targetCount int) ([]domain.ReferenceCandidate, error) {
	m.query = query
	if m.findFunc != nil {
		return m.findFunc(ctx, query, targetCount)
	}
	return nil, nil
}

type mockExtractor struct {
	extractFunc func(ctx context.Context, urls []string) ([]domain.ExtractedContent, error)
	urls        []string
}

func (m *mockExtractor) ExtractMany(ctx context.Context, urls []string) ([]domain.ExtractedContent, error) {
	m.urls = urls
	if m.extractFunc != nil {
		return m.extractFunc(ctx, urls)
	}
	return nil, nil
}

type mockEnhancer struct {
	enhanceFunc func(ctx context.Context, article *domain.SourceArticle, references []domain.ExtractedContent, mode string) (*domain.EnhancedArticle, error)
	references  []domain.ExtractedContent
}

func (m *mockEnhancer) Enhance(ctx context.Context, article *domain.SourceArticle, references []domain.ExtractedContent, mode string) (*domain.EnhancedArticle, error) {
	m.references = references
	if m.enhanceFunc != nil {
		return m.enhanceFunc(ctx, article, references, mode)
	}
	return &domain.EnhancedArticle{Title: article.Title, Content: "enhanced"}, nil
}

type mockPublisher struct {
	publishFunc func(ctx context.Context, article *domain.EnhancedArticle) (*interfaces.PublishResult, error)
	updateFunc  func(ctx context.Context, id string, article *domain.EnhancedArticle) (*interfaces.PublishResult, error)
	published   int
	updated     int
}

func (m *mockPublisher) Publish(ctx context.Context, article *domain.EnhancedArticle) (*interfaces.PublishResult, error) {
	m.published++
	if m.publishFunc != nil {
		return m.publishFunc(ctx, article)
	}
	return &interfaces.PublishResult{ID: "100"}, nil
}

func (m *mockPublisher) Update(ctx context.Context, id string, article *domain.EnhancedArticle) (*interfaces.PublishResult, error) {
	m.updated++
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, article)
	}
	return &interfaces.PublishResult{ID: id}, nil
}

type mockRenderer struct {
	closed int
}

func (m *mockRenderer) RenderHTML(ctx context.Context, url string, userAgent string) (string, error) {
	return "", nil
}

func (m *mockRenderer) Close() error {
	m.closed++
	return nil
}

type mockLogger struct{}

func (m *mockLogger) Debug(msg string, fields map[string]interface{}) {}
func (m *mockLogger) Info(msg string, fields map[string]interface{})  {}
func (m *mockLogger) Warn(msg string, fields map[string]interface{})  {}
func (m *mockLogger) Error(msg string, fields map[string]interface{}) {}

func testArticle() *domain.SourceArticle {
	return &domain.SourceArticle{ID: "42", Title: "Chatbots for SMBs", Content: "original content"}
}

type runnerMocks struct {
	source    *mockSource
	finder    *mockFinder
	extractor *mockExtractor
	enhancer  *mockEnhancer
	publisher *mockPublisher
	renderer  *mockRenderer
}

func newTestRunner() (*Runner, *runnerMocks) {
	m := &runnerMocks{
		source:    &mockSource{},
		finder:    &mockFinder{},
		extractor: &mockExtractor{},
		enhancer:  &mockEnhancer{},
		publisher: &mockPublisher{},
		renderer:  &mockRenderer{},
	}
	runner := NewRunner(
		m.source, m.finder, m.extractor, nil, m.enhancer, m.publisher, m.renderer,
		&mockLogger{}, config.PipelineConfig{}, 2,
	)
	return runner, m
}

func TestRun_FullPipelinePublishes(t *testing.T) {
	runner, m := newTestRunner()

	m.finder.findFunc = func(ctx context.Context, query string, targetCount int) ([]domain.ReferenceCandidate, error) {
		return []domain.ReferenceCandidate{
			{URL: "https://a.example/one", Title: "One", Domain: "a.example"},
			{URL: "https://b.example/two", Title: "Two", Domain: "b.example"},
		}, nil
	}
	m.extractor.extractFunc = func(ctx context.Context, urls []string) ([]domain.ExtractedContent, error) {
		return []domain.ExtractedContent{
			{URL: urls[0], Title: "One", Content: "ref text", Domain: "a.example"},
		}, nil
	}

	summary, err := runner.Run(context.Background(), Options{Mode: "comprehensive", Publish: true})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if m.finder.query != "Chatbots for SMBs" {
		t.Errorf("search query = %q, want the article title", m.finder.query)
	}
	if summary.Candidates != 2 {
		t.Errorf("Candidates = %d, want 2", summary.Candidates)
	}
	if summary.ScrapedOK != 1 || summary.ScrapedFailed != 1 {
		t.Errorf("scraped ok/failed = %d/%d, want 1/1", summary.ScrapedOK, summary.ScrapedFailed)
	}
	if summary.PublishedID != "100" {
		t.Errorf("PublishedID = %q", summary.PublishedID)
	}
	if m.publisher.published != 1 || m.publisher.updated != 0 {
		t.Errorf("publish/update calls = %d/%d, want 1/0", m.publisher.published, m.publisher.updated)
	}
	if m.renderer.closed != 1 {
		t.Errorf("renderer closed %d times, want exactly 1", m.renderer.closed)
	}
	if summary.Err != nil {
		t.Errorf("summary.Err = %v, want nil", summary.Err)
	}
}

func TestRun_DryRunSkipsPublish(t *testing.T) {
	runner, m := newTestRunner()

	summary, err := runner.Run(context.Background(), Options{Mode: "structure", Publish: false})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if m.publisher.published != 0 || m.publisher.updated != 0 {
		t.Error("dry run must not call the publish gateway")
	}
	if summary.PublishedID != "" {
		t.Errorf("PublishedID = %q, want empty", summary.PublishedID)
	}
}

func TestRun_UpdateInPlace(t *testing.T) {
	runner, m := newTestRunner()

	summary, err := runner.Run(context.Background(), Options{Publish: true, UpdateInPlace: true})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if m.publisher.updated != 1 || m.publisher.published != 0 {
		t.Errorf("publish/update calls = %d/%d, want 0/1", m.publisher.published, m.publisher.updated)
	}
	if summary.PublishedID != "42" {
		t.Errorf("PublishedID = %q, want source id on update", summary.PublishedID)
	}
}

func TestRun_FetchByIDWhenRequested(t *testing.T) {
	runner, m := newTestRunner()

	var fetchedID string
	m.source.byIDFunc = func(ctx context.Context, id string) (*domain.SourceArticle, error) {
		fetchedID = id
		return testArticle(), nil
	}

	if _, err := runner.Run(context.Background(), Options{ArticleID: "7"}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if fetchedID != "7" {
		t.Errorf("FetchByID called with %q, want 7", fetchedID)
	}
}

func TestRun_EmptyBackendIsNotFound(t *testing.T) {
	runner, m := newTestRunner()
	m.source.latestFunc = func(ctx context.Context) (*domain.SourceArticle, error) {
		return nil, nil
	}

	summary, err := runner.Run(context.Background(), Options{})
	if !errors.IsNotFound(err) {
		t.Errorf("Run error = %v, want NotFoundError for empty backend", err)
	}
	if summary.Step != StepFetch {
		t.Errorf("summary.Step = %q, want fetch", summary.Step)
	}
}

func TestRun_EnhanceFailureRecordsStepAndCleansUp(t *testing.T) {
	runner, m := newTestRunner()
	m.enhancer.enhanceFunc = func(ctx context.Context, article *domain.SourceArticle, references []domain.ExtractedContent, mode string) (*domain.EnhancedArticle, error) {
		return nil, &errors.EnhancementError{Message: "model refused"}
	}

	summary, err := runner.Run(context.Background(), Options{Publish: true})
	if !errors.IsEnhancement(err) {
		t.Fatalf("Run error = %v, want EnhancementError", err)
	}

	if summary.Step != StepEnhance {
		t.Errorf("summary.Step = %q, want enhance", summary.Step)
	}
	if summary.Err == nil {
		t.Error("summary.Err should record the terminal error")
	}
	if m.renderer.closed != 1 {
		t.Error("cleanup must run on the failure path")
	}
	if m.publisher.published != 0 {
		t.Error("publish must not run after a failed enhancement")
	}
}

func TestRun_ZeroCandidatesStillEnhances(t *testing.T) {
	runner, m := newTestRunner()

	if _, err := runner.Run(context.Background(), Options{}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if m.extractor.urls != nil {
		t.Errorf("extractor called with %v, want no call for zero candidates", m.extractor.urls)
	}
	if m.enhancer.references != nil {
		t.Errorf("enhancer references = %v, want nil", m.enhancer.references)
	}
}

func TestRunBatch_ContinueOnError(t *testing.T) {
	runner, m := newTestRunner()

	calls := 0
	m.source.latestFunc = func(ctx context.Context) (*domain.SourceArticle, error) {
		calls++
		if calls == 1 {
			return nil, &errors.ExternalAPIError{StatusCode: 400, Message: "bad", API: "backend"}
		}
		return testArticle(), nil
	}

	summaries, err := runner.RunBatch(context.Background(), 3, Options{}, true)
	if err != nil {
		t.Fatalf("RunBatch returned error with continue-on-error: %v", err)
	}

	if len(summaries) != 3 {
		t.Fatalf("got %d summaries, want 3", len(summaries))
	}
	if summaries[0].Err == nil {
		t.Error("first summary should record the failure")
	}
	if summaries[1].Err != nil || summaries[2].Err != nil {
		t.Error("later runs should succeed")
	}
}

func TestRunBatch_AbortsWithoutContinueOnError(t *testing.T) {
	runner, m := newTestRunner()
	m.source.latestFunc = func(ctx context.Context) (*domain.SourceArticle, error) {
		return nil, &errors.AuthError{API: "backend"}
	}

	summaries, err := runner.RunBatch(context.Background(), 3, Options{}, false)
	if err == nil {
		t.Fatal("RunBatch should propagate the first failure")
	}
	if len(summaries) != 1 {
		t.Errorf("got %d summaries, want 1", len(summaries))
	}
}

func TestRemediation(t *testing.T) {
	cases := []struct {
		step string
		err  error
		want string
	}{
		{StepEnhance, &errors.AuthError{API: "llm"}, "check LLM_API_KEY"},
		{StepSearch, &errors.AuthError{API: "search"}, "check SEARCH_API_KEY"},
		{StepPublish, &errors.AuthError{API: "backend"}, "check BACKEND_API_TOKEN"},
		{StepFetch, &errors.NotFoundError{Resource: "article", ID: "9"}, "verify the article id exists in the backend"},
		{StepScrape, &errors.ScrapingError{URL: "u"}, ""},
	}

	for _, tc := range cases {
		if got := Remediation(tc.step, tc.err); got != tc.want {
			t.Errorf("Remediation(%s, %v) = %q, want %q", tc.step, tc.err, got, tc.want)
		}
	}
}
