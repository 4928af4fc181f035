package enhancer

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"article-enhancer/core/domain"
	"article-enhancer/core/errors"
	"article-enhancer/pkg/config"
)

type mockChatClient struct {
	completeFunc func(ctx context.Context, prompt string) (string, error)
	calls        int
	lastPrompt   string
}

func (m *mockChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	if m.completeFunc != nil {
		return m.completeFunc(ctx, prompt)
	}
	return "", nil
}

func (m *mockChatClient) Model() string {
	return "test-model"
}

type mockLogger struct{}

func (m *mockLogger) Debug(msg string, fields map[string]interface{}) {}
func (m *mockLogger) Info(msg string, fields map[string]interface{})  {}
func (m *mockLogger) Warn(msg string, fields map[string]interface{})  {}
func (m *mockLogger) Error(msg string, fields map[string]interface{}) {}

func testEnhancementConfig() config.EnhancementConfig {
	return config.EnhancementConfig{
		MinLength:              50,
		ReferenceExcerptLength: 1000,
		SourceExcerptLength:    8000,
		TargetReferences:       2,
	}
}

func newTestService(chat *mockChatClient) *Service {
	return NewService(chat, &mockLogger{}, testEnhancementConfig())
}

func sourceArticle() *domain.SourceArticle {
	return &domain.SourceArticle{
		ID:      "42",
		Title:   "Chatbots for SMBs",
		Content: "Small businesses increasingly deploy chatbots to handle routine customer questions around the clock.",
	}
}

func testReferences() []domain.ExtractedContent {
	return []domain.ExtractedContent{
		{
			URL:       "https://blog.example.com/chatbots-guide",
			Title:     "The complete chatbot guide",
			Content:   strings.Repeat("Reference body text. ", 20),
			Domain:    "blog.example.com",
			Method:    domain.MethodStatic,
			ScrapedAt: time.Now(),
		},
		{
			URL:       "https://news.example.net/ai-smb",
			Title:     "AI tools for small business",
			Content:   strings.Repeat("More reference text. ", 20),
			Domain:    "news.example.net",
			Method:    domain.MethodRendered,
			ScrapedAt: time.Now(),
		},
	}
}

const completionBody = "The body of the enhanced article, expanded well past the minimum length threshold with several sentences of useful material."

func TestEnhance_ExtractsHeadingTitle(t *testing.T) {
	chat := &mockChatClient{
		completeFunc: func(ctx context.Context, prompt string) (string, error) {
			return "# Chatbots That Actually Help SMBs\n\n" + completionBody + "\n\n## References\n\n- [The complete chatbot guide](https://blog.example.com/chatbots-guide) - blog.example.com", nil
		},
	}

	got, err := newTestService(chat).Enhance(context.Background(), sourceArticle(), testReferences(), ModeComprehensive)
	if err != nil {
		t.Fatalf("Enhance returned error: %v", err)
	}

	if got.Title != "Chatbots That Actually Help SMBs" {
		t.Errorf("Title = %q, want the completion's heading", got.Title)
	}
	if strings.Contains(got.Content, "# Chatbots That Actually Help SMBs") {
		t.Error("title heading should be stripped from the body")
	}
	if got.Metadata.SourceArticleID != "42" {
		t.Errorf("SourceArticleID = %q", got.Metadata.SourceArticleID)
	}
	if got.Metadata.ModelUsed != "test-model" {
		t.Errorf("ModelUsed = %q", got.Metadata.ModelUsed)
	}
	if got.Metadata.EnhancementType != ModeComprehensive {
		t.Errorf("EnhancementType = %q", got.Metadata.EnhancementType)
	}
	if len(got.Metadata.References) != 2 {
		t.Errorf("metadata references = %d, want 2", len(got.Metadata.References))
	}
}

func TestEnhance_TitlePrefixAndBoldForms(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"prefix", "Title: Prefixed Title\n\n" + completionBody, "Prefixed Title"},
		{"bold", "**Bold Title**\n\n" + completionBody, "Bold Title"},
		{"none", completionBody, "Chatbots for SMBs"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chat := &mockChatClient{
				completeFunc: func(ctx context.Context, prompt string) (string, error) {
					return tc.raw, nil
				},
			}

			got, err := newTestService(chat).Enhance(context.Background(), sourceArticle(), nil, ModeStructure)
			if err != nil {
				t.Fatalf("Enhance returned error: %v", err)
			}
			if got.Title != tc.want {
				t.Errorf("Title = %q, want %q", got.Title, tc.want)
			}
		})
	}
}

func TestEnhance_AppendsMissingReferencesSection(t *testing.T) {
	chat := &mockChatClient{
		completeFunc: func(ctx context.Context, prompt string) (string, error) {
			return completionBody, nil
		},
	}

	got, err := newTestService(chat).Enhance(context.Background(), sourceArticle(), testReferences(), ModeComprehensive)
	if err != nil {
		t.Fatalf("Enhance returned error: %v", err)
	}

	if !strings.Contains(got.Content, "## References") {
		t.Error("References section should be appended when the completion lacks one")
	}
	if !strings.Contains(got.Content, "- [The complete chatbot guide](https://blog.example.com/chatbots-guide) - blog.example.com") {
		t.Errorf("appended reference entry has wrong format:\n%s", got.Content)
	}
}

func TestEnhance_DoesNotDoubleAppendReferences(t *testing.T) {
	chat := &mockChatClient{
		completeFunc: func(ctx context.Context, prompt string) (string, error) {
			return completionBody + "\n\n## References\n\n- [The complete chatbot guide](https://blog.example.com/chatbots-guide) - blog.example.com", nil
		},
	}

	got, err := newTestService(chat).Enhance(context.Background(), sourceArticle(), testReferences(), ModeComprehensive)
	if err != nil {
		t.Fatalf("Enhance returned error: %v", err)
	}

	if strings.Count(got.Content, "References") != 1 {
		t.Errorf("References should appear once:\n%s", got.Content)
	}
}

func TestEnhance_ZeroReferences(t *testing.T) {
	chat := &mockChatClient{
		completeFunc: func(ctx context.Context, prompt string) (string, error) {
			return completionBody, nil
		},
	}

	got, err := newTestService(chat).Enhance(context.Background(), sourceArticle(), nil, ModeComprehensive)
	if err != nil {
		t.Fatalf("Enhance returned error: %v", err)
	}

	if !strings.Contains(chat.lastPrompt, noReferencesNotice) {
		t.Error("prompt should carry the explicit no-references notice")
	}
	if strings.Contains(got.Content, "## References") {
		t.Error("no References section should be added without references")
	}
	if got.Metadata.References != nil {
		t.Errorf("metadata references = %v, want nil", got.Metadata.References)
	}
}

func TestEnhance_ShortCompletionIsEnhancementError(t *testing.T) {
	chat := &mockChatClient{
		completeFunc: func(ctx context.Context, prompt string) (string, error) {
			return "Too short.", nil
		},
	}

	_, err := newTestService(chat).Enhance(context.Background(), sourceArticle(), nil, ModeComprehensive)
	if !errors.IsEnhancement(err) {
		t.Errorf("Enhance error = %v, want EnhancementError for short completion", err)
	}
}

func TestEnhance_AuthFailureIsNotRetried(t *testing.T) {
	chat := &mockChatClient{
		completeFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", &errors.AuthError{API: "llm"}
		},
	}

	_, err := newTestService(chat).Enhance(context.Background(), sourceArticle(), nil, ModeComprehensive)
	if !errors.IsAuth(err) {
		t.Errorf("Enhance error = %v, want AuthError", err)
	}
	if chat.calls != 1 {
		t.Errorf("Complete called %d times, want 1 for auth failure", chat.calls)
	}
}

func TestEnhance_InvalidSourceArticle(t *testing.T) {
	chat := &mockChatClient{}
	_, err := newTestService(chat).Enhance(context.Background(), &domain.SourceArticle{ID: "1"}, nil, ModeComprehensive)

	if !errors.IsValidation(err) {
		t.Errorf("Enhance error = %v, want ValidationError", err)
	}
	if chat.calls != 0 {
		t.Error("Complete should not be called for an invalid article")
	}
}

func TestEnhance_UnknownModeFallsBackToComprehensive(t *testing.T) {
	chat := &mockChatClient{
		completeFunc: func(ctx context.Context, prompt string) (string, error) {
			return completionBody, nil
		},
	}

	got, err := newTestService(chat).Enhance(context.Background(), sourceArticle(), nil, "aggressive")
	if err != nil {
		t.Fatalf("Enhance returned error: %v", err)
	}
	if got.Metadata.EnhancementType != ModeComprehensive {
		t.Errorf("EnhancementType = %q, want comprehensive fallback", got.Metadata.EnhancementType)
	}
}

func TestBuildPrompt_TruncatesSourceAndReferences(t *testing.T) {
	article := &domain.SourceArticle{
		ID:      "1",
		Title:   "T",
		Content: strings.Repeat("s", 100),
	}
	refs := []domain.ExtractedContent{
		{URL: "https://a.example/x", Title: "Ref", Domain: "a.example", Content: strings.Repeat("r", 100)},
	}

	prompt := buildPrompt(ModeComprehensive, article, refs, 10, 20)

	if strings.Contains(prompt, strings.Repeat("s", 11)) {
		t.Error("source content should be truncated to the excerpt length")
	}
	if strings.Contains(prompt, strings.Repeat("r", 21)) {
		t.Error("reference content should be truncated to the excerpt length")
	}
}

func TestTruncate_RuneBoundary(t *testing.T) {
	// Each é is two bytes; a cut at 5 bytes lands mid-rune.
	got := truncate(strings.Repeat("é", 10), 5)

	if !utf8.ValidString(got) {
		t.Errorf("truncate produced invalid UTF-8: %q", got)
	}
	if len(got) != 4 {
		t.Errorf("truncate length = %d, want 4 (backed up to rune boundary)", len(got))
	}

	if truncate("short", 100) != "short" {
		t.Error("truncate should leave strings under the cap untouched")
	}
}

func TestCleanCompletion(t *testing.T) {
	in := "line one   \n\n\n\n\nline two\t\n"
	want := "line one\n\nline two"

	if got := cleanCompletion(in); got != want {
		t.Errorf("cleanCompletion = %q, want %q", got, want)
	}
}
