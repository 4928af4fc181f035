// ABOUTME: Content rewriter service, prompts the LLM and cleans its completion
// ABOUTME: Guarantees the substantial-length invariant and the References section

package enhancer

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"article-enhancer/core/domain"
	"article-enhancer/core/errors"
	"article-enhancer/core/interfaces"
	"article-enhancer/pkg/config"
	"article-enhancer/pkg/retry"
)

// Service rewrites a source article using scraped reference texts and
// an LLM completion endpoint.
type Service struct {
	chat   interfaces.ChatClient
	logger interfaces.Logger
	cfg    config.EnhancementConfig
	policy retry.Policy
}

// NewService creates a content rewriter
func NewService(chat interfaces.ChatClient, logger interfaces.Logger, cfg config.EnhancementConfig) *Service {
	return &Service{
		chat:   chat,
		logger: logger,
		cfg:    cfg,
		policy: retry.DefaultPolicy(),
	}
}

// Enhance rewrites the article in the given mode, using the reference
// texts as context. The returned article always satisfies the minimum
// length invariant and, when references exist, carries a References
// section; violations surface as EnhancementError.
func (s *Service) Enhance(ctx context.Context, article *domain.SourceArticle, references []domain.ExtractedContent, mode string) (*domain.EnhancedArticle, error) {
	if article == nil || !article.IsValid() {
		return nil, &errors.ValidationError{Field: "article", Message: "title and content are required"}
	}

	mode = NormalizeMode(mode)
	prompt := buildPrompt(mode, article, references, s.cfg.SourceExcerptLength, s.cfg.ReferenceExcerptLength)

	s.logger.Info("Requesting enhancement", map[string]interface{}{
		"article_id": article.ID,
		"mode":       mode,
		"references": len(references),
		"model":      s.chat.Model(),
	})

	raw, err := retry.DoValue(ctx, s.logger, "llm completion", s.policy, func(ctx context.Context) (string, error) {
		return s.chat.Complete(ctx, prompt)
	})
	if err != nil {
		if errors.IsAuth(err) || errors.IsEnhancement(err) {
			return nil, err
		}
		return nil, &errors.EnhancementError{Message: "completion failed", Err: err}
	}

	title, content := splitTitle(raw)
	if title == "" {
		title = article.Title
	}
	content = cleanCompletion(content)

	if len(references) > 0 && !hasReferencesHeading(content) {
		content = content + "\n\n## References\n\n" + formatReferenceList(references)
	}

	if len(content) < s.cfg.MinLength {
		return nil, &errors.EnhancementError{
			Message: fmt.Sprintf("enhanced content too short (%d chars, need %d)", len(content), s.cfg.MinLength),
		}
	}

	return &domain.EnhancedArticle{
		Title:   title,
		Content: content,
		Metadata: domain.EnhancementMetadata{
			SourceArticleID: article.ID,
			EnhancedAt:      time.Now().UTC(),
			ModelUsed:       s.chat.Model(),
			EnhancementType: mode,
			References:      toReferences(references),
		},
	}, nil
}

var (
	headingTitleRe = regexp.MustCompile(`^#{1,6}\s+(.+?)\s*$`)
	prefixTitleRe  = regexp.MustCompile(`(?i)^title:\s*(.+?)\s*$`)
	boldTitleRe    = regexp.MustCompile(`^\*\*(.+?)\*\*$`)
	referencesRe   = regexp.MustCompile(`(?im)^(#{1,6}\s*|\*\*)?references\b`)
)

// splitTitle pulls a title out of the completion's first non-empty line
// when the model wrote one (heading markup, a "Title:" prefix, or a
// bold-wrapped line), returning the remaining body. Models echo the
// source title in these shapes often enough that leaving the line in
// place would duplicate it in the published article.
func splitTitle(raw string) (string, string) {
	lines := strings.Split(raw, "\n")

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		for _, re := range []*regexp.Regexp{headingTitleRe, prefixTitleRe, boldTitleRe} {
			if m := re.FindStringSubmatch(trimmed); m != nil {
				rest := strings.Join(lines[i+1:], "\n")
				return strings.TrimSpace(m[1]), rest
			}
		}
		break
	}

	return "", raw
}

var blankRunRe = regexp.MustCompile(`\n{3,}`)

// cleanCompletion trims trailing whitespace per line and collapses runs
// of blank lines to one blank line.
func cleanCompletion(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	out := strings.Join(lines, "\n")
	out = blankRunRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

func hasReferencesHeading(content string) bool {
	return referencesRe.MatchString(content)
}

// formatReferenceList renders references as "- [Title](url) - domain"
func formatReferenceList(references []domain.ExtractedContent) string {
	items := make([]string, 0, len(references))
	for _, ref := range references {
		items = append(items, fmt.Sprintf("- [%s](%s) - %s", ref.Title, ref.URL, ref.Domain))
	}
	return strings.Join(items, "\n")
}

func toReferences(references []domain.ExtractedContent) []domain.Reference {
	if len(references) == 0 {
		return nil
	}

	out := make([]domain.Reference, 0, len(references))
	for _, ref := range references {
		out = append(out, domain.Reference{
			Title:  ref.Title,
			Domain: ref.Domain,
			URL:    ref.URL,
		})
	}
	return out
}
