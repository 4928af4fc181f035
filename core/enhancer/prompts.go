// ABOUTME: Prompt templates for the content rewriter, one per enhancement mode
// ABOUTME: Builds the references context block and substitutes it into the template

package enhancer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"article-enhancer/core/domain"
)

// Enhancement modes. Comprehensive is the default and most detailed.
const (
	ModeStructure     = "structure"
	ModeSEO           = "seo"
	ModeComprehensive = "comprehensive"
)

const noReferencesNotice = "No reference articles provided. Work from the original article alone."

// NormalizeMode maps an unknown or empty mode to the comprehensive
// default.
func NormalizeMode(mode string) string {
	switch mode {
	case ModeStructure, ModeSEO, ModeComprehensive:
		return mode
	default:
		return ModeComprehensive
	}
}

const structureTemplate = `Restructure the following article for readability. Add clear section headings, break up long paragraphs, and use lists where the content calls for them. Keep the meaning and facts unchanged; do not add new claims.

Original title: %s

Original article:
%s

%s

Return only the restructured article text.`

const seoTemplate = `Rewrite the following article to be search-engine friendly without sacrificing readability. Use a compelling title, descriptive section headings, and naturally-placed key phrases drawn from the topic. Keep all factual claims from the original.

Original title: %s

Original article:
%s

%s

Return only the rewritten article text, starting with the title as a top-level heading.`

const comprehensiveTemplate = `Rewrite and expand the following article into a thorough, well-structured piece. Requirements:
- Start with the title as a top-level heading.
- Organize the body under descriptive section headings.
- Expand explanations where the original is thin, drawing on the reference articles below for facts and framing.
- Match the tone and register of the reference articles where they are consistent.
- Do not copy sentences from the references; express everything in your own words.
- End with a "References" section listing each reference as "- [Title](url) - domain".

Original title: %s

Original article:
%s

%s

Return only the final article text.`

// buildPrompt assembles the mode's template with the source article and
// the references context block. Source content is truncated to keep the
// prompt inside the model's context budget.
func buildPrompt(mode string, article *domain.SourceArticle, references []domain.ExtractedContent, sourceExcerptLen, refExcerptLen int) string {
	template := comprehensiveTemplate
	switch mode {
	case ModeStructure:
		template = structureTemplate
	case ModeSEO:
		template = seoTemplate
	}

	source := truncate(article.Content, sourceExcerptLen)
	refsBlock := buildReferencesBlock(references, refExcerptLen)

	return fmt.Sprintf(template, article.Title, source, refsBlock)
}

// buildReferencesBlock renders each reference's title, domain and a
// truncated excerpt. With no references the block is an explicit notice
// rather than an empty string.
func buildReferencesBlock(references []domain.ExtractedContent, excerptLen int) string {
	if len(references) == 0 {
		return noReferencesNotice
	}

	var b strings.Builder
	b.WriteString("Reference articles:\n")
	for i, ref := range references {
		fmt.Fprintf(&b, "\n[%d] %s (%s, %s)\n%s\n", i+1, ref.Title, ref.Domain, ref.URL, truncate(ref.Content, excerptLen))
	}
	return b.String()
}

// truncate caps the string at max bytes, backing up to a rune boundary
// so the excerpt never ends in a broken multi-byte character.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
