// ABOUTME: Post-processing shared by the static and rendered strategies
// ABOUTME: Noise removal, ordered selector matching, and whitespace normalization

package extractor

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

var (
	spaceRun   = regexp.MustCompile(`[ \t]+`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// extractFromDocument runs the shared extraction routine against a
// parsed document: strip noise, pick a title and a content container by
// the ordered selector lists, then normalize. Returns the title (may be
// empty) and the cleaned text.
func extractFromDocument(doc *goquery.Document, maxLength int) (string, string) {
	removeNoise(doc)

	title := extractTitle(doc)
	body := extractBody(doc)

	return title, normalizeText(body, maxLength)
}

// removeNoise drops structural regions that never carry article text
func removeNoise(doc *goquery.Document) {
	for _, selector := range noiseSelectors {
		doc.Find(selector).Remove()
	}
}

// extractTitle tries the title selectors in order and takes the first
// non-empty match
func extractTitle(doc *goquery.Document) string {
	for _, selector := range titleSelectors {
		if title := strings.TrimSpace(doc.Find(selector).First().Text()); title != "" {
			return title
		}
	}
	return ""
}

// extractBody tries the content selectors in order, accepting the first
// container with enough text. When nothing qualifies, all paragraph
// texts are concatenated instead.
func extractBody(doc *goquery.Document) string {
	for _, selector := range contentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if text := blockText(sel); len(strings.TrimSpace(text)) > contentQualifyLength {
			return text
		}
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, "\n\n")
}

// blockText renders a container's paragraphs and headings as text with
// paragraph breaks preserved, falling back to the raw text when the
// container has no block children.
func blockText(sel *goquery.Selection) string {
	var blocks []string
	sel.Find("p, h2, h3, h4, li, blockquote").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})

	if len(blocks) == 0 {
		return sel.Text()
	}
	return strings.Join(blocks, "\n\n")
}

// normalizeText collapses whitespace runs to single spaces, collapses
// multiple blank lines to exactly one, trims, and truncates.
func normalizeText(text string, maxLength int) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = spaceRun.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")

	text = blankLines.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	if maxLength > 0 && len(text) > maxLength {
		text = truncateAtRune(text, maxLength)
	}
	return text
}

// truncateAtRune cuts the string to at most max bytes without splitting
// a multi-byte rune at the boundary.
func truncateAtRune(s string, max int) string {
	if max >= len(s) {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
