package prompt

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"
)

// maxArticleChars caps the article text interpolated into a prompt.
// Local models commonly expose 8k-32k token windows; ~4 chars/token
// with headroom keeps the prompt itself from causing failures.
const maxArticleChars = 24_000

var (
	paragraphSplit   = regexp.MustCompile(`\n{2,}`)
	whitespaceSanity = regexp.MustCompile(`\s+`)
	htmlTagRE        = regexp.MustCompile(`<[^>\n]+>`)
	headingMarkerRE  = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	listMarkerRE     = regexp.MustCompile(`(?m)^\s*[-+*•▪◦]\s+`)
	decorativeRE     = regexp.MustCompile(`[─━═│┃┆┄╌.]{4,}|[*_]{3,}`)
)

// Preprocess reduces raw article text to prompt-ready prose: markup and
// decorative characters stripped, boilerplate and repeated paragraphs
// dropped, blank runs collapsed, and the result clipped to the
// character budget at a paragraph boundary.
func Preprocess(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = htmlTagRE.ReplaceAllString(text, " ")
	text = headingMarkerRE.ReplaceAllString(text, "")
	text = listMarkerRE.ReplaceAllString(text, "")
	text = decorativeRE.ReplaceAllString(text, " ")

	seen := map[string]bool{}
	var kept []string
	for _, paragraph := range paragraphSplit.Split(text, -1) {
		trimmed := strings.TrimSpace(paragraph)
		if trimmed == "" || isBoilerplate(trimmed) {
			continue
		}
		hash := hashParagraph(canonicalParagraph(trimmed))
		if seen[hash] {
			continue
		}
		seen[hash] = true
		kept = append(kept, trimmed)
	}
	return clipParagraphs(kept, maxArticleChars)
}

func canonicalParagraph(text string) string {
	return whitespaceSanity.ReplaceAllString(strings.TrimSpace(text), " ")
}

// isBoilerplate flags the navigation and engagement chrome that
// readability extraction tends to leave behind.
func isBoilerplate(paragraph string) bool {
	lower := strings.ToLower(strings.TrimSpace(paragraph))
	if lower == "" {
		return true
	}
	phrases := []string{
		"subscribe",
		"sign up for our newsletter",
		"accept cookies",
		"cookie policy",
		"advertisement",
		"sponsored content",
		"share this article",
		"read more:",
		"related articles",
		"follow us on",
		"all rights reserved",
		"terms of service",
	}
	for _, phrase := range phrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	// Short single tokens are nav labels, not prose.
	if len(lower) <= 12 && !strings.Contains(lower, " ") {
		return true
	}
	alpha := 0
	for _, r := range lower {
		if unicode.IsLetter(r) {
			alpha++
		}
	}
	return alpha*5 < len(lower)
}

func hashParagraph(text string) string {
	sum := sha1.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

func clipParagraphs(paragraphs []string, budget int) string {
	var b strings.Builder
	remaining := budget
	for idx, paragraph := range paragraphs {
		if remaining <= 0 {
			break
		}
		if idx > 0 && b.Len() > 0 {
			if remaining <= 2 {
				break
			}
			b.WriteString("\n\n")
			remaining -= 2
		}
		runes := []rune(paragraph)
		if len(runes) > remaining {
			b.WriteString(string(runes[:remaining]))
			remaining = 0
			break
		}
		b.WriteString(paragraph)
		remaining -= len(runes)
	}
	return b.String()
}

func clipRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
