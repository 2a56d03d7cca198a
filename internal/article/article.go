// Package article produces the {title, text} record a summarize cycle
// consumes, either by extracting readable content from a URL or from
// user-selected text.
package article

import (
	"context"
	"strings"
)

// Article is one immutable unit of input to a summarize cycle.
type Article struct {
	Title string
	Text  string
}

// Extractor turns a URL into an Article. Implementations must treat an
// empty extraction as a hard failure for that attempt.
type Extractor interface {
	Extract(ctx context.Context, pageURL string) (Article, error)
}

// FromSelection wraps user-selected text as an article.
func FromSelection(text string) Article {
	return Article{Title: "Selected text", Text: strings.TrimSpace(text)}
}
