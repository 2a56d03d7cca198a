package article

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// WebExtractor downloads a URL through the page cache and extracts
// readable content. HTML pages go through a readability-style pass;
// PDF bodies go through plain-text extraction.
type WebExtractor struct {
	cache *pageCache
}

// NewWebExtractor builds an extractor. A nil client uses a default with
// a generous download timeout.
func NewWebExtractor(client *http.Client) (*WebExtractor, error) {
	cache, err := newPageCache(client)
	if err != nil {
		return nil, err
	}
	return &WebExtractor{cache: cache}, nil
}

func (e *WebExtractor) Extract(ctx context.Context, pageURL string) (Article, error) {
	path, contentType, err := e.cache.Fetch(ctx, pageURL)
	if err != nil {
		return Article{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Article{}, err
	}

	if strings.Contains(contentType, "application/pdf") || bytes.HasPrefix(data, []byte("%PDF-")) {
		text, err := extractPDFText(path)
		if err != nil {
			return Article{}, err
		}
		if text == "" {
			return Article{}, fmt.Errorf("pdf at %s carried no extractable text", pageURL)
		}
		return Article{Title: pageURL, Text: text}, nil
	}
	return extractReadable(pageURL, data)
}

var extraneousWhitespace = regexp.MustCompile(`[ \t]+`)

// extractReadable pulls the title and the article prose out of an HTML
// document, skipping script/nav chrome. It prefers an <article> or
// <main> region and falls back to the whole body.
func extractReadable(pageURL string, data []byte) (Article, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return Article{}, fmt.Errorf("failed to parse page: %w", err)
	}

	doc.Find("script, style, noscript, nav, header, footer, aside, form, iframe").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(og) != "" {
		title = strings.TrimSpace(og)
	}
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if title == "" {
		title = pageURL
	}

	region := doc.Find("article").First()
	if region.Length() == 0 {
		region = doc.Find("main").First()
	}
	if region.Length() == 0 {
		region = doc.Find("body")
	}

	var paragraphs []string
	region.Find("h1, h2, h3, h4, h5, h6, p, li, blockquote, pre").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(extraneousWhitespace.ReplaceAllString(sel.Text(), " "))
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) == 0 {
		if text := strings.TrimSpace(extraneousWhitespace.ReplaceAllString(region.Text(), " ")); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}

	text := strings.Join(paragraphs, "\n\n")
	if strings.TrimSpace(text) == "" {
		return Article{}, fmt.Errorf("no readable text found at %s", pageURL)
	}
	return Article{Title: title, Text: text}, nil
}
