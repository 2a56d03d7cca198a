// Package render produces the HTML document form of a finished
// summary: a navigable outline, detail blocks, and the Q&A thread. All
// model-derived text passes through the markup sanitizer.
package render

import (
	"fmt"
	"strings"

	"github.com/chintak/qrganize/internal/keypoints"
	"github.com/chintak/qrganize/internal/markup"
	"github.com/chintak/qrganize/internal/session"
)

// Input is everything the exported document can show.
type Input struct {
	Title      string
	KeyPoints  []keypoints.KeyPoint
	DirectText string
	QA         []session.QAEntry
	// Original is the extracted article text, rendered as a collapsed
	// block when ShowOriginal is set.
	Original     string
	ShowOriginal bool
}

const docStyle = `body{font-family:sans-serif;max-width:48rem;margin:2rem auto;padding:0 1rem;line-height:1.5}
blockquote{border-left:3px solid #999;margin-left:0;padding-left:1rem;color:#555}
.outline{background:#f6f6f6;padding:1rem 2rem;border-radius:6px}
details>pre{white-space:pre-wrap}`

// Document renders the full standalone HTML page.
func Document(in Input) string {
	var b strings.Builder
	b.WriteString("<!doctype html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", markup.EscapeHTML(in.Title))
	fmt.Fprintf(&b, "<style>%s</style>\n", docStyle)
	b.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", markup.EscapeHTML(in.Title))

	if len(in.KeyPoints) > 0 {
		b.WriteString(outline(in.KeyPoints))
		b.WriteString(detailBlocks(in.KeyPoints))
	} else if in.DirectText != "" {
		b.WriteString(markup.ToSafeHTML(markup.StripThinking(in.DirectText)))
	}

	if len(in.QA) > 0 {
		b.WriteString("<h2>Questions</h2>\n")
		for _, entry := range in.QA {
			fmt.Fprintf(&b, "<h3>%s</h3>\n", markup.EscapeHTML(entry.Question))
			switch {
			case entry.Pending:
				b.WriteString("<p><em>Pending</em></p>\n")
			case entry.Err != "":
				fmt.Fprintf(&b, "<p><em>%s</em></p>\n", markup.EscapeHTML(entry.Err))
			default:
				b.WriteString(markup.ToSafeHTML(markup.StripThinking(entry.Answer)))
			}
		}
	}

	if in.ShowOriginal && strings.TrimSpace(in.Original) != "" {
		b.WriteString("<details>\n<summary>Original article</summary>\n<pre>")
		b.WriteString(markup.EscapeHTML(in.Original))
		b.WriteString("</pre>\n</details>\n")
	}

	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// outline lists the key point titles, each linking to its detail block.
// Order mirrors the model's ranking.
func outline(points []keypoints.KeyPoint) string {
	var b strings.Builder
	b.WriteString("<ul class=\"outline\">\n")
	for i, point := range points {
		fmt.Fprintf(&b, "<li><a href=\"#kp-%d\">%s</a></li>\n", i+1, markup.EscapeHTML(point.Title))
	}
	b.WriteString("</ul>\n")
	return b.String()
}

func detailBlocks(points []keypoints.KeyPoint) string {
	var b strings.Builder
	for i, point := range points {
		fmt.Fprintf(&b, "<section id=\"kp-%d\">\n", i+1)
		fmt.Fprintf(&b, "<h2>%s</h2>\n", markup.EscapeHTML(point.Title))
		b.WriteString(markup.ToSafeHTML(point.Details))
		if point.Quote != "" {
			fmt.Fprintf(&b, "<blockquote>%s</blockquote>\n", markup.EscapeHTML(point.Quote))
		}
		b.WriteString("</section>\n")
	}
	return b.String()
}

// Stream accumulates incremental chunks with per-chunk sanitization,
// for live rendering of a streamed direct-mode answer. Chunks are
// escaped on arrival; a raw chunk is never injected.
type Stream struct {
	b strings.Builder
}

func (s *Stream) Append(chunk string) {
	s.b.WriteString(markup.EscapeHTML(chunk))
}

func (s *Stream) HTML() string {
	return s.b.String()
}
