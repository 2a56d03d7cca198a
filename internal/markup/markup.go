// Package markup turns untrusted model output into safe HTML fragments.
// Model text is never trusted: every character that could open a tag is
// escaped, and only a small set of lightweight markers (headings, list
// items, code fences) is re-rendered as markup.
package markup

import (
	"fmt"
	"regexp"
	"strings"
)

// escaper covers the five metacharacters that matter inside an HTML
// fragment. html.EscapeString emits numeric entities for quotes; the
// rendered documents use the named forms, so the replacer is explicit.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

var thinkRE = regexp.MustCompile(`(?is)<think>.*?</think>`)

// EscapeHTML escapes HTML metacharacters in s. The output contains no
// unescaped metacharacter originating from s.
func EscapeHTML(s string) string {
	return escaper.Replace(s)
}

// StripThinking removes every <think>...</think> span. Models prepend
// chain-of-thought the UI must never show.
func StripThinking(s string) string {
	return thinkRE.ReplaceAllString(s, "")
}

// ToSafeHTML converts free-form model text into an HTML fragment. Each
// line is escaped and then re-rendered from recognized markers: leading
// '#' runs become headings, leading '-'/'+'/'*' become list items grouped
// into one list, triple-backtick lines toggle a preformatted block, blank
// lines close an open list, and everything else becomes a paragraph.
// Lines that look like raw HTML tags are escaped like any other text; the
// model owns the tag vocabulary, so nothing it emits passes through.
func ToSafeHTML(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	var b strings.Builder
	inList := false
	inFence := false
	closeList := func() {
		if inList {
			b.WriteString("</ul>\n")
			inList = false
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			if inFence {
				b.WriteString("</pre>\n")
				inFence = false
			} else {
				closeList()
				b.WriteString("<pre>")
				inFence = true
			}
			continue
		}
		if inFence {
			b.WriteString(EscapeHTML(line))
			b.WriteString("\n")
			continue
		}
		if trimmed == "" {
			closeList()
			continue
		}
		if level := headingLevel(trimmed); level > 0 {
			closeList()
			text := strings.TrimSpace(trimmed[level:])
			fmt.Fprintf(&b, "<h%d>%s</h%d>\n", level, EscapeHTML(text), level)
			continue
		}
		if item, ok := listItem(trimmed); ok {
			if !inList {
				b.WriteString("<ul>\n")
				inList = true
			}
			fmt.Fprintf(&b, "<li>%s</li>\n", EscapeHTML(item))
			continue
		}
		closeList()
		fmt.Fprintf(&b, "<p>%s</p>\n", EscapeHTML(trimmed))
	}

	if inFence {
		b.WriteString("</pre>\n")
	}
	closeList()
	return b.String()
}

// headingLevel reports how many leading '#' characters start the line,
// capped at six; zero when the marker run is not followed by a space.
func headingLevel(line string) int {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0
	}
	if level >= len(line) || line[level] != ' ' {
		return 0
	}
	return level
}

func listItem(line string) (string, bool) {
	for _, marker := range []string{"- ", "+ ", "* "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(line[len(marker):]), true
		}
	}
	return "", false
}
