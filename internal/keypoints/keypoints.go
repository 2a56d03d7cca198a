// Package keypoints recovers a structured key-point list from raw model
// output that is nominally JSON but frequently wrapped in reasoning,
// fenced, or slightly broken.
package keypoints

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// KeyPoint is one structured bullet of a summary. Order matters: the
// model ranks points most important first and callers must preserve it.
type KeyPoint struct {
	Title   string `json:"title"`
	Details string `json:"details"`
	Quote   string `json:"quote,omitempty"`
}

// ErrInvalidJSON reports that the cleaned response did not parse as JSON
// at all. Callers treat it differently from a valid response with no
// points, so it is a sentinel rather than a wrapped parse error.
var ErrInvalidJSON = errors.New("response is not valid JSON")

// thinkCloseRE matches the reasoning close marker case-insensitively.
// Matching on the original string keeps byte offsets valid even when
// the surrounding text holds runes whose case-folded form has a
// different byte length.
var thinkCloseRE = regexp.MustCompile(`(?i)</think>`)

// splitStringRE matches a string value the model broke across lines
// without escaping: closing quote, whitespace containing the break,
// reopening quote.
var splitStringRE = regexp.MustCompile(`"\s*\n\s*"`)

// Clean applies the textual repairs that precede parsing: drop
// everything through the last reasoning close marker, strip a
// surrounding code fence, and rejoin string values split across lines.
func Clean(raw string) string {
	s := raw
	if locs := thinkCloseRE.FindAllStringIndex(s, -1); len(locs) > 0 {
		s = s[locs[len(locs)-1][1]:]
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-len("```")]
	}
	s = strings.TrimSpace(s)
	return splitStringRE.ReplaceAllString(s, `\n`)
}

// Extract recovers key points from a raw model response. The three
// outcomes are distinct: ErrInvalidJSON when the cleaned text does not
// parse, an empty list when it parses but carries no usable keyPoints
// array, and the ordered filtered list otherwise. Entries missing a
// string title or details are dropped; quote is kept when present.
func Extract(raw string) ([]KeyPoint, error) {
	cleaned := Clean(raw)

	var doc any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, ErrInvalidJSON
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return []KeyPoint{}, nil
	}
	arr, ok := obj["keyPoints"].([]any)
	if !ok {
		return []KeyPoint{}, nil
	}

	points := make([]KeyPoint, 0, len(arr))
	for _, entry := range arr {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		title, okTitle := m["title"].(string)
		details, okDetails := m["details"].(string)
		if !okTitle || !okDetails {
			continue
		}
		point := KeyPoint{Title: title, Details: details}
		if quote, ok := m["quote"].(string); ok {
			point.Quote = quote
		}
		points = append(points, point)
	}
	return points, nil
}

// EmptyReason explains a valid-JSON-but-no-points outcome in terms the
// user can act on.
func EmptyReason(raw string) string {
	cleaned := Clean(raw)
	switch {
	case cleaned == "":
		return "the model returned an empty response"
	case cleaned == "{}":
		return "the model returned an empty JSON object"
	case strings.Contains(cleaned, `"keyPoints"`):
		return "the model returned an empty key point list"
	default:
		return "the model response held no usable key points"
	}
}
