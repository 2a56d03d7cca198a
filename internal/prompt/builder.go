// Package prompt builds the text sent to the AI provider for
// summarization and question answering.
package prompt

import (
	"fmt"
	"strings"

	"github.com/chintak/qrganize/internal/keypoints"
)

// Detail levels accepted by Options.DetailLevel.
const (
	DetailLow    = "low"
	DetailMedium = "medium"
	DetailHigh   = "high"
)

const summarySystem = "You are a careful reading assistant. You summarize articles faithfully, never invent facts, and follow output format instructions exactly."

const qaSystem = "You are a careful reading assistant. You answer questions strictly from the supplied context and say so when the context is insufficient."

// Options selects the summary prompt family and its knobs.
type Options struct {
	Direct      bool
	DetailLevel string
	Language    string
}

// Exchange is one completed question/answer pair carried into a Q&A
// prompt as conversation context.
type Exchange struct {
	Question string
	Answer   string
}

// QAInput bundles everything a follow-up question prompt needs.
type QAInput struct {
	Question   string
	PageTitle  string
	History    []Exchange
	KeyPoints  []keypoints.KeyPoint
	SourceText string
}

func detailText(level string) string {
	switch level {
	case DetailLow:
		return "concise"
	case DetailHigh:
		return "thorough"
	default:
		return "balanced"
	}
}

func language(opts Options) string {
	if strings.TrimSpace(opts.Language) == "" {
		return "English"
	}
	return opts.Language
}

// Summary builds the system and user prompts for one summarize call.
// The article text is preprocessed before interpolation.
func Summary(title, text string, opts Options) (system, user string) {
	if opts.Direct {
		return summarySystem, directUserPrompt(title, Preprocess(text), opts)
	}
	return summarySystem, structuredUserPrompt(title, Preprocess(text), opts)
}

func structuredUserPrompt(title, text string, opts Options) string {
	return fmt.Sprintf(`Summarize the article below as key points.

Return exactly one JSON object of this shape and nothing else, no prose, no code fences:
{"keyPoints":[{"title":"...","details":"...","quote":"..."}]}

Rules:
- Inside string values escape double quotes as \" and backslashes as \\; encode line breaks as \n.
- "title" is a short headline for the point; "details" explains it; "quote" is an optional short supporting excerpt copied verbatim from the article (use "" when none fits).
- keyPoints must not be empty. If the article is too short to summarize meaningfully, return a single point titled "Too short" with details "Content too short to summarize meaningfully."
- Order the points most important first. For narrative content, cover it paragraph by paragraph and end with one final point giving the overall takeaway.
- Write a %s summary in %s.

Article title: %s

Article:
%s`, detailText(opts.DetailLevel), language(opts), title, text)
}

func directUserPrompt(title, text string, opts Options) string {
	return fmt.Sprintf(`Summarize the article below.

Write flowing prose only. No markup, no markdown, no headings, no bullet lists, no JSON. If the article is too short to summarize meaningfully, reply exactly: Content too short to summarize meaningfully.

Write a %s summary in %s.

Article title: %s

Article:
%s`, detailText(opts.DetailLevel), language(opts), title, text)
}

// QA builds the system and user prompts for one follow-up question.
// Only the last two completed exchanges ride along as history, with
// answers clipped; key points ride along as short snippets.
func QA(in QAInput, opts Options) (system, user string) {
	var b strings.Builder

	fmt.Fprintf(&b, "Answer the question about the article %q using only the context below.\n\n", in.PageTitle)
	b.WriteString("Rules:\n")
	b.WriteString("- Answer strictly from the supplied context. Conservative inference is allowed only when it is clearly grounded in the text.\n")
	b.WriteString("- If the context is insufficient to answer, say so instead of guessing.\n")
	fmt.Fprintf(&b, "- Answer in plain text, in %s. No markup.\n", language(opts))

	history := in.History
	if len(history) > 2 {
		history = history[len(history)-2:]
	}
	if len(history) > 0 {
		b.WriteString("\nEarlier questions in this conversation:\n")
		for _, exchange := range history {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n", exchange.Question, clipRunes(exchange.Answer, 100))
		}
	}

	if len(in.KeyPoints) > 0 {
		b.WriteString("\nSummary key points:\n")
		for _, point := range in.KeyPoints {
			fmt.Fprintf(&b, "- %s: %s", point.Title, clipRunes(point.Details, 100))
			if point.Quote != "" {
				fmt.Fprintf(&b, " (quote: %s)", clipRunes(point.Quote, 70))
			}
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "\nArticle text:\n%s\n", Preprocess(in.SourceText))
	fmt.Fprintf(&b, "\nQuestion: %s", in.Question)
	return qaSystem, b.String()
}
