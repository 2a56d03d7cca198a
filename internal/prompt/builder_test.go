package prompt

import (
	"strings"
	"testing"

	"github.com/chintak/qrganize/internal/keypoints"
)

func TestSummaryStructuredPrompt(t *testing.T) {
	_, user := Summary("T", "Some article body here.", Options{DetailLevel: DetailHigh, Language: "English"})
	for _, want := range []string{
		`{"keyPoints":[{"title":"...","details":"...","quote":"..."}]}`,
		"must not be empty",
		"Too short",
		"most important first",
		"thorough",
		"English",
		"Article title: T",
		"Some article body here.",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("structured prompt missing %q", want)
		}
	}
}

func TestSummaryDirectPrompt(t *testing.T) {
	_, user := Summary("T", "Body.", Options{Direct: true, DetailLevel: DetailLow})
	if strings.Contains(user, "keyPoints") {
		t.Error("direct prompt should not mention the JSON shape")
	}
	for _, want := range []string{"flowing prose", "concise", "Content too short to summarize meaningfully."} {
		if !strings.Contains(user, want) {
			t.Errorf("direct prompt missing %q", want)
		}
	}
}

func TestDetailTextDefaultsToBalanced(t *testing.T) {
	if got := detailText("bogus"); got != "balanced" {
		t.Fatalf("detailText = %q", got)
	}
}

func TestQAKeepsLastTwoExchanges(t *testing.T) {
	in := QAInput{
		Question:  "why?",
		PageTitle: "T",
		History: []Exchange{
			{Question: "first", Answer: "a1"},
			{Question: "second", Answer: "a2"},
			{Question: "third", Answer: "a3"},
		},
		SourceText: "body",
	}
	_, user := QA(in, Options{})
	if strings.Contains(user, "first") {
		t.Error("oldest exchange should be dropped")
	}
	for _, want := range []string{"second", "third", "Question: why?"} {
		if !strings.Contains(user, want) {
			t.Errorf("qa prompt missing %q", want)
		}
	}
}

func TestQAClipsSnippets(t *testing.T) {
	long := strings.Repeat("x", 300)
	in := QAInput{
		Question:   "q",
		PageTitle:  "T",
		History:    []Exchange{{Question: "old", Answer: long}},
		KeyPoints:  []keypoints.KeyPoint{{Title: "K", Details: long, Quote: long}},
		SourceText: "body",
	}
	_, user := QA(in, Options{})
	if strings.Contains(user, strings.Repeat("x", 150)) {
		t.Error("snippets should be clipped")
	}
	if !strings.Contains(user, "K:") {
		t.Error("key point snippet missing")
	}
}

func TestPreprocessStripsNoise(t *testing.T) {
	in := "# Heading\n\n- bullet point with enough words\n\n<div>markup stays out</div>\n\nSubscribe to our newsletter today!\n\nReal sentence one here.\n\nReal sentence one here.\n\nReal sentence two here."
	got := Preprocess(in)
	if strings.Contains(got, "#") || strings.Contains(got, "<div>") {
		t.Errorf("markers survived: %q", got)
	}
	if strings.Contains(strings.ToLower(got), "subscribe") {
		t.Errorf("boilerplate survived: %q", got)
	}
	if strings.Count(got, "Real sentence one here.") != 1 {
		t.Errorf("duplicate paragraph survived: %q", got)
	}
	if !strings.Contains(got, "Real sentence two here.") {
		t.Errorf("content dropped: %q", got)
	}
}

func TestPreprocessCollapsesBlankRuns(t *testing.T) {
	got := Preprocess("Paragraph one is here.\n\n\n\n\nParagraph two is here.")
	if strings.Contains(got, "\n\n\n") {
		t.Fatalf("blank runs not collapsed: %q", got)
	}
}
