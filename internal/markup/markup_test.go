package markup

import (
	"strings"
	"testing"
)

func TestEscapeHTMLCoversMetacharacters(t *testing.T) {
	got := EscapeHTML(`<a href="x">&'`)
	want := `&lt;a href=&quot;x&quot;&gt;&amp;&#39;`
	if got != want {
		t.Fatalf("EscapeHTML = %q, want %q", got, want)
	}
}

func TestEscapeHTMLReEscapes(t *testing.T) {
	once := EscapeHTML("<b>")
	twice := EscapeHTML(once)
	if twice != "&amp;lt;b&amp;gt;" {
		t.Fatalf("double escape = %q", twice)
	}
}

func TestStripThinking(t *testing.T) {
	in := "before <THINK>secret\nmultiline</think> after <think>again</THINK>!"
	got := StripThinking(in)
	if got != "before  after !" {
		t.Fatalf("StripThinking = %q", got)
	}
}

func TestToSafeHTMLHeadingsAndLists(t *testing.T) {
	in := "# Title\n\n- one\n- two\n\ntrailing text"
	got := ToSafeHTML(in)
	for _, want := range []string{"<h1>Title</h1>", "<ul>", "<li>one</li>", "<li>two</li>", "</ul>", "<p>trailing text</p>"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Count(got, "<ul>") != 1 {
		t.Fatalf("consecutive items should share one list:\n%s", got)
	}
}

func TestToSafeHTMLBlankLineClosesList(t *testing.T) {
	got := ToSafeHTML("- a\n\n- b")
	if strings.Count(got, "<ul>") != 2 {
		t.Fatalf("blank line should terminate the open list:\n%s", got)
	}
}

func TestToSafeHTMLFences(t *testing.T) {
	got := ToSafeHTML("```\n<script>alert(1)</script>\n```")
	if !strings.Contains(got, "<pre>") || !strings.Contains(got, "</pre>") {
		t.Fatalf("fence did not toggle pre block:\n%s", got)
	}
	if strings.Contains(got, "<script>") {
		t.Fatalf("fence interior must be escaped:\n%s", got)
	}
}

func TestToSafeHTMLEscapesRawTagLines(t *testing.T) {
	got := ToSafeHTML("<div onclick=x>hi</div>")
	if strings.Contains(got, "<div") {
		t.Fatalf("raw tag line passed through:\n%s", got)
	}
	if !strings.Contains(got, "&lt;div") {
		t.Fatalf("raw tag line not escaped:\n%s", got)
	}
}

func TestToSafeHTMLPreservesVisibleText(t *testing.T) {
	in := "plain sentence with no markers"
	got := ToSafeHTML(in)
	if got != "<p>"+in+"</p>\n" {
		t.Fatalf("safe text should only be wrapped, got %q", got)
	}
}

func TestToSafeHTMLEmpty(t *testing.T) {
	if got := ToSafeHTML("   \n  "); got != "" {
		t.Fatalf("blank input should yield empty fragment, got %q", got)
	}
}
