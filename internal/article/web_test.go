package article

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const samplePage = `<!doctype html>
<html>
<head>
  <title>Fallback Title</title>
  <meta property="og:title" content="The Real Title">
</head>
<body>
  <nav>Home | About | Contact</nav>
  <script>var tracking = true;</script>
  <article>
    <h1>The Real Title</h1>
    <p>First paragraph of the article body.</p>
    <p>Second paragraph with more detail.</p>
    <ul><li>A list item too.</li></ul>
  </article>
  <footer>Copyright notice</footer>
</body>
</html>`

func newTestExtractor(t *testing.T) *WebExtractor {
	t.Helper()
	t.Setenv(cacheEnvVar, t.TempDir())
	e, err := NewWebExtractor(nil)
	if err != nil {
		t.Fatalf("NewWebExtractor: %v", err)
	}
	return e
}

func TestExtractReadableArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, samplePage)
	}))
	defer srv.Close()

	e := newTestExtractor(t)
	got, err := e.Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Title != "The Real Title" {
		t.Errorf("title = %q", got.Title)
	}
	for _, want := range []string{"First paragraph", "Second paragraph", "A list item too."} {
		if !strings.Contains(got.Text, want) {
			t.Errorf("text missing %q:\n%s", want, got.Text)
		}
	}
	for _, banned := range []string{"tracking", "Home | About", "Copyright notice"} {
		if strings.Contains(got.Text, banned) {
			t.Errorf("chrome leaked into text: %q", banned)
		}
	}
}

func TestExtractEmptyPageFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, "<html><body><script>x()</script></body></html>")
	}))
	defer srv.Close()

	e := newTestExtractor(t)
	if _, err := e.Extract(context.Background(), srv.URL); err == nil {
		t.Fatal("empty page should be a hard failure")
	}
}

func TestExtractUsesCacheOnSecondFetch(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, samplePage)
	}))
	defer srv.Close()

	e := newTestExtractor(t)
	if _, err := e.Extract(context.Background(), srv.URL); err != nil {
		t.Fatalf("first Extract: %v", err)
	}
	if _, err := e.Extract(context.Background(), srv.URL); err != nil {
		t.Fatalf("second Extract: %v", err)
	}
	if hits != 1 {
		t.Fatalf("server hits = %d, want 1 (cache miss only once)", hits)
	}
}

func TestFromSelection(t *testing.T) {
	got := FromSelection("  some selected words  ")
	if got.Title != "Selected text" || got.Text != "some selected words" {
		t.Fatalf("FromSelection = %+v", got)
	}
}
