package session

import (
	"testing"

	"github.com/chintak/qrganize/internal/keypoints"
)

func TestAppendIDsAreUniqueAndMonotonic(t *testing.T) {
	var h History
	a := h.Append("one", "p1")
	b := h.Append("two", "p2")
	c := h.Append("three", "p3")
	if !(a < b && b < c) {
		t.Fatalf("ids not monotonic: %d %d %d", a, b, c)
	}
}

func TestResolveAndFail(t *testing.T) {
	var h History
	id := h.Append("q", "p")
	if !h.Pending() {
		t.Fatal("new entry should be pending")
	}
	h.Resolve(id, "answer", "raw")
	entry, ok := h.Get(id)
	if !ok || entry.Pending || entry.Answer != "answer" || entry.RawResponse != "raw" {
		t.Fatalf("entry = %+v", entry)
	}

	id2 := h.Append("q2", "p")
	h.Fail(id2, "boom")
	entry2, _ := h.Get(id2)
	if entry2.Pending || entry2.Err != "boom" {
		t.Fatalf("entry2 = %+v", entry2)
	}
}

func TestResolveUnknownIDIsIgnored(t *testing.T) {
	var h History
	h.Append("q", "p")
	h.Resolve(99999, "late", "raw")
	if h.Entries()[0].Answer != "" {
		t.Fatal("stale resolution mutated an unrelated entry")
	}
}

func TestRetryTruncatesFutureEntries(t *testing.T) {
	var h History
	a := h.Append("first", "p")
	h.Resolve(a, "a1", "")
	b := h.Append("second", "p")
	h.Resolve(b, "a2", "")
	c := h.Append("third", "p")
	h.Resolve(c, "a3", "")

	if !h.Retry(b, "new prompt") {
		t.Fatal("Retry returned false for a known id")
	}
	if h.Len() != 2 {
		t.Fatalf("len = %d, want 2 (entries after the retried one dropped)", h.Len())
	}
	entry, _ := h.Get(b)
	if !entry.Pending || entry.Answer != "" || entry.Prompt != "new prompt" {
		t.Fatalf("retried entry = %+v", entry)
	}
}

func TestExchangesBeforeIDExcludesSelfAndLater(t *testing.T) {
	var h History
	a := h.Append("first", "p")
	h.Resolve(a, "a1", "")
	b := h.Append("second", "p")
	h.Resolve(b, "a2", "")
	pendingID := h.Append("pending", "p")
	_ = pendingID

	got := h.Exchanges(b)
	if len(got) != 1 || got[0].Question != "first" {
		t.Fatalf("Exchanges(before second) = %+v", got)
	}

	all := h.Exchanges(0)
	if len(all) != 2 {
		t.Fatalf("Exchanges(0) = %+v, pending entries must be excluded", all)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	var h History
	id := h.Append("q", "p")
	h.Resolve(id, "a", "raw")

	path, err := SaveSnapshot(dir, Snapshot{
		Title:     "T",
		Provider:  "ollama",
		Model:     "m",
		KeyPoints: []keypoints.KeyPoint{{Title: "K", Details: "D"}},
		QA:        h.Entries(),
	})
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	snap, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if snap.Title != "T" || len(snap.KeyPoints) != 1 || len(snap.QA) != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.SavedAt.IsZero() {
		t.Fatal("SavedAt should be stamped on save")
	}
}
