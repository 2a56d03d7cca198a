// Package session holds the per-panel-session state that outlives a
// single provider call: the question/answer thread and the archived
// snapshot of a finished session.
package session

import (
	"time"

	"github.com/chintak/qrganize/internal/prompt"
)

// QAEntry is one question in the thread. The entry is created pending
// and mutated in place when its answer arrives or fails. Entries are
// never removed except by a full reset.
type QAEntry struct {
	ID          int64     `json:"id"`
	Question    string    `json:"question"`
	Answer      string    `json:"answer"`
	Pending     bool      `json:"pending"`
	Err         string    `json:"error,omitempty"`
	Prompt      string    `json:"prompt,omitempty"`
	RawResponse string    `json:"rawResponse,omitempty"`
	AskedAt     time.Time `json:"askedAt"`
}

// History is the ordered Q&A thread. IDs are creation timestamps in
// milliseconds, bumped when two questions land in the same tick so they
// stay unique and monotonic.
type History struct {
	entries []QAEntry
	lastID  int64
}

// Append creates a pending entry and returns its ID.
func (h *History) Append(question, promptText string) int64 {
	now := time.Now()
	id := now.UnixMilli()
	if id <= h.lastID {
		id = h.lastID + 1
	}
	h.lastID = id
	h.entries = append(h.entries, QAEntry{
		ID:       id,
		Question: question,
		Pending:  true,
		Prompt:   promptText,
		AskedAt:  now,
	})
	return id
}

// Resolve records the answer for id. Unknown IDs are ignored; a stale
// resolution for a question that was reset away must not resurrect it.
func (h *History) Resolve(id int64, answer, raw string) {
	if entry := h.find(id); entry != nil {
		entry.Answer = answer
		entry.RawResponse = raw
		entry.Pending = false
		entry.Err = ""
	}
}

// Fail records an error outcome for id.
func (h *History) Fail(id int64, message string) {
	if entry := h.find(id); entry != nil {
		entry.Pending = false
		entry.Err = message
	}
}

// Retry re-enters id as pending with a fresh prompt and drops every
// entry after it, so the retried question cannot see future context.
func (h *History) Retry(id int64, promptText string) bool {
	idx := -1
	for i := range h.entries {
		if h.entries[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	h.entries = h.entries[:idx+1]
	entry := &h.entries[idx]
	entry.Pending = true
	entry.Err = ""
	entry.Answer = ""
	entry.RawResponse = ""
	entry.Prompt = promptText
	return true
}

// Exchanges returns the completed question/answer pairs before id (or
// all of them when id is zero), in conversation order, for use as
// prompt context.
func (h *History) Exchanges(beforeID int64) []prompt.Exchange {
	var out []prompt.Exchange
	for _, entry := range h.entries {
		if beforeID > 0 && entry.ID >= beforeID {
			break
		}
		if entry.Pending || entry.Err != "" || entry.Answer == "" {
			continue
		}
		out = append(out, prompt.Exchange{Question: entry.Question, Answer: entry.Answer})
	}
	return out
}

// Entries returns a copy of the thread in insertion order.
func (h *History) Entries() []QAEntry {
	out := make([]QAEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Pending reports whether any question is still awaiting its answer.
func (h *History) Pending() bool {
	for i := range h.entries {
		if h.entries[i].Pending {
			return true
		}
	}
	return false
}

// Len reports the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Get returns the entry with the given ID.
func (h *History) Get(id int64) (QAEntry, bool) {
	if entry := h.find(id); entry != nil {
		return *entry, true
	}
	return QAEntry{}, false
}

// Reset wipes the thread.
func (h *History) Reset() {
	h.entries = nil
}

func (h *History) find(id int64) *QAEntry {
	for i := range h.entries {
		if h.entries[i].ID == id {
			return &h.entries[i]
		}
	}
	return nil
}
