package tuitest

import (
	"bytes"
	"io"
)

// termQuery pairs a terminal capability query with the canned reply the
// harness sends back so the program under test does not stall waiting on
// a real terminal.
type termQuery struct {
	pattern []byte
	reply   []byte
}

var termQueries = []termQuery{
	// DSR cursor position report.
	{[]byte("\x1b[6n"), []byte("\x1b[1;1R")},
	// OSC 10/11 foreground and background color probes, BEL and ST forms.
	{[]byte("\x1b]10;?\x07"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
	{[]byte("\x1b]10;?\x1b\\"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
	{[]byte("\x1b]11;?\x07"), []byte("\x1b]11;rgb:0000/0000/0000\x07")},
	{[]byte("\x1b]11;?\x1b\\"), []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
}

type terminalResponder struct {
	w       io.Writer
	pending []byte
}

func newTerminalResponder(w io.Writer) *terminalResponder {
	return &terminalResponder{w: w, pending: make([]byte, 0, 128)}
}

// Process inspects program output for capability queries and answers them.
func (tr *terminalResponder) Process(chunk []byte) {
	tr.pending = append(tr.pending, chunk...)
	for tr.answerOne() {
	}
	// Keep a small tail so sequences split across reads still match.
	if len(tr.pending) > 256 {
		tr.pending = tr.pending[len(tr.pending)-64:]
	}
}

func (tr *terminalResponder) answerOne() bool {
	for _, q := range termQueries {
		idx := bytes.Index(tr.pending, q.pattern)
		if idx < 0 {
			continue
		}
		tr.pending = tr.pending[idx+len(q.pattern):]
		_, _ = tr.w.Write(q.reply)
		return true
	}
	return false
}
