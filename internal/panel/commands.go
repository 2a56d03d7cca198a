package panel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chintak/qrganize/internal/article"
	"github.com/chintak/qrganize/internal/keypoints"
	"github.com/chintak/qrganize/internal/provider"
	"github.com/chintak/qrganize/internal/render"
	"github.com/chintak/qrganize/internal/session"
)

// Result messages carry the sequence number of the operation that
// produced them; stale deliveries are discarded in Update.

type articleResultMsg struct {
	seq int
	art article.Article
	err error
}

type summaryResultMsg struct {
	seq          int
	raw          string
	points       []keypoints.KeyPoint
	direct       string
	usedFallback bool
	err          error
}

type answerResultMsg struct {
	seq    int
	id     int64
	answer string
	err    error
}

type chunkMsg struct {
	seq   int
	chunk string
}

type streamDoneMsg struct {
	seq int
	raw string
	err error
}

type exportResultMsg struct {
	path string
	err  error
}

type archiveResultMsg struct {
	path string
	err  error
}

func fetchArticleCmd(seq int, ctx context.Context, extractor article.Extractor, pageURL string) tea.Cmd {
	return runJob("fetch", func() tea.Msg {
		art, err := extractor.Extract(ctx, pageURL)
		return articleResultMsg{seq: seq, art: art, err: err}
	})
}

// summarizeCmd performs the provider call and, in structured mode, the
// tolerant decode. When the structured response is not JSON at all the
// job retries once in direct mode before giving up; a cancelled
// operation never falls back.
func summarizeCmd(seq int, ctx context.Context, client provider.Client, structured bool, system, user, directUser string) tea.Cmd {
	return runJob("summary", func() tea.Msg {
		raw, err := client.Chat(ctx, system, user)
		if err != nil {
			return summaryResultMsg{seq: seq, err: err}
		}
		if !structured {
			return summaryResultMsg{seq: seq, raw: raw, direct: raw}
		}

		points, perr := keypoints.Extract(raw)
		if perr == nil {
			return summaryResultMsg{seq: seq, raw: raw, points: points}
		}
		if ctx.Err() != nil {
			return summaryResultMsg{seq: seq, raw: raw, err: provider.ErrCancelled}
		}
		fallbackRaw, ferr := client.Chat(ctx, system, directUser)
		if ferr != nil {
			return summaryResultMsg{seq: seq, raw: raw, err: ferr, usedFallback: true}
		}
		return summaryResultMsg{seq: seq, raw: fallbackRaw, direct: fallbackRaw, usedFallback: true}
	})
}

// streamSummaryCmd is the incremental variant for providers that
// support it: chunks arrive as chunkMsg, the final result as
// streamDoneMsg. The channel is buffered so a slow redraw does not
// stall the network read.
func streamSummaryCmd(seq int, ctx context.Context, streamer provider.Streamer, system, user string) tea.Cmd {
	ch := make(chan tea.Msg, 64)
	go func() {
		raw, err := streamer.ChatStream(ctx, system, user, func(chunk string) {
			ch <- chunkMsg{seq: seq, chunk: chunk}
		})
		ch <- streamDoneMsg{seq: seq, raw: raw, err: err}
		close(ch)
	}()
	return awaitStream(ch)
}

func awaitStream(ch chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return streamEnvelope{ch: ch, msg: msg}
	}
}

// streamEnvelope pairs a stream message with its channel so Update can
// keep listening for the next one.
type streamEnvelope struct {
	ch  chan tea.Msg
	msg tea.Msg
}

func answerCmd(seq int, id int64, client provider.Client, system, user string) tea.Cmd {
	return runJob("question", func() tea.Msg {
		answer, err := client.Chat(context.Background(), system, user)
		return answerResultMsg{seq: seq, id: id, answer: answer, err: err}
	})
}

func exportCmd(dir string, in render.Input) tea.Cmd {
	return runJob("export", func() tea.Msg {
		if dir == "" {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return exportResultMsg{err: err}
		}
		path := filepath.Join(dir, fmt.Sprintf("qrganize-summary-%s.html", time.Now().Format("20060102-150405")))
		if err := os.WriteFile(path, []byte(render.Document(in)), 0o644); err != nil {
			return exportResultMsg{err: err}
		}
		return exportResultMsg{path: path}
	})
}

func archiveCmd(dir string, snap session.Snapshot) tea.Cmd {
	return runJob("archive", func() tea.Msg {
		path, err := session.SaveSnapshot(dir, snap)
		return archiveResultMsg{path: path, err: err}
	})
}
