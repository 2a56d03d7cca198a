// Package panel is the interactive side panel: it owns the summarize
// and question/answer lifecycle and renders the result. At most one
// summarize operation runs at a time; every async result carries the
// sequence number of the operation that started it, and results from
// superseded operations are dropped.
package panel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chintak/qrganize/internal/article"
	"github.com/chintak/qrganize/internal/config"
	"github.com/chintak/qrganize/internal/keypoints"
	"github.com/chintak/qrganize/internal/prompt"
	"github.com/chintak/qrganize/internal/provider"
	"github.com/chintak/qrganize/internal/render"
	"github.com/chintak/qrganize/internal/session"
)

// Deps wires the panel's collaborators. Zero values get working
// defaults, so tests can replace exactly what they need.
type Deps struct {
	LoadConfig func() (config.Config, error)
	Extractor  article.Extractor
	NewClient  func(provider.Config) (provider.Client, error)
	CopyText   func(string) error
	Host       Host

	// PageURL and Selection seed the first summarize. A non-empty
	// Selection wins over PageURL, mirroring a host-page text
	// selection trigger.
	PageURL   string
	Selection string

	ExportDir string
}

// Model is the bubbletea model for the panel.
type Model struct {
	deps Deps

	stage        stage
	statusMsg    string
	errMsg       string
	errRetryable bool

	// cfg is the snapshot taken when the current operation started;
	// the file is re-read at the start of every operation.
	cfg config.Config

	art          article.Article
	points       []keypoints.KeyPoint
	direct       string
	rawResponse  string
	lastPrompt   string
	usedFallback bool
	showOriginal bool

	running bool
	opSeq   int
	opCtx   context.Context
	cancel  context.CancelFunc
	client  provider.Client

	qa session.History

	spinner      spinner.Model
	composer     textinput.Model
	viewport     viewport.Model
	width        int
	height       int
	ready        bool
	contentDirty bool
	quitting     bool
}

// New builds the panel model, filling in default collaborators.
func New(deps Deps) *Model {
	if deps.LoadConfig == nil {
		deps.LoadConfig = func() (config.Config, error) { return config.Load("") }
	}
	if deps.NewClient == nil {
		deps.NewClient = provider.New
	}
	if deps.CopyText == nil {
		deps.CopyText = clipboard.WriteAll
	}
	if deps.Host == nil {
		deps.Host = LogHost{}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	composer := textinput.New()
	composer.Placeholder = composerPlaceholder
	composer.CharLimit = 500

	vp := viewport.New(80, 20)

	return &Model{
		deps:     deps,
		stage:    stageIdle,
		spinner:  sp,
		composer: composer,
		viewport: vp,
	}
}

func (m *Model) Init() tea.Cmd {
	m.deps.Host.PanelReady()
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.deps.Selection != "" || m.deps.PageURL != "" {
		if cmd := m.startSummarize(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case articleResultMsg:
		return m, m.handleArticleResult(msg)
	case summaryResultMsg:
		m.handleSummaryResult(msg)
		return m, nil
	case streamEnvelope:
		return m, m.handleStreamEnvelope(msg)
	case answerResultMsg:
		m.handleAnswerResult(msg)
		return m, nil
	case exportResultMsg:
		if msg.err != nil {
			m.statusMsg = "Export failed: " + msg.err.Error()
		} else {
			m.statusMsg = "Exported to " + msg.path
		}
		return m, nil
	case archiveResultMsg:
		if msg.err != nil {
			m.statusMsg = "Archive failed: " + msg.err.Error()
		} else {
			m.statusMsg = "Session saved to " + msg.path
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.composer.Focused() {
		switch msg.String() {
		case "enter":
			return m, m.submitQuestion()
		case "esc":
			m.composer.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.composer, cmd = m.composer.Update(msg)
			return m, cmd
		}
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		m.deps.Host.ClosePanel()
		return m, tea.Quit
	case "s":
		return m, m.startSummarize()
	case "a", "i":
		m.statusMsg = ""
		m.composer.Focus()
		return m, textinput.Blink
	case "c", "esc":
		m.cancelRunning()
		return m, nil
	case "r":
		return m, m.retry()
	case "x":
		m.reset()
		return m, nil
	case "d":
		m.copyDiagnostics()
		return m, nil
	case "o":
		m.showOriginal = !m.showOriginal
		m.contentDirty = true
		return m, nil
	case "e":
		return m, m.export()
	case "w":
		return m, m.archive()
	case "up", "k":
		m.viewport.LineUp(1)
		return m, nil
	case "down", "j":
		m.viewport.LineDown(1)
		return m, nil
	case "pgup":
		m.viewport.HalfViewUp()
		return m, nil
	case "pgdown":
		m.viewport.HalfViewDown()
		return m, nil
	}
	return m, nil
}

// startSummarize begins a fresh summarize operation. Re-entry while one
// is running is a no-op; the single-flight guarantee lives here.
func (m *Model) startSummarize() tea.Cmd {
	if m.running {
		m.statusMsg = "A summary is already running."
		return nil
	}
	// A new operation bumps opSeq, which would strand an in-flight
	// answer at the sequence check and leave its entry pending forever.
	if m.qa.Pending() {
		m.statusMsg = "Wait for the pending answer first."
		return nil
	}

	cfg, err := m.deps.LoadConfig()
	if err != nil {
		m.enterError("Could not load configuration: "+err.Error(), false)
		return nil
	}
	m.cfg = cfg

	client, err := m.deps.NewClient(providerConfig(cfg))
	if err != nil {
		m.failWith(err)
		return nil
	}

	if m.deps.Selection == "" && m.deps.PageURL == "" {
		m.enterError("Nothing to summarize: no page URL and no selected text.", false)
		return nil
	}

	// The running flag, the sequence bump, and the cancel handle are
	// set together before any suspension point.
	m.opSeq++
	seq := m.opSeq
	ctx, cancel := context.WithCancel(context.Background())
	m.opCtx = ctx
	m.cancel = cancel
	m.client = client
	m.running = true
	m.clearResult()
	m.stage = stageFetching
	m.statusMsg = ""
	m.errMsg = ""

	if m.deps.Selection != "" {
		art := article.FromSelection(m.deps.Selection)
		return func() tea.Msg { return articleResultMsg{seq: seq, art: art} }
	}
	return fetchArticleCmd(seq, ctx, m.deps.Extractor, m.deps.PageURL)
}

func (m *Model) handleArticleResult(msg articleResultMsg) tea.Cmd {
	if msg.seq != m.opSeq {
		return nil
	}
	if msg.err != nil {
		m.finishOp()
		if errors.Is(msg.err, context.Canceled) {
			m.failWith(provider.ErrCancelled)
			return nil
		}
		m.failWith(fmt.Errorf("article extraction failed: %w", msg.err))
		return nil
	}
	if strings.TrimSpace(msg.art.Text) == "" {
		m.finishOp()
		m.enterError("The page produced no readable text.", true)
		return nil
	}

	m.art = msg.art
	m.stage = stageSummarizing
	m.contentDirty = true

	opts := prompt.Options{
		Direct:      m.cfg.DirectOutput,
		DetailLevel: m.cfg.DetailLevel,
		Language:    m.cfg.OutputLanguage,
	}
	system, user := prompt.Summary(m.art.Title, m.art.Text, opts)
	m.lastPrompt = user

	if m.cfg.DirectOutput {
		if m.cfg.StreamOutput {
			if streamer, ok := m.client.(provider.Streamer); ok {
				m.direct = ""
				return streamSummaryCmd(msg.seq, m.opCtx, streamer, system, user)
			}
		}
		return summarizeCmd(msg.seq, m.opCtx, m.client, false, system, user, "")
	}

	directOpts := opts
	directOpts.Direct = true
	_, directUser := prompt.Summary(m.art.Title, m.art.Text, directOpts)
	return summarizeCmd(msg.seq, m.opCtx, m.client, true, system, user, directUser)
}

func (m *Model) handleSummaryResult(msg summaryResultMsg) {
	if msg.seq != m.opSeq {
		return
	}
	m.finishOp()
	m.rawResponse = msg.raw
	if msg.err != nil {
		m.failWith(msg.err)
		// The structured attempt already failed once; a failure of the
		// automatic direct fallback is terminal for this operation.
		if msg.usedFallback {
			m.errRetryable = false
		}
		return
	}
	if msg.direct != "" {
		m.direct = msg.direct
		m.usedFallback = msg.usedFallback
		m.stage = stageRendered
		m.contentDirty = true
		if msg.usedFallback {
			m.statusMsg = "Structured output did not parse; showing the prose fallback."
		}
		return
	}
	if len(msg.points) == 0 {
		m.enterError("No key points: "+keypoints.EmptyReason(msg.raw)+".", true)
		return
	}
	m.points = msg.points
	m.stage = stageRendered
	m.contentDirty = true
}

func (m *Model) handleStreamEnvelope(env streamEnvelope) tea.Cmd {
	switch msg := env.msg.(type) {
	case chunkMsg:
		if msg.seq == m.opSeq {
			m.direct += msg.chunk
			m.contentDirty = true
		}
		// Keep draining even when stale so the producer can finish.
		return awaitStream(env.ch)
	case streamDoneMsg:
		m.handleSummaryResult(summaryResultMsg{seq: msg.seq, raw: msg.raw, direct: msg.raw, err: msg.err})
		return nil
	}
	return nil
}

func (m *Model) submitQuestion() tea.Cmd {
	question := strings.TrimSpace(m.composer.Value())
	if question == "" {
		return nil
	}
	if m.running {
		m.statusMsg = "Wait for the summary to finish before asking."
		return nil
	}
	if m.qa.Pending() {
		m.statusMsg = "Wait for the pending answer first."
		return nil
	}
	if m.stage != stageRendered {
		m.statusMsg = "Summarize an article before asking questions."
		return nil
	}

	cfg, err := m.deps.LoadConfig()
	if err != nil {
		m.statusMsg = "Could not load configuration: " + err.Error()
		return nil
	}
	m.cfg = cfg
	client, err := m.deps.NewClient(providerConfig(cfg))
	if err != nil {
		msg, _ := describeError(err, cfg.ShowDetailedErrors)
		m.statusMsg = msg
		return nil
	}

	system, user := prompt.QA(prompt.QAInput{
		Question:   question,
		PageTitle:  m.art.Title,
		History:    m.qa.Exchanges(0),
		KeyPoints:  m.points,
		SourceText: m.art.Text,
	}, m.promptOptions())

	id := m.qa.Append(question, user)
	m.composer.Reset()
	m.composer.Blur()
	m.statusMsg = ""
	m.contentDirty = true
	return answerCmd(m.opSeq, id, client, system, user)
}

func (m *Model) handleAnswerResult(msg answerResultMsg) {
	if msg.seq != m.opSeq {
		return
	}
	if msg.err != nil {
		text, _ := describeError(msg.err, m.cfg.ShowDetailedErrors)
		m.qa.Fail(msg.id, text)
	} else {
		m.qa.Resolve(msg.id, msg.answer, msg.answer)
	}
	m.contentDirty = true
}

// retry re-runs whichever failure is showing: a failed summary restarts
// the whole operation with the same input, a failed question re-sends
// only that question with its history truncated to what it could see
// the first time.
func (m *Model) retry() tea.Cmd {
	if m.stage == stageError && m.errRetryable {
		return m.startSummarize()
	}
	entries := m.qa.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Err != "" {
			return m.retryQuestion(entries[i].ID, entries[i].Question)
		}
	}
	return nil
}

func (m *Model) retryQuestion(id int64, question string) tea.Cmd {
	if m.running || m.qa.Pending() {
		return nil
	}
	cfg, err := m.deps.LoadConfig()
	if err != nil {
		m.statusMsg = "Could not load configuration: " + err.Error()
		return nil
	}
	m.cfg = cfg
	client, err := m.deps.NewClient(providerConfig(cfg))
	if err != nil {
		msg, _ := describeError(err, cfg.ShowDetailedErrors)
		m.statusMsg = msg
		return nil
	}

	system, user := prompt.QA(prompt.QAInput{
		Question:   question,
		PageTitle:  m.art.Title,
		History:    m.qa.Exchanges(id),
		KeyPoints:  m.points,
		SourceText: m.art.Text,
	}, m.promptOptions())

	if !m.qa.Retry(id, user) {
		return nil
	}
	m.contentDirty = true
	return answerCmd(m.opSeq, id, client, system, user)
}

func (m *Model) cancelRunning() {
	if !m.running || m.cancel == nil {
		return
	}
	// The in-flight job observes the cancelled context and reports
	// back with this operation's sequence number; the error path shows
	// the cancelled message without a retry control.
	m.cancel()
	m.statusMsg = "Cancelling..."
}

func (m *Model) reset() {
	if m.running {
		m.statusMsg = "Cancel the running operation first."
		return
	}
	m.clearResult()
	m.qa.Reset()
	m.art = article.Article{}
	m.deps.Selection = ""
	m.stage = stageIdle
	m.statusMsg = ""
	m.errMsg = ""
	m.contentDirty = true
}

func (m *Model) copyDiagnostics() {
	if !m.cfg.ShowDetailedErrors {
		m.statusMsg = "Diagnostics copy requires showDetailedErrors."
		return
	}
	if m.lastPrompt == "" && m.rawResponse == "" {
		m.statusMsg = "No diagnostics to copy yet."
		return
	}
	sections := []string{
		"PROMPT:\n" + m.lastPrompt,
		"RAW RESPONSE:\n" + m.rawResponse,
	}
	if strings.TrimSpace(m.art.Text) != "" {
		sections = append(sections, "SOURCE TEXT:\n"+m.art.Text)
	}
	for _, entry := range m.qa.Entries() {
		sections = append(sections, fmt.Sprintf("QUESTION %d PROMPT:\n%s\n\nQUESTION %d RAW RESPONSE:\n%s",
			entry.ID, entry.Prompt, entry.ID, entry.RawResponse))
	}
	payload := strings.Join(sections, "\n\n")
	if err := m.deps.CopyText(payload); err != nil {
		m.statusMsg = "Copy failed: " + err.Error()
		return
	}
	m.statusMsg = "Diagnostics copied to clipboard."
}

func (m *Model) export() tea.Cmd {
	if m.stage != stageRendered {
		m.statusMsg = "Nothing to export yet."
		return nil
	}
	return exportCmd(m.deps.ExportDir, render.Input{
		Title:        m.art.Title,
		KeyPoints:    m.points,
		DirectText:   m.direct,
		QA:           m.qa.Entries(),
		Original:     m.art.Text,
		ShowOriginal: m.showOriginal,
	})
}

func (m *Model) archive() tea.Cmd {
	if m.stage != stageRendered {
		m.statusMsg = "Nothing to archive yet."
		return nil
	}
	return archiveCmd(m.cfg.ArchiveDir, session.Snapshot{
		Title:      m.art.Title,
		SourceURL:  m.deps.PageURL,
		Provider:   m.cfg.Provider,
		Model:      m.cfg.Model,
		KeyPoints:  m.points,
		DirectText: m.direct,
		QA:         m.qa.Entries(),
	})
}

// finishOp releases the current operation's resources. Results for it
// already delivered keep their sequence number, so a bump is not
// needed here.
func (m *Model) finishOp() {
	m.running = false
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.opCtx = nil
	m.client = nil
}

func (m *Model) clearResult() {
	m.points = nil
	m.direct = ""
	m.rawResponse = ""
	m.lastPrompt = ""
	m.usedFallback = false
	m.contentDirty = true
}

func (m *Model) failWith(err error) {
	msg, retryable := describeError(err, m.cfg.ShowDetailedErrors)
	m.enterError(msg, retryable)
}

func (m *Model) enterError(msg string, retryable bool) {
	m.stage = stageError
	m.errMsg = msg
	m.errRetryable = retryable
	m.contentDirty = true
}

func (m *Model) promptOptions() prompt.Options {
	return prompt.Options{
		Direct:      m.cfg.DirectOutput,
		DetailLevel: m.cfg.DetailLevel,
		Language:    m.cfg.OutputLanguage,
	}
}

func providerConfig(cfg config.Config) provider.Config {
	return provider.Config{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		APIURL:   cfg.APIURL,
		APIKey:   cfg.APIKey(),
		Timeout:  cfg.Timeout(),
	}
}
