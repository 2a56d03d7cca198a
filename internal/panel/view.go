package panel

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/chintak/qrganize/internal/markup"
)

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	m.refreshViewportIfDirty()
	return joinNonEmpty([]string{
		m.heroView(),
		m.viewport.View(),
		m.noticeView(),
		m.composerView(),
		m.footerView(),
	})
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	inner := width - viewportHorizontalPadding
	if inner < minViewportWidth {
		inner = minViewportWidth
	}
	m.viewport.Width = inner
	const chrome = 10
	body := height - chrome
	if body < 8 {
		body = 8
	}
	m.viewport.Height = body
	m.composer.Width = inner - 4
	m.ready = true
	m.contentDirty = true
}

func (m *Model) refreshViewportIfDirty() {
	if !m.contentDirty {
		return
	}
	m.viewport.SetContent(m.buildContent())
	m.contentDirty = false
}

func (m *Model) heroView() string {
	title := "Qrganize"
	if m.art.Title != "" {
		title = m.art.Title
	}
	parts := []string{heroTitleStyle.Render(wordwrap.String(title, m.wrapWidth(0)))}
	if m.cfg.Provider != "" {
		parts = append(parts, helperStyle.Render(fmt.Sprintf("%s · %s · %s detail", m.cfg.Provider, m.cfg.Model, m.cfg.DetailLevel)))
	}
	parts = append(parts, taglineStyle.Render(heroTagline))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) buildContent() string {
	var b strings.Builder
	wrap := m.wrapWidth(2)

	switch m.stage {
	case stageIdle:
		b.WriteString(helperStyle.Render("Press s to summarize, q to quit."))
	case stageFetching:
		b.WriteString(helperStyle.Render("Fetching article..."))
	case stageSummarizing:
		b.WriteString(helperStyle.Render("Summarizing..."))
		if m.direct != "" {
			// Streamed chunks render as they land.
			b.WriteString("\n\n")
			b.WriteString(wordwrap.String(markup.StripThinking(m.direct), wrap))
		}
	case stageError:
		b.WriteString(errorStyle.Render(wordwrap.String(m.errMsg, wrap)))
		if m.errRetryable {
			b.WriteString("\n\n")
			b.WriteString(helperStyle.Render("Press r to retry."))
		}
	case stageRendered:
		m.writeSummary(&b, wrap)
	}

	m.writeThread(&b, wrap)

	if m.showOriginal && strings.TrimSpace(m.art.Text) != "" {
		b.WriteString("\n\n")
		b.WriteString(sectionHeaderStyle.Render("Original article"))
		b.WriteString("\n")
		b.WriteString(helperStyle.Render(wordwrap.String(m.art.Text, wrap)))
	}
	return b.String()
}

func (m *Model) writeSummary(b *strings.Builder, wrap int) {
	if len(m.points) > 0 {
		b.WriteString(sectionHeaderStyle.Render("Outline"))
		b.WriteString("\n")
		for i, point := range m.points {
			fmt.Fprintf(b, "  %d. %s\n", i+1, point.Title)
		}
		b.WriteString("\n")
		for i, point := range m.points {
			b.WriteString(pointTitleStyle.Render(fmt.Sprintf("%d. %s", i+1, point.Title)))
			b.WriteString("\n")
			b.WriteString(indentMultiline(wordwrap.String(point.Details, wrap), "  "))
			b.WriteString("\n")
			if point.Quote != "" {
				b.WriteString(indentMultiline(quoteStyle.Render(wordwrap.String("“"+point.Quote+"”", wrap)), "  "))
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
		return
	}
	if m.direct != "" {
		b.WriteString(wordwrap.String(markup.StripThinking(m.direct), wrap))
		b.WriteString("\n")
	}
}

func (m *Model) writeThread(b *strings.Builder, wrap int) {
	entries := m.qa.Entries()
	if len(entries) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(sectionHeaderStyle.Render("Questions"))
	b.WriteString("\n")
	for _, entry := range entries {
		b.WriteString(questionStyle.Render("Q: " + entry.Question))
		b.WriteString("\n")
		switch {
		case entry.Pending:
			b.WriteString(helperStyle.Render("  thinking..."))
		case entry.Err != "":
			b.WriteString(errorStyle.Render(indentMultiline(wordwrap.String(entry.Err, wrap), "  ")))
		default:
			b.WriteString(indentMultiline(wordwrap.String(markup.StripThinking(entry.Answer), wrap), "  "))
		}
		b.WriteString("\n\n")
	}
}

func (m *Model) noticeView() string {
	var parts []string
	if m.running || m.qa.Pending() {
		parts = append(parts, fmt.Sprintf("%s working...", m.spinner.View()))
	}
	if m.statusMsg != "" {
		parts = append(parts, helperStyle.Render(m.statusMsg))
	}
	return strings.Join(parts, "\n")
}

func (m *Model) composerView() string {
	if m.stage != stageRendered && !m.composer.Focused() {
		return ""
	}
	return joinNonEmpty([]string{
		sectionHeaderStyle.Render("Ask"),
		m.composer.View(),
	})
}

func (m *Model) footerView() string {
	hints := []string{"s summarize", "a ask", "r retry", "c cancel", "x clear", "e export", "w save", "q quit"}
	if m.cfg.ShowDetailedErrors {
		hints = append(hints, "d diagnostics", "o original")
	}
	return statusBarStyle.Render(strings.Join(hints, "  ·  "))
}

func (m *Model) wrapWidth(padding int) int {
	width := m.viewport.Width - padding
	if width < 20 {
		width = 20
	}
	return width
}

func indentMultiline(text, indent string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}
