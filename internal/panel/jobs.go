package panel

import (
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// runJob executes runner off the UI goroutine and delivers its result
// message, logging one line per completion so a debug log shows what
// the panel was doing and for how long.
func runJob(kind string, runner func() tea.Msg) tea.Cmd {
	started := time.Now()
	return func() tea.Msg {
		msg := runner()
		log.Printf("[jobs] %s finished in %s", kind, time.Since(started).Round(time.Millisecond))
		return msg
	}
}
