package panel

import "log"

// Host is the surface embedding the panel. The panel announces when it
// is ready to receive work and when it closes.
type Host interface {
	PanelReady()
	ClosePanel()
}

// LogHost reports lifecycle events on the process log. It is the
// default host when the panel runs standalone.
type LogHost struct{}

func (LogHost) PanelReady() {
	log.Printf("[host] panel ready")
}

func (LogHost) ClosePanel() {
	log.Printf("[host] panel closed")
}
