package panel

type stage int

const (
	stageIdle stage = iota
	stageFetching
	stageSummarizing
	stageRendered
	stageError
)

func (s stage) String() string {
	switch s {
	case stageIdle:
		return "idle"
	case stageFetching:
		return "fetching"
	case stageSummarizing:
		return "summarizing"
	case stageRendered:
		return "rendered"
	case stageError:
		return "error"
	default:
		return "unknown"
	}
}

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
)

const heroTagline = "Summarize and interrogate any article."

const composerPlaceholder = "Ask a question about the article…"
