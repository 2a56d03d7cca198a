package panel

import "github.com/charmbracelet/lipgloss"

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	pointTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	quoteStyle         = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("110"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	questionStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("147"))
	statusBarStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)

	heroAccentColor = lipgloss.Color("#ff8c00")
	heroTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(heroAccentColor)
	taglineStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffb347")).Italic(true)
)
