package components

import "github.com/charmbracelet/lipgloss"

var (
	PrimaryColor   = lipgloss.Color("#7D56F4")
	SecondaryColor = lipgloss.Color("#04B575")
	DangerColor    = lipgloss.Color("#F25D94")
	Gray           = lipgloss.Color("#8B8B8B")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			Padding(0, 1)

	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Gray).
			Padding(1, 2)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#282828")).
			Padding(0, 1)

	OkStyle   = lipgloss.NewStyle().Foreground(SecondaryColor)
	WarnStyle = lipgloss.NewStyle().Foreground(DangerColor)
)
