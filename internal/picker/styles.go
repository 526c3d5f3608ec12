package picker

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	activeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	normalStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	ownerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)
