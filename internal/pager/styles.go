package pager

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var (
	skeletonStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	emptyTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginTop(1)
	emptyDescriptionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
	hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	pageStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Padding(0, 1)
	activePageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true)
	disabledPageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238")).Padding(0, 1)
)

func tableStyles(stale bool) table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	if stale {
		s.Cell = s.Cell.Faint(true)
		s.Selected = s.Selected.Faint(true)
	}
	return s
}
