package chatui

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	Title     lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	Tool      lipgloss.Style
	Error     lipgloss.Style
	Help      lipgloss.Style
}

func NewStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		User:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Assistant: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Tool:      lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("244")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Help:      lipgloss.NewStyle().Faint(true),
	}
}
