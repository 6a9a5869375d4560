package ui

import "github.com/charmbracelet/lipgloss"

const (
	selfTag   = "me:"
	friendTag = "peer:"
)

type styles struct {
	status lipgloss.Style
	friend lipgloss.Style
	self   lipgloss.Style
	prompt lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		status: lipgloss.NewStyle().Foreground(lipgloss.Color("#657b83")).Italic(true),
		friend: lipgloss.NewStyle().Foreground(lipgloss.Color("#6c71c4")).Bold(true),
		self:   lipgloss.NewStyle().Foreground(lipgloss.Color("#268bd2")).Bold(true),
		prompt: lipgloss.NewStyle().Foreground(lipgloss.Color("#657b83")),
	}
}
