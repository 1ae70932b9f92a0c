package ui

import "github.com/charmbracelet/lipgloss"

var (
	_titleStyle       = lipgloss.NewStyle().Bold(true)
	_descriptionStyle = lipgloss.NewStyle().Faint(true)
	_errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	_selectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
)
