// Package ui renders CLI output with lipgloss.
package ui

import "github.com/charmbracelet/lipgloss"

// Styles defines all lipgloss styles used in the CLI
var Styles = struct {
	Bold     lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Info     lipgloss.Style
	Box      lipgloss.Style
	Tip      lipgloss.Style
	Congrats lipgloss.Style
	User     lipgloss.Style
	AI       lipgloss.Style
}{
	Bold:     lipgloss.NewStyle().Bold(true),
	Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	Info:     lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
	Tip:      lipgloss.NewStyle().Foreground(lipgloss.Color("210")),
	Congrats: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	User:     lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
	AI:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("238")).
		Padding(0, 1).
		Width(60),
}

// toneColors maps report badge tones to terminal colors.
var toneColors = map[string]lipgloss.Color{
	"blue":   lipgloss.Color("39"),
	"green":  lipgloss.Color("42"),
	"red":    lipgloss.Color("196"),
	"yellow": lipgloss.Color("220"),
}

// Badge renders a colored label.
func Badge(label, tone string) string {
	color, ok := toneColors[tone]
	if !ok {
		color = lipgloss.Color("245")
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(label)
}
