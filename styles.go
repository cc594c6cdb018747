package main

import "github.com/charmbracelet/lipgloss"

// Unified color palette
var (
	primaryColor    = lipgloss.Color("109")
	accentColor     = lipgloss.Color("171")
	barBackground   = lipgloss.Color("233")
	mutedColor      = lipgloss.Color("239")
	subtleColor     = lipgloss.Color("244")
	warningColor    = lipgloss.Color("179")
	dangerColor     = lipgloss.Color("167")
	successColor    = lipgloss.Color("65")
	highlightColor  = lipgloss.Color("171")
	inputTextColor  = lipgloss.Color("231")
	confirmBarColor = lipgloss.Color("52")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	titleBarStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			Background(barBackground)

	ruleStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	optionKeyStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(highlightColor).
			Bold(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(highlightColor)

	numberStyle = lipgloss.NewStyle().
			Foreground(subtleColor)

	countStyle = lipgloss.NewStyle().
			Foreground(subtleColor)

	matchStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	dangerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(dangerColor)

	promptStyle = lipgloss.NewStyle().
			Foreground(primaryColor)

	inputStyle = lipgloss.NewStyle().
			Foreground(inputTextColor).
			Background(barBackground)

	confirmBarStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(inputTextColor).
			Background(confirmBarColor).
			Padding(0, 1)

	emptyStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)
)
