// Package tui provides the terminal user interface for cookieschat.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/cookieschat/internal/render"
)

// Style variables (rebuilt when theme changes)
var (
	headerStyle   lipgloss.Style
	titleStyle    lipgloss.Style
	subtitleStyle lipgloss.Style
	hintStyle     lipgloss.Style

	messagesAreaStyle lipgloss.Style

	userBubbleStyle  lipgloss.Style
	userLabelStyle   lipgloss.Style
	modelBubbleStyle lipgloss.Style
	modelLabelStyle  lipgloss.Style

	inputPanelStyle lipgloss.Style
	inputLabelStyle lipgloss.Style
	loadingStyle    lipgloss.Style

	statusBarStyle  lipgloss.Style
	statusKeyStyle  lipgloss.Style
	statusDescStyle lipgloss.Style
	noticeStyle     lipgloss.Style
	errorStyle      lipgloss.Style

	welcomeStyle      lipgloss.Style
	welcomeTitleStyle lipgloss.Style
	welcomeIconStyle  lipgloss.Style
)

// init loads the default theme on package initialization
func init() {
	UpdateTheme()
}

// UpdateTheme rebuilds all styles from the current TUI theme
func UpdateTheme() {
	theme := render.GetTUITheme()

	headerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
		Foreground(theme.Model).
		Bold(true)

	subtitleStyle = lipgloss.NewStyle().
		Foreground(theme.TextDim)

	hintStyle = lipgloss.NewStyle().
		Foreground(theme.TextDim)

	messagesAreaStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	userLabelStyle = lipgloss.NewStyle().
		Foreground(theme.User).
		Bold(true)

	userBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.User).
		Foreground(theme.Text).
		Padding(0, 1)

	modelLabelStyle = lipgloss.NewStyle().
		Foreground(theme.Model).
		Bold(true)

	modelBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Model).
		Foreground(theme.Text).
		Padding(0, 1)

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Accent).
		Padding(0, 1)

	inputLabelStyle = lipgloss.NewStyle().
		Foreground(theme.User).
		Bold(true)

	loadingStyle = lipgloss.NewStyle().
		Foreground(theme.Accent)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(theme.TextDim)

	statusKeyStyle = lipgloss.NewStyle().
		Foreground(theme.Accent).
		Bold(true)

	statusDescStyle = lipgloss.NewStyle().
		Foreground(theme.TextDim)

	noticeStyle = lipgloss.NewStyle().
		Foreground(theme.Warning).
		Italic(true)

	errorStyle = lipgloss.NewStyle().
		Foreground(theme.Error).
		Bold(true)

	welcomeStyle = lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Align(lipgloss.Center)

	welcomeTitleStyle = lipgloss.NewStyle().
		Foreground(theme.Text).
		Bold(true).
		Align(lipgloss.Center)

	welcomeIconStyle = lipgloss.NewStyle().
		Foreground(theme.Accent).
		Align(lipgloss.Center)
}
