package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"}
	hashFg = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"}
	skipFg = lipgloss.AdaptiveColor{Light: "#64748B", Dark: "#94A3B8"}
	failFg = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
)

var (
	frameStyle = lipgloss.NewStyle().Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1C1917")).
			Background(accent).
			Padding(0, 1)

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)

	rowStyle = lipgloss.NewStyle()

	labelStyle = lipgloss.NewStyle().
			Foreground(skipFg)

	lineStyle = lipgloss.NewStyle().
			Foreground(hashFg)

	keysStyle = lipgloss.NewStyle().
			Foreground(skipFg).
			Padding(1, 0, 0, 0)

	hashBadge = lipgloss.NewStyle().
			Foreground(hashFg).
			Bold(true)

	skipBadge = lipgloss.NewStyle().
			Foreground(skipFg).
			Italic(true)

	failBadge = lipgloss.NewStyle().
			Foreground(failFg).
			Bold(true)
)
