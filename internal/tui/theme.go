package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Tab bar styles
	TabStyle       = lipgloss.NewStyle().Padding(0, 2)
	ActiveTabStyle = TabStyle.Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))
	InactiveTabStyle = TabStyle.
				Foreground(lipgloss.Color("#888888"))

	// Candle colors
	CandleUpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	CandleDownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	CandleFlatStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	// Signal direction colors
	DirectionCallStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)
	DirectionPutStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
	DirectionHoldStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))

	// Trade outcome colors
	OutcomeWinStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	OutcomeLossStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	OutcomePendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))

	// General styles
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	SubtextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	BorderStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#555555"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	SpinnerColor = lipgloss.Color("#7D56F4")

	// Confidence bar colors
	ConfidenceGoodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	ConfidenceOkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	ConfidenceBadStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
)
