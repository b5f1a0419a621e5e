package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pocket-pulse/internal/domain"
)

// TradesModel renders the trade-history screen.
type TradesModel struct {
	stats  domain.TradeStats
	loaded bool
	width  int
	height int
}

func NewTradesModel() TradesModel {
	return TradesModel{}
}

func (m TradesModel) Init() tea.Cmd { return nil }

func (m TradesModel) Update(msg tea.Msg) (TradesModel, tea.Cmd) {
	if overview, ok := msg.(overviewMsg); ok {
		m.stats = overview.Trades
		m.loaded = true
	}
	return m, nil
}

func (m TradesModel) View() string {
	if !m.loaded {
		return SubtextStyle.Render("Waiting for trade data...")
	}

	summaryBox := BorderStyle.Width(m.boxWidth()).Render(m.renderSummary())
	historyBox := BorderStyle.Width(m.boxWidth()).Render(m.renderHistory())
	return lipgloss.JoinVertical(lipgloss.Left, summaryBox, historyBox)
}

func (m *TradesModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m TradesModel) boxWidth() int {
	if m.width < 64 {
		return 62
	}
	return m.width - 2
}

func (m TradesModel) renderSummary() string {
	lines := []string{
		HeaderStyle.Render("  Performance"),
		fmt.Sprintf("  Total: %d   Wins: %d   Losses: %d", m.stats.Total, m.stats.Wins, m.stats.Losses),
		"  Win rate: " + RenderConfidenceBar(m.stats.WinRate, 20),
	}
	return strings.Join(lines, "\n")
}

func (m TradesModel) renderHistory() string {
	lines := []string{HeaderStyle.Render("  History (newest first)")}

	visible := len(m.stats.History)
	if m.height > 10 && visible > m.height-10 {
		visible = m.height - 10
	}
	if visible > len(m.stats.History) {
		visible = len(m.stats.History)
	}
	for i := 0; i < visible; i++ {
		lines = append(lines, "  "+FormatTrade(m.stats.History[i]))
	}
	if visible == 0 {
		lines = append(lines, SubtextStyle.Render("  No trades recorded"))
	}
	return strings.Join(lines, "\n")
}
