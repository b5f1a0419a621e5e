package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pocket-pulse/internal/domain"
)

// MarketModel renders the detailed market-analysis screen: candles,
// patterns, levels and indicators for the active feed. It feeds off the
// overview messages the dashboard fetch loop already produces.
type MarketModel struct {
	analysis domain.MarketAnalysis
	loaded   bool
	width    int
	height   int
}

func NewMarketModel() MarketModel {
	return MarketModel{}
}

func (m MarketModel) Init() tea.Cmd { return nil }

func (m MarketModel) Update(msg tea.Msg) (MarketModel, tea.Cmd) {
	if overview, ok := msg.(overviewMsg); ok {
		m.analysis = overview.Analysis
		m.loaded = true
	}
	return m, nil
}

func (m MarketModel) View() string {
	if !m.loaded {
		return SubtextStyle.Render("Waiting for market data...")
	}

	candleBox := BorderStyle.Width(m.boxWidth()).Render(m.renderCandles())
	patternBox := BorderStyle.Width(m.boxWidth()).Render(m.renderPatterns())
	levelBox := BorderStyle.Width(m.boxWidth()).Render(m.renderLevels())
	indicatorBox := BorderStyle.Width(m.boxWidth()).Render(m.renderIndicators())

	return lipgloss.JoinVertical(lipgloss.Left, candleBox, patternBox, levelBox, indicatorBox)
}

func (m *MarketModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m MarketModel) boxWidth() int {
	if m.width < 64 {
		return 62
	}
	return m.width - 2
}

func (m MarketModel) renderCandles() string {
	lines := []string{
		HeaderStyle.Render("  Candles") + "  " + RenderTrendBadge(m.analysis.Trend),
	}

	count := len(m.analysis.Candles)
	if count > 8 {
		count = 8
	}
	for i := 0; i < count; i++ {
		lines = append(lines, "  "+FormatCandle(m.analysis.Candles[i]))
	}
	if count == 0 {
		lines = append(lines, SubtextStyle.Render("  No candle data"))
	}
	return strings.Join(lines, "\n")
}

func (m MarketModel) renderPatterns() string {
	lines := []string{HeaderStyle.Render("  Patterns")}

	for _, p := range m.analysis.Patterns {
		lines = append(lines, "  "+FormatPattern(p))
	}
	if len(m.analysis.Patterns) == 0 {
		lines = append(lines, SubtextStyle.Render("  No patterns detected"))
	}
	return strings.Join(lines, "\n")
}

func (m MarketModel) renderLevels() string {
	lines := []string{HeaderStyle.Render("  Support / Resistance")}

	for _, l := range m.analysis.Levels.Resistance {
		lines = append(lines, "  "+FormatLevel("resistance", l))
	}
	for _, l := range m.analysis.Levels.Support {
		lines = append(lines, "  "+FormatLevel("support", l))
	}
	if len(m.analysis.Levels.Support)+len(m.analysis.Levels.Resistance) == 0 {
		lines = append(lines, SubtextStyle.Render("  No levels found"))
	}
	return strings.Join(lines, "\n")
}

func (m MarketModel) renderIndicators() string {
	lines := []string{HeaderStyle.Render("  Indicators")}
	ind := m.analysis.Indicators

	if ind.RSI != nil {
		style := CandleFlatStyle
		if ind.RSI.Signal == "overbought" {
			style = CandleDownStyle
		} else if ind.RSI.Signal == "oversold" {
			style = CandleUpStyle
		}
		lines = append(lines, fmt.Sprintf("  RSI(14): %.1f %s", ind.RSI.Value, style.Render(ind.RSI.Signal)))
	}
	if ind.MACD != nil {
		style := CandleFlatStyle
		if ind.MACD.Trend == "bullish" {
			style = CandleUpStyle
		} else if ind.MACD.Trend == "bearish" {
			style = CandleDownStyle
		}
		lines = append(lines, fmt.Sprintf("  MACD: %.5f signal %.5f hist %.5f %s",
			ind.MACD.MACDLine, ind.MACD.SignalLine, ind.MACD.Histogram, style.Render(ind.MACD.Trend)))
	}
	if ind.ATR > 0 {
		lines = append(lines, fmt.Sprintf("  ATR(14): %.5f", ind.ATR))
	}
	if len(lines) == 1 {
		lines = append(lines, SubtextStyle.Render("  Not enough history for indicators"))
	}
	return strings.Join(lines, "\n")
}
