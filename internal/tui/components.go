package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"pocket-pulse/internal/domain"
)

// FormatCandle renders one OHLC bar as a single line.
func FormatCandle(c domain.Candle) string {
	style := CandleFlatStyle
	marker := "-"
	if c.Bullish() {
		style = CandleUpStyle
		marker = "▲"
	} else if c.Bearish() {
		style = CandleDownStyle
		marker = "▼"
	}

	return fmt.Sprintf("%s  %s  O %.5f  H %.5f  L %.5f  C %.5f",
		time.Unix(c.Timestamp, 0).UTC().Format("15:04:05"),
		style.Render(marker),
		c.Open, c.High, c.Low, c.Close,
	)
}

// FormatSignalLine renders a derived signal as a single line.
func FormatSignalLine(s domain.Signal) string {
	dirStyle := DirectionHoldStyle
	switch s.Direction {
	case domain.DirectionCall:
		dirStyle = DirectionCallStyle
	case domain.DirectionPut:
		dirStyle = DirectionPutStyle
	}

	return fmt.Sprintf("%s  %s  %s",
		dirStyle.Render(string(s.Direction)),
		RenderConfidenceBar(s.Confidence, 20),
		SubtextStyle.Render(s.Reasoning),
	)
}

// FormatPattern renders a detected pattern as a single line.
func FormatPattern(p domain.Pattern) string {
	dirStyle := DirectionHoldStyle
	switch p.Signal {
	case domain.PatternCall:
		dirStyle = DirectionCallStyle
	case domain.PatternPut:
		dirStyle = DirectionPutStyle
	}
	return fmt.Sprintf("%-20s %-13s %s  strength %.2f",
		p.Name, p.Type, dirStyle.Render(string(p.Signal)), p.Strength)
}

// FormatTrade renders one historical trade as a single line.
func FormatTrade(t domain.Trade) string {
	outcomeStyle := OutcomePendingStyle
	switch t.Outcome {
	case domain.OutcomeWin:
		outcomeStyle = OutcomeWinStyle
	case domain.OutcomeLoss, domain.OutcomeFailed:
		outcomeStyle = OutcomeLossStyle
	}

	dirStyle := DirectionHoldStyle
	switch t.Direction {
	case domain.DirectionCall:
		dirStyle = DirectionCallStyle
	case domain.DirectionPut:
		dirStyle = DirectionPutStyle
	}

	return fmt.Sprintf("%-12s %s  $%-7.2f %2.0f%%  %s  %s",
		t.Asset,
		dirStyle.Render(fmt.Sprintf("%-4s", t.Direction)),
		t.Amount,
		t.Confidence*100,
		outcomeStyle.Render(fmt.Sprintf("%-7s", t.Outcome)),
		SubtextStyle.Render(t.CreatedAt.UTC().Format(time.RFC822)),
	)
}

// RenderConfidenceBar renders an ASCII bar scaled to a [0,1] confidence.
func RenderConfidenceBar(confidence float64, barWidth int) string {
	if barWidth <= 0 {
		barWidth = 20
	}
	filled := int(math.Round(confidence * float64(barWidth)))
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	empty := barWidth - filled

	style := ConfidenceGoodStyle
	if confidence < 0.6 {
		style = ConfidenceBadStyle
	} else if confidence < 0.75 {
		style = ConfidenceOkStyle
	}

	bar := style.Render(strings.Repeat("█", filled)) + SubtextStyle.Render(strings.Repeat("░", empty))
	return fmt.Sprintf("%s %.0f%%", bar, confidence*100)
}

// RenderTrendBadge renders the trend with its directional color.
func RenderTrendBadge(trend domain.Trend) string {
	switch trend {
	case domain.TrendUp:
		return CandleUpStyle.Render("UPTREND")
	case domain.TrendDown:
		return CandleDownStyle.Render("DOWNTREND")
	default:
		return SubtextStyle.Render("NEUTRAL")
	}
}

// FormatLevel renders a support/resistance level as a single line.
func FormatLevel(kind string, l domain.Level) string {
	return fmt.Sprintf("%-10s %.5f  touches %d  strength %.2f",
		kind, l.Price, l.Touches, l.Strength)
}
