package mcp

import (
	"fmt"
	"strings"

	"pocket-pulse/internal/domain"
)

type botStatusInput struct{}

type botStatusOutput struct {
	Status domain.BotStatus `json:"status"`
}

type marketAnalysisInput struct{}

type marketAnalysisOutput struct {
	Analysis domain.MarketAnalysis `json:"analysis"`
}

type tradeStatsInput struct{}

type tradeStatsOutput struct {
	Stats domain.TradeStats `json:"stats"`
}

type scorePatternInput struct {
	Name     string  `json:"name,omitempty" jsonschema:"pattern name (e.g. bullish_engulfing)"`
	Signal   string  `json:"signal" jsonschema:"pattern bias: CALL, PUT or neutral"`
	Strength float64 `json:"strength" jsonschema:"pattern strength, conventionally in [0,1]"`
}

type scoreSignalInput struct {
	Trend    string              `json:"trend" jsonschema:"market trend: uptrend, downtrend or neutral"`
	Patterns []scorePatternInput `json:"patterns,omitempty" jsonschema:"detected candlestick patterns"`
}

type scoreSignalOutput struct {
	Signal domain.Signal `json:"signal"`
}

type botCommandInput struct {
	Action string `json:"action" jsonschema:"command: start, stop, start_trading, stop_trading, set_asset, set_timeframe, set_confidence, join_tournament"`
	Value  string `json:"value,omitempty" jsonschema:"command argument where required (asset name, timeframe seconds, confidence)"`
}

type botCommandOutput struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

var commandActions = map[string]struct{}{
	"start":           {},
	"stop":            {},
	"start_trading":   {},
	"stop_trading":    {},
	"set_asset":       {},
	"set_timeframe":   {},
	"set_confidence":  {},
	"join_tournament": {},
}

func normalizeAction(action string) (string, error) {
	action = strings.ToLower(strings.TrimSpace(action))
	if action == "" {
		return "", fmt.Errorf("action is required")
	}
	if _, ok := commandActions[action]; !ok {
		return "", fmt.Errorf("unsupported action: %s", action)
	}
	return action, nil
}

func normalizeTrend(trend string) (domain.Trend, error) {
	switch domain.Trend(strings.ToLower(strings.TrimSpace(trend))) {
	case domain.TrendUp:
		return domain.TrendUp, nil
	case domain.TrendDown:
		return domain.TrendDown, nil
	case domain.TrendNeutral, "":
		return domain.TrendNeutral, nil
	default:
		return "", fmt.Errorf("unsupported trend: %s", trend)
	}
}

func normalizePatternSignal(signal string) (domain.PatternSignal, error) {
	switch strings.ToUpper(strings.TrimSpace(signal)) {
	case "CALL":
		return domain.PatternCall, nil
	case "PUT":
		return domain.PatternPut, nil
	case "NEUTRAL", "":
		return domain.PatternNeutral, nil
	default:
		return "", fmt.Errorf("unsupported pattern signal: %s", signal)
	}
}

func analysisFromInput(in scoreSignalInput) (domain.MarketAnalysis, error) {
	trend, err := normalizeTrend(in.Trend)
	if err != nil {
		return domain.MarketAnalysis{}, err
	}

	analysis := domain.MarketAnalysis{Trend: trend}
	for _, p := range in.Patterns {
		sig, err := normalizePatternSignal(p.Signal)
		if err != nil {
			return domain.MarketAnalysis{}, err
		}
		analysis.Patterns = append(analysis.Patterns, domain.Pattern{
			Name:     p.Name,
			Signal:   sig,
			Strength: p.Strength,
		})
	}
	return analysis, nil
}
