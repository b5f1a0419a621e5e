package signal

import (
	"fmt"
	"math"

	"pocket-pulse/internal/domain"
)

const (
	trendWeight       = 1.0
	patternWeight     = 1.5
	decisionThreshold = 1.5
	maxConfidence     = 0.9
	holdConfidence    = 0.5
)

// HoldReasoning is the fixed explanation attached to every HOLD signal.
const HoldReasoning = "No clear signal. Waiting for stronger confirmation."

// Score derives a directional trading signal from a market-analysis snapshot.
// It is deterministic, has no side effects, and always returns a value.
//
// The trend contributes a flat weight to its side; each pattern contributes
// its strength times patternWeight. When the combined evidence does not clear
// decisionThreshold, or the two sides tie exactly, the result is HOLD.
// Pattern strength is untrusted external input and is deliberately not
// clamped; out-of-range values flow into the score as-is.
func Score(analysis domain.MarketAnalysis) domain.Signal {
	var callScore, putScore float64

	switch analysis.Trend {
	case domain.TrendUp:
		callScore += trendWeight
	case domain.TrendDown:
		putScore += trendWeight
	}

	for _, p := range analysis.Patterns {
		switch p.Signal {
		case domain.PatternCall:
			callScore += p.Strength * patternWeight
		case domain.PatternPut:
			putScore += p.Strength * patternWeight
		}
	}

	total := callScore + putScore
	if total <= decisionThreshold {
		return hold()
	}

	// The pattern count cited in the reasoning is the total number of
	// detected patterns, not just the ones on the winning side.
	switch {
	case callScore > putScore:
		return domain.Signal{
			Direction:  domain.DirectionCall,
			Confidence: math.Min(callScore/total, maxConfidence),
			Reasoning: fmt.Sprintf("Strong Bullish signs: Trend (%s) + %d Bullish Pattern(s).",
				analysis.Trend, len(analysis.Patterns)),
		}
	case putScore > callScore:
		return domain.Signal{
			Direction:  domain.DirectionPut,
			Confidence: math.Min(putScore/total, maxConfidence),
			Reasoning: fmt.Sprintf("Strong Bearish signs: Trend (%s) + %d Bearish Pattern(s).",
				analysis.Trend, len(analysis.Patterns)),
		}
	default:
		return hold()
	}
}

func hold() domain.Signal {
	return domain.Signal{
		Direction:  domain.DirectionHold,
		Confidence: holdConfidence,
		Reasoning:  HoldReasoning,
	}
}
