package analysis

import "pocket-pulse/internal/domain"

const (
	engulfingBodyRatio = 1.2
	dojiBodyRatio      = 0.1
	minDojiRange       = 0.0001

	trendPeriod    = 20
	trendThreshold = 0.001
)

// AnalyzeCandles scans the most recent candles (newest first) for known
// candlestick formations. Only the latest five candles are inspected; each
// check needs the candle plus its predecessor.
func AnalyzeCandles(candles []domain.Candle) []domain.Pattern {
	if len(candles) < 3 {
		return nil
	}

	var found []domain.Pattern
	limit := len(candles) - 2
	if limit > 5 {
		limit = 5
	}
	for i := 0; i < limit; i++ {
		for _, p := range detectPatterns(candles[i], candles[i+1]) {
			p.Timestamp = candles[i].Timestamp
			found = append(found, p)
		}
	}
	return found
}

func detectPatterns(cur, prev domain.Candle) []domain.Pattern {
	var detected []domain.Pattern

	body, prevBody := cur.Body(), prev.Body()

	switch {
	case prev.Bearish() && cur.Bullish() && body > engulfingBodyRatio*prevBody &&
		cur.Open < prev.Close && cur.Close > prev.Open:
		detected = append(detected, domain.Pattern{
			Name: "bullish_engulfing", Type: domain.PatternReversal,
			Signal: domain.PatternCall, Strength: 0.85,
		})
	case prev.Bullish() && cur.Bearish() && body > engulfingBodyRatio*prevBody &&
		cur.Open > prev.Close && cur.Close < prev.Open:
		detected = append(detected, domain.Pattern{
			Name: "bearish_engulfing", Type: domain.PatternReversal,
			Signal: domain.PatternPut, Strength: 0.85,
		})
	}

	if r := cur.Range(); body < dojiBodyRatio*r && r > minDojiRange {
		detected = append(detected, domain.Pattern{
			Name: "doji", Type: domain.PatternContinuation,
			Signal: domain.PatternNeutral, Strength: 0.5,
		})
	}

	return detected
}

// Trend classifies the short-term trend by comparing the average close of the
// newer half of the window against the older half, with a 0.1% dead band.
func Trend(candles []domain.Candle) domain.Trend {
	if len(candles) < trendPeriod {
		return domain.TrendNeutral
	}

	half := trendPeriod / 2
	var older, newer float64
	for i := 0; i < half; i++ {
		newer += candles[i].Close
		older += candles[half+i].Close
	}
	newer /= float64(half)
	older /= float64(half)

	switch {
	case newer > older*(1+trendThreshold):
		return domain.TrendUp
	case newer < older*(1-trendThreshold):
		return domain.TrendDown
	default:
		return domain.TrendNeutral
	}
}

// PatternStrength collapses a pattern set into a single dominance score:
// the winning side's share of the total directional strength, 0.5 when the
// set carries no directional weight.
func PatternStrength(patterns []domain.Pattern) float64 {
	var callScore, putScore float64
	for _, p := range patterns {
		switch p.Signal {
		case domain.PatternCall:
			callScore += p.Strength
		case domain.PatternPut:
			putScore += p.Strength
		}
	}

	total := callScore + putScore
	if total == 0 {
		return 0.5
	}
	if callScore > putScore {
		return callScore / total
	}
	return putScore / total
}
