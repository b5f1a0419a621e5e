package analysis

import (
	"math"
	"sort"

	"pocket-pulse/internal/domain"
)

const (
	levelTolerance   = 0.0005
	levelSensitivity = 3
	maxLevels        = 3
)

// FindSupportResistance identifies support and resistance levels from local
// troughs and peaks, merges levels within tolerance of each other, and
// returns the three of each nearest to the current price.
func FindSupportResistance(candles []domain.Candle) domain.Levels {
	if len(candles) < levelSensitivity*2+1 {
		return domain.Levels{}
	}

	currentPrice := candles[0].Close

	var resistance, support []float64
	for i := levelSensitivity; i < len(candles)-levelSensitivity; i++ {
		isPeak, isTrough := true, true
		for j := 1; j <= levelSensitivity; j++ {
			if candles[i].High < candles[i-j].High || candles[i].High < candles[i+j].High {
				isPeak = false
			}
			if candles[i].Low > candles[i-j].Low || candles[i].Low > candles[i+j].Low {
				isTrough = false
			}
		}
		if isPeak {
			resistance = append(resistance, candles[i].High)
		}
		if isTrough {
			support = append(support, candles[i].Low)
		}
	}

	return domain.Levels{
		Support:    consolidate(support, currentPrice),
		Resistance: consolidate(resistance, currentPrice),
	}
}

func consolidate(prices []float64, currentPrice float64) []domain.Level {
	if len(prices) == 0 {
		return nil
	}

	sort.Float64s(prices)

	var merged []domain.Level
	for _, price := range prices {
		absorbed := false
		for i := range merged {
			if math.Abs(price-merged[i].Price) < levelTolerance*currentPrice {
				merged[i].Touches++
				absorbed = true
				break
			}
		}
		if !absorbed {
			merged = append(merged, domain.Level{Price: price, Touches: 1, Strength: 0.6})
		}
	}

	for i := range merged {
		merged[i].Distance = math.Abs(merged[i].Price - currentPrice)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Distance < merged[j].Distance })

	if len(merged) > maxLevels {
		merged = merged[:maxLevels]
	}
	return merged
}
