package analysis

import "pocket-pulse/internal/domain"

const (
	minIndicatorCandles = 30

	rsiPeriod  = 14
	atrPeriod  = 14
	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9
)

// CalculateIndicators computes RSI, MACD and ATR over the candle window.
// Candles arrive newest first; the math runs oldest to newest. With fewer
// than 30 candles the set is returned empty.
func CalculateIndicators(candles []domain.Candle) domain.IndicatorSet {
	if len(candles) < minIndicatorCandles {
		return domain.IndicatorSet{}
	}

	n := len(candles)
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i, c := range candles {
		closes[n-1-i] = c.Close
		highs[n-1-i] = c.High
		lows[n-1-i] = c.Low
	}

	set := domain.IndicatorSet{
		RSI:  analyzeRSI(rsi(closes, rsiPeriod)),
		MACD: analyzeMACD(closes),
		ATR:  atr(highs, lows, closes, atrPeriod),
	}
	return set
}

func analyzeRSI(value float64) *domain.RSIReading {
	signal := "neutral"
	switch {
	case value > 70:
		signal = "overbought"
	case value < 30:
		signal = "oversold"
	}
	return &domain.RSIReading{Value: value, Signal: signal}
}

func analyzeMACD(closes []float64) *domain.MACDReading {
	fast := ema(closes, macdFast)
	slow := ema(closes, macdSlow)
	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}
	signal := ema(line, macdSignal)

	last := len(closes) - 1
	hist := line[last] - signal[last]

	trend := "neutral"
	switch {
	case hist > 0 && line[last] > signal[last]:
		trend = "bullish"
	case hist < 0 && line[last] < signal[last]:
		trend = "bearish"
	}

	return &domain.MACDReading{
		MACDLine:   line[last],
		SignalLine: signal[last],
		Histogram:  hist,
		Trend:      trend,
	}
}

// rsi is Wilder's RSI: simple average of the first period's gains and losses,
// then exponential smoothing with alpha = 1/period.
func rsi(closes []float64, period int) float64 {
	var gain, loss float64
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)

	alpha := 1.0 / float64(period)
	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		g, l := 0.0, 0.0
		if d > 0 {
			g = d
		} else {
			l = -d
		}
		avgGain = avgGain + alpha*(g-avgGain)
		avgLoss = avgLoss + alpha*(l-avgLoss)
	}

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

func ema(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	alpha := 2.0 / float64(period+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// atr is Wilder's average true range.
func atr(highs, lows, closes []float64, period int) float64 {
	trs := make([]float64, 0, len(highs)-1)
	for i := 1; i < len(highs); i++ {
		tr := highs[i] - lows[i]
		if d := highs[i] - closes[i-1]; d > tr {
			tr = d
		}
		if d := closes[i-1] - lows[i]; d > tr {
			tr = d
		}
		trs = append(trs, tr)
	}
	if len(trs) < period {
		return 0
	}

	var sum float64
	for i := 0; i < period; i++ {
		sum += trs[i]
	}
	avg := sum / float64(period)
	alpha := 1.0 / float64(period)
	for i := period; i < len(trs); i++ {
		avg = avg + alpha*(trs[i]-avg)
	}
	return avg
}
