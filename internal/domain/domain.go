package domain

import "time"

// Candle is one OHLCV bar as delivered by the broker feed. Timestamp is the
// bar's open time in unix seconds.
type Candle struct {
	Asset     string  `json:"asset"`
	Timeframe int     `json:"timeframe"`
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Bullish reports whether the candle closed above its open.
func (c Candle) Bullish() bool { return c.Close > c.Open }

// Bearish reports whether the candle closed below its open.
func (c Candle) Bearish() bool { return c.Close < c.Open }

// Body returns the absolute open-to-close distance.
func (c Candle) Body() float64 {
	if c.Close > c.Open {
		return c.Close - c.Open
	}
	return c.Open - c.Close
}

// Range returns the high-to-low distance.
func (c Candle) Range() float64 { return c.High - c.Low }

type Trend string

const (
	TrendUp      Trend = "uptrend"
	TrendDown    Trend = "downtrend"
	TrendNeutral Trend = "neutral"
)

// PatternSignal is the directional bias carried by a detected chart pattern.
type PatternSignal string

const (
	PatternCall    PatternSignal = "CALL"
	PatternPut     PatternSignal = "PUT"
	PatternNeutral PatternSignal = "neutral"
)

type PatternType string

const (
	PatternReversal     PatternType = "reversal"
	PatternContinuation PatternType = "continuation"
)

// Pattern is a detected candlestick formation with a directional bias and a
// strength weight. Strength is conventionally in [0,1] but is carried as-is.
type Pattern struct {
	Name      string        `json:"pattern"`
	Type      PatternType   `json:"type"`
	Signal    PatternSignal `json:"signal"`
	Strength  float64       `json:"strength"`
	Timestamp int64         `json:"timestamp"`
}

// Level is a consolidated support or resistance price level.
type Level struct {
	Price    float64 `json:"price"`
	Touches  int     `json:"touches"`
	Strength float64 `json:"strength"`
	Distance float64 `json:"distance"`
}

type Levels struct {
	Support    []Level `json:"support"`
	Resistance []Level `json:"resistance"`
}

type RSIReading struct {
	Value  float64 `json:"value"`
	Signal string  `json:"signal"` // overbought, oversold, neutral
}

type MACDReading struct {
	MACDLine   float64 `json:"macd_line"`
	SignalLine float64 `json:"signal_line"`
	Histogram  float64 `json:"histogram"`
	Trend      string  `json:"trend"` // bullish, bearish, neutral
}

// IndicatorSet holds the computed technical indicators for one snapshot.
// RSI and MACD are nil when there is not enough history to compute them.
type IndicatorSet struct {
	RSI  *RSIReading  `json:"rsi,omitempty"`
	MACD *MACDReading `json:"macd,omitempty"`
	ATR  float64      `json:"atr,omitempty"`
}

// MarketAnalysis is one poll cycle's immutable view of the active market:
// recent candles plus everything the analyzers derived from them.
type MarketAnalysis struct {
	Candles    []Candle     `json:"candles"`
	Patterns   []Pattern    `json:"patterns"`
	Levels     Levels       `json:"levels"`
	Indicators IndicatorSet `json:"indicators"`
	Trend      Trend        `json:"trend"`
}

// TradeDirection is the direction of a binary-options position, and doubles
// as the direction of a derived signal (HOLD meaning "no position").
type TradeDirection string

const (
	DirectionCall TradeDirection = "CALL"
	DirectionPut  TradeDirection = "PUT"
	DirectionHold TradeDirection = "HOLD"
)

// Signal is the trading recommendation derived from a single market-analysis
// snapshot. It has no identity or lifecycle beyond the call that produced it.
type Signal struct {
	Direction  TradeDirection `json:"direction"`
	Confidence float64        `json:"confidence"`
	Reasoning  string         `json:"reasoning"`
}

// ConfidencePercent returns the confidence rounded to an integer percentage.
func (s Signal) ConfidencePercent() int {
	return int(s.Confidence*100 + 0.5)
}

type TradeOutcome string

const (
	OutcomeWin     TradeOutcome = "WIN"
	OutcomeLoss    TradeOutcome = "LOSS"
	OutcomePending TradeOutcome = "PENDING"
	OutcomeFailed  TradeOutcome = "FAILED"
)

// Trade is one placed binary-options trade.
type Trade struct {
	ID         int64          `json:"id"`
	TradeID    int64          `json:"trade_id"`
	Asset      string         `json:"asset"`
	Direction  TradeDirection `json:"direction"`
	Amount     float64        `json:"amount"`
	Confidence float64        `json:"confidence"`
	Outcome    TradeOutcome   `json:"outcome"`
	CreatedAt  time.Time      `json:"created_at"`
}

// TradeStats is the trade history view served to the dashboard: the most
// recent trades (newest first) plus aggregate performance counters.
type TradeStats struct {
	History []Trade `json:"history"`
	Total   int     `json:"total"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	WinRate float64 `json:"win_rate"`
}

type AgentStats struct {
	TotalExperiences int     `json:"total_experiences"`
	IsTrained        bool    `json:"is_trained"`
	WinRate          float64 `json:"win_rate"`
}

// Knowledge is one distilled trading concept learned from an uploaded
// document.
type Knowledge struct {
	ID             int64     `json:"id"`
	Source         string    `json:"source"`
	Category       string    `json:"category"`
	Content        string    `json:"content"`
	Summary        string    `json:"summary"`
	RelevanceScore float64   `json:"relevance_score"`
	CreatedAt      time.Time `json:"created_at"`
}

type KnowledgeStats struct {
	Documents int `json:"documents"`
	Concepts  int `json:"concepts"`
}

// BotStatus is the bot's self-reported state served on /status.
type BotStatus struct {
	IsRunning        bool           `json:"is_running"`
	IsTrading        bool           `json:"is_trading"`
	IsLearning       bool           `json:"is_learning"`
	Connected        bool           `json:"connected"`
	SimulationMode   bool           `json:"simulation_mode"`
	Balance          float64        `json:"balance"`
	CurrentAsset     string         `json:"current_asset"`
	CurrentTimeframe int            `json:"current_timeframe"`
	PatternsDetected int            `json:"patterns_detected"`
	TradesThisHour   int            `json:"trades_this_hour"`
	PendingTrades    int            `json:"pending_trades"`
	TotalTrades      int            `json:"total_trades"`
	AgentStats       AgentStats     `json:"agent_stats"`
	KnowledgeStats   KnowledgeStats `json:"knowledge_stats"`
	CandleCount      int            `json:"candle_count"`
}

// Tournament is a broker tournament as reported by the trading API.
type Tournament struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	EntryFee float64 `json:"entry_fee"`
	Status   string  `json:"status"`
}

// SupportedAssets are the OTC pairs the broker feed can subscribe to.
var SupportedAssets = []string{
	"EURUSD_otc", "GBPUSD_otc", "USDJPY_otc", "AUDUSD_otc",
	"EURJPY_otc", "GBPJPY_otc", "EURGBP_otc", "USDCAD_otc",
}

// SupportedTimeframes are the candle durations (seconds) the bot analyzes.
var SupportedTimeframes = []int{60, 300, 900}

// IsSupportedAsset reports whether the asset is in SupportedAssets.
func IsSupportedAsset(asset string) bool {
	for _, a := range SupportedAssets {
		if a == asset {
			return true
		}
	}
	return false
}

// IsSupportedTimeframe reports whether the timeframe is in SupportedTimeframes.
func IsSupportedTimeframe(timeframe int) bool {
	for _, tf := range SupportedTimeframes {
		if tf == timeframe {
			return true
		}
	}
	return false
}
