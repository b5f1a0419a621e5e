package market

import (
	"context"

	"pocket-pulse/internal/domain"
)

// CandleFunc receives each finished candle for a subscribed feed.
type CandleFunc func(domain.Candle)

// SettlementFunc receives the broker's verdict for a previously placed
// trade once it expires.
type SettlementFunc func(tradeID int64, outcome domain.TradeOutcome)

// TradeResult is the broker's answer to a placed trade. Simulated trades
// settle immediately; real trades come back PENDING.
type TradeResult struct {
	ID      int64
	Outcome domain.TradeOutcome
}

// Client is the broker connection the trading engine drives. Two
// implementations exist: the live websocket client and the simulator.
type Client interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Connected() bool
	Simulation() bool
	Balance() float64

	SubscribeCandles(asset string, timeframe int, fn CandleFunc) error
	UnsubscribeCandles(asset string, timeframe int)

	PlaceTrade(ctx context.Context, asset string, direction domain.TradeDirection, amount float64, duration int) (TradeResult, error)
	OnSettlement(fn SettlementFunc)

	Tournaments(ctx context.Context) ([]domain.Tournament, error)
	JoinTournament(ctx context.Context, id string) error
}
