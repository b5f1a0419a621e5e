package market

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"pocket-pulse/internal/domain"
)

const (
	simWinRate    = 0.65
	simPayout     = 0.85
	demoBalance   = 10000.0
	liveBalance   = 100.0
	simVolatility = 0.0005
)

// Simulator is a broker stand-in generating random-walk candles and settling
// trades instantly against a fixed win rate and payout.
type Simulator struct {
	demo bool

	mu         sync.Mutex
	connected  bool
	balance    float64
	basePrices map[string]float64
	subs       map[string][]CandleFunc
	cancel     context.CancelFunc

	rng    *rand.Rand
	nextID int64
}

func NewSimulator(demo bool) *Simulator {
	return &Simulator{
		demo:       demo,
		basePrices: make(map[string]float64),
		subs:       make(map[string][]CandleFunc),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		nextID:     1000,
	}
}

func (s *Simulator) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected {
		return nil
	}
	s.connected = true
	if s.demo {
		s.balance = demoBalance
	} else {
		s.balance = liveBalance
	}
	for _, asset := range domain.SupportedAssets {
		s.basePrices[asset] = 1.0 + (s.rng.Float64()-0.5)*0.02
	}

	tickCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.run(tickCtx)

	log.Println("market: running in simulation mode")
	return nil
}

func (s *Simulator) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.connected = false
	s.balance = 0
	log.Println("market: simulator disconnected")
	return nil
}

func (s *Simulator) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *Simulator) Simulation() bool { return true }

func (s *Simulator) Balance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

func (s *Simulator) SubscribeCandles(asset string, timeframe int, fn CandleFunc) error {
	if !domain.IsSupportedAsset(asset) {
		return fmt.Errorf("unsupported asset %q", asset)
	}
	key := subKey(asset, timeframe)
	s.mu.Lock()
	s.subs[key] = append(s.subs[key], fn)
	s.mu.Unlock()
	return nil
}

func (s *Simulator) UnsubscribeCandles(asset string, timeframe int) {
	s.mu.Lock()
	delete(s.subs, subKey(asset, timeframe))
	s.mu.Unlock()
}

// OnSettlement is a no-op: simulated trades settle inside PlaceTrade.
func (s *Simulator) OnSettlement(SettlementFunc) {}

// PlaceTrade debits the stake, waits a sliver of the expiry for realism, and
// settles against the fixed simulation win rate.
func (s *Simulator) PlaceTrade(ctx context.Context, asset string, direction domain.TradeDirection, amount float64, duration int) (TradeResult, error) {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return TradeResult{}, fmt.Errorf("simulator not connected")
	}
	s.balance -= amount
	s.nextID++
	id := s.nextID
	win := s.rng.Float64() < simWinRate
	s.mu.Unlock()

	log.Printf("market: [simulation] trade %d placed: %s %s $%.2f %ds", id, direction, asset, amount, duration)

	select {
	case <-ctx.Done():
		return TradeResult{}, ctx.Err()
	case <-time.After(time.Duration(duration) * time.Second / 10):
	}

	outcome := domain.OutcomeLoss
	if win {
		outcome = domain.OutcomeWin
		s.mu.Lock()
		s.balance += amount + amount*simPayout
		s.mu.Unlock()
	}
	log.Printf("market: [simulation] trade %d resulted in %s, balance $%.2f", id, outcome, s.Balance())

	return TradeResult{ID: id, Outcome: outcome}, nil
}

// Tournaments returns a small rotating set of simulated tournaments, some
// free, so the scheduler has something to join.
func (s *Simulator) Tournaments(ctx context.Context) ([]domain.Tournament, error) {
	return []domain.Tournament{
		{ID: "sim-weekly-free", Name: "Weekly Free Roll", EntryFee: 0, Status: "active"},
		{ID: "sim-daily-paid", Name: "Daily Sprint", EntryFee: 5, Status: "active"},
		{ID: "sim-closed", Name: "Last Month Final", EntryFee: 0, Status: "finished"},
	}, nil
}

func (s *Simulator) JoinTournament(ctx context.Context, id string) error {
	log.Printf("market: [simulation] joined tournament %s", id)
	return nil
}

func (s *Simulator) run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.emitDue(time.Now().Unix())
		}
	}
}

// emitDue generates a candle for every subscription whose interval boundary
// falls on now.
func (s *Simulator) emitDue(now int64) {
	s.mu.Lock()
	type emission struct {
		fns    []CandleFunc
		candle domain.Candle
	}
	var due []emission
	for key, fns := range s.subs {
		asset, timeframe := splitKey(key)
		if timeframe <= 0 || now%int64(timeframe) != 0 {
			continue
		}
		due = append(due, emission{fns: fns, candle: s.nextCandle(asset, timeframe, now)})
	}
	s.mu.Unlock()

	for _, e := range due {
		for _, fn := range e.fns {
			go fn(e.candle)
		}
	}
}

// nextCandle advances the asset's random walk by one bar. Caller holds mu.
func (s *Simulator) nextCandle(asset string, timeframe int, now int64) domain.Candle {
	base, ok := s.basePrices[asset]
	if !ok {
		base = 1.0
	}

	change := (s.rng.Float64() - 0.5) * 2 * simVolatility
	closePrice := base * (1 + change)
	openPrice := base * (1 + (s.rng.Float64()-0.5)*0.0002)
	high := math.Max(openPrice, closePrice) * (1 + 0.0001 + s.rng.Float64()*0.0002)
	low := math.Min(openPrice, closePrice) * (1 - 0.0001 - s.rng.Float64()*0.0002)

	s.basePrices[asset] = closePrice

	return domain.Candle{
		Asset:     asset,
		Timeframe: timeframe,
		Timestamp: now - int64(timeframe),
		Open:      round5(openPrice),
		High:      round5(high),
		Low:       round5(low),
		Close:     round5(closePrice),
		Volume:    float64(100 + s.rng.Intn(900)),
	}
}

func round5(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}
