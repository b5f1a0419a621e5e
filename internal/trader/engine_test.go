package trader

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"

	"pocket-pulse/internal/agent"
	"pocket-pulse/internal/domain"
	"pocket-pulse/internal/market"
)

type fakeClient struct {
	mu        sync.Mutex
	connected bool
	balance   float64
	outcome   domain.TradeOutcome
	placed    []domain.TradeDirection
	subs      map[string]int
	unsubs    map[string]int
	joined    []string
	settle    market.SettlementFunc
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		balance: 1000,
		outcome: domain.OutcomeWin,
		subs:    make(map[string]int),
		unsubs:  make(map[string]int),
	}
}

func (f *fakeClient) Connect(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = true
	return nil
}

func (f *fakeClient) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	return nil
}

func (f *fakeClient) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeClient) Simulation() bool { return true }

func (f *fakeClient) Balance() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balance
}

func (f *fakeClient) SubscribeCandles(asset string, timeframe int, fn market.CandleFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[asset]++
	return nil
}

func (f *fakeClient) UnsubscribeCandles(asset string, timeframe int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubs[asset]++
}

func (f *fakeClient) PlaceTrade(_ context.Context, asset string, direction domain.TradeDirection, amount float64, duration int) (market.TradeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placed = append(f.placed, direction)
	return market.TradeResult{ID: int64(len(f.placed)), Outcome: f.outcome}, nil
}

func (f *fakeClient) OnSettlement(fn market.SettlementFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settle = fn
}

func (f *fakeClient) Tournaments(context.Context) ([]domain.Tournament, error) {
	return nil, nil
}

func (f *fakeClient) JoinTournament(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joined = append(f.joined, id)
	return nil
}

type recordedTrades struct {
	mu       sync.Mutex
	trades   []domain.Trade
	outcomes map[int64]domain.TradeOutcome
}

func (r *recordedTrades) InsertTrade(_ context.Context, trade domain.Trade) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trades = append(r.trades, trade)
	return int64(len(r.trades)), nil
}

func (r *recordedTrades) UpdateOutcome(_ context.Context, tradeID int64, outcome domain.TradeOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcomes == nil {
		r.outcomes = make(map[int64]domain.TradeOutcome)
	}
	r.outcomes[tradeID] = outcome
	return nil
}

type recordedAlerts struct {
	mu     sync.Mutex
	trades []domain.Trade
}

func (r *recordedAlerts) TradePlaced(trade domain.Trade) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trades = append(r.trades, trade)
}

func testTracer() trace.Tracer {
	return trace.NewNoopTracerProvider().Tracer("test")
}

func testEngine(client market.Client, cfg Config) *Engine {
	return NewEngine(testTracer(), client, agent.New(nil, agent.Options{}), cfg)
}

// engulfingCandles yields a feed snapshot whose head candle is a bullish
// engulfing of its predecessor.
func engulfingCandles(asset string, timeframe int) []domain.Candle {
	return []domain.Candle{
		{Asset: asset, Timeframe: timeframe, Timestamp: 300, Open: 1.000, High: 1.012, Low: 0.999, Close: 1.010},
		{Asset: asset, Timeframe: timeframe, Timestamp: 240, Open: 1.008, High: 1.009, Low: 1.001, Close: 1.002},
		{Asset: asset, Timeframe: timeframe, Timestamp: 180, Open: 1.005, High: 1.006, Low: 1.004, Close: 1.0055},
	}
}

func TestEngineStartStop(t *testing.T) {
	client := newFakeClient()
	e := testEngine(client, Config{})

	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !e.Running() {
		t.Error("expected running after start")
	}
	if client.subs["EURUSD_otc"] != len(domain.SupportedTimeframes) {
		t.Errorf("subscriptions = %d, want one per timeframe", client.subs["EURUSD_otc"])
	}

	if err := e.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if e.Running() {
		t.Error("expected stopped after stop")
	}
	if client.Connected() {
		t.Error("expected broker disconnected after stop")
	}
}

func TestEngineHandleCandleStoresAndDedupes(t *testing.T) {
	e := testEngine(newFakeClient(), Config{Asset: "EURUSD_otc", Timeframe: 60})
	ctx := context.Background()

	c := domain.Candle{Asset: "EURUSD_otc", Timeframe: 60, Timestamp: 60, Close: 1.0}
	e.HandleCandle(ctx, c)
	e.HandleCandle(ctx, c) // duplicate timestamp replaces, not appends

	status := e.Status(ctx)
	if status.CandleCount != 1 {
		t.Errorf("candle count = %d, want 1 after duplicate delivery", status.CandleCount)
	}

	c.Timestamp = 120
	e.HandleCandle(ctx, c)
	if got := e.Status(ctx).CandleCount; got != 2 {
		t.Errorf("candle count = %d, want 2", got)
	}
}

func TestEngineHandleCandleRunsAnalysis(t *testing.T) {
	e := testEngine(newFakeClient(), Config{Asset: "EURUSD_otc", Timeframe: 60})
	ctx := context.Background()

	candles := engulfingCandles("EURUSD_otc", 60)
	for i := len(candles) - 1; i >= 0; i-- {
		e.HandleCandle(ctx, candles[i])
	}

	if got := e.Status(ctx).PatternsDetected; got == 0 {
		t.Error("expected patterns after an engulfing sequence")
	}

	ma := e.MarketAnalysis(ctx)
	if len(ma.Candles) != 3 {
		t.Errorf("analysis candles = %d, want 3", len(ma.Candles))
	}
	if ma.Candles[0].Timestamp != 300 {
		t.Errorf("head candle timestamp = %d, want newest 300", ma.Candles[0].Timestamp)
	}
}

func TestEngineIgnoresInactiveFeed(t *testing.T) {
	e := testEngine(newFakeClient(), Config{Asset: "EURUSD_otc", Timeframe: 60})
	ctx := context.Background()

	e.HandleCandle(ctx, domain.Candle{Asset: "GBPUSD_otc", Timeframe: 60, Timestamp: 60})

	status := e.Status(ctx)
	if status.CandleCount != 0 {
		t.Errorf("active candle count = %d, want 0 for inactive feed", status.CandleCount)
	}
}

func TestEngineTradesWhenConfident(t *testing.T) {
	client := newFakeClient()
	recorder := &recordedTrades{}
	alerter := &recordedAlerts{}
	e := testEngine(client, Config{Asset: "EURUSD_otc", Timeframe: 60, MinConfidence: 0.5}).
		WithTradeRecorder(recorder).
		WithAlerter(alerter)
	ctx := context.Background()

	if err := e.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	e.StartTrading()

	candles := engulfingCandles("EURUSD_otc", 60)
	for i := len(candles) - 1; i >= 0; i-- {
		e.HandleCandle(ctx, candles[i])
	}

	if len(client.placed) != 1 {
		t.Fatalf("placed trades = %d, want 1", len(client.placed))
	}
	if client.placed[0] != domain.DirectionCall {
		t.Errorf("direction = %s, want CALL", client.placed[0])
	}

	stats := e.TradeStats(ctx)
	if stats.Total != 1 || stats.Wins != 1 {
		t.Errorf("trade stats = %+v, want one win", stats)
	}
	if len(recorder.trades) != 1 {
		t.Errorf("persisted trades = %d, want 1", len(recorder.trades))
	}
	if len(alerter.trades) != 1 {
		t.Errorf("alerted trades = %d, want 1", len(alerter.trades))
	}
	if e.Status(ctx).TradesThisHour != 1 {
		t.Errorf("trades this hour = %d, want 1", e.Status(ctx).TradesThisHour)
	}
}

func TestEngineDoesNotTradeWhenDisabled(t *testing.T) {
	client := newFakeClient()
	e := testEngine(client, Config{Asset: "EURUSD_otc", Timeframe: 60, MinConfidence: 0.5})
	ctx := context.Background()

	if err := e.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	// Trading never enabled.
	candles := engulfingCandles("EURUSD_otc", 60)
	for i := len(candles) - 1; i >= 0; i-- {
		e.HandleCandle(ctx, candles[i])
	}

	if len(client.placed) != 0 {
		t.Errorf("placed trades = %d, want 0 with trading disabled", len(client.placed))
	}
}

func TestEngineConfidenceThresholdBlocksTrade(t *testing.T) {
	client := newFakeClient()
	// Untrained agent tops out at 0.7 confidence, below the 0.75 default.
	e := testEngine(client, Config{Asset: "EURUSD_otc", Timeframe: 60})
	ctx := context.Background()

	if err := e.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	e.StartTrading()

	candles := engulfingCandles("EURUSD_otc", 60)
	for i := len(candles) - 1; i >= 0; i-- {
		e.HandleCandle(ctx, candles[i])
	}

	if len(client.placed) != 0 {
		t.Errorf("placed trades = %d, want 0 below the confidence threshold", len(client.placed))
	}
}

func TestEngineSetAsset(t *testing.T) {
	client := newFakeClient()
	e := testEngine(client, Config{Asset: "EURUSD_otc", Timeframe: 60})
	ctx := context.Background()

	if err := e.SetAsset(ctx, "DOGEUSD"); err == nil {
		t.Error("expected error for unsupported asset")
	}

	if err := e.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := e.SetAsset(ctx, "GBPUSD_otc"); err != nil {
		t.Fatalf("set asset: %v", err)
	}
	if client.unsubs["EURUSD_otc"] != len(domain.SupportedTimeframes) {
		t.Error("expected old asset unsubscribed on switch")
	}
	if client.subs["GBPUSD_otc"] != len(domain.SupportedTimeframes) {
		t.Error("expected new asset subscribed on switch")
	}
	if got := e.Status(ctx).CurrentAsset; got != "GBPUSD_otc" {
		t.Errorf("current asset = %s, want GBPUSD_otc", got)
	}
}

func TestEngineSetTimeframe(t *testing.T) {
	e := testEngine(newFakeClient(), Config{})
	if err := e.SetTimeframe(42); err == nil {
		t.Error("expected error for unsupported timeframe")
	}
	if err := e.SetTimeframe(300); err != nil {
		t.Fatalf("set timeframe: %v", err)
	}
	if got := e.Status(context.Background()).CurrentTimeframe; got != 300 {
		t.Errorf("current timeframe = %d, want 300", got)
	}
}

func TestClampConfidence(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0.3, 0.5},
		{0.5, 0.5},
		{0.8, 0.8},
		{0.99, 0.95},
	}
	for _, tt := range tests {
		if got := clampConfidence(tt.in); got != tt.want {
			t.Errorf("clampConfidence(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEngineJoinTournament(t *testing.T) {
	client := newFakeClient()
	e := testEngine(client, Config{})
	if err := e.JoinTournament(context.Background(), "weekly-1"); err != nil {
		t.Fatalf("join tournament: %v", err)
	}
	if len(client.joined) != 1 || client.joined[0] != "weekly-1" {
		t.Errorf("joined = %v, want [weekly-1]", client.joined)
	}
}

func TestEngineSettlesPendingTrade(t *testing.T) {
	client := newFakeClient()
	client.outcome = domain.OutcomePending
	recorder := &recordedTrades{}
	e := testEngine(client, Config{Asset: "EURUSD_otc", Timeframe: 60, MinConfidence: 0.5}).
		WithTradeRecorder(recorder)
	ctx := context.Background()

	if err := e.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	e.StartTrading()

	candles := engulfingCandles("EURUSD_otc", 60)
	for i := len(candles) - 1; i >= 0; i-- {
		e.HandleCandle(ctx, candles[i])
	}
	if len(client.placed) != 1 {
		t.Fatalf("placed trades = %d, want 1", len(client.placed))
	}

	stats := e.TradeStats(ctx)
	if stats.Wins != 0 || stats.History[0].Outcome != domain.OutcomePending {
		t.Fatalf("expected the trade to start PENDING, got %+v", stats.History[0])
	}
	if client.settle == nil {
		t.Fatal("expected a settlement handler registered on start")
	}

	client.settle(1, domain.OutcomeWin)

	stats = e.TradeStats(ctx)
	if stats.Wins != 1 {
		t.Errorf("wins = %d, want 1 after settlement", stats.Wins)
	}
	if got := stats.History[0].Outcome; got != domain.OutcomeWin {
		t.Errorf("history outcome = %s, want WIN", got)
	}
	if recorder.outcomes[1] != domain.OutcomeWin {
		t.Errorf("persisted outcome = %s, want WIN", recorder.outcomes[1])
	}
}

func TestEngineIgnoresUnknownSettlement(t *testing.T) {
	recorder := &recordedTrades{}
	e := testEngine(newFakeClient(), Config{}).WithTradeRecorder(recorder)

	e.SettleTrade(context.Background(), 99, domain.OutcomeLoss)

	if len(recorder.outcomes) != 0 {
		t.Errorf("persisted settlements = %d, want none for an unknown trade", len(recorder.outcomes))
	}
}

func TestEngineTradeStatsOrdering(t *testing.T) {
	e := testEngine(newFakeClient(), Config{})
	now := time.Now()
	for i := 0; i < 3; i++ {
		e.recordTrade(context.Background(), domain.Trade{
			TradeID:   int64(i + 1),
			Outcome:   domain.OutcomeWin,
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		})
	}

	stats := e.TradeStats(context.Background())
	if len(stats.History) != 3 {
		t.Fatalf("history = %d, want 3", len(stats.History))
	}
	if stats.History[0].TradeID != 3 {
		t.Errorf("head trade id = %d, want newest 3", stats.History[0].TradeID)
	}
}
