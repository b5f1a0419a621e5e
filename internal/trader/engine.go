package trader

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"pocket-pulse/internal/agent"
	"pocket-pulse/internal/analysis"
	"pocket-pulse/internal/domain"
	"pocket-pulse/internal/market"
)

const (
	maxStoredCandles     = 200
	maxReportedPatterns  = 10
	maxReportedTrades    = 50
	defaultMinConfidence = 0.75
)

// TradeRecorder mirrors placed trades and their settlements into durable
// storage.
type TradeRecorder interface {
	InsertTrade(ctx context.Context, trade domain.Trade) (int64, error)
	UpdateOutcome(ctx context.Context, tradeID int64, outcome domain.TradeOutcome) error
}

// TradeAlerter is notified after each placed trade.
type TradeAlerter interface {
	TradePlaced(trade domain.Trade)
}

// KnowledgeStatsProvider supplies the learned-knowledge counters for the
// status payload.
type KnowledgeStatsProvider interface {
	Stats(ctx context.Context) domain.KnowledgeStats
}

// Engine is the trading bot core: it consumes broker candles, keeps the
// per-feed candle rings, runs the analyzers on the active feed, and places
// trades through the agent when auto-trading is enabled.
type Engine struct {
	tracer    trace.Tracer
	client    market.Client
	agent     *agent.Agent
	trades    TradeRecorder
	alerts    TradeAlerter
	knowledge KnowledgeStatsProvider

	mu               sync.Mutex
	running          bool
	trading          bool
	learning         bool
	currentAsset     string
	currentTimeframe int
	minConfidence    float64
	marketData       map[string][]domain.Candle
	patterns         []domain.Pattern
	levels           domain.Levels
	indicators       domain.IndicatorSet
	history          []domain.Trade
	pendingFeatures  map[int64][]float64
	pendingTrades    int
	tradesThisHour   int
	hourMark         time.Time
}

type Config struct {
	Asset         string
	Timeframe     int
	MinConfidence float64
}

func NewEngine(tracer trace.Tracer, client market.Client, tradingAgent *agent.Agent, cfg Config) *Engine {
	if cfg.Asset == "" {
		cfg.Asset = domain.SupportedAssets[0]
	}
	if cfg.Timeframe == 0 {
		cfg.Timeframe = domain.SupportedTimeframes[0]
	}
	if cfg.MinConfidence == 0 {
		cfg.MinConfidence = defaultMinConfidence
	}
	return &Engine{
		tracer:           tracer,
		client:           client,
		agent:            tradingAgent,
		currentAsset:     cfg.Asset,
		currentTimeframe: cfg.Timeframe,
		minConfidence:    clampConfidence(cfg.MinConfidence),
		marketData:       make(map[string][]domain.Candle),
		pendingFeatures:  make(map[int64][]float64),
		hourMark:         time.Now(),
	}
}

// WithTradeRecorder attaches durable trade storage.
func (e *Engine) WithTradeRecorder(r TradeRecorder) *Engine {
	e.trades = r
	return e
}

// WithAlerter attaches a trade alert sink.
func (e *Engine) WithAlerter(a TradeAlerter) *Engine {
	e.alerts = a
	return e
}

// WithKnowledgeStats attaches the learned-knowledge counter source.
func (e *Engine) WithKnowledgeStats(k KnowledgeStatsProvider) *Engine {
	e.knowledge = k
	return e
}

// Start connects to the broker and subscribes the active asset on every
// supported timeframe.
func (e *Engine) Start(ctx context.Context) error {
	ctx, span := e.tracer.Start(ctx, "trader.start")
	defer span.End()

	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil
	}
	e.running = true
	asset := e.currentAsset
	e.mu.Unlock()

	e.client.OnSettlement(func(tradeID int64, outcome domain.TradeOutcome) {
		e.SettleTrade(context.Background(), tradeID, outcome)
	})

	if err := e.client.Connect(ctx); err != nil {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		return fmt.Errorf("connect broker: %w", err)
	}

	mode := "REAL"
	if e.client.Simulation() {
		mode = "DEMO"
	}
	log.Printf("trader: connected in %s mode, balance $%.2f", mode, e.client.Balance())

	if err := e.subscribeAll(asset); err != nil {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		_ = e.client.Disconnect()
		return err
	}

	log.Println("trader: engine started")
	return nil
}

// Stop unsubscribes all feeds and disconnects.
func (e *Engine) Stop(ctx context.Context) error {
	_, span := e.tracer.Start(ctx, "trader.stop")
	defer span.End()

	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil
	}
	e.running = false
	asset := e.currentAsset
	e.mu.Unlock()

	for _, tf := range domain.SupportedTimeframes {
		e.client.UnsubscribeCandles(asset, tf)
	}
	if err := e.client.Disconnect(); err != nil {
		return fmt.Errorf("disconnect broker: %w", err)
	}
	log.Println("trader: engine stopped")
	return nil
}

func (e *Engine) subscribeAll(asset string) error {
	for _, tf := range domain.SupportedTimeframes {
		if err := e.client.SubscribeCandles(asset, tf, func(c domain.Candle) {
			e.HandleCandle(context.Background(), c)
		}); err != nil {
			return fmt.Errorf("subscribe %s/%d: %w", asset, tf, err)
		}
		log.Printf("trader: subscribed %s at %ds", asset, tf)
	}
	return nil
}

// HandleCandle stores the candle, reruns the analyzers when the candle
// belongs to the active feed, and possibly places a trade.
func (e *Engine) HandleCandle(ctx context.Context, candle domain.Candle) {
	ctx, span := e.tracer.Start(ctx, "trader.handle-candle")
	defer span.End()

	key := candleKey(candle.Asset, candle.Timeframe)

	e.mu.Lock()
	ring := e.marketData[key]
	// Same-timestamp delivery replaces the head (partial candle update).
	if len(ring) > 0 && ring[0].Timestamp == candle.Timestamp {
		ring[0] = candle
	} else {
		ring = append([]domain.Candle{candle}, ring...)
		if len(ring) > maxStoredCandles {
			ring = ring[:maxStoredCandles]
		}
	}
	e.marketData[key] = ring

	active := candle.Asset == e.currentAsset && candle.Timeframe == e.currentTimeframe
	if !active {
		e.mu.Unlock()
		return
	}

	candles := append([]domain.Candle(nil), ring...)
	e.patterns = analysis.AnalyzeCandles(candles)
	e.levels = analysis.FindSupportResistance(candles)
	e.indicators = analysis.CalculateIndicators(candles)

	shouldTrade := e.running && e.trading
	snapshot := domain.MarketAnalysis{
		Candles:    candles,
		Patterns:   e.patterns,
		Levels:     e.levels,
		Indicators: e.indicators,
		Trend:      analysis.Trend(candles),
	}
	minConfidence := e.minConfidence
	e.mu.Unlock()

	if !shouldTrade {
		return
	}

	decision := e.agent.Decide(snapshot)
	log.Printf("trader: agent suggests %s at %.0f%% confidence", decision.Direction, decision.Confidence*100)

	if decision.Direction == domain.DirectionHold || decision.Confidence < minConfidence {
		return
	}
	e.executeTrade(ctx, snapshot, decision)
}

func (e *Engine) executeTrade(ctx context.Context, snapshot domain.MarketAnalysis, decision agent.Decision) {
	ctx, span := e.tracer.Start(ctx, "trader.execute-trade")
	defer span.End()

	volatility := snapshot.Indicators.ATR
	if volatility <= 0 {
		volatility = 0.001
	}
	expiration := e.agent.DetermineExpiration(volatility, analysis.PatternStrength(snapshot.Patterns))
	amount := e.agent.TradeAmount(e.client.Balance(), decision.Confidence)

	e.mu.Lock()
	asset := e.currentAsset
	e.pendingTrades++
	e.mu.Unlock()

	log.Printf("trader: placing %s %s $%.2f at %.0f%% confidence, %ds expiry",
		decision.Direction, asset, amount, decision.Confidence*100, expiration)

	result, err := e.client.PlaceTrade(ctx, asset, decision.Direction, amount, expiration)

	e.mu.Lock()
	e.pendingTrades--
	if now := time.Now(); now.Sub(e.hourMark) >= time.Hour {
		e.tradesThisHour = 0
		e.hourMark = now
	}
	e.tradesThisHour++
	e.mu.Unlock()

	trade := domain.Trade{
		TradeID:    result.ID,
		Asset:      asset,
		Direction:  decision.Direction,
		Amount:     amount,
		Confidence: decision.Confidence,
		Outcome:    result.Outcome,
		CreatedAt:  time.Now(),
	}
	if err != nil {
		log.Printf("trader: trade failed: %v", err)
		trade.Outcome = domain.OutcomeFailed
	}

	e.recordTrade(ctx, trade)

	// Settled trades feed the learner immediately; pending ones keep their
	// feature vector until SettleTrade resolves the outcome.
	switch trade.Outcome {
	case domain.OutcomeWin, domain.OutcomeLoss:
		e.agent.AddExperience(agent.Experience{
			Features: agent.ExtractFeatures(snapshot),
			Outcome:  trade.Outcome,
		})
		e.agent.RetrainIfNeeded(ctx)
	case domain.OutcomePending:
		if trade.TradeID != 0 {
			e.mu.Lock()
			e.pendingFeatures[trade.TradeID] = agent.ExtractFeatures(snapshot)
			e.mu.Unlock()
		}
	}
}

// SettleTrade applies a broker-reported outcome to a pending trade: the
// history entry is updated, the stored outcome is persisted, and the trade's
// feature vector finally becomes a learning experience.
func (e *Engine) SettleTrade(ctx context.Context, tradeID int64, outcome domain.TradeOutcome) {
	ctx, span := e.tracer.Start(ctx, "trader.settle-trade")
	defer span.End()

	if outcome != domain.OutcomeWin && outcome != domain.OutcomeLoss {
		return
	}

	e.mu.Lock()
	found := false
	for i := range e.history {
		if e.history[i].TradeID == tradeID {
			e.history[i].Outcome = outcome
			found = true
			break
		}
	}
	features := e.pendingFeatures[tradeID]
	delete(e.pendingFeatures, tradeID)
	e.mu.Unlock()

	if !found {
		log.Printf("trader: settlement for unknown trade %d ignored", tradeID)
		return
	}
	log.Printf("trader: trade %d settled %s", tradeID, outcome)

	if e.trades != nil {
		if err := e.trades.UpdateOutcome(ctx, tradeID, outcome); err != nil {
			log.Printf("trader: settlement not persisted: %v", err)
		}
	}

	if features != nil {
		e.agent.AddExperience(agent.Experience{Features: features, Outcome: outcome})
		e.agent.RetrainIfNeeded(ctx)
	}
}

func (e *Engine) recordTrade(ctx context.Context, trade domain.Trade) {
	if e.trades != nil {
		id, err := e.trades.InsertTrade(ctx, trade)
		if err != nil {
			log.Printf("trader: trade not persisted: %v", err)
		} else {
			trade.ID = id
		}
	}

	e.mu.Lock()
	e.history = append(e.history, trade)
	e.mu.Unlock()

	if e.alerts != nil {
		e.alerts.TradePlaced(trade)
	}
}

// StartTrading enables automatic trade placement.
func (e *Engine) StartTrading() {
	e.mu.Lock()
	e.trading = true
	e.mu.Unlock()
	log.Println("trader: trading ENABLED")
}

// StopTrading disables automatic trade placement; analysis continues.
func (e *Engine) StopTrading() {
	e.mu.Lock()
	e.trading = false
	e.mu.Unlock()
	log.Println("trader: trading DISABLED")
}

// SetAsset switches the active asset, resubscribing when running.
func (e *Engine) SetAsset(ctx context.Context, asset string) error {
	if !domain.IsSupportedAsset(asset) {
		return fmt.Errorf("unsupported asset %q", asset)
	}

	e.mu.Lock()
	previous := e.currentAsset
	running := e.running
	e.currentAsset = asset
	e.mu.Unlock()

	if !running || previous == asset {
		log.Printf("trader: active asset set to %s", asset)
		return nil
	}

	for _, tf := range domain.SupportedTimeframes {
		e.client.UnsubscribeCandles(previous, tf)
	}
	if err := e.subscribeAll(asset); err != nil {
		return err
	}
	log.Printf("trader: active asset changed to %s, resubscribed", asset)
	return nil
}

// SetTimeframe switches the active analysis timeframe.
func (e *Engine) SetTimeframe(timeframe int) error {
	if !domain.IsSupportedTimeframe(timeframe) {
		return fmt.Errorf("unsupported timeframe %d", timeframe)
	}
	e.mu.Lock()
	e.currentTimeframe = timeframe
	e.mu.Unlock()
	log.Printf("trader: active timeframe set to %ds", timeframe)
	return nil
}

// SetMinConfidence updates the trading threshold, clamped to [0.5, 0.95].
func (e *Engine) SetMinConfidence(confidence float64) {
	c := clampConfidence(confidence)
	e.mu.Lock()
	e.minConfidence = c
	e.mu.Unlock()
	log.Printf("trader: minimum confidence set to %.0f%%", c*100)
}

// JoinTournament forwards a tournament join request to the broker.
func (e *Engine) JoinTournament(ctx context.Context, id string) error {
	return e.client.JoinTournament(ctx, id)
}

// Running reports whether the engine loop is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Status assembles the bot's self-reported state.
func (e *Engine) Status(ctx context.Context) domain.BotStatus {
	ctx, span := e.tracer.Start(ctx, "trader.status")
	defer span.End()

	var knowledgeStats domain.KnowledgeStats
	if e.knowledge != nil {
		knowledgeStats = e.knowledge.Stats(ctx)
	}
	agentStats := e.agent.Stats()

	e.mu.Lock()
	defer e.mu.Unlock()

	return domain.BotStatus{
		IsRunning:        e.running,
		IsTrading:        e.trading,
		IsLearning:       e.learning,
		Connected:        e.client.Connected(),
		SimulationMode:   e.client.Simulation(),
		Balance:          e.client.Balance(),
		CurrentAsset:     e.currentAsset,
		CurrentTimeframe: e.currentTimeframe,
		PatternsDetected: len(e.patterns),
		TradesThisHour:   e.tradesThisHour,
		PendingTrades:    e.pendingTrades,
		TotalTrades:      len(e.history),
		AgentStats:       agentStats,
		KnowledgeStats:   knowledgeStats,
		CandleCount:      len(e.marketData[candleKey(e.currentAsset, e.currentTimeframe)]),
	}
}

// MarketAnalysis returns the current snapshot for the active feed.
// Patterns are capped at ten for the payload.
func (e *Engine) MarketAnalysis(ctx context.Context) domain.MarketAnalysis {
	_, span := e.tracer.Start(ctx, "trader.market-analysis")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	candles := append([]domain.Candle(nil), e.marketData[candleKey(e.currentAsset, e.currentTimeframe)]...)
	patterns := e.patterns
	if len(patterns) > maxReportedPatterns {
		patterns = patterns[:maxReportedPatterns]
	}

	return domain.MarketAnalysis{
		Candles:    candles,
		Patterns:   append([]domain.Pattern(nil), patterns...),
		Levels:     e.levels,
		Indicators: e.indicators,
		Trend:      analysis.Trend(candles),
	}
}

// TradeStats returns the last 50 trades, newest first, with aggregates over
// the whole history.
func (e *Engine) TradeStats(ctx context.Context) domain.TradeStats {
	_, span := e.tracer.Start(ctx, "trader.trade-stats")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	var wins, losses int
	for _, t := range e.history {
		switch t.Outcome {
		case domain.OutcomeWin:
			wins++
		case domain.OutcomeLoss:
			losses++
		}
	}

	start := len(e.history) - maxReportedTrades
	if start < 0 {
		start = 0
	}
	recent := e.history[start:]
	history := make([]domain.Trade, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		history = append(history, recent[i])
	}

	stats := domain.TradeStats{
		History: history,
		Total:   len(e.history),
		Wins:    wins,
		Losses:  losses,
	}
	if stats.Total > 0 {
		stats.WinRate = float64(wins) / float64(stats.Total)
	}
	return stats
}

func clampConfidence(c float64) float64 {
	if c < 0.5 {
		return 0.5
	}
	if c > 0.95 {
		return 0.95
	}
	return c
}

func candleKey(asset string, timeframe int) string {
	return fmt.Sprintf("%s|%d", asset, timeframe)
}
