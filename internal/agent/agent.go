package agent

import (
	"context"
	"log"
	"sync"

	"pocket-pulse/internal/domain"
)

const (
	winModelKey     = "win_model"
	anomalyModelKey = "anomaly_model"

	heuristicPatternWeight = 1.5
	heuristicRSIWeight     = 0.5
	heuristicFloor         = 0.5
	maxHeuristicPatterns   = 3

	heuristicBlendWeight = 0.4
	modelBlendWeight     = 0.6
	anomalyDampFactor    = 0.85

	minDecisionConfidence = 0.5
	maxDecisionConfidence = 0.95
)

// ArtifactStore persists and restores serialized model artifacts.
type ArtifactStore interface {
	SaveModel(ctx context.Context, name string, artifact []byte) error
	LoadModel(ctx context.Context, name string) ([]byte, error)
}

// Experience is one settled trade: the features the decision was made on and
// how the trade ended.
type Experience struct {
	Features []float64
	Outcome  domain.TradeOutcome
}

// Decision is the agent's answer for one market context.
type Decision struct {
	Direction  domain.TradeDirection
	Confidence float64
}

type Options struct {
	MinTrainingSamples int
	BaseStakePct       float64
}

func (o *Options) defaults() {
	if o.MinTrainingSamples <= 0 {
		o.MinTrainingSamples = 50
	}
	if o.BaseStakePct <= 0 {
		o.BaseStakePct = 0.02
	}
}

// Agent combines a pattern/indicator heuristic with a learned win-probability
// model and an anomaly filter to decide whether and how to trade.
type Agent struct {
	store ArtifactStore
	opts  Options

	mu      sync.Mutex
	win     *WinModel
	anomaly *AnomalyModel
	buffer  []Experience
}

func New(store ArtifactStore, opts Options) *Agent {
	opts.defaults()
	return &Agent{store: store, opts: opts}
}

// LoadModels restores previously trained artifacts. Missing or corrupt
// artifacts are logged and skipped; the agent starts untrained.
func (a *Agent) LoadModels(ctx context.Context) {
	if a.store == nil {
		return
	}

	if blob, err := a.store.LoadModel(ctx, winModelKey); err != nil {
		log.Printf("agent: win model not loaded: %v", err)
	} else if m, err := UnmarshalWinModel(blob); err != nil {
		log.Printf("agent: win model artifact invalid: %v", err)
	} else {
		a.mu.Lock()
		a.win = m
		a.mu.Unlock()
		log.Println("agent: win model loaded")
	}

	if blob, err := a.store.LoadModel(ctx, anomalyModelKey); err != nil {
		log.Printf("agent: anomaly model not loaded: %v", err)
	} else if m, err := UnmarshalAnomalyModel(blob); err != nil {
		log.Printf("agent: anomaly model artifact invalid: %v", err)
	} else {
		a.mu.Lock()
		a.anomaly = m
		a.mu.Unlock()
		log.Println("agent: anomaly model loaded")
	}
}

// ExtractFeatures turns a market snapshot into the model feature vector.
// Returns nil when the snapshot lacks indicators or candles.
func ExtractFeatures(analysis domain.MarketAnalysis) []float64 {
	if analysis.Indicators.RSI == nil || len(analysis.Candles) == 0 {
		return nil
	}

	rsiVal := analysis.Indicators.RSI.Value

	var macdHist float64
	if analysis.Indicators.MACD != nil {
		macdHist = analysis.Indicators.MACD.Histogram
	}

	atrVal := analysis.Indicators.ATR
	if atrVal <= 0 {
		atrVal = 0.001
	}

	bodyToATR := analysis.Candles[0].Body() / atrVal

	var bullStrength, bearStrength float64
	for _, p := range analysis.Patterns {
		switch p.Signal {
		case domain.PatternCall:
			bullStrength += p.Strength
		case domain.PatternPut:
			bearStrength += p.Strength
		}
	}

	return []float64{rsiVal, macdHist, atrVal, bodyToATR, bullStrength, bearStrength}
}

func heuristicScore(analysis domain.MarketAnalysis) (callScore, putScore float64) {
	patterns := analysis.Patterns
	if len(patterns) > maxHeuristicPatterns {
		patterns = patterns[:maxHeuristicPatterns]
	}
	for _, p := range patterns {
		switch p.Signal {
		case domain.PatternCall:
			callScore += p.Strength * heuristicPatternWeight
		case domain.PatternPut:
			putScore += p.Strength * heuristicPatternWeight
		}
	}

	if rsi := analysis.Indicators.RSI; rsi != nil {
		switch rsi.Signal {
		case "oversold":
			callScore += heuristicRSIWeight
		case "overbought":
			putScore += heuristicRSIWeight
		}
	}
	return callScore, putScore
}

// Decide returns the trade direction and confidence for one market context.
// The heuristic picks the direction; the win model adjusts the confidence;
// the anomaly filter damps it in unfamiliar conditions.
func (a *Agent) Decide(analysis domain.MarketAnalysis) Decision {
	features := ExtractFeatures(analysis)
	callScore, putScore := heuristicScore(analysis)

	total := callScore + putScore
	if total <= heuristicFloor {
		return Decision{Direction: domain.DirectionHold, Confidence: minDecisionConfidence}
	}

	a.mu.Lock()
	win, anomaly := a.win, a.anomaly
	a.mu.Unlock()

	modelConfidence := 0.5
	if win != nil && features != nil {
		modelConfidence = win.PredictWinProbability(features)
	}

	var direction domain.TradeDirection
	var heuristicConfidence float64
	if callScore > putScore {
		direction = domain.DirectionCall
		heuristicConfidence = callScore / total
	} else {
		direction = domain.DirectionPut
		heuristicConfidence = putScore / total
	}

	confidence := heuristicConfidence*heuristicBlendWeight + modelConfidence*modelBlendWeight

	if anomaly != nil && features != nil && anomaly.Anomalous(features) {
		confidence *= anomalyDampFactor
	}

	if confidence < minDecisionConfidence {
		confidence = minDecisionConfidence
	}
	if confidence > maxDecisionConfidence {
		confidence = maxDecisionConfidence
	}

	return Decision{Direction: direction, Confidence: confidence}
}

// DetermineExpiration picks the trade duration in seconds from current
// volatility (ATR) and pattern dominance. Weak patterns double the duration.
func (a *Agent) DetermineExpiration(volatility, patternStrength float64) int {
	var base int
	switch {
	case volatility > 0.002:
		base = 60
	case volatility > 0.001:
		base = 120
	default:
		base = 300
	}
	if patternStrength > 0.8 {
		return base
	}
	return base * 2
}

// TradeAmount sizes the stake from the balance and confidence, bounded by
// $1 below and 5% of balance above.
func (a *Agent) TradeAmount(balance, confidence float64) float64 {
	pct := a.opts.BaseStakePct
	switch {
	case confidence < 0.65:
		pct *= 0.5
	case confidence < 0.75:
		// base stake
	default:
		pct *= 1.5
	}

	amount := balance * pct
	if limit := balance * 0.05; amount > limit {
		amount = limit
	}
	if amount < 1 {
		amount = 1
	}
	return amount
}

// AddExperience appends a settled trade to the training buffer.
func (a *Agent) AddExperience(exp Experience) {
	a.mu.Lock()
	a.buffer = append(a.buffer, exp)
	a.mu.Unlock()
}

// RetrainIfNeeded retrains both models once the buffer holds enough settled
// trades, persists the artifacts, and clears the buffer. Reports whether a
// retrain happened.
func (a *Agent) RetrainIfNeeded(ctx context.Context) bool {
	a.mu.Lock()
	if len(a.buffer) < a.opts.MinTrainingSamples {
		a.mu.Unlock()
		return false
	}
	buffer := a.buffer
	a.mu.Unlock()

	var samples [][]float64
	var labels []float64
	for _, exp := range buffer {
		if len(exp.Features) == 0 {
			continue
		}
		samples = append(samples, exp.Features)
		if exp.Outcome == domain.OutcomeWin {
			labels = append(labels, 1)
		} else {
			labels = append(labels, 0)
		}
	}
	if len(samples) == 0 {
		log.Println("agent: retrain skipped, no usable feature data")
		return false
	}

	log.Printf("agent: retraining with %d samples", len(samples))

	win, err := TrainWinModel(samples, labels)
	if err != nil {
		log.Printf("agent: win model training failed: %v", err)
		return false
	}
	anomaly, err := TrainAnomalyModel(samples)
	if err != nil {
		log.Printf("agent: anomaly model training failed: %v", err)
		return false
	}

	a.mu.Lock()
	a.win = win
	a.anomaly = anomaly
	a.buffer = nil
	a.mu.Unlock()

	a.saveArtifacts(ctx, win, anomaly)
	log.Println("agent: models retrained")
	return true
}

func (a *Agent) saveArtifacts(ctx context.Context, win *WinModel, anomaly *AnomalyModel) {
	if a.store == nil {
		return
	}
	if blob, err := win.MarshalBinary(); err != nil {
		log.Printf("agent: win model marshal failed: %v", err)
	} else if err := a.store.SaveModel(ctx, winModelKey, blob); err != nil {
		log.Printf("agent: win model save failed: %v", err)
	}
	if blob, err := anomaly.MarshalBinary(); err != nil {
		log.Printf("agent: anomaly model marshal failed: %v", err)
	} else if err := a.store.SaveModel(ctx, anomalyModelKey, blob); err != nil {
		log.Printf("agent: anomaly model save failed: %v", err)
	}
}

// Trained reports whether a win model is available.
func (a *Agent) Trained() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.win != nil
}

// Stats summarizes the training buffer for the status endpoint.
func (a *Agent) Stats() domain.AgentStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	stats := domain.AgentStats{
		TotalExperiences: len(a.buffer),
		IsTrained:        a.win != nil,
	}
	if len(a.buffer) > 0 {
		var wins int
		for _, exp := range a.buffer {
			if exp.Outcome == domain.OutcomeWin {
				wins++
			}
		}
		stats.WinRate = float64(wins) / float64(len(a.buffer))
	}
	return stats
}
