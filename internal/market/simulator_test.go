package market

import (
	"context"
	"testing"
	"time"

	"pocket-pulse/internal/domain"
)

func TestSimulatorConnect(t *testing.T) {
	s := NewSimulator(true)
	defer s.Disconnect()

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if !s.Connected() {
		t.Error("expected connected after Connect")
	}
	if !s.Simulation() {
		t.Error("simulator must report simulation mode")
	}
	if s.Balance() != demoBalance {
		t.Errorf("demo balance = %v, want %v", s.Balance(), demoBalance)
	}
}

func TestSimulatorLiveBalance(t *testing.T) {
	s := NewSimulator(false)
	defer s.Disconnect()

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if s.Balance() != liveBalance {
		t.Errorf("live balance = %v, want %v", s.Balance(), liveBalance)
	}
}

func TestSimulatorDisconnect(t *testing.T) {
	s := NewSimulator(true)
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := s.Disconnect(); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if s.Connected() {
		t.Error("expected disconnected after Disconnect")
	}
	if s.Balance() != 0 {
		t.Errorf("balance = %v, want 0 after disconnect", s.Balance())
	}
}

func TestSimulatorSubscribeUnsupportedAsset(t *testing.T) {
	s := NewSimulator(true)
	if err := s.SubscribeCandles("DOGEUSD", 60, func(domain.Candle) {}); err == nil {
		t.Error("expected error for unsupported asset")
	}
}

func TestSimulatorPlaceTradeSettles(t *testing.T) {
	s := NewSimulator(true)
	defer s.Disconnect()
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	before := s.Balance()
	res, err := s.PlaceTrade(context.Background(), "EURUSD_otc", domain.DirectionCall, 10, 1)
	if err != nil {
		t.Fatalf("place trade: %v", err)
	}
	if res.ID == 0 {
		t.Error("expected a trade id")
	}

	after := s.Balance()
	switch res.Outcome {
	case domain.OutcomeWin:
		want := before + 10*simPayout
		if after != want {
			t.Errorf("balance after win = %v, want %v", after, want)
		}
	case domain.OutcomeLoss:
		if after != before-10 {
			t.Errorf("balance after loss = %v, want %v", after, before-10)
		}
	default:
		t.Errorf("outcome = %s, want WIN or LOSS", res.Outcome)
	}
}

func TestSimulatorPlaceTradeDisconnected(t *testing.T) {
	s := NewSimulator(true)
	if _, err := s.PlaceTrade(context.Background(), "EURUSD_otc", domain.DirectionCall, 10, 60); err == nil {
		t.Error("expected error placing trade while disconnected")
	}
}

func TestSimulatorEmitDue(t *testing.T) {
	// No Connect: emitDue is driven directly so the background ticker
	// cannot interfere with the assertions.
	s := NewSimulator(true)

	candles := make(chan domain.Candle, 1)
	if err := s.SubscribeCandles("EURUSD_otc", 60, func(c domain.Candle) {
		select {
		case candles <- c:
		default:
		}
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	// A timestamp on the interval boundary must trigger an emission,
	// one off the boundary must not.
	s.emitDue(61)
	select {
	case <-candles:
		t.Fatal("off-boundary tick should not emit a candle")
	case <-time.After(50 * time.Millisecond):
	}

	s.emitDue(120)
	select {
	case c := <-candles:
		if c.Asset != "EURUSD_otc" || c.Timeframe != 60 {
			t.Errorf("candle = %s/%d, want EURUSD_otc/60", c.Asset, c.Timeframe)
		}
		if c.Timestamp != 60 {
			t.Errorf("candle timestamp = %d, want interval open 60", c.Timestamp)
		}
		if c.High < c.Low || c.High < c.Close || c.Low > c.Open {
			t.Errorf("candle OHLC inconsistent: %+v", c)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a candle on the interval boundary")
	}
}

func TestSimulatorTournaments(t *testing.T) {
	s := NewSimulator(true)
	ts, err := s.Tournaments(context.Background())
	if err != nil {
		t.Fatalf("tournaments: %v", err)
	}
	var free int
	for _, tour := range ts {
		if tour.EntryFee == 0 && tour.Status == "active" {
			free++
		}
	}
	if free == 0 {
		t.Error("expected at least one active free tournament in the fixture")
	}
}

func TestSplitKey(t *testing.T) {
	asset, tf := splitKey(subKey("EURUSD_otc", 300))
	if asset != "EURUSD_otc" || tf != 300 {
		t.Errorf("splitKey round trip = %s/%d, want EURUSD_otc/300", asset, tf)
	}
}
