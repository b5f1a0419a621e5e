package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"pocket-pulse/internal/apiclient"
	"pocket-pulse/internal/domain"
)

type fakeAPI struct {
	overview apiclient.Overview
	err      error
	actions  []string
	values   []any
}

func (f *fakeAPI) Overview(ctx context.Context) (apiclient.Overview, error) {
	return f.overview, f.err
}

func (f *fakeAPI) PostAction(ctx context.Context, action string, value any) (apiclient.ActionResponse, error) {
	f.actions = append(f.actions, action)
	f.values = append(f.values, value)
	return apiclient.ActionResponse{Status: "success", Message: "ok"}, nil
}

func sampleOverview() apiclient.Overview {
	return apiclient.Overview{
		Status: domain.BotStatus{
			IsRunning:        true,
			SimulationMode:   true,
			Balance:          10000,
			CurrentAsset:     "GBPUSD_otc",
			CurrentTimeframe: 300,
		},
		Analysis: domain.MarketAnalysis{
			Trend: domain.TrendUp,
			Patterns: []domain.Pattern{
				{Name: "bullish_engulfing", Signal: domain.PatternCall, Strength: 1.0},
			},
		},
		Trades: domain.TradeStats{
			Total: 2, Wins: 1, Losses: 1, WinRate: 0.5,
			History: []domain.Trade{
				{Asset: "GBPUSD_otc", Direction: domain.DirectionCall, Amount: 5, Outcome: domain.OutcomeWin},
			},
		},
	}
}

func TestDashboardOverviewUpdates(t *testing.T) {
	m := NewDashboardModel(Services{API: &fakeAPI{}})

	m, _ = m.Update(overviewMsg(sampleOverview()))

	if !m.loaded {
		t.Fatal("expected model to be loaded")
	}
	if m.Overview().Status.CurrentAsset != "GBPUSD_otc" {
		t.Errorf("unexpected overview: %+v", m.Overview().Status)
	}
	// uptrend + one strong CALL pattern clears the decision threshold
	if got := m.DerivedSignal(); got.Direction != domain.DirectionCall {
		t.Errorf("derived signal = %+v", got)
	}
	if m.assetIndex != 1 {
		t.Errorf("asset index not synced, got %d", m.assetIndex)
	}
	if m.timeIndex != 1 {
		t.Errorf("timeframe index not synced, got %d", m.timeIndex)
	}
}

func TestDashboardStartStopKey(t *testing.T) {
	api := &fakeAPI{}
	m := NewDashboardModel(Services{API: api})

	// Stopped bot: "s" starts it.
	_, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	cmd()
	if len(api.actions) != 1 || api.actions[0] != "start" {
		t.Fatalf("expected start action, got %v", api.actions)
	}

	// Running bot: "s" stops it.
	m, _ = m.Update(overviewMsg(sampleOverview()))
	_, cmd = m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	cmd()
	if api.actions[len(api.actions)-1] != "stop" {
		t.Fatalf("expected stop action, got %v", api.actions)
	}
}

func TestDashboardCycleAsset(t *testing.T) {
	api := &fakeAPI{}
	m := NewDashboardModel(Services{API: api})
	m, _ = m.Update(overviewMsg(sampleOverview()))

	m2, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	cmd()

	if api.actions[len(api.actions)-1] != "set_asset" {
		t.Fatalf("expected set_asset, got %v", api.actions)
	}
	next := domain.SupportedAssets[2] // GBPUSD_otc is index 1
	if api.values[len(api.values)-1] != any(next) {
		t.Errorf("expected asset %s, got %v", next, api.values)
	}
	if m2.assetIndex != 2 {
		t.Errorf("asset index = %d", m2.assetIndex)
	}
}

func TestDashboardConfidenceKeysClamp(t *testing.T) {
	api := &fakeAPI{}
	m := NewDashboardModel(Services{API: api})

	for i := 0; i < 10; i++ {
		m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("+")})
	}
	if m.confidence != 0.95 {
		t.Errorf("confidence should clamp at 0.95, got %v", m.confidence)
	}

	for i := 0; i < 20; i++ {
		m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("-")})
	}
	if m.confidence != 0.5 {
		t.Errorf("confidence should clamp at 0.5, got %v", m.confidence)
	}
}

func TestDashboardViewShowsState(t *testing.T) {
	m := NewDashboardModel(Services{API: &fakeAPI{}})
	m.SetSize(100, 40)
	m, _ = m.Update(overviewMsg(sampleOverview()))

	view := m.View()
	for _, want := range []string{"RUNNING", "GBPUSD_otc", "UPTREND", "CALL"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestDashboardErrorBeforeFirstLoad(t *testing.T) {
	m := NewDashboardModel(Services{API: &fakeAPI{}})
	m, _ = m.Update(overviewErrMsg{err: errFake})

	if !strings.Contains(m.View(), "Error") {
		t.Errorf("expected error view, got %q", m.View())
	}
}

var errFake = &fakeError{}

type fakeError struct{}

func (*fakeError) Error() string { return "connection refused" }
