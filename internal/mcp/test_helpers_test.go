package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"pocket-pulse/internal/apiclient"
	"pocket-pulse/internal/domain"
)

type stubBotAPI struct {
	status   domain.BotStatus
	analysis domain.MarketAnalysis
	stats    domain.TradeStats

	lastAction string
	lastValue  any
	actionResp apiclient.ActionResponse
	actionErr  error
}

func (s *stubBotAPI) Status(ctx context.Context) (domain.BotStatus, error) {
	return s.status, nil
}

func (s *stubBotAPI) MarketAnalysis(ctx context.Context) (domain.MarketAnalysis, error) {
	return s.analysis, nil
}

func (s *stubBotAPI) TradeStats(ctx context.Context) (domain.TradeStats, error) {
	return s.stats, nil
}

func (s *stubBotAPI) PostAction(ctx context.Context, action string, value any) (apiclient.ActionResponse, error) {
	s.lastAction = action
	s.lastValue = value
	if s.actionErr != nil {
		return apiclient.ActionResponse{}, s.actionErr
	}
	return s.actionResp, nil
}

func testServer() (*sdkmcp.Server, *stubBotAPI) {
	bot := &stubBotAPI{
		status: domain.BotStatus{
			IsRunning:        true,
			SimulationMode:   true,
			Balance:          10000,
			CurrentAsset:     "EURUSD_otc",
			CurrentTimeframe: 60,
		},
		analysis: domain.MarketAnalysis{
			Trend: domain.TrendUp,
			Patterns: []domain.Pattern{
				{Name: "bullish_engulfing", Signal: domain.PatternCall, Strength: 0.85},
			},
		},
		stats: domain.TradeStats{
			Total: 1, Wins: 1, WinRate: 1,
			History: []domain.Trade{{
				Asset: "EURUSD_otc", Direction: domain.DirectionCall, Amount: 5,
				Outcome: domain.OutcomeWin, CreatedAt: time.Unix(0, 0).UTC(),
			}},
		},
		actionResp: apiclient.ActionResponse{Status: "success", Message: "Bot started."},
	}

	srv := NewServer(nil, bot, bot, ServerConfig{RequestTimeout: time.Second})
	return srv, bot
}

func connectInMemory(ctx context.Context, srv *sdkmcp.Server) (*sdkmcp.ClientSession, context.CancelFunc, error) {
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	runCtx, cancel := context.WithCancel(ctx)
	go func() { _ = srv.Run(runCtx, serverTransport) }()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "mcp-test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return session, cancel, nil
}

type authRoundTripper struct {
	token string
	base  http.RoundTripper
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.token != "" {
		clone.Header.Set("Authorization", "Bearer "+t.token)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

func decodeResourceJSON(result *sdkmcp.ReadResourceResult, out any) error {
	if len(result.Contents) == 0 {
		return nil
	}
	return json.Unmarshal([]byte(result.Contents[0].Text), out)
}
