package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"pocket-pulse/internal/domain"
)

func TestToolsListAndInvoke(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, bot := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	tools, err := session.ListTools(ctx, &sdkmcp.ListToolsParams{})
	if err != nil {
		t.Fatalf("list tools failed: %v", err)
	}
	if len(tools.Tools) < 5 {
		t.Fatalf("expected at least 5 tools, got %d", len(tools.Tools))
	}

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "bot_status", Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("bot_status failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res.Content)
	}

	res, err = session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "bot_command",
		Arguments: map[string]any{"action": "set_asset", "value": "GBPUSD_otc"},
	})
	if err != nil {
		t.Fatalf("bot_command failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected command error: %+v", res.Content)
	}
	if bot.lastAction != "set_asset" || bot.lastValue != any("GBPUSD_otc") {
		t.Fatalf("command not forwarded: action=%q value=%v", bot.lastAction, bot.lastValue)
	}
}

func TestScoreSignalTool(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, _ := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name: "score_signal",
		Arguments: map[string]any{
			"trend": "uptrend",
			"patterns": []map[string]any{
				{"name": "bullish_engulfing", "signal": "CALL", "strength": 1.0},
			},
		},
	})
	if err != nil {
		t.Fatalf("score_signal failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res.Content)
	}

	raw, err := json.Marshal(res.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var out scoreSignalOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if out.Signal.Direction != domain.DirectionCall {
		t.Errorf("expected CALL, got %+v", out.Signal)
	}
	if out.Signal.Confidence != 0.9 {
		t.Errorf("expected capped confidence 0.9, got %v", out.Signal.Confidence)
	}
}

func TestToolsValidationFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, _ := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "bot_command",
		Arguments: map[string]any{"action": "frobnicate"},
	})
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool-level validation error")
	}

	res, err = session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "score_signal",
		Arguments: map[string]any{"trend": "sideways-ish"},
	})
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected trend validation error")
	}
}
