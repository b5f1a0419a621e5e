package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"pocket-pulse/internal/signal"
)

func registerTools(server *mcp.Server, bot BotReader, actions ActionPoster) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "bot_status",
		Description: "Get the trading bot's run state, connection, balance and counters",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ botStatusInput) (*mcp.CallToolResult, botStatusOutput, error) {
		if bot == nil {
			return nil, botStatusOutput{}, fmt.Errorf("bot api unavailable")
		}
		status, err := bot.Status(ctx)
		if err != nil {
			return nil, botStatusOutput{}, err
		}
		return nil, botStatusOutput{Status: status}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "market_analysis",
		Description: "Get the current market analysis: candles, patterns, levels, indicators and trend",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ marketAnalysisInput) (*mcp.CallToolResult, marketAnalysisOutput, error) {
		if bot == nil {
			return nil, marketAnalysisOutput{}, fmt.Errorf("bot api unavailable")
		}
		analysis, err := bot.MarketAnalysis(ctx)
		if err != nil {
			return nil, marketAnalysisOutput{}, err
		}
		return nil, marketAnalysisOutput{Analysis: analysis}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "trade_stats",
		Description: "Get recent trade history and aggregate win/loss performance",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ tradeStatsInput) (*mcp.CallToolResult, tradeStatsOutput, error) {
		if bot == nil {
			return nil, tradeStatsOutput{}, fmt.Errorf("bot api unavailable")
		}
		stats, err := bot.TradeStats(ctx)
		if err != nil {
			return nil, tradeStatsOutput{}, err
		}
		return nil, tradeStatsOutput{Stats: stats}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "score_signal",
		Description: "Score a trend plus detected patterns into a CALL/PUT/HOLD signal with confidence and reasoning. Pure computation, no bot required.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, in scoreSignalInput) (*mcp.CallToolResult, scoreSignalOutput, error) {
		analysis, err := analysisFromInput(in)
		if err != nil {
			return nil, scoreSignalOutput{}, err
		}
		return nil, scoreSignalOutput{Signal: signal.Score(analysis)}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "bot_command",
		Description: "Send a control command to the bot (start, stop, start_trading, set_asset, ...)",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in botCommandInput) (*mcp.CallToolResult, botCommandOutput, error) {
		if actions == nil {
			return nil, botCommandOutput{}, fmt.Errorf("bot api unavailable")
		}
		action, err := normalizeAction(in.Action)
		if err != nil {
			return nil, botCommandOutput{}, err
		}
		resp, err := actions.PostAction(ctx, action, in.Value)
		if err != nil {
			return nil, botCommandOutput{}, err
		}
		return nil, botCommandOutput{Status: resp.Status, Message: resp.Message}, nil
	})
}
