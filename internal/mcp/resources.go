package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"pocket-pulse/internal/domain"
)

func registerResources(server *mcp.Server, bot BotReader) {
	server.AddResource(&mcp.Resource{
		URI:         "market://supported-assets",
		Name:        "supported-assets",
		Description: "OTC asset pairs the bot can trade",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		return jsonResource(req.Params.URI, domain.SupportedAssets)
	})

	server.AddResource(&mcp.Resource{
		URI:         "market://supported-timeframes",
		Name:        "supported-timeframes",
		Description: "Candle durations (seconds) the bot analyzes",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		return jsonResource(req.Params.URI, domain.SupportedTimeframes)
	})

	server.AddResource(&mcp.Resource{
		URI:         "bot://status",
		Name:        "bot-status",
		Description: "Current bot status snapshot",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if bot == nil {
			return nil, fmt.Errorf("bot api unavailable")
		}
		status, err := bot.Status(ctx)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, botStatusOutput{Status: status})
	})

	server.AddResource(&mcp.Resource{
		URI:         "bot://market-analysis",
		Name:        "bot-market-analysis",
		Description: "Current market analysis for the active feed",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if bot == nil {
			return nil, fmt.Errorf("bot api unavailable")
		}
		analysis, err := bot.MarketAnalysis(ctx)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, marketAnalysisOutput{Analysis: analysis})
	})

	server.AddResource(&mcp.Resource{
		URI:         "bot://trade-stats",
		Name:        "bot-trade-stats",
		Description: "Recent trades and aggregate performance",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if bot == nil {
			return nil, fmt.Errorf("bot api unavailable")
		}
		stats, err := bot.TradeStats(ctx)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, tradeStatsOutput{Stats: stats})
	})
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(body),
		}},
	}, nil
}
