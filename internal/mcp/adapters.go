package mcp

import (
	"context"

	"pocket-pulse/internal/apiclient"
	"pocket-pulse/internal/domain"
)

// BotReader exposes read operations against the running bot.
type BotReader interface {
	Status(ctx context.Context) (domain.BotStatus, error)
	MarketAnalysis(ctx context.Context) (domain.MarketAnalysis, error)
	TradeStats(ctx context.Context) (domain.TradeStats, error)
}

// ActionPoster sends control commands to the running bot.
type ActionPoster interface {
	PostAction(ctx context.Context, action string, value any) (apiclient.ActionResponse, error)
}
