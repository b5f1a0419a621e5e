package tui

import (
	"context"

	"pocket-pulse/internal/apiclient"
)

// BotAPI is the server surface the TUI talks to.
type BotAPI interface {
	Overview(ctx context.Context) (apiclient.Overview, error)
	PostAction(ctx context.Context, action string, value any) (apiclient.ActionResponse, error)
}

// Services bundles the dependencies injected into the TUI.
type Services struct {
	API BotAPI
}
