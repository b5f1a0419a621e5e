package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"pocket-pulse/internal/domain"
)

// Overview is everything the dashboard needs in one fetch.
type Overview struct {
	Status   domain.BotStatus
	Analysis domain.MarketAnalysis
	Trades   domain.TradeStats
}

// ActionResponse is the server's reply to a posted command.
type ActionResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Client talks to the bot's HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Status(ctx context.Context) (domain.BotStatus, error) {
	var status domain.BotStatus
	err := c.getJSON(ctx, "/status", &status)
	return status, err
}

func (c *Client) MarketAnalysis(ctx context.Context) (domain.MarketAnalysis, error) {
	var analysis domain.MarketAnalysis
	err := c.getJSON(ctx, "/market-analysis", &analysis)
	return analysis, err
}

func (c *Client) TradeStats(ctx context.Context) (domain.TradeStats, error) {
	var stats domain.TradeStats
	err := c.getJSON(ctx, "/trade-stats", &stats)
	return stats, err
}

// Overview fetches status, market analysis and trade stats concurrently.
func (c *Client) Overview(ctx context.Context) (Overview, error) {
	var overview Overview
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		overview.Status, err = c.Status(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		overview.Analysis, err = c.MarketAnalysis(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		overview.Trades, err = c.TradeStats(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return overview, nil
}

// PostAction sends a bot command. Non-2xx replies surface the server's
// message as the error.
func (c *Client) PostAction(ctx context.Context, action string, value any) (ActionResponse, error) {
	payload, err := json.Marshal(map[string]any{"action": action, "value": value})
	if err != nil {
		return ActionResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/action", bytes.NewReader(payload))
	if err != nil {
		return ActionResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return ActionResponse{}, err
	}
	defer resp.Body.Close()

	var out ActionResponse
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ActionResponse{}, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return ActionResponse{}, fmt.Errorf("POST /action: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	if resp.StatusCode >= 400 {
		return out, fmt.Errorf("POST /action: %s", out.Message)
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
