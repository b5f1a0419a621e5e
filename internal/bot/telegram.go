package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	tele "gopkg.in/telebot.v3"

	"pocket-pulse/internal/domain"
	"pocket-pulse/internal/signal"
)

// StatusReporter is the engine surface the Telegram commands read from.
type StatusReporter interface {
	Status(ctx context.Context) domain.BotStatus
	MarketAnalysis(ctx context.Context) domain.MarketAnalysis
	TradeStats(ctx context.Context) domain.TradeStats
}

func StartTelegramBot(token string, engine StatusReporter, store *redis.Client) *AlertDispatcher {
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}
	alerts := NewAlertDispatcher(b, store)

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/status", func(c tele.Context) error {
		status := engine.Status(context.Background())
		return c.Send(formatStatus(status))
	})

	b.Handle("/signal", func(c tele.Context) error {
		analysis := engine.MarketAnalysis(context.Background())
		if len(analysis.Candles) == 0 {
			return c.Send("No market data yet. Start the bot first.")
		}
		sig := signal.Score(analysis)
		return c.Send(formatSignal(sig))
	})

	b.Handle("/trades", func(c tele.Context) error {
		stats := engine.TradeStats(context.Background())
		if stats.Total == 0 {
			return c.Send("No trades recorded yet.")
		}
		return c.Send(formatTradeStats(stats))
	})

	b.Handle("/alerts", func(c tele.Context) error {
		chat := c.Chat()
		if chat == nil {
			return c.Send("Unable to detect chat")
		}

		mode, err := parseAlertMode(c.Args())
		if err != nil {
			return c.Send("Usage: /alerts on | /alerts off | /alerts status")
		}

		ctx := context.Background()
		switch mode {
		case "on":
			if alerts.Subscribe(ctx, chat.ID) {
				return c.Send("Trade alerts enabled for this chat.")
			}
			return c.Send("Trade alerts are already enabled for this chat.")
		case "off":
			if alerts.Unsubscribe(ctx, chat.ID) {
				return c.Send("Trade alerts disabled for this chat.")
			}
			return c.Send("Trade alerts are already disabled for this chat.")
		default:
			if alerts.IsSubscribed(ctx, chat.ID) {
				return c.Send("Alerts status: ON")
			}
			return c.Send("Alerts status: OFF")
		}
	})

	log.Println("Telegram bot started")
	go b.Start()
	return alerts
}

func formatStatus(s domain.BotStatus) string {
	mode := "live"
	if s.SimulationMode {
		mode = "simulation"
	}
	lines := []string{
		fmt.Sprintf("Running: %v | Trading: %v | Mode: %s", s.IsRunning, s.IsTrading, mode),
		fmt.Sprintf("Asset: %s @ %ds", s.CurrentAsset, s.CurrentTimeframe),
		fmt.Sprintf("Balance: $%.2f", s.Balance),
		fmt.Sprintf("Trades this hour: %d | Pending: %d | Total: %d", s.TradesThisHour, s.PendingTrades, s.TotalTrades),
	}
	if s.AgentStats.IsTrained {
		lines = append(lines, fmt.Sprintf("Agent trained on %d experiences (%.0f%% win rate)",
			s.AgentStats.TotalExperiences, s.AgentStats.WinRate*100))
	}
	return strings.Join(lines, "\n")
}

func formatSignal(s domain.Signal) string {
	return fmt.Sprintf("%s (%d%%)\n%s", s.Direction, s.ConfidencePercent(), s.Reasoning)
}

func formatTradeStats(s domain.TradeStats) string {
	lines := []string{
		fmt.Sprintf("Trades: %d | Wins: %d | Losses: %d | Win rate: %.0f%%",
			s.Total, s.Wins, s.Losses, s.WinRate*100),
	}
	limit := 5
	if len(s.History) < limit {
		limit = len(s.History)
	}
	for _, t := range s.History[:limit] {
		lines = append(lines, fmt.Sprintf("%s %s $%.2f -> %s at %s",
			t.Asset, t.Direction, t.Amount, t.Outcome, t.CreatedAt.UTC().Format(time.RFC822)))
	}
	return strings.Join(lines, "\n")
}
