package bot

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	tele "gopkg.in/telebot.v3"

	"pocket-pulse/internal/domain"
)

const subscribersKey = "telegram:alert_subscribers"

type messageSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// AlertDispatcher broadcasts placed trades to subscribed chats. Subscriptions
// live in redis so they survive restarts; without a redis client the
// dispatcher degrades to an in-memory set.
type AlertDispatcher struct {
	sender messageSender
	store  *redis.Client

	memory map[int64]struct{}
}

func NewAlertDispatcher(sender messageSender, store *redis.Client) *AlertDispatcher {
	return &AlertDispatcher{
		sender: sender,
		store:  store,
		memory: make(map[int64]struct{}),
	}
}

func (d *AlertDispatcher) Subscribe(ctx context.Context, chatID int64) bool {
	if d.store == nil {
		if _, exists := d.memory[chatID]; exists {
			return false
		}
		d.memory[chatID] = struct{}{}
		return true
	}
	added, err := d.store.SAdd(ctx, subscribersKey, chatID).Result()
	if err != nil {
		log.Printf("alerts: subscribe failed for chat %d: %v", chatID, err)
		return false
	}
	return added > 0
}

func (d *AlertDispatcher) Unsubscribe(ctx context.Context, chatID int64) bool {
	if d.store == nil {
		if _, exists := d.memory[chatID]; !exists {
			return false
		}
		delete(d.memory, chatID)
		return true
	}
	removed, err := d.store.SRem(ctx, subscribersKey, chatID).Result()
	if err != nil {
		log.Printf("alerts: unsubscribe failed for chat %d: %v", chatID, err)
		return false
	}
	return removed > 0
}

func (d *AlertDispatcher) IsSubscribed(ctx context.Context, chatID int64) bool {
	if d.store == nil {
		_, exists := d.memory[chatID]
		return exists
	}
	ok, err := d.store.SIsMember(ctx, subscribersKey, chatID).Result()
	if err != nil {
		log.Printf("alerts: membership check failed for chat %d: %v", chatID, err)
		return false
	}
	return ok
}

func (d *AlertDispatcher) SubscriberCount(ctx context.Context) int {
	if d.store == nil {
		return len(d.memory)
	}
	n, err := d.store.SCard(ctx, subscribersKey).Result()
	if err != nil {
		return 0
	}
	return int(n)
}

// TradePlaced satisfies the trading engine's alerter hook. It must not block
// the candle loop, so delivery happens on its own goroutine.
func (d *AlertDispatcher) TradePlaced(trade domain.Trade) {
	if d == nil || d.sender == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := d.broadcast(ctx, formatTrade(trade)); err != nil {
			log.Printf("alerts: %v", err)
		}
	}()
}

func (d *AlertDispatcher) broadcast(ctx context.Context, msg string) error {
	chatIDs := d.subscribers(ctx)
	if len(chatIDs) == 0 {
		return nil
	}

	var failures []string
	for _, chatID := range chatIDs {
		if _, err := d.sender.Send(&tele.Chat{ID: chatID}, msg); err != nil {
			failures = append(failures, fmt.Sprintf("chat %d: %v", chatID, err))
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("failed sending %d alerts: %s", len(failures), strings.Join(failures, "; "))
	}
	return nil
}

func (d *AlertDispatcher) subscribers(ctx context.Context) []int64 {
	if d.store == nil {
		chatIDs := make([]int64, 0, len(d.memory))
		for chatID := range d.memory {
			chatIDs = append(chatIDs, chatID)
		}
		sort.Slice(chatIDs, func(i, j int) bool { return chatIDs[i] < chatIDs[j] })
		return chatIDs
	}

	members, err := d.store.SMembers(ctx, subscribersKey).Result()
	if err != nil {
		log.Printf("alerts: listing subscribers failed: %v", err)
		return nil
	}
	chatIDs := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		chatIDs = append(chatIDs, id)
	}
	sort.Slice(chatIDs, func(i, j int) bool { return chatIDs[i] < chatIDs[j] })
	return chatIDs
}

func parseAlertMode(args []string) (string, error) {
	if len(args) == 0 {
		return "status", nil
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "on":
		return "on", nil
	case "off":
		return "off", nil
	case "status":
		return "status", nil
	default:
		return "", fmt.Errorf("invalid mode")
	}
}

func formatTrade(t domain.Trade) string {
	return fmt.Sprintf(
		"Trade placed: %s %s $%.2f (%.0f%% confidence) -> %s",
		t.Asset,
		t.Direction,
		t.Amount,
		t.Confidence*100,
		t.Outcome,
	)
}
