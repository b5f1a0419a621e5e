package market

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"pocket-pulse/internal/domain"
)

const (
	defaultBrokerURL = "wss://api.pocketoption.com/ws/v2"
	pingInterval     = 20 * time.Second
	orderTimeout     = 10 * time.Second
)

// PocketOption is the live broker client. It authenticates with a session
// id over a websocket, streams finished candles to subscribers, and places
// orders as fire-and-forget frames acknowledged asynchronously.
type PocketOption struct {
	ssid string
	url  string

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	balance   float64
	subs      map[string][]CandleFunc
	orders    map[int64]chan orderAck
	settle    SettlementFunc
	nextReq   int64
	cancel    context.CancelFunc

	// gorilla/websocket allows one concurrent writer per connection, so
	// every frame write holds writeMu for its full duration.
	writeMu sync.Mutex
}

func NewPocketOption(ssid, url string) *PocketOption {
	if url == "" {
		url = defaultBrokerURL
	}
	return &PocketOption{
		ssid:    ssid,
		url:     url,
		subs:    make(map[string][]CandleFunc),
		orders:  make(map[int64]chan orderAck),
		nextReq: 1,
	}
}

type wsFrame struct {
	Event     string          `json:"event"`
	RequestID int64           `json:"request_id,omitempty"`
	Asset     string          `json:"asset,omitempty"`
	Timeframe int             `json:"timeframe,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

type orderAck struct {
	TradeID int64 `json:"trade_id"`
	OK      bool  `json:"ok"`
}

type balanceFrame struct {
	Balance float64 `json:"balance"`
}

type settlementFrame struct {
	TradeID int64  `json:"trade_id"`
	Outcome string `json:"outcome"`
}

// writeJSON serializes a frame write against all other writers.
func (p *PocketOption) writeJSON(v any) error {
	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("broker not connected")
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return conn.WriteJSON(v)
}

func (p *PocketOption) writePing() {
	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()
	if conn == nil {
		return
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	_ = conn.WriteMessage(websocket.PingMessage, nil)
}

func (p *PocketOption) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, p.url, nil)
	if err != nil {
		return fmt.Errorf("broker connect: %w", err)
	}

	auth := map[string]string{"event": "auth", "ssid": p.ssid}
	if err := conn.WriteJSON(auth); err != nil {
		conn.Close()
		return fmt.Errorf("broker auth: %w", err)
	}

	readCtx, cancel := context.WithCancel(context.Background())

	p.mu.Lock()
	p.conn = conn
	p.connected = true
	p.cancel = cancel
	p.mu.Unlock()

	go p.readLoop(readCtx)
	go p.pingLoop(readCtx)

	log.Println("market: connected to broker")
	return nil
}

func (p *PocketOption) Disconnect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.connected = false
	p.balance = 0
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		return err
	}
	return nil
}

func (p *PocketOption) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

func (p *PocketOption) Simulation() bool { return false }

func (p *PocketOption) Balance() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balance
}

func (p *PocketOption) SubscribeCandles(asset string, timeframe int, fn CandleFunc) error {
	if !domain.IsSupportedAsset(asset) {
		return fmt.Errorf("unsupported asset %q", asset)
	}

	p.mu.Lock()
	key := subKey(asset, timeframe)
	first := len(p.subs[key]) == 0
	p.subs[key] = append(p.subs[key], fn)
	p.mu.Unlock()

	if first {
		msg := wsFrame{Event: "subscribe_candles", Asset: asset, Timeframe: timeframe}
		if err := p.writeJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s/%d: %w", asset, timeframe, err)
		}
	}
	return nil
}

func (p *PocketOption) UnsubscribeCandles(asset string, timeframe int) {
	p.mu.Lock()
	delete(p.subs, subKey(asset, timeframe))
	p.mu.Unlock()

	_ = p.writeJSON(wsFrame{Event: "unsubscribe_candles", Asset: asset, Timeframe: timeframe})
}

// OnSettlement registers the callback invoked when the broker reports the
// outcome of a previously placed trade.
func (p *PocketOption) OnSettlement(fn SettlementFunc) {
	p.mu.Lock()
	p.settle = fn
	p.mu.Unlock()
}

// PlaceTrade submits an order frame and waits for its acknowledgement.
// The acknowledged trade is still PENDING; the broker reports the outcome
// later in a trade_settled frame, delivered through OnSettlement.
func (p *PocketOption) PlaceTrade(ctx context.Context, asset string, direction domain.TradeDirection, amount float64, duration int) (TradeResult, error) {
	p.mu.Lock()
	if p.conn == nil {
		p.mu.Unlock()
		return TradeResult{Outcome: domain.OutcomeFailed}, fmt.Errorf("broker not connected")
	}
	p.nextReq++
	reqID := p.nextReq
	ack := make(chan orderAck, 1)
	p.orders[reqID] = ack
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		delete(p.orders, reqID)
		p.mu.Unlock()
	}()

	order := map[string]any{
		"event":      "place_order",
		"request_id": reqID,
		"asset":      asset,
		"direction":  string(direction),
		"amount":     amount,
		"duration":   duration,
	}
	if err := p.writeJSON(order); err != nil {
		return TradeResult{Outcome: domain.OutcomeFailed}, fmt.Errorf("place order: %w", err)
	}

	select {
	case <-ctx.Done():
		return TradeResult{Outcome: domain.OutcomeFailed}, ctx.Err()
	case <-time.After(orderTimeout):
		return TradeResult{Outcome: domain.OutcomeFailed}, fmt.Errorf("order %d timed out", reqID)
	case a := <-ack:
		if !a.OK {
			return TradeResult{Outcome: domain.OutcomeFailed}, fmt.Errorf("order %d rejected", reqID)
		}
		return TradeResult{ID: a.TradeID, Outcome: domain.OutcomePending}, nil
	}
}

// Tournaments and JoinTournament use the same request/ack channel as orders.
func (p *PocketOption) Tournaments(ctx context.Context) ([]domain.Tournament, error) {
	return nil, fmt.Errorf("tournament listing not available over this broker connection")
}

func (p *PocketOption) JoinTournament(ctx context.Context, id string) error {
	if err := p.writeJSON(map[string]string{"event": "join_tournament", "id": id}); err != nil {
		return fmt.Errorf("join tournament %s: %w", id, err)
	}
	return nil
}

func (p *PocketOption) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.writePing()
		}
	}
}

func (p *PocketOption) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		p.mu.Lock()
		conn := p.conn
		p.mu.Unlock()
		if conn == nil {
			return
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Printf("market: broker read failed: %v", err)
			p.mu.Lock()
			p.connected = false
			p.mu.Unlock()
			return
		}

		var frame wsFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		p.dispatch(frame)
	}
}

func (p *PocketOption) dispatch(frame wsFrame) {
	switch frame.Event {
	case "candle":
		var c domain.Candle
		if err := json.Unmarshal(frame.Data, &c); err != nil {
			return
		}
		p.mu.Lock()
		fns := append([]CandleFunc(nil), p.subs[subKey(c.Asset, c.Timeframe)]...)
		p.mu.Unlock()
		for _, fn := range fns {
			go fn(c)
		}
	case "balance":
		var b balanceFrame
		if err := json.Unmarshal(frame.Data, &b); err != nil {
			return
		}
		p.mu.Lock()
		p.balance = b.Balance
		p.mu.Unlock()
	case "order_ack":
		var a orderAck
		if err := json.Unmarshal(frame.Data, &a); err != nil {
			return
		}
		p.mu.Lock()
		ch := p.orders[frame.RequestID]
		p.mu.Unlock()
		if ch != nil {
			select {
			case ch <- a:
			default:
			}
		}
	case "trade_settled":
		var s settlementFrame
		if err := json.Unmarshal(frame.Data, &s); err != nil {
			return
		}
		outcome, ok := parseOutcome(s.Outcome)
		if !ok {
			return
		}
		p.mu.Lock()
		fn := p.settle
		p.mu.Unlock()
		if fn != nil {
			go fn(s.TradeID, outcome)
		}
	}
}

func parseOutcome(s string) (domain.TradeOutcome, bool) {
	switch {
	case strings.EqualFold(s, "win"):
		return domain.OutcomeWin, true
	case strings.EqualFold(s, "loss"):
		return domain.OutcomeLoss, true
	default:
		return "", false
	}
}
