package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"

	"pocket-pulse/internal/domain"
)

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type TradeRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewTradeRepository(pool PgxPool, tracer trace.Tracer) *TradeRepository {
	return &TradeRepository{pool: pool, tracer: tracer}
}

func (r *TradeRepository) InsertTrade(ctx context.Context, trade domain.Trade) (int64, error) {
	_, span := r.tracer.Start(ctx, "trade-repo.insert-trade")
	defer span.End()

	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO trades (trade_id, asset, direction, amount, confidence, outcome, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (trade_id) DO UPDATE SET
		     outcome = EXCLUDED.outcome
		 RETURNING id`,
		trade.TradeID,
		trade.Asset,
		string(trade.Direction),
		trade.Amount,
		trade.Confidence,
		string(trade.Outcome),
		trade.CreatedAt.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *TradeRepository) UpdateOutcome(ctx context.Context, tradeID int64, outcome domain.TradeOutcome) error {
	_, span := r.tracer.Start(ctx, "trade-repo.update-outcome")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`UPDATE trades SET outcome = $2 WHERE trade_id = $1`,
		tradeID, string(outcome),
	)
	return err
}

func (r *TradeRepository) ListRecent(ctx context.Context, limit int) ([]domain.Trade, error) {
	_, span := r.tracer.Start(ctx, "trade-repo.list-recent")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, trade_id, asset, direction, amount, confidence, outcome, created_at
		 FROM trades
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trades := make([]domain.Trade, 0, limit)
	for rows.Next() {
		var t domain.Trade
		var direction, outcome string
		var createdAt time.Time
		if err := rows.Scan(&t.ID, &t.TradeID, &t.Asset, &direction, &t.Amount, &t.Confidence, &outcome, &createdAt); err != nil {
			return nil, err
		}
		t.Direction = domain.TradeDirection(direction)
		t.Outcome = domain.TradeOutcome(outcome)
		t.CreatedAt = createdAt.UTC()
		trades = append(trades, t)
	}
	return trades, rows.Err()
}
