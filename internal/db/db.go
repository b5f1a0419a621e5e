package db

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var Pool *pgxpool.Pool

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS trades (
		id BIGSERIAL PRIMARY KEY,
		trade_id BIGINT UNIQUE,
		asset TEXT NOT NULL,
		direction TEXT NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		confidence DOUBLE PRECISION,
		outcome TEXT,
		created_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS learned_knowledge (
		id BIGSERIAL PRIMARY KEY,
		source TEXT NOT NULL,
		category TEXT NOT NULL,
		content TEXT NOT NULL,
		summary TEXT,
		relevance_score DOUBLE PRECISION DEFAULT 0.5,
		created_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS model_state (
		id BIGSERIAL PRIMARY KEY,
		model_name TEXT NOT NULL UNIQUE,
		model_data BYTEA,
		metrics TEXT,
		version INTEGER DEFAULT 1,
		created_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_trades_created_at ON trades (created_at DESC)`,
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func InitPostgres(ctx context.Context, dsn string) {
	if dsn == "" {
		log.Println("DATABASE_URL not set, skipping Postgres connection")
		return
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("failed to connect to Postgres: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("failed to ping Postgres: %v", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	Pool = pool
	log.Println("Connected to Postgres")
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, pool execer) error {
	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
