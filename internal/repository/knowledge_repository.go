package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"

	"pocket-pulse/internal/domain"
)

type KnowledgeRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewKnowledgeRepository(pool PgxPool, tracer trace.Tracer) *KnowledgeRepository {
	return &KnowledgeRepository{pool: pool, tracer: tracer}
}

// InsertConcepts stores a batch of distilled concepts from one document.
func (r *KnowledgeRepository) InsertConcepts(ctx context.Context, concepts []domain.Knowledge) error {
	if len(concepts) == 0 {
		return nil
	}

	_, span := r.tracer.Start(ctx, "knowledge-repo.insert-concepts")
	defer span.End()

	batch := &pgx.Batch{}
	for _, k := range concepts {
		batch.Queue(
			`INSERT INTO learned_knowledge (source, category, content, summary, relevance_score)
			 VALUES ($1, $2, $3, $4, $5)`,
			k.Source, k.Category, k.Content, k.Summary, k.RelevanceScore,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range concepts {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (r *KnowledgeRepository) ListConcepts(ctx context.Context, limit int) ([]domain.Knowledge, error) {
	_, span := r.tracer.Start(ctx, "knowledge-repo.list-concepts")
	defer span.End()

	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, source, category, content, summary, relevance_score, created_at
		 FROM learned_knowledge
		 ORDER BY relevance_score DESC, created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var concepts []domain.Knowledge
	for rows.Next() {
		var k domain.Knowledge
		var createdAt time.Time
		if err := rows.Scan(&k.ID, &k.Source, &k.Category, &k.Content, &k.Summary, &k.RelevanceScore, &createdAt); err != nil {
			return nil, err
		}
		k.CreatedAt = createdAt.UTC()
		concepts = append(concepts, k)
	}
	return concepts, rows.Err()
}

// CountStats returns the document and concept counters for the status
// payload.
func (r *KnowledgeRepository) CountStats(ctx context.Context) (domain.KnowledgeStats, error) {
	_, span := r.tracer.Start(ctx, "knowledge-repo.count-stats")
	defer span.End()

	var stats domain.KnowledgeStats
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT source), COUNT(*) FROM learned_knowledge`,
	).Scan(&stats.Documents, &stats.Concepts)
	if err != nil {
		return domain.KnowledgeStats{}, err
	}
	return stats, nil
}
