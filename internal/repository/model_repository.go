package repository

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
)

// ModelRepository persists serialized model artifacts in the model_state
// table, bumping the version on every save.
type ModelRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewModelRepository(pool PgxPool, tracer trace.Tracer) *ModelRepository {
	return &ModelRepository{pool: pool, tracer: tracer}
}

func (r *ModelRepository) SaveModel(ctx context.Context, name string, artifact []byte) error {
	_, span := r.tracer.Start(ctx, "model-repo.save-model")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO model_state (model_name, model_data, version)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (model_name) DO UPDATE SET
		     model_data = EXCLUDED.model_data,
		     version = model_state.version + 1,
		     created_at = NOW()`,
		name, artifact,
	)
	return err
}

func (r *ModelRepository) LoadModel(ctx context.Context, name string) ([]byte, error) {
	_, span := r.tracer.Start(ctx, "model-repo.load-model")
	defer span.End()

	var artifact []byte
	err := r.pool.QueryRow(ctx,
		`SELECT model_data FROM model_state WHERE model_name = $1`,
		name,
	).Scan(&artifact)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", name, err)
	}
	return artifact, nil
}
