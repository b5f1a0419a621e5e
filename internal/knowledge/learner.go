package knowledge

import (
	"context"
	"fmt"
	"log"

	"go.opentelemetry.io/otel/trace"

	"pocket-pulse/internal/domain"
)

type ConceptExtractor interface {
	ExtractConcepts(ctx context.Context, text string) ([]domain.Knowledge, error)
}

type ConceptStore interface {
	InsertConcepts(ctx context.Context, concepts []domain.Knowledge) error
	CountStats(ctx context.Context) (domain.KnowledgeStats, error)
}

// Learner turns uploaded PDFs into stored trading concepts.
type Learner struct {
	tracer    trace.Tracer
	extractor ConceptExtractor
	store     ConceptStore
}

func NewLearner(tracer trace.Tracer, extractor ConceptExtractor, store ConceptStore) *Learner {
	return &Learner{tracer: tracer, extractor: extractor, store: store}
}

// LearnFromPDF extracts the document text, distills concepts from it and
// persists them. It returns the number of concepts learned.
func (l *Learner) LearnFromPDF(ctx context.Context, filename string, data []byte) (int, error) {
	ctx, span := l.tracer.Start(ctx, "knowledge.learn-from-pdf")
	defer span.End()

	text, err := ExtractText(data)
	if err != nil {
		return 0, err
	}

	concepts, err := l.extractor.ExtractConcepts(ctx, text)
	if err != nil {
		return 0, err
	}
	if len(concepts) == 0 {
		return 0, fmt.Errorf("no trading concepts found in %s", filename)
	}

	for i := range concepts {
		concepts[i].Source = filename
	}

	if l.store != nil {
		if err := l.store.InsertConcepts(ctx, concepts); err != nil {
			return 0, err
		}
	}

	log.Printf("knowledge: learned %d concepts from %s", len(concepts), filename)
	return len(concepts), nil
}

// Stats reports the stored document and concept counters. Storage problems
// degrade to zero stats rather than failing the status endpoint.
func (l *Learner) Stats(ctx context.Context) domain.KnowledgeStats {
	if l == nil || l.store == nil {
		return domain.KnowledgeStats{}
	}
	stats, err := l.store.CountStats(ctx)
	if err != nil {
		log.Printf("knowledge: stats unavailable: %v", err)
		return domain.KnowledgeStats{}
	}
	return stats
}
