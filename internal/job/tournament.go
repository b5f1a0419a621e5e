package job

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"pocket-pulse/internal/domain"
)

// TournamentSource lists broker tournaments and joins them.
type TournamentSource interface {
	Tournaments(ctx context.Context) ([]domain.Tournament, error)
	JoinTournament(ctx context.Context, id string) error
}

// TournamentScheduler periodically scans for free, active tournaments and
// joins each one once. Paid tournaments are never joined automatically.
type TournamentScheduler struct {
	tracer        trace.Tracer
	source        TournamentSource
	checkInterval time.Duration
	scanInterval  time.Duration

	mu       sync.Mutex
	joined   map[string]struct{}
	lastScan time.Time
}

func NewTournamentScheduler(tracer trace.Tracer, source TournamentSource, checkInterval, scanInterval time.Duration) *TournamentScheduler {
	if checkInterval <= 0 {
		checkInterval = 10 * time.Minute
	}
	if scanInterval <= 0 {
		scanInterval = time.Hour
	}
	return &TournamentScheduler{
		tracer:        tracer,
		source:        source,
		checkInterval: checkInterval,
		scanInterval:  scanInterval,
		joined:        make(map[string]struct{}),
	}
}

// Start runs the check loop. Blocks until ctx is cancelled.
func (s *TournamentScheduler) Start(ctx context.Context) {
	if s.source == nil {
		log.Println("Tournament scheduler disabled: no tournament source")
		<-ctx.Done()
		return
	}

	log.Println("Tournament scheduler starting...")
	s.check(ctx)

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Tournament scheduler stopped")
			return
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

// check runs one scheduler tick: a scan when the scan interval has elapsed,
// otherwise a no-op.
func (s *TournamentScheduler) check(ctx context.Context) {
	s.mu.Lock()
	due := time.Since(s.lastScan) >= s.scanInterval || s.lastScan.IsZero()
	if due {
		s.lastScan = time.Now()
	}
	s.mu.Unlock()

	if !due {
		return
	}
	s.scan(ctx)
}

func (s *TournamentScheduler) scan(ctx context.Context) {
	ctx, span := s.tracer.Start(ctx, "job.tournament-scan")
	defer span.End()

	tournaments, err := s.source.Tournaments(ctx)
	if err != nil {
		log.Printf("tournament scan failed: %v", err)
		return
	}

	for _, t := range tournaments {
		if t.EntryFee != 0 || t.Status != "active" {
			continue
		}
		if s.alreadyJoined(t.ID) {
			continue
		}
		if err := s.source.JoinTournament(ctx, t.ID); err != nil {
			log.Printf("joining tournament %s (%s) failed: %v", t.ID, t.Name, err)
			continue
		}
		s.markJoined(t.ID)
		log.Printf("joined free tournament %s (%s)", t.ID, t.Name)
	}
}

func (s *TournamentScheduler) alreadyJoined(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.joined[id]
	return ok
}

func (s *TournamentScheduler) markJoined(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joined[id] = struct{}{}
}

// JoinedCount reports how many tournaments this scheduler has joined.
func (s *TournamentScheduler) JoinedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.joined)
}
