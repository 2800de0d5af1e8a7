package jobs

import (
	"context"
	"log"
	"sharevault/services"
	"time"
)

// OrphanSweeper periodically releases blob store objects that lost their
// metadata record (failed writes, lost dedup races, failed deletes).
type OrphanSweeper struct {
	orphanService *services.OrphanService
	interval      time.Duration
	logger        *log.Logger
}

func NewOrphanSweeper(orphanService *services.OrphanService, interval time.Duration) *OrphanSweeper {
	return &OrphanSweeper{
		orphanService: orphanService,
		interval:      interval,
		logger:        log.New(log.Writer(), "[ORPHAN_SWEEPER] ", log.LstdFlags),
	}
}

// Start runs an immediate sweep, then one per interval, until ctx is done.
func (s *OrphanSweeper) Start(ctx context.Context) {
	s.logger.Printf("Starting orphan blob sweeper, interval %v", s.interval)

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Println("Orphan sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *OrphanSweeper) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	released, err := s.orphanService.Sweep(sweepCtx)
	if err != nil {
		s.logger.Printf("Sweep failed: %v", err)
		return
	}
	if released > 0 {
		s.logger.Printf("Released %d orphaned blobs", released)
	}
}
