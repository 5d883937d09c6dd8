// Package scheduler wires up the cron job that periodically sweeps stale
// non-terminal matches to expired.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"repohire/match-service/internal/match"
)

// Scheduler wraps robfig/cron and manages the expiry sweep loop.
type Scheduler struct {
	cron      *cron.Cron
	svc       *match.Service
	olderThan time.Duration
	spec      string // cron spec, e.g. "@every 24h"
}

// New creates a Scheduler that expires matches untouched for expireAfterDays,
// sweeping every intervalHours hours.
func New(svc *match.Service, expireAfterDays, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLogger(cron.DefaultLogger)),
		svc:       svc,
		olderThan: time.Duration(expireAfterDays) * 24 * time.Hour,
		spec:      fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one sweep
// immediately so a long-stopped instance catches up without waiting for the
// first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	// Run immediately on startup (non-blocking)
	go s.runSweep(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

func (s *Scheduler) runSweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	n, err := s.svc.ExpireStale(sweepCtx, s.olderThan)
	if err != nil {
		log.Printf("[scheduler] expiry sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[scheduler] expired %d stale matches", n)
	}
}
