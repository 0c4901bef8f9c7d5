// Package scheduler wires up the cron job that periodically refreshes the
// local store against the tracker API.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"jobmate/sync-service/internal/pipeline"
)

// Authenticator reports whether a bearer token is installed. *remote.Client
// satisfies it.
type Authenticator interface {
	Authenticated() bool
}

// Scheduler wraps robfig/cron and manages the background refresh loop.
type Scheduler struct {
	cron *cron.Cron
	svc  *pipeline.Service
	auth Authenticator
	spec string // cron spec, e.g. "@every 15m"
}

// New creates a Scheduler that fires every intervalMinutes minutes.
func New(svc *pipeline.Service, auth Authenticator, intervalMinutes int) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLogger(cron.DefaultLogger)),
		svc:  svc,
		auth: auth,
		spec: fmt.Sprintf("@every %dm", intervalMinutes),
	}
}

// Start registers the job and starts the scheduler. Also runs one refresh
// immediately so the store is current without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runRefresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	// Run immediately on startup (non-blocking)
	go s.runRefresh(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

// runRefresh runs one reconcile+dedup pass. Skipped while signed out, and
// quietly yields when a manual sync is already in flight.
func (s *Scheduler) runRefresh(ctx context.Context) {
	if !s.auth.Authenticated() {
		log.Println("[scheduler] Signed out — refresh skipped")
		return
	}

	if err := s.svc.SyncAll(ctx); err != nil {
		if errors.Is(err, pipeline.ErrSyncInProgress) {
			log.Println("[scheduler] Sync already in progress — refresh skipped")
			return
		}
		log.Printf("[scheduler] Refresh error: %v", err)
		return
	}
	log.Println("[scheduler] Refresh complete")
}
