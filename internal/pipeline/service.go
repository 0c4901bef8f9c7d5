// Package pipeline contains the sync engine for the local interview store:
// reconciliation against the tracker API, guest-data migration, reference
// deduplication and default seeding.
//
// It is transport-agnostic: the HTTP surface (api package) and the refresh
// scheduler both drive the same Service. All mutation-bearing passes are
// exclusive critical sections guarded by atomic flags — the local store has
// a single logical writer per device.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"jobmate/sync-service/internal/remote"
	"jobmate/sync-service/internal/store"
)

// RemoteAPI is the slice of the tracker client the engine needs.
// *remote.Client satisfies it; tests substitute a stub.
type RemoteAPI interface {
	Authenticated() bool
	FetchCompanies(ctx context.Context) ([]remote.CompanyDTO, error)
	FetchStages(ctx context.Context) ([]remote.StageDTO, error)
	FetchStageMethods(ctx context.Context) ([]remote.StageMethodDTO, error)
	FetchInterviews(ctx context.Context, f remote.InterviewFilters) ([]remote.InterviewDTO, error)
	CreateInterview(ctx context.Context, p remote.CreateInterviewPayload) (*remote.InterviewDTO, error)
	UpdateInterview(ctx context.Context, id int64, p remote.UpdateInterviewPayload) (*remote.InterviewDTO, error)
}

// Service encapsulates the sync engine. rdb may be nil (no event publish).
type Service struct {
	store  store.Store
	remote RemoteAPI
	rdb    *redis.Client

	syncing   atomic.Bool
	migrating atomic.Bool
	revision  atomic.Int64
}

// NewService returns a configured Service.
func NewService(st store.Store, rc RemoteAPI, rdb *redis.Client) *Service {
	return &Service{store: st, remote: rc, rdb: rdb}
}

// Revision is a monotonic change counter bumped on every committed local
// mutation. Observers that cannot subscribe to Redis events can poll it.
func (s *Service) Revision() int64 { return s.revision.Load() }

// Syncing reports whether a sync pass is currently in flight.
func (s *Service) Syncing() bool { return s.syncing.Load() }

// Migrating reports whether a guest-data migration is currently in flight.
func (s *Service) Migrating() bool { return s.migrating.Load() }

// ─── Flows ───────────────────────────────────────────────────────────────────

// PerformSignIn runs the full sign-in flow: migrate guest data, then
// reconcile, then deduplicate. The order is mandatory — migrating first
// keeps the reconciler's overwrite pass from orphaning guest records, and
// deduplicating last cleans the fully merged state.
//
// A partial migration failure does not stop the flow: the successfully
// migrated interviews are already committed and the rest stay guest-local
// for the next attempt. The partial error is still reported at the end.
func (s *Service) PerformSignIn(ctx context.Context) error {
	var migErr error
	if err := s.MigrateGuestData(ctx); err != nil {
		var partial *MigrationError
		if !errors.As(err, &partial) {
			return err
		}
		migErr = err
	}

	if err := s.SyncAll(ctx); err != nil {
		return errors.Join(migErr, err)
	}
	return migErr
}

// SyncAll runs a reconcile pass followed by deduplication — the manual
// refresh flow. Rejected with ErrSyncInProgress while another pass runs.
func (s *Service) SyncAll(ctx context.Context) error {
	if !s.syncing.CompareAndSwap(false, true) {
		return ErrSyncInProgress
	}
	defer s.syncing.Store(false)

	passID := newPassID()
	log.Printf("[sync] pass %s: started", passID)

	if err := s.reconcile(ctx, passID); err != nil {
		log.Printf("[sync] pass %s: aborted: %v", passID, err)
		return err
	}
	if err := s.cleanup(ctx, passID); err != nil {
		log.Printf("[sync] pass %s: cleanup failed: %v", passID, err)
		return err
	}

	log.Printf("[sync] pass %s: complete", passID)
	s.publish(ctx, "EVENT_SYNC_COMPLETED", map[string]string{"passId": passID})
	return nil
}

// CleanupAll runs deduplication only. Shares the sync guard so it cannot
// interleave with a reconcile pass.
func (s *Service) CleanupAll(ctx context.Context) error {
	if !s.syncing.CompareAndSwap(false, true) {
		return ErrSyncInProgress
	}
	defer s.syncing.Store(false)

	return s.cleanup(ctx, newPassID())
}

// ─── Commit/notify hooks ────────────────────────────────────────────────────

// notify records a committed mutation batch: bumps the revision counter and
// publishes a store-changed event. Zero-change batches are silent.
func (s *Service) notify(ctx context.Context, passID, entity string, changed int) {
	if changed == 0 {
		return
	}
	s.revision.Add(1)
	s.publish(ctx, "EVENT_STORE_CHANGED", map[string]any{
		"passId":  passID,
		"entity":  entity,
		"changed": changed,
	})
}

// publish sends an event to Redis for the presentation layer. Non-fatal.
func (s *Service) publish(ctx context.Context, channel string, payload any) {
	if s.rdb == nil {
		return
	}
	event, _ := json.Marshal(payload)
	if err := s.rdb.Publish(ctx, channel, event).Err(); err != nil {
		slog.Warn("publish failed", "channel", channel, "err", err)
	}
}

func newPassID() string { return uuid.NewString()[:8] }

// ─── Wire date helpers ───────────────────────────────────────────────────────

var wireTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// parseWireTime parses the ISO-8601 date-time strings used on the wire.
// Empty or unparsable input yields nil — an absent optional date stays
// absent rather than becoming a sentinel.
func parseWireTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range wireTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func formatWireTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func formatWireTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatWireTime(*t)
}
