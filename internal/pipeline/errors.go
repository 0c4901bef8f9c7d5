package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated is returned when a flow that requires a bearer
	// token runs without one.
	ErrNotAuthenticated = errors.New("sync: not authenticated")

	// ErrSyncInProgress rejects a sync pass while another is in flight.
	ErrSyncInProgress = errors.New("sync: sync already in progress")

	// ErrMigrationInProgress rejects a re-entrant migration call.
	ErrMigrationInProgress = errors.New("sync: migration already in progress")

	// ErrInterviewNotFound is returned by interview operations on an
	// unknown local ID.
	ErrInterviewNotFound = errors.New("sync: interview not found")
)

// MigrationError reports a partially failed guest-data migration. The
// successful remote-identity bindings are committed before this is
// returned, so callers must not treat it as total failure: exactly
// Succeeded interviews now carry a remote identity and Failed remain
// guest-local for the next attempt.
type MigrationError struct {
	Succeeded int
	Failed    int
	Errs      []error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("sync: migration partially failed: %d succeeded, %d failed", e.Succeeded, e.Failed)
}

func (e *MigrationError) Unwrap() []error { return e.Errs }

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
