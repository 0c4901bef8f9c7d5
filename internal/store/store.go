// Package store is the local persistent pipeline store.
//
// It holds the four entity kinds (Company, Stage, StageMethod, Interview)
// in PostgreSQL with the relationship rules the sync engine relies on:
// deleting a company cascades to its interviews, deleting a stage or stage
// method nulls the reference on interviews. Lookups by remote ID are indexed
// so the reconciler's find-or-insert loop stays O(1) per record.
//
// By-ID and by-remote-ID lookups return (nil, nil) when no row matches —
// "not found" is an expected answer for the sync engine, not an error.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"jobmate/sync-service/internal/model"
)

// Querier is the subset of pgxpool.Pool the store needs. pgx.Tx satisfies
// it too, which is how transaction-scoped stores are built.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store is the persistence contract the sync engine runs against.
type Store interface {
	// InTx runs fn against a transaction-scoped store and commits when fn
	// returns nil. Each reconciliation stage and each dedup kind is one
	// such commit.
	InTx(ctx context.Context, fn func(Store) error) error

	ListCompanies(ctx context.Context) ([]model.Company, error)
	CompanyByID(ctx context.Context, id int64) (*model.Company, error)
	CompanyByRemoteID(ctx context.Context, remoteID int64) (*model.Company, error)
	// CompanyByName matches the display name exactly (case-sensitive) and
	// returns the first row by insertion order when duplicates exist.
	CompanyByName(ctx context.Context, name string) (*model.Company, error)
	InsertCompany(ctx context.Context, c *model.Company) error
	UpdateCompany(ctx context.Context, c *model.Company) error
	DeleteCompany(ctx context.Context, id int64) error
	// ReassignInterviews repoints every interview owned by one company at
	// another. Used by company dedup so the cascade delete of a duplicate
	// never takes interviews with it.
	ReassignInterviews(ctx context.Context, fromCompanyID, toCompanyID int64) error

	ListStages(ctx context.Context) ([]model.Stage, error)
	StageByID(ctx context.Context, id int64) (*model.Stage, error)
	StageByRemoteID(ctx context.Context, remoteID int64) (*model.Stage, error)
	InsertStage(ctx context.Context, s *model.Stage) error
	UpdateStage(ctx context.Context, s *model.Stage) error
	DeleteStage(ctx context.Context, id int64) error
	CountStages(ctx context.Context) (int64, error)

	ListStageMethods(ctx context.Context) ([]model.StageMethod, error)
	StageMethodByID(ctx context.Context, id int64) (*model.StageMethod, error)
	StageMethodByRemoteID(ctx context.Context, remoteID int64) (*model.StageMethod, error)
	InsertStageMethod(ctx context.Context, m *model.StageMethod) error
	UpdateStageMethod(ctx context.Context, m *model.StageMethod) error
	DeleteStageMethod(ctx context.Context, id int64) error
	CountStageMethods(ctx context.Context) (int64, error)

	ListInterviews(ctx context.Context) ([]model.Interview, error)
	// GuestInterviews returns the interviews that have no remote identity
	// yet, in insertion order.
	GuestInterviews(ctx context.Context) ([]model.Interview, error)
	InterviewByID(ctx context.Context, id int64) (*model.Interview, error)
	InterviewByRemoteID(ctx context.Context, remoteID int64) (*model.Interview, error)
	InsertInterview(ctx context.Context, i *model.Interview) error
	UpdateInterview(ctx context.Context, i *model.Interview) error
	// BindInterviewRemoteID attaches a server-assigned identity to a
	// guest-local interview after a successful push.
	BindInterviewRemoteID(ctx context.Context, id, remoteID int64) error
	SetInterviewOutcome(ctx context.Context, id int64, outcome model.Outcome) error
}
