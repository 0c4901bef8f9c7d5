// Package model defines the four entity kinds held in the local pipeline
// store: Company, Stage, StageMethod and Interview.
//
// Every entity carries a local surrogate ID (assigned by the store) and an
// optional remote ID assigned by the tracker API. A record whose RemoteID is
// nil is "guest-local": it exists only on this device until the migrator
// pushes it to the server. Once assigned, the remote ID is stable and is the
// merge key for all reconciliation.
package model

import "time"

// Company owns interviews. Deleting a company cascades to its interviews,
// which is why duplicate companies are reassigned before deletion instead of
// being deleted outright (see the deduplicator).
type Company struct {
	ID        int64
	RemoteID  *int64
	Name      string
	UserID    *int64
	CreatedAt time.Time
}

// Stage is a reference entity ("Phone Screen", "Technical Interview", …).
// Interviews reference it non-owning: deleting a stage nulls the reference.
type Stage struct {
	ID       int64
	RemoteID *int64
	Name     string
}

// StageMethod is a reference entity ("Video Call", "On-site", …) with the
// same relationship shape as Stage.
type StageMethod struct {
	ID       int64
	RemoteID *int64
	Name     string
}

// Metadata is the structured sub-record carried on an interview. It used to
// round-trip as an opaque JSON blob; it is now stored as a typed JSONB
// object.
type Metadata struct {
	JobListing string `json:"jobListing,omitempty"`
	Location   string `json:"location,omitempty"`
}

// Interview is one round in a company's pipeline.
type Interview struct {
	ID              int64
	RemoteID        *int64
	CompanyID       int64
	StageID         *int64
	StageMethodID   *int64
	JobTitle        string
	ClientCompany   string
	Interviewer     string
	ApplicationDate time.Time
	Date            *time.Time
	Deadline        *time.Time
	Outcome         Outcome
	Notes           string
	Link            string
	Metadata        Metadata
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsGuest reports whether the interview has never reached the server.
func (i *Interview) IsGuest() bool { return i.RemoteID == nil }

// DisplayDate is the derived date used for chronological sorting and
// calendar placement: the scheduled date if present, else the deadline.
// It is never stored. ok is false when neither is set.
func (i *Interview) DisplayDate() (t time.Time, ok bool) {
	if i.Date != nil {
		return *i.Date, true
	}
	if i.Deadline != nil {
		return *i.Deadline, true
	}
	return time.Time{}, false
}
