package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"jobmate/sync-service/internal/model"
	"jobmate/sync-service/internal/remote"
)

// InterviewInput carries the fields the presentation layer supplies when
// creating an interview. The company is addressed by display name and
// found-or-created locally.
type InterviewInput struct {
	CompanyName     string
	JobTitle        string
	ApplicationDate time.Time
	ClientCompany   string
	Interviewer     string
	StageID         *int64
	StageMethodID   *int64
	Date            *time.Time
	Deadline        *time.Time
	Notes           string
	Link            string
	JobListing      string
	Location        string
}

// AdvanceInput carries the fields for the next round of an existing
// interview. Any stage method is allowed.
type AdvanceInput struct {
	StageID       *int64
	StageMethodID *int64
	Date          *time.Time
	Deadline      *time.Time
	Interviewer   string
	Notes         string
	Link          string
}

// AddInterview creates an interview locally first (optimistic), then
// attempts an immediate push. A failed push leaves the record guest-local;
// the migrator picks it up on the next sign-in or sync.
func (s *Service) AddInterview(ctx context.Context, in InterviewInput) (*model.Interview, error) {
	if in.CompanyName == "" {
		return nil, &ValidationError{Msg: "company name is required"}
	}
	if in.JobTitle == "" {
		return nil, &ValidationError{Msg: "job title is required"}
	}
	if in.ApplicationDate.IsZero() {
		return nil, &ValidationError{Msg: "application date is required"}
	}

	company, err := s.store.CompanyByName(ctx, in.CompanyName)
	if err != nil {
		return nil, err
	}
	if company == nil {
		company = &model.Company{Name: in.CompanyName}
		if err := s.store.InsertCompany(ctx, company); err != nil {
			return nil, err
		}
	}

	iv := &model.Interview{
		CompanyID:       company.ID,
		StageID:         in.StageID,
		StageMethodID:   in.StageMethodID,
		JobTitle:        in.JobTitle,
		ClientCompany:   in.ClientCompany,
		Interviewer:     in.Interviewer,
		ApplicationDate: in.ApplicationDate,
		Date:            in.Date,
		Deadline:        in.Deadline,
		Notes:           in.Notes,
		Link:            in.Link,
		Metadata:        model.Metadata{JobListing: in.JobListing, Location: in.Location},
	}
	if err := s.store.InsertInterview(ctx, iv); err != nil {
		return nil, err
	}
	s.notify(ctx, "local", "interviews", 1)

	if err := s.pushLocal(ctx, iv); err != nil {
		slog.Warn("immediate push failed, record stays guest-local", "interviewId", iv.ID, "err", err)
	}
	return iv, nil
}

// AdvanceInterview creates the next round for an interview and force-sets
// the previous round's outcome to PASSED.
func (s *Service) AdvanceInterview(ctx context.Context, previousID int64, in AdvanceInput) (*model.Interview, error) {
	prev, err := s.store.InterviewByID(ctx, previousID)
	if err != nil {
		return nil, err
	}
	if prev == nil {
		return nil, ErrInterviewNotFound
	}

	if err := s.store.SetInterviewOutcome(ctx, prev.ID, model.OutcomePassed); err != nil {
		return nil, err
	}
	prev.Outcome = model.OutcomePassed
	s.notify(ctx, "local", "interviews", 1)

	// Opportunistic: tell the server about the outcome change too.
	if prev.RemoteID != nil {
		outcome := string(model.OutcomePassed)
		if _, err := s.remote.UpdateInterview(ctx, *prev.RemoteID, remote.UpdateInterviewPayload{Outcome: &outcome}); err != nil {
			slog.Warn("outcome push failed", "interviewId", prev.ID, "err", err)
		}
	}

	next := &model.Interview{
		CompanyID:       prev.CompanyID,
		StageID:         in.StageID,
		StageMethodID:   in.StageMethodID,
		JobTitle:        prev.JobTitle,
		ClientCompany:   prev.ClientCompany,
		Interviewer:     in.Interviewer,
		ApplicationDate: prev.ApplicationDate,
		Date:            in.Date,
		Deadline:        in.Deadline,
		Notes:           in.Notes,
		Link:            in.Link,
		Metadata:        prev.Metadata,
	}
	if err := s.store.InsertInterview(ctx, next); err != nil {
		return nil, err
	}
	s.notify(ctx, "local", "interviews", 1)

	if err := s.pushLocal(ctx, next); err != nil {
		slog.Warn("immediate push failed, record stays guest-local", "interviewId", next.ID, "err", err)
	}
	return next, nil
}

// PushInterview pushes one local interview to the server: create when
// guest-local, partial update otherwise.
func (s *Service) PushInterview(ctx context.Context, id int64) error {
	iv, err := s.store.InterviewByID(ctx, id)
	if err != nil {
		return err
	}
	if iv == nil {
		return ErrInterviewNotFound
	}
	return s.pushLocal(ctx, iv)
}

// ListInterviews returns all local interviews sorted chronologically by
// display date (scheduled date, else deadline); undated records sort last
// in local insertion order.
func (s *Service) ListInterviews(ctx context.Context) ([]model.Interview, error) {
	interviews, err := s.store.ListInterviews(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(interviews, func(i, j int) bool {
		ti, oki := interviews[i].DisplayDate()
		tj, okj := interviews[j].DisplayDate()
		if oki != okj {
			return oki
		}
		if !oki {
			return false
		}
		return ti.Before(tj)
	})
	return interviews, nil
}

// pushLocal sends one interview to the server. Guest-local records are
// created and get their returned remote identity bound; records already
// known remotely get a partial update.
func (s *Service) pushLocal(ctx context.Context, iv *model.Interview) error {
	if iv.RemoteID == nil {
		dto, err := s.pushGuest(ctx, iv, nil)
		if err != nil {
			return err
		}
		if err := s.store.BindInterviewRemoteID(ctx, iv.ID, dto.ID); err != nil {
			return fmt.Errorf("bind remote identity: %w", err)
		}
		iv.RemoteID = &dto.ID
		s.notify(ctx, "push", "interviews", 1)
		return nil
	}

	stageName := defaultStageName
	if iv.StageID != nil {
		st, err := s.store.StageByID(ctx, *iv.StageID)
		if err != nil {
			return err
		}
		if st != nil {
			stageName = st.Name
		}
	}

	p := remote.UpdateInterviewPayload{
		JobTitle:      &iv.JobTitle,
		ClientCompany: &iv.ClientCompany,
		Stage:         &stageName,
		Interviewer:   &iv.Interviewer,
		Notes:         &iv.Notes,
		Link:          &iv.Link,
	}
	if iv.Date != nil {
		d := formatWireTime(*iv.Date)
		p.Date = &d
	}
	if iv.Deadline != nil {
		d := formatWireTime(*iv.Deadline)
		p.Deadline = &d
	}
	if iv.Outcome != model.OutcomeNone {
		o := string(iv.Outcome)
		p.Outcome = &o
	}

	_, err := s.remote.UpdateInterview(ctx, *iv.RemoteID, p)
	return err
}
