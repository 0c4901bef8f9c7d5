package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"jobmate/sync-service/internal/model"
	"jobmate/sync-service/internal/remote"
	"jobmate/sync-service/internal/store"
)

// reconcile merges the remote state into the local store, entity kind by
// entity kind. The order is mandatory: interviews resolve companies, stages
// and stage methods by remote identity, so those must already be local.
// Each stage commits in its own transaction; the first error halts the
// remaining stages but already-committed stages stay applied.
//
// The reconciler never deletes local records (that is the deduplicator's
// job) and never touches guest-local records — they have no remote identity
// to match against.
func (s *Service) reconcile(ctx context.Context, passID string) error {
	if err := s.reconcileCompanies(ctx, passID); err != nil {
		return fmt.Errorf("reconcile companies: %w", err)
	}
	if err := s.reconcileStages(ctx, passID); err != nil {
		return fmt.Errorf("reconcile stages: %w", err)
	}
	if err := s.reconcileStageMethods(ctx, passID); err != nil {
		return fmt.Errorf("reconcile stage methods: %w", err)
	}
	if err := s.reconcileInterviews(ctx, passID); err != nil {
		return fmt.Errorf("reconcile interviews: %w", err)
	}
	return nil
}

func (s *Service) reconcileCompanies(ctx context.Context, passID string) error {
	dtos, err := s.remote.FetchCompanies(ctx)
	if err != nil {
		return err
	}

	changed := 0
	err = s.store.InTx(ctx, func(tx store.Store) error {
		for _, d := range dtos {
			local, err := tx.CompanyByRemoteID(ctx, d.ID)
			if err != nil {
				return err
			}
			if local == nil {
				rid := d.ID
				c := model.Company{RemoteID: &rid, Name: d.Name, UserID: d.UserID}
				if err := tx.InsertCompany(ctx, &c); err != nil {
					return err
				}
				changed++
				continue
			}
			if local.Name == d.Name {
				continue
			}
			local.Name = d.Name
			if err := tx.UpdateCompany(ctx, local); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[sync] pass %s: companies reconciled — %d remote, %d changed", passID, len(dtos), changed)
	s.notify(ctx, passID, "companies", changed)
	return nil
}

func (s *Service) reconcileStages(ctx context.Context, passID string) error {
	dtos, err := s.remote.FetchStages(ctx)
	if err != nil {
		return err
	}

	changed := 0
	err = s.store.InTx(ctx, func(tx store.Store) error {
		for _, d := range dtos {
			local, err := tx.StageByRemoteID(ctx, d.ID)
			if err != nil {
				return err
			}
			if local == nil {
				rid := d.ID
				if err := tx.InsertStage(ctx, &model.Stage{RemoteID: &rid, Name: d.Stage}); err != nil {
					return err
				}
				changed++
				continue
			}
			if local.Name == d.Stage {
				continue
			}
			local.Name = d.Stage
			if err := tx.UpdateStage(ctx, local); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[sync] pass %s: stages reconciled — %d remote, %d changed", passID, len(dtos), changed)
	s.notify(ctx, passID, "stages", changed)
	return nil
}

func (s *Service) reconcileStageMethods(ctx context.Context, passID string) error {
	dtos, err := s.remote.FetchStageMethods(ctx)
	if err != nil {
		return err
	}

	changed := 0
	err = s.store.InTx(ctx, func(tx store.Store) error {
		for _, d := range dtos {
			local, err := tx.StageMethodByRemoteID(ctx, d.ID)
			if err != nil {
				return err
			}
			if local == nil {
				rid := d.ID
				if err := tx.InsertStageMethod(ctx, &model.StageMethod{RemoteID: &rid, Name: d.Method}); err != nil {
					return err
				}
				changed++
				continue
			}
			if local.Name == d.Method {
				continue
			}
			local.Name = d.Method
			if err := tx.UpdateStageMethod(ctx, local); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[sync] pass %s: stage methods reconciled — %d remote, %d changed", passID, len(dtos), changed)
	s.notify(ctx, passID, "stage_methods", changed)
	return nil
}

func (s *Service) reconcileInterviews(ctx context.Context, passID string) error {
	// Request the include-past variant so historical records are not
	// silently dropped from the local catalog.
	dtos, err := s.remote.FetchInterviews(ctx, remote.InterviewFilters{IncludePast: true})
	if err != nil {
		return err
	}

	changed, skipped := 0, 0
	err = s.store.InTx(ctx, func(tx store.Store) error {
		for _, d := range dtos {
			company, err := tx.CompanyByRemoteID(ctx, d.Company.ID)
			if err != nil {
				return err
			}
			if company == nil {
				// No resolvable owning company — never create an orphan.
				skipped++
				log.Printf("[sync] pass %s: interview %d references unknown company %d — skipped",
					passID, d.ID, d.Company.ID)
				continue
			}

			next, err := s.interviewFromDTO(ctx, tx, d, company.ID)
			if err != nil {
				return err
			}

			local, err := tx.InterviewByRemoteID(ctx, d.ID)
			if err != nil {
				return err
			}
			if local == nil {
				if err := tx.InsertInterview(ctx, next); err != nil {
					return err
				}
				changed++
				continue
			}

			next.ID = local.ID
			next.CreatedAt = local.CreatedAt
			if interviewEqual(local, next) {
				continue
			}
			if err := tx.UpdateInterview(ctx, next); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[sync] pass %s: interviews reconciled — %d remote, %d changed, %d skipped",
		passID, len(dtos), changed, skipped)
	s.notify(ctx, passID, "interviews", changed)
	return nil
}

// interviewFromDTO maps a wire interview onto a local record. Remote is
// authoritative: every scalar field and all three references come from the
// DTO. Stage and stage-method references absent on the wire, or not yet
// known locally, stay empty.
func (s *Service) interviewFromDTO(ctx context.Context, tx store.Store, d remote.InterviewDTO, companyID int64) (*model.Interview, error) {
	rid := d.ID
	next := &model.Interview{
		RemoteID:      &rid,
		CompanyID:     companyID,
		JobTitle:      d.JobTitle,
		ClientCompany: d.ClientCompany,
		Interviewer:   d.Interviewer,
		Date:          parseWireTime(d.Date),
		Deadline:      parseWireTime(d.Deadline),
		Outcome:       model.ParseOutcome(d.Outcome),
		Notes:         d.Notes,
		Link:          d.Link,
	}
	if t := parseWireTime(d.ApplicationDate); t != nil {
		next.ApplicationDate = *t
	}
	if d.Metadata != nil {
		next.Metadata = model.Metadata{JobListing: d.Metadata.JobListing, Location: d.Metadata.Location}
	}

	if d.Stage != nil {
		st, err := tx.StageByRemoteID(ctx, d.Stage.ID)
		if err != nil {
			return nil, err
		}
		if st != nil {
			next.StageID = &st.ID
		}
	}
	if d.StageMethod != nil {
		m, err := tx.StageMethodByRemoteID(ctx, d.StageMethod.ID)
		if err != nil {
			return nil, err
		}
		if m != nil {
			next.StageMethodID = &m.ID
		}
	}
	return next, nil
}

// interviewEqual compares the fields the reconciler overwrites, so an
// unchanged remote record does not produce a no-op write.
func interviewEqual(a, b *model.Interview) bool {
	return a.CompanyID == b.CompanyID &&
		eqID(a.StageID, b.StageID) &&
		eqID(a.StageMethodID, b.StageMethodID) &&
		a.JobTitle == b.JobTitle &&
		a.ClientCompany == b.ClientCompany &&
		a.Interviewer == b.Interviewer &&
		a.ApplicationDate.Equal(b.ApplicationDate) &&
		eqTime(a.Date, b.Date) &&
		eqTime(a.Deadline, b.Deadline) &&
		a.Outcome == b.Outcome &&
		a.Notes == b.Notes &&
		a.Link == b.Link &&
		a.Metadata == b.Metadata
}

func eqID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
