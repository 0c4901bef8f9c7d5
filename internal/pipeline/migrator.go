package pipeline

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"strings"

	"jobmate/sync-service/internal/model"
	"jobmate/sync-service/internal/remote"
	"jobmate/sync-service/internal/store"
)

// defaultStageName is sent for guest interviews that never got a stage.
const defaultStageName = "Applied"

// MigrateGuestData pushes every guest-local interview to the server and
// binds the returned remote identity onto the local record. It runs before
// the reconciler in the sign-in flow so guest data is not orphaned by the
// reconciler's overwrite pass.
//
// Per-record failures are expected and non-fatal: the batch continues, all
// successful bindings are committed in one transaction, and a
// *MigrationError reports the aggregate afterwards. Requires
// authentication; re-entrant calls are rejected.
func (s *Service) MigrateGuestData(ctx context.Context) error {
	if !s.remote.Authenticated() {
		return ErrNotAuthenticated
	}
	if !s.migrating.CompareAndSwap(false, true) {
		return ErrMigrationInProgress
	}
	defer s.migrating.Store(false)

	guests, err := s.store.GuestInterviews(ctx)
	if err != nil {
		return fmt.Errorf("load guest interviews: %w", err)
	}
	if len(guests) == 0 {
		return nil
	}

	passID := newPassID()
	log.Printf("[migrate] pass %s: %d guest interview(s) to push", passID, len(guests))

	// Known remote companies by exact display name, so pushing an
	// interview for a company that already exists remotely binds to it
	// instead of the server creating a duplicate. Lookup failure is not
	// fatal — unresolved companies are created server-side on push.
	remoteByName := map[string]int64{}
	if dtos, err := s.remote.FetchCompanies(ctx); err != nil {
		slog.Warn("company lookup before migration failed", "err", err)
	} else {
		for _, d := range dtos {
			if _, ok := remoteByName[d.Name]; !ok {
				remoteByName[d.Name] = d.ID
			}
		}
	}

	type binding struct{ localID, remoteID int64 }
	var bindings []binding
	var failures []error

	for i := range guests {
		guest := &guests[i]
		dto, err := s.pushGuest(ctx, guest, remoteByName)
		if err != nil {
			failures = append(failures, fmt.Errorf("interview %d (%q): %w", guest.ID, guest.JobTitle, err))
			continue
		}
		bindings = append(bindings, binding{localID: guest.ID, remoteID: dto.ID})
	}

	// Commit the successes even when later records failed — migrated work
	// must never be lost to an unrelated failure.
	if len(bindings) > 0 {
		err := s.store.InTx(ctx, func(tx store.Store) error {
			for _, b := range bindings {
				if err := tx.BindInterviewRemoteID(ctx, b.localID, b.remoteID); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("commit remote identities: %w", err)
		}
		s.notify(ctx, passID, "interviews", len(bindings))
	}

	log.Printf("[migrate] pass %s: done — %d pushed, %d failed", passID, len(bindings), len(failures))
	if len(failures) > 0 {
		return &MigrationError{Succeeded: len(bindings), Failed: len(failures), Errs: failures}
	}
	return nil
}

// pushGuest builds the creation payload for one guest interview and calls
// the remote create operation. When the owning company matches a remote
// company by name, the remote identity is bound locally first.
func (s *Service) pushGuest(ctx context.Context, guest *model.Interview, remoteByName map[string]int64) (*remote.InterviewDTO, error) {
	company, err := s.store.CompanyByID(ctx, guest.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, fmt.Errorf("owning company %d not found", guest.CompanyID)
	}
	if company.RemoteID == nil {
		if rid, ok := remoteByName[company.Name]; ok {
			company.RemoteID = &rid
			if err := s.store.UpdateCompany(ctx, company); err != nil {
				return nil, err
			}
		}
	}

	stageName := defaultStageName
	if guest.StageID != nil {
		st, err := s.store.StageByID(ctx, *guest.StageID)
		if err != nil {
			return nil, err
		}
		if st != nil {
			stageName = st.Name
		}
	}

	methodName := ""
	if guest.StageMethodID != nil {
		m, err := s.store.StageMethodByID(ctx, *guest.StageMethodID)
		if err != nil {
			return nil, err
		}
		if m != nil {
			methodName = m.Name
		}
	}

	return s.remote.CreateInterview(ctx, remote.CreateInterviewPayload{
		JobTitle:        guest.JobTitle,
		Company:         company.Name,
		ClientCompany:   guest.ClientCompany,
		Stage:           stageName,
		Interviewer:     guest.Interviewer,
		ApplicationDate: formatWireTime(guest.ApplicationDate),
		Date:            formatWireTimePtr(guest.Date),
		Deadline:        formatWireTimePtr(guest.Deadline),
		Notes:           guest.Notes,
		Link:            guest.Link,
		JobListing:      guest.Metadata.JobListing,
		LocationType:    locationHint(methodName),
	})
}

// locationHint derives the coarse location type from the stage-method name.
func locationHint(methodName string) string {
	if methodName == "" {
		return ""
	}
	if strings.Contains(strings.ToLower(methodName), "video") {
		return "VIDEO"
	}
	return "IN_PERSON"
}
