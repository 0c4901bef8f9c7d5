package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"jobmate/sync-service/internal/store"
)

// cleanup restores display-name uniqueness among companies, stages and
// stage methods. Merges can leave duplicates behind — typically a
// guest-created row coexisting with the reconciled row that carries the
// remote identity. The three kinds are independent: a failure in one does
// not abort the others, and the joined error is reported at the end.
//
// The name match is exact and case-sensitive on purpose: "Phone Screen"
// and "phone screen" are distinct rows.
func (s *Service) cleanup(ctx context.Context, passID string) error {
	var errs []error
	if err := s.dedupeStages(ctx, passID); err != nil {
		errs = append(errs, fmt.Errorf("dedupe stages: %w", err))
	}
	if err := s.dedupeStageMethods(ctx, passID); err != nil {
		errs = append(errs, fmt.Errorf("dedupe stage methods: %w", err))
	}
	if err := s.dedupeCompanies(ctx, passID); err != nil {
		errs = append(errs, fmt.Errorf("dedupe companies: %w", err))
	}
	return errors.Join(errs...)
}

// dupe marks one row for deletion in favor of its surviving twin.
type dupe struct{ drop, keep int64 }

type dedupRow struct {
	id        int64
	hasRemote bool
	name      string
}

// findDupes groups rows by exact name and picks one survivor per group:
// the first member carrying a remote identity, else the first encountered.
// Everything else in the group is marked for deletion.
func findDupes(rows []dedupRow) []dupe {
	groups := make(map[string][]dedupRow)
	var names []string
	for _, r := range rows {
		if _, ok := groups[r.name]; !ok {
			names = append(names, r.name)
		}
		groups[r.name] = append(groups[r.name], r)
	}

	var dupes []dupe
	for _, name := range names {
		group := groups[name]
		if len(group) < 2 {
			continue
		}
		keep := group[0]
		for _, r := range group {
			if r.hasRemote {
				keep = r
				break
			}
		}
		for _, r := range group {
			if r.id != keep.id {
				dupes = append(dupes, dupe{drop: r.id, keep: keep.id})
			}
		}
	}
	return dupes
}

// Stage and stage-method duplicates are plain deletes: the schema nulls the
// reference on any interview that pointed at a deleted row.

func (s *Service) dedupeStages(ctx context.Context, passID string) error {
	stages, err := s.store.ListStages(ctx)
	if err != nil {
		return err
	}
	rows := make([]dedupRow, len(stages))
	for i, st := range stages {
		rows[i] = dedupRow{id: st.ID, hasRemote: st.RemoteID != nil, name: st.Name}
	}
	return s.deleteDupes(ctx, passID, "stages", findDupes(rows), func(tx store.Store, id int64) error {
		return tx.DeleteStage(ctx, id)
	})
}

func (s *Service) dedupeStageMethods(ctx context.Context, passID string) error {
	methods, err := s.store.ListStageMethods(ctx)
	if err != nil {
		return err
	}
	rows := make([]dedupRow, len(methods))
	for i, m := range methods {
		rows[i] = dedupRow{id: m.ID, hasRemote: m.RemoteID != nil, name: m.Name}
	}
	return s.deleteDupes(ctx, passID, "stage_methods", findDupes(rows), func(tx store.Store, id int64) error {
		return tx.DeleteStageMethod(ctx, id)
	})
}

// dedupeCompanies reassigns each duplicate's interviews to the survivor
// before deleting it. Company deletion cascades to interviews, so a raw
// delete here would silently destroy them.
func (s *Service) dedupeCompanies(ctx context.Context, passID string) error {
	companies, err := s.store.ListCompanies(ctx)
	if err != nil {
		return err
	}
	rows := make([]dedupRow, len(companies))
	for i, c := range companies {
		rows[i] = dedupRow{id: c.ID, hasRemote: c.RemoteID != nil, name: c.Name}
	}
	dupes := findDupes(rows)
	if len(dupes) == 0 {
		return nil
	}

	err = s.store.InTx(ctx, func(tx store.Store) error {
		for _, d := range dupes {
			if err := tx.ReassignInterviews(ctx, d.drop, d.keep); err != nil {
				return err
			}
			if err := tx.DeleteCompany(ctx, d.drop); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[cleanup] pass %s: companies — %d duplicate(s) removed", passID, len(dupes))
	s.notify(ctx, passID, "companies", len(dupes))
	return nil
}

// deleteDupes commits all deletions for one entity kind in a single batch.
func (s *Service) deleteDupes(ctx context.Context, passID, entity string, dupes []dupe, del func(store.Store, int64) error) error {
	if len(dupes) == 0 {
		return nil
	}
	err := s.store.InTx(ctx, func(tx store.Store) error {
		for _, d := range dupes {
			if err := del(tx, d.drop); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[cleanup] pass %s: %s — %d duplicate(s) removed", passID, entity, len(dupes))
	s.notify(ctx, passID, entity, len(dupes))
	return nil
}
