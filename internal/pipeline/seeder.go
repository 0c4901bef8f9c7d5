package pipeline

import (
	"context"
	"fmt"
	"log"

	"jobmate/sync-service/internal/model"
	"jobmate/sync-service/internal/store"
)

// Default reference rows inserted on first run so the reconciler and
// migrator always have valid stages and methods to attach interviews to.
var (
	defaultStages = []string{
		"Applied",
		"Phone Screen",
		"Technical Interview",
		"Final Interview",
		"Offer",
	}
	defaultStageMethods = []string{
		"Video Call",
		"Phone Call",
		"On-site",
		"Take-Home",
	}
)

// Seed populates the default stage and stage-method rows. Idempotent: each
// kind is seeded only when that kind has no rows at all, so a store with
// stages but no methods gets only the methods.
func (s *Service) Seed(ctx context.Context) error {
	n, err := s.store.CountStages(ctx)
	if err != nil {
		return fmt.Errorf("count stages: %w", err)
	}
	if n == 0 {
		err := s.store.InTx(ctx, func(tx store.Store) error {
			for _, name := range defaultStages {
				if err := tx.InsertStage(ctx, &model.Stage{Name: name}); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("seed stages: %w", err)
		}
		log.Printf("[seed] inserted %d default stage(s)", len(defaultStages))
	}

	n, err = s.store.CountStageMethods(ctx)
	if err != nil {
		return fmt.Errorf("count stage methods: %w", err)
	}
	if n == 0 {
		err := s.store.InTx(ctx, func(tx store.Store) error {
			for _, name := range defaultStageMethods {
				if err := tx.InsertStageMethod(ctx, &model.StageMethod{Name: name}); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("seed stage methods: %w", err)
		}
		log.Printf("[seed] inserted %d default stage method(s)", len(defaultStageMethods))
	}

	return nil
}
