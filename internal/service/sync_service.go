package service

import (
	"context"

	"github.com/copperkettle/catering/internal/domain/catalog"
	"github.com/copperkettle/catering/internal/infrastructure/observability"
	"github.com/rs/zerolog"
)

// SyncResult is the operator-facing summary of one reconciliation run.
type SyncResult struct {
	Archived []string
	Restored []string
	Errors   int
}

// CatalogSyncService reconciles local products against the provider's live
// catalog. Runs are snapshot diffs meant for a single exclusive invocation
// (cron or manual); overlapping runs are not supported and there is
// deliberately no in-process locking.
type CatalogSyncService struct {
	products catalog.Repository
	guard    ConnectionGuard
	metrics  *observability.Metrics
	log      zerolog.Logger
}

// NewCatalogSyncService creates a catalog sync service.
func NewCatalogSyncService(products catalog.Repository, guard ConnectionGuard, metrics *observability.Metrics, log zerolog.Logger) *CatalogSyncService {
	return &CatalogSyncService{products: products, guard: guard, metrics: metrics, log: log}
}

// Reconcile archives every active provider-managed product whose square id
// is absent from liveIDs, and restores archived ones that reappeared.
// Items fail independently: one bad row is counted and logged but never
// aborts the batch. Products without a square id are not provider-managed
// and are never touched; that exclusion is load-bearing, not incidental.
func (s *CatalogSyncService) Reconcile(ctx context.Context, liveIDs map[string]struct{}) (*SyncResult, error) {
	var managed []*catalog.Product
	err := s.guard.Execute(ctx, "list provider products", func(ctx context.Context) error {
		var listErr error
		managed, listErr = s.products.ListProviderManaged(ctx)
		return listErr
	})
	if err != nil {
		return nil, err
	}

	result := &SyncResult{}
	for _, p := range managed {
		if !p.ProviderManaged() {
			continue
		}
		_, live := liveIDs[p.SquareID]

		switch {
		case p.Active && !live:
			if err := s.archiveOne(ctx, p); err != nil {
				result.Errors++
				continue
			}
			result.Archived = append(result.Archived, p.SquareID)

		case !p.Active && live:
			restored, err := s.restoreOne(ctx, p.SquareID)
			if err != nil {
				result.Errors++
				continue
			}
			if restored {
				result.Restored = append(result.Restored, p.SquareID)
			}
		}
	}

	s.log.Info().
		Int("archived", len(result.Archived)).
		Int("restored", len(result.Restored)).
		Int("errors", result.Errors).
		Msg("catalog reconciliation finished")
	return result, nil
}

func (s *CatalogSyncService) archiveOne(ctx context.Context, p *catalog.Product) error {
	err := s.guard.Execute(ctx, "archive product", func(ctx context.Context) error {
		return s.products.Archive(ctx, p.SquareID)
	})
	if err != nil {
		s.log.Error().
			Err(err).
			Str("square_id", p.SquareID).
			Str("name", p.Name).
			Msg("failed to archive product")
		s.metrics.SyncItemErrors.Inc()
		return err
	}
	s.log.Info().Str("square_id", p.SquareID).Str("name", p.Name).Msg("archived product missing from provider catalog")
	s.metrics.SyncProductsArchived.Inc()
	return nil
}

func (s *CatalogSyncService) restoreOne(ctx context.Context, squareID string) (bool, error) {
	var restored bool
	err := s.guard.Execute(ctx, "restore product", func(ctx context.Context) error {
		var restoreErr error
		restored, restoreErr = s.products.Restore(ctx, squareID)
		return restoreErr
	})
	if err != nil {
		s.log.Error().Err(err).Str("square_id", squareID).Msg("failed to restore product")
		s.metrics.SyncItemErrors.Inc()
		return false, err
	}
	if restored {
		s.log.Info().Str("square_id", squareID).Msg("restored product that reappeared in provider catalog")
		s.metrics.SyncProductsRestored.Inc()
	}
	return restored, nil
}

// Restore reactivates a single previously-archived product by square id.
// Exposed for operator use when an item reappears between scheduled runs.
func (s *CatalogSyncService) Restore(ctx context.Context, squareID string) (bool, error) {
	return s.restoreOne(ctx, squareID)
}
