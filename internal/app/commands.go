package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"tango/internal/adapters/observability"
	"tango/internal/domain"
)

// IngestionService copies the backend catalog into the local snapshot store.
type IngestionService struct {
	src   domain.CatalogSource
	repo  domain.PlaceRepository
	cache domain.Cache
}

func NewIngestionService(src domain.CatalogSource, r domain.PlaceRepository, cache domain.Cache) *IngestionService {
	return &IngestionService{src: src, repo: r, cache: cache}
}

type SyncReport struct {
	RunID    string
	Listed   int
	Upserted int
	Failed   int
	Skipped  int
	Pruned   int64
	Took     time.Duration
}

// SyncCatalog upserts every listed place with at most workers concurrent writes,
// then prunes places the backend no longer lists. A failed upsert does not stop
// the run; all failures are returned joined.
func (s *IngestionService) SyncCatalog(ctx context.Context, workers int) (SyncReport, error) {
	if workers <= 0 {
		workers = 1
	}
	start := time.Now()
	rep := SyncReport{RunID: uuid.NewString()}
	logger := log.With().Str("run", rep.RunID).Logger()

	places, err := s.src.ListPlaces(ctx)
	if err != nil {
		observability.ObserveIngest("fetch_error", 0)
		return rep, fmt.Errorf("fetch catalog: %w", err)
	}
	rep.Listed = len(places)
	logger.Info().Int("places", rep.Listed).Int("workers", workers).Msg("sync started")

	var (
		mu   sync.Mutex
		errs []error
		keep = make([]string, 0, len(places))
	)
	sem := semaphore.NewWeighted(int64(workers))
	for _, p := range places {
		if p.ID == "" {
			logger.Warn().Str("name", p.Name).Msg("place without id skipped")
			rep.Skipped++
			continue
		}
		keep = append(keep, p.ID)

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			break
		}
		go func(p domain.Place) {
			defer sem.Release(1)
			err := s.repo.UpsertPlace(ctx, p)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				rep.Failed++
				errs = append(errs, fmt.Errorf("upsert %s: %w", p.ID, err))
				logger.Warn().Err(err).Str("id", p.ID).Msg("upsert failed")
				return
			}
			rep.Upserted++
		}(p)
	}
	// wait for in-flight upserts
	if err := sem.Acquire(context.Background(), int64(workers)); err == nil {
		sem.Release(int64(workers))
	}
	observability.ObserveIngest("ok", rep.Upserted)
	observability.ObserveIngest("error", rep.Failed)

	if ctx.Err() == nil && len(keep) > 0 {
		n, err := s.repo.DeleteMissing(ctx, keep)
		if err != nil {
			errs = append(errs, fmt.Errorf("prune: %w", err))
		} else {
			rep.Pruned = n
			observability.ObserveIngest("pruned", int(n))
		}
	} else if len(keep) == 0 {
		logger.Warn().Msg("backend listed no places, prune skipped")
	}

	invalidate(ctx, s.cache, keep...)

	rep.Took = time.Since(start)
	logger.Info().
		Int("upserted", rep.Upserted).
		Int("failed", rep.Failed).
		Int("skipped", rep.Skipped).
		Int64("pruned", rep.Pruned).
		Dur("took", rep.Took).
		Msg("sync finished")
	return rep, errors.Join(errs...)
}
