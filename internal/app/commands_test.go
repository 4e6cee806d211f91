package app_test

import (
	"context"
	"errors"
	"testing"

	"tango/internal/app"
	"tango/internal/domain"
)

func TestSyncCatalog_UpsertsAndPrunes(t *testing.T) {
	src := &fakeSource{places: catalog()}
	repo := &fakeRepo{rows: map[string]domain.Place{"old": {ID: "old"}}}
	cache := &fakeCache{}
	_ = cache.Set(context.Background(), "catalog:all", []domain.Place{{ID: "old"}}, 60)

	rep, err := app.NewIngestionService(src, repo, cache).SyncCatalog(context.Background(), 2)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if rep.RunID == "" || rep.Listed != 3 || rep.Upserted != 3 || rep.Failed != 0 || rep.Pruned != 1 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if _, ok := repo.rows["old"]; ok {
		t.Fatalf("expected stale place to be pruned")
	}
	if len(repo.rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(repo.rows))
	}
	if cache.has("catalog:all") {
		t.Fatalf("expected catalog cache invalidated")
	}
}

func TestSyncCatalog_ContinuesOnFailure(t *testing.T) {
	src := &fakeSource{places: append(catalog(), domain.Place{Name: "sin id"})}
	repo := &fakeRepo{failIDs: map[string]bool{"b": true}}

	rep, err := app.NewIngestionService(src, repo, nil).SyncCatalog(context.Background(), 0)
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
	if rep.Upserted != 2 || rep.Failed != 1 || rep.Skipped != 1 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	// failed places are still listed upstream and must survive the prune
	if len(repo.kept) != 3 {
		t.Fatalf("expected every listed id kept, got %v", repo.kept)
	}
}

func TestSyncCatalog_FetchError(t *testing.T) {
	boom := errors.New("backend down")
	repo := &fakeRepo{}
	_, err := app.NewIngestionService(&fakeSource{err: boom}, repo, nil).SyncCatalog(context.Background(), 4)
	if !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if repo.pruneN != 0 {
		t.Fatalf("must not prune after a failed fetch")
	}
}

func TestSyncCatalog_EmptyListingSkipsPrune(t *testing.T) {
	repo := &fakeRepo{rows: map[string]domain.Place{"a": {ID: "a"}}}
	if _, err := app.NewIngestionService(&fakeSource{}, repo, nil).SyncCatalog(context.Background(), 1); err != nil {
		t.Fatalf("err: %v", err)
	}
	if repo.pruneN != 0 || len(repo.rows) != 1 {
		t.Fatalf("empty listing must not wipe the snapshot")
	}
}
