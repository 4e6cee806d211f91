package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"tango/internal/app"
	"tango/internal/availability"
	"tango/internal/domain"
	"tango/internal/ranking"
)

// 2025-01-01 is a Wednesday.
var wednesday2247 = time.Date(2025, 1, 1, 22, 47, 0, 0, time.UTC)

func catalog() []domain.Place {
	return []domain.Place{
		{ID: "a", Name: "Parrilla Don Julio", Type: "restaurant", City: "Buenos Aires",
			RatingAverage: ptr(4.2), NumberOfReviews: 10, OpeningHours: hours("wednesday", 20, 0)},
		{ID: "b", Name: "Hotel Sur", Type: "hotel", City: "Buenos Aires",
			RatingAverage: ptr(4.8), NumberOfReviews: 3},
		{ID: "c", Name: "Bodegón", Type: "restaurant", City: "Rosario",
			OpeningHours: hours("wednesday", 9, 17)},
	}
}

func TestListPlaces_CacheMissThenHit(t *testing.T) {
	src := &fakeSource{places: catalog()}
	cache := &fakeCache{}
	svc := app.NewCatalogService(src, cache, 10*time.Minute, nil, nil, nil)

	ps, err := svc.ListPlaces(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(ps) != 3 {
		t.Fatalf("unexpected places: %+v", ps)
	}

	// Change the source to ensure the second read comes from cache
	src.places[0].Name = "SHOULD NOT SEE THIS"

	ps2, err := svc.ListPlaces(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if ps2[0].Name != "Parrilla Don Julio" {
		t.Fatalf("expected cached name, got %s", ps2[0].Name)
	}
	if src.listN != 1 {
		t.Fatalf("expected one upstream call, got %d", src.listN)
	}
}

func TestListPlaces_NoCache(t *testing.T) {
	src := &fakeSource{places: catalog()}
	svc := app.NewCatalogService(src, nil, time.Minute, nil, nil, nil)
	for i := 0; i < 2; i++ {
		if _, err := svc.ListPlaces(context.Background()); err != nil {
			t.Fatalf("err: %v", err)
		}
	}
	if src.listN != 2 {
		t.Fatalf("expected every call upstream, got %d", src.listN)
	}
}

func TestListPlaces_UpstreamError(t *testing.T) {
	boom := errors.New("backend down")
	svc := app.NewCatalogService(&fakeSource{err: boom}, &fakeCache{}, time.Minute, nil, nil, nil)
	if _, err := svc.ListPlaces(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped upstream error, got %v", err)
	}
}

func TestGetPlace_NotFoundIsNotCached(t *testing.T) {
	src := &fakeSource{places: catalog()}
	cache := &fakeCache{}
	svc := app.NewCatalogService(src, cache, time.Minute, nil, nil, nil)

	if _, err := svc.GetPlace(context.Background(), "zzz"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if cache.has("place:zzz") {
		t.Fatalf("misses must not be cached")
	}
	p, err := svc.GetPlace(context.Background(), "b")
	if err != nil || p.Name != "Hotel Sur" {
		t.Fatalf("unexpected: %+v %v", p, err)
	}
	if !cache.has("place:b") {
		t.Fatalf("expected place to be cached")
	}
}

func TestStatus_ConvertsToServiceTimezone(t *testing.T) {
	ba, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	svc := app.NewCatalogService(&fakeSource{places: catalog()}, nil, time.Minute, nil, nil, ba)

	// 01:47 UTC Thursday is 22:47 Wednesday in Buenos Aires (UTC-3).
	at := time.Date(2025, 1, 2, 1, 47, 0, 0, time.UTC)
	v, err := svc.Status(context.Background(), "a", at)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if v.State != availability.Open || v.Label != "SI" || v.ClosesIn != "1h 13m" {
		t.Fatalf("unexpected status: %+v", v)
	}
	if v.At.Location() != ba {
		t.Fatalf("expected instant in service timezone, got %s", v.At.Location())
	}
}

func TestStatus_UnknownAndClosed(t *testing.T) {
	svc := app.NewCatalogService(&fakeSource{places: catalog()}, nil, time.Minute, nil, nil, time.UTC)

	v, _ := svc.Status(context.Background(), "b", wednesday2247)
	if v.State != availability.Unknown || v.Label != "DESCONOCIDO" || v.MinutesToClose != nil {
		t.Fatalf("expected unknown for missing hours, got %+v", v)
	}
	v, _ = svc.Status(context.Background(), "c", wednesday2247)
	if v.State != availability.Closed || v.ClosesIn != "" {
		t.Fatalf("expected closed, got %+v", v)
	}
	if _, err := svc.Status(context.Background(), "nope", wednesday2247); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSearch_FiltersAndRanks(t *testing.T) {
	svc := app.NewCatalogService(&fakeSource{places: catalog()}, &fakeCache{}, time.Minute, nil, nil, time.UTC)

	res, err := svc.Search(context.Background(), ranking.Query{}, wednesday2247)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(res) != 3 || res[0].Place.ID != "b" || res[1].Place.ID != "a" || res[2].Rating != ranking.Unrated {
		t.Fatalf("unexpected order: %+v", res)
	}

	res, _ = svc.Search(context.Background(), ranking.Query{Type: "restaurante", OpenNow: true}, wednesday2247)
	if len(res) != 1 || res[0].Place.ID != "a" {
		t.Fatalf("expected only the open restaurant, got %+v", res)
	}
}

func TestSyncCatalog_InvalidatesServedEntries(t *testing.T) {
	src := &fakeSource{places: catalog()}
	cache := &fakeCache{}
	svc := app.NewCatalogService(src, cache, time.Minute, nil, nil, nil)
	_, _ = svc.ListPlaces(context.Background())
	_, _ = svc.GetPlace(context.Background(), "a")

	if _, err := app.NewIngestionService(src, &fakeRepo{}, cache).SyncCatalog(context.Background(), 1); err != nil {
		t.Fatalf("err: %v", err)
	}
	if cache.has("catalog:all") || cache.has("place:a") {
		t.Fatalf("expected cache entries dropped, left: %v", cache.store)
	}
}
