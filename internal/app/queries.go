package app

import (
	"context"
	"fmt"
	"time"

	"tango/internal/availability"
	"tango/internal/domain"
	"tango/internal/ranking"
)

const catalogKey = "catalog:all"

func placeKey(id string) string { return fmt.Sprintf("place:%s", id) }

// CatalogService serves the place catalog through the cache and answers
// availability and ranking questions about it. It satisfies domain.CatalogSource.
type CatalogService struct {
	src      domain.CatalogSource
	cache    domain.Cache
	cacheTTL time.Duration
	ev       *availability.Evaluator
	ranker   *ranking.Ranker
	loc      *time.Location
}

func NewCatalogService(src domain.CatalogSource, c domain.Cache, ttl time.Duration,
	ev *availability.Evaluator, r *ranking.Ranker, loc *time.Location) *CatalogService {
	if ev == nil {
		ev = availability.NewEvaluator()
	}
	if r == nil {
		r = ranking.NewRanker(ev, nil)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &CatalogService{src: src, cache: c, cacheTTL: ttl, ev: ev, ranker: r, loc: loc}
}

func (s *CatalogService) ListPlaces(ctx context.Context) ([]domain.Place, error) {
	var out []domain.Place
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, catalogKey, &out); ok {
			return out, nil
		}
	}
	ps, err := s.src.ListPlaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("list places: %w", err)
	}
	// copy so callers sorting the result cannot mutate the cached value
	out = make([]domain.Place, len(ps))
	copy(out, ps)
	if s.cache != nil {
		_ = s.cache.Set(ctx, catalogKey, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}

func (s *CatalogService) GetPlace(ctx context.Context, id string) (domain.Place, error) {
	key := placeKey(id)
	var p domain.Place
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &p); ok {
			return p, nil
		}
	}
	p, err := s.src.GetPlace(ctx, id)
	if err != nil {
		return domain.Place{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, p, int(s.cacheTTL.Seconds()))
	}
	return p, nil
}

type StatusView struct {
	PlaceID        string             `json:"placeId"`
	Name           string             `json:"name"`
	At             time.Time          `json:"at"`
	State          availability.State `json:"state"`
	Label          string             `json:"label"`
	MinutesToClose *int               `json:"minutesToClose,omitempty"`
	ClosesIn       string             `json:"closesIn,omitempty"`
}

// Status evaluates whether place id is open at t, read in the service timezone.
func (s *CatalogService) Status(ctx context.Context, id string, t time.Time) (StatusView, error) {
	p, err := s.GetPlace(ctx, id)
	if err != nil {
		return StatusView{}, err
	}
	at := t.In(s.loc)
	st := s.ev.At(p, at)
	return StatusView{
		PlaceID:        p.ID,
		Name:           p.Name,
		At:             at,
		State:          st.State,
		Label:          st.State.Label(),
		MinutesToClose: st.MinutesToClose,
		ClosesIn:       st.ClosesIn(),
	}, nil
}

func (s *CatalogService) Search(ctx context.Context, q ranking.Query, t time.Time) ([]ranking.Result, error) {
	ps, err := s.ListPlaces(ctx)
	if err != nil {
		return nil, err
	}
	return s.ranker.Rank(ps, q, t.In(s.loc)), nil
}

// invalidate drops the cached catalog and the given places.
func invalidate(ctx context.Context, c domain.Cache, ids ...string) {
	if c == nil {
		return
	}
	_ = c.Del(ctx, catalogKey)
	for _, id := range ids {
		_ = c.Del(ctx, placeKey(id))
	}
}
