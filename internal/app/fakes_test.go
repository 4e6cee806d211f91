package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"tango/internal/domain"
)

// ---- fakes ----

type fakeSource struct {
	mu      sync.Mutex
	places  []domain.Place
	err     error
	listN   int
	getN    int
	reviews map[string][]domain.UserReview
	revErr  error
	revN    int
}

func (f *fakeSource) ListPlaces(ctx context.Context) ([]domain.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listN++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Place, len(f.places))
	copy(out, f.places)
	return out, nil
}

func (f *fakeSource) GetPlace(ctx context.Context, id string) (domain.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getN++
	if f.err != nil {
		return domain.Place{}, f.err
	}
	for _, p := range f.places {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Place{}, domain.ErrNotFound
}

func (f *fakeSource) ListUserReviews(ctx context.Context, userID string) ([]domain.UserReview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revN++
	if f.revErr != nil {
		return nil, f.revErr
	}
	return f.reviews[userID], nil
}

type fakeRepo struct {
	mu      sync.Mutex
	rows    map[string]domain.Place
	failIDs map[string]bool
	kept    []string
	pruneN  int
}

func (r *fakeRepo) ListPlaces(ctx context.Context) ([]domain.Place, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Place, 0, len(r.rows))
	for _, p := range r.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRepo) GetPlace(ctx context.Context, id string) (domain.Place, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return domain.Place{}, domain.ErrNotFound
	}
	return p, nil
}

func (r *fakeRepo) UpsertPlace(ctx context.Context, p domain.Place) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failIDs[p.ID] {
		return errors.New("deadlock found")
	}
	if r.rows == nil {
		r.rows = map[string]domain.Place{}
	}
	r.rows[p.ID] = p
	return nil
}

func (r *fakeRepo) DeleteMissing(ctx context.Context, keep []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneN++
	r.kept = append([]string(nil), keep...)
	set := map[string]bool{}
	for _, id := range keep {
		set[id] = true
	}
	var n int64
	for id := range r.rows {
		if !set[id] {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

// fakeCache keeps JSON bytes like the redis adapter does.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.store[key]
	return ok
}

func ptr[T any](v T) *T { return &v }

func hours(day string, start, end int) domain.OpeningHours {
	return domain.OpeningHours{day: {Start: ptr(start), End: ptr(end)}}
}
