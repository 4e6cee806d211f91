package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"tango/internal/adapters/observability"
	"tango/internal/domain"
	"tango/internal/prompt"
)

var (
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrReviewsUnavailable = errors.New("user reviews unavailable")
)

type ContextRequest struct {
	User     *domain.UserContext
	Location *domain.Location
}

// AssistantService builds the instruction payload handed to the language model.
type AssistantService struct {
	catalog  domain.CatalogSource
	reviews  domain.ReviewSource
	cache    domain.Cache
	cacheTTL time.Duration
	asm      *prompt.Assembler
	now      func() time.Time
	loc      *time.Location
}

func NewAssistantService(catalog domain.CatalogSource, reviews domain.ReviewSource, c domain.Cache,
	ttl time.Duration, asm *prompt.Assembler, now func() time.Time, loc *time.Location) *AssistantService {
	if asm == nil {
		asm = prompt.NewAssembler(nil)
	}
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AssistantService{catalog: catalog, reviews: reviews, cache: c, cacheTTL: ttl, asm: asm, now: now, loc: loc}
}

// BuildContext fetches the catalog and, when a user is given, their reviews
// concurrently, then assembles the prompt. Any upstream failure aborts the build.
func (s *AssistantService) BuildContext(ctx context.Context, req ContextRequest) (string, error) {
	var (
		places  []domain.Place
		reviews []domain.UserReview
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ps, err := s.catalog.ListPlaces(gctx)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
		}
		places = ps
		return nil
	})
	withUser := req.User != nil && req.User.ID != "" && s.reviews != nil
	if withUser {
		g.Go(func() error {
			rs, err := s.userReviews(gctx, req.User.ID)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrReviewsUnavailable, err)
			}
			reviews = rs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		outcome := "catalog_error"
		if errors.Is(err, ErrReviewsUnavailable) {
			outcome = "reviews_error"
		}
		observability.ObserveAssistantContext(outcome, 0)
		log.Warn().Err(err).Str("outcome", outcome).Msg("assistant context failed")
		return "", err
	}

	var user *domain.UserContext
	if req.User != nil {
		u := *req.User
		if withUser {
			u.Reviews = reviews
		}
		user = &u
	}

	out := s.asm.Build(prompt.Input{
		Places:   places,
		User:     user,
		Location: req.Location,
		Now:      s.now().In(s.loc),
		TimeZone: s.loc.String(),
	})
	observability.ObserveAssistantContext("ok", len(out))
	log.Debug().Int("places", len(places)).Int("reviews", len(reviews)).Int("bytes", len(out)).Msg("assistant context built")
	return out, nil
}

func (s *AssistantService) userReviews(ctx context.Context, userID string) ([]domain.UserReview, error) {
	key := fmt.Sprintf("reviews:user:%s", userID)
	var out []domain.UserReview
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &out); ok {
			return out, nil
		}
	}
	out, err := s.reviews.ListUserReviews(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}
