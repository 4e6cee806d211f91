package domain

import "context"

// CatalogSource lists places with full detail.
type CatalogSource interface {
	ListPlaces(ctx context.Context) ([]Place, error)
	GetPlace(ctx context.Context, id string) (Place, error)
}

// ReviewSource lists the reviews a user has written.
type ReviewSource interface {
	ListUserReviews(ctx context.Context, userID string) ([]UserReview, error)
}

type PlaceRepository interface {
	CatalogSource

	// Write paths
	UpsertPlace(ctx context.Context, p Place) error
	DeleteMissing(ctx context.Context, keep []string) (int64, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
