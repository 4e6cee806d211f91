package ranking

import (
	"math"
	"sort"
	"strconv"
	"time"

	"tango/internal/availability"
	"tango/internal/domain"
)

const Unrated = "Sin calificación"

type Query struct {
	Type      string
	Attribute string
	City      string
	OpenNow   bool
	Near      *domain.Location
	RadiusKm  float64
	Limit     int
}

type Result struct {
	Place      domain.Place        `json:"place"`
	Status     availability.Status `json:"status"`
	Rating     string              `json:"rating"`
	DistanceKm *float64            `json:"distanceKm,omitempty"`
}

type Ranker struct {
	ev    *availability.Evaluator
	attrs *AttributeMatcher
}

func NewRanker(ev *availability.Evaluator, attrs *AttributeMatcher) *Ranker {
	if ev == nil {
		ev = availability.NewEvaluator()
	}
	if attrs == nil {
		attrs = NewAttributeMatcher(nil)
	}
	return &Ranker{ev: ev, attrs: attrs}
}

// Rank filters places by q and orders them by rating. Input order is kept among
// equally rated and among unrated places. places is not modified.
func (r *Ranker) Rank(places []domain.Place, q Query, now time.Time) []Result {
	sorted := append([]domain.Place(nil), places...)
	SortByRating(sorted)

	out := make([]Result, 0, len(sorted))
	for _, p := range sorted {
		if q.Type != "" && !MatchesType(p, q.Type) {
			continue
		}
		if q.Attribute != "" && !r.attrs.Matches(p, q.Attribute) {
			continue
		}
		if q.City != "" && !SameCity(p, q.City) {
			continue
		}
		st := r.ev.At(p, now)
		if q.OpenNow && st.State != availability.Open {
			continue
		}
		res := Result{Place: p, Status: st, Rating: RatingLabel(p)}
		if q.Near != nil {
			d := DistanceKm(q.Near.Lat, q.Near.Lng, p.Location.Lat, p.Location.Lng)
			if q.RadiusKm > 0 && d > q.RadiusKm {
				continue
			}
			res.DistanceKm = &d
		}
		out = append(out, res)
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// SortByRating orders places by average rating descending, then review count
// descending. Unrated places go last regardless of review count.
func SortByRating(places []domain.Place) {
	sort.SliceStable(places, func(i, j int) bool { return rankedBefore(places[i], places[j]) })
}

func rankedBefore(a, b domain.Place) bool {
	switch {
	case a.RatingAverage == nil && b.RatingAverage == nil:
		return false
	case a.RatingAverage == nil:
		return false
	case b.RatingAverage == nil:
		return true
	}
	if *a.RatingAverage != *b.RatingAverage {
		return *a.RatingAverage > *b.RatingAverage
	}
	return a.NumberOfReviews > b.NumberOfReviews
}

func RatingLabel(p domain.Place) string {
	if p.RatingAverage == nil {
		return Unrated
	}
	return formatRating(*p.RatingAverage)
}

func formatRating(f float64) string {
	return strconv.FormatFloat(math.Round(f*10)/10, 'f', -1, 64)
}

const earthRadiusKm = 6371.0

// DistanceKm is the great-circle distance between two points.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}
