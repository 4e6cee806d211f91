package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

type PlaceType string

const (
	TypeHotel      PlaceType = "hotel"
	TypeRestaurant PlaceType = "restaurant"
	TypeActivity   PlaceType = "activity"
)

type Place struct {
	ID              string                    `json:"id"`
	Name            string                    `json:"name"`
	Type            PlaceType                 `json:"type"`
	Description     string                    `json:"description"`
	Address         string                    `json:"address"`
	City            string                    `json:"city"`
	Country         string                    `json:"country"`
	Location        Coords                    `json:"location"`
	RatingAverage   *float64                  `json:"ratingAverage"`
	NumberOfReviews int                       `json:"numberOfReviews"`
	Ratings         map[string]CategoryRating `json:"ratings,omitempty"`
	Attributes      []string                  `json:"attributes,omitempty"`
	Quantities      map[string]int            `json:"quantities,omitempty"`
	OpeningHours    OpeningHours              `json:"openingHours,omitempty"`
	Phone           *string                   `json:"phone,omitempty"`
	Email           *string                   `json:"email,omitempty"`
	Website         *string                   `json:"website,omitempty"`
	PriceCategory   string                    `json:"priceCategory"`
}

type Coords struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// OpeningHours is keyed by lowercase English weekday name. A missing key means
// there is no data for that day, which is not the same as closed.
type OpeningHours map[string]DayHours

// For returns the schedule stored for d, if any.
func (h OpeningHours) For(d Weekday) (DayHours, bool) {
	if h == nil {
		return DayHours{}, false
	}
	dh, ok := h[d.Key()]
	return dh, ok
}

// UnmarshalJSON never fails: a schedule that is not an object decodes as no data,
// so one bad record only makes that place UNKNOWN. Day keys are lowercased.
func (h *OpeningHours) UnmarshalJSON(b []byte) error {
	var raw map[string]DayHours
	if err := json.Unmarshal(b, &raw); err != nil || raw == nil {
		*h = nil
		return nil
	}
	out := make(OpeningHours, len(raw))
	for k, v := range raw {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	*h = out
	return nil
}

// DayHours holds whole opening and closing hours (0-23). A nil field means the
// upstream value was absent or not numeric.
type DayHours struct {
	Start *int `json:"start"`
	End   *int `json:"end"`
}

func (d *DayHours) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		// not an object: treat as no usable schedule for the day
		*d = DayHours{}
		return nil
	}
	*d = DayHours{Start: flexibleHour(raw["start"]), End: flexibleHour(raw["end"])}
	return nil
}

// flexibleHour accepts float64 or numeric strings; fractions are dropped.
func flexibleHour(v any) *int {
	switch t := v.(type) {
	case float64:
		h := int(t)
		return &h
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", "."))
		if s == "" {
			return nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			h := int(f)
			return &h
		}
	}
	return nil
}

type RatingKind int

const (
	RatingUnavailable RatingKind = iota
	RatingAggregate
	RatingScore
)

// CategoryRating is one entry of the per-category ratings map. Upstream sends
// either {average, numberOfRatings} or {score, type}; anything else (including
// null) decodes as RatingUnavailable.
type CategoryRating struct {
	Kind            RatingKind
	Average         float64
	NumberOfRatings int
	Score           float64
	Type            string
}

func (r *CategoryRating) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil || raw == nil {
		*r = CategoryRating{Kind: RatingUnavailable}
		return nil
	}
	if avg, ok := raw["average"].(float64); ok {
		n, _ := raw["numberOfRatings"].(float64)
		*r = CategoryRating{Kind: RatingAggregate, Average: avg, NumberOfRatings: int(n)}
		return nil
	}
	if score, ok := raw["score"].(float64); ok {
		typ, _ := raw["type"].(string)
		*r = CategoryRating{Kind: RatingScore, Score: score, Type: typ}
		return nil
	}
	*r = CategoryRating{Kind: RatingUnavailable}
	return nil
}

func (r CategoryRating) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case RatingAggregate:
		return json.Marshal(struct {
			Average         float64 `json:"average"`
			NumberOfRatings int     `json:"numberOfRatings"`
		}{r.Average, r.NumberOfRatings})
	case RatingScore:
		return json.Marshal(struct {
			Score float64 `json:"score"`
			Type  string  `json:"type"`
		}{r.Score, r.Type})
	default:
		return []byte("null"), nil
	}
}
