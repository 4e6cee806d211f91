package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"tango/internal/domain"
)

// envelopeKeys are the wrapper fields the backend has used around payloads.
var envelopeKeys = []string{"data", "places", "items", "reviews", "results"}

var reviewAliases = map[string][]string{
	"post_id": {"postId", "post_id", "placeId", "place_id", "post"},
	"comment": {"comment", "text", "content", "body"},
	"ratings": {"ratings", "scores"},
}

// wirePlace shadows every loosely typed field of domain.Place, so a wrong type
// in one field degrades that field instead of dropping the place.
type wirePlace struct {
	domain.Place
	ID              any             `json:"id"`
	MongoID         any             `json:"_id"`
	Name            any             `json:"name"`
	Type            any             `json:"type"`
	Description     any             `json:"description"`
	Address         any             `json:"address"`
	City            any             `json:"city"`
	Country         any             `json:"country"`
	Location        any             `json:"location"`
	RatingAverage   any             `json:"ratingAverage"`
	NumberOfReviews any             `json:"numberOfReviews"`
	Ratings         json.RawMessage `json:"ratings"`
	Attributes      any             `json:"attributes"`
	Quantities      any             `json:"quantities"`
	Phone           any             `json:"phone"`
	Email           any             `json:"email"`
	Website         any             `json:"website"`
	PriceCategory   any             `json:"priceCategory"`
}

// unwrap strips a single {"data": ...}-style envelope when present.
func unwrap(raw json.RawMessage) json.RawMessage {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 || t[0] != '{' {
		return t
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(t, &obj); err != nil {
		return t
	}
	for _, k := range envelopeKeys {
		if v, ok := obj[k]; ok && len(bytes.TrimSpace(v)) > 0 && !bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return v
		}
	}
	return t
}

func decodePlaces(raw json.RawMessage) ([]domain.Place, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(unwrap(raw), &items); err != nil {
		return nil, fmt.Errorf("decode places: %w", err)
	}
	out := make([]domain.Place, 0, len(items))
	for i, it := range items {
		p, err := decodePlace(it)
		if err != nil {
			// one malformed record must not take down the whole catalog
			log.Warn().Err(err).Int("index", i).Msg("skipping malformed place")
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func decodePlace(raw json.RawMessage) (domain.Place, error) {
	var w wirePlace
	if err := json.Unmarshal(unwrap(raw), &w); err != nil {
		return domain.Place{}, fmt.Errorf("decode place: %w", err)
	}
	p := w.Place
	p.ID = flexibleID(w.ID)
	if p.ID == "" {
		p.ID = flexibleID(w.MongoID)
	}
	if p.ID == "" {
		return domain.Place{}, fmt.Errorf("decode place: missing id")
	}
	p.Name = flexibleString(w.Name)
	p.Type = domain.PlaceType(strings.ToLower(flexibleString(w.Type)))
	p.Description = flexibleString(w.Description)
	p.Address = flexibleString(w.Address)
	p.City = flexibleString(w.City)
	p.Country = flexibleString(w.Country)
	p.PriceCategory = flexibleString(w.PriceCategory)
	p.Phone = optionalString(w.Phone)
	p.Email = optionalString(w.Email)
	p.Website = optionalString(w.Website)

	if loc, ok := w.Location.(map[string]any); ok {
		if lat := flexibleFloat(loc, "lat", "latitude"); lat != nil {
			p.Location.Lat = *lat
		}
		if lng := flexibleFloat(loc, "lng", "lon", "longitude"); lng != nil {
			p.Location.Lng = *lng
		}
	}
	p.RatingAverage = flexibleNumber(w.RatingAverage)
	if n := flexibleNumber(w.NumberOfReviews); n != nil {
		p.NumberOfReviews = int(*n)
	}
	// a ratings value that is not an object leaves the place without categories
	if len(w.Ratings) > 0 {
		var rs map[string]domain.CategoryRating
		if err := json.Unmarshal(w.Ratings, &rs); err == nil {
			p.Ratings = rs
		}
	}
	p.Attributes = flexibleStrings(w.Attributes)
	p.Quantities = flexibleQuantities(w.Quantities)
	return p, nil
}

func decodeReviews(raw json.RawMessage) ([]domain.UserReview, error) {
	var items []map[string]any
	if err := json.Unmarshal(unwrap(raw), &items); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	out := make([]domain.UserReview, 0, len(items))
	for _, m := range items {
		out = append(out, mapReview(m))
	}
	return out, nil
}

func mapReview(m map[string]any) domain.UserReview {
	r := domain.UserReview{}
	for _, k := range reviewAliases["post_id"] {
		if id := flexibleID(lookupAny(m, k)); id != "" {
			r.PostID = id
			break
		}
	}
	for _, k := range reviewAliases["comment"] {
		if s, ok := m[k].(string); ok && s != "" {
			r.Comment = s
			break
		}
	}
	for _, k := range reviewAliases["ratings"] {
		list, ok := m[k].([]any)
		if !ok {
			continue
		}
		for _, it := range list {
			obj, ok := it.(map[string]any)
			if !ok {
				continue
			}
			typ, _ := obj["type"].(string)
			score := flexibleFloat(obj, "score", "value")
			if score == nil {
				continue
			}
			r.Ratings = append(r.Ratings, domain.ReviewRating{Type: typ, Score: *score})
		}
		break
	}
	return r
}

// lookupAny resolves dot paths on nested maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// flexibleID accepts strings, numbers and {"_id": ...}/{"id": ...} objects.
func flexibleID(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case map[string]any:
		if id := flexibleID(t["_id"]); id != "" {
			return id
		}
		return flexibleID(t["id"])
	}
	return ""
}

// flexibleFloat returns the first key holding a number or numeric string ("8,5" ok).
func flexibleFloat(m map[string]any, keys ...string) *float64 {
	for _, k := range keys {
		if f := flexibleNumber(m[k]); f != nil {
			return f
		}
	}
	return nil
}

func flexibleNumber(v any) *float64 {
	switch t := v.(type) {
	case float64:
		f := t
		return &f
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", "."))
		if s == "" {
			return nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return &f
		}
	}
	return nil
}

// flexibleString renders strings and numbers; anything else is empty.
func flexibleString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

func optionalString(v any) *string {
	if s := flexibleString(v); s != "" {
		return &s
	}
	return nil
}

// flexibleStrings accepts a list of strings or a single comma separated string.
func flexibleStrings(v any) []string {
	var out []string
	switch t := v.(type) {
	case []any:
		for _, it := range t {
			if s := flexibleString(it); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, s := range strings.Split(t, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// flexibleQuantities keeps the entries that hold a whole number.
func flexibleQuantities(v any) map[string]int {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, raw := range m {
		if f := flexibleNumber(raw); f != nil {
			out[k] = int(*f)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
