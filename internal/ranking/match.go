package ranking

import (
	"strings"

	"tango/internal/domain"
)

// typeAliases maps user vocabulary to the place types it refers to.
var typeAliases = map[domain.PlaceType][]string{
	domain.TypeRestaurant: {"restaurant", "restaurante", "resto", "comer", "comida", "cenar", "almorzar", "gastronomía", "gastronomia"},
	domain.TypeHotel:      {"hotel", "hostel", "alojamiento", "hospedaje", "dormir", "hotelería"},
	domain.TypeActivity:   {"activity", "actividad", "actividades", "paseo", "tour", "excursión", "excursion", "qué hacer", "que hacer"},
}

// DefaultAttributeSynonyms groups attribute spellings that mean the same thing.
var DefaultAttributeSynonyms = [][]string{
	{"wifi", "wi-fi", "internet"},
	{"pileta", "piscina", "pool"},
	{"estacionamiento", "cochera", "parking"},
	{"mascotas", "pet friendly", "pet-friendly"},
	{"cafetería", "cafeteria", "café", "cafe"},
	{"accesible", "accesibilidad", "silla de ruedas"},
	{"aire acondicionado", "climatizado"},
}

// ResolveType returns the place type a free-text query refers to.
func ResolveType(q string) (domain.PlaceType, bool) {
	low := strings.ToLower(strings.TrimSpace(q))
	if low == "" {
		return "", false
	}
	for t, aliases := range typeAliases {
		for _, a := range aliases {
			if low == a {
				return t, true
			}
		}
	}
	return "", false
}

// MatchesType reports whether p is of the type q names. Restaurants and hotels
// match on substrings of the stored type, the same test the catalog flags use.
func MatchesType(p domain.Place, q string) bool {
	want, ok := ResolveType(q)
	if !ok {
		return strings.Contains(strings.ToLower(string(p.Type)), strings.ToLower(strings.TrimSpace(q)))
	}
	typ := strings.ToLower(string(p.Type))
	switch want {
	case domain.TypeRestaurant:
		return strings.Contains(typ, "rest")
	case domain.TypeHotel:
		return strings.Contains(typ, "hotel")
	default:
		return strings.Contains(typ, string(want))
	}
}

type AttributeMatcher struct {
	groups [][]string
}

func NewAttributeMatcher(groups [][]string) *AttributeMatcher {
	if groups == nil {
		groups = DefaultAttributeSynonyms
	}
	norm := make([][]string, 0, len(groups))
	for _, g := range groups {
		var ng []string
		for _, s := range g {
			if t := strings.ToLower(strings.TrimSpace(s)); t != "" {
				ng = append(ng, t)
			}
		}
		if len(ng) > 0 {
			norm = append(norm, ng)
		}
	}
	return &AttributeMatcher{groups: norm}
}

// Matches reports whether any attribute of p contains term, or a synonym of it,
// ignoring case.
func (m *AttributeMatcher) Matches(p domain.Place, term string) bool {
	terms := m.expand(term)
	if len(terms) == 0 {
		return true
	}
	for _, a := range p.Attributes {
		low := strings.ToLower(a)
		for _, t := range terms {
			if strings.Contains(low, t) {
				return true
			}
		}
	}
	return false
}

func (m *AttributeMatcher) expand(term string) []string {
	t := strings.ToLower(strings.TrimSpace(term))
	if t == "" {
		return nil
	}
	out := []string{t}
	for _, g := range m.groups {
		for _, s := range g {
			if s == t || strings.Contains(t, s) {
				out = append(out, g...)
				break
			}
		}
	}
	return out
}

// SameCity compares the place city with the user's, ignoring case. Either side
// missing means no match.
func SameCity(p domain.Place, city string) bool {
	a, b := strings.TrimSpace(p.City), strings.TrimSpace(city)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}
