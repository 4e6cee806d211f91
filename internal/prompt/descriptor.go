package prompt

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"tango/internal/availability"
	"tango/internal/domain"
)

const (
	notAvailable  = "No disponible"
	notApplicable = "No aplica"
)

// Describer renders one catalog line per place.
type Describer struct {
	ev *availability.Evaluator
}

func NewDescriber(ev *availability.Evaluator) *Describer {
	if ev == nil {
		ev = availability.NewEvaluator()
	}
	return &Describer{ev: ev}
}

// Describe renders every decision-relevant field of p. Missing data is written as
// an explicit sentinel, never dropped.
func (d *Describer) Describe(p domain.Place, loc *domain.Location, now time.Time) string {
	st := d.ev.At(p, now)

	closesIn := notApplicable
	if s := st.ClosesIn(); s != "" {
		closesIn = s
	}

	fields := []string{
		"ID: " + orNA(p.ID),
		"Nombre: " + orNA(p.Name),
		"Tipo: " + orNA(string(p.Type)),
		"Ubicación: " + location(p),
		"Descripción: " + orNA(p.Description),
		"CalificaciónPromedio: " + ratingAverage(p),
		"Calificaciones: " + categoryRatings(p.Ratings),
		"Cantidades: " + structured(p.Quantities, len(p.Quantities) > 0),
		"Atributos: " + attributes(p.Attributes),
		"Teléfono: " + orNAPtr(p.Phone),
		"Email: " + orNAPtr(p.Email),
		"SitioWeb: " + orNAPtr(p.Website),
		"CategoríaPrecio: " + orNA(p.PriceCategory),
		"Horarios: " + structured(p.OpeningHours, len(p.OpeningHours) > 0),
		"AbiertoAhora: " + st.State.Label(),
		"CierraEn: " + closesIn,
		"EsRestaurante: " + yesNo(containsFold(string(p.Type), "rest")),
		"EsHotel: " + yesNo(containsFold(string(p.Type), "hotel")),
		"MismaCiudad: " + yesNo(sameCity(loc, p.City)),
	}
	return "- " + strings.Join(fields, " | ")
}

func location(p domain.Place) string {
	return fmt.Sprintf("%s, %s, %s (lat: %s, lng: %s)",
		orNA(p.Address), orNA(p.City), orNA(p.Country),
		formatNumber(p.Location.Lat), formatNumber(p.Location.Lng))
}

func ratingAverage(p domain.Place) string {
	if p.RatingAverage == nil {
		return fmt.Sprintf("%s (%d reseñas)", notAvailable, p.NumberOfReviews)
	}
	return fmt.Sprintf("%s (%d reseñas)", formatNumber(*p.RatingAverage), p.NumberOfReviews)
}

func categoryRatings(rs map[string]domain.CategoryRating) string {
	if len(rs) == 0 {
		return notAvailable
	}
	names := make([]string, 0, len(rs))
	for n := range rs {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make([]string, 0, len(names))
	for _, n := range names {
		r := rs[n]
		switch r.Kind {
		case domain.RatingAggregate:
			out = append(out, fmt.Sprintf("%s: %s (%d calificaciones)", n, formatNumber(r.Average), r.NumberOfRatings))
		case domain.RatingScore:
			out = append(out, fmt.Sprintf("%s: %s (tipo: %s)", n, formatNumber(r.Score), orNA(r.Type)))
		default:
			out = append(out, n+": "+notAvailable)
		}
	}
	return strings.Join(out, ", ")
}

func attributes(attrs []string) string {
	kept := make([]string, 0, len(attrs))
	for _, a := range attrs {
		if t := strings.TrimSpace(a); t != "" {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return notAvailable
	}
	return strings.Join(kept, ", ")
}

// structured renders v as compact JSON; map keys come out sorted.
func structured(v any, present bool) string {
	if !present {
		return notAvailable
	}
	b, err := json.Marshal(v)
	if err != nil {
		return notAvailable
	}
	return string(b)
}

func sameCity(loc *domain.Location, city string) bool {
	if loc == nil || loc.City == nil {
		return false
	}
	a, b := strings.TrimSpace(*loc.City), strings.TrimSpace(city)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), sub)
}

func yesNo(b bool) string {
	if b {
		return "SI"
	}
	return "NO"
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}

func orNAPtr(p *string) string {
	if p == nil {
		return notAvailable
	}
	return orNA(*p)
}

func formatNumber(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
