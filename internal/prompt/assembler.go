package prompt

import (
	"fmt"
	"strings"
	"time"

	"tango/internal/availability"
	"tango/internal/domain"
)

// Input is everything the assembler needs. Now must already be in the timezone
// named by TimeZone.
type Input struct {
	Places   []domain.Place
	User     *domain.UserContext
	Location *domain.Location
	Now      time.Time
	TimeZone string
}

type Assembler struct {
	d        *Describer
	behavior string
}

func NewAssembler(ev *availability.Evaluator) *Assembler {
	if ev == nil {
		ev = availability.NewEvaluator()
	}
	return &Assembler{d: NewDescriber(ev), behavior: renderBehavior(ev.Synonyms())}
}

// Build concatenates identity, user, location, catalog and behavior blocks in that
// order. Absent optional blocks are empty.
func (a *Assembler) Build(in Input) string {
	var b strings.Builder
	b.WriteString(identityBlock)
	b.WriteString(userBlock(in.User, in.Now, in.TimeZone))
	b.WriteString(locationBlock(in.Location))
	b.WriteString(a.catalogBlock(in.Places, in.Location, in.Now))
	b.WriteString("\n\n")
	b.WriteString(a.behavior)
	return b.String()
}

func userBlock(u *domain.UserContext, now time.Time, tz string) string {
	if u == nil || u.ID == "" || u.Name == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\nCONTEXTO DEL USUARIO:\n")
	fmt.Fprintf(&b, "Estás hablando con %s. La fecha y hora actual del sistema es %s (zona horaria: %s).\n",
		u.Name, now.Format("2006-01-02 15:04"), tz)
	b.WriteString("Usa sus reseñas previas solo para ajustar el tono y sus preferencias, no para excluir lugares.\n")
	if len(u.Reviews) == 0 {
		b.WriteString("El usuario todavía no escribió reseñas.")
		return b.String()
	}
	b.WriteString("Reseñas previas del usuario:")
	for _, r := range u.Reviews {
		score := "unknown"
		if s, ok := r.GeneralScore(); ok {
			score = formatNumber(s)
		}
		fmt.Fprintf(&b, "\n- Reseña del lugar %s: \"%s\" con una calificación de %s.", r.PostID, r.Comment, score)
	}
	return b.String()
}

func locationBlock(loc *domain.Location) string {
	if loc == nil {
		return ""
	}
	var parts []string
	for _, p := range []*string{loc.City, loc.Country, loc.Address} {
		if p != nil && strings.TrimSpace(*p) != "" {
			parts = append(parts, strings.TrimSpace(*p))
		}
	}
	where := "las coordenadas disponibles"
	if len(parts) > 0 {
		where = strings.Join(parts, ", ")
	}
	return fmt.Sprintf("\n\nUBICACIÓN DEL USUARIO:\nEl usuario se encuentra en %s (latitud %.4f, longitud %.4f). "+
		"Usa esta posición solo para razonar sobre cercanía. Nunca muestres al usuario coordenadas numéricas, "+
		"ni las suyas ni las de los lugares: habla de cercanía relativa, barrios o direcciones.",
		where, loc.Lat, loc.Lng)
}

func (a *Assembler) catalogBlock(places []domain.Place, loc *domain.Location, now time.Time) string {
	lines := make([]string, 0, len(places))
	for _, p := range places {
		lines = append(lines, a.d.Describe(p, loc, now))
	}
	if len(lines) == 0 {
		return "\n\n" + catalogPreamble + "\n(El catálogo está vacío.)"
	}
	return "\n\n" + catalogPreamble + "\n" + strings.Join(lines, "\n")
}

// IdentityBlock and BehaviorBlock expose the fixed edges of every payload.
func IdentityBlock() string { return identityBlock }
func (a *Assembler) BehaviorBlock() string { return a.behavior }
