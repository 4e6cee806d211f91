package availability

import (
	"strings"
	"time"

	"tango/internal/domain"
)

const minutesPerDay = 24 * 60

// DefaultContinuousSynonyms mark a place as operating around the clock when its
// opening and closing hours coincide.
var DefaultContinuousSynonyms = []string{"24h", "24 h", "siempre", "abierto 24"}

type Evaluator struct {
	continuous []string
}

// NewEvaluator uses DefaultContinuousSynonyms when none are given.
func NewEvaluator(synonyms ...string) *Evaluator {
	list := make([]string, 0, len(synonyms))
	for _, s := range synonyms {
		if t := strings.ToLower(strings.TrimSpace(s)); t != "" {
			list = append(list, t)
		}
	}
	if len(list) == 0 {
		list = append(list, DefaultContinuousSynonyms...)
	}
	return &Evaluator{continuous: list}
}

// Synonyms returns a copy of the continuous-operation attribute list.
func (e *Evaluator) Synonyms() []string {
	return append([]string(nil), e.continuous...)
}

// At evaluates p at t, using t's own location for weekday and time of day.
func (e *Evaluator) At(p domain.Place, t time.Time) Status {
	return e.Evaluate(p.OpeningHours, p.Attributes, MinutesSinceMidnight(t), domain.WeekdayOf(t))
}

func MinutesSinceMidnight(t time.Time) int { return t.Hour()*60 + t.Minute() }

// Evaluate classifies a schedule at current minutes since midnight on day.
// Closing time is exclusive: at exactly the closing minute a place is closed,
// including when its window crosses midnight.
func (e *Evaluator) Evaluate(hours domain.OpeningHours, attributes []string, current int, day domain.Weekday) Status {
	dh, ok := hours.For(day)
	if !ok || dh.Start == nil || dh.End == nil {
		return Status{State: Unknown}
	}
	if !validHour(*dh.Start) || !validHour(*dh.End) {
		return Status{State: Unknown}
	}
	startMin, endMin := *dh.Start*60, *dh.End*60

	if endMin == startMin {
		if e.runsContinuously(attributes) {
			return Status{State: Open}
		}
		return Status{State: Unknown}
	}

	if current == endMin {
		return Status{State: Closed}
	}

	if endMin > startMin {
		if current >= startMin && current < endMin {
			return open(endMin - current)
		}
		return Status{State: Closed}
	}

	// window crosses midnight
	switch {
	case current >= startMin:
		return open(minutesPerDay - current + endMin)
	case current < endMin:
		return open(endMin - current)
	default:
		return Status{State: Closed}
	}
}

func (e *Evaluator) runsContinuously(attributes []string) bool {
	for _, a := range attributes {
		low := strings.ToLower(a)
		for _, s := range e.continuous {
			if strings.Contains(low, s) {
				return true
			}
		}
	}
	return false
}

func validHour(h int) bool { return h >= 0 && h <= 23 }

func open(minutes int) Status {
	return Status{State: Open, MinutesToClose: &minutes}
}
