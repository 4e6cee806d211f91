package availability

import "fmt"

type State int

const (
	Unknown State = iota
	Open
	Closed
)

func (s State) String() string {
	switch s {
	case Open:
		return "OPEN"
	case Closed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Label is the tri-state rendering used in assistant prompts.
func (s State) Label() string {
	switch s {
	case Open:
		return "SI"
	case Closed:
		return "NO"
	default:
		return "DESCONOCIDO"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Status is recomputed for every (place, instant) pair and never stored.
// MinutesToClose is nil unless the place is open with a known closing time.
type Status struct {
	State          State `json:"state"`
	MinutesToClose *int  `json:"minutesToClose,omitempty"`
}

// FormatDuration renders minutes as "Hh Mm".
func FormatDuration(minutes int) string {
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// ClosesIn returns the "Hh Mm" time left, or "" when it does not apply.
func (s Status) ClosesIn() string {
	if s.State != Open || s.MinutesToClose == nil {
		return ""
	}
	return FormatDuration(*s.MinutesToClose)
}

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "OPEN":
		*s = Open
	case "CLOSED":
		*s = Closed
	case "UNKNOWN":
		*s = Unknown
	default:
		return fmt.Errorf("availability: unknown state %q", b)
	}
	return nil
}
