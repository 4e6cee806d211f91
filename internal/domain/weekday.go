package domain

import "time"

type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayKeys = [...]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// Key is the lowercase English name used as the opening-hours map key.
func (d Weekday) Key() string {
	if d < Sunday || d > Saturday {
		return ""
	}
	return weekdayKeys[d]
}

func (d Weekday) String() string { return d.Key() }

func WeekdayOf(t time.Time) Weekday { return Weekday(t.Weekday()) }
