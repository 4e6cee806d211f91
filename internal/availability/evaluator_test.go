package availability_test

import (
	"testing"
	"time"

	"tango/internal/availability"
	"tango/internal/domain"
)

func hours(day string, start, end int) domain.OpeningHours {
	return domain.OpeningHours{day: {Start: &start, End: &end}}
}

func mtc(s availability.Status) int {
	if s.MinutesToClose == nil {
		return -1
	}
	return *s.MinutesToClose
}

func TestEvaluate_NoEntryForDay(t *testing.T) {
	ev := availability.NewEvaluator()
	h := hours("monday", 9, 17)
	got := ev.Evaluate(h, nil, 600, domain.Tuesday)
	if got.State != availability.Unknown || got.MinutesToClose != nil {
		t.Fatalf("expected UNKNOWN without minutes, got %+v", got)
	}
	if got := ev.Evaluate(nil, nil, 600, domain.Tuesday); got.State != availability.Unknown {
		t.Fatalf("nil hours: expected UNKNOWN, got %v", got.State)
	}
}

func TestEvaluate_MissingStartOrEnd(t *testing.T) {
	ev := availability.NewEvaluator()
	nine := 9
	h := domain.OpeningHours{"monday": {Start: &nine}}
	if got := ev.Evaluate(h, nil, 600, domain.Monday); got.State != availability.Unknown {
		t.Fatalf("expected UNKNOWN, got %v", got.State)
	}
}

func TestEvaluate_OutOfRangeHoursAreUnknown(t *testing.T) {
	ev := availability.NewEvaluator()
	if got := ev.Evaluate(hours("monday", 9, 25), nil, 600, domain.Monday); got.State != availability.Unknown {
		t.Fatalf("expected UNKNOWN, got %v", got.State)
	}
}

func TestEvaluate_SameStartAndEnd(t *testing.T) {
	ev := availability.NewEvaluator()
	h := hours("friday", 0, 0)

	if got := ev.Evaluate(h, []string{"Wifi", "Terraza"}, 300, domain.Friday); got.State != availability.Unknown {
		t.Fatalf("no 24h attribute: expected UNKNOWN, got %v", got.State)
	}

	for _, attr := range []string{"Abierto 24H", "24 h", "Siempre abierto", "ABIERTO 24 horas", "atención 24h"} {
		got := ev.Evaluate(h, []string{"Cafetería", attr}, 300, domain.Friday)
		if got.State != availability.Open {
			t.Fatalf("%q: expected OPEN, got %v", attr, got.State)
		}
		if got.MinutesToClose != nil {
			t.Fatalf("%q: expected no minutesToClose, got %d", attr, *got.MinutesToClose)
		}
	}
}

func TestEvaluate_CustomSynonyms(t *testing.T) {
	ev := availability.NewEvaluator("nonstop", " ")
	h := hours("friday", 8, 8)
	if got := ev.Evaluate(h, []string{"NonStop service"}, 10, domain.Friday); got.State != availability.Open {
		t.Fatalf("expected OPEN, got %v", got.State)
	}
	if got := ev.Evaluate(h, []string{"24h"}, 10, domain.Friday); got.State != availability.Unknown {
		t.Fatalf("default synonyms must be replaced, got %v", got.State)
	}
	if s := ev.Synonyms(); len(s) != 1 || s[0] != "nonstop" {
		t.Fatalf("unexpected synonyms: %v", s)
	}
}

func TestEvaluate_DaytimeWindow(t *testing.T) {
	ev := availability.NewEvaluator()
	h := hours("monday", 9, 17)

	cases := []struct {
		name    string
		current int
		state   availability.State
		minutes int
	}{
		{"opening minute", 540, availability.Open, 480},
		{"one before opening", 539, availability.Closed, -1},
		{"closing minute", 1020, availability.Closed, -1},
		{"one before closing", 1019, availability.Open, 1},
		{"midnight", 0, availability.Closed, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ev.Evaluate(h, nil, tc.current, domain.Monday)
			if got.State != tc.state || mtc(got) != tc.minutes {
				t.Fatalf("got %v/%d, want %v/%d", got.State, mtc(got), tc.state, tc.minutes)
			}
		})
	}
}

func TestEvaluate_MidnightCrossing(t *testing.T) {
	ev := availability.NewEvaluator()
	h := hours("wednesday", 20, 2)

	cases := []struct {
		name    string
		current int
		state   availability.State
		minutes int
	}{
		{"after midnight", 47, availability.Open, 73},
		{"opening minute", 1200, availability.Open, 360},
		{"late evening", 1439, availability.Open, 121},
		{"exact close", 120, availability.Closed, -1},
		{"afternoon", 900, availability.Closed, -1},
		{"one before opening", 1199, availability.Closed, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ev.Evaluate(h, nil, tc.current, domain.Wednesday)
			if got.State != tc.state || mtc(got) != tc.minutes {
				t.Fatalf("got %v/%d, want %v/%d", got.State, mtc(got), tc.state, tc.minutes)
			}
		})
	}
}

func TestAt_UsesInstantLocation(t *testing.T) {
	ev := availability.NewEvaluator()
	p := domain.Place{OpeningHours: hours("wednesday", 20, 2)}

	// 2025-01-01 is a Wednesday.
	at := time.Date(2025, 1, 1, 0, 47, 0, 0, time.UTC)
	got := ev.At(p, at)
	if got.State != availability.Open || got.ClosesIn() != "1h 13m" {
		t.Fatalf("unexpected status %+v (%s)", got, got.ClosesIn())
	}

	// Same instant seen from UTC-3 is Tuesday 21:47: no Tuesday schedule.
	ba := time.FixedZone("ART", -3*3600)
	if got := ev.At(p, at.In(ba)); got.State != availability.Unknown {
		t.Fatalf("expected UNKNOWN on tuesday, got %v", got.State)
	}
}

func TestStateLabels(t *testing.T) {
	if availability.Open.Label() != "SI" || availability.Closed.Label() != "NO" || availability.Unknown.Label() != "DESCONOCIDO" {
		t.Fatalf("unexpected labels")
	}
	if availability.FormatDuration(360) != "6h 0m" {
		t.Fatalf("got %s", availability.FormatDuration(360))
	}
	closed := availability.Status{State: availability.Closed}
	if closed.ClosesIn() != "" {
		t.Fatalf("closed status must not report a closing time")
	}
}

func TestState_TextRoundTrip(t *testing.T) {
	for _, s := range []availability.State{availability.Open, availability.Closed, availability.Unknown} {
		b, _ := s.MarshalText()
		var got availability.State
		if err := got.UnmarshalText(b); err != nil || got != s {
			t.Fatalf("%s: got %v err %v", b, got, err)
		}
	}
	var s availability.State
	if err := s.UnmarshalText([]byte("MAYBE")); err == nil {
		t.Fatalf("expected error for unknown state")
	}
}
