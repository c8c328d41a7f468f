package reservation

import (
	"time"

	"golfwatch/internal/forecast"
)

// Kind classifies the outcome of matching the reserved date against the
// forecast horizon.
type Kind int

const (
	// NoReservation means no reserved date is set.
	NoReservation Kind = iota
	// OutOfHorizon means a date is set but the table does not cover it.
	OutOfHorizon
	// Matched means the table contains the reserved date.
	Matched
)

func (k Kind) String() string {
	switch k {
	case NoReservation:
		return "no_reservation"
	case OutOfHorizon:
		return "out_of_horizon"
	case Matched:
		return "matched"
	default:
		return "unknown"
	}
}

// Match is the result of a reservation check. Day is meaningful only when
// Kind is Matched.
type Match struct {
	Kind Kind
	Day  forecast.EvaluatedDay
}

// NeedsAlert reports whether a notification must fire: the reserved day is
// inside the horizon and its verdict is unplayable. Playable matches and
// non-matches are informational only.
func (m Match) NeedsAlert() bool {
	return m.Kind == Matched && !m.Day.Verdict.Playable
}

// MatchDate locates the reserved date in the evaluated table by exact
// calendar-date equality. Dates are unique within a table, so the first hit
// is the only one.
func MatchDate(table forecast.Table, reserved time.Time, hasReservation bool) Match {
	if !hasReservation {
		return Match{Kind: NoReservation}
	}
	for _, day := range table {
		if sameDay(day.Date, reserved) {
			return Match{Kind: Matched, Day: day}
		}
	}
	return Match{Kind: OutOfHorizon}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
