package board

import (
	"slices"
	"strings"
	"time"

	"flight_board/internal/models"
)

const (
	DefaultTrailingCap = 30
	DefaultLeadingCap  = 60
)

// Window is the result of SelectWindow. Past and Upcoming are each sorted
// ascending by effective time; Total counts every candidate before capping.
type Window struct {
	Past     []Flight
	Upcoming []Flight
	Total    int
}

// Flights returns Past followed by Upcoming.
func (w Window) Flights() []Flight {
	out := make([]Flight, 0, len(w.Past)+len(w.Upcoming))
	out = append(out, w.Past...)
	return append(out, w.Upcoming...)
}

// SelectWindow keeps the trailingCap most recent flights before now and the
// leadingCap soonest flights at or after now.
func SelectWindow(flights []Flight, now time.Time, trailingCap, leadingCap int) Window {
	trailingCap = max(trailingCap, 0)
	leadingCap = max(leadingCap, 0)

	var past, upcoming []Flight
	for _, f := range flights {
		if f.Effective.Before(now) {
			past = append(past, f)
		} else {
			upcoming = append(upcoming, f)
		}
	}

	slices.SortStableFunc(past, byEffective)
	slices.SortStableFunc(upcoming, byEffective)

	if len(past) > trailingCap {
		past = past[len(past)-trailingCap:]
	}
	if len(upcoming) > leadingCap {
		upcoming = upcoming[:leadingCap]
	}

	return Window{
		Past:     past,
		Upcoming: upcoming,
		Total:    len(flights),
	}
}

func byEffective(a, b Flight) int {
	return a.Effective.Compare(b.Effective)
}

// IsOperating reports whether status is anything other than "not operating",
// compared case-insensitively.
func IsOperating(status string) bool {
	return !strings.EqualFold(strings.TrimSpace(status), models.StatusNotOperating)
}

// OnDate keeps the flights whose effective time falls on d in loc.
func OnDate(flights []Flight, d CivilDate, loc *time.Location) []Flight {
	out := make([]Flight, 0, len(flights))
	for _, f := range flights {
		if CivilDateOf(f.Effective, loc) == d {
			out = append(out, f)
		}
	}
	return out
}

// Operating drops flights marked as not operating.
func Operating(flights []Flight) []Flight {
	out := make([]Flight, 0, len(flights))
	for _, f := range flights {
		if IsOperating(f.Status) {
			out = append(out, f)
		}
	}
	return out
}
