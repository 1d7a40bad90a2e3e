// Package board holds the timezone, projection and windowing rules behind
// the arrivals, departures and all-flights boards.
package board

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

var ErrInvalidDateFormat = errors.New("invalid date format")

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// CivilDate is a calendar day without a zone attached.
type CivilDate struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseCivilDate accepts YYYY-MM-DD and rejects dates that do not exist
// on the calendar (2025-02-30).
func ParseCivilDate(s string) (CivilDate, error) {
	if !datePattern.MatchString(s) {
		return CivilDate{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return CivilDate{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	return CivilDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// CivilDateOf returns the calendar day t falls on in loc.
func CivilDateOf(t time.Time, loc *time.Location) CivilDate {
	y, m, d := t.In(loc).Date()
	return CivilDate{Year: y, Month: m, Day: d}
}

func (d CivilDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d CivilDate) Before(o CivilDate) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d CivilDate) AddDays(n int) CivilDate {
	t := time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC)
	return CivilDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// DayBoundsUTC returns the UTC instants of 00:00:00.000000 and
// 23:59:59.999999 local time on d. The conversion goes through the zone
// rules of loc, so offsets that change during the year are honored.
func DayBoundsUTC(d CivilDate, loc *time.Location) (start, end time.Time) {
	start = time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc).UTC()
	end = time.Date(d.Year, d.Month, d.Day, 23, 59, 59, 999999000, loc).UTC()
	return start, end
}

// VirtualNow projects the current wall-clock time of day in loc onto d,
// truncated to microseconds.
func VirtualNow(now time.Time, d CivilDate, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(
		d.Year, d.Month, d.Day,
		local.Hour(), local.Minute(), local.Second(),
		local.Nanosecond()/1000*1000,
		loc,
	)
}
