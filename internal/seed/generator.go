// Package seed generates synthetic arrivals and departures for local
// development and load testing.
package seed

import (
	"iter"
	"math/rand/v2"
	"slices"
	"strconv"
	"time"

	"flight_board/internal/board"
	"flight_board/internal/models"
)

const (
	MinDailyFlights = 550
	MaxDailyFlights = 620

	// scheduled and estimated times drift up to an hour after the base time
	maxVarianceSeconds = 3600
)

// Day is one generated civil day. Rows are ordered by their base time.
type Day struct {
	Date       board.CivilDate
	Arrivals   []models.ArrivalRow
	Departures []models.DepartureRow
}

func (d Day) Len() int { return len(d.Arrivals) + len(d.Departures) }

// BoardDates returns the sorted civil dates in loc that the day's estimated
// times fall on. Early and late drift can push a flight onto a neighbouring
// date.
func (d Day) BoardDates(loc *time.Location) []string {
	seen := make(map[string]struct{})
	add := func(t *time.Time) {
		if t != nil {
			seen[board.CivilDateOf(*t, loc).String()] = struct{}{}
		}
	}
	for _, a := range d.Arrivals {
		add(a.ETOA)
	}
	for _, dep := range d.Departures {
		add(dep.ETOD)
	}

	dates := make([]string, 0, len(seen))
	for date := range seen {
		dates = append(dates, date)
	}
	slices.Sort(dates)
	return dates
}

type Generator struct {
	rng *rand.Rand
	loc *time.Location

	// seconds already taken per timestamp column
	usedSTOA map[int64]struct{}
	usedETOA map[int64]struct{}
	usedSTOD map[int64]struct{}
	usedETOD map[int64]struct{}
}

// NewGenerator returns a Generator whose output is fully determined by seed.
// Base times are spread over civil days in loc.
func NewGenerator(seed uint64, loc *time.Location) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	return &Generator{
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		loc:      loc,
		usedSTOA: make(map[int64]struct{}),
		usedETOA: make(map[int64]struct{}),
		usedSTOD: make(map[int64]struct{}),
		usedETOD: make(map[int64]struct{}),
	}
}

// Days yields consecutive days starting at start until total flights have
// been generated. The last day is cut short when needed. Stopping the range
// early stops generation.
func (g *Generator) Days(start board.CivilDate, total int) iter.Seq[Day] {
	return func(yield func(Day) bool) {
		for date, count := start, 0; count < total; date = date.AddDays(1) {
			day := g.Day(date, total-count)
			count += day.Len()
			if !yield(day) {
				return
			}
		}
	}
}

// Take stops days after its first n.
func Take(days iter.Seq[Day], n int) iter.Seq[Day] {
	return func(yield func(Day) bool) {
		if n <= 0 {
			return
		}
		i := 0
		for day := range days {
			if !yield(day) {
				return
			}
			if i++; i >= n {
				return
			}
		}
	}
}

// Generate collects Days.
func (g *Generator) Generate(start board.CivilDate, total int) []Day {
	return slices.Collect(g.Days(start, total))
}

// Day generates a single day with at most limit flights. Half of the day's
// flights are arrivals.
func (g *Generator) Day(date board.CivilDate, limit int) Day {
	daily := g.between(MinDailyFlights, MaxDailyFlights)
	arrivals := min(daily/2, max(limit, 0))
	departures := min(daily-daily/2, max(limit-arrivals, 0))

	return Day{
		Date:       date,
		Arrivals:   g.arrivals(date, arrivals),
		Departures: g.departures(date, departures),
	}
}

type draft[T any] struct {
	base time.Time
	row  T
}

func byBase[T any](a, b draft[T]) int { return a.base.Compare(b.base) }

func (g *Generator) arrivals(date board.CivilDate, n int) []models.ArrivalRow {
	drafts := make([]draft[models.ArrivalRow], 0, n)
	for range n {
		base := g.baseTime(date)
		mode := g.flightMode(base)
		airline := g.pick(Airlines)
		city, passengers := g.route(mode)

		stoa := g.unique(g.usedSTOA, base)
		etoa := g.unique(g.usedETOA, base.Add(-g.earlyBy()))

		drafts = append(drafts, draft[models.ArrivalRow]{base: base, row: models.ArrivalRow{
			Flight:            g.flightNumber(airline),
			OperationalStatus: g.status(),
			STOA:              &stoa,
			FlightType:        models.FlightTypeArrival,
			FlightMode:        mode,
			NumberOfPassenger: passengers,
			ETOA:              &etoa,
			ArrivalBeltNo:     ptr(strconv.Itoa(g.between(11, 24))),
			PSTA:              ptr(strconv.Itoa(g.stand())),
			Airline:           ptr(airline),
			Origin:            ptr(city),
		}})
	}

	slices.SortStableFunc(drafts, byBase[models.ArrivalRow])
	rows := make([]models.ArrivalRow, len(drafts))
	for i, d := range drafts {
		rows[i] = d.row
	}
	return rows
}

func (g *Generator) departures(date board.CivilDate, n int) []models.DepartureRow {
	drafts := make([]draft[models.DepartureRow], 0, n)
	for range n {
		base := g.baseTime(date)
		mode := g.flightMode(base)
		airline := g.pick(Airlines)
		city, passengers := g.route(mode)

		stod := g.unique(g.usedSTOD, base)
		etod := g.unique(g.usedETOD, base.Add(-g.earlyBy()))

		drafts = append(drafts, draft[models.DepartureRow]{base: base, row: models.DepartureRow{
			Flight:            g.flightNumber(airline),
			OperationalStatus: g.status(),
			STOD:              &stod,
			FlightType:        models.FlightTypeDeparture,
			FlightMode:        mode,
			NumberOfPassenger: passengers,
			ETOD:              &etod,
			DepBoardingGateNo: ptr(g.gate()),
			PSTD:              ptr(strconv.Itoa(g.stand())),
			Airline:           ptr(airline),
			Destination:       ptr(city),
		}})
	}

	slices.SortStableFunc(drafts, byBase[models.DepartureRow])
	rows := make([]models.DepartureRow, len(drafts))
	for i, d := range drafts {
		rows[i] = d.row
	}
	return rows
}

// baseTime draws a second uniformly from the civil day, inclusive of the
// following midnight.
func (g *Generator) baseTime(date board.CivilDate) time.Time {
	start := time.Date(date.Year, date.Month, date.Day, 0, 0, 0, 0, g.loc)
	end := time.Date(date.Year, date.Month, date.Day+1, 0, 0, 0, 0, g.loc)
	seconds := int64(end.Sub(start) / time.Second)
	return start.Add(time.Duration(g.rng.Int64N(seconds+1)) * time.Second)
}

// flightMode is mostly domestic between 06:00 and 18:00 local time and
// mostly international otherwise.
func (g *Generator) flightMode(base time.Time) string {
	hour := base.In(g.loc).Hour()
	daytime := hour >= 6 && hour < 18
	likely, other := models.FlightModeInternational, models.FlightModeDomestic
	if daytime {
		likely, other = other, likely
	}
	if g.rng.Float64() < 0.8 {
		return likely
	}
	return other
}

func (g *Generator) status() string {
	switch r := g.rng.Float64(); {
	case r < 0.9:
		return models.StatusOperating
	case r < 0.97:
		return models.StatusNotOperating
	default:
		return models.StatusCancelled
	}
}

func (g *Generator) route(mode string) (string, int) {
	cities, lo, hi := DomesticCities, 40, 220
	if mode == models.FlightModeInternational {
		cities, lo, hi = InternationalCities, 150, 250
	}
	city := g.weighted(cities)
	return city.Name, int(float64(g.between(lo, hi)) * city.PassengerModifier)
}

func (g *Generator) weighted(cities []City) City {
	total := 0
	for _, c := range cities {
		total += c.Weight
	}
	r := g.rng.IntN(total)
	for _, c := range cities {
		if r < c.Weight {
			return c
		}
		r -= c.Weight
	}
	return cities[len(cities)-1]
}

func (g *Generator) flightNumber(airline string) string {
	return airline + strconv.Itoa(g.between(1000, 9999))
}

func (g *Generator) stand() int {
	if g.rng.Float64() < 0.7 {
		return g.between(1, 80)
	}
	return g.between(201, 220)
}

func (g *Generator) gate() string {
	if g.rng.Float64() < 0.5 {
		return strconv.Itoa(g.between(1, 20))
	}
	return strconv.Itoa(g.between(20, 30)) + g.pick([]string{"A", "B"})
}

func (g *Generator) earlyBy() time.Duration {
	return time.Duration(g.between(5, 20)) * time.Minute
}

// unique returns base plus a random drift that no earlier call for the same
// column has produced, as a UTC instant.
func (g *Generator) unique(used map[int64]struct{}, base time.Time) time.Time {
	for {
		t := base.Add(time.Duration(g.between(0, maxVarianceSeconds)) * time.Second).Truncate(time.Second)
		if _, taken := used[t.Unix()]; taken {
			continue
		}
		used[t.Unix()] = struct{}{}
		return t.UTC()
	}
}

// between returns a uniform int in [lo, hi].
func (g *Generator) between(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}

func (g *Generator) pick(values []string) string {
	return values[g.rng.IntN(len(values))]
}

func ptr[T any](v T) *T { return &v }
