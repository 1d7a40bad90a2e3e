package board

import (
	"strconv"
	"strings"
	"time"

	"flight_board/internal/models"
)

// TimeMode selects how display timestamps are serialized. The all-flights
// board uses LocalTime, the windowed boards use OffsetTime.
type TimeMode int

const (
	LocalTime  TimeMode = iota // 2025-05-20T01:30:00
	OffsetTime                 // 2025-05-20T01:30:00+0530
)

const (
	localLayout  = "2006-01-02T15:04:05"
	offsetLayout = "2006-01-02T15:04:05-0700"
)

func (m TimeMode) format(t time.Time) string {
	if m == OffsetTime {
		return t.Format(offsetLayout)
	}
	return t.Format(localLayout)
}

// Flight is a projected arrival or departure with its timestamps already in
// the display zone. Type decides which wire fields the paired values map to.
type Flight struct {
	Type       string
	Flight     string
	Status     string
	Mode       string
	Passengers int
	Airline    *string

	Scheduled *time.Time
	Effective time.Time

	Stand      *int
	BeltOrGate *string
	Place      *string
}

// ProjectArrival converts an arrivals row. ok is false when the row has no
// etoa and therefore cannot be placed on a board.
func ProjectArrival(row models.ArrivalRow, loc *time.Location) (f Flight, ok bool) {
	if row.ETOA == nil {
		return Flight{}, false
	}
	return Flight{
		Type:       models.FlightTypeArrival,
		Flight:     row.Flight,
		Status:     row.OperationalStatus,
		Mode:       row.FlightMode,
		Passengers: max(row.NumberOfPassenger, 0),
		Airline:    row.Airline,
		Scheduled:  inZone(row.STOA, loc),
		Effective:  row.ETOA.In(loc),
		Stand:      NormalizeStand(row.PSTA),
		BeltOrGate: row.ArrivalBeltNo,
		Place:      row.Origin,
	}, true
}

// ProjectDeparture converts a departures row. ok is false without etod.
func ProjectDeparture(row models.DepartureRow, loc *time.Location) (f Flight, ok bool) {
	if row.ETOD == nil {
		return Flight{}, false
	}
	return Flight{
		Type:       models.FlightTypeDeparture,
		Flight:     row.Flight,
		Status:     row.OperationalStatus,
		Mode:       row.FlightMode,
		Passengers: max(row.NumberOfPassenger, 0),
		Airline:    row.Airline,
		Scheduled:  inZone(row.STOD, loc),
		Effective:  row.ETOD.In(loc),
		Stand:      NormalizeStand(row.PSTD),
		BeltOrGate: row.DepBoardingGateNo,
		Place:      row.Destination,
	}, true
}

func ProjectArrivals(rows []models.ArrivalRow, loc *time.Location) []Flight {
	out := make([]Flight, 0, len(rows))
	for _, row := range rows {
		if f, ok := ProjectArrival(row, loc); ok {
			out = append(out, f)
		}
	}
	return out
}

func ProjectDepartures(rows []models.DepartureRow, loc *time.Location) []Flight {
	out := make([]Flight, 0, len(rows))
	for _, row := range rows {
		if f, ok := ProjectDeparture(row, loc); ok {
			out = append(out, f)
		}
	}
	return out
}

var standPlaceholders = map[string]struct{}{
	"":     {},
	"-":    {},
	"None": {},
}

// NormalizeStand returns the stand as a positive integer, or nil for
// anything else. It never fails.
func NormalizeStand(raw *string) *int {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if _, ok := standPlaceholders[s]; ok {
		return nil
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

// Record flattens f into the wire shape.
func (f Flight) Record(mode TimeMode) models.FlightRecord {
	rec := models.FlightRecord{
		Flight:            f.Flight,
		OperationalStatus: f.Status,
		FlightType:        f.Type,
		FlightMode:        f.Mode,
		NumberOfPassenger: f.Passengers,
		Airline:           f.Airline,
	}

	var scheduled *string
	if f.Scheduled != nil {
		s := mode.format(*f.Scheduled)
		scheduled = &s
	}
	effective := mode.format(f.Effective)

	if f.Type == models.FlightTypeDeparture {
		rec.STOD = scheduled
		rec.ETOD = &effective
		rec.PSTD = f.Stand
		rec.DepBoardingGateNo = f.BeltOrGate
		rec.Destination = f.Place
		return rec
	}

	rec.STOA = scheduled
	rec.ETOA = &effective
	rec.PSTA = f.Stand
	rec.ArrivalBeltNo = f.BeltOrGate
	rec.Origin = f.Place
	return rec
}

// Records flattens flights keeping their order. The result is never nil.
func Records(flights []Flight, mode TimeMode) []models.FlightRecord {
	out := make([]models.FlightRecord, 0, len(flights))
	for _, f := range flights {
		out = append(out, f.Record(mode))
	}
	return out
}

func inZone(t *time.Time, loc *time.Location) *time.Time {
	if t == nil {
		return nil
	}
	local := t.In(loc)
	return &local
}
