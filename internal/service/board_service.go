package service

import (
	"context"
	"fmt"
	"time"

	"flight_board/internal/board"
	"flight_board/internal/metrics"
	"flight_board/internal/models"

	"go.uber.org/zap"
)

const PastDatesMessage = "Past dates are not available"

const (
	EndpointArrivals   = "arrivals"
	EndpointDepartures = "departures"
	EndpointAllFlights = "all_flights"
)

// FlightStore is the read side of the arrivals and departures tables.
type FlightStore interface {
	ArrivalsBetween(ctx context.Context, from, to time.Time) ([]models.ArrivalRow, error)
	DeparturesBetween(ctx context.Context, from, to time.Time) ([]models.DepartureRow, error)
}

type BoardConfig struct {
	Location     *time.Location
	TrailingCap  int
	LeadingCap   int
	QueryTimeout time.Duration
	Now          func() time.Time
}

type BoardService struct {
	store        FlightStore
	loc          *time.Location
	trailingCap  int
	leadingCap   int
	queryTimeout time.Duration
	now          func() time.Time
	logger       *zap.Logger
}

func NewBoardService(store FlightStore, cfg BoardConfig, logger *zap.Logger) *BoardService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BoardService{
		store:        store,
		loc:          cfg.Location,
		trailingCap:  max(cfg.TrailingCap, 0),
		leadingCap:   max(cfg.LeadingCap, 0),
		queryTimeout: cfg.QueryTimeout,
		now:          cfg.Now,
		logger:       logger,
	}
}

func (s *BoardService) Location() *time.Location { return s.loc }

// ResolveDate parses raw as YYYY-MM-DD; an empty string means today in the
// display zone.
func (s *BoardService) ResolveDate(raw string) (board.CivilDate, error) {
	if raw == "" {
		return board.CivilDateOf(s.now(), s.loc), nil
	}
	return board.ParseCivilDate(raw)
}

// Arrivals returns the windowed arrivals board for the date.
func (s *BoardService) Arrivals(ctx context.Context, dateRaw string) (*models.BoardResponse, error) {
	return s.windowed(ctx, EndpointArrivals, dateRaw, func(ctx context.Context, from, to time.Time) ([]board.Flight, error) {
		rows, err := s.store.ArrivalsBetween(ctx, from, to)
		if err != nil {
			return nil, err
		}
		return board.ProjectArrivals(rows, s.loc), nil
	})
}

// Departures returns the windowed departures board for the date.
func (s *BoardService) Departures(ctx context.Context, dateRaw string) (*models.BoardResponse, error) {
	return s.windowed(ctx, EndpointDepartures, dateRaw, func(ctx context.Context, from, to time.Time) ([]board.Flight, error) {
		rows, err := s.store.DeparturesBetween(ctx, from, to)
		if err != nil {
			return nil, err
		}
		return board.ProjectDepartures(rows, s.loc), nil
	})
}

type fetchFunc func(ctx context.Context, from, to time.Time) ([]board.Flight, error)

func (s *BoardService) windowed(ctx context.Context, endpoint, dateRaw string, fetch fetchFunc) (*models.BoardResponse, error) {
	date, err := s.ResolveDate(dateRaw)
	if err != nil {
		metrics.IncBoardQuery(endpoint, "invalid_date")
		return nil, err
	}

	now := s.now()
	if date.Before(board.CivilDateOf(now, s.loc)) {
		metrics.IncBoardQuery(endpoint, "past_date")
		return &models.BoardResponse{
			Flights: []models.FlightRecord{},
			Total:   0,
			Message: PastDatesMessage,
		}, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	from, to := board.DayBoundsUTC(date, s.loc)
	flights, err := fetch(ctx, from, to)
	if err != nil {
		metrics.IncBoardQuery(endpoint, "error")
		return nil, fmt.Errorf("%w: fetch %s: %v", ErrStorage, endpoint, err)
	}

	candidates := board.Operating(board.OnDate(flights, date, s.loc))
	window := board.SelectWindow(candidates, board.VirtualNow(now, date, s.loc), s.trailingCap, s.leadingCap)

	metrics.IncBoardQuery(endpoint, "ok")
	metrics.ObserveWindow(endpoint, len(window.Past), len(window.Upcoming), window.Total)
	s.logger.Debug("board window",
		zap.String("endpoint", endpoint),
		zap.Stringer("date", date),
		zap.Int("past", len(window.Past)),
		zap.Int("upcoming", len(window.Upcoming)),
		zap.Int("total", window.Total),
	)

	return &models.BoardResponse{
		Flights: board.Records(window.Flights(), board.OffsetTime),
		Total:   window.Total,
	}, nil
}

// AllFlights returns every arrival and departure whose effective time falls
// on the date, unordered and uncapped. Past dates are allowed.
func (s *BoardService) AllFlights(ctx context.Context, dateRaw string) (*models.AllFlightsResponse, error) {
	date, err := s.ResolveDate(dateRaw)
	if err != nil {
		metrics.IncBoardQuery(EndpointAllFlights, "invalid_date")
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	from, to := board.DayBoundsUTC(date, s.loc)

	arrivals, err := s.store.ArrivalsBetween(ctx, from, to)
	if err != nil {
		metrics.IncBoardQuery(EndpointAllFlights, "error")
		return nil, fmt.Errorf("%w: fetch arrivals: %v", ErrStorage, err)
	}
	departures, err := s.store.DeparturesBetween(ctx, from, to)
	if err != nil {
		metrics.IncBoardQuery(EndpointAllFlights, "error")
		return nil, fmt.Errorf("%w: fetch departures: %v", ErrStorage, err)
	}

	flights := append(board.ProjectArrivals(arrivals, s.loc), board.ProjectDepartures(departures, s.loc)...)
	flights = board.OnDate(flights, date, s.loc)

	metrics.IncBoardQuery(EndpointAllFlights, "ok")
	metrics.ObserveDayFlights(EndpointAllFlights, len(flights))
	s.logger.Debug("all flights",
		zap.Stringer("date", date),
		zap.Int("arrivals", len(arrivals)),
		zap.Int("departures", len(departures)),
		zap.Int("returned", len(flights)),
	)

	return &models.AllFlightsResponse{
		Flights: board.Records(flights, board.LocalTime),
	}, nil
}

func (s *BoardService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}
