package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"flight_board/internal/board"
	"flight_board/internal/kafka"
	"flight_board/internal/metrics"
	"flight_board/internal/models"

	"go.uber.org/zap"
)

// FlightWriter is the write side of the arrivals and departures tables.
// Rows are keyed by flight and scheduled time, so writing the same movement
// twice leaves one row.
type FlightWriter interface {
	UpsertArrivals(ctx context.Context, rows []models.ArrivalRow) error
	UpsertDepartures(ctx context.Context, rows []models.DepartureRow) error
}

// IngestService stores flight movements consumed from Kafka.
type IngestService struct {
	repo   FlightWriter
	loc    *time.Location
	logger *zap.Logger
}

func NewIngestService(repo FlightWriter, loc *time.Location, logger *zap.Logger) *IngestService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestService{repo: repo, loc: loc, logger: logger}
}

// ProcessMovement validates and stores one message. It returns the civil
// date of the movement's estimated time so the caller can drop cached boards.
func (s *IngestService) ProcessMovement(ctx context.Context, message []byte) (string, error) {
	var msg kafka.MovementMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return "", fmt.Errorf("%w: %v", kafka.ErrInvalidMessage, err)
	}
	if err := validateMovement(&msg); err != nil {
		return "", fmt.Errorf("%w: message %q: %v", kafka.ErrInvalidMessage, msg.MessageID, err)
	}

	switch msg.FlightType {
	case models.FlightTypeArrival:
		if err := s.repo.UpsertArrivals(ctx, []models.ArrivalRow{msg.ToArrivalRow()}); err != nil {
			return "", fmt.Errorf("%w: upsert arrival: %v", ErrStorage, err)
		}
	case models.FlightTypeDeparture:
		if err := s.repo.UpsertDepartures(ctx, []models.DepartureRow{msg.ToDepartureRow()}); err != nil {
			return "", fmt.Errorf("%w: upsert departure: %v", ErrStorage, err)
		}
	}

	metrics.IncFlightIngested(msg.FlightType)
	metrics.ObservePassengersCount(msg.NumberOfPassenger)

	var date string
	if msg.EstimatedTime != nil {
		date = board.CivilDateOf(*msg.EstimatedTime, s.loc).String()
	}

	s.logger.Debug("movement stored",
		zap.String("message_id", msg.MessageID),
		zap.String("flight", msg.Flight),
		zap.String("flight_type", msg.FlightType),
		zap.String("date", date),
	)
	return date, nil
}

func validateMovement(m *kafka.MovementMessage) error {
	m.Flight = strings.TrimSpace(m.Flight)
	if m.Flight == "" {
		return fmt.Errorf("flight is required")
	}
	if m.FlightType != models.FlightTypeArrival && m.FlightType != models.FlightTypeDeparture {
		return fmt.Errorf("flight_type must be ARR or DER, got %q", m.FlightType)
	}
	if m.FlightMode != models.FlightModeDomestic && m.FlightMode != models.FlightModeInternational {
		return fmt.Errorf("flight_mode must be DOM or INT, got %q", m.FlightMode)
	}
	if strings.TrimSpace(m.OperationalStatus) == "" {
		return fmt.Errorf("operational_status is required")
	}
	if m.ScheduledTime == nil {
		return fmt.Errorf("scheduled_time is required")
	}
	if m.NumberOfPassenger < 0 {
		return fmt.Errorf("number_of_passenger must be >= 0")
	}
	return nil
}
