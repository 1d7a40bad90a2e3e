package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"flight_board/internal/kafka"
	"flight_board/internal/models"

	"go.uber.org/zap"
)

// fakeWriter keeps one row per (flight, scheduled time), like the unique
// keys on the real tables.
type fakeWriter struct {
	arrivals   []models.ArrivalRow
	departures []models.DepartureRow
	err        error
}

func (w *fakeWriter) UpsertArrivals(_ context.Context, rows []models.ArrivalRow) error {
	if w.err != nil {
		return w.err
	}
next:
	for _, r := range rows {
		for i, have := range w.arrivals {
			if have.Flight == r.Flight && have.STOA.Equal(*r.STOA) {
				w.arrivals[i] = r
				continue next
			}
		}
		w.arrivals = append(w.arrivals, r)
	}
	return nil
}

func (w *fakeWriter) UpsertDepartures(_ context.Context, rows []models.DepartureRow) error {
	if w.err != nil {
		return w.err
	}
next:
	for _, r := range rows {
		for i, have := range w.departures {
			if have.Flight == r.Flight && have.STOD.Equal(*r.STOD) {
				w.departures[i] = r
				continue next
			}
		}
		w.departures = append(w.departures, r)
	}
	return nil
}

func encode(t *testing.T, m *kafka.MovementMessage) []byte {
	t.Helper()
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestProcessMovement(t *testing.T) {
	w := &fakeWriter{}
	svc := NewIngestService(w, ist, zap.NewNop())

	stoa := time.Date(2025, time.May, 19, 20, 10, 0, 0, time.UTC)
	etoa := time.Date(2025, time.May, 19, 20, 0, 0, 0, time.UTC)
	stand := "12"
	msg := &kafka.MovementMessage{
		MessageID:         "m-1",
		FlightType:        models.FlightTypeArrival,
		Flight:            " 6E1234 ",
		OperationalStatus: models.StatusOperating,
		FlightMode:        models.FlightModeDomestic,
		NumberOfPassenger: 150,
		ScheduledTime:     &stoa,
		EstimatedTime:     &etoa,
		Stand:             &stand,
	}

	date, err := svc.ProcessMovement(context.Background(), encode(t, msg))
	if err != nil {
		t.Fatalf("ProcessMovement: %v", err)
	}
	if date != "2025-05-20" {
		t.Errorf("affected date: expected 2025-05-20, got %q", date)
	}
	if len(w.arrivals) != 1 || w.arrivals[0].Flight != "6E1234" || *w.arrivals[0].PSTA != "12" {
		t.Errorf("stored arrivals: %+v", w.arrivals)
	}

	msg.FlightType = models.FlightTypeDeparture
	msg.EstimatedTime = nil
	date, err = svc.ProcessMovement(context.Background(), encode(t, msg))
	if err != nil {
		t.Fatalf("ProcessMovement departure: %v", err)
	}
	if date != "" || len(w.departures) != 1 {
		t.Errorf("departure without etod: date=%q stored=%d", date, len(w.departures))
	}
}

func TestProcessMovementRejectsInvalid(t *testing.T) {
	svc := NewIngestService(&fakeWriter{}, ist, zap.NewNop())
	std := time.Date(2025, time.May, 20, 6, 0, 0, 0, time.UTC)

	bad := []*kafka.MovementMessage{
		{FlightType: "ARR", Flight: "", FlightMode: "DOM", OperationalStatus: "Operating"},
		{FlightType: "XXX", Flight: "AI1", FlightMode: "DOM", OperationalStatus: "Operating"},
		{FlightType: "ARR", Flight: "AI1", FlightMode: "SPACE", OperationalStatus: "Operating"},
		{FlightType: "ARR", Flight: "AI1", FlightMode: "DOM", OperationalStatus: " "},
		{FlightType: "DER", Flight: "AI1", FlightMode: "INT", OperationalStatus: "Operating", NumberOfPassenger: -1, ScheduledTime: &std},
		{FlightType: "DER", Flight: "AI1", FlightMode: "INT", OperationalStatus: "Operating"},
	}
	for i, m := range bad {
		if _, err := svc.ProcessMovement(context.Background(), encode(t, m)); !errors.Is(err, kafka.ErrInvalidMessage) {
			t.Errorf("case %d: expected ErrInvalidMessage, got %v", i, err)
		}
	}

	if _, err := svc.ProcessMovement(context.Background(), []byte("{not json")); !errors.Is(err, kafka.ErrInvalidMessage) {
		t.Errorf("malformed json: expected ErrInvalidMessage, got %v", err)
	}
}

func TestProcessMovementStorageFailureIsRetryable(t *testing.T) {
	svc := NewIngestService(&fakeWriter{err: errors.New("db down")}, ist, zap.NewNop())
	std := time.Date(2025, time.May, 20, 6, 0, 0, 0, time.UTC)
	msg := &kafka.MovementMessage{FlightType: "DER", Flight: "UK9", FlightMode: "DOM", OperationalStatus: "Operating", ScheduledTime: &std}

	_, err := svc.ProcessMovement(context.Background(), encode(t, msg))
	if !errors.Is(err, ErrStorage) || errors.Is(err, kafka.ErrInvalidMessage) {
		t.Errorf("expected a retryable storage error, got %v", err)
	}
}

func TestProcessMovementRedeliveryKeepsOneRow(t *testing.T) {
	w := &fakeWriter{}
	svc := NewIngestService(w, ist, zap.NewNop())

	std := time.Date(2025, time.May, 20, 6, 0, 0, 0, time.UTC)
	etd := std.Add(-10 * time.Minute)
	msg := &kafka.MovementMessage{
		MessageID:         "m-1",
		FlightType:        models.FlightTypeDeparture,
		Flight:            "EK501",
		OperationalStatus: models.StatusOperating,
		FlightMode:        models.FlightModeInternational,
		NumberOfPassenger: 250,
		ScheduledTime:     &std,
		EstimatedTime:     &etd,
	}
	payload := encode(t, msg)

	for range 2 {
		if _, err := svc.ProcessMovement(context.Background(), payload); err != nil {
			t.Fatalf("ProcessMovement: %v", err)
		}
	}
	if len(w.departures) != 1 {
		t.Fatalf("same message delivered twice stored %d rows", len(w.departures))
	}

	// a revised estimate for the same flight replaces the row
	revised := std.Add(25 * time.Minute)
	msg.MessageID = "m-2"
	msg.EstimatedTime = &revised
	if _, err := svc.ProcessMovement(context.Background(), encode(t, msg)); err != nil {
		t.Fatalf("ProcessMovement revised: %v", err)
	}
	if len(w.departures) != 1 || !w.departures[0].ETOD.Equal(revised) {
		t.Errorf("revised estimate should update the row, got %+v", w.departures)
	}
}
