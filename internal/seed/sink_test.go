package seed

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"flight_board/internal/cache"
	"flight_board/internal/kafka"
	"flight_board/internal/models"
)

type recordingWriter struct {
	arrivals, departures int
	err                  error
}

func (w *recordingWriter) UpsertArrivals(_ context.Context, rows []models.ArrivalRow) error {
	if w.err != nil {
		return w.err
	}
	w.arrivals += len(rows)
	return nil
}

func (w *recordingWriter) UpsertDepartures(_ context.Context, rows []models.DepartureRow) error {
	w.departures += len(rows)
	return nil
}

type recordingSender struct {
	msgs []*kafka.MovementMessage
}

func (s *recordingSender) SendMovements(msgs []*kafka.MovementMessage) error {
	s.msgs = append(s.msgs, msgs...)
	return nil
}

type recordingCache struct {
	deleted []string
}

func (c *recordingCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (c *recordingCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (c *recordingCache) Close() error                                             { return nil }
func (c *recordingCache) Del(_ context.Context, keys ...string) error {
	c.deleted = append(c.deleted, keys...)
	return nil
}

func feed(days []Day) <-chan Day {
	ch := make(chan Day, len(days))
	for _, d := range days {
		ch <- d
	}
	close(ch)
	return ch
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not finish")
		return nil
	}
}

func TestWorkerWritesEveryDay(t *testing.T) {
	days := NewGenerator(1, ist).Generate(startDate, 1500)
	w := &recordingWriter{}

	if err := wait(t, StartWorker(context.Background(), feed(days), NewStoreSink(w, nil, ist), nil)); err != nil {
		t.Fatalf("worker: %v", err)
	}
	if w.arrivals+w.departures != 1500 {
		t.Errorf("wrote %d arrivals and %d departures", w.arrivals, w.departures)
	}
}

func TestWorkerStopsOnError(t *testing.T) {
	days := NewGenerator(1, ist).Generate(startDate, 1500)
	w := &recordingWriter{err: errors.New("disk full")}

	err := wait(t, StartWorker(context.Background(), feed(days), NewStoreSink(w, nil, ist), nil))
	if !errors.Is(err, w.err) {
		t.Fatalf("expected disk full, got %v", err)
	}
}

func TestWorkerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := wait(t, StartWorker(ctx, make(chan Day), NewStoreSink(&recordingWriter{}, nil, ist), nil))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPublishSink(t *testing.T) {
	day := NewGenerator(2, ist).Day(startDate, 10)
	s := &recordingSender{}

	if err := NewPublishSink(s).WriteDay(context.Background(), day); err != nil {
		t.Fatal(err)
	}
	if len(s.msgs) != 10 {
		t.Fatalf("published %d messages", len(s.msgs))
	}

	ids := map[string]bool{}
	for i, m := range s.msgs {
		if m.MessageID == "" || ids[m.MessageID] {
			t.Fatalf("message %d has id %q", i, m.MessageID)
		}
		ids[m.MessageID] = true

		want := models.FlightTypeArrival
		if i >= len(day.Arrivals) {
			want = models.FlightTypeDeparture
		}
		if m.FlightType != want {
			t.Errorf("message %d: flight type %q, want %q", i, m.FlightType, want)
		}
	}
}

func TestStoreSinkInvalidatesSeededDates(t *testing.T) {
	day := NewGenerator(4, ist).Day(startDate, 1<<30)
	c := &recordingCache{}

	if err := NewStoreSink(&recordingWriter{}, c, ist).WriteDay(context.Background(), day); err != nil {
		t.Fatalf("WriteDay: %v", err)
	}

	dates := day.BoardDates(ist)
	if !slices.Contains(dates, "2025-05-20") {
		t.Fatalf("board dates %v should include the seeded day", dates)
	}
	if len(c.deleted) != len(dates) {
		t.Fatalf("deleted %v, want one key per date in %v", c.deleted, dates)
	}
	for i, d := range dates {
		if c.deleted[i] != cache.AllFlightsKey(d) {
			t.Errorf("key %d: got %q, want %q", i, c.deleted[i], cache.AllFlightsKey(d))
		}
	}
}

func TestStoreSinkSkipsCacheOnWriteFailure(t *testing.T) {
	day := NewGenerator(4, ist).Day(startDate, 10)
	c := &recordingCache{}

	err := NewStoreSink(&recordingWriter{err: errors.New("db down")}, c, ist).WriteDay(context.Background(), day)
	if err == nil || len(c.deleted) != 0 {
		t.Errorf("failed writes must not invalidate: err=%v deleted=%v", err, c.deleted)
	}
}

func TestRunWritesThePlan(t *testing.T) {
	w := &recordingWriter{}
	g := NewGenerator(6, ist)

	if err := Run(context.Background(), g.Days(startDate, 1234), NewStoreSink(w, nil, ist), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if w.arrivals+w.departures != 1234 {
		t.Errorf("wrote %d flights", w.arrivals+w.departures)
	}
}

func TestRunReturnsWriteError(t *testing.T) {
	w := &recordingWriter{err: errors.New("disk full")}
	g := NewGenerator(6, ist)

	err := Run(context.Background(), Take(g.Days(startDate, 1<<30), 10), NewStoreSink(w, nil, ist), nil)
	if !errors.Is(err, w.err) {
		t.Fatalf("expected disk full, got %v", err)
	}
}
