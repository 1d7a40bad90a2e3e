package seed

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"flight_board/internal/cache"
	"flight_board/internal/kafka"
	"flight_board/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sink persists generated days.
type Sink interface {
	WriteDay(ctx context.Context, day Day) error
}

// RowWriter is the write side of the flight tables.
type RowWriter interface {
	UpsertArrivals(ctx context.Context, rows []models.ArrivalRow) error
	UpsertDepartures(ctx context.Context, rows []models.DepartureRow) error
}

// MovementSender publishes movement messages.
type MovementSender interface {
	SendMovements(msgs []*kafka.MovementMessage) error
}

// StoreSink writes rows straight into the flight tables and drops the cached
// boards of every date the rows land on. The ingest consumer does the same
// for published rows.
type StoreSink struct {
	w     RowWriter
	cache cache.Cache
	loc   *time.Location
}

// NewStoreSink returns a sink over w. c may be nil when no cache is running.
func NewStoreSink(w RowWriter, c cache.Cache, loc *time.Location) *StoreSink {
	if loc == nil {
		loc = time.UTC
	}
	return &StoreSink{w: w, cache: c, loc: loc}
}

func (s *StoreSink) WriteDay(ctx context.Context, day Day) error {
	if err := s.w.UpsertArrivals(ctx, day.Arrivals); err != nil {
		return fmt.Errorf("upsert arrivals for %s: %w", day.Date, err)
	}
	if err := s.w.UpsertDepartures(ctx, day.Departures); err != nil {
		return fmt.Errorf("upsert departures for %s: %w", day.Date, err)
	}
	if err := cache.InvalidateDates(ctx, s.cache, "seed", day.BoardDates(s.loc)...); err != nil {
		return fmt.Errorf("seeded %s: %w", day.Date, err)
	}
	return nil
}

// PublishSink sends every row as a movement message so that the ingest
// consumer stores it.
type PublishSink struct {
	sender MovementSender
}

func NewPublishSink(sender MovementSender) *PublishSink { return &PublishSink{sender: sender} }

func (s *PublishSink) WriteDay(_ context.Context, day Day) error {
	msgs := make([]*kafka.MovementMessage, 0, day.Len())
	for _, a := range day.Arrivals {
		msgs = append(msgs, kafka.NewArrivalMessage(uuid.NewString(), a))
	}
	for _, d := range day.Departures {
		msgs = append(msgs, kafka.NewDepartureMessage(uuid.NewString(), d))
	}
	if err := s.sender.SendMovements(msgs); err != nil {
		return fmt.Errorf("publish %s: %w", day.Date, err)
	}
	return nil
}

// StartWorker drains days from ch into sink on its own goroutine. The
// returned channel yields the first error, or nil once ch is closed and
// every day has been written. Cancelling ctx stops the worker.
func StartWorker(ctx context.Context, ch <-chan Day, sink Sink, logger *zap.Logger) <-chan error {
	if logger == nil {
		logger = zap.NewNop()
	}

	done := make(chan error, 1)
	go func() {
		defer close(done)

		written := 0
		for {
			select {
			case <-ctx.Done():
				done <- ctx.Err()
				return
			case day, ok := <-ch:
				if !ok {
					logger.Info("seed finished", zap.Int("flights", written))
					done <- nil
					return
				}
				if err := sink.WriteDay(ctx, day); err != nil {
					logger.Error("seed day failed", zap.Stringer("date", day.Date), zap.Error(err))
					done <- err
					return
				}
				written += day.Len()
				logger.Info("seeded day",
					zap.Stringer("date", day.Date),
					zap.Int("arrivals", len(day.Arrivals)),
					zap.Int("departures", len(day.Departures)),
					zap.Int("total", written),
				)
			}
		}
	}()
	return done
}

// Run writes every day of days through sink on a worker goroutine and
// returns once the last day is written or the first write fails.
func Run(ctx context.Context, days iter.Seq[Day], sink Sink, logger *zap.Logger) error {
	ch := make(chan Day)
	done := StartWorker(ctx, ch, sink, logger)

	for day := range days {
		select {
		case ch <- day:
		case err := <-done:
			if err == nil {
				err = errors.New("seed worker stopped early")
			}
			return err
		}
	}
	close(ch)

	return <-done
}
