package metrics

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StatusCounter reports row counts per operational_status for a table.
type StatusCounter interface {
	CountByStatus(ctx context.Context, table string) (map[string]int64, error)
}

var collectedTables = []string{"arrivals", "departures"}

func StartDBCollectors(ctx context.Context, counter StatusCounter, interval time.Duration, logger *zap.Logger) {
	if counter == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		updateDBGauges(ctx, counter, logger)
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				updateDBGauges(ctx, counter, logger)
			}
		}
	}()
}

func updateDBGauges(ctx context.Context, counter StatusCounter, logger *zap.Logger) {
	for _, table := range collectedTables {
		counts, err := counter.CountByStatus(ctx, table)
		if err != nil {
			logger.Warn("metrics db count", zap.String("table", table), zap.Error(err))
			continue
		}
		for status, n := range counts {
			SetFlightRowCount(table, status, n)
		}
	}
}
