// seed fills the arrivals and departures tables with synthetic flights,
// either directly or by publishing movement messages for the ingest
// consumer (--publish).
package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flight_board/internal/board"
	"flight_board/internal/cache"
	"flight_board/internal/config"
	"flight_board/internal/kafka"
	"flight_board/internal/logger"
	"flight_board/internal/repository"
	"flight_board/internal/seed"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		start   string
		total   int
		days    int
		seedVal uint64
		publish bool
	)

	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flagSet.StringVar(&start, "start", "", "first day to generate, YYYY-MM-DD (default: today in DISPLAY_TZ)")
	flagSet.IntVar(&total, "total", 50000, "number of flights to generate")
	flagSet.IntVar(&days, "days", 0, "generate whole days instead of --total flights")
	flagSet.Uint64Var(&seedVal, "seed", uint64(time.Now().UnixNano()), "random seed")
	flagSet.BoolVar(&publish, "publish", false, "publish to KAFKA_TOPIC instead of writing to the database")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	first := board.CivilDateOf(time.Now(), cfg.Location)
	if start != "" {
		if first, err = board.ParseCivilDate(start); err != nil {
			return fmt.Errorf("--start: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink, closeSink, err := openSink(ctx, cfg, publish)
	if err != nil {
		return err
	}
	defer closeSink()

	log.Info("seeding",
		zap.Stringer("start", first),
		zap.Int("total", total),
		zap.Int("days", days),
		zap.Uint64("seed", seedVal),
		zap.Bool("publish", publish),
	)

	gen := seed.NewGenerator(seedVal, cfg.Location)
	plan := gen.Days(first, total)
	if days > 0 {
		plan = seed.Take(gen.Days(first, math.MaxInt), days)
	}

	return seed.Run(ctx, plan, sink, log)
}

func openSink(ctx context.Context, cfg *config.Config, publish bool) (seed.Sink, func(), error) {
	if publish {
		if !cfg.IngestEnabled() {
			return nil, nil, errors.New("--publish needs KAFKA_BROKERS")
		}
		producer, err := kafka.NewSyncProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, nil, err
		}
		return seed.NewPublishSink(producer), func() { _ = producer.Close() }, nil
	}

	pool, err := repository.NewPool(ctx, cfg.DBDSN, cfg.DBPool)
	if err != nil {
		return nil, nil, fmt.Errorf("db: %w", err)
	}

	// boards the server has cached for the seeded dates are dropped
	var c cache.Cache
	closeAll := pool.Close
	if cfg.CacheEnabled() {
		rc := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			pool.Close()
			_ = rc.Close()
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		c = rc
		closeAll = func() {
			_ = rc.Close()
			pool.Close()
		}
	}

	return seed.NewStoreSink(repository.NewFlightRepository(pool), c, cfg.Location), closeAll, nil
}
