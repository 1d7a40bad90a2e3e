package cache

import (
	"context"
	"strconv"
	"strings"
	"time"

	"flight_board/internal/metrics"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func StartRedisSizeCollector(ctx context.Context, client *redis.Client, interval time.Duration, logger *zap.Logger) {
	if client == nil {
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

		update := func() {
			start := time.Now()
			info, err := client.Info(ctx, "memory").Result()
			metrics.ObserveCacheRequest(opInfo, KindOther, time.Since(start), err)
			if err != nil {
				logger.Debug("redis info memory", zap.Error(err))
				return
			}
			if n, ok := usedMemory(info); ok {
				metrics.SetRedisUsedMemory(n)
			}
		}

		update()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				update()
			}
		}
	}()
}

// usedMemory extracts used_memory:<bytes> from an INFO memory reply.
func usedMemory(info string) (int64, bool) {
	for _, line := range strings.Split(info, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, "used_memory:"); ok {
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			return n, err == nil
		}
	}
	return 0, false
}
