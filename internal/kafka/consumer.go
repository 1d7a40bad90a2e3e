package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flight_board/internal/cache"
	"flight_board/internal/metrics"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// MessageProcessor stores one movement and returns the civil date
// (YYYY-MM-DD) whose board it changed, or "" when unknown.
type MessageProcessor interface {
	ProcessMovement(ctx context.Context, message []byte) (string, error)
}

type Consumer struct {
	group   sarama.ConsumerGroup
	topic   string
	handler sarama.ConsumerGroupHandler
	logger  *zap.Logger
}

func NewConsumer(
	brokers []string,
	groupID string,
	topic string,
	processor MessageProcessor,
	c cache.Cache,
	logger *zap.Logger,
) (*Consumer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg := sarama.NewConfig()

	cfg.Consumer.Return.Errors = true
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	// offsets are committed by hand after a message is stored
	cfg.Consumer.Offsets.AutoCommit.Enable = false

	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{
		sarama.NewBalanceStrategyRange(),
	}
	cfg.Consumer.Group.Session.Timeout = 30 * time.Second
	cfg.Consumer.Group.Heartbeat.Interval = 3 * time.Second

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, fmt.Errorf("create consumer group: %w", err)
	}

	return &Consumer{
		group:   group,
		topic:   topic,
		handler: newMovementHandler(processor, c, logger),
		logger:  logger,
	}, nil
}

func (c *Consumer) Start(ctx context.Context) error {
	go func() {
		for err := range c.group.Errors() {
			c.logger.Error("consumer group error", zap.Error(err))
			metrics.IncKafkaError("consumer", "group")
		}
	}()

	for {
		err := c.group.Consume(ctx, []string{c.topic}, c.handler)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("consume loop error", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type movementHandler struct {
	processor MessageProcessor
	logger    *zap.Logger
	cache     cache.Cache
	backoff   func(attempt int) time.Duration
}

func newMovementHandler(processor MessageProcessor, c cache.Cache, logger *zap.Logger) *movementHandler {
	return &movementHandler{
		processor: processor,
		logger:    logger,
		cache:     c,
		backoff:   retryBackoff,
	}
}

func (h *movementHandler) Setup(_ sarama.ConsumerGroupSession) error   { return nil }
func (h *movementHandler) Cleanup(_ sarama.ConsumerGroupSession) error { return nil }

func (h *movementHandler) ConsumeClaim(
	session sarama.ConsumerGroupSession,
	claim sarama.ConsumerGroupClaim,
) error {
	for kafkaMsg := range claim.Messages() {
		lag := claim.HighWaterMarkOffset() - kafkaMsg.Offset - 1
		metrics.SetKafkaConsumerLag(kafkaMsg.Topic, kafkaMsg.Partition, lag)

		date, err := h.processWithRetry(session.Context(), kafkaMsg)
		switch {
		case errors.Is(err, ErrInvalidMessage):
			metrics.IncKafkaError("consumer", "invalid")
			h.logger.Warn("skipping invalid movement message",
				zap.String("topic", kafkaMsg.Topic),
				zap.Int32("partition", kafkaMsg.Partition),
				zap.Int64("offset", kafkaMsg.Offset),
				zap.Error(err),
			)
		case err != nil:
			// not marked, so it is read again after the rebalance
			metrics.IncKafkaError("consumer", "process")
			return err
		default:
			metrics.IncKafkaProcessed()
			if err := cache.InvalidateDates(session.Context(), h.cache, "ingest", date); err != nil {
				h.logger.Warn("cache invalidation failed", zap.String("date", date), zap.Error(err))
			}
		}

		session.MarkMessage(kafkaMsg, "")
		session.Commit()
	}
	return nil
}

func (h *movementHandler) processWithRetry(ctx context.Context, m *sarama.ConsumerMessage) (string, error) {
	attempt := 0

	for {
		attempt++
		date, err := h.processor.ProcessMovement(ctx, m.Value)
		if err == nil {
			return date, nil
		}
		if errors.Is(err, ErrInvalidMessage) {
			return "", err
		}

		backoff := h.backoff(attempt)
		h.logger.Warn("process movement failed",
			zap.String("topic", m.Topic),
			zap.Int32("partition", m.Partition),
			zap.Int64("offset", m.Offset),
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", backoff),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// linear backoff, 1s per attempt up to 30s
func retryBackoff(attempt int) time.Duration {
	d := time.Duration(attempt) * time.Second
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	return d
}
