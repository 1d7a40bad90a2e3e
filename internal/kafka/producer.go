package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"flight_board/internal/metrics"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

type Producer struct {
	topic    string
	producer sarama.SyncProducer
}

func NewSyncProducer(brokers []string, topic string) (*Producer, error) {
	cfg := sarama.NewConfig()

	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true

	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Retry.Backoff = 500 * time.Millisecond

	prod, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("create sarama sync producer: %w", err)
	}

	return newProducer(prod, topic), nil
}

func newProducer(sp sarama.SyncProducer, topic string) *Producer {
	return &Producer{
		topic:    topic,
		producer: sp,
	}
}

func (p *Producer) Close() error {
	return p.producer.Close()
}

// SendMovements publishes msgs in one batch, keyed by flight so that updates
// to the same flight stay on one partition. Empty message ids get a UUID.
func (p *Producer) SendMovements(msgs []*MovementMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	batch := make([]*sarama.ProducerMessage, 0, len(msgs))
	now := time.Now()
	for _, m := range msgs {
		if m == nil {
			return fmt.Errorf("movement message is nil")
		}
		if m.MessageID == "" {
			m.MessageID = uuid.NewString()
		}

		b, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal movement message: %w", err)
		}

		batch = append(batch, &sarama.ProducerMessage{
			Topic:     p.topic,
			Key:       sarama.StringEncoder(m.Flight),
			Value:     sarama.ByteEncoder(b),
			Timestamp: now,
		})
	}

	if err := p.producer.SendMessages(batch); err != nil {
		metrics.IncKafkaError("producer", "send")
		return fmt.Errorf("send kafka messages: %w", err)
	}

	for range batch {
		metrics.IncKafkaSent()
	}
	return nil
}
