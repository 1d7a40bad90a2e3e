package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

type fakeSession struct {
	sarama.ConsumerGroupSession
	ctx     context.Context
	marked  []int64
	commits int
}

func (s *fakeSession) Context() context.Context { return s.ctx }
func (s *fakeSession) MarkMessage(m *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, m.Offset)
}
func (s *fakeSession) Commit() { s.commits++ }

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	msgs chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.msgs }
func (c *fakeClaim) HighWaterMarkOffset() int64               { return 10 }

func newClaim(values ...string) *fakeClaim {
	ch := make(chan *sarama.ConsumerMessage, len(values))
	for i, v := range values {
		ch <- &sarama.ConsumerMessage{Topic: "flight_movements", Offset: int64(i), Value: []byte(v)}
	}
	close(ch)
	return &fakeClaim{msgs: ch}
}

type scriptedProcessor struct {
	mu      sync.Mutex
	calls   int
	results map[string][]error
	dates   map[string]string
}

func (p *scriptedProcessor) ProcessMovement(_ context.Context, message []byte) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	key := string(message)
	if errs := p.results[key]; len(errs) > 0 {
		err := errs[0]
		p.results[key] = errs[1:]
		if err != nil {
			return "", err
		}
	}
	return p.dates[key], nil
}

type recordingCache struct {
	deleted []string
}

func (c *recordingCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (c *recordingCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}
func (c *recordingCache) Del(_ context.Context, keys ...string) error {
	c.deleted = append(c.deleted, keys...)
	return nil
}
func (c *recordingCache) Close() error { return nil }

func noBackoff(int) time.Duration { return 0 }

func TestConsumeClaimMarksAndInvalidates(t *testing.T) {
	proc := &scriptedProcessor{
		results: map[string][]error{
			"flaky": {errors.New("db down"), nil},
			"bad":   {fmt.Errorf("%w: missing flight", ErrInvalidMessage)},
		},
		dates: map[string]string{
			"ok":    "2025-05-20",
			"flaky": "2025-05-21",
		},
	}
	c := &recordingCache{}
	h := newMovementHandler(proc, c, zap.NewNop())
	h.backoff = noBackoff

	session := &fakeSession{ctx: context.Background()}
	if err := h.ConsumeClaim(session, newClaim("ok", "bad", "flaky")); err != nil {
		t.Fatalf("ConsumeClaim: %v", err)
	}

	if len(session.marked) != 3 || session.commits != 3 {
		t.Errorf("every message should be marked and committed, got marked=%v commits=%d", session.marked, session.commits)
	}
	if proc.calls != 4 {
		t.Errorf("expected 4 processor calls (one retry), got %d", proc.calls)
	}
	want := []string{"board:all_flights:2025-05-20", "board:all_flights:2025-05-21"}
	if len(c.deleted) != len(want) || c.deleted[0] != want[0] || c.deleted[1] != want[1] {
		t.Errorf("invalidated keys: got %v, want %v", c.deleted, want)
	}
}

func TestConsumeClaimStopsOnCancel(t *testing.T) {
	proc := &scriptedProcessor{
		results: map[string][]error{
			"stuck": {errors.New("db down"), errors.New("db down"), errors.New("db down")},
		},
	}
	h := newMovementHandler(proc, nil, zap.NewNop())
	h.backoff = func(int) time.Duration { return time.Hour }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	session := &fakeSession{ctx: ctx}

	err := h.ConsumeClaim(session, newClaim("stuck"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(session.marked) != 0 {
		t.Errorf("an unprocessed message must not be marked, got %v", session.marked)
	}
}

func TestRetryBackoff(t *testing.T) {
	if retryBackoff(1) != time.Second || retryBackoff(5) != 5*time.Second || retryBackoff(100) != 30*time.Second {
		t.Errorf("unexpected backoff curve: %v %v %v", retryBackoff(1), retryBackoff(5), retryBackoff(100))
	}
}

type failingGroup struct {
	sarama.ConsumerGroup
	errs   chan error
	cancel context.CancelFunc
	calls  int
}

func (g *failingGroup) Errors() <-chan error { return g.errs }

func (g *failingGroup) Consume(context.Context, []string, sarama.ConsumerGroupHandler) error {
	g.calls++
	// cancel only after Start has entered its retry wait
	time.AfterFunc(20*time.Millisecond, g.cancel)
	return errors.New("broker unavailable")
}

func TestStartReturnsWhileWaitingToRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	group := &failingGroup{errs: make(chan error), cancel: cancel}
	close(group.errs)
	c := &Consumer{group: group, topic: "movements", logger: zap.NewNop()}

	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil on shutdown, got %v", err)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Start kept waiting after the context was cancelled")
	}
	if group.calls != 1 {
		t.Errorf("expected a single consume attempt, got %d", group.calls)
	}
}
