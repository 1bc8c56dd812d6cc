package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"kharcha/internal/amqp"
	"kharcha/internal/core"
	"kharcha/internal/log"
)

type stubSyncer struct {
	calls atomic.Int64
	added int
	err   error
}

func (s *stubSyncer) Sync(ctx context.Context, days int) (int, error) {
	s.calls.Add(1)
	return s.added, s.err
}

type stubConsumer struct {
	events []*amqp.Event
}

func (c *stubConsumer) ConsumeEvents(ctx context.Context, handler func(*amqp.Event) error) error {
	for _, ev := range c.events {
		if err := handler(ev); err != nil {
			return err
		}
	}
	<-ctx.Done()
	return ctx.Err()
}

func testLogger() *log.Logger {
	return log.New(log.Config{Component: log.ComponentWorker})
}

func TestHandleEventCounters(t *testing.T) {
	w := New(nil, nil, 60, 0, testLogger())

	events := []*amqp.Event{
		amqp.NewExpenseCreatedEvent(1, "gmail", 499),
		amqp.NewExpenseCreatedEvent(2, "manual", 120.50),
		amqp.NewSyncCompletedEvent(3, 60),
		{Kind: "something.else", Timestamp: time.Now()},
	}
	for _, ev := range events {
		if err := w.HandleEvent(ev); err != nil {
			t.Fatalf("HandleEvent(%s) error = %v", ev.Kind, err)
		}
	}

	expenses, syncs := w.Counters()
	if expenses != 2 {
		t.Errorf("expenses seen = %d, want 2", expenses)
	}
	if syncs != 1 {
		t.Errorf("syncs seen = %d, want 1", syncs)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	consumer := &stubConsumer{events: []*amqp.Event{
		amqp.NewExpenseCreatedEvent(7, "gmail", 42),
	}}
	syncer := &stubSyncer{added: 1}
	w := New(consumer, syncer, 60, 10*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	// Give the ticker a few rounds before stopping.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run() error = %v, want nil on cancel", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not stop after cancel")
	}

	if syncer.calls.Load() == 0 {
		t.Error("periodic sync never ran")
	}
	expenses, _ := w.Counters()
	if expenses != 1 {
		t.Errorf("expenses seen = %d, want 1", expenses)
	}
}

func TestRunSyncSkipsWhenNotConnected(t *testing.T) {
	syncer := &stubSyncer{err: core.ErrNotConnected}
	w := New(nil, syncer, 60, time.Hour, testLogger())

	// Must not panic or retry in a tight loop; one call per invocation.
	w.runSync(context.Background())
	if got := syncer.calls.Load(); got != 1 {
		t.Errorf("sync calls = %d, want 1", got)
	}
}

func TestRunSyncReportsFailure(t *testing.T) {
	syncer := &stubSyncer{err: errors.New("boom")}
	w := New(nil, syncer, 60, time.Hour, testLogger())

	w.runSync(context.Background())
	if got := syncer.calls.Load(); got != 1 {
		t.Errorf("sync calls = %d, want 1", got)
	}
}
