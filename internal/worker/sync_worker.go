// Package worker tails the ledger event feed and keeps the ledger
// fresh with periodic mail syncs, as a backup for syncs triggered from
// the dashboard.
package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"kharcha/internal/amqp"
	"kharcha/internal/core"
	"kharcha/internal/log"
)

// SyncRunner runs one mail sync over a trailing window of days.
type SyncRunner interface {
	Sync(ctx context.Context, days int) (int, error)
}

// EventConsumer delivers ledger events until the context is cancelled.
type EventConsumer interface {
	ConsumeEvents(ctx context.Context, handler func(*amqp.Event) error) error
}

type Worker struct {
	events     EventConsumer
	syncer     SyncRunner
	windowDays int
	interval   time.Duration
	logger     *log.Logger

	expensesSeen atomic.Int64
	syncsSeen    atomic.Int64
}

func New(events EventConsumer, syncer SyncRunner, windowDays int, interval time.Duration, logger *log.Logger) *Worker {
	return &Worker{
		events:     events,
		syncer:     syncer,
		windowDays: windowDays,
		interval:   interval,
		logger:     logger,
	}
}

// Run consumes events and drives the periodic sync loop until the
// context is cancelled. Cancellation is the normal way out; it is not
// reported as an error.
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if w.events != nil {
		g.Go(func() error {
			err := w.events.ConsumeEvents(ctx, w.HandleEvent)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		w.logger.Info("Event feed disabled, running sync loop only")
	}

	if w.syncer != nil && w.interval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(w.interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					w.runSync(ctx)
				}
			}
		})
	}

	return g.Wait()
}

// HandleEvent writes one audit line per ledger event. Unknown kinds
// are logged and dropped rather than requeued.
func (w *Worker) HandleEvent(ev *amqp.Event) error {
	switch ev.Kind {
	case amqp.EventExpenseCreated:
		w.expensesSeen.Add(1)
		w.logger.Info("Expense appended to ledger",
			log.FieldExpenseID, ev.ExpenseID,
			log.FieldSource, ev.Source,
			log.FieldAmount, ev.Amount,
			"at", ev.Timestamp.Format(time.RFC3339))
	case amqp.EventSyncCompleted:
		w.syncsSeen.Add(1)
		w.logger.Info("Mail sync completed",
			log.FieldAdded, ev.Added,
			log.FieldWindowDays, ev.WindowDays,
			"at", ev.Timestamp.Format(time.RFC3339))
	default:
		w.logger.Warn("Unknown event kind", "kind", ev.Kind)
	}
	return nil
}

func (w *Worker) runSync(ctx context.Context) {
	added, err := w.syncer.Sync(ctx, w.windowDays)
	switch {
	case errors.Is(err, core.ErrNotConfigured), errors.Is(err, core.ErrNotConnected):
		w.logger.Info("Skipping periodic sync, mail provider unavailable", log.FieldError, err)
	case err != nil:
		w.logger.Error("Periodic sync failed", log.FieldError, err, log.FieldWindowDays, w.windowDays)
	default:
		w.logger.Info("Periodic sync finished", log.FieldAdded, added, log.FieldWindowDays, w.windowDays)
	}
}

// Counters reports how many events of each kind this worker has seen.
func (w *Worker) Counters() (expenses, syncs int64) {
	return w.expensesSeen.Load(), w.syncsSeen.Load()
}
