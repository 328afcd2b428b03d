package reminder

import (
	"context"
	"fmt"
	"time"

	"activityPlanner/internal/logger"
	"activityPlanner/internal/models/activity"

	"go.uber.org/zap"
)

// DefaultInterval is the wall clock period between two scans.
const DefaultInterval = time.Minute

type PendingSource interface {
	Pending(ctx context.Context) ([]activity.Pending, error)
}

// Worker runs a scan on every tick. A scan finishes before the next tick is
// read, so scans never overlap.
type Worker struct {
	source   PendingSource
	engine   *Engine
	notifier Notifier
	interval time.Duration
	now      func() time.Time
}

func NewWorker(source PendingSource, engine *Engine, notifier Notifier, interval *time.Duration) *Worker {
	var intervalToSet time.Duration
	if interval == nil || *interval <= 0 {
		intervalToSet = DefaultInterval
	} else {
		intervalToSet = *interval
	}

	return &Worker{
		source:   source,
		engine:   engine,
		notifier: notifier,
		interval: intervalToSet,
		now:      time.Now,
	}
}

// WithClock replaces the time source, for simulated time in tests.
func (w *Worker) WithClock(now func() time.Time) *Worker {
	w.now = now
	return w
}

func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Info("Worker: reminder scans started", zap.Duration("interval", w.interval), zap.Duration("threshold", w.engine.Threshold()))
	for {
		select {
		case <-ticker.C:
			if _, err := w.Check(ctx); err != nil {
				logger.Warn("Worker: reminder scan failed", zap.Error(err))
			}
		case <-ctx.Done():
			logger.Info("Worker: reminder scans stopping")
			return
		}
	}
}

// Check performs one scan and returns the reminders it emitted.
func (w *Worker) Check(ctx context.Context) ([]Notification, error) {
	start := time.Now()

	pending, err := w.source.Pending(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pending activities: %w", err)
	}

	due := w.engine.Due(w.now(), pending)
	for _, n := range due {
		if err := w.notifier.Notify(ctx, n); err != nil {
			logger.Warn("Worker: notifier failed", zap.Int64("activity_id", n.ID), zap.Error(err))
		}
	}

	logger.Debug("Worker: reminder scan finished",
		zap.Duration("ms", time.Since(start)),
		zap.Int("checked", len(pending)),
		zap.Int("due", len(due)),
	)
	return due, nil
}
