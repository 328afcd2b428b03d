package reminder

import (
	"context"
	"sync"

	"activityPlanner/internal/logger"

	"go.uber.org/zap"
)

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes every reminder to the application log.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, n Notification) error {
	logger.Info("Reminder: "+n.Message,
		zap.Int64("activity_id", n.ID),
		zap.Time("start", n.Start),
		zap.Int("minutes_left", n.MinutesLeft),
	)
	return nil
}

// Inbox buffers reminders until the shell drains them. When full, the
// oldest entry is dropped.
type Inbox struct {
	mtx      sync.Mutex
	items    []Notification
	capacity int
}

func NewInbox(capacity int) *Inbox {
	if capacity <= 0 {
		capacity = 100
	}
	return &Inbox{capacity: capacity}
}

func (i *Inbox) Notify(ctx context.Context, n Notification) error {
	i.mtx.Lock()
	defer i.mtx.Unlock()

	if len(i.items) >= i.capacity {
		i.items = i.items[1:]
	}
	i.items = append(i.items, n)
	return nil
}

// Drain returns everything buffered so far and empties the inbox.
func (i *Inbox) Drain() []Notification {
	i.mtx.Lock()
	defer i.mtx.Unlock()

	items := i.items
	i.items = nil
	if items == nil {
		return []Notification{}
	}
	return items
}

// Fanout hands each reminder to every notifier, keeping the first error.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, n Notification) error {
	var first error
	for _, notifier := range f {
		if err := notifier.Notify(ctx, n); err != nil && first == nil {
			first = err
		}
	}
	return first
}
