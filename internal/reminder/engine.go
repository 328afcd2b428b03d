// Package reminder decides which pending activities are about to start and
// emits one notification per activity for the lifetime of the process.
package reminder

import (
	"fmt"
	"sync"
	"time"

	"activityPlanner/internal/models/activity"
)

// DefaultThreshold is how long before its start an activity becomes due.
const DefaultThreshold = 5 * time.Minute

type Notification struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Start       time.Time `json:"start"`
	MinutesLeft int       `json:"minutes_left"`
	Message     string    `json:"message"`
	At          time.Time `json:"at"`
}

// Engine owns the set of activity ids already notified. A new Engine starts
// with an empty set, so reminders are not deduplicated across restarts.
type Engine struct {
	threshold time.Duration
	mtx       sync.Mutex
	notified  map[int64]struct{}
}

func NewEngine(threshold time.Duration) *Engine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Engine{
		threshold: threshold,
		notified:  make(map[int64]struct{}),
	}
}

func (e *Engine) Threshold() time.Duration {
	return e.threshold
}

// Due returns the activities from pending whose start lies in (now, now+threshold]
// and that were not returned before, marking them as notified.
// An activity whose start has passed is never returned, so a poll interval
// longer than the threshold can skip an activity entirely.
func (e *Engine) Due(now time.Time, pending []activity.Pending) []Notification {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	var due []Notification
	for _, p := range pending {
		if _, ok := e.notified[p.ID]; ok {
			continue
		}

		diff := p.Start.Sub(now)
		if diff <= 0 || diff > e.threshold {
			continue
		}

		minutes := int(diff / time.Minute)
		due = append(due, Notification{
			ID:          p.ID,
			Name:        p.Name,
			Start:       p.Start,
			MinutesLeft: minutes,
			Message:     fmt.Sprintf("'%s' starts in %d minutes", p.Name, minutes),
			At:          now,
		})
		e.notified[p.ID] = struct{}{}
	}
	return due
}

func (e *Engine) Notified(id int64) bool {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	_, ok := e.notified[id]
	return ok
}
