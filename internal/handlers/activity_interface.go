package handlers

import (
	"context"
	"time"

	"activityPlanner/internal/models/activity"
	"activityPlanner/internal/reminder"
)

type Service interface {
	HealthCheck(ctx context.Context) error
	Add(ctx context.Context, name string, start, end time.Time, tags string) (*activity.Activity, error)
	Update(ctx context.Context, id int64, name string, start, end time.Time, tags string) error
	Delete(ctx context.Context, id int64) error
	Toggle(ctx context.Context, id int64, status activity.Status) error
	Flip(ctx context.Context, id int64) error
	Note(ctx context.Context, id int64) (string, error)
	UpdateNote(ctx context.Context, id int64, note string) error
	All(ctx context.Context, limit, offset int, status *activity.Status, search string) ([]*activity.Activity, error)
	Pending(ctx context.Context) ([]activity.Pending, error)
}

// Reminders is the buffer the reminder worker writes into.
type Reminders interface {
	Drain() []reminder.Notification
}
