package service

import (
	"context"

	"activityPlanner/internal/models/activity"
)

// ActivityRepository is the Activity Store contract. Writes against a
// missing id succeed without effect and Note returns "" for it.
type ActivityRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *activity.Activity) error
	Update(context.Context, *activity.Activity) error
	Delete(context.Context, int64) error
	SetStatus(context.Context, int64, activity.Status) error
	Note(context.Context, int64) (string, error)
	SetNote(context.Context, int64, string) error
	GetByID(context.Context, int64) (*activity.Activity, error)
	Pending(context.Context) ([]activity.Pending, error)
	List(context.Context, activity.Filter) ([]*activity.Activity, error)
}
