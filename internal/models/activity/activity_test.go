package activity_test

import (
	"testing"
	"time"

	"activityPlanner/internal/models/activity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatParseTime(t *testing.T) {
	ts := time.Date(2025, 3, 9, 14, 30, 5, 999, time.Local)

	s := activity.FormatTime(ts)
	assert.Equal(t, "2025-03-09 14:30:05", s)

	parsed, err := activity.ParseTime(s)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(ts.Truncate(time.Second)))

	// isoformat(" ") with microseconds
	parsed, err = activity.ParseTime("2025-03-09 14:30:05.123456")
	require.NoError(t, err)
	assert.Equal(t, 5, parsed.Second())

	_, err = activity.ParseTime("09/03/2025")
	assert.Error(t, err)
}

func TestStatus(t *testing.T) {
	assert.True(t, activity.StatusPending.Valid())
	assert.True(t, activity.StatusCompleted.Valid())
	assert.False(t, activity.Status(2).Valid())
	assert.Equal(t, activity.StatusCompleted, activity.StatusPending.Opposite())
	assert.Equal(t, activity.StatusPending, activity.StatusCompleted.Opposite())
	assert.Equal(t, "pending", activity.StatusPending.String())
}

func TestFilter_Matches(t *testing.T) {
	done := activity.StatusCompleted
	a := &activity.Activity{Name: "Morning Run", Tags: "sport, health", Status: activity.StatusPending}

	tests := []struct {
		name   string
		filter activity.Filter
		want   bool
	}{
		{"no predicates", activity.NewFilter(10, 0), true},
		{"status mismatch", activity.NewFilter(10, 0, activity.WithStatus(&done)), false},
		{"name substring any case", activity.NewFilter(10, 0, activity.WithSearch("run")), true},
		{"tags substring", activity.NewFilter(10, 0, activity.WithSearch("HEALTH")), true},
		{"no match", activity.NewFilter(10, 0, activity.WithSearch("swim")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(a))
		})
	}
}

func TestNewFilter_SkipsEmptyOptions(t *testing.T) {
	f := activity.NewFilter(30, 60, activity.WithStatus(nil), activity.WithSearch(""))
	assert.Equal(t, 30, f.Limit)
	assert.Equal(t, 60, f.Offset)
	assert.Nil(t, f.Status)
	assert.Empty(t, f.Search)
}
