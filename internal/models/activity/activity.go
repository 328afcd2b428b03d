package activity

import (
	"fmt"
	"time"
)

// Layout is the on-disk timestamp format of start and end.
const Layout = "2006-01-02 15:04:05"

type Activity struct {
	ID     int64     `json:"id" db:"id"`
	Name   string    `json:"name" db:"name"`
	Start  time.Time `json:"start" db:"start"`
	End    time.Time `json:"end" db:"end"`
	Note   string    `json:"note" db:"note"`
	Status Status    `json:"status" db:"status"`
	Tags   string    `json:"tags" db:"tags"`
}

// Pending is the reduced row the reminder engine works with.
type Pending struct {
	ID    int64     `json:"id"`
	Name  string    `json:"name"`
	Start time.Time `json:"start"`
}

type Status int

const StatusPending Status = 0
const StatusCompleted Status = 1

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Opposite returns the status a flip would write.
func (s Status) Opposite() Status {
	if s == StatusCompleted {
		return StatusPending
	}
	return StatusCompleted
}

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusCompleted:
		return "completed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// FormatTime renders t as a wall clock value in the local zone, second precision.
func FormatTime(t time.Time) string {
	return t.In(time.Local).Format(Layout)
}

// ParseTime reads a stored timestamp back as local wall clock time.
// Fractional seconds after the seconds field are accepted.
func ParseTime(value string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", value, err)
	}
	return t, nil
}
