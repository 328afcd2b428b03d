package dto

import (
	"fmt"
	"strings"

	"activityPlanner/internal/models/activity"
	"activityPlanner/internal/reminder"
)

// ActivityRequest is the body of create and update. start and end use
// activity.Layout.
type ActivityRequest struct {
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
	Tags  string `json:"tags"`
}

type StatusRequest struct {
	Status *int `json:"status"`
}

type NoteRequest struct {
	Note *string `json:"note"`
}

type ActivityResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Note   string `json:"note"`
	Status int    `json:"status"`
	Tags   string `json:"tags"`
}

type PageResponse struct {
	Items      []ActivityResponse `json:"items"`
	NextOffset int                `json:"next_offset"`
	Fresh      bool               `json:"fresh"`
	Empty      bool               `json:"empty"`
}

type PendingResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Start string `json:"start"`
}

type NotificationResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Start       string `json:"start"`
	MinutesLeft int    `json:"minutes_left"`
	Message     string `json:"message"`
}

func FromActivity(a *activity.Activity) ActivityResponse {
	return ActivityResponse{
		ID:     a.ID,
		Name:   a.Name,
		Start:  activity.FormatTime(a.Start),
		End:    activity.FormatTime(a.End),
		Note:   a.Note,
		Status: int(a.Status),
		Tags:   a.Tags,
	}
}

func FromActivityList(activities []*activity.Activity) []ActivityResponse {
	result := make([]ActivityResponse, len(activities))
	for i, a := range activities {
		result[i] = FromActivity(a)
	}
	return result
}

func FromPendingList(pending []activity.Pending) []PendingResponse {
	result := make([]PendingResponse, len(pending))
	for i, p := range pending {
		result[i] = PendingResponse{ID: p.ID, Name: p.Name, Start: activity.FormatTime(p.Start)}
	}
	return result
}

func FromNotifications(items []reminder.Notification) []NotificationResponse {
	result := make([]NotificationResponse, len(items))
	for i, n := range items {
		result[i] = NotificationResponse{
			ID:          n.ID,
			Name:        n.Name,
			Start:       activity.FormatTime(n.Start),
			MinutesLeft: n.MinutesLeft,
			Message:     n.Message,
		}
	}
	return result
}

// ParseStatusFilter maps the filter names all, pending and completed. An
// empty name means all.
func ParseStatusFilter(name string) (*activity.Status, error) {
	var status activity.Status
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "all":
		return nil, nil
	case "pending":
		status = activity.StatusPending
	case "completed":
		status = activity.StatusCompleted
	default:
		return nil, fmt.Errorf("unknown status filter %q", name)
	}
	return &status, nil
}
