package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"activityPlanner/internal/logger"
	"activityPlanner/internal/models/activity"
	repo "activityPlanner/internal/repository"

	"go.uber.org/zap"
)

type RepoType string

const (
	SQLiteType   RepoType = "sqlite"
	PostgresType RepoType = "postgres"
	InMemoryType RepoType = "inmemory"
)

// ActivityService is the API the presentation shell calls into. It checks
// input, then delegates to the store.
type ActivityService struct {
	repo     ActivityRepository
	RepoType RepoType
}

func NewActivityService(repo ActivityRepository, repoType RepoType) ActivityService {
	return ActivityService{
		repo:     repo,
		RepoType: repoType,
	}
}

func (s *ActivityService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("service health check: %w", err)
	}
	return nil
}

func (s *ActivityService) Add(ctx context.Context, name string, start, end time.Time, tags string) (*activity.Activity, error) {
	name, err := validateFields(name, start, end)
	if err != nil {
		return nil, err
	}

	a := &activity.Activity{
		Name:  name,
		Start: start,
		End:   end,
		Tags:  tags,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("add activity: %w", err)
	}

	logger.Info("Service: activity added", zap.Int64("id", a.ID), zap.String("repo", string(s.RepoType)))
	return a, nil
}

func (s *ActivityService) Update(ctx context.Context, id int64, name string, start, end time.Time, tags string) error {
	name, err := validateFields(name, start, end)
	if err != nil {
		return err
	}

	a := &activity.Activity{
		ID:    id,
		Name:  name,
		Start: start,
		End:   end,
		Tags:  tags,
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return fmt.Errorf("update activity %d: %w", id, err)
	}
	return nil
}

func (s *ActivityService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete activity %d: %w", id, err)
	}
	return nil
}

func (s *ActivityService) Toggle(ctx context.Context, id int64, status activity.Status) error {
	if !status.Valid() {
		return NewValidationError("status", "must be 0 or 1")
	}
	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		return fmt.Errorf("toggle activity %d: %w", id, err)
	}
	return nil
}

// Flip writes the opposite of the stored status. A missing id is a no-op.
func (s *ActivityService) Flip(ctx context.Context, id int64) error {
	current, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		logger.Debug("Service: flip of a missing activity", zap.Int64("id", id))
		return nil
	}
	if err != nil {
		return fmt.Errorf("read activity %d: %w", id, err)
	}
	return s.Toggle(ctx, id, current.Status.Opposite())
}

func (s *ActivityService) Note(ctx context.Context, id int64) (string, error) {
	note, err := s.repo.Note(ctx, id)
	if err != nil {
		return "", fmt.Errorf("read note %d: %w", id, err)
	}
	return note, nil
}

func (s *ActivityService) UpdateNote(ctx context.Context, id int64, note string) error {
	if err := s.repo.SetNote(ctx, id, note); err != nil {
		return fmt.Errorf("update note %d: %w", id, err)
	}
	return nil
}

// All returns one page ordered by start. status nil means any status.
func (s *ActivityService) All(ctx context.Context, limit, offset int, status *activity.Status, search string) ([]*activity.Activity, error) {
	if limit < 0 {
		return nil, NewValidationError("limit", "must not be negative")
	}
	if offset < 0 {
		return nil, NewValidationError("offset", "must not be negative")
	}
	if status != nil && !status.Valid() {
		return nil, NewValidationError("status", "must be 0 or 1")
	}

	filter := activity.NewFilter(limit, offset,
		activity.WithStatus(status),
		activity.WithSearch(search),
	)
	activities, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}

func (s *ActivityService) Pending(ctx context.Context) ([]activity.Pending, error) {
	pending, err := s.repo.Pending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	return pending, nil
}

func validateFields(name string, start, end time.Time) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", NewValidationError("name", "must not be empty")
	}
	if start.IsZero() {
		return "", NewValidationError("start", "is required")
	}
	if end.IsZero() {
		return "", NewValidationError("end", "is required")
	}
	return name, nil
}
