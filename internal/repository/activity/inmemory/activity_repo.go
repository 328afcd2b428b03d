package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"activityPlanner/internal/logger"
	"activityPlanner/internal/models/activity"
	repo "activityPlanner/internal/repository"
)

// ActivityStorage keeps activities in memory. Callers only ever see copies.
type ActivityStorage struct {
	storage map[int64]*activity.Activity
	mtx     *sync.RWMutex
	lastID  int64
}

func NewActivityStorage() *ActivityStorage {
	return &ActivityStorage{
		storage: make(map[int64]*activity.Activity),
		mtx:     &sync.RWMutex{},
	}
}

func (s *ActivityStorage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: in-memory store is healthy")
	return nil
}

func (s *ActivityStorage) Create(ctx context.Context, a *activity.Activity) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.lastID++
	a.ID = s.lastID
	a.Note = ""
	a.Status = activity.StatusPending
	a.Start = a.Start.Truncate(time.Second)
	a.End = a.End.Truncate(time.Second)

	stored := *a
	s.storage[a.ID] = &stored
	return nil
}

func (s *ActivityStorage) Update(ctx context.Context, a *activity.Activity) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[a.ID]
	if !ok {
		return nil
	}
	existing.Name = a.Name
	existing.Start = a.Start.Truncate(time.Second)
	existing.End = a.End.Truncate(time.Second)
	existing.Tags = a.Tags
	return nil
}

func (s *ActivityStorage) Delete(ctx context.Context, id int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	delete(s.storage, id)
	return nil
}

func (s *ActivityStorage) SetStatus(ctx context.Context, id int64, status activity.Status) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if existing, ok := s.storage[id]; ok {
		existing.Status = status
	}
	return nil
}

func (s *ActivityStorage) SetNote(ctx context.Context, id int64, note string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if existing, ok := s.storage[id]; ok {
		existing.Note = note
	}
	return nil
}

func (s *ActivityStorage) Note(ctx context.Context, id int64) (string, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if existing, ok := s.storage[id]; ok {
		return existing.Note, nil
	}
	return "", nil
}

func (s *ActivityStorage) GetByID(ctx context.Context, id int64) (*activity.Activity, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	existing, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *existing
	return &copied, nil
}

// Pending lists status=0 activities by id.
func (s *ActivityStorage) Pending(ctx context.Context) ([]activity.Pending, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []activity.Pending{}
	for _, a := range s.storage {
		if a.Status != activity.StatusPending {
			continue
		}
		res = append(res, activity.Pending{ID: a.ID, Name: a.Name, Start: a.Start})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

// List orders by start, then id, before cutting the offset/limit window.
func (s *ActivityStorage) List(ctx context.Context, f activity.Filter) ([]*activity.Activity, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	matched := []*activity.Activity{}
	for _, a := range s.storage {
		if !f.Matches(a) {
			continue
		}
		copied := *a
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Start.Equal(matched[j].Start) {
			return matched[i].Start.Before(matched[j].Start)
		}
		return matched[i].ID < matched[j].ID
	})

	// negative bounds behave like SQLite: no offset, no limit
	offset := max(f.Offset, 0)
	if offset >= len(matched) {
		return []*activity.Activity{}, nil
	}
	matched = matched[offset:]
	if f.Limit >= 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched, nil
}
