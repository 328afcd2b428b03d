package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"activityPlanner/internal/models/activity"
	"activityPlanner/internal/repository"
	"activityPlanner/internal/repository/activity/inmemory"
	"activityPlanner/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockActivityRepository is a testify mock of the store
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockActivityRepository) Create(ctx context.Context, a *activity.Activity) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockActivityRepository) Update(ctx context.Context, a *activity.Activity) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockActivityRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockActivityRepository) SetStatus(ctx context.Context, id int64, status activity.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockActivityRepository) Note(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockActivityRepository) SetNote(ctx context.Context, id int64, note string) error {
	args := m.Called(ctx, id, note)
	return args.Error(0)
}

func (m *MockActivityRepository) GetByID(ctx context.Context, id int64) (*activity.Activity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*activity.Activity), args.Error(1)
}

func (m *MockActivityRepository) Pending(ctx context.Context) ([]activity.Pending, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]activity.Pending), args.Error(1)
}

func (m *MockActivityRepository) List(ctx context.Context, f activity.Filter) ([]*activity.Activity, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*activity.Activity), args.Error(1)
}

var _ service.ActivityRepository = (*MockActivityRepository)(nil)

var base = time.Date(2025, 6, 1, 9, 0, 0, 0, time.Local)

func isValidation(t *testing.T, err error, field string) {
	t.Helper()
	var busErr *service.BusinessError
	require.True(t, errors.As(err, &busErr), "expected BusinessError, got %v", err)
	assert.Equal(t, service.CodeValidation, busErr.Code)
	assert.Equal(t, field, busErr.Details["field"])
}

func TestActivityService_HealthCheck(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(*MockActivityRepository)
		expectError bool
	}{
		{
			name: "success - health check passes",
			setupMock: func(m *MockActivityRepository) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
		},
		{
			name: "error - health check fails",
			setupMock: func(m *MockActivityRepository) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("db connection failed"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockActivityRepository)
			tt.setupMock(mockRepo)

			svc := service.NewActivityService(mockRepo, service.SQLiteType)
			err := svc.HealthCheck(context.Background())

			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "service health check")
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestActivityService_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("success - trimmed name is stored", func(t *testing.T) {
		mockRepo := new(MockActivityRepository)
		mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *activity.Activity) bool {
			return a.Name == "Read" && a.Tags == "books" && a.Start.Equal(base)
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*activity.Activity).ID = 7
		}).Return(nil)

		svc := service.NewActivityService(mockRepo, service.SQLiteType)
		a, err := svc.Add(ctx, "  Read ", base, base.Add(time.Hour), "books")

		require.NoError(t, err)
		assert.Equal(t, int64(7), a.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("end before start is accepted", func(t *testing.T) {
		mockRepo := new(MockActivityRepository)
		mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		svc := service.NewActivityService(mockRepo, service.SQLiteType)
		_, err := svc.Add(ctx, "Backwards", base.Add(time.Hour), base, "")

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	validation := []struct {
		name  string
		title string
		start time.Time
		end   time.Time
		field string
	}{
		{"empty name", "", base, base, "name"},
		{"blank name", "   ", base, base, "name"},
		{"zero start", "x", time.Time{}, base, "start"},
		{"zero end", "x", base, time.Time{}, "end"},
	}
	for _, tt := range validation {
		t.Run("error - "+tt.name, func(t *testing.T) {
			mockRepo := new(MockActivityRepository)
			svc := service.NewActivityService(mockRepo, service.SQLiteType)

			_, err := svc.Add(ctx, tt.title, tt.start, tt.end, "")

			isValidation(t, err, tt.field)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}

	t.Run("error - storage failure surfaces", func(t *testing.T) {
		mockRepo := new(MockActivityRepository)
		mockRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk I/O error"))

		svc := service.NewActivityService(mockRepo, service.SQLiteType)
		_, err := svc.Add(ctx, "x", base, base, "")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "disk I/O error")
		mockRepo.AssertExpectations(t)
	})
}

func TestActivityService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockRepo := new(MockActivityRepository)
		mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(a *activity.Activity) bool {
			return a.ID == 3 && a.Name == "New" && a.Tags == "t" && a.End.Equal(base.Add(time.Hour))
		})).Return(nil)

		svc := service.NewActivityService(mockRepo, service.SQLiteType)
		err := svc.Update(ctx, 3, "New", base, base.Add(time.Hour), "t")

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("error - empty name", func(t *testing.T) {
		mockRepo := new(MockActivityRepository)
		svc := service.NewActivityService(mockRepo, service.SQLiteType)

		err := svc.Update(ctx, 3, "", base, base, "")

		isValidation(t, err, "name")
		mockRepo.AssertExpectations(t)
	})
}

func TestActivityService_Toggle(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockActivityRepository)
	mockRepo.On("SetStatus", mock.Anything, int64(5), activity.StatusCompleted).Return(nil)
	svc := service.NewActivityService(mockRepo, service.SQLiteType)

	assert.NoError(t, svc.Toggle(ctx, 5, activity.StatusCompleted))
	isValidation(t, svc.Toggle(ctx, 5, activity.Status(3)), "status")
	mockRepo.AssertExpectations(t)
}

func TestActivityService_Flip(t *testing.T) {
	ctx := context.Background()

	t.Run("pending becomes completed", func(t *testing.T) {
		mockRepo := new(MockActivityRepository)
		mockRepo.On("GetByID", mock.Anything, int64(1)).Return(&activity.Activity{ID: 1, Status: activity.StatusPending}, nil)
		mockRepo.On("SetStatus", mock.Anything, int64(1), activity.StatusCompleted).Return(nil)

		svc := service.NewActivityService(mockRepo, service.SQLiteType)
		assert.NoError(t, svc.Flip(ctx, 1))
		mockRepo.AssertExpectations(t)
	})

	t.Run("completed becomes pending", func(t *testing.T) {
		mockRepo := new(MockActivityRepository)
		mockRepo.On("GetByID", mock.Anything, int64(1)).Return(&activity.Activity{ID: 1, Status: activity.StatusCompleted}, nil)
		mockRepo.On("SetStatus", mock.Anything, int64(1), activity.StatusPending).Return(nil)

		svc := service.NewActivityService(mockRepo, service.SQLiteType)
		assert.NoError(t, svc.Flip(ctx, 1))
		mockRepo.AssertExpectations(t)
	})

	t.Run("missing id is a no-op", func(t *testing.T) {
		mockRepo := new(MockActivityRepository)
		mockRepo.On("GetByID", mock.Anything, int64(9)).Return(nil, repository.ErrNotFound)

		svc := service.NewActivityService(mockRepo, service.SQLiteType)
		assert.NoError(t, svc.Flip(ctx, 9))
		mockRepo.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("storage failure surfaces", func(t *testing.T) {
		mockRepo := new(MockActivityRepository)
		mockRepo.On("GetByID", mock.Anything, int64(9)).Return(nil, errors.New("database is locked"))

		svc := service.NewActivityService(mockRepo, service.SQLiteType)
		assert.Error(t, svc.Flip(ctx, 9))
	})
}

func TestActivityService_All(t *testing.T) {
	ctx := context.Background()
	done := activity.StatusCompleted

	t.Run("filters are forwarded", func(t *testing.T) {
		mockRepo := new(MockActivityRepository)
		rows := []*activity.Activity{{ID: 1, Name: "a"}}
		mockRepo.On("List", mock.Anything, mock.MatchedBy(func(f activity.Filter) bool {
			return f.Limit == 30 && f.Offset == 60 && f.Status != nil && *f.Status == done && f.Search == "gym"
		})).Return(rows, nil)

		svc := service.NewActivityService(mockRepo, service.SQLiteType)
		got, err := svc.All(ctx, 30, 60, &done, "gym")

		require.NoError(t, err)
		assert.Equal(t, rows, got)
		mockRepo.AssertExpectations(t)
	})

	t.Run("no filters", func(t *testing.T) {
		mockRepo := new(MockActivityRepository)
		mockRepo.On("List", mock.Anything, activity.Filter{Limit: 10, Offset: 0}).Return([]*activity.Activity{}, nil)

		svc := service.NewActivityService(mockRepo, service.SQLiteType)
		got, err := svc.All(ctx, 10, 0, nil, "")

		require.NoError(t, err)
		assert.Empty(t, got)
		mockRepo.AssertExpectations(t)
	})

	invalid := activity.Status(7)
	tests := []struct {
		name   string
		limit  int
		offset int
		status *activity.Status
		field  string
	}{
		{"negative limit", -1, 0, nil, "limit"},
		{"negative offset", 10, -5, nil, "offset"},
		{"unknown status", 10, 0, &invalid, "status"},
	}
	for _, tt := range tests {
		t.Run("error - "+tt.name, func(t *testing.T) {
			mockRepo := new(MockActivityRepository)
			svc := service.NewActivityService(mockRepo, service.SQLiteType)

			_, err := svc.All(ctx, tt.limit, tt.offset, tt.status, "")
			isValidation(t, err, tt.field)
		})
	}
}

func TestActivityService_Notes(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockActivityRepository)
	mockRepo.On("SetNote", mock.Anything, int64(2), "").Return(nil)
	mockRepo.On("Note", mock.Anything, int64(2)).Return("", nil)
	mockRepo.On("Note", mock.Anything, int64(3)).Return("", errors.New("boom"))

	svc := service.NewActivityService(mockRepo, service.SQLiteType)

	require.NoError(t, svc.UpdateNote(ctx, 2, ""))
	note, err := svc.Note(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "", note)

	_, err = svc.Note(ctx, 3)
	assert.Error(t, err)
	mockRepo.AssertExpectations(t)
}

// TestActivityService_WithStore runs the collaborator API against the in-memory store
func TestActivityService_WithStore(t *testing.T) {
	ctx := context.Background()
	svc := service.NewActivityService(inmemory.NewActivityStorage(), service.InMemoryType)

	a, err := svc.Add(ctx, "Yoga", base, base.Add(time.Hour), "health")
	require.NoError(t, err)
	b, err := svc.Add(ctx, "Call mom", base.Add(-time.Hour), base, "family")
	require.NoError(t, err)

	require.NoError(t, svc.Toggle(ctx, a.ID, activity.StatusCompleted))
	pending, err := svc.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, b.ID, pending[0].ID)

	require.NoError(t, svc.Flip(ctx, a.ID))
	pending, err = svc.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	require.NoError(t, svc.UpdateNote(ctx, b.ID, "bring cake"))
	note, err := svc.Note(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "bring cake", note)

	all, err := svc.All(ctx, 10, 0, nil, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, b.ID, all[0].ID, "ordered by start")

	found, err := svc.All(ctx, 10, 0, nil, "YOG")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, a.ID, found[0].ID)

	require.NoError(t, svc.Delete(ctx, b.ID))
	note, err = svc.Note(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, note)
	assert.NoError(t, svc.Update(ctx, b.ID, "ghost", base, base, ""))
	assert.NoError(t, svc.Toggle(ctx, b.ID, activity.StatusCompleted))
	assert.NoError(t, svc.UpdateNote(ctx, b.ID, "ghost"))
	assert.NoError(t, svc.Delete(ctx, b.ID))
}
