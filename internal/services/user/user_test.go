package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/magabrotheeeer/task-manager/internal/apperrors"
	"github.com/magabrotheeeer/task-manager/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type UsersMock struct{ mock.Mock }

func (m *UsersMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *UsersMock) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}
func (m *UsersMock) SearchUsers(ctx context.Context, term string, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, term, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}
func (m *UsersMock) ListUsersByRole(ctx context.Context, role string, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, role, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}
func (m *UsersMock) ListEnabledUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}
func (m *UsersMock) ListMostActiveUsers(ctx context.Context, limit int) ([]*models.User, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}
func (m *UsersMock) ListUsersWithTasksDueSoon(ctx context.Context, now, until time.Time) ([]*models.User, error) {
	args := m.Called(ctx, now, until)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}
func (m *UsersMock) UpdateUserProfile(ctx context.Context, userUID string, profile models.DummyProfile) (int, error) {
	args := m.Called(ctx, userUID, profile)
	return args.Int(0), args.Error(1)
}
func (m *UsersMock) UpdateUserRole(ctx context.Context, userUID, role string) (int, error) {
	args := m.Called(ctx, userUID, role)
	return args.Int(0), args.Error(1)
}
func (m *UsersMock) ToggleUserEnabled(ctx context.Context, userUID string) (bool, error) {
	args := m.Called(ctx, userUID)
	return args.Bool(0), args.Error(1)
}
func (m *UsersMock) DeleteUser(ctx context.Context, userUID string) (int, error) {
	args := m.Called(ctx, userUID)
	return args.Int(0), args.Error(1)
}
func (m *UsersMock) CountUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
func (m *UsersMock) CountEnabledUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
func (m *UsersMock) CountUsersByRole(ctx context.Context, role string) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestUserService_Profile(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUser", mock.Anything, "uid-1").Return(&models.User{
			UID:      "uid-1",
			Username: "alice",
			Email:    "alice@example.com",
			Role:     models.RoleUser,
			Enabled:  true,
		}, nil).Once()

		svc := NewUserService(users, newNoopLogger())
		summary, err := svc.Profile(context.Background(), "uid-1")
		require.NoError(t, err)
		assert.Equal(t, "alice", summary.Username)
		users.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUser", mock.Anything, "uid-missing").Return(nil, apperrors.ErrNotFound).Once()

		svc := NewUserService(users, newNoopLogger())
		_, err := svc.Profile(context.Background(), "uid-missing")
		require.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	profile := models.DummyProfile{
		Email:     "new@example.com",
		FirstName: "Alice",
		LastName:  "Liddell",
	}

	t.Run("success", func(t *testing.T) {
		users := new(UsersMock)
		users.On("UpdateUserProfile", mock.Anything, "uid-1", profile).Return(1, nil).Once()
		users.On("GetUser", mock.Anything, "uid-1").Return(&models.User{
			UID:   "uid-1",
			Email: "new@example.com",
		}, nil).Once()

		svc := NewUserService(users, newNoopLogger())
		summary, err := svc.UpdateProfile(context.Background(), "uid-1", profile)
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", summary.Email)
		users.AssertExpectations(t)
	})

	t.Run("email already taken", func(t *testing.T) {
		users := new(UsersMock)
		users.On("UpdateUserProfile", mock.Anything, "uid-1", profile).
			Return(0, apperrors.ErrAlreadyExists).Once()

		svc := NewUserService(users, newNoopLogger())
		_, err := svc.UpdateProfile(context.Background(), "uid-1", profile)
		require.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	})
}

func TestUserService_ChangeRole(t *testing.T) {
	t.Run("promote to admin", func(t *testing.T) {
		users := new(UsersMock)
		users.On("UpdateUserRole", mock.Anything, "uid-1", models.RoleAdmin).Return(1, nil).Once()
		users.On("GetUser", mock.Anything, "uid-1").Return(&models.User{
			UID:  "uid-1",
			Role: models.RoleAdmin,
		}, nil).Once()

		svc := NewUserService(users, newNoopLogger())
		summary, err := svc.ChangeRole(context.Background(), "uid-1", models.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, summary.Role)
		users.AssertExpectations(t)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		users := new(UsersMock)
		svc := NewUserService(users, newNoopLogger())
		_, err := svc.ChangeRole(context.Background(), "uid-1", "superuser")
		require.Error(t, err)
		users.AssertNotCalled(t, "UpdateUserRole", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUserService_ToggleEnabled(t *testing.T) {
	users := new(UsersMock)
	users.On("ToggleUserEnabled", mock.Anything, "uid-1").Return(false, nil).Once()

	svc := NewUserService(users, newNoopLogger())
	enabled, err := svc.ToggleEnabled(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.False(t, enabled)
	users.AssertExpectations(t)
}

func TestUserService_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		users := new(UsersMock)
		users.On("DeleteUser", mock.Anything, "uid-1").Return(1, nil).Once()

		svc := NewUserService(users, newNoopLogger())
		err := svc.Delete(context.Background(), "uid-1")
		require.NoError(t, err)
		users.AssertExpectations(t)
	})

	t.Run("missing user reported as not found", func(t *testing.T) {
		users := new(UsersMock)
		users.On("DeleteUser", mock.Anything, "uid-missing").Return(0, nil).Once()

		svc := NewUserService(users, newNoopLogger())
		err := svc.Delete(context.Background(), "uid-missing")
		require.ErrorIs(t, err, apperrors.ErrNotFound)
		users.AssertExpectations(t)
	})
}

func TestUserService_Search(t *testing.T) {
	users := new(UsersMock)
	users.On("SearchUsers", mock.Anything, "ali", 10, 0).Return([]*models.User{
		{UID: "uid-1", Username: "alice"},
		{UID: "uid-2", Username: "salim", FirstName: "Ali"},
	}, nil).Once()

	svc := NewUserService(users, newNoopLogger())
	found, err := svc.Search(context.Background(), "ali", 10, 0)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "alice", found[0].Username)
	users.AssertExpectations(t)
}

func TestUserService_ListByRole(t *testing.T) {
	t.Run("admins listed", func(t *testing.T) {
		users := new(UsersMock)
		users.On("ListUsersByRole", mock.Anything, models.RoleAdmin, 10, 0).Return([]*models.User{
			{UID: "uid-1", Username: "root", Role: models.RoleAdmin},
		}, nil).Once()

		svc := NewUserService(users, newNoopLogger())
		found, err := svc.ListByRole(context.Background(), models.RoleAdmin, 10, 0)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, models.RoleAdmin, found[0].Role)
		users.AssertExpectations(t)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		users := new(UsersMock)
		svc := NewUserService(users, newNoopLogger())
		_, err := svc.ListByRole(context.Background(), "superuser", 10, 0)
		require.Error(t, err)
		users.AssertNotCalled(t, "ListUsersByRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUserService_ListMostActive(t *testing.T) {
	users := new(UsersMock)
	users.On("ListMostActiveUsers", mock.Anything, 5).Return([]*models.User{
		{UID: "uid-2", Username: "bob"},
		{UID: "uid-1", Username: "alice"},
	}, nil).Once()

	svc := NewUserService(users, newNoopLogger())
	found, err := svc.ListMostActive(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "bob", found[0].Username)
	users.AssertExpectations(t)
}

func TestUserService_ListWithTasksDueSoon(t *testing.T) {
	users := new(UsersMock)
	users.On("ListUsersWithTasksDueSoon", mock.Anything,
		mock.AnythingOfType("time.Time"),
		mock.MatchedBy(func(until time.Time) bool {
			return until.After(time.Now().Add(47 * time.Hour))
		})).Return([]*models.User{
		{UID: "uid-1", Username: "alice"},
	}, nil).Once()

	svc := NewUserService(users, newNoopLogger())
	found, err := svc.ListWithTasksDueSoon(context.Background(), 48)
	require.NoError(t, err)
	require.Len(t, found, 1)
	users.AssertExpectations(t)
}

func TestUserService_Statistics(t *testing.T) {
	users := new(UsersMock)
	users.On("CountUsers", mock.Anything).Return(int64(12), nil).Once()
	users.On("CountEnabledUsers", mock.Anything).Return(int64(10), nil).Once()
	users.On("CountUsersByRole", mock.Anything, models.RoleAdmin).Return(int64(2), nil).Once()
	users.On("CountUsersByRole", mock.Anything, models.RoleUser).Return(int64(10), nil).Once()

	svc := NewUserService(users, newNoopLogger())
	stats, err := svc.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.TotalUsers)
	assert.Equal(t, int64(10), stats.EnabledUsers)
	assert.Equal(t, int64(2), stats.AdminUsers)
	assert.Equal(t, int64(10), stats.RegularUsers)
	users.AssertExpectations(t)
}
