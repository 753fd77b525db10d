package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/magabrotheeeer/task-manager/internal/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) FindTasksDueSoon(ctx context.Context, now, until time.Time) ([]*models.Task, error) {
	args := m.Called(ctx, now, until)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Task), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestReminderService_ScanWindow(t *testing.T) {
	repo := new(RepoMock)
	repo.On("FindTasksDueSoon", mock.Anything, mock.Anything, mock.MatchedBy(func(until time.Time) bool {
		return time.Until(until) > 23*time.Hour
	})).Return([]*models.Task{}, nil).Once()

	svc := NewReminderService(repo, newNoopLogger(), time.Minute, 24)
	svc.scan(context.Background(), nil)
	repo.AssertExpectations(t)
}

func TestReminderService_ScanRepositoryError(t *testing.T) {
	repo := new(RepoMock)
	repo.On("FindTasksDueSoon", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("db down")).Once()

	svc := NewReminderService(repo, newNoopLogger(), time.Minute, 24)
	svc.scan(context.Background(), nil)
	repo.AssertExpectations(t)
	require.False(t, svc.running.Load())
}

func TestReminderService_SkipsOverlappingScan(t *testing.T) {
	repo := new(RepoMock)
	svc := NewReminderService(repo, newNoopLogger(), time.Minute, 24)

	svc.running.Store(true)
	svc.scan(context.Background(), nil)
	repo.AssertNotCalled(t, "FindTasksDueSoon", mock.Anything, mock.Anything, mock.Anything)
}

func TestReminderService_RunStopsOnContextCancel(t *testing.T) {
	repo := new(RepoMock)
	repo.On("FindTasksDueSoon", mock.Anything, mock.Anything, mock.Anything).
		Return([]*models.Task{}, nil)

	svc := NewReminderService(repo, newNoopLogger(), 10*time.Millisecond, 24)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx, nil)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}
