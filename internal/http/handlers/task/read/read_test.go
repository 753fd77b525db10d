package read

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/task-manager/internal/apperrors"
	"github.com/magabrotheeeer/task-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/task-manager/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Read(ctx context.Context, actor *models.User, id int) (*models.Task, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newRequest(t *testing.T, id string, withActor bool) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/tasks/"+id, nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)

	if withActor {
		ctx = context.WithValue(ctx, middlewarectx.User, "alice")
		ctx = context.WithValue(ctx, middlewarectx.Role, models.RoleUser)
		ctx = context.WithValue(ctx, middlewarectx.UserUID, "uid-1")
	}
	return req.WithContext(ctx)
}

func TestReadHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		withActor      bool
		setupMock      func(m *ServiceMock)
		wantStatusCode int
		wantBodySub    string
	}{
		{
			name:      "успешное чтение",
			id:        "5",
			withActor: true,
			setupMock: func(m *ServiceMock) {
				m.On("Read", mock.Anything, mock.Anything, 5).
					Return(&models.Task{ID: 5, Title: "report", UserUID: "uid-1"}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantBodySub:    `"overdue":false`,
		},
		{
			name:           "некорректный ID",
			id:             "abc",
			withActor:      true,
			setupMock:      func(_ *ServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantBodySub:    "invalid task id",
		},
		{
			name:           "нет пользователя в контексте",
			id:             "5",
			withActor:      false,
			setupMock:      func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:      "чужая задача",
			id:        "5",
			withActor: true,
			setupMock: func(m *ServiceMock) {
				m.On("Read", mock.Anything, mock.Anything, 5).
					Return(nil, apperrors.ErrUnauthorizedAccess).Once()
			},
			wantStatusCode: http.StatusForbidden,
			wantBodySub:    "access denied",
		},
		{
			name:      "задача не найдена",
			id:        "5",
			withActor: true,
			setupMock: func(m *ServiceMock) {
				m.On("Read", mock.Anything, mock.Anything, 5).
					Return(nil, apperrors.ErrNotFound).Once()
			},
			wantStatusCode: http.StatusNotFound,
			wantBodySub:    "task not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(ServiceMock)
			tt.setupMock(service)
			handler := New(newNoopLogger(), service)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, newRequest(t, tt.id, tt.withActor))

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			if tt.wantBodySub != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBodySub)
			}
			service.AssertExpectations(t)
		})
	}
}
