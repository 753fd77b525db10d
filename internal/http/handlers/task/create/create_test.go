package create

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/magabrotheeeer/task-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/task-manager/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Create(ctx context.Context, actor *models.User, req models.DummyTask) (*models.Task, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newRequest(t *testing.T, body any, withActor bool) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))

	req := httptest.NewRequest(http.MethodPost, "/tasks", &buf)
	if withActor {
		ctx := context.WithValue(req.Context(), middlewarectx.User, "alice")
		ctx = context.WithValue(ctx, middlewarectx.Role, models.RoleUser)
		ctx = context.WithValue(ctx, middlewarectx.UserUID, "uid-1")
		req = req.WithContext(ctx)
	}
	return req
}

func TestCreateHandler_ServeHTTP(t *testing.T) {
	validReq := models.DummyTask{Title: "write report", Priority: models.PriorityHigh}

	tests := []struct {
		name           string
		requestBody    any
		withActor      bool
		setupMock      func(m *ServiceMock)
		wantStatusCode int
		wantBodySub    string
	}{
		{
			name:        "успешное создание",
			requestBody: validReq,
			withActor:   true,
			setupMock: func(m *ServiceMock) {
				m.On("Create", mock.Anything, mock.Anything, validReq).
					Return(&models.Task{ID: 7, Title: "write report", Status: models.StatusTodo}, nil).Once()
			},
			wantStatusCode: http.StatusCreated,
			wantBodySub:    `"id":7`,
		},
		{
			name:           "некорректный JSON",
			requestBody:    "not a json",
			withActor:      true,
			setupMock:      func(_ *ServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "пустой заголовок",
			requestBody:    models.DummyTask{Description: "no title"},
			withActor:      true,
			setupMock:      func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantBodySub:    "field Title is a required field",
		},
		{
			name:           "статус вне списка",
			requestBody:    models.DummyTask{Title: "bad status", Status: "FINISHED"},
			withActor:      true,
			setupMock:      func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name:           "нет пользователя в контексте",
			requestBody:    validReq,
			withActor:      false,
			setupMock:      func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:        "некорректная дата",
			requestBody: models.DummyTask{Title: "bad date", DueDate: "31-12-2026"},
			withActor:   true,
			setupMock: func(m *ServiceMock) {
				_, parseErr := time.Parse(time.RFC3339, "31-12-2026")
				m.On("Create", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, parseErr).Once()
			},
			wantStatusCode: http.StatusBadRequest,
			wantBodySub:    "RFC3339",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(ServiceMock)
			tt.setupMock(service)
			handler := New(newNoopLogger(), service)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, newRequest(t, tt.requestBody, tt.withActor))

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			if tt.wantBodySub != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBodySub)
			}
			service.AssertExpectations(t)
		})
	}
}
