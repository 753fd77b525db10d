package remove

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/task-manager/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Delete(ctx context.Context, userUID string) error {
	args := m.Called(ctx, userUID)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newRequest(t *testing.T, uid string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodDelete, "/users/"+uid, nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("uid", uid)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	return req.WithContext(ctx)
}

func TestRemoveHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		uid            string
		setupMock      func(m *ServiceMock)
		wantStatusCode int
		wantBodySub    string
	}{
		{
			name: "успешное удаление",
			uid:  "uid-1",
			setupMock: func(m *ServiceMock) {
				m.On("Delete", mock.Anything, "uid-1").Return(nil).Once()
			},
			wantStatusCode: http.StatusNoContent,
		},
		{
			name: "пользователь не найден",
			uid:  "uid-missing",
			setupMock: func(m *ServiceMock) {
				m.On("Delete", mock.Anything, "uid-missing").
					Return(apperrors.ErrNotFound).Once()
			},
			wantStatusCode: http.StatusNotFound,
			wantBodySub:    "user not found",
		},
		{
			name: "ошибка хранилища",
			uid:  "uid-1",
			setupMock: func(m *ServiceMock) {
				m.On("Delete", mock.Anything, "uid-1").
					Return(errors.New("connection reset")).Once()
			},
			wantStatusCode: http.StatusInternalServerError,
			wantBodySub:    "could not delete user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(ServiceMock)
			tt.setupMock(service)
			handler := New(newNoopLogger(), service)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, newRequest(t, tt.uid))

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			if tt.wantBodySub != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBodySub)
			}
			service.AssertExpectations(t)
		})
	}
}
