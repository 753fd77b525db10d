// Package enable реализует административный HTTP-обработчик включения
// и выключения учетной записи пользователя.
package enable

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/task-manager/internal/apperrors"
	"github.com/magabrotheeeer/task-manager/internal/http/response"
	"github.com/magabrotheeeer/task-manager/internal/lib/sl"
)

// Handler управляет HTTP-запросами переключения учетной записи.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики переключения учетной записи.
type Service interface {
	ToggleEnabled(ctx context.Context, userUID string) (bool, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Включить или выключить учетную запись
// @Description Переключает признак enabled. Выключенный пользователь не может войти. Только для администратора.
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Param uid path string true "UID пользователя"
// @Success 200 {object} response.Response "Новое состояние учетной записи"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /users/{uid}/enable [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.enable"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid := chi.URLParam(r, "uid")

	enabled, err := h.service.ToggleEnabled(r.Context(), uid)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.Warn("user not found", slog.String("useruid", uid))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to toggle user account", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not toggle user account"))
		return
	}

	log.Info("user account toggled", slog.String("useruid", uid), slog.Bool("enabled", enabled))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"useruid": uid,
		"enabled": enabled,
	}))
}
