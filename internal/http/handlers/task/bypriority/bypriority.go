// Package bypriority реализует HTTP-обработчик фильтра задач по приоритету.
package bypriority

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/task-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/task-manager/internal/http/response"
	"github.com/magabrotheeeer/task-manager/internal/lib/sl"
	"github.com/magabrotheeeer/task-manager/internal/models"
)

// Handler управляет HTTP-запросами фильтра по приоритету.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики фильтра по приоритету.
type Service interface {
	ListByPriority(ctx context.Context, actor *models.User, priority string, limit, offset int) ([]*models.Task, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Задачи пользователя с заданным приоритетом
// @Tags Tasks
// @Produce  json
// @Security BearerAuth
// @Param priority path string true "Приоритет задачи" Enums(LOW, MEDIUM, HIGH, URGENT)
// @Param limit query int false "Размер страницы" default(10)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {object} response.Response "Список задач"
// @Failure 400 {object} response.ErrorResponse "Неизвестный приоритет"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /tasks/priority/{priority} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.task.bypriority"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	priority := chi.URLParam(r, "priority")
	if !models.ValidPriority(priority) {
		log.Error("unknown priority", slog.String("priority", priority))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("unknown priority"))
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	actor, ok := middlewarectx.Actor(r.Context())
	if !ok {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	tasks, err := h.service.ListByPriority(r.Context(), actor, priority, limit, offset)
	if err != nil {
		log.Error("failed to list tasks by priority", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list tasks"))
		return
	}

	log.Info("tasks listed", slog.String("priority", priority), slog.Int("count", len(tasks)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"count": len(tasks),
		"tasks": models.NewTaskViews(tasks, time.Now()),
	}))
}
