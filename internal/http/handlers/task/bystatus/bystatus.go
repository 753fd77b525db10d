// Package bystatus реализует HTTP-обработчик фильтра задач по статусу.
package bystatus

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

// Handler управляет HTTP-запросами фильтра по статусу.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики фильтра по статусу.
type Service interface {
	ListByStatus(ctx context.Context, actor *models.User, status string, limit, offset int) ([]*models.Task, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Задачи пользователя в заданном статусе
// @Tags Tasks
// @Produce  json
// @Security BearerAuth
// @Param status path string true "Статус задачи" Enums(TODO, IN_PROGRESS, DONE)
// @Param limit query int false "Размер страницы" default(10)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {object} response.Response "Список задач"
// @Failure 400 {object} response.ErrorResponse "Неизвестный статус"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /tasks/status/{status} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.task.bystatus"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	status := chi.URLParam(r, "status")
	if !models.ValidStatus(status) {
		log.Error("unknown status", slog.String("status", status))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("unknown status"))
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

	tasks, err := h.service.ListByStatus(r.Context(), actor, status, limit, offset)
	if err != nil {
		log.Error("failed to list tasks by status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list tasks"))
		return
	}

	log.Info("tasks listed", slog.String("status", status), slog.Int("count", len(tasks)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"count": len(tasks),
		"tasks": models.NewTaskViews(tasks, time.Now()),
	}))
}
