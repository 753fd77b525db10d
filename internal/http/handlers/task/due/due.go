// Package due реализует HTTP-обработчик задач со сроком в заданном окне.
package due

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/task-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/task-manager/internal/http/response"
	"github.com/magabrotheeeer/task-manager/internal/lib/sl"
	"github.com/magabrotheeeer/task-manager/internal/models"
)

// Handler управляет HTTP-запросами задач со сроком в окне.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики выборки по окну сроков.
type Service interface {
	ListDueBetween(ctx context.Context, actor *models.User, from, to time.Time) ([]*models.Task, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Задачи со сроком в заданном окне
// @Description Возвращает задачи пользователя, чей срок попадает в окно from..to. Даты в формате RFC3339.
// @Tags Tasks
// @Produce  json
// @Security BearerAuth
// @Param from query string true "Начало окна, RFC3339"
// @Param to query string true "Конец окна, RFC3339"
// @Success 200 {object} response.Response "Список задач"
// @Failure 400 {object} response.ErrorResponse "Некорректные даты окна"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /tasks/due [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.task.due"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		log.Error("invalid from parameter", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("from must be in RFC3339 format"))
		return
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		log.Error("invalid to parameter", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("to must be in RFC3339 format"))
		return
	}
	if to.Before(from) {
		log.Error("empty window", slog.Time("from", from), slog.Time("to", to))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("to must not be before from"))
		return
	}

	actor, ok := middlewarectx.Actor(r.Context())
	if !ok {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	tasks, err := h.service.ListDueBetween(r.Context(), actor, from, to)
	if err != nil {
		log.Error("failed to list tasks due in window", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list tasks"))
		return
	}

	log.Info("tasks listed", slog.Int("count", len(tasks)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"count": len(tasks),
		"tasks": models.NewTaskViews(tasks, time.Now()),
	}))
}
