// Package statsall реализует HTTP-обработчик общей статистики задач.
package statsall

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/task-manager/internal/http/response"
	"github.com/magabrotheeeer/task-manager/internal/lib/sl"
	"github.com/magabrotheeeer/task-manager/internal/models"
)

// Handler управляет HTTP-запросами общей статистики задач.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики общей статистики.
type Service interface {
	OverallStatistics(ctx context.Context) (models.TaskStatistics, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Общая статистика задач
// @Description Счетчики по всем задачам системы. Только для администратора.
// @Tags Tasks
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Статистика"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /tasks/statistics/overall [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.task.statsall"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	stats, err := h.service.OverallStatistics(r.Context())
	if err != nil {
		log.Error("failed to collect statistics", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not collect statistics"))
		return
	}

	log.Info("overall statistics collected")
	render.JSON(w, r, response.OKWithData(stats))
}
