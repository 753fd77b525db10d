// Package refresh реализует HTTP-обработчик продления JWT.
//
// Handler читает токен из заголовка Authorization и возвращает либо новый
// токен, если до истечения осталось меньше часа, либо исходный без изменений.
package refresh

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/task-manager/internal/http/response"
	"github.com/magabrotheeeer/task-manager/internal/lib/sl"
	"github.com/magabrotheeeer/task-manager/internal/models"
)

// Handler обрабатывает HTTP-запросы продления токена.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики продления токена.
type Service interface {
	Refresh(ctx context.Context, token string) (string, bool, *models.UserSummary, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Продление JWT
// @Description Возвращает новый токен, если текущий скоро истечет, иначе исходный.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Токен продлен или оставлен без изменений"
// @Failure 400 {object} response.ErrorResponse "Отсутствует заголовок Authorization"
// @Router /auth/refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		log.Error("missing or invalid authorization header")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing or invalid authorization header"))
		return
	}
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

	token, rotated, summary, err := h.service.Refresh(r.Context(), tokenStr)
	if err != nil {
		log.Error("failed to refresh token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not refresh token"))
		return
	}

	log.Info("token refresh handled", slog.Bool("rotated", rotated))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token":   token,
		"rotated": rotated,
		"user":    summary,
	}))
}
