// Package taskmanager предоставляет маршруты для основного приложения.
package taskmanager

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/task-manager/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/task-manager/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/task-manager/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/task-manager/internal/http/handlers/health"
	taskbypriority "github.com/magabrotheeeer/task-manager/internal/http/handlers/task/bypriority"
	taskbystatus "github.com/magabrotheeeer/task-manager/internal/http/handlers/task/bystatus"
	taskcompleted "github.com/magabrotheeeer/task-manager/internal/http/handlers/task/completed"
	taskcreate "github.com/magabrotheeeer/task-manager/internal/http/handlers/task/create"
	taskdue "github.com/magabrotheeeer/task-manager/internal/http/handlers/task/due"
	tasklist "github.com/magabrotheeeer/task-manager/internal/http/handlers/task/list"
	tasklistall "github.com/magabrotheeeer/task-manager/internal/http/handlers/task/listall"
	taskoverdue "github.com/magabrotheeeer/task-manager/internal/http/handlers/task/overdue"
	taskread "github.com/magabrotheeeer/task-manager/internal/http/handlers/task/read"
	taskremove "github.com/magabrotheeeer/task-manager/internal/http/handlers/task/remove"
	tasksearch "github.com/magabrotheeeer/task-manager/internal/http/handlers/task/search"
	taskstats "github.com/magabrotheeeer/task-manager/internal/http/handlers/task/stats"
	taskstatsall "github.com/magabrotheeeer/task-manager/internal/http/handlers/task/statsall"
	taskstatus "github.com/magabrotheeeer/task-manager/internal/http/handlers/task/status"
	taskupdate "github.com/magabrotheeeer/task-manager/internal/http/handlers/task/update"
	useractive "github.com/magabrotheeeer/task-manager/internal/http/handlers/user/active"
	userbyrole "github.com/magabrotheeeer/task-manager/internal/http/handlers/user/byrole"
	userduesoon "github.com/magabrotheeeer/task-manager/internal/http/handlers/user/duesoon"
	userenable "github.com/magabrotheeeer/task-manager/internal/http/handlers/user/enable"
	userenabled "github.com/magabrotheeeer/task-manager/internal/http/handlers/user/enabled"
	userlist "github.com/magabrotheeeer/task-manager/internal/http/handlers/user/list"
	userprofile "github.com/magabrotheeeer/task-manager/internal/http/handlers/user/profile"
	userprofileupdate "github.com/magabrotheeeer/task-manager/internal/http/handlers/user/profileupdate"
	userread "github.com/magabrotheeeer/task-manager/internal/http/handlers/user/read"
	userremove "github.com/magabrotheeeer/task-manager/internal/http/handlers/user/remove"
	userrole "github.com/magabrotheeeer/task-manager/internal/http/handlers/user/role"
	usersearch "github.com/magabrotheeeer/task-manager/internal/http/handlers/user/search"
	userstats "github.com/magabrotheeeer/task-manager/internal/http/handlers/user/stats"
	"github.com/magabrotheeeer/task-manager/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/task-manager/internal/services/auth"
	taskservice "github.com/magabrotheeeer/task-manager/internal/services/task"
	userservice "github.com/magabrotheeeer/task-manager/internal/services/user"
	"github.com/magabrotheeeer/task-manager/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, db *repository.Storage,
	authService *authservice.AuthService, taskService *taskservice.TaskService,
	userService *userservice.UserService) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, authService).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authService).ServeHTTP)
		r.Post("/auth/refresh", refresh.New(logger, authService).ServeHTTP)
		r.Get("/health", health.New(logger, db).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/tasks", taskcreate.New(logger, taskService).ServeHTTP)
			r.Get("/tasks", tasklist.New(logger, taskService).ServeHTTP)
			r.Get("/tasks/search", tasksearch.New(logger, taskService).ServeHTTP)
			r.Get("/tasks/overdue", taskoverdue.New(logger, taskService).ServeHTTP)
			r.Get("/tasks/completed", taskcompleted.New(logger, taskService).ServeHTTP)
			r.Get("/tasks/due", taskdue.New(logger, taskService).ServeHTTP)
			r.Get("/tasks/statistics", taskstats.New(logger, taskService).ServeHTTP)
			r.Get("/tasks/status/{status}", taskbystatus.New(logger, taskService).ServeHTTP)
			r.Get("/tasks/priority/{priority}", taskbypriority.New(logger, taskService).ServeHTTP)
			r.Get("/tasks/{id}", taskread.New(logger, taskService).ServeHTTP)
			r.Put("/tasks/{id}", taskupdate.New(logger, taskService).ServeHTTP)
			r.Patch("/tasks/{id}/status", taskstatus.New(logger, taskService).ServeHTTP)
			r.Delete("/tasks/{id}", taskremove.New(logger, taskService).ServeHTTP)

			r.Get("/users/profile", userprofile.New(logger, userService).ServeHTTP)
			r.Put("/users/profile", userprofileupdate.New(logger, userService).ServeHTTP)

			// Административная группа
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireAdmin(logger))

				r.Get("/tasks/all", tasklistall.New(logger, taskService).ServeHTTP)
				r.Get("/tasks/user/{uid}", tasklistall.New(logger, taskService).ServeHTTP)
				r.Get("/tasks/statistics/overall", taskstatsall.New(logger, taskService).ServeHTTP)

				r.Get("/users", userlist.New(logger, userService).ServeHTTP)
				r.Get("/users/search", usersearch.New(logger, userService).ServeHTTP)
				r.Get("/users/role/{role}", userbyrole.New(logger, userService).ServeHTTP)
				r.Get("/users/enabled", userenabled.New(logger, userService).ServeHTTP)
				r.Get("/users/active", useractive.New(logger, userService).ServeHTTP)
				r.Get("/users/tasks-due-soon", userduesoon.New(logger, userService).ServeHTTP)
				r.Get("/users/statistics", userstats.New(logger, userService).ServeHTTP)
				r.Get("/users/{uid}", userread.New(logger, userService).ServeHTTP)
				r.Put("/users/{uid}/role", userrole.New(logger, userService).ServeHTTP)
				r.Put("/users/{uid}/enable", userenable.New(logger, userService).ServeHTTP)
				r.Delete("/users/{uid}", userremove.New(logger, userService).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
