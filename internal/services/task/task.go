// Package services содержит бизнес-логику для управления задачами:
// проверку прав доступа, машину статусов и агрегацию статистики.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/task-manager/internal/apperrors"
	"github.com/magabrotheeeer/task-manager/internal/lib/sl"
	"github.com/magabrotheeeer/task-manager/internal/models"
)

// TaskRepository определяет методы для работы с задачами в хранилище.
type TaskRepository interface {
	CreateTask(ctx context.Context, task models.Task) (int, error)
	ReadTask(ctx context.Context, id int) (*models.Task, error)
	UpdateTask(ctx context.Context, task models.Task, id int) (int, error)
	RemoveTask(ctx context.Context, id int) (int, error)
	ListTasksByUser(ctx context.Context, userUID string, limit, offset int) ([]*models.Task, error)
	ListAllTasks(ctx context.Context, limit, offset int) ([]*models.Task, error)
	ListTasksByStatus(ctx context.Context, userUID, status string, limit, offset int) ([]*models.Task, error)
	ListTasksByPriority(ctx context.Context, userUID, priority string, limit, offset int) ([]*models.Task, error)
	SearchTasks(ctx context.Context, userUID, term string, limit, offset int) ([]*models.Task, error)
	SearchAllTasks(ctx context.Context, term string, limit, offset int) ([]*models.Task, error)
	ListTasksDueBetween(ctx context.Context, userUID string, from, to time.Time) ([]*models.Task, error)
	ListOverdueTasks(ctx context.Context, userUID string, now time.Time) ([]*models.Task, error)
	ListRecentlyCompletedTasks(ctx context.Context, userUID string, since time.Time, limit, offset int) ([]*models.Task, error)

	CountTasksByUser(ctx context.Context, userUID string) (int64, error)
	CountTasksByUserAndStatus(ctx context.Context, userUID, status string) (int64, error)
	CountUserOverdueTasks(ctx context.Context, userUID string, now time.Time) (int64, error)
	CountTasks(ctx context.Context) (int64, error)
	CountTasksByStatus(ctx context.Context, status string) (int64, error)
	CountOverdueTasks(ctx context.Context, now time.Time) (int64, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// TaskService реализует бизнес-логику работы с задачами.
// Каждая операция над конкретной задачей сначала загружает её,
// затем проверяет права доступа и только после этого трогает хранилище.
type TaskService struct {
	repo  TaskRepository
	cache Cache
	log   *slog.Logger
}

// NewTaskService создает новый экземпляр TaskService.
func NewTaskService(repo TaskRepository, cache Cache, log *slog.Logger) *TaskService {
	return &TaskService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// canAccess отвечает, может ли actor читать и менять задачу:
// владелец задачи или администратор.
func canAccess(task *models.Task, actor *models.User) bool {
	return task.UserUID == actor.UID || actor.Role == models.RoleAdmin
}

func cacheKey(id int) string {
	return fmt.Sprintf("task:%d", id)
}

// Create создает новую задачу для пользователя. Пустые статус и приоритет
// получают значения по умолчанию TODO и MEDIUM.
func (s *TaskService) Create(ctx context.Context, actor *models.User, req models.DummyTask) (*models.Task, error) {
	task := models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.StatusTodo,
		Priority:    models.PriorityMedium,
		Username:    actor.Username,
		UserUID:     actor.UID,
	}
	if req.Priority != "" {
		task.Priority = req.Priority
	}
	if req.DueDate != "" {
		dueDate, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("invalid due date: %w", err)
		}
		task.DueDate = &dueDate
	}
	if req.Status != "" {
		task.SetStatus(req.Status, time.Now())
	}

	id, err := s.repo.CreateTask(ctx, task)
	if err != nil {
		return nil, err
	}
	s.log.Info("created new task", slog.Int("id", id))

	created, err := s.repo.ReadTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(cacheKey(id), created, time.Hour); err != nil {
		s.log.Warn("failed to cache task", slog.String("key", cacheKey(id)), sl.Err(err))
	}
	return created, nil
}

// Read возвращает задачу по ID, используя кеш или репозиторий.
// Возвращает ErrUnauthorizedAccess, если actor не владелец и не админ.
func (s *TaskService) Read(ctx context.Context, actor *models.User, id int) (*models.Task, error) {
	var result *models.Task
	found, err := s.cache.Get(cacheKey(id), &result)
	if err != nil {
		s.log.Warn("cache lookup failed", slog.String("key", cacheKey(id)), sl.Err(err))
		found = false
	}
	if !found {
		result, err = s.repo.ReadTask(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(cacheKey(id), result, time.Hour); err != nil {
			s.log.Warn("failed to cache task", slog.String("key", cacheKey(id)), sl.Err(err))
		}
	}
	if !canAccess(result, actor) {
		return nil, fmt.Errorf("read task %d: %w", id, apperrors.ErrUnauthorizedAccess)
	}
	return result, nil
}

// Update перезаписывает поля задачи. Смена статуса проходит через машину
// статусов, чтобы отметка завершения оставалась согласованной.
func (s *TaskService) Update(ctx context.Context, actor *models.User, id int, req models.DummyTask) (*models.Task, error) {
	existing, err := s.repo.ReadTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(existing, actor) {
		return nil, fmt.Errorf("update task %d: %w", id, apperrors.ErrUnauthorizedAccess)
	}

	existing.Title = req.Title
	existing.Description = req.Description
	if req.Priority != "" {
		existing.Priority = req.Priority
	}
	existing.DueDate = nil
	if req.DueDate != "" {
		dueDate, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("invalid due date: %w", err)
		}
		existing.DueDate = &dueDate
	}
	if req.Status != "" {
		existing.SetStatus(req.Status, time.Now())
	}

	if _, err := s.repo.UpdateTask(ctx, *existing, id); err != nil {
		return nil, err
	}
	s.log.Info("updated task in storage", slog.Int("id", id))

	if err := s.cache.Invalidate(cacheKey(id)); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cacheKey(id)), sl.Err(err))
	}
	return existing, nil
}

// UpdateStatus переводит задачу в новый статус через машину статусов.
func (s *TaskService) UpdateStatus(ctx context.Context, actor *models.User, id int, status string) (*models.Task, error) {
	existing, err := s.repo.ReadTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(existing, actor) {
		return nil, fmt.Errorf("update task status %d: %w", id, apperrors.ErrUnauthorizedAccess)
	}

	existing.SetStatus(status, time.Now())

	if _, err := s.repo.UpdateTask(ctx, *existing, id); err != nil {
		return nil, err
	}
	s.log.Info("updated task status", slog.Int("id", id), slog.String("status", status))

	if err := s.cache.Invalidate(cacheKey(id)); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cacheKey(id)), sl.Err(err))
	}
	return existing, nil
}

// Remove безвозвратно удаляет задачу.
func (s *TaskService) Remove(ctx context.Context, actor *models.User, id int) error {
	existing, err := s.repo.ReadTask(ctx, id)
	if err != nil {
		return err
	}
	if !canAccess(existing, actor) {
		return fmt.Errorf("remove task %d: %w", id, apperrors.ErrUnauthorizedAccess)
	}

	if err := s.cache.Invalidate(cacheKey(id)); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey(id)), sl.Err(err))
	}

	if _, err := s.repo.RemoveTask(ctx, id); err != nil {
		return err
	}
	s.log.Info("removed task", slog.Int("id", id))
	return nil
}

// List возвращает задачи пользователя с пагинацией.
func (s *TaskService) List(ctx context.Context, actor *models.User, limit, offset int) ([]*models.Task, error) {
	return s.repo.ListTasksByUser(ctx, actor.UID, limit, offset)
}

// ListAll возвращает задачи всех пользователей. Только для администратора.
func (s *TaskService) ListAll(ctx context.Context, limit, offset int) ([]*models.Task, error) {
	return s.repo.ListAllTasks(ctx, limit, offset)
}

// ListByUser возвращает задачи конкретного пользователя. Только для администратора.
func (s *TaskService) ListByUser(ctx context.Context, userUID string, limit, offset int) ([]*models.Task, error) {
	return s.repo.ListTasksByUser(ctx, userUID, limit, offset)
}

// Search ищет по подстроке в заголовке и описании без учёта регистра.
// Администратор ищет по всем задачам, остальные — только по своим.
func (s *TaskService) Search(ctx context.Context, actor *models.User, term string, limit, offset int) ([]*models.Task, error) {
	if actor.Role == models.RoleAdmin {
		return s.repo.SearchAllTasks(ctx, term, limit, offset)
	}
	return s.repo.SearchTasks(ctx, actor.UID, term, limit, offset)
}

// ListByStatus возвращает задачи пользователя в заданном статусе.
func (s *TaskService) ListByStatus(ctx context.Context, actor *models.User, status string, limit, offset int) ([]*models.Task, error) {
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("unknown status %q", status)
	}
	return s.repo.ListTasksByStatus(ctx, actor.UID, status, limit, offset)
}

// ListByPriority возвращает задачи пользователя с заданным приоритетом.
func (s *TaskService) ListByPriority(ctx context.Context, actor *models.User, priority string, limit, offset int) ([]*models.Task, error) {
	if !models.ValidPriority(priority) {
		return nil, fmt.Errorf("unknown priority %q", priority)
	}
	return s.repo.ListTasksByPriority(ctx, actor.UID, priority, limit, offset)
}

// ListDueBetween возвращает задачи пользователя со сроком в заданном окне.
func (s *TaskService) ListDueBetween(ctx context.Context, actor *models.User, from, to time.Time) ([]*models.Task, error) {
	return s.repo.ListTasksDueBetween(ctx, actor.UID, from, to)
}

// ListOverdue возвращает просроченные задачи пользователя на текущий момент.
func (s *TaskService) ListOverdue(ctx context.Context, actor *models.User) ([]*models.Task, error) {
	return s.repo.ListOverdueTasks(ctx, actor.UID, time.Now())
}

// ListRecentlyCompleted возвращает задачи, завершённые за последние days дней,
// по убыванию времени завершения.
func (s *TaskService) ListRecentlyCompleted(ctx context.Context, actor *models.User, days, limit, offset int) ([]*models.Task, error) {
	since := time.Now().AddDate(0, 0, -days)
	return s.repo.ListRecentlyCompletedTasks(ctx, actor.UID, since, limit, offset)
}

// UserStatistics собирает счётчики задач пользователя. Количество
// просроченных считается относительно текущего момента, не хранится.
func (s *TaskService) UserStatistics(ctx context.Context, userUID string) (models.TaskStatistics, error) {
	now := time.Now()

	total, err := s.repo.CountTasksByUser(ctx, userUID)
	if err != nil {
		return models.TaskStatistics{}, err
	}
	todo, err := s.repo.CountTasksByUserAndStatus(ctx, userUID, models.StatusTodo)
	if err != nil {
		return models.TaskStatistics{}, err
	}
	inProgress, err := s.repo.CountTasksByUserAndStatus(ctx, userUID, models.StatusInProgress)
	if err != nil {
		return models.TaskStatistics{}, err
	}
	completed, err := s.repo.CountTasksByUserAndStatus(ctx, userUID, models.StatusDone)
	if err != nil {
		return models.TaskStatistics{}, err
	}
	overdue, err := s.repo.CountUserOverdueTasks(ctx, userUID, now)
	if err != nil {
		return models.TaskStatistics{}, err
	}

	return models.TaskStatistics{
		TotalTasks:      total,
		TodoTasks:       todo,
		InProgressTasks: inProgress,
		CompletedTasks:  completed,
		OverdueTasks:    overdue,
		CompletionRate:  models.CalcCompletionRate(completed, total),
	}, nil
}

// OverallStatistics собирает счётчики по всем задачам. Только для администратора.
func (s *TaskService) OverallStatistics(ctx context.Context) (models.TaskStatistics, error) {
	now := time.Now()

	total, err := s.repo.CountTasks(ctx)
	if err != nil {
		return models.TaskStatistics{}, err
	}
	todo, err := s.repo.CountTasksByStatus(ctx, models.StatusTodo)
	if err != nil {
		return models.TaskStatistics{}, err
	}
	inProgress, err := s.repo.CountTasksByStatus(ctx, models.StatusInProgress)
	if err != nil {
		return models.TaskStatistics{}, err
	}
	completed, err := s.repo.CountTasksByStatus(ctx, models.StatusDone)
	if err != nil {
		return models.TaskStatistics{}, err
	}
	overdue, err := s.repo.CountOverdueTasks(ctx, now)
	if err != nil {
		return models.TaskStatistics{}, err
	}

	return models.TaskStatistics{
		TotalTasks:      total,
		TodoTasks:       todo,
		InProgressTasks: inProgress,
		CompletedTasks:  completed,
		OverdueTasks:    overdue,
		CompletionRate:  models.CalcCompletionRate(completed, total),
	}, nil
}
