// Package services содержит логику управления пользователями:
// профили, административные операции и сводную статистику.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/task-manager/internal/apperrors"
	"github.com/magabrotheeeer/task-manager/internal/models"
)

// UserRepository определяет методы для работы с пользователями в хранилище.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	SearchUsers(ctx context.Context, term string, limit, offset int) ([]*models.User, error)
	ListUsersByRole(ctx context.Context, role string, limit, offset int) ([]*models.User, error)
	ListEnabledUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	ListMostActiveUsers(ctx context.Context, limit int) ([]*models.User, error)
	ListUsersWithTasksDueSoon(ctx context.Context, now, until time.Time) ([]*models.User, error)
	UpdateUserProfile(ctx context.Context, userUID string, profile models.DummyProfile) (int, error)
	UpdateUserRole(ctx context.Context, userUID, role string) (int, error)
	ToggleUserEnabled(ctx context.Context, userUID string) (bool, error)
	DeleteUser(ctx context.Context, userUID string) (int, error)
	CountUsers(ctx context.Context) (int64, error)
	CountEnabledUsers(ctx context.Context) (int64, error)
	CountUsersByRole(ctx context.Context, role string) (int64, error)
}

func toSummaries(users []*models.User) []models.UserSummary {
	summaries := make([]models.UserSummary, 0, len(users))
	for _, user := range users {
		summaries = append(summaries, user.Summary())
	}
	return summaries
}

// UserService реализует операции над пользователями.
type UserService struct {
	users UserRepository
	log   *slog.Logger
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(users UserRepository, log *slog.Logger) *UserService {
	return &UserService{
		users: users,
		log:   log,
	}
}

// Profile возвращает публичное представление пользователя.
func (s *UserService) Profile(ctx context.Context, userUID string) (models.UserSummary, error) {
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return models.UserSummary{}, err
	}
	return user.Summary(), nil
}

// UpdateProfile обновляет email, имя и фамилию пользователя.
// Конфликт email с другим пользователем приходит из хранилища как ErrAlreadyExists.
func (s *UserService) UpdateProfile(ctx context.Context, userUID string, profile models.DummyProfile) (models.UserSummary, error) {
	if _, err := s.users.UpdateUserProfile(ctx, userUID, profile); err != nil {
		return models.UserSummary{}, err
	}
	s.log.Info("updated user profile", slog.String("useruid", userUID))

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return models.UserSummary{}, err
	}
	return user.Summary(), nil
}

// List возвращает пользователей с пагинацией. Только для администратора.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]models.UserSummary, error) {
	users, err := s.users.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return toSummaries(users), nil
}

// Search ищет пользователей по подстроке в username, имени или фамилии.
// Только для администратора.
func (s *UserService) Search(ctx context.Context, term string, limit, offset int) ([]models.UserSummary, error) {
	users, err := s.users.SearchUsers(ctx, term, limit, offset)
	if err != nil {
		return nil, err
	}
	return toSummaries(users), nil
}

// ListByRole возвращает пользователей с заданной ролью. Только для администратора.
func (s *UserService) ListByRole(ctx context.Context, role string, limit, offset int) ([]models.UserSummary, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	users, err := s.users.ListUsersByRole(ctx, role, limit, offset)
	if err != nil {
		return nil, err
	}
	return toSummaries(users), nil
}

// ListEnabled возвращает активные учетные записи. Только для администратора.
func (s *UserService) ListEnabled(ctx context.Context, limit, offset int) ([]models.UserSummary, error) {
	users, err := s.users.ListEnabledUsers(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return toSummaries(users), nil
}

// ListMostActive возвращает пользователей по убыванию количества задач.
// Только для администратора.
func (s *UserService) ListMostActive(ctx context.Context, limit int) ([]models.UserSummary, error) {
	users, err := s.users.ListMostActiveUsers(ctx, limit)
	if err != nil {
		return nil, err
	}
	return toSummaries(users), nil
}

// ListWithTasksDueSoon возвращает пользователей, у которых есть незавершённые
// задачи со сроком в ближайшие hours часов. Только для администратора.
func (s *UserService) ListWithTasksDueSoon(ctx context.Context, hours int) ([]models.UserSummary, error) {
	now := time.Now()
	users, err := s.users.ListUsersWithTasksDueSoon(ctx, now, now.Add(time.Duration(hours)*time.Hour))
	if err != nil {
		return nil, err
	}
	return toSummaries(users), nil
}

// Get возвращает пользователя по UID. Только для администратора.
func (s *UserService) Get(ctx context.Context, userUID string) (models.UserSummary, error) {
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return models.UserSummary{}, err
	}
	return user.Summary(), nil
}

// ChangeRole назначает пользователю роль user или admin.
func (s *UserService) ChangeRole(ctx context.Context, userUID, role string) (models.UserSummary, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return models.UserSummary{}, fmt.Errorf("unknown role %q", role)
	}
	if _, err := s.users.UpdateUserRole(ctx, userUID, role); err != nil {
		return models.UserSummary{}, err
	}
	s.log.Info("changed user role", slog.String("useruid", userUID), slog.String("role", role))

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return models.UserSummary{}, err
	}
	return user.Summary(), nil
}

// ToggleEnabled включает или выключает учетную запись и возвращает новое состояние.
// Выключенный пользователь не может войти, его задачи остаются в хранилище.
func (s *UserService) ToggleEnabled(ctx context.Context, userUID string) (bool, error) {
	enabled, err := s.users.ToggleUserEnabled(ctx, userUID)
	if err != nil {
		return false, err
	}
	s.log.Info("toggled user account", slog.String("useruid", userUID), slog.Bool("enabled", enabled))
	return enabled, nil
}

// Delete удаляет пользователя, его задачи удаляются каскадно на уровне базы.
// Если пользователя с таким UID нет, возвращает ErrNotFound.
func (s *UserService) Delete(ctx context.Context, userUID string) error {
	rowsAffected, err := s.users.DeleteUser(ctx, userUID)
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("delete user %s: %w", userUID, apperrors.ErrNotFound)
	}
	s.log.Info("deleted user", slog.String("useruid", userUID))
	return nil
}

// Statistics собирает счётчики пользователей по состоянию и ролям.
func (s *UserService) Statistics(ctx context.Context) (models.UserStatistics, error) {
	total, err := s.users.CountUsers(ctx)
	if err != nil {
		return models.UserStatistics{}, err
	}
	enabled, err := s.users.CountEnabledUsers(ctx)
	if err != nil {
		return models.UserStatistics{}, err
	}
	admins, err := s.users.CountUsersByRole(ctx, models.RoleAdmin)
	if err != nil {
		return models.UserStatistics{}, err
	}
	regular, err := s.users.CountUsersByRole(ctx, models.RoleUser)
	if err != nil {
		return models.UserStatistics{}, err
	}

	return models.UserStatistics{
		TotalUsers:   total,
		EnabledUsers: enabled,
		AdminUsers:   admins,
		RegularUsers: regular,
	}, nil
}
