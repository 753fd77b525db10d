// Package services содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/task-manager/internal/apperrors"
	"github.com/magabrotheeeer/task-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/task-manager/internal/lib/password"
	"github.com/magabrotheeeer/task-manager/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByLogin возвращает пользователя по username или email.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)

	// GetUserByUsername возвращает пользователя по имени или ошибку, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthService отвечает за регистрацию, авторизацию и обновление JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового пользователя с хэшированием пароля и дефолтной ролью "user".
// Занятые username или email дают apperrors.ErrAlreadyExists.
func (s *AuthService) Register(ctx context.Context, username, email, rawPassword, firstName, lastName string) (models.UserSummary, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return models.UserSummary{}, err
	}
	user := models.User{
		UID:          uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         models.RoleUser, // дефолтная роль при регистрации
		Enabled:      true,
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return models.UserSummary{}, err
	}
	user.UID = uid
	return user.Summary(), nil
}

// Login проверяет пароль пользователя (по username или email) и выпускает JWT.
func (s *AuthService) Login(ctx context.Context, login, rawPassword string) (string, models.UserSummary, error) {
	user, err := s.users.GetUserByLogin(ctx, login)
	if err != nil {
		return "", models.UserSummary{}, fmt.Errorf("login: %w", apperrors.ErrInvalidCredentials)
	}
	if !user.Enabled {
		return "", models.UserSummary{}, fmt.Errorf("login: %w", apperrors.ErrInvalidCredentials)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", models.UserSummary{}, fmt.Errorf("login: %w", apperrors.ErrInvalidCredentials)
	}
	token, err := s.jwtMaker.GenerateToken(user.Username, user.Role, user.UID)
	if err != nil {
		return "", models.UserSummary{}, err
	}
	return token, user.Summary(), nil
}

// ValidateToken проверяет JWT и возвращает информацию о пользователе из claims.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*models.User, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("validate token: %w", apperrors.ErrInvalidToken)
	}
	return &models.User{
		Username: claims.Username,
		Role:     claims.Role,
		UID:      claims.UserUID,
	}, nil
}

// Refresh ротирует токен, которому осталось меньше часа.
// Возвращает токен (новый или исходный) и признак того, что он был заменён.
func (s *AuthService) Refresh(ctx context.Context, token string) (string, bool, *models.UserSummary, error) {
	refreshed, err := s.jwtMaker.RefreshIfNeeded(token)
	if err != nil {
		return "", false, nil, err
	}
	if refreshed == token {
		return token, false, nil, nil
	}
	subject, err := s.jwtMaker.Subject(refreshed)
	if err != nil {
		return "", false, nil, err
	}
	user, err := s.users.GetUserByUsername(ctx, subject)
	if err != nil {
		return "", false, nil, err
	}
	summary := user.Summary()
	return refreshed, true, &summary, nil
}
