package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/task-manager/internal/models"
)

const userColumns = `uid, username, email, password_hash, first_name, last_name,
			      role, enabled, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.UID, &u.Username, &u.Email, &u.PasswordHash,
		&u.FirstName, &u.LastName, &u.Role, &u.Enabled, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

func collectUsers(rows *sql.Rows) ([]*models.User, error) {
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
// Нарушение уникальности username или email превращается в ErrAlreadyExists.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (uid, username, email, password_hash, first_name,
			      last_name, role, enabled)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.UID, user.Username, user.Email, user.PasswordHash, user.FirstName,
		user.LastName, user.Role, user.Enabled).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, mapError(err))
	}
	return newUID, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE username = $1`
	row := s.DB.QueryRowContext(ctx, query, username)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// GetUserByLogin возвращает пользователя по username или email.
func (s *Storage) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	const op = "storage.GetUserByLogin"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE username = $1 OR email = $1`
	row := s.DB.QueryRowContext(ctx, query, login)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE uid = $1`
	row := s.DB.QueryRowContext(ctx, query, userUID)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// ListUsers возвращает список пользователей с пагинацией.
func (s *Storage) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  ORDER BY created_at
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := collectUsers(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SearchUsers ищет пользователей по подстроке в username, имени или фамилии
// без учёта регистра.
func (s *Storage) SearchUsers(ctx context.Context, term string, limit, offset int) ([]*models.User, error) {
	const op = "storage.SearchUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE username ILIKE '%' || $1 || '%'
			     OR first_name ILIKE '%' || $1 || '%'
			     OR last_name ILIKE '%' || $1 || '%'
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, likeEscaper.Replace(term), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := collectUsers(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListUsersByRole возвращает пользователей с заданной ролью.
func (s *Storage) ListUsersByRole(ctx context.Context, role string, limit, offset int) ([]*models.User, error) {
	const op = "storage.ListUsersByRole"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE role = $1
			  ORDER BY created_at
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, role, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := collectUsers(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListEnabledUsers возвращает активные учетные записи.
func (s *Storage) ListEnabledUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	const op = "storage.ListEnabledUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE enabled
			  ORDER BY created_at
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := collectUsers(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListMostActiveUsers возвращает пользователей по убыванию количества задач.
func (s *Storage) ListMostActiveUsers(ctx context.Context, limit int) ([]*models.User, error) {
	const op = "storage.ListMostActiveUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.uid, u.username, u.email, u.password_hash, u.first_name,
				     u.last_name, u.role, u.enabled, u.created_at
			  FROM users u
			  LEFT JOIN tasks t ON t.user_uid = u.uid
			  GROUP BY u.uid
			  ORDER BY COUNT(t.id) DESC
			  LIMIT $1`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := collectUsers(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListUsersWithTasksDueSoon возвращает пользователей, у которых есть
// незавершённые задачи со сроком в окне (now, until].
func (s *Storage) ListUsersWithTasksDueSoon(ctx context.Context, now, until time.Time) ([]*models.User, error) {
	const op = "storage.ListUsersWithTasksDueSoon"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT DISTINCT u.uid, u.username, u.email, u.password_hash, u.first_name,
				     u.last_name, u.role, u.enabled, u.created_at
			  FROM users u
			  JOIN tasks t ON t.user_uid = u.uid
			  WHERE t.due_date BETWEEN $1 AND $2 AND t.status != 'DONE'`
	rows, err := s.DB.QueryContext(ctx, query, now, until)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := collectUsers(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateUserProfile обновляет профиль пользователя и возвращает количество
// изменённых строк. Конфликт уникальности превращается в ErrAlreadyExists.
func (s *Storage) UpdateUserProfile(ctx context.Context, userUID string, profile models.DummyProfile) (int, error) {
	const op = "storage.UpdateUserProfile"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET username = $1, email = $2, first_name = $3, last_name = $4
			  WHERE uid = $5`
	res, err := s.DB.ExecContext(ctx, query,
		profile.Username, profile.Email, profile.FirstName, profile.LastName, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapError(err))
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// UpdateUserRole меняет роль пользователя.
func (s *Storage) UpdateUserRole(ctx context.Context, userUID, role string) (int, error) {
	const op = "storage.UpdateUserRole"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET role = $1
			  WHERE uid = $2`
	res, err := s.DB.ExecContext(ctx, query, role, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ToggleUserEnabled переключает флаг активности учётной записи
// и возвращает новое значение.
func (s *Storage) ToggleUserEnabled(ctx context.Context, userUID string) (bool, error) {
	const op = "storage.ToggleUserEnabled"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET enabled = NOT enabled
			  WHERE uid = $1
			  RETURNING enabled`
	var enabled bool
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&enabled); err != nil {
		return false, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return enabled, nil
}

// DeleteUser удаляет пользователя. Задачи удаляются каскадно по внешнему ключу.
func (s *Storage) DeleteUser(ctx context.Context, userUID string) (int, error) {
	const op = "storage.DeleteUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM users WHERE uid = $1`
	res, err := s.DB.ExecContext(ctx, query, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// CountUsers возвращает общее количество пользователей.
func (s *Storage) CountUsers(ctx context.Context) (int64, error) {
	const op = "storage.CountUsers"
	var count int64
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// CountEnabledUsers возвращает количество активных пользователей.
func (s *Storage) CountEnabledUsers(ctx context.Context) (int64, error) {
	const op = "storage.CountEnabledUsers"
	var count int64
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE enabled`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// CountUsersByRole возвращает количество пользователей с заданной ролью.
func (s *Storage) CountUsersByRole(ctx context.Context, role string) (int64, error) {
	const op = "storage.CountUsersByRole"
	var count int64
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
