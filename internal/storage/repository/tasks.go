package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/task-manager/internal/models"
)

const taskColumns = `id, title, description, status, priority, due_date,
			      completed_at, username, user_uid, created_at, updated_at`

// scanTask читает одну строку результата в models.Task,
// разворачивая nullable колонки due_date и completed_at.
func scanTask(row interface{ Scan(...any) error }) (*models.Task, error) {
	var t models.Task
	var dueDate, completedAt sql.NullTime
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&dueDate, &completedAt, &t.Username, &t.UserUID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	return &t, nil
}

// collectTasks вычитывает все строки результата в срез задач.
func collectTasks(rows *sql.Rows) ([]*models.Task, error) {
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Task
	for rows.Next() {
		item, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateTask вставляет новую задачу и возвращает её ID.
func (s *Storage) CreateTask(ctx context.Context, task models.Task) (int, error) {
	const op = "storage.CreateTask"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO tasks (title, description, status, priority, due_date,
			      completed_at, username, user_uid)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		task.Title, task.Description, task.Status, task.Priority, task.DueDate,
		task.CompletedAt, task.Username, task.UserUID).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return newID, nil
}

// ReadTask возвращает задачу по её ID.
func (s *Storage) ReadTask(ctx context.Context, id int) (*models.Task, error) {
	const op = "storage.ReadTask"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	result, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return result, nil
}

// UpdateTask обновляет данные задачи по её ID и возвращает количество изменённых строк.
func (s *Storage) UpdateTask(ctx context.Context, task models.Task, id int) (int, error) {
	const op = "storage.UpdateTask"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE tasks
			  SET title = $1, description = $2, status = $3, priority = $4,
			      due_date = $5, completed_at = $6, updated_at = now()
			  WHERE id = $7`
	result, err := s.DB.ExecContext(ctx, query,
		task.Title, task.Description, task.Status, task.Priority,
		task.DueDate, task.CompletedAt, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapError(err))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveTask удаляет задачу по ID и возвращает количество удалённых строк.
func (s *Storage) RemoveTask(ctx context.Context, id int) (int, error) {
	const op = "storage.RemoveTask"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM tasks WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListTasksByUser возвращает список задач пользователя с пагинацией.
func (s *Storage) ListTasksByUser(ctx context.Context, userUID string, limit, offset int) ([]*models.Task, error) {
	const op = "storage.ListTasksByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + taskColumns + `
			  FROM tasks
			  WHERE user_uid = $1
			  ORDER BY id
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := collectTasks(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListAllTasks возвращает список всех задач с пагинацией.
func (s *Storage) ListAllTasks(ctx context.Context, limit, offset int) ([]*models.Task, error) {
	const op = "storage.ListAllTasks"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + taskColumns + `
			  FROM tasks
			  ORDER BY id
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := collectTasks(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListTasksByStatus возвращает задачи пользователя в заданном статусе.
func (s *Storage) ListTasksByStatus(ctx context.Context, userUID, status string, limit, offset int) ([]*models.Task, error) {
	const op = "storage.ListTasksByStatus"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + taskColumns + `
			  FROM tasks
			  WHERE user_uid = $1 AND status = $2
			  ORDER BY id
			  LIMIT $3 OFFSET $4`
	rows, err := s.DB.QueryContext(ctx, query, userUID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := collectTasks(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListTasksByPriority возвращает задачи пользователя с заданным приоритетом.
func (s *Storage) ListTasksByPriority(ctx context.Context, userUID, priority string, limit, offset int) ([]*models.Task, error) {
	const op = "storage.ListTasksByPriority"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + taskColumns + `
			  FROM tasks
			  WHERE user_uid = $1 AND priority = $2
			  ORDER BY id
			  LIMIT $3 OFFSET $4`
	rows, err := s.DB.QueryContext(ctx, query, userUID, priority, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := collectTasks(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SearchTasks ищет задачи пользователя по подстроке в заголовке или описании
// без учёта регистра.
func (s *Storage) SearchTasks(ctx context.Context, userUID, term string, limit, offset int) ([]*models.Task, error) {
	const op = "storage.SearchTasks"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + taskColumns + `
			  FROM tasks
			  WHERE user_uid = $1
			    AND (title ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
			  ORDER BY id
			  LIMIT $3 OFFSET $4`
	rows, err := s.DB.QueryContext(ctx, query, userUID, likeEscaper.Replace(term), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := collectTasks(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SearchAllTasks ищет по всем задачам, независимо от владельца.
func (s *Storage) SearchAllTasks(ctx context.Context, term string, limit, offset int) ([]*models.Task, error) {
	const op = "storage.SearchAllTasks"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + taskColumns + `
			  FROM tasks
			  WHERE title ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%'
			  ORDER BY id
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, likeEscaper.Replace(term), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := collectTasks(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListTasksDueBetween возвращает задачи пользователя со сроком в заданном окне.
func (s *Storage) ListTasksDueBetween(ctx context.Context, userUID string, from, to time.Time) ([]*models.Task, error) {
	const op = "storage.ListTasksDueBetween"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + taskColumns + `
			  FROM tasks
			  WHERE user_uid = $1 AND due_date BETWEEN $2 AND $3
			  ORDER BY due_date`
	rows, err := s.DB.QueryContext(ctx, query, userUID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := collectTasks(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListOverdueTasks возвращает просроченные задачи пользователя на момент now.
func (s *Storage) ListOverdueTasks(ctx context.Context, userUID string, now time.Time) ([]*models.Task, error) {
	const op = "storage.ListOverdueTasks"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + taskColumns + `
			  FROM tasks
			  WHERE user_uid = $1 AND due_date < $2 AND status != 'DONE'
			  ORDER BY due_date`
	rows, err := s.DB.QueryContext(ctx, query, userUID, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := collectTasks(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListRecentlyCompletedTasks возвращает задачи пользователя, завершённые
// начиная с since, по убыванию времени завершения.
func (s *Storage) ListRecentlyCompletedTasks(ctx context.Context, userUID string, since time.Time, limit, offset int) ([]*models.Task, error) {
	const op = "storage.ListRecentlyCompletedTasks"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + taskColumns + `
			  FROM tasks
			  WHERE user_uid = $1 AND status = 'DONE' AND completed_at >= $2
			  ORDER BY completed_at DESC
			  LIMIT $3 OFFSET $4`
	rows, err := s.DB.QueryContext(ctx, query, userUID, since, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := collectTasks(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// FindTasksDueSoon находит незавершённые задачи всех пользователей
// со сроком в окне (now, until]. Используется планировщиком напоминаний.
func (s *Storage) FindTasksDueSoon(ctx context.Context, now, until time.Time) ([]*models.Task, error) {
	const op = "storage.FindTasksDueSoon"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + taskColumns + `
			  FROM tasks
			  WHERE due_date BETWEEN $1 AND $2 AND status != 'DONE'
			  ORDER BY due_date`
	rows, err := s.DB.QueryContext(ctx, query, now, until)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := collectTasks(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
