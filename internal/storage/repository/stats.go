package repository

import (
	"context"
	"fmt"
	"time"
)

// CountTasksByUser возвращает общее количество задач пользователя.
func (s *Storage) CountTasksByUser(ctx context.Context, userUID string) (int64, error) {
	const op = "storage.CountTasksByUser"
	var count int64
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE user_uid = $1`, userUID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// CountTasksByUserAndStatus возвращает количество задач пользователя в статусе.
func (s *Storage) CountTasksByUserAndStatus(ctx context.Context, userUID, status string) (int64, error) {
	const op = "storage.CountTasksByUserAndStatus"
	var count int64
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE user_uid = $1 AND status = $2`,
		userUID, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// CountUserOverdueTasks возвращает количество просроченных задач пользователя
// на момент now.
func (s *Storage) CountUserOverdueTasks(ctx context.Context, userUID string, now time.Time) (int64, error) {
	const op = "storage.CountUserOverdueTasks"
	var count int64
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks
		 WHERE user_uid = $1 AND due_date < $2 AND status != 'DONE'`,
		userUID, now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// CountTasks возвращает общее количество задач.
func (s *Storage) CountTasks(ctx context.Context) (int64, error) {
	const op = "storage.CountTasks"
	var count int64
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// CountTasksByStatus возвращает количество задач в заданном статусе.
func (s *Storage) CountTasksByStatus(ctx context.Context, status string) (int64, error) {
	const op = "storage.CountTasksByStatus"
	var count int64
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// CountOverdueTasks возвращает количество просроченных задач на момент now.
func (s *Storage) CountOverdueTasks(ctx context.Context, now time.Time) (int64, error) {
	const op = "storage.CountOverdueTasks"
	var count int64
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE due_date < $1 AND status != 'DONE'`,
		now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
