// Package services содержит планировщик напоминаний: периодически находит
// задачи с приближающимся сроком и публикует их в очередь напоминаний.
package services

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/magabrotheeeer/task-manager/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/task-manager/internal/lib/sl"
	"github.com/magabrotheeeer/task-manager/internal/models"
	"github.com/streadway/amqp"
)

// TaskRepository определяет выборку задач для напоминаний.
type TaskRepository interface {
	FindTasksDueSoon(ctx context.Context, now, until time.Time) ([]*models.Task, error)
}

// ReminderService периодически сканирует задачи и рассылает напоминания.
type ReminderService struct {
	repo         TaskRepository
	log          *slog.Logger
	scanInterval time.Duration
	dueSoonHours int

	// running защищает от наложения запусков, когда скан
	// работает дольше интервала тикера.
	running atomic.Bool
}

// NewReminderService создает новый экземпляр ReminderService.
func NewReminderService(repo TaskRepository, log *slog.Logger, scanInterval time.Duration, dueSoonHours int) *ReminderService {
	return &ReminderService{
		repo:         repo,
		log:          log,
		scanInterval: scanInterval,
		dueSoonHours: dueSoonHours,
	}
}

// Run запускает цикл сканирования. Первый проход выполняется сразу,
// дальше по тикеру. Возвращает управление после отмены контекста.
func (s *ReminderService) Run(ctx context.Context, channel *amqp.Channel) {
	ticker := time.NewTicker(s.scanInterval)
	defer ticker.Stop()

	s.scan(ctx, channel)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("reminder scheduler stopped")
			return
		case <-ticker.C:
			s.scan(ctx, channel)
		}
	}
}

func (s *ReminderService) scan(ctx context.Context, channel *amqp.Channel) {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn("previous reminder scan still running, skipping tick")
		return
	}
	defer s.running.Store(false)

	now := time.Now()
	until := now.Add(time.Duration(s.dueSoonHours) * time.Hour)

	s.log.Info("scanning tasks due soon",
		slog.Time("from", now),
		slog.Time("until", until))

	tasks, err := s.repo.FindTasksDueSoon(ctx, now, until)
	if err != nil {
		s.log.Error("failed to find tasks due soon", sl.Err(err))
		return
	}

	for _, task := range tasks {
		if err := rabbitmq.PublishMessage(channel, rabbitmq.RemindersExchange, "due-soon", task); err != nil {
			s.log.Error("failed to publish reminder",
				slog.Int("task_id", task.ID), sl.Err(err))
		}
	}
	s.log.Info("reminder scan finished", slog.Int("count", len(tasks)))
}
