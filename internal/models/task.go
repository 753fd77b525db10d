// Package models содержит доменные структуры задачи и пользователя,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Статусы задачи.
const (
	StatusTodo       = "TODO"
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
)

// Приоритеты задачи.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// ValidStatus сообщает, является ли строка одним из статусов задачи.
func ValidStatus(s string) bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusDone
}

// ValidPriority сообщает, является ли строка одним из приоритетов задачи.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh || p == PriorityUrgent
}

// Task представляет задачу пользователя.
// Инвариант: CompletedAt заполнено тогда и только тогда, когда Status == DONE.
type Task struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`       // Заголовок, до 200 символов
	Description string     `json:"description"` // Описание, до 2000 символов
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Username    string     `json:"username"` // Владелец задачи
	UserUID     string     `json:"user_uid"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SetStatus переводит задачу в новый статус и поддерживает инвариант CompletedAt:
// переход в DONE ставит отметку времени один раз (повторный DONE её не трогает),
// уход из DONE всегда её очищает.
func (t *Task) SetStatus(status string, now time.Time) {
	t.Status = status
	if status == StatusDone {
		if t.CompletedAt == nil {
			completed := now
			t.CompletedAt = &completed
		}
		return
	}
	t.CompletedAt = nil
}

// IsOverdue сообщает, просрочена ли задача на момент now.
// Всегда вычисляется по текущему времени, не кэшируется.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && now.After(*t.DueDate) && t.Status != StatusDone
}

// IsCompleted сообщает, завершена ли задача.
func (t *Task) IsCompleted() bool {
	return t.Status == StatusDone
}

// TaskView — представление задачи для ответов API. Поле Overdue
// вычисляется в момент формирования ответа и нигде не хранится.
type TaskView struct {
	Task
	Overdue bool `json:"overdue"`
}

// NewTaskView строит представление задачи с вычисленным признаком просрочки.
func NewTaskView(t *Task, now time.Time) TaskView {
	return TaskView{Task: *t, Overdue: t.IsOverdue(now)}
}

// NewTaskViews строит представления для списка задач.
func NewTaskViews(tasks []*Task, now time.Time) []TaskView {
	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, NewTaskView(t, now))
	}
	return views
}

// DummyTask используется для приёма данных задачи из JSON-запроса,
// прежде чем конвертировать их в Task. Дата приходит строкой RFC3339.
type DummyTask struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Priority    string `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	DueDate     string `json:"due_date,omitempty"`
}

// DummyStatus используется для приёма смены статуса из JSON-запроса.
type DummyStatus struct {
	Status string `json:"status" validate:"required,oneof=TODO IN_PROGRESS DONE"`
}
