package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_SetStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)

	t.Run("переход в DONE ставит отметку завершения", func(t *testing.T) {
		task := Task{Status: StatusTodo}

		task.SetStatus(StatusDone, now)

		require.NotNil(t, task.CompletedAt)
		assert.Equal(t, now, *task.CompletedAt)
	})

	t.Run("повторный DONE не трогает существующую отметку", func(t *testing.T) {
		task := Task{Status: StatusTodo}
		task.SetStatus(StatusDone, now)

		task.SetStatus(StatusDone, later)

		require.NotNil(t, task.CompletedAt)
		assert.Equal(t, now, *task.CompletedAt)
	})

	t.Run("уход из DONE очищает отметку", func(t *testing.T) {
		for _, target := range []string{StatusTodo, StatusInProgress} {
			task := Task{Status: StatusTodo}
			task.SetStatus(StatusDone, now)

			task.SetStatus(target, later)

			assert.Nil(t, task.CompletedAt)
			assert.Equal(t, target, task.Status)
		}
	})

	t.Run("инвариант: DONE тогда и только тогда, когда отметка есть", func(t *testing.T) {
		task := Task{Status: StatusTodo}
		transitions := []string{
			StatusInProgress, StatusDone, StatusDone, StatusTodo,
			StatusDone, StatusInProgress, StatusDone,
		}
		for i, status := range transitions {
			task.SetStatus(status, now.Add(time.Duration(i)*time.Minute))
			assert.Equal(t, task.Status == StatusDone, task.CompletedAt != nil)
		}
	})
}

func TestTask_IsOverdue(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{
			name: "просроченная задача TODO",
			task: Task{Status: StatusTodo, DueDate: &yesterday},
			want: true,
		},
		{
			name: "просроченная задача IN_PROGRESS",
			task: Task{Status: StatusInProgress, DueDate: &yesterday},
			want: true,
		},
		{
			name: "завершённая задача не просрочена",
			task: Task{Status: StatusDone, DueDate: &yesterday},
			want: false,
		},
		{
			name: "срок ещё не наступил",
			task: Task{Status: StatusTodo, DueDate: &tomorrow},
			want: false,
		},
		{
			name: "без срока",
			task: Task{Status: StatusTodo},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.IsOverdue(now))
		})
	}
}

func TestTask_DoneClearsOverdue(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)

	task := Task{Status: StatusTodo, DueDate: &yesterday}
	require.True(t, task.IsOverdue(now))

	task.SetStatus(StatusDone, now)

	assert.False(t, task.IsOverdue(now))
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, now, *task.CompletedAt)
}

func TestCalcCompletionRate(t *testing.T) {
	assert.Equal(t, 0.0, CalcCompletionRate(0, 0))
	assert.Equal(t, 100.0, CalcCompletionRate(5, 5))
	assert.Equal(t, 50.0, CalcCompletionRate(2, 4))
}
