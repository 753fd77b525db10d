package models

// TaskStatistics — агрегированные счётчики задач (по пользователю или по всем).
// OverdueTasks считается относительно текущего времени на момент запроса.
type TaskStatistics struct {
	TotalTasks      int64   `json:"total_tasks"`
	TodoTasks       int64   `json:"todo_tasks"`
	InProgressTasks int64   `json:"in_progress_tasks"`
	CompletedTasks  int64   `json:"completed_tasks"`
	OverdueTasks    int64   `json:"overdue_tasks"`
	CompletionRate  float64 `json:"completion_rate"`
}

// CalcCompletionRate возвращает долю завершённых задач в процентах.
// При отсутствии задач возвращает 0, а не делит на ноль.
func CalcCompletionRate(completed, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// UserStatistics — агрегированные счётчики пользователей, только для админа.
type UserStatistics struct {
	TotalUsers   int64 `json:"total_users"`
	EnabledUsers int64 `json:"enabled_users"`
	AdminUsers   int64 `json:"admin_users"`
	RegularUsers int64 `json:"regular_users"`
}
