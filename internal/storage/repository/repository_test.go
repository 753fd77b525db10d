package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/task-manager/internal/apperrors"
	"github.com/magabrotheeeer/task-manager/internal/models"
)

func TestStorage_CreateTask(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := factory.CreateUser(t, "testuser", "test@example.com", "user")

	dueDate := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	task := models.Task{
		Title:       "Write report",
		Description: "Quarterly report for the team",
		Status:      models.StatusTodo,
		Priority:    models.PriorityHigh,
		DueDate:     &dueDate,
		Username:    "testuser",
		UserUID:     userUID,
	}

	gotID, err := storage.CreateTask(context.Background(), task)
	require.NoError(t, err)
	assert.Equal(t, 1, gotID)
	assert.Equal(t, 1, factory.CountTasksInDB(t, userUID))
}

func TestStorage_ReadTask(t *testing.T) {
	tests := []struct {
		name    string
		id      int
		want    *models.Task
		wantErr error
		setup   func(f *TestDataFactory, userUID string)
	}{
		{
			name: "successful read existing task",
			id:   1,
			want: &models.Task{
				Title:    "Write report",
				Status:   models.StatusTodo,
				Priority: models.PriorityHigh,
				Username: "testuser",
			},
			setup: func(f *TestDataFactory, userUID string) {
				f.CreateTask(t, "Write report", models.StatusTodo, models.PriorityHigh,
					"testuser", userUID, nil)
			},
		},
		{
			name:    "read non-existing task",
			id:      999,
			wantErr: apperrors.ErrNotFound,
			setup:   func(_ *TestDataFactory, _ string) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			userUID := factory.CreateUser(t, "testuser", "test@example.com", "user")
			tt.setup(factory, userUID)

			got, err := storage.ReadTask(context.Background(), tt.id)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want.Title, got.Title)
			assert.Equal(t, tt.want.Status, got.Status)
			assert.Equal(t, tt.want.Priority, got.Priority)
			assert.Equal(t, tt.want.Username, got.Username)
			assert.Equal(t, userUID, got.UserUID)
		})
	}
}

func TestStorage_UpdateTask(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := factory.CreateUser(t, "testuser", "test@example.com", "user")
	id := factory.CreateTask(t, "Write report", models.StatusTodo, models.PriorityLow,
		"testuser", userUID, nil)

	completedAt := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	updated := models.Task{
		Title:       "Write annual report",
		Description: "Extended scope",
		Status:      models.StatusDone,
		Priority:    models.PriorityUrgent,
		CompletedAt: &completedAt,
	}

	rowsAffected, err := storage.UpdateTask(context.Background(), updated, id)
	require.NoError(t, err)
	assert.Equal(t, 1, rowsAffected)

	got, err := storage.ReadTask(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Write annual report", got.Title)
	assert.Equal(t, models.StatusDone, got.Status)
	assert.Equal(t, models.PriorityUrgent, got.Priority)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, completedAt.Equal(*got.CompletedAt))
}

func TestStorage_RemoveTask(t *testing.T) {
	tests := []struct {
		name             string
		id               int
		wantRowsAffected int
	}{
		{
			name:             "successful delete task",
			id:               1,
			wantRowsAffected: 1,
		},
		{
			name:             "delete non-existing task",
			id:               999,
			wantRowsAffected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			userUID := factory.CreateUser(t, "testuser", "test@example.com", "user")
			factory.CreateTask(t, "Write report", models.StatusTodo, models.PriorityMedium,
				"testuser", userUID, nil)

			gotRowsAffected, err := storage.RemoveTask(context.Background(), tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRowsAffected, gotRowsAffected)
		})
	}
}

func TestStorage_ListTasksByUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	firstUID := factory.CreateUser(t, "firstuser", "first@example.com", "user")
	secondUID := factory.CreateUser(t, "seconduser", "second@example.com", "user")

	factory.CreateTask(t, "Task one", models.StatusTodo, models.PriorityLow, "firstuser", firstUID, nil)
	factory.CreateTask(t, "Task two", models.StatusInProgress, models.PriorityMedium, "firstuser", firstUID, nil)
	factory.CreateTask(t, "Task three", models.StatusTodo, models.PriorityHigh, "firstuser", firstUID, nil)
	factory.CreateTask(t, "Other task", models.StatusTodo, models.PriorityLow, "seconduser", secondUID, nil)

	got, err := storage.ListTasksByUser(context.Background(), firstUID, 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, task := range got {
		assert.Equal(t, firstUID, task.UserUID)
	}

	// Пагинация: вторая страница при limit=2
	page, err := storage.ListTasksByUser(context.Background(), firstUID, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Task three", page[0].Title)
}

func TestStorage_SearchTasks(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := factory.CreateUser(t, "testuser", "test@example.com", "user")

	factory.CreateTask(t, "Buy groceries", models.StatusTodo, models.PriorityLow, "testuser", userUID, nil)
	factory.CreateTask(t, "Prepare REPORT draft", models.StatusTodo, models.PriorityMedium, "testuser", userUID, nil)

	var descID int
	err := storage.DB.QueryRow(`INSERT INTO tasks (title, description, username, user_uid)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		"Misc", "finish the report appendix", "testuser", userUID).Scan(&descID)
	require.NoError(t, err)

	// ILIKE: совпадение без учёта регистра и по заголовку, и по описанию
	got, err := storage.SearchTasks(context.Background(), userUID, "report", 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Prepare REPORT draft", got[0].Title)
	assert.Equal(t, descID, got[1].ID)

	empty, err := storage.SearchTasks(context.Background(), userUID, "vacation", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStorage_SearchTasksTreatsWildcardsLiterally(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := factory.CreateUser(t, "testuser", "test@example.com", "user")

	percentID := factory.CreateTask(t, "Ship at 100% coverage", models.StatusTodo,
		models.PriorityMedium, "testuser", userUID, nil)
	underscoreID := factory.CreateTask(t, "Rename legacy_table", models.StatusTodo,
		models.PriorityLow, "testuser", userUID, nil)
	factory.CreateTask(t, "Plain task", models.StatusTodo,
		models.PriorityLow, "testuser", userUID, nil)

	// % и _ в запросе ищутся как обычные символы, а не шаблоны LIKE
	got, err := storage.SearchTasks(context.Background(), userUID, "100%", 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, percentID, got[0].ID)

	got, err = storage.SearchTasks(context.Background(), userUID, "legacy_", 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, underscoreID, got[0].ID)
}

func TestStorage_SearchUsers(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	factory.CreateUser(t, "alice", "alice@example.com", "user")
	factory.CreateUser(t, "bob", "bob@example.com", "user")

	aliUID := uuid.New().String()
	_, err := storage.DB.Exec(`INSERT INTO users (uid, username, email, password_hash, first_name)
		VALUES ($1, $2, $3, $4, $5)`,
		aliUID, "salim", "salim@example.com", "hashedpassword", "Ali")
	require.NoError(t, err)

	// Совпадение по username и имени без учёта регистра
	got, err := storage.SearchUsers(context.Background(), "ali", 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)

	empty, err := storage.SearchUsers(context.Background(), "charlie", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStorage_ListMostActiveUsers(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	aliceUID := factory.CreateUser(t, "alice", "alice@example.com", "user")
	bobUID := factory.CreateUser(t, "bob", "bob@example.com", "user")
	factory.CreateUser(t, "idle", "idle@example.com", "user")

	factory.CreateTask(t, "First", models.StatusTodo, models.PriorityLow, "alice", aliceUID, nil)
	factory.CreateTask(t, "Second", models.StatusTodo, models.PriorityLow, "bob", bobUID, nil)
	factory.CreateTask(t, "Third", models.StatusDone, models.PriorityLow, "bob", bobUID, nil)

	got, err := storage.ListMostActiveUsers(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "bob", got[0].Username)
	assert.Equal(t, "alice", got[1].Username)
}

func TestStorage_ListUsersWithTasksDueSoon(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	aliceUID := factory.CreateUser(t, "alice", "alice@example.com", "user")
	bobUID := factory.CreateUser(t, "bob", "bob@example.com", "user")
	factory.CreateUser(t, "idle", "idle@example.com", "user")

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	until := now.Add(24 * time.Hour)
	soon := now.Add(6 * time.Hour)
	later := now.Add(72 * time.Hour)

	factory.CreateTask(t, "Alice urgent", models.StatusTodo, models.PriorityHigh, "alice", aliceUID, &soon)
	factory.CreateTask(t, "Alice second", models.StatusInProgress, models.PriorityLow, "alice", aliceUID, &soon)
	factory.CreateTask(t, "Bob later", models.StatusTodo, models.PriorityLow, "bob", bobUID, &later)
	factory.CreateTask(t, "Bob finished", models.StatusDone, models.PriorityLow, "bob", bobUID, &soon)

	// Пользователь попадает в список один раз, только по незавершённым задачам в окне
	got, err := storage.ListUsersWithTasksDueSoon(context.Background(), now, until)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].Username)
}

func TestStorage_ListOverdueTasks(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := factory.CreateUser(t, "testuser", "test@example.com", "user")

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	overdueID := factory.CreateTask(t, "Expired task", models.StatusTodo, models.PriorityHigh,
		"testuser", userUID, &past)
	factory.CreateTask(t, "Future task", models.StatusTodo, models.PriorityLow,
		"testuser", userUID, &future)
	// Завершённая задача с прошедшим сроком просроченной не считается
	factory.CreateTask(t, "Done task", models.StatusDone, models.PriorityLow,
		"testuser", userUID, &past)

	got, err := storage.ListOverdueTasks(context.Background(), userUID, now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, overdueID, got[0].ID)
}

func TestStorage_FindTasksDueSoon(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	firstUID := factory.CreateUser(t, "firstuser", "first@example.com", "user")
	secondUID := factory.CreateUser(t, "seconduser", "second@example.com", "user")

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	until := now.Add(24 * time.Hour)
	soon := now.Add(6 * time.Hour)
	later := now.Add(72 * time.Hour)

	factory.CreateTask(t, "First due soon", models.StatusTodo, models.PriorityHigh,
		"firstuser", firstUID, &soon)
	factory.CreateTask(t, "Second due soon", models.StatusInProgress, models.PriorityMedium,
		"seconduser", secondUID, &soon)
	factory.CreateTask(t, "Due later", models.StatusTodo, models.PriorityLow,
		"firstuser", firstUID, &later)
	factory.CreateTask(t, "Already done", models.StatusDone, models.PriorityLow,
		"firstuser", firstUID, &soon)

	got, err := storage.FindTasksDueSoon(context.Background(), now, until)
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestStorage_RegisterUser(t *testing.T) {
	tests := []struct {
		name    string
		user    models.User
		wantErr error
		setup   func(f *TestDataFactory)
	}{
		{
			name: "successful register user",
			user: models.User{
				UID:          uuid.New().String(),
				Username:     "newuser",
				Email:        "new@example.com",
				PasswordHash: "hashedpassword",
				Role:         "user",
				Enabled:      true,
			},
			setup: func(_ *TestDataFactory) {},
		},
		{
			name: "register user with duplicate username",
			user: models.User{
				UID:          uuid.New().String(),
				Username:     "testuser",
				Email:        "another@example.com",
				PasswordHash: "hashedpassword",
				Role:         "user",
				Enabled:      true,
			},
			wantErr: apperrors.ErrAlreadyExists,
			setup: func(f *TestDataFactory) {
				f.CreateUser(t, "testuser", "test@example.com", "user")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			tt.setup(factory)

			gotUID, err := storage.RegisterUser(context.Background(), tt.user)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, gotUID)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.user.UID, gotUID)
		})
	}
}

func TestStorage_DeleteUserCascadesTasks(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := factory.CreateUser(t, "testuser", "test@example.com", "user")
	factory.CreateTask(t, "Write report", models.StatusTodo, models.PriorityMedium,
		"testuser", userUID, nil)
	factory.CreateTask(t, "Review draft", models.StatusInProgress, models.PriorityLow,
		"testuser", userUID, nil)

	rowsAffected, err := storage.DeleteUser(context.Background(), userUID)
	require.NoError(t, err)
	assert.Equal(t, 1, rowsAffected)
	assert.Equal(t, 0, factory.CountTasksInDB(t, userUID))
}

func TestStorage_ToggleUserEnabled(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := factory.CreateUser(t, "testuser", "test@example.com", "user")

	enabled, err := storage.ToggleUserEnabled(context.Background(), userUID)
	require.NoError(t, err)
	assert.False(t, enabled)

	enabled, err = storage.ToggleUserEnabled(context.Background(), userUID)
	require.NoError(t, err)
	assert.True(t, enabled)

	_, err = storage.ToggleUserEnabled(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStorage_CountTasksByUserAndStatus(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := factory.CreateUser(t, "testuser", "test@example.com", "user")

	factory.CreateTask(t, "First", models.StatusTodo, models.PriorityLow, "testuser", userUID, nil)
	factory.CreateTask(t, "Second", models.StatusTodo, models.PriorityHigh, "testuser", userUID, nil)
	factory.CreateTask(t, "Third", models.StatusDone, models.PriorityLow, "testuser", userUID, nil)

	todo, err := storage.CountTasksByUserAndStatus(context.Background(), userUID, models.StatusTodo)
	require.NoError(t, err)
	assert.Equal(t, int64(2), todo)

	done, err := storage.CountTasksByUserAndStatus(context.Background(), userUID, models.StatusDone)
	require.NoError(t, err)
	assert.Equal(t, int64(1), done)

	total, err := storage.CountTasksByUser(context.Background(), userUID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}
