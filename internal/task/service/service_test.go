package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/internal/migration"
	"github.com/cityville/laundromat/internal/sequence"
	"github.com/cityville/laundromat/internal/task/domain"
	"github.com/cityville/laundromat/internal/task/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTaskService(t *testing.T) domain.Service {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, migration.Run(conn))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Codes: sequence.NewAllocator(conn),
		Repo:  repository.Provide(),
	})
}

func TestCreateTaskDefaults(t *testing.T) {
	svc := newTaskService(t)

	task, err := svc.Create(context.Background(), domain.CreateTaskRequest{
		Title:    "Sort incoming batch",
		TaskType: "sorting",
	})
	require.NoError(t, err)

	assert.Equal(t, "TASK-001", task.Code)
	assert.Equal(t, domain.StatusPending, task.Status)
	assert.Equal(t, domain.PriorityMedium, task.Priority)
	assert.Equal(t, 1, task.TotalSteps)
	assert.Zero(t, task.Progress)
}

func TestCreateTaskValidation(t *testing.T) {
	svc := newTaskService(t)

	_, err := svc.Create(context.Background(), domain.CreateTaskRequest{TaskType: "sorting"})
	assert.ErrorIs(t, err, domain.ErrInvalidTitle)

	_, err = svc.Create(context.Background(), domain.CreateTaskRequest{
		Title:    "Sort",
		TaskType: "sorting",
		Priority: "asap",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPriority)

	_, err = svc.Create(context.Background(), domain.CreateTaskRequest{
		Title:    "Sort",
		TaskType: "sorting",
		OrderID:  "not-an-id",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}

func TestUpdateStatusStampsTimes(t *testing.T) {
	svc := newTaskService(t)

	task, err := svc.Create(context.Background(), domain.CreateTaskRequest{
		Title:      "Wash batch 12",
		TaskType:   "washing",
		TotalSteps: 4,
	})
	require.NoError(t, err)

	started, err := svc.UpdateStatus(context.Background(), task.Code, domain.UpdateTaskStatusRequest{Status: string(domain.StatusInProgress)})
	require.NoError(t, err)
	require.NotNil(t, started.StartedAt)
	firstStart := *started.StartedAt

	// A repeated in_progress keeps the original start time.
	again, err := svc.UpdateStatus(context.Background(), task.Code, domain.UpdateTaskStatusRequest{Status: string(domain.StatusInProgress)})
	require.NoError(t, err)
	assert.WithinDuration(t, firstStart, *again.StartedAt, time.Second)

	done, err := svc.UpdateStatus(context.Background(), task.Code, domain.UpdateTaskStatusRequest{Status: string(domain.StatusCompleted)})
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, done.TotalSteps, done.CurrentStep)
	assert.Equal(t, 100, done.Progress)

	_, err = svc.UpdateStatus(context.Background(), task.Code, domain.UpdateTaskStatusRequest{Status: "archived"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestAdvanceBoundsSteps(t *testing.T) {
	svc := newTaskService(t)

	task, err := svc.Create(context.Background(), domain.CreateTaskRequest{
		Title:      "Fold batch 12",
		TaskType:   "folding",
		TotalSteps: 4,
	})
	require.NoError(t, err)

	halfway, err := svc.Advance(context.Background(), task.Code, domain.AdvanceTaskRequest{CurrentStep: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, halfway.CurrentStep)
	assert.Equal(t, 50, halfway.Progress)

	_, err = svc.Advance(context.Background(), task.Code, domain.AdvanceTaskRequest{CurrentStep: 5})
	assert.ErrorIs(t, err, domain.ErrInvalidSteps)

	_, err = svc.Advance(context.Background(), task.Code, domain.AdvanceTaskRequest{CurrentStep: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidSteps)
}

func TestTaskCodesAreSequential(t *testing.T) {
	svc := newTaskService(t)

	first, err := svc.Create(context.Background(), domain.CreateTaskRequest{Title: "One", TaskType: "sorting"})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), domain.CreateTaskRequest{Title: "Two", TaskType: "sorting"})
	require.NoError(t, err)

	assert.Equal(t, "TASK-001", first.Code)
	assert.Equal(t, "TASK-002", second.Code)
}

func TestTaskStatsCountsOverdue(t *testing.T) {
	svc := newTaskService(t)

	task, err := svc.Create(context.Background(), domain.CreateTaskRequest{Title: "Late", TaskType: "sorting"})
	require.NoError(t, err)

	// Pull the due date into the past through the service update path.
	past := time.Now().UTC().Add(-48 * time.Hour)
	_, err = svc.Update(context.Background(), task.Code, domain.UpdateTaskRequest{DueDate: &past})
	require.NoError(t, err)

	done, err := svc.Create(context.Background(), domain.CreateTaskRequest{Title: "Done", TaskType: "sorting"})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), done.Code, domain.UpdateTaskStatusRequest{Status: string(domain.StatusCompleted)})
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Total)
	assert.EqualValues(t, 1, stats.Overdue)
	assert.EqualValues(t, 1, stats.ByStatus[domain.StatusPending])
	assert.EqualValues(t, 1, stats.ByStatus[domain.StatusCompleted])
}
