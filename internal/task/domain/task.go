package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/pkg/db/pagination"
	"gorm.io/gorm"
)

var (
	// ErrTaskNotFound is returned when no task matches.
	ErrTaskNotFound = errors.New("task_not_found")
	// ErrInvalidStatus is returned for unknown status values.
	ErrInvalidStatus = errors.New("invalid_task_status")
	// ErrInvalidPriority is returned for unknown priority values.
	ErrInvalidPriority = errors.New("invalid_task_priority")
	// ErrInvalidSteps is returned when step counters are inconsistent.
	ErrInvalidSteps = errors.New("invalid_task_steps")
	// ErrInvalidTitle is returned for blank titles.
	ErrInvalidTitle = errors.New("invalid_task_title")
	// ErrInvalidReference is returned for malformed order or assignee IDs.
	ErrInvalidReference = errors.New("invalid_task_reference")
)

// CreateTaskRequest queues a new unit of floor work.
type CreateTaskRequest struct {
	OrderID      string     `json:"order_id"`
	AssignedToID string     `json:"assigned_to_id"`
	Title        string     `json:"title" binding:"required"`
	Description  string     `json:"description"`
	TaskType     string     `json:"task_type" binding:"required"`
	Priority     string     `json:"priority"`
	TotalSteps   int        `json:"total_steps"`
	DueDate      *time.Time `json:"due_date"`
}

// UpdateTaskRequest changes task fields; only set fields are applied.
type UpdateTaskRequest struct {
	AssignedToID *string    `json:"assigned_to_id"`
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Priority     *string    `json:"priority"`
	DueDate      *time.Time `json:"due_date"`
	Notes        *string    `json:"notes"`
}

// UpdateTaskStatusRequest moves a task through its lifecycle. Moving to
// in_progress stamps StartedAt; completing stamps CompletedAt and pins
// progress to 100.
type UpdateTaskStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// AdvanceTaskRequest bumps the step counter.
type AdvanceTaskRequest struct {
	CurrentStep int `json:"current_step" binding:"required"`
}

// ListTaskFilter narrows task listings.
type ListTaskFilter struct {
	pagination.Pagination
	Status     string `form:"status"`
	Priority   string `form:"priority"`
	TaskType   string `form:"task_type"`
	OrderID    string `form:"order_id"`
	AssignedTo string `form:"assigned_to_id"`
}

// TaskStats summarizes the work queue for dashboards.
type TaskStats struct {
	Total      int64              `json:"total"`
	ByStatus   map[Status]int64   `json:"by_status"`
	ByPriority map[Priority]int64 `json:"by_priority"`
	Overdue    int64              `json:"overdue"`
}

// Service exposes work queue operations.
type Service interface {
	Create(ctx context.Context, req CreateTaskRequest) (*Task, error)
	GetByID(ctx context.Context, id string) (*Task, error)
	List(ctx context.Context, f ListTaskFilter) ([]Task, *pagination.PageInfo, error)
	Update(ctx context.Context, id string, req UpdateTaskRequest) (*Task, error)
	UpdateStatus(ctx context.Context, id string, req UpdateTaskStatusRequest) (*Task, error)
	Advance(ctx context.Context, id string, req AdvanceTaskRequest) (*Task, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*TaskStats, error)
}

// Repository is the persistence port for tasks.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, t *Task) error
	Update(ctx context.Context, db *gorm.DB, t *Task) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Task, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Task, error)
	List(ctx context.Context, db *gorm.DB, f ListTaskFilter) ([]Task, int64, error)
	CountByStatus(ctx context.Context, db *gorm.DB) (map[Status]int64, error)
	CountByPriority(ctx context.Context, db *gorm.DB) (map[Priority]int64, error)
	CountOverdue(ctx context.Context, db *gorm.DB, now time.Time) (int64, error)
}
