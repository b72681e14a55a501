// Package domain contains work task models and contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status is the coarse state of a work task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every valid task status.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Priority orders the work queue.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists every valid priority.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	for _, known := range Priorities {
		if p == known {
			return true
		}
	}
	return false
}

// Task is one unit of floor work, usually tied to an order. Progress is
// derived from CurrentStep over TotalSteps and recomputed on every write.
type Task struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	Code         string        `gorm:"type:text;not null;uniqueIndex" json:"task_id"`
	OrderID      *snowflake.ID `gorm:"index" json:"order_id,omitempty"`
	AssignedToID *snowflake.ID `gorm:"index" json:"assigned_to_id,omitempty"`
	Title        string        `gorm:"type:text;not null" json:"title"`
	Description  string        `gorm:"type:text" json:"description,omitempty"`
	TaskType     string        `gorm:"type:text;not null;index" json:"task_type"`
	Status       Status        `gorm:"type:text;not null;default:'pending';index" json:"status"`
	Priority     Priority      `gorm:"type:text;not null;default:'medium';index" json:"priority"`
	CurrentStep  int           `gorm:"not null;default:0" json:"current_step"`
	TotalSteps   int           `gorm:"not null;default:1" json:"total_steps"`
	Progress     int           `gorm:"not null;default:0" json:"progress"`
	DueDate      *time.Time    `gorm:"" json:"due_date,omitempty"`
	StartedAt    *time.Time    `gorm:"" json:"started_at,omitempty"`
	CompletedAt  *time.Time    `gorm:"" json:"completed_at,omitempty"`
	Notes        string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Task) TableName() string { return "tasks" }

// ComputeProgress derives the percentage from steps. Completed tasks pin
// to 100 regardless of step counters.
func (t *Task) ComputeProgress() int {
	if t.Status == StatusCompleted {
		return 100
	}
	if t.TotalSteps <= 0 {
		return 0
	}
	p := t.CurrentStep * 100 / t.TotalSteps
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
