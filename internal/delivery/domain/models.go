// Package domain contains pickup/delivery run models and contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Kind distinguishes runs to the customer from runs back to the facility.
type Kind string

const (
	KindPickup   Kind = "pickup"
	KindDelivery Kind = "delivery"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool { return k == KindPickup || k == KindDelivery }

// Status is the state of a run.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusInTransit Status = "in_transit"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every valid run status.
var Statuses = []Status{StatusScheduled, StatusInTransit, StatusCompleted, StatusFailed, StatusCancelled}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Delivery is one scheduled pickup or drop-off run for an order.
type Delivery struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	Code         string        `gorm:"type:text;not null;uniqueIndex" json:"delivery_id"`
	OrderID      snowflake.ID  `gorm:"not null;index" json:"order_id"`
	DriverID     *snowflake.ID `gorm:"index" json:"driver_id,omitempty"`
	Kind         Kind          `gorm:"type:text;not null;index" json:"kind"`
	Status       Status        `gorm:"type:text;not null;default:'scheduled';index" json:"status"`
	Address      string        `gorm:"type:text;not null" json:"address"`
	ContactPhone string        `gorm:"type:text" json:"contact_phone,omitempty"`
	ScheduledAt  time.Time     `gorm:"not null;index" json:"scheduled_at"`
	DepartedAt   *time.Time    `gorm:"" json:"departed_at,omitempty"`
	CompletedAt  *time.Time    `gorm:"" json:"completed_at,omitempty"`
	Notes        string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Delivery) TableName() string { return "deliveries" }
