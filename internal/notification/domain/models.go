// Package domain contains in-app notification models and contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Kind groups notifications for filtering.
type Kind string

const (
	KindOrderUpdate Kind = "order_update"
	KindDelivery    Kind = "delivery"
	KindPayment     Kind = "payment"
	KindSystem      Kind = "system"
)

// Kinds lists every valid kind.
var Kinds = []Kind{KindOrderUpdate, KindDelivery, KindPayment, KindSystem}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Notification is one in-app message for a user. Reference carries the
// public code of the subject (ORD/INV/DEL) when there is one.
type Notification struct {
	ID        snowflake.ID   `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID   `gorm:"not null;index" json:"user_id"`
	Kind      Kind           `gorm:"type:text;not null;index" json:"kind"`
	Title     string         `gorm:"type:text;not null" json:"title"`
	Message   string         `gorm:"type:text" json:"message,omitempty"`
	Reference string         `gorm:"type:text" json:"reference,omitempty"`
	Data      datatypes.JSON `gorm:"" json:"data,omitempty"`
	Read      bool           `gorm:"not null;default:false;index" json:"read"`
	ReadAt    *time.Time     `gorm:"" json:"read_at,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Notification) TableName() string { return "notifications" }
