// Package domain contains RFID tag models and contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status tracks a tag through the facility.
type Status string

const (
	StatusAssigned Status = "assigned"
	StatusScanned  Status = "scanned"
	StatusVerified Status = "verified"
	StatusLost     Status = "lost"
	StatusRetired  Status = "retired"
)

// Statuses lists every valid tag status.
var Statuses = []Status{StatusAssigned, StatusScanned, StatusVerified, StatusLost, StatusRetired}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Tag is one physical RFID tag pinned to a garment. Code carries the
// public RF identifier.
type Tag struct {
	ID              snowflake.ID  `gorm:"primaryKey" json:"id"`
	Code            string        `gorm:"type:text;not null;uniqueIndex" json:"tag_id"`
	OrderID         *snowflake.ID `gorm:"index" json:"order_id,omitempty"`
	ItemDescription string        `gorm:"type:text" json:"item_description,omitempty"`
	Status          Status        `gorm:"type:text;not null;default:'assigned';index" json:"status"`
	LastLocation    string        `gorm:"type:text" json:"last_location,omitempty"`
	LastScannedAt   *time.Time    `gorm:"" json:"last_scanned_at,omitempty"`
	CreatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Tag) TableName() string { return "rfid_tags" }
