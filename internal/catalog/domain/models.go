// Package domain contains the laundry service catalog models and contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Service is one offering on the price list, e.g. wash & fold billed per
// kilogram or dry cleaning billed per item.
type Service struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"type:text;not null;uniqueIndex" json:"name"`
	Description    string          `gorm:"type:text" json:"description,omitempty"`
	Category       string          `gorm:"type:text;not null;index" json:"category"`
	Price          decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Unit           string          `gorm:"type:text;not null;default:'item'" json:"unit"`
	TurnaroundTime string          `gorm:"type:text" json:"turnaround_time,omitempty"`
	Active         bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Service) TableName() string { return "catalog_services" }
