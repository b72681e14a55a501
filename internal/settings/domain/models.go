// Package domain contains the business settings singleton and contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Settings is the single row of shop configuration. Reads create it with
// defaults when missing, so callers always see a value.
type Settings struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	BusinessName  string          `gorm:"type:text;not null" json:"business_name"`
	Address       string          `gorm:"type:text" json:"address,omitempty"`
	Phone         string          `gorm:"type:text" json:"phone,omitempty"`
	Email         string          `gorm:"type:text" json:"email,omitempty"`
	Currency      string          `gorm:"type:text;not null" json:"currency"`
	TaxRate       decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"tax_rate"`
	OpeningTime   string          `gorm:"type:text" json:"opening_time,omitempty"`
	ClosingTime   string          `gorm:"type:text" json:"closing_time,omitempty"`
	DeliveryFee   decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"delivery_fee"`
	NotifyByEmail bool            `gorm:"not null;default:true" json:"notify_by_email"`
	NotifyBySMS   bool            `gorm:"not null;default:false" json:"notify_by_sms"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Settings) TableName() string { return "business_settings" }
