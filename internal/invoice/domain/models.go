// Package domain contains invoice models and contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Status is the billing state of an invoice.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
	StatusVoid    Status = "void"
)

// Statuses lists every valid invoice status.
var Statuses = []Status{StatusPending, StatusPaid, StatusOverdue, StatusVoid}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Invoice bills one order. At most one invoice exists per order; the
// amount mirrors the order's derived total at generation time.
type Invoice struct {
	ID         snowflake.ID    `gorm:"primaryKey" json:"id"`
	Code       string          `gorm:"type:text;not null;uniqueIndex" json:"invoice_id"`
	OrderID    snowflake.ID    `gorm:"not null;uniqueIndex" json:"order_id"`
	CustomerID snowflake.ID    `gorm:"not null;index" json:"customer_id"`
	Status     Status          `gorm:"type:text;not null;default:'pending';index" json:"status"`
	Subtotal   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Tax        decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"tax"`
	Amount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency   string          `gorm:"type:text;not null" json:"currency"`
	IssuedAt   time.Time       `gorm:"not null" json:"issued_at"`
	DueDate    time.Time       `gorm:"not null;index" json:"due_date"`
	PaidAt     *time.Time      `gorm:"" json:"paid_at,omitempty"`
	Notes      string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }
