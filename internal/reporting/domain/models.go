// Package domain contains financial reporting models and contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// RevenueSummary is one persisted month of rolled-up revenue. The nightly
// rollup job rewrites the current month; past months stay frozen.
type RevenueSummary struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	Year            int             `gorm:"not null;uniqueIndex:idx_revenue_month" json:"year"`
	Month           int             `gorm:"not null;uniqueIndex:idx_revenue_month" json:"month"`
	Revenue         decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"revenue"`
	OrdersCompleted int64           `gorm:"not null" json:"orders_completed"`
	OrdersTotal     int64           `gorm:"not null" json:"orders_total"`
	ItemsProcessed  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"items_processed"`
	GeneratedAt     time.Time       `gorm:"not null" json:"generated_at"`
}

// TableName sets the database table name.
func (RevenueSummary) TableName() string { return "revenue_summaries" }
