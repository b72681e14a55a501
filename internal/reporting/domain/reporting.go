package domain

import (
	"context"
	"time"

	orderdomain "github.com/cityville/laundromat/internal/order/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FinancialSummary is the dashboard headline: revenue recognized for
// completed orders this month, money still in flight, and pipeline counts.
type FinancialSummary struct {
	MonthlyRevenue  decimal.Decimal `json:"monthly_revenue"`
	PendingPayments decimal.Decimal `json:"pending_payments"`
	CompletedOrders int64           `json:"completed_orders"`
	PendingOrders   int64           `json:"pending_orders"`
	TotalOrders     int64           `json:"total_orders"`
}

// MonthlyAnalytics is the trend view over persisted rollups.
type MonthlyAnalytics struct {
	Months []RevenueSummary `json:"months"`
}

// Service exposes reporting reads and the rollup job entry point.
type Service interface {
	FinancialSummary(ctx context.Context) (*FinancialSummary, error)
	CompletedOrders(ctx context.Context) ([]orderdomain.Order, error)
	MonthlyAnalytics(ctx context.Context, months int) (*MonthlyAnalytics, error)
	Rollup(ctx context.Context, year int, month time.Month) (*RevenueSummary, error)
}

// Repository is the persistence port for reporting reads and rollups.
type Repository interface {
	MonthRevenue(ctx context.Context, db *gorm.DB, from, to time.Time) (decimal.Decimal, error)
	PendingAmount(ctx context.Context, db *gorm.DB) (decimal.Decimal, error)
	OrderCounts(ctx context.Context, db *gorm.DB) (completed, pending, total int64, err error)
	LatestCompleted(ctx context.Context, db *gorm.DB, limit int) ([]orderdomain.Order, error)
	MonthAggregates(ctx context.Context, db *gorm.DB, from, to time.Time) (revenue decimal.Decimal, completed, total int64, items decimal.Decimal, err error)
	SaveSummary(ctx context.Context, db *gorm.DB, s *RevenueSummary) error
	FindSummary(ctx context.Context, db *gorm.DB, year, month int) (*RevenueSummary, error)
	ListSummaries(ctx context.Context, db *gorm.DB, limit int) ([]RevenueSummary, error)
}
