package repository

import (
	"context"
	"errors"
	"time"

	orderdomain "github.com/cityville/laundromat/internal/order/domain"
	"github.com/cityville/laundromat/internal/order/lifecycle"
	"github.com/cityville/laundromat/internal/reporting/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// MonthRevenue sums completed-order amounts updated inside [from, to).
// Completion is when an order's state last changed to completed, which the
// updated_at stamp tracks closely enough for the dashboard.
func (r *repo) MonthRevenue(ctx context.Context, db *gorm.DB, from, to time.Time) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := db.WithContext(ctx).
		Model(&orderdomain.Order{}).
		Select("sum(amount)").
		Where("status = ? AND updated_at >= ? AND updated_at < ?", lifecycle.StatusCompleted, from, to).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

func (r *repo) PendingAmount(ctx context.Context, db *gorm.DB) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := db.WithContext(ctx).
		Model(&orderdomain.Order{}).
		Select("sum(amount)").
		Where("status IN ?", []lifecycle.Status{lifecycle.StatusPending, lifecycle.StatusProcessing}).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

func (r *repo) OrderCounts(ctx context.Context, db *gorm.DB) (completed, pending, total int64, err error) {
	if err = db.WithContext(ctx).
		Model(&orderdomain.Order{}).
		Where("status = ?", lifecycle.StatusCompleted).
		Count(&completed).Error; err != nil {
		return
	}
	if err = db.WithContext(ctx).
		Model(&orderdomain.Order{}).
		Where("status IN ?", []lifecycle.Status{lifecycle.StatusPending, lifecycle.StatusProcessing}).
		Count(&pending).Error; err != nil {
		return
	}
	err = db.WithContext(ctx).Model(&orderdomain.Order{}).Count(&total).Error
	return
}

func (r *repo) LatestCompleted(ctx context.Context, db *gorm.DB, limit int) ([]orderdomain.Order, error) {
	var orders []orderdomain.Order
	err := db.WithContext(ctx).
		Where("status = ?", lifecycle.StatusCompleted).
		Order("updated_at desc, id desc").
		Limit(limit).
		Preload("Lines").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repo) MonthAggregates(ctx context.Context, db *gorm.DB, from, to time.Time) (revenue decimal.Decimal, completed, total int64, items decimal.Decimal, err error) {
	revenue, err = r.MonthRevenue(ctx, db, from, to)
	if err != nil {
		return
	}

	if err = db.WithContext(ctx).
		Model(&orderdomain.Order{}).
		Where("status = ? AND updated_at >= ? AND updated_at < ?", lifecycle.StatusCompleted, from, to).
		Count(&completed).Error; err != nil {
		return
	}
	if err = db.WithContext(ctx).
		Model(&orderdomain.Order{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&total).Error; err != nil {
		return
	}

	var itemSum decimal.NullDecimal
	if err = db.WithContext(ctx).
		Model(&orderdomain.Order{}).
		Select("sum(items)").
		Where("status = ? AND updated_at >= ? AND updated_at < ?", lifecycle.StatusCompleted, from, to).
		Scan(&itemSum).Error; err != nil {
		return
	}
	items = decimal.Zero
	if itemSum.Valid {
		items = itemSum.Decimal
	}
	return
}

func (r *repo) SaveSummary(ctx context.Context, db *gorm.DB, s *domain.RevenueSummary) error {
	return db.WithContext(ctx).Save(s).Error
}

func (r *repo) FindSummary(ctx context.Context, db *gorm.DB, year, month int) (*domain.RevenueSummary, error) {
	var s domain.RevenueSummary
	err := db.WithContext(ctx).First(&s, "year = ? AND month = ?", year, month).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repo) ListSummaries(ctx context.Context, db *gorm.DB, limit int) ([]domain.RevenueSummary, error) {
	var summaries []domain.RevenueSummary
	err := db.WithContext(ctx).
		Order("year desc, month desc").
		Limit(limit).
		Find(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}
