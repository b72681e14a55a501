package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/internal/invoice/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, inv *domain.Invoice) error {
	return db.WithContext(ctx).Create(inv).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, inv *domain.Invoice) error {
	return db.WithContext(ctx).Save(inv).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := db.WithContext(ctx).First(&inv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := db.WithContext(ctx).First(&inv, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *repo) FindByOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := db.WithContext(ctx).First(&inv, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, f domain.ListInvoiceFilter) ([]domain.Invoice, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Invoice{})
	if f.Status != "" {
		stmt = stmt.Where("status = ?", f.Status)
	}
	if f.CustomerID != "" {
		stmt = stmt.Where("customer_id = ?", f.CustomerID)
	}
	if f.OrderID != "" {
		stmt = stmt.Where("order_id = ?", f.OrderID)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []domain.Invoice
	err := stmt.
		Scopes(f.Pagination.Scope()).
		Order("issued_at desc, id desc").
		Find(&invoices).Error
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

type statusCountRow struct {
	Status string
	Count  int64
}

func (r *repo) CountByStatus(ctx context.Context, db *gorm.DB) (map[domain.Status]int64, error) {
	var rows []statusCountRow
	err := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.Status]int64, len(rows))
	for _, row := range rows {
		counts[domain.Status(row.Status)] = row.Count
	}
	return counts, nil
}

func (r *repo) MarkOverdue(ctx context.Context, db *gorm.DB, before time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("status = ? AND due_date < ?", domain.StatusPending, before).
		Updates(map[string]any{"status": domain.StatusOverdue, "updated_at": before})
	return res.RowsAffected, res.Error
}

func (r *repo) SumAmountByStatus(ctx context.Context, db *gorm.DB, statuses ...domain.Status) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Select("sum(amount)").
		Where("status IN ?", statuses).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
