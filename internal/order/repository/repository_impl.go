package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/internal/order/domain"
	"github.com/cityville/laundromat/internal/order/lifecycle"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, o *domain.Order) error {
	return db.WithContext(ctx).Create(o).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, o *domain.Order) error {
	return db.WithContext(ctx).Save(o).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	if err := db.WithContext(ctx).Where("order_id = ?", id).Delete(&domain.TimelineEntry{}).Error; err != nil {
		return err
	}
	if err := db.WithContext(ctx).Where("order_id = ?", id).Delete(&domain.LineItem{}).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Delete(&domain.Order{}, "id = ?", id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).
		Preload("Lines").
		Preload("Timeline", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at asc, id asc") }).
		First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).
		Preload("Lines").
		Preload("Timeline", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at asc, id asc") }).
		First(&o, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, f domain.ListOrderFilter) ([]domain.Order, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Order{})
	if f.Status != "" {
		stmt = stmt.Where("status = ?", f.Status)
	}
	if f.Stage != "" {
		stmt = stmt.Where("current_stage = ?", f.Stage)
	}
	if f.CustomerID != "" {
		stmt = stmt.Where("customer_id = ?", f.CustomerID)
	}
	if f.AssignedTo != "" {
		stmt = stmt.Where("assigned_to_id = ?", f.AssignedTo)
	}
	if f.Search != "" {
		stmt = stmt.Where("code LIKE ?", "%"+f.Search+"%")
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []domain.Order
	err := stmt.
		Scopes(f.Pagination.Scope()).
		Order("created_at desc, id desc").
		Preload("Lines").
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repo) InsertLine(ctx context.Context, db *gorm.DB, l *domain.LineItem) error {
	return db.WithContext(ctx).Create(l).Error
}

func (r *repo) UpdateLine(ctx context.Context, db *gorm.DB, l *domain.LineItem) error {
	return db.WithContext(ctx).Save(l).Error
}

func (r *repo) DeleteLine(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.LineItem{}, "id = ?", id).Error
}

func (r *repo) FindLineByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.LineItem, error) {
	var l domain.LineItem
	err := db.WithContext(ctx).First(&l, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repo) ListLines(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]domain.LineItem, error) {
	var lines []domain.LineItem
	err := db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at asc, id asc").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repo) InsertTimeline(ctx context.Context, db *gorm.DB, e *domain.TimelineEntry) error {
	return db.WithContext(ctx).Create(e).Error
}

func (r *repo) CloseCurrentTimeline(ctx context.Context, db *gorm.DB, orderID snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.TimelineEntry{}).
		Where("order_id = ? AND is_current = ?", orderID, true).
		Updates(map[string]any{
			"is_current": false,
			"completed":  true,
			"timestamp":  at,
			"updated_at": at,
		}).Error
}

func (r *repo) ListTimeline(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]domain.TimelineEntry, error) {
	var entries []domain.TimelineEntry
	err := db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at asc, id asc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

type statusCountRow struct {
	Status string
	Count  int64
}

func (r *repo) CountByStatus(ctx context.Context, db *gorm.DB) (map[lifecycle.Status]int64, error) {
	var rows []statusCountRow
	err := db.WithContext(ctx).
		Model(&domain.Order{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[lifecycle.Status]int64, len(rows))
	for _, row := range rows {
		counts[lifecycle.Status(row.Status)] = row.Count
	}
	return counts, nil
}

type stageCountRow struct {
	CurrentStage string
	Count        int64
}

func (r *repo) CountByStage(ctx context.Context, db *gorm.DB) (map[lifecycle.Stage]int64, error) {
	var rows []stageCountRow
	err := db.WithContext(ctx).
		Model(&domain.Order{}).
		Select("current_stage, count(*) as count").
		Group("current_stage").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[lifecycle.Stage]int64, len(rows))
	for _, row := range rows {
		counts[lifecycle.Stage(row.CurrentStage)] = row.Count
	}
	return counts, nil
}

func (r *repo) SumAmountByStatus(ctx context.Context, db *gorm.DB, statuses ...lifecycle.Status) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := db.WithContext(ctx).
		Model(&domain.Order{}).
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

func (r *repo) CountByStatusForCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (map[lifecycle.Status]int64, error) {
	var rows []statusCountRow
	err := db.WithContext(ctx).
		Model(&domain.Order{}).
		Select("status, count(*) as count").
		Where("customer_id = ?", customerID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[lifecycle.Status]int64, len(rows))
	for _, row := range rows {
		counts[lifecycle.Status(row.Status)] = row.Count
	}
	return counts, nil
}

func (r *repo) SumAmountForCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID, statuses ...lifecycle.Status) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := db.WithContext(ctx).
		Model(&domain.Order{}).
		Select("sum(amount)").
		Where("customer_id = ? AND status IN ?", customerID, statuses).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

func (r *repo) ListRecent(ctx context.Context, db *gorm.DB, customerID snowflake.ID, limit int) ([]domain.Order, error) {
	var orders []domain.Order
	err := db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
