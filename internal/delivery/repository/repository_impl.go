package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/internal/delivery/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, d *domain.Delivery) error {
	return db.WithContext(ctx).Create(d).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, d *domain.Delivery) error {
	return db.WithContext(ctx).Save(d).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Delivery{}, "id = ?", id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Delivery, error) {
	var d domain.Delivery
	err := db.WithContext(ctx).First(&d, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Delivery, error) {
	var d domain.Delivery
	err := db.WithContext(ctx).First(&d, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, f domain.ListDeliveryFilter) ([]domain.Delivery, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Delivery{})
	if f.Status != "" {
		stmt = stmt.Where("status = ?", f.Status)
	}
	if f.Kind != "" {
		stmt = stmt.Where("kind = ?", f.Kind)
	}
	if f.OrderID != "" {
		stmt = stmt.Where("order_id = ?", f.OrderID)
	}
	if f.DriverID != "" {
		stmt = stmt.Where("driver_id = ?", f.DriverID)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var deliveries []domain.Delivery
	err := stmt.
		Scopes(f.Pagination.Scope()).
		Order("scheduled_at desc, id desc").
		Find(&deliveries).Error
	if err != nil {
		return nil, 0, err
	}
	return deliveries, total, nil
}

type statusCountRow struct {
	Status string
	Count  int64
}

func (r *repo) CountByStatus(ctx context.Context, db *gorm.DB) (map[domain.Status]int64, error) {
	var rows []statusCountRow
	err := db.WithContext(ctx).
		Model(&domain.Delivery{}).
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

type kindCountRow struct {
	Kind  string
	Count int64
}

func (r *repo) CountByKind(ctx context.Context, db *gorm.DB) (map[domain.Kind]int64, error) {
	var rows []kindCountRow
	err := db.WithContext(ctx).
		Model(&domain.Delivery{}).
		Select("kind, count(*) as count").
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.Kind]int64, len(rows))
	for _, row := range rows {
		counts[domain.Kind(row.Kind)] = row.Count
	}
	return counts, nil
}
