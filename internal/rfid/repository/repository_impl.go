package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/internal/rfid/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, t *domain.Tag) error {
	return db.WithContext(ctx).Create(t).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, t *domain.Tag) error {
	return db.WithContext(ctx).Save(t).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Tag{}, "id = ?", id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Tag, error) {
	var t domain.Tag
	err := db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Tag, error) {
	var t domain.Tag
	err := db.WithContext(ctx).First(&t, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, f domain.ListTagFilter) ([]domain.Tag, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Tag{})
	if f.Status != "" {
		stmt = stmt.Where("status = ?", f.Status)
	}
	if f.OrderID != "" {
		stmt = stmt.Where("order_id = ?", f.OrderID)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tags []domain.Tag
	err := stmt.
		Scopes(f.Pagination.Scope()).
		Order("created_at desc, id desc").
		Find(&tags).Error
	if err != nil {
		return nil, 0, err
	}
	return tags, total, nil
}

type statusCountRow struct {
	Status string
	Count  int64
}

func (r *repo) CountByStatus(ctx context.Context, db *gorm.DB) (map[domain.Status]int64, error) {
	var rows []statusCountRow
	err := db.WithContext(ctx).
		Model(&domain.Tag{}).
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
