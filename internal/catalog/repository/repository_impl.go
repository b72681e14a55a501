package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, s *domain.Service) error {
	return db.WithContext(ctx).Create(s).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, s *domain.Service) error {
	return db.WithContext(ctx).Save(s).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Service{}, "id = ?", id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Service, error) {
	var s domain.Service
	err := db.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, f domain.ListServiceFilter) ([]domain.Service, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Service{})
	if f.Category != "" {
		stmt = stmt.Where("category = ?", f.Category)
	}
	if f.Active != nil {
		stmt = stmt.Where("active = ?", *f.Active)
	}
	if f.Search != "" {
		stmt = stmt.Where("name LIKE ?", "%"+f.Search+"%")
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var services []domain.Service
	err := stmt.
		Scopes(f.Pagination.Scope()).
		Order("name asc").
		Find(&services).Error
	if err != nil {
		return nil, 0, err
	}
	return services, total, nil
}

type categoryCountRow struct {
	Category string
	Count    int64
}

func (r *repo) CountByCategory(ctx context.Context, db *gorm.DB) (map[string]int64, error) {
	var rows []categoryCountRow
	err := db.WithContext(ctx).
		Model(&domain.Service{}).
		Select("category, count(*) as count").
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}

func (r *repo) CountActive(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Service{}).
		Where("active = ?", true).
		Count(&count).Error
	return count, err
}
