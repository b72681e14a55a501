package repository

import (
	"context"
	"errors"

	"github.com/cityville/laundromat/internal/settings/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Find(ctx context.Context, db *gorm.DB) (*domain.Settings, error) {
	var s domain.Settings
	err := db.WithContext(ctx).Order("id asc").First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, s *domain.Settings) error {
	return db.WithContext(ctx).Save(s).Error
}
