package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/internal/auth/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, t *domain.Token) error {
	return db.WithContext(ctx).Create(t).Error
}

func (r *repo) FindByHash(ctx context.Context, db *gorm.DB, hash string) (*domain.Token, error) {
	var t domain.Token
	err := db.WithContext(ctx).First(&t, "token_hash = ?", hash).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repo) Touch(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Token{}).
		Where("id = ?", id).
		Update("last_used_at", at).Error
}

func (r *repo) DeleteByHash(ctx context.Context, db *gorm.DB, hash string) error {
	return db.WithContext(ctx).Delete(&domain.Token{}, "token_hash = ?", hash).Error
}

func (r *repo) DeleteByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Token{}, "user_id = ?", userID).Error
}

func (r *repo) DeleteExpired(ctx context.Context, db *gorm.DB, before time.Time) (int64, error) {
	res := db.WithContext(ctx).Delete(&domain.Token{}, "expires_at < ?", before)
	return res.RowsAffected, res.Error
}
