package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/internal/notification/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, n *domain.Notification) error {
	return db.WithContext(ctx).Create(n).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, n *domain.Notification) error {
	return db.WithContext(ctx).Save(n).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Notification{}, "id = ?", id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Notification, error) {
	var n domain.Notification
	err := db.WithContext(ctx).First(&n, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, f domain.ListNotificationFilter) ([]domain.Notification, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Notification{})
	if f.UserID != "" {
		stmt = stmt.Where("user_id = ?", f.UserID)
	}
	if f.Kind != "" {
		stmt = stmt.Where("kind = ?", f.Kind)
	}
	if f.Unread != nil {
		stmt = stmt.Where("read = ?", !*f.Unread)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []domain.Notification
	err := stmt.
		Scopes(f.Pagination.Scope()).
		Order("created_at desc, id desc").
		Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (r *repo) MarkAllRead(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error) {
	now := time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(map[string]any{"read": true, "read_at": now})
	return res.RowsAffected, res.Error
}

func (r *repo) CountUnread(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}
