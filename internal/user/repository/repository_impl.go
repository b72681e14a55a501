package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/internal/user/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, u *domain.User) error {
	return db.WithContext(ctx).Create(u).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, u *domain.User) error {
	return db.WithContext(ctx).Omit("Preferences").Save(u).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	if err := db.WithContext(ctx).Where("user_id = ?", id).Delete(&domain.Preferences{}).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Delete(&domain.User{}, "id = ?", id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).Preload("Preferences").First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repo) FindByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).Preload("Preferences").First(&u, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).Preload("Preferences").First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, f domain.ListUserFilter) ([]domain.User, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.User{})
	if f.Role != "" {
		stmt = stmt.Where("role = ?", f.Role)
	}
	if f.Active != nil {
		stmt = stmt.Where("active = ?", *f.Active)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		stmt = stmt.Where(
			"username LIKE ? OR email LIKE ? OR first_name LIKE ? OR last_name LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []domain.User
	err := stmt.
		Scopes(f.Pagination.Scope()).
		Order("created_at desc, id desc").
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

type roleCountRow struct {
	Role  string
	Count int64
}

func (r *repo) CountByRole(ctx context.Context, db *gorm.DB) (map[domain.Role]int64, error) {
	var rows []roleCountRow
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Select("role, count(*) as count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.Role]int64, len(rows))
	for _, row := range rows {
		counts[domain.Role(row.Role)] = row.Count
	}
	return counts, nil
}

func (r *repo) CountActive(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("active = ?", true).
		Count(&count).Error
	return count, err
}

func (r *repo) FindPreferences(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*domain.Preferences, error) {
	var p domain.Preferences
	err := db.WithContext(ctx).First(&p, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) SavePreferences(ctx context.Context, db *gorm.DB, p *domain.Preferences) error {
	return db.WithContext(ctx).Save(p).Error
}
