package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/internal/task/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, t *domain.Task) error {
	return db.WithContext(ctx).Create(t).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, t *domain.Task) error {
	return db.WithContext(ctx).Save(t).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Task{}, "id = ?", id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Task, error) {
	var t domain.Task
	err := db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Task, error) {
	var t domain.Task
	err := db.WithContext(ctx).First(&t, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, f domain.ListTaskFilter) ([]domain.Task, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Task{})
	if f.Status != "" {
		stmt = stmt.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		stmt = stmt.Where("priority = ?", f.Priority)
	}
	if f.TaskType != "" {
		stmt = stmt.Where("task_type = ?", f.TaskType)
	}
	if f.OrderID != "" {
		stmt = stmt.Where("order_id = ?", f.OrderID)
	}
	if f.AssignedTo != "" {
		stmt = stmt.Where("assigned_to_id = ?", f.AssignedTo)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []domain.Task
	err := stmt.
		Scopes(f.Pagination.Scope()).
		Order("created_at desc, id desc").
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

type statusCountRow struct {
	Status string
	Count  int64
}

func (r *repo) CountByStatus(ctx context.Context, db *gorm.DB) (map[domain.Status]int64, error) {
	var rows []statusCountRow
	err := db.WithContext(ctx).
		Model(&domain.Task{}).
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

type priorityCountRow struct {
	Priority string
	Count    int64
}

func (r *repo) CountByPriority(ctx context.Context, db *gorm.DB) (map[domain.Priority]int64, error) {
	var rows []priorityCountRow
	err := db.WithContext(ctx).
		Model(&domain.Task{}).
		Select("priority, count(*) as count").
		Group("priority").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.Priority]int64, len(rows))
	for _, row := range rows {
		counts[domain.Priority(row.Priority)] = row.Count
	}
	return counts, nil
}

func (r *repo) CountOverdue(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("due_date < ? AND status IN ?", now, []domain.Status{domain.StatusPending, domain.StatusInProgress}).
		Count(&count).Error
	return count, err
}
