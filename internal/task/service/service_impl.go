package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/internal/sequence"
	"github.com/cityville/laundromat/internal/task/domain"
	"github.com/cityville/laundromat/pkg/db"
	"github.com/cityville/laundromat/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Codes *sequence.Allocator
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	codes *sequence.Allocator
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("task.service"),
		genID: p.GenID,
		codes: p.Codes,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTaskRequest) (*domain.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}

	priority := domain.PriorityMedium
	if strings.TrimSpace(req.Priority) != "" {
		priority = domain.Priority(req.Priority)
		if !priority.Valid() {
			return nil, domain.ErrInvalidPriority
		}
	}

	totalSteps := req.TotalSteps
	if totalSteps <= 0 {
		totalSteps = 1
	}

	var orderID *snowflake.ID
	if strings.TrimSpace(req.OrderID) != "" {
		id, err := snowflake.ParseString(strings.TrimSpace(req.OrderID))
		if err != nil || id == 0 {
			return nil, domain.ErrInvalidReference
		}
		orderID = &id
	}
	var assignedTo *snowflake.ID
	if strings.TrimSpace(req.AssignedToID) != "" {
		id, err := snowflake.ParseString(strings.TrimSpace(req.AssignedToID))
		if err != nil || id == 0 {
			return nil, domain.ErrInvalidReference
		}
		assignedTo = &id
	}

	code, err := s.codes.Allocate(ctx, sequence.KindTask, "tasks", "code")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &domain.Task{
		ID:           s.genID.Generate(),
		Code:         code,
		OrderID:      orderID,
		AssignedToID: assignedTo,
		Title:        title,
		Description:  strings.TrimSpace(req.Description),
		TaskType:     strings.TrimSpace(req.TaskType),
		Status:       domain.StatusPending,
		Priority:     priority,
		CurrentStep:  0,
		TotalSteps:   totalSteps,
		DueDate:      req.DueDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	task.Progress = task.ComputeProgress()

	if err := s.repo.Insert(ctx, s.db, task); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, sequence.ErrDuplicateIdentifier
		}
		return nil, err
	}

	s.log.Info("task created", zap.String("code", code), zap.String("type", task.TaskType))
	return task, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	return s.find(ctx, id)
}

func (s *Service) List(ctx context.Context, f domain.ListTaskFilter) ([]domain.Task, *pagination.PageInfo, error) {
	f.Pagination = f.Pagination.Normalize()
	tasks, total, err := s.repo.List(ctx, s.db, f)
	if err != nil {
		return nil, nil, err
	}
	info := f.Pagination.Info(total)
	return tasks, &info, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateTaskRequest) (*domain.Task, error) {
	task, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.AssignedToID != nil {
		if strings.TrimSpace(*req.AssignedToID) == "" {
			task.AssignedToID = nil
		} else {
			staffID, err := snowflake.ParseString(strings.TrimSpace(*req.AssignedToID))
			if err != nil || staffID == 0 {
				return nil, domain.ErrInvalidReference
			}
			task.AssignedToID = &staffID
		}
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		task.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		task.Description = strings.TrimSpace(*req.Description)
	}
	if req.Priority != nil {
		priority := domain.Priority(*req.Priority)
		if !priority.Valid() {
			return nil, domain.ErrInvalidPriority
		}
		task.Priority = priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Notes != nil {
		task.Notes = strings.TrimSpace(*req.Notes)
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateStatus moves the task through its lifecycle and stamps the
// transition times: entering in_progress sets StartedAt once, completing
// sets CompletedAt and pins progress at 100.
func (s *Service) UpdateStatus(ctx context.Context, id string, req domain.UpdateTaskStatusRequest) (*domain.Task, error) {
	task, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	status := domain.Status(req.Status)
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	now := time.Now().UTC()
	task.Status = status
	switch status {
	case domain.StatusInProgress:
		if task.StartedAt == nil {
			task.StartedAt = &now
		}
	case domain.StatusCompleted:
		if task.StartedAt == nil {
			task.StartedAt = &now
		}
		task.CompletedAt = &now
		task.CurrentStep = task.TotalSteps
	}
	if strings.TrimSpace(req.Notes) != "" {
		task.Notes = strings.TrimSpace(req.Notes)
	}
	task.Progress = task.ComputeProgress()
	task.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, task); err != nil {
		return nil, err
	}

	s.log.Info("task status updated",
		zap.String("code", task.Code),
		zap.String("status", string(status)),
	)
	return task, nil
}

// Advance bumps the step counter and recomputes progress.
func (s *Service) Advance(ctx context.Context, id string, req domain.AdvanceTaskRequest) (*domain.Task, error) {
	task, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.CurrentStep < 0 || req.CurrentStep > task.TotalSteps {
		return nil, domain.ErrInvalidSteps
	}

	task.CurrentStep = req.CurrentStep
	task.Progress = task.ComputeProgress()
	task.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	task, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, task.ID)
}

func (s *Service) Stats(ctx context.Context) (*domain.TaskStats, error) {
	byStatus, err := s.repo.CountByStatus(ctx, s.db)
	if err != nil {
		return nil, err
	}
	byPriority, err := s.repo.CountByPriority(ctx, s.db)
	if err != nil {
		return nil, err
	}
	overdue, err := s.repo.CountOverdue(ctx, s.db, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	var total int64
	for _, n := range byStatus {
		total += n
	}
	return &domain.TaskStats{
		Total:      total,
		ByStatus:   byStatus,
		ByPriority: byPriority,
		Overdue:    overdue,
	}, nil
}

// find resolves a task by surrogate ID or by its public TASK code.
func (s *Service) find(ctx context.Context, id string) (*domain.Task, error) {
	trimmed := strings.TrimSpace(id)
	if strings.HasPrefix(trimmed, "TASK-") {
		task, err := s.repo.FindByCode(ctx, s.db, trimmed)
		if err != nil {
			return nil, err
		}
		if task == nil {
			return nil, domain.ErrTaskNotFound
		}
		return task, nil
	}
	parsed, err := snowflake.ParseString(trimmed)
	if err != nil || parsed == 0 {
		return nil, domain.ErrTaskNotFound
	}
	task, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}
