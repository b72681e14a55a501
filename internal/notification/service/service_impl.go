package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/internal/notification/domain"
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
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("notification.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Notify(ctx context.Context, req domain.CreateNotificationRequest) (*domain.Notification, error) {
	if req.UserID == 0 {
		return nil, domain.ErrUserRequired
	}
	if !req.Kind.Valid() {
		return nil, domain.ErrInvalidKind
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrTitleRequired
	}

	n := &domain.Notification{
		ID:        s.genID.Generate(),
		UserID:    req.UserID,
		Kind:      req.Kind,
		Title:     title,
		Message:   strings.TrimSpace(req.Message),
		Reference: strings.TrimSpace(req.Reference),
		Data:      req.Data,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, s.db, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) List(ctx context.Context, f domain.ListNotificationFilter) ([]domain.Notification, *pagination.PageInfo, error) {
	f.Pagination = f.Pagination.Normalize()
	notifications, total, err := s.repo.List(ctx, s.db, f)
	if err != nil {
		return nil, nil, err
	}
	info := f.Pagination.Info(total)
	return notifications, &info, nil
}

func (s *Service) MarkRead(ctx context.Context, id string) (*domain.Notification, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return nil, domain.ErrNotificationNotFound
	}
	n, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, domain.ErrNotificationNotFound
	}
	if !n.Read {
		now := time.Now().UTC()
		n.Read = true
		n.ReadAt = &now
		if err := s.repo.Update(ctx, s.db, n); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID snowflake.ID) (int64, error) {
	return s.repo.MarkAllRead(ctx, s.db, userID)
}

func (s *Service) CountUnread(ctx context.Context, userID snowflake.ID) (int64, error) {
	return s.repo.CountUnread(ctx, s.db, userID)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return domain.ErrNotificationNotFound
	}
	n, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return err
	}
	if n == nil {
		return domain.ErrNotificationNotFound
	}
	return s.repo.Delete(ctx, s.db, n.ID)
}
