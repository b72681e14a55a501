package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/internal/catalog/domain"
	"github.com/cityville/laundromat/pkg/db"
	"github.com/cityville/laundromat/pkg/db/pagination"
	"github.com/shopspring/decimal"
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

func New(p Params) *Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateServiceRequest) (*domain.Service, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.Price.IsNegative() {
		return nil, domain.ErrInvalidPrice
	}

	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = "item"
	}

	now := time.Now().UTC()
	entry := &domain.Service{
		ID:             s.genID.Generate(),
		Name:           name,
		Description:    strings.TrimSpace(req.Description),
		Category:       strings.TrimSpace(req.Category),
		Price:          req.Price,
		Unit:           unit,
		TurnaroundTime: strings.TrimSpace(req.TurnaroundTime),
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Insert(ctx, s.db, entry); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateName
		}
		return nil, err
	}
	return entry, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	return s.find(ctx, id)
}

func (s *Service) List(ctx context.Context, f domain.ListServiceFilter) ([]domain.Service, *pagination.PageInfo, error) {
	f.Pagination = f.Pagination.Normalize()
	services, total, err := s.repo.List(ctx, s.db, f)
	if err != nil {
		return nil, nil, err
	}
	info := f.Pagination.Info(total)
	return services, &info, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateServiceRequest) (*domain.Service, error) {
	entry, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		entry.Name = name
	}
	if req.Description != nil {
		entry.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		entry.Category = strings.TrimSpace(*req.Category)
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, domain.ErrInvalidPrice
		}
		entry.Price = *req.Price
	}
	if req.Unit != nil {
		entry.Unit = strings.TrimSpace(*req.Unit)
	}
	if req.TurnaroundTime != nil {
		entry.TurnaroundTime = strings.TrimSpace(*req.TurnaroundTime)
	}
	if req.Active != nil {
		entry.Active = *req.Active
	}
	entry.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, entry); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateName
		}
		return nil, err
	}
	return entry, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	entry, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, entry.ID)
}

func (s *Service) Stats(ctx context.Context) (*domain.ServiceStats, error) {
	byCategory, err := s.repo.CountByCategory(ctx, s.db)
	if err != nil {
		return nil, err
	}
	active, err := s.repo.CountActive(ctx, s.db)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, n := range byCategory {
		total += n
	}
	return &domain.ServiceStats{Total: total, Active: active, ByCategory: byCategory}, nil
}

// UnitPrice resolves the current price of an active catalog entry. Order
// lines call this when the client does not pin a price explicitly.
func (s *Service) UnitPrice(ctx context.Context, serviceID snowflake.ID) (decimal.Decimal, error) {
	entry, err := s.repo.FindByID(ctx, s.db, serviceID)
	if err != nil {
		return decimal.Zero, err
	}
	if entry == nil {
		return decimal.Zero, domain.ErrServiceNotFound
	}
	if !entry.Active {
		return decimal.Zero, domain.ErrServiceInactive
	}
	return entry.Price, nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Service, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return nil, domain.ErrServiceNotFound
	}
	entry, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.ErrServiceNotFound
	}
	return entry, nil
}
