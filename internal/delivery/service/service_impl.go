package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/internal/delivery/domain"
	"github.com/cityville/laundromat/internal/sequence"
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
		log:   p.Log.Named("delivery.service"),
		genID: p.GenID,
		codes: p.Codes,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateDeliveryRequest) (*domain.Delivery, error) {
	orderID, err := snowflake.ParseString(strings.TrimSpace(req.OrderID))
	if err != nil || orderID == 0 {
		return nil, domain.ErrInvalidReference
	}

	kind := domain.Kind(req.Kind)
	if !kind.Valid() {
		return nil, domain.ErrInvalidKind
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		return nil, domain.ErrAddressRequired
	}

	var driverID *snowflake.ID
	if strings.TrimSpace(req.DriverID) != "" {
		id, err := snowflake.ParseString(strings.TrimSpace(req.DriverID))
		if err != nil || id == 0 {
			return nil, domain.ErrInvalidReference
		}
		driverID = &id
	}

	code, err := s.codes.Allocate(ctx, sequence.KindDelivery, "deliveries", "code")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	run := &domain.Delivery{
		ID:           s.genID.Generate(),
		Code:         code,
		OrderID:      orderID,
		DriverID:     driverID,
		Kind:         kind,
		Status:       domain.StatusScheduled,
		Address:      address,
		ContactPhone: strings.TrimSpace(req.ContactPhone),
		ScheduledAt:  req.ScheduledAt,
		Notes:        strings.TrimSpace(req.Notes),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, s.db, run); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, sequence.ErrDuplicateIdentifier
		}
		return nil, err
	}

	s.log.Info("delivery scheduled",
		zap.String("code", code),
		zap.String("kind", string(kind)),
	)
	return run, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Delivery, error) {
	return s.find(ctx, id)
}

func (s *Service) List(ctx context.Context, f domain.ListDeliveryFilter) ([]domain.Delivery, *pagination.PageInfo, error) {
	f.Pagination = f.Pagination.Normalize()
	runs, total, err := s.repo.List(ctx, s.db, f)
	if err != nil {
		return nil, nil, err
	}
	info := f.Pagination.Info(total)
	return runs, &info, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateDeliveryRequest) (*domain.Delivery, error) {
	run, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DriverID != nil {
		if strings.TrimSpace(*req.DriverID) == "" {
			run.DriverID = nil
		} else {
			driverID, err := snowflake.ParseString(strings.TrimSpace(*req.DriverID))
			if err != nil || driverID == 0 {
				return nil, domain.ErrInvalidReference
			}
			run.DriverID = &driverID
		}
	}
	if req.Address != nil {
		address := strings.TrimSpace(*req.Address)
		if address == "" {
			return nil, domain.ErrAddressRequired
		}
		run.Address = address
	}
	if req.ContactPhone != nil {
		run.ContactPhone = strings.TrimSpace(*req.ContactPhone)
	}
	if req.ScheduledAt != nil {
		run.ScheduledAt = *req.ScheduledAt
	}
	if req.Notes != nil {
		run.Notes = strings.TrimSpace(*req.Notes)
	}
	run.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, run); err != nil {
		return nil, err
	}
	return run, nil
}

// UpdateStatus moves the run through its lifecycle: entering in_transit
// stamps DepartedAt once, completing stamps CompletedAt.
func (s *Service) UpdateStatus(ctx context.Context, id string, req domain.UpdateDeliveryStatusRequest) (*domain.Delivery, error) {
	run, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	status := domain.Status(req.Status)
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	now := time.Now().UTC()
	run.Status = status
	switch status {
	case domain.StatusInTransit:
		if run.DepartedAt == nil {
			run.DepartedAt = &now
		}
	case domain.StatusCompleted:
		if run.DepartedAt == nil {
			run.DepartedAt = &now
		}
		run.CompletedAt = &now
	}
	if strings.TrimSpace(req.Notes) != "" {
		run.Notes = strings.TrimSpace(req.Notes)
	}
	run.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, run); err != nil {
		return nil, err
	}

	s.log.Info("delivery status updated",
		zap.String("code", run.Code),
		zap.String("status", string(status)),
	)
	return run, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	run, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, run.ID)
}

func (s *Service) Stats(ctx context.Context) (*domain.DeliveryStats, error) {
	byStatus, err := s.repo.CountByStatus(ctx, s.db)
	if err != nil {
		return nil, err
	}
	byKind, err := s.repo.CountByKind(ctx, s.db)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, n := range byStatus {
		total += n
	}
	return &domain.DeliveryStats{Total: total, ByStatus: byStatus, ByKind: byKind}, nil
}

// find resolves a run by surrogate ID or by its public DEL code.
func (s *Service) find(ctx context.Context, id string) (*domain.Delivery, error) {
	trimmed := strings.TrimSpace(id)
	if strings.HasPrefix(trimmed, "DEL-") {
		run, err := s.repo.FindByCode(ctx, s.db, trimmed)
		if err != nil {
			return nil, err
		}
		if run == nil {
			return nil, domain.ErrDeliveryNotFound
		}
		return run, nil
	}
	parsed, err := snowflake.ParseString(trimmed)
	if err != nil || parsed == 0 {
		return nil, domain.ErrDeliveryNotFound
	}
	run, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, domain.ErrDeliveryNotFound
	}
	return run, nil
}
