package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/internal/rfid/domain"
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
		log:   p.Log.Named("rfid.service"),
		genID: p.GenID,
		codes: p.Codes,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTagRequest) (*domain.Tag, error) {
	var orderID *snowflake.ID
	if strings.TrimSpace(req.OrderID) != "" {
		id, err := snowflake.ParseString(strings.TrimSpace(req.OrderID))
		if err != nil || id == 0 {
			return nil, domain.ErrInvalidReference
		}
		orderID = &id
	}

	code, err := s.codes.Allocate(ctx, sequence.KindRFIDTag, "rfid_tags", "code")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tag := &domain.Tag{
		ID:              s.genID.Generate(),
		Code:            code,
		OrderID:         orderID,
		ItemDescription: strings.TrimSpace(req.ItemDescription),
		Status:          domain.StatusAssigned,
		LastLocation:    strings.TrimSpace(req.Location),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, s.db, tag); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, sequence.ErrDuplicateIdentifier
		}
		return nil, err
	}

	s.log.Info("rfid tag registered", zap.String("code", code))
	return tag, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Tag, error) {
	return s.find(ctx, id)
}

func (s *Service) List(ctx context.Context, f domain.ListTagFilter) ([]domain.Tag, *pagination.PageInfo, error) {
	f.Pagination = f.Pagination.Normalize()
	tags, total, err := s.repo.List(ctx, s.db, f)
	if err != nil {
		return nil, nil, err
	}
	info := f.Pagination.Info(total)
	return tags, &info, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateTagRequest) (*domain.Tag, error) {
	tag, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.OrderID != nil {
		if strings.TrimSpace(*req.OrderID) == "" {
			tag.OrderID = nil
		} else {
			orderID, err := snowflake.ParseString(strings.TrimSpace(*req.OrderID))
			if err != nil || orderID == 0 {
				return nil, domain.ErrInvalidReference
			}
			tag.OrderID = &orderID
		}
	}
	if req.ItemDescription != nil {
		tag.ItemDescription = strings.TrimSpace(*req.ItemDescription)
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		if !status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
		tag.Status = status
	}
	if req.Location != nil {
		tag.LastLocation = strings.TrimSpace(*req.Location)
	}
	tag.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// Verify records a scan: the tag moves to verified and remembers where and
// when it was last seen.
func (s *Service) Verify(ctx context.Context, id string, req domain.VerifyTagRequest) (*domain.Tag, error) {
	tag, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tag.Status = domain.StatusVerified
	tag.LastScannedAt = &now
	if strings.TrimSpace(req.Location) != "" {
		tag.LastLocation = strings.TrimSpace(req.Location)
	}
	tag.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, tag); err != nil {
		return nil, err
	}

	s.log.Info("rfid tag verified",
		zap.String("code", tag.Code),
		zap.String("location", tag.LastLocation),
	)
	return tag, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	tag, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, tag.ID)
}

func (s *Service) Stats(ctx context.Context) (*domain.TagStats, error) {
	byStatus, err := s.repo.CountByStatus(ctx, s.db)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, n := range byStatus {
		total += n
	}
	return &domain.TagStats{Total: total, ByStatus: byStatus}, nil
}

// find resolves a tag by surrogate ID or by its public RF code.
func (s *Service) find(ctx context.Context, id string) (*domain.Tag, error) {
	trimmed := strings.TrimSpace(id)
	if strings.HasPrefix(trimmed, "RF") {
		tag, err := s.repo.FindByCode(ctx, s.db, trimmed)
		if err != nil {
			return nil, err
		}
		if tag == nil {
			return nil, domain.ErrTagNotFound
		}
		return tag, nil
	}
	parsed, err := snowflake.ParseString(trimmed)
	if err != nil || parsed == 0 {
		return nil, domain.ErrTagNotFound
	}
	tag, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, domain.ErrTagNotFound
	}
	return tag, nil
}
