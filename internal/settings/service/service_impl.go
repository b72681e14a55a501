package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/internal/config"
	"github.com/cityville/laundromat/internal/settings/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Config config.Config
	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
}

type Service struct {
	cfg   config.Config
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		cfg:   p.Config,
		db:    p.DB,
		log:   p.Log.Named("settings.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

// Get returns the singleton row, creating it with defaults on first read.
func (s *Service) Get(ctx context.Context) (*domain.Settings, error) {
	existing, err := s.repo.Find(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	defaults := &domain.Settings{
		ID:            s.genID.Generate(),
		BusinessName:  s.cfg.AppName,
		Currency:      s.cfg.Currency,
		TaxRate:       decimal.Zero,
		DeliveryFee:   decimal.Zero,
		NotifyByEmail: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Save(ctx, s.db, defaults); err != nil {
		return nil, err
	}
	s.log.Info("business settings initialized")
	return defaults, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateSettingsRequest) (*domain.Settings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if req.BusinessName != nil && strings.TrimSpace(*req.BusinessName) != "" {
		settings.BusinessName = strings.TrimSpace(*req.BusinessName)
	}
	if req.Address != nil {
		settings.Address = strings.TrimSpace(*req.Address)
	}
	if req.Phone != nil {
		settings.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		settings.Email = strings.TrimSpace(*req.Email)
	}
	if req.Currency != nil && strings.TrimSpace(*req.Currency) != "" {
		settings.Currency = strings.ToUpper(strings.TrimSpace(*req.Currency))
	}
	if req.TaxRate != nil {
		if req.TaxRate.IsNegative() || req.TaxRate.GreaterThan(decimal.NewFromInt(100)) {
			return nil, domain.ErrInvalidTaxRate
		}
		settings.TaxRate = *req.TaxRate
	}
	if req.OpeningTime != nil {
		settings.OpeningTime = strings.TrimSpace(*req.OpeningTime)
	}
	if req.ClosingTime != nil {
		settings.ClosingTime = strings.TrimSpace(*req.ClosingTime)
	}
	if req.DeliveryFee != nil && !req.DeliveryFee.IsNegative() {
		settings.DeliveryFee = *req.DeliveryFee
	}
	if req.NotifyByEmail != nil {
		settings.NotifyByEmail = *req.NotifyByEmail
	}
	if req.NotifyBySMS != nil {
		settings.NotifyBySMS = *req.NotifyBySMS
	}
	settings.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, s.db, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
