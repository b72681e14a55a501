package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrInvalidTaxRate is returned for tax rates outside 0..100.
var ErrInvalidTaxRate = errors.New("invalid_tax_rate")

// UpdateSettingsRequest changes shop configuration; only set fields are
// applied.
type UpdateSettingsRequest struct {
	BusinessName  *string          `json:"business_name"`
	Address       *string          `json:"address"`
	Phone         *string          `json:"phone"`
	Email         *string          `json:"email"`
	Currency      *string          `json:"currency"`
	TaxRate       *decimal.Decimal `json:"tax_rate"`
	OpeningTime   *string          `json:"opening_time"`
	ClosingTime   *string          `json:"closing_time"`
	DeliveryFee   *decimal.Decimal `json:"delivery_fee"`
	NotifyByEmail *bool            `json:"notify_by_email"`
	NotifyBySMS   *bool            `json:"notify_by_sms"`
}

// Service exposes the settings singleton.
type Service interface {
	Get(ctx context.Context) (*Settings, error)
	Update(ctx context.Context, req UpdateSettingsRequest) (*Settings, error)
}

// Repository is the persistence port for the singleton row.
type Repository interface {
	Find(ctx context.Context, db *gorm.DB) (*Settings, error)
	Save(ctx context.Context, db *gorm.DB, s *Settings) error
}
