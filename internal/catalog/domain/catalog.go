package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrServiceNotFound is returned when no catalog entry matches.
	ErrServiceNotFound = errors.New("service_not_found")
	// ErrServiceInactive is returned when pricing against a disabled entry.
	ErrServiceInactive = errors.New("service_inactive")
	// ErrInvalidName is returned for blank service names.
	ErrInvalidName = errors.New("invalid_name")
	// ErrInvalidPrice is returned for negative prices.
	ErrInvalidPrice = errors.New("invalid_price")
	// ErrDuplicateName is returned when the name is already taken.
	ErrDuplicateName = errors.New("duplicate_name")
)

// CreateServiceRequest adds a new offering to the price list.
type CreateServiceRequest struct {
	Name           string          `json:"name" binding:"required"`
	Description    string          `json:"description"`
	Category       string          `json:"category" binding:"required"`
	Price          decimal.Decimal `json:"price" binding:"required"`
	Unit           string          `json:"unit"`
	TurnaroundTime string          `json:"turnaround_time"`
}

// UpdateServiceRequest changes an offering; only set fields are applied.
type UpdateServiceRequest struct {
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	Category       *string          `json:"category"`
	Price          *decimal.Decimal `json:"price"`
	Unit           *string          `json:"unit"`
	TurnaroundTime *string          `json:"turnaround_time"`
	Active         *bool            `json:"is_active"`
}

// ListServiceFilter narrows catalog listings.
type ListServiceFilter struct {
	pagination.Pagination
	Category string `form:"category"`
	Active   *bool  `form:"is_active"`
	Search   string `form:"search"`
}

// ServiceStats summarizes the catalog for dashboards.
type ServiceStats struct {
	Total      int64            `json:"total"`
	Active     int64            `json:"active"`
	ByCategory map[string]int64 `json:"by_category"`
}

// CatalogService manages the price list.
type CatalogService interface {
	Create(ctx context.Context, req CreateServiceRequest) (*Service, error)
	GetByID(ctx context.Context, id string) (*Service, error)
	List(ctx context.Context, f ListServiceFilter) ([]Service, *pagination.PageInfo, error)
	Update(ctx context.Context, id string, req UpdateServiceRequest) (*Service, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*ServiceStats, error)
}

// Repository is the persistence port for the catalog.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, s *Service) error
	Update(ctx context.Context, db *gorm.DB, s *Service) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Service, error)
	List(ctx context.Context, db *gorm.DB, f ListServiceFilter) ([]Service, int64, error)
	CountByCategory(ctx context.Context, db *gorm.DB) (map[string]int64, error)
	CountActive(ctx context.Context, db *gorm.DB) (int64, error)
}
