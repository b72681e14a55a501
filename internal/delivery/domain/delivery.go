package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/pkg/db/pagination"
	"gorm.io/gorm"
)

var (
	// ErrDeliveryNotFound is returned when no run matches.
	ErrDeliveryNotFound = errors.New("delivery_not_found")
	// ErrInvalidKind is returned for unknown kinds.
	ErrInvalidKind = errors.New("invalid_delivery_kind")
	// ErrInvalidStatus is returned for unknown status values.
	ErrInvalidStatus = errors.New("invalid_delivery_status")
	// ErrInvalidReference is returned for malformed order or driver IDs.
	ErrInvalidReference = errors.New("invalid_delivery_reference")
	// ErrAddressRequired is returned for blank addresses.
	ErrAddressRequired = errors.New("delivery_address_required")
)

// CreateDeliveryRequest schedules a new run.
type CreateDeliveryRequest struct {
	OrderID      string    `json:"order_id" binding:"required"`
	DriverID     string    `json:"driver_id"`
	Kind         string    `json:"kind" binding:"required"`
	Address      string    `json:"address" binding:"required"`
	ContactPhone string    `json:"contact_phone"`
	ScheduledAt  time.Time `json:"scheduled_at" binding:"required"`
	Notes        string    `json:"notes"`
}

// UpdateDeliveryRequest changes run fields; only set fields are applied.
type UpdateDeliveryRequest struct {
	DriverID     *string    `json:"driver_id"`
	Address      *string    `json:"address"`
	ContactPhone *string    `json:"contact_phone"`
	ScheduledAt  *time.Time `json:"scheduled_at"`
	Notes        *string    `json:"notes"`
}

// UpdateDeliveryStatusRequest moves a run through its lifecycle. Entering
// in_transit stamps DepartedAt; completing stamps CompletedAt.
type UpdateDeliveryStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// ListDeliveryFilter narrows run listings.
type ListDeliveryFilter struct {
	pagination.Pagination
	Status   string `form:"status"`
	Kind     string `form:"kind"`
	OrderID  string `form:"order_id"`
	DriverID string `form:"driver_id"`
}

// DeliveryStats summarizes runs for dashboards.
type DeliveryStats struct {
	Total    int64            `json:"total"`
	ByStatus map[Status]int64 `json:"by_status"`
	ByKind   map[Kind]int64   `json:"by_kind"`
}

// Service exposes run scheduling operations.
type Service interface {
	Create(ctx context.Context, req CreateDeliveryRequest) (*Delivery, error)
	GetByID(ctx context.Context, id string) (*Delivery, error)
	List(ctx context.Context, f ListDeliveryFilter) ([]Delivery, *pagination.PageInfo, error)
	Update(ctx context.Context, id string, req UpdateDeliveryRequest) (*Delivery, error)
	UpdateStatus(ctx context.Context, id string, req UpdateDeliveryStatusRequest) (*Delivery, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*DeliveryStats, error)
}

// Repository is the persistence port for runs.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, d *Delivery) error
	Update(ctx context.Context, db *gorm.DB, d *Delivery) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Delivery, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Delivery, error)
	List(ctx context.Context, db *gorm.DB, f ListDeliveryFilter) ([]Delivery, int64, error)
	CountByStatus(ctx context.Context, db *gorm.DB) (map[Status]int64, error)
	CountByKind(ctx context.Context, db *gorm.DB) (map[Kind]int64, error)
}
