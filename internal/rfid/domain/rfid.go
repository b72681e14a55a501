package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/pkg/db/pagination"
	"gorm.io/gorm"
)

var (
	// ErrTagNotFound is returned when no tag matches.
	ErrTagNotFound = errors.New("rfid_tag_not_found")
	// ErrInvalidStatus is returned for unknown status values.
	ErrInvalidStatus = errors.New("invalid_rfid_status")
	// ErrInvalidReference is returned for malformed order IDs.
	ErrInvalidReference = errors.New("invalid_rfid_reference")
)

// CreateTagRequest registers a new tag, optionally pinned to an order.
type CreateTagRequest struct {
	OrderID         string `json:"order_id"`
	ItemDescription string `json:"item_description"`
	Location        string `json:"location"`
}

// UpdateTagRequest changes tag fields; only set fields are applied.
type UpdateTagRequest struct {
	OrderID         *string `json:"order_id"`
	ItemDescription *string `json:"item_description"`
	Status          *string `json:"status"`
	Location        *string `json:"location"`
}

// VerifyTagRequest records a scan of the tag at a location.
type VerifyTagRequest struct {
	Location string `json:"location"`
}

// ListTagFilter narrows tag listings.
type ListTagFilter struct {
	pagination.Pagination
	Status  string `form:"status"`
	OrderID string `form:"order_id"`
}

// TagStats summarizes tags for dashboards.
type TagStats struct {
	Total    int64            `json:"total"`
	ByStatus map[Status]int64 `json:"by_status"`
}

// Service exposes tag tracking operations.
type Service interface {
	Create(ctx context.Context, req CreateTagRequest) (*Tag, error)
	GetByID(ctx context.Context, id string) (*Tag, error)
	List(ctx context.Context, f ListTagFilter) ([]Tag, *pagination.PageInfo, error)
	Update(ctx context.Context, id string, req UpdateTagRequest) (*Tag, error)
	Verify(ctx context.Context, id string, req VerifyTagRequest) (*Tag, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*TagStats, error)
}

// Repository is the persistence port for tags.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, t *Tag) error
	Update(ctx context.Context, db *gorm.DB, t *Tag) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tag, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Tag, error)
	List(ctx context.Context, db *gorm.DB, f ListTagFilter) ([]Tag, int64, error)
	CountByStatus(ctx context.Context, db *gorm.DB) (map[Status]int64, error)
}
