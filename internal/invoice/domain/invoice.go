package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrInvoiceNotFound is returned when no invoice matches.
	ErrInvoiceNotFound = errors.New("invoice_not_found")
	// ErrAlreadyInvoiced is returned when the order already has an invoice.
	ErrAlreadyInvoiced = errors.New("order_already_invoiced")
	// ErrAlreadyPaid is returned when marking a paid invoice paid again.
	ErrAlreadyPaid = errors.New("invoice_already_paid")
	// ErrInvalidStatus is returned for unknown status values.
	ErrInvalidStatus = errors.New("invalid_invoice_status")
)

// GenerateInvoiceRequest bills an order.
type GenerateInvoiceRequest struct {
	OrderID string `json:"order_id" binding:"required"`
	Notes   string `json:"notes"`
}

// MarkPaidRequest settles an invoice.
type MarkPaidRequest struct {
	PaidAt *time.Time `json:"paid_at"`
	Notes  string     `json:"notes"`
}

// ListInvoiceFilter narrows invoice listings.
type ListInvoiceFilter struct {
	pagination.Pagination
	Status     string `form:"status"`
	CustomerID string `form:"customer_id"`
	OrderID    string `form:"order_id"`
}

// InvoiceStats summarizes billing for dashboards.
type InvoiceStats struct {
	Total      int64            `json:"total"`
	ByStatus   map[Status]int64 `json:"by_status"`
	AmountOwed decimal.Decimal  `json:"amount_owed"`
	AmountPaid decimal.Decimal  `json:"amount_paid"`
}

// Service exposes billing operations.
type Service interface {
	Generate(ctx context.Context, req GenerateInvoiceRequest) (*Invoice, error)
	GetByID(ctx context.Context, id string) (*Invoice, error)
	GetByOrder(ctx context.Context, orderID string) (*Invoice, error)
	List(ctx context.Context, f ListInvoiceFilter) ([]Invoice, *pagination.PageInfo, error)
	MarkPaid(ctx context.Context, id string, req MarkPaidRequest) (*Invoice, error)
	Void(ctx context.Context, id string) (*Invoice, error)
	RenderPDF(ctx context.Context, id string) ([]byte, error)
	Stats(ctx context.Context) (*InvoiceStats, error)
	SweepOverdue(ctx context.Context) (int64, error)
}

// Repository is the persistence port for invoices.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, inv *Invoice) error
	Update(ctx context.Context, db *gorm.DB, inv *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Invoice, error)
	FindByOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, f ListInvoiceFilter) ([]Invoice, int64, error)
	CountByStatus(ctx context.Context, db *gorm.DB) (map[Status]int64, error)
	SumAmountByStatus(ctx context.Context, db *gorm.DB, statuses ...Status) (decimal.Decimal, error)
	MarkOverdue(ctx context.Context, db *gorm.DB, before time.Time) (int64, error)
}
