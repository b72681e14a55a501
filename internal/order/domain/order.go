package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/internal/order/lifecycle"
	"github.com/cityville/laundromat/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrOrderNotFound is returned when no order matches the identifier.
	ErrOrderNotFound = errors.New("order_not_found")
	// ErrLineNotFound is returned when no line item matches the identifier.
	ErrLineNotFound = errors.New("order_item_not_found")
	// ErrCustomerRequired is returned when an order is created without a customer.
	ErrCustomerRequired = errors.New("customer_required")
	// ErrInvalidQuantity is returned for zero or negative quantities.
	ErrInvalidQuantity = errors.New("invalid_quantity")
	// ErrInvalidUnitPrice is returned for negative unit prices.
	ErrInvalidUnitPrice = errors.New("invalid_unit_price")
)

// CreateOrderLine is one requested line item on order creation.
type CreateOrderLine struct {
	ServiceID           string          `json:"service_id" binding:"required"`
	Quantity            decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	SpecialInstructions string          `json:"special_instructions"`
}

// CreateOrderRequest carries everything needed to open a new order. Lines
// may be empty; items can be attached afterwards through the line item
// endpoints.
type CreateOrderRequest struct {
	CustomerID          string            `json:"customer_id" binding:"required"`
	AssignedToID        string            `json:"assigned_to_id"`
	PickupDate          *time.Time        `json:"pickup_date"`
	EstimatedDelivery   *time.Time        `json:"estimated_delivery"`
	SpecialInstructions string            `json:"special_instructions"`
	Lines               []CreateOrderLine `json:"order_items"`
}

// UpdateOrderRequest carries mutable order fields. Derived fields (status,
// progress, amount, items) are not accepted here.
type UpdateOrderRequest struct {
	AssignedToID        *string    `json:"assigned_to_id"`
	PickupDate          *time.Time `json:"pickup_date"`
	EstimatedDelivery   *time.Time `json:"estimated_delivery"`
	DeliveryDate        *time.Time `json:"delivery_date"`
	SpecialInstructions *string    `json:"special_instructions"`
}

// UpdateStageRequest asks to move an order to the named pipeline stage.
type UpdateStageRequest struct {
	Stage string `json:"stage" binding:"required"`
	Notes string `json:"notes"`
}

// StageResult reports the derived state after a stage transition.
type StageResult struct {
	Order    *Order           `json:"order"`
	Status   lifecycle.Status `json:"status"`
	Progress int              `json:"progress"`
}

// AddLineRequest attaches a new line item to an existing order.
type AddLineRequest struct {
	OrderID             string          `json:"order_id" binding:"required"`
	ServiceID           string          `json:"service_id" binding:"required"`
	Quantity            decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	SpecialInstructions string          `json:"special_instructions"`
}

// UpdateLineRequest changes an existing line item. Only set fields are
// applied; the line and order totals are recomputed afterwards.
type UpdateLineRequest struct {
	Quantity            *decimal.Decimal `json:"quantity"`
	UnitPrice           *decimal.Decimal `json:"unit_price"`
	SpecialInstructions *string          `json:"special_instructions"`
}

// ListOrderFilter narrows order listings.
type ListOrderFilter struct {
	pagination.Pagination
	Status     string `form:"status"`
	Stage      string `form:"current_stage"`
	CustomerID string `form:"customer_id"`
	AssignedTo string `form:"assigned_to_id"`
	Search     string `form:"search"`
}

// OrderStats summarizes the order pipeline for dashboards.
type OrderStats struct {
	Total      int64                      `json:"total"`
	ByStatus   map[lifecycle.Status]int64 `json:"by_status"`
	ByStage    map[lifecycle.Stage]int64  `json:"by_stage"`
	AmountOpen decimal.Decimal            `json:"amount_open"`
}

// AccountStats summarizes one customer's order history for their own
// dashboard.
type AccountStats struct {
	Total      int64                      `json:"total"`
	ByStatus   map[lifecycle.Status]int64 `json:"by_status"`
	TotalSpent decimal.Decimal            `json:"total_spent"`
	Recent     []Order                    `json:"recent"`
}

// Totals is the recomputed amount/items pair of one order.
type Totals struct {
	Amount decimal.Decimal `json:"amount"`
	Items  decimal.Decimal `json:"items"`
}

// Service exposes order lifecycle operations.
type Service interface {
	Create(ctx context.Context, req CreateOrderRequest) (*Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, f ListOrderFilter) ([]Order, *pagination.PageInfo, error)
	Update(ctx context.Context, id string, req UpdateOrderRequest) (*Order, error)
	Delete(ctx context.Context, id string) error
	UpdateStage(ctx context.Context, id string, req UpdateStageRequest) (*StageResult, error)
	Recalculate(ctx context.Context, id string) (*Totals, error)

	AddLine(ctx context.Context, req AddLineRequest) (*LineItem, error)
	GetLine(ctx context.Context, id string) (*LineItem, error)
	UpdateLine(ctx context.Context, id string, req UpdateLineRequest) (*LineItem, error)
	DeleteLine(ctx context.Context, id string) error

	Timeline(ctx context.Context, orderID string) ([]TimelineEntry, error)
	Stats(ctx context.Context) (*OrderStats, error)
	AccountStats(ctx context.Context, customerID snowflake.ID) (*AccountStats, error)
}

// Repository is the persistence port for orders and their children.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, o *Order) error
	Update(ctx context.Context, db *gorm.DB, o *Order) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Order, error)
	List(ctx context.Context, db *gorm.DB, f ListOrderFilter) ([]Order, int64, error)

	InsertLine(ctx context.Context, db *gorm.DB, l *LineItem) error
	UpdateLine(ctx context.Context, db *gorm.DB, l *LineItem) error
	DeleteLine(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindLineByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*LineItem, error)
	ListLines(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]LineItem, error)

	InsertTimeline(ctx context.Context, db *gorm.DB, e *TimelineEntry) error
	CloseCurrentTimeline(ctx context.Context, db *gorm.DB, orderID snowflake.ID, at time.Time) error
	ListTimeline(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]TimelineEntry, error)

	CountByStatus(ctx context.Context, db *gorm.DB) (map[lifecycle.Status]int64, error)
	CountByStage(ctx context.Context, db *gorm.DB) (map[lifecycle.Stage]int64, error)
	SumAmountByStatus(ctx context.Context, db *gorm.DB, statuses ...lifecycle.Status) (decimal.Decimal, error)

	CountByStatusForCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (map[lifecycle.Status]int64, error)
	SumAmountForCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID, statuses ...lifecycle.Status) (decimal.Decimal, error)
	ListRecent(ctx context.Context, db *gorm.DB, customerID snowflake.ID, limit int) ([]Order, error)
}
