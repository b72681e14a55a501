// Package domain contains persistence models and contracts for orders.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/internal/order/lifecycle"
	"github.com/shopspring/decimal"
)

// Order is one laundry order moving through the fulfillment pipeline.
//
// Amount, Items and Progress are derived: amount and items from the line
// items, progress and status from the current stage. They are recomputed on
// every write and never accepted from clients.
type Order struct {
	ID                  snowflake.ID      `gorm:"primaryKey" json:"id"`
	Code                string            `gorm:"type:text;not null;uniqueIndex" json:"order_id"`
	CustomerID          snowflake.ID      `gorm:"not null;index" json:"customer_id"`
	AssignedToID        *snowflake.ID     `gorm:"index" json:"assigned_to_id,omitempty"`
	Status              lifecycle.Status  `gorm:"type:text;not null;default:'pending'" json:"status"`
	CurrentStage        lifecycle.Stage   `gorm:"type:text;not null;default:'order_placed'" json:"current_stage"`
	Amount              decimal.Decimal   `gorm:"type:numeric(12,2);not null;default:0" json:"amount"`
	Items               decimal.Decimal   `gorm:"type:numeric(10,2);not null;default:0" json:"items"`
	Progress            int               `gorm:"not null;default:0" json:"progress"`
	PickupDate          *time.Time        `gorm:"" json:"pickup_date,omitempty"`
	EstimatedDelivery   *time.Time        `gorm:"" json:"estimated_delivery,omitempty"`
	DeliveryDate        *time.Time        `gorm:"" json:"delivery_date,omitempty"`
	SpecialInstructions string            `gorm:"type:text" json:"special_instructions,omitempty"`
	Lines               []LineItem        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"`
	Timeline            []TimelineEntry   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"timeline,omitempty"`
	CreatedAt           time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

// LineItem links an order to a catalog service with quantity and captured
// pricing. UnitPrice is frozen at order time and does not follow later
// catalog changes; TotalPrice is always recomputed from quantity × unit
// price.
type LineItem struct {
	ID                  snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrderID             snowflake.ID    `gorm:"not null;index" json:"order_id"`
	ServiceID           snowflake.ID    `gorm:"not null;index" json:"service_id"`
	Quantity            decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"quantity"`
	UnitPrice           decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	TotalPrice          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	SpecialInstructions string          `gorm:"type:text" json:"special_instructions,omitempty"`
	CreatedAt           time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (LineItem) TableName() string { return "order_line_items" }

// TimelineEntry is one audit-trail row of the order's stage progression.
// At most one entry per order carries IsCurrent = true.
type TimelineEntry struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderID   snowflake.ID `gorm:"not null;index" json:"order_id"`
	Stage     string       `gorm:"type:text;not null" json:"stage"`
	Completed bool         `gorm:"not null;default:false" json:"completed"`
	IsCurrent bool         `gorm:"not null;default:false" json:"is_current"`
	Timestamp *time.Time   `gorm:"" json:"timestamp,omitempty"`
	Notes     string       `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (TimelineEntry) TableName() string { return "order_timeline_entries" }
