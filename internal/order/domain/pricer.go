package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Pricer resolves the current catalog price of a service. Orders capture
// the resolved price on the line item; later catalog changes do not touch
// existing lines.
type Pricer interface {
	UnitPrice(ctx context.Context, serviceID snowflake.ID) (decimal.Decimal, error)
}
