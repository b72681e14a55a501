package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/cityville/laundromat/internal/catalog/domain"
	catalogrepo "github.com/cityville/laundromat/internal/catalog/repository"
	catalogservice "github.com/cityville/laundromat/internal/catalog/service"
	"github.com/cityville/laundromat/internal/migration"
	"github.com/cityville/laundromat/internal/order/domain"
	"github.com/cityville/laundromat/internal/order/lifecycle"
	"github.com/cityville/laundromat/internal/order/repository"
	"github.com/cityville/laundromat/internal/sequence"
	userdomain "github.com/cityville/laundromat/internal/user/domain"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db      *gorm.DB
	node    *snowflake.Node
	orders  domain.Service
	catalog catalogdomain.CatalogService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, migration.Run(conn))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	catalogSvc := catalogservice.New(catalogservice.Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  catalogrepo.Provide(),
	})

	orders := New(Params{
		DB:     conn,
		Log:    zap.NewNop(),
		GenID:  node,
		Codes:  sequence.NewAllocator(conn),
		Repo:   repository.Provide(),
		Pricer: catalogSvc,
	})

	return &testEnv{db: conn, node: node, orders: orders, catalog: catalogSvc}
}

func (e *testEnv) seedCustomer(t *testing.T) *userdomain.User {
	t.Helper()
	user := &userdomain.User{
		ID:           e.node.Generate(),
		Username:     fmt.Sprintf("cust-%d", e.node.Generate()),
		Email:        fmt.Sprintf("cust-%d@example.test", e.node.Generate()),
		PasswordHash: "x",
		Role:         userdomain.RoleCustomer,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) seedService(t *testing.T, name string, price string) *catalogdomain.Service {
	t.Helper()
	svc, err := e.catalog.Create(context.Background(), catalogdomain.CreateServiceRequest{
		Name:     name,
		Category: "wash",
		Price:    decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return svc
}

func TestCreateOrderAllocatesCodeAndTotals(t *testing.T) {
	env := newTestEnv(t)
	customer := env.seedCustomer(t)
	wash := env.seedService(t, "Wash & Fold", "5.00")
	iron := env.seedService(t, "Ironing", "2.50")

	order, err := env.orders.Create(context.Background(), domain.CreateOrderRequest{
		CustomerID: customer.ID.String(),
		Lines: []domain.CreateOrderLine{
			{ServiceID: wash.ID.String(), Quantity: decimal.NewFromInt(3)},
			{ServiceID: iron.ID.String(), Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("3.00")},
		},
	})
	require.NoError(t, err)

	year := time.Now().UTC().Year()
	assert.Equal(t, fmt.Sprintf("ORD-%d-001", year), order.Code)
	assert.Equal(t, lifecycle.StatusPending, order.Status)
	assert.Equal(t, lifecycle.StageOrderPlaced, order.CurrentStage)
	assert.Equal(t, 10, order.Progress)

	// 3 * 5.00 from the catalog plus 2 * 3.00 from the explicit price.
	assert.True(t, order.Amount.Equal(decimal.RequireFromString("21.00")), "amount %s", order.Amount)
	assert.True(t, order.Items.Equal(decimal.NewFromInt(5)), "items %s", order.Items)
	assert.Len(t, order.Lines, 2)
	require.Len(t, order.Timeline, 2)
	assert.True(t, order.Timeline[0].Completed)
	assert.True(t, order.Timeline[1].IsCurrent)
}

func TestCreateOrderCodesAreSequential(t *testing.T) {
	env := newTestEnv(t)
	customer := env.seedCustomer(t)

	first, err := env.orders.Create(context.Background(), domain.CreateOrderRequest{CustomerID: customer.ID.String()})
	require.NoError(t, err)
	second, err := env.orders.Create(context.Background(), domain.CreateOrderRequest{CustomerID: customer.ID.String()})
	require.NoError(t, err)

	year := time.Now().UTC().Year()
	assert.Equal(t, fmt.Sprintf("ORD-%d-001", year), first.Code)
	assert.Equal(t, fmt.Sprintf("ORD-%d-002", year), second.Code)
}

func TestCreateOrderRejectsBadLines(t *testing.T) {
	env := newTestEnv(t)
	customer := env.seedCustomer(t)
	wash := env.seedService(t, "Wash & Fold", "5.00")

	_, err := env.orders.Create(context.Background(), domain.CreateOrderRequest{
		CustomerID: customer.ID.String(),
		Lines: []domain.CreateOrderLine{
			{ServiceID: wash.ID.String(), Quantity: decimal.Zero},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = env.orders.Create(context.Background(), domain.CreateOrderRequest{
		CustomerID: customer.ID.String(),
		Lines: []domain.CreateOrderLine{
			{ServiceID: wash.ID.String(), Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(-1)},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidUnitPrice)

	_, err = env.orders.Create(context.Background(), domain.CreateOrderRequest{})
	assert.ErrorIs(t, err, domain.ErrCustomerRequired)
}

func TestCreateOrderRejectsInactiveService(t *testing.T) {
	env := newTestEnv(t)
	customer := env.seedCustomer(t)
	wash := env.seedService(t, "Wash & Fold", "5.00")

	inactive := false
	_, err := env.catalog.Update(context.Background(), wash.ID.String(), catalogdomain.UpdateServiceRequest{Active: &inactive})
	require.NoError(t, err)

	_, err = env.orders.Create(context.Background(), domain.CreateOrderRequest{
		CustomerID: customer.ID.String(),
		Lines: []domain.CreateOrderLine{
			{ServiceID: wash.ID.String(), Quantity: decimal.NewFromInt(1)},
		},
	})
	assert.ErrorIs(t, err, catalogdomain.ErrServiceInactive)
}

func TestGetByIDAcceptsPublicCode(t *testing.T) {
	env := newTestEnv(t)
	customer := env.seedCustomer(t)

	created, err := env.orders.Create(context.Background(), domain.CreateOrderRequest{CustomerID: customer.ID.String()})
	require.NoError(t, err)

	byCode, err := env.orders.GetByID(context.Background(), created.Code)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byCode.ID)

	byID, err := env.orders.GetByID(context.Background(), created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.Code, byID.Code)

	_, err = env.orders.GetByID(context.Background(), "ORD-1999-999")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestUpdateStageDerivesStatusAndTimeline(t *testing.T) {
	env := newTestEnv(t)
	customer := env.seedCustomer(t)

	created, err := env.orders.Create(context.Background(), domain.CreateOrderRequest{CustomerID: customer.ID.String()})
	require.NoError(t, err)

	result, err := env.orders.UpdateStage(context.Background(), created.Code, domain.UpdateStageRequest{
		Stage: string(lifecycle.StageWashing),
		Notes: "load 4",
	})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusProcessing, result.Status)
	assert.Equal(t, 45, result.Progress)
	assert.Equal(t, lifecycle.StageWashing, result.Order.CurrentStage)

	entries, err := env.orders.Timeline(context.Background(), created.Code)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	current := entries[len(entries)-1]
	assert.Equal(t, string(lifecycle.StageWashing), current.Stage)
	assert.True(t, current.IsCurrent)
	assert.Equal(t, "load 4", current.Notes)

	// The previously current entry is closed out.
	closedCount := 0
	for _, e := range entries[:len(entries)-1] {
		assert.False(t, e.IsCurrent)
		if e.Completed {
			closedCount++
		}
	}
	assert.Equal(t, 2, closedCount)
}

func TestUpdateStageRepeatAppendsTimeline(t *testing.T) {
	env := newTestEnv(t)
	customer := env.seedCustomer(t)

	created, err := env.orders.Create(context.Background(), domain.CreateOrderRequest{CustomerID: customer.ID.String()})
	require.NoError(t, err)

	_, err = env.orders.UpdateStage(context.Background(), created.Code, domain.UpdateStageRequest{
		Stage: string(lifecycle.StageWashing),
		Notes: "load 4",
	})
	require.NoError(t, err)

	// Repeating the current stage keeps the derived values and records
	// another timeline entry.
	result, err := env.orders.UpdateStage(context.Background(), created.Code, domain.UpdateStageRequest{
		Stage: string(lifecycle.StageWashing),
		Notes: "rewash, detergent spill",
	})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusProcessing, result.Status)
	assert.Equal(t, 45, result.Progress)
	assert.Equal(t, lifecycle.StageWashing, result.Order.CurrentStage)

	entries, err := env.orders.Timeline(context.Background(), created.Code)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	currentCount := 0
	for _, e := range entries {
		if e.IsCurrent {
			currentCount++
		}
	}
	assert.Equal(t, 1, currentCount)

	latest := entries[len(entries)-1]
	assert.Equal(t, string(lifecycle.StageWashing), latest.Stage)
	assert.True(t, latest.IsCurrent)
	assert.Equal(t, "rewash, detergent spill", latest.Notes)
}

func TestUpdateStageDeliveredStampsDeliveryDate(t *testing.T) {
	env := newTestEnv(t)
	customer := env.seedCustomer(t)

	created, err := env.orders.Create(context.Background(), domain.CreateOrderRequest{CustomerID: customer.ID.String()})
	require.NoError(t, err)
	require.Nil(t, created.DeliveryDate)

	result, err := env.orders.UpdateStage(context.Background(), created.Code, domain.UpdateStageRequest{
		Stage: string(lifecycle.StageDelivered),
	})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusCompleted, result.Status)
	assert.Equal(t, 100, result.Progress)
	require.NotNil(t, result.Order.DeliveryDate)
}

func TestUpdateStageRejectsUnknownStage(t *testing.T) {
	env := newTestEnv(t)
	customer := env.seedCustomer(t)

	created, err := env.orders.Create(context.Background(), domain.CreateOrderRequest{CustomerID: customer.ID.String()})
	require.NoError(t, err)

	_, err = env.orders.UpdateStage(context.Background(), created.Code, domain.UpdateStageRequest{Stage: "ironing"})
	assert.ErrorIs(t, err, lifecycle.ErrInvalidStage)
}

func TestAddAndUpdateLineRecalculatesTotals(t *testing.T) {
	env := newTestEnv(t)
	customer := env.seedCustomer(t)
	wash := env.seedService(t, "Wash & Fold", "5.00")

	created, err := env.orders.Create(context.Background(), domain.CreateOrderRequest{CustomerID: customer.ID.String()})
	require.NoError(t, err)
	assert.True(t, created.Amount.IsZero())

	line, err := env.orders.AddLine(context.Background(), domain.AddLineRequest{
		OrderID:   created.Code,
		ServiceID: wash.ID.String(),
		Quantity:  decimal.NewFromInt(4),
	})
	require.NoError(t, err)
	assert.True(t, line.TotalPrice.Equal(decimal.RequireFromString("20.00")))

	after, err := env.orders.GetByID(context.Background(), created.Code)
	require.NoError(t, err)
	assert.True(t, after.Amount.Equal(decimal.RequireFromString("20.00")), "amount %s", after.Amount)
	assert.True(t, after.Items.Equal(decimal.NewFromInt(4)))

	qty := decimal.NewFromInt(2)
	_, err = env.orders.UpdateLine(context.Background(), line.ID.String(), domain.UpdateLineRequest{Quantity: &qty})
	require.NoError(t, err)

	after, err = env.orders.GetByID(context.Background(), created.Code)
	require.NoError(t, err)
	assert.True(t, after.Amount.Equal(decimal.RequireFromString("10.00")), "amount %s", after.Amount)

	require.NoError(t, env.orders.DeleteLine(context.Background(), line.ID.String()))
	after, err = env.orders.GetByID(context.Background(), created.Code)
	require.NoError(t, err)
	assert.True(t, after.Amount.IsZero())
	assert.True(t, after.Items.IsZero())
}

func TestListFiltersAndStats(t *testing.T) {
	env := newTestEnv(t)
	customer := env.seedCustomer(t)
	other := env.seedCustomer(t)

	for range 3 {
		_, err := env.orders.Create(context.Background(), domain.CreateOrderRequest{CustomerID: customer.ID.String()})
		require.NoError(t, err)
	}
	extra, err := env.orders.Create(context.Background(), domain.CreateOrderRequest{CustomerID: other.ID.String()})
	require.NoError(t, err)

	_, err = env.orders.UpdateStage(context.Background(), extra.Code, domain.UpdateStageRequest{Stage: string(lifecycle.StageDelivered)})
	require.NoError(t, err)

	mine, page, err := env.orders.List(context.Background(), domain.ListOrderFilter{CustomerID: customer.ID.String()})
	require.NoError(t, err)
	assert.Len(t, mine, 3)
	assert.EqualValues(t, 3, page.Total)

	completed, _, err := env.orders.List(context.Background(), domain.ListOrderFilter{Status: string(lifecycle.StatusCompleted)})
	require.NoError(t, err)
	assert.Len(t, completed, 1)

	stats, err := env.orders.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.Total)
	assert.EqualValues(t, 3, stats.ByStatus[lifecycle.StatusPending])
	assert.EqualValues(t, 1, stats.ByStatus[lifecycle.StatusCompleted])
}

func TestDeleteOrderRemovesChildren(t *testing.T) {
	env := newTestEnv(t)
	customer := env.seedCustomer(t)
	wash := env.seedService(t, "Wash & Fold", "5.00")

	created, err := env.orders.Create(context.Background(), domain.CreateOrderRequest{
		CustomerID: customer.ID.String(),
		Lines: []domain.CreateOrderLine{
			{ServiceID: wash.ID.String(), Quantity: decimal.NewFromInt(1)},
		},
	})
	require.NoError(t, err)

	require.NoError(t, env.orders.Delete(context.Background(), created.Code))

	_, err = env.orders.GetByID(context.Background(), created.Code)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	var lines int64
	require.NoError(t, env.db.Model(&domain.LineItem{}).Where("order_id = ?", created.ID).Count(&lines).Error)
	assert.Zero(t, lines)

	var entries int64
	require.NoError(t, env.db.Model(&domain.TimelineEntry{}).Where("order_id = ?", created.ID).Count(&entries).Error)
	assert.Zero(t, entries)
}

func TestAccountStatsScopesToCustomer(t *testing.T) {
	env := newTestEnv(t)
	customer := env.seedCustomer(t)
	other := env.seedCustomer(t)
	wash := env.seedService(t, "Wash & Fold", "5.00")

	for range 3 {
		_, err := env.orders.Create(context.Background(), domain.CreateOrderRequest{
			CustomerID: customer.ID.String(),
			Lines: []domain.CreateOrderLine{
				{ServiceID: wash.ID.String(), Quantity: decimal.NewFromInt(2)},
			},
		})
		require.NoError(t, err)
	}
	done, err := env.orders.Create(context.Background(), domain.CreateOrderRequest{
		CustomerID: customer.ID.String(),
		Lines: []domain.CreateOrderLine{
			{ServiceID: wash.ID.String(), Quantity: decimal.NewFromInt(1)},
		},
	})
	require.NoError(t, err)
	_, err = env.orders.UpdateStage(context.Background(), done.Code, domain.UpdateStageRequest{Stage: string(lifecycle.StageDelivered)})
	require.NoError(t, err)

	_, err = env.orders.Create(context.Background(), domain.CreateOrderRequest{
		CustomerID: other.ID.String(),
		Lines: []domain.CreateOrderLine{
			{ServiceID: wash.ID.String(), Quantity: decimal.NewFromInt(4)},
		},
	})
	require.NoError(t, err)

	stats, err := env.orders.AccountStats(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.Total)
	assert.EqualValues(t, 3, stats.ByStatus[lifecycle.StatusPending])
	assert.EqualValues(t, 1, stats.ByStatus[lifecycle.StatusCompleted])
	assert.True(t, stats.TotalSpent.Equal(decimal.RequireFromString("5.00")), "spent %s", stats.TotalSpent)
	require.Len(t, stats.Recent, 4)
	assert.Equal(t, customer.ID, stats.Recent[0].CustomerID)
}
