package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/internal/auth/password"
	catalogdomain "github.com/cityville/laundromat/internal/catalog/domain"
	catalogrepo "github.com/cityville/laundromat/internal/catalog/repository"
	catalogservice "github.com/cityville/laundromat/internal/catalog/service"
	"github.com/cityville/laundromat/internal/config"
	"github.com/cityville/laundromat/internal/invoice/domain"
	"github.com/cityville/laundromat/internal/invoice/repository"
	"github.com/cityville/laundromat/internal/migration"
	orderdomain "github.com/cityville/laundromat/internal/order/domain"
	orderrepo "github.com/cityville/laundromat/internal/order/repository"
	orderservice "github.com/cityville/laundromat/internal/order/service"
	"github.com/cityville/laundromat/internal/providers/pdf"
	"github.com/cityville/laundromat/internal/sequence"
	settingsrepo "github.com/cityville/laundromat/internal/settings/repository"
	settingsservice "github.com/cityville/laundromat/internal/settings/service"
	userdomain "github.com/cityville/laundromat/internal/user/domain"
	userrepo "github.com/cityville/laundromat/internal/user/repository"
	userservice "github.com/cityville/laundromat/internal/user/service"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type invoiceEnv struct {
	db       *gorm.DB
	invoices domain.Service
	orders   orderdomain.Service
	users    userdomain.Service
	catalog  catalogdomain.CatalogService
}

func newInvoiceEnv(t *testing.T) *invoiceEnv {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, migration.Run(conn))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := config.Config{
		AppName:        "laundromat",
		Currency:       "UGX",
		InvoiceDueDays: 14,
	}
	log := zap.NewNop()

	users := userservice.New(userservice.Params{
		DB:     conn,
		Log:    log,
		GenID:  node,
		Repo:   userrepo.Provide(),
		Hasher: password.NewHasher(),
	})
	catalogSvc := catalogservice.New(catalogservice.Params{
		DB:    conn,
		Log:   log,
		GenID: node,
		Repo:  catalogrepo.Provide(),
	})
	orders := orderservice.New(orderservice.Params{
		DB:     conn,
		Log:    log,
		GenID:  node,
		Codes:  sequence.NewAllocator(conn),
		Repo:   orderrepo.Provide(),
		Pricer: catalogSvc,
	})
	settings := settingsservice.New(settingsservice.Params{
		Config: cfg,
		DB:     conn,
		Log:    log,
		GenID:  node,
		Repo:   settingsrepo.Provide(),
	})

	invoices := New(Params{
		Config:   cfg,
		DB:       conn,
		Log:      log,
		GenID:    node,
		Codes:    sequence.NewAllocator(conn),
		Repo:     repository.Provide(),
		Orders:   orders,
		Users:    users,
		Catalog:  catalogSvc,
		Settings: settings,
		Renderer: pdf.New(),
	})

	return &invoiceEnv{db: conn, invoices: invoices, orders: orders, users: users, catalog: catalogSvc}
}

func (e *invoiceEnv) seedOrder(t *testing.T) *orderdomain.Order {
	t.Helper()

	customer, err := e.users.Create(context.Background(), userdomain.CreateUserRequest{
		Username: fmt.Sprintf("cust-%d", time.Now().UnixNano()),
		Email:    fmt.Sprintf("cust-%d@example.test", time.Now().UnixNano()),
		Password: "laundry-day1",
		Role:     string(userdomain.RoleCustomer),
	})
	require.NoError(t, err)

	wash, err := e.catalog.Create(context.Background(), catalogdomain.CreateServiceRequest{
		Name:     fmt.Sprintf("Wash & Fold %d", time.Now().UnixNano()),
		Category: "wash",
		Price:    decimal.RequireFromString("5.00"),
	})
	require.NoError(t, err)

	order, err := e.orders.Create(context.Background(), orderdomain.CreateOrderRequest{
		CustomerID: customer.ID.String(),
		Lines: []orderdomain.CreateOrderLine{
			{ServiceID: wash.ID.String(), Quantity: decimal.NewFromInt(3)},
		},
	})
	require.NoError(t, err)
	return order
}

func TestGenerateMirrorsOrderAmount(t *testing.T) {
	env := newInvoiceEnv(t)
	order := env.seedOrder(t)

	inv, err := env.invoices.Generate(context.Background(), domain.GenerateInvoiceRequest{OrderID: order.Code})
	require.NoError(t, err)

	year := time.Now().UTC().Year()
	assert.Equal(t, fmt.Sprintf("INV-%d-001", year), inv.Code)
	assert.Equal(t, domain.StatusPending, inv.Status)
	assert.Equal(t, order.ID, inv.OrderID)
	assert.Equal(t, order.CustomerID, inv.CustomerID)
	assert.True(t, inv.Amount.Equal(order.Amount), "amount %s", inv.Amount)
	assert.Equal(t, "UGX", inv.Currency)
	assert.Equal(t, inv.IssuedAt.AddDate(0, 0, 14), inv.DueDate)
}

func TestGenerateTwiceFails(t *testing.T) {
	env := newInvoiceEnv(t)
	order := env.seedOrder(t)

	_, err := env.invoices.Generate(context.Background(), domain.GenerateInvoiceRequest{OrderID: order.Code})
	require.NoError(t, err)

	_, err = env.invoices.Generate(context.Background(), domain.GenerateInvoiceRequest{OrderID: order.Code})
	assert.ErrorIs(t, err, domain.ErrAlreadyInvoiced)
}

func TestGenerateUnknownOrderFails(t *testing.T) {
	env := newInvoiceEnv(t)

	_, err := env.invoices.Generate(context.Background(), domain.GenerateInvoiceRequest{OrderID: "ORD-1999-001"})
	assert.ErrorIs(t, err, orderdomain.ErrOrderNotFound)
}

func TestMarkPaidIsTerminal(t *testing.T) {
	env := newInvoiceEnv(t)
	order := env.seedOrder(t)

	inv, err := env.invoices.Generate(context.Background(), domain.GenerateInvoiceRequest{OrderID: order.Code})
	require.NoError(t, err)

	paid, err := env.invoices.MarkPaid(context.Background(), inv.Code, domain.MarkPaidRequest{})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	_, err = env.invoices.MarkPaid(context.Background(), inv.Code, domain.MarkPaidRequest{})
	assert.ErrorIs(t, err, domain.ErrAlreadyPaid)

	_, err = env.invoices.Void(context.Background(), inv.Code)
	assert.ErrorIs(t, err, domain.ErrAlreadyPaid)
}

func TestVoidPendingInvoice(t *testing.T) {
	env := newInvoiceEnv(t)
	order := env.seedOrder(t)

	inv, err := env.invoices.Generate(context.Background(), domain.GenerateInvoiceRequest{OrderID: order.Code})
	require.NoError(t, err)

	voided, err := env.invoices.Void(context.Background(), inv.Code)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusVoid, voided.Status)
}

func TestSweepOverdueFlipsPastDue(t *testing.T) {
	env := newInvoiceEnv(t)
	order := env.seedOrder(t)

	inv, err := env.invoices.Generate(context.Background(), domain.GenerateInvoiceRequest{OrderID: order.Code})
	require.NoError(t, err)

	past := time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, env.db.Model(&domain.Invoice{}).
		Where("id = ?", inv.ID).
		Update("due_date", past).Error)

	flipped, err := env.invoices.SweepOverdue(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, flipped)

	after, err := env.invoices.GetByID(context.Background(), inv.Code)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOverdue, after.Status)

	// Already-flipped invoices are not counted again.
	flipped, err = env.invoices.SweepOverdue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, flipped)
}

func TestRenderPDFProducesDocument(t *testing.T) {
	env := newInvoiceEnv(t)
	order := env.seedOrder(t)

	inv, err := env.invoices.Generate(context.Background(), domain.GenerateInvoiceRequest{OrderID: order.Code})
	require.NoError(t, err)

	raw, err := env.invoices.RenderPDF(context.Background(), inv.Code)
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	assert.Equal(t, "%PDF", string(raw[:4]))
}

func TestStatsSplitsOwedAndPaid(t *testing.T) {
	env := newInvoiceEnv(t)

	first := env.seedOrder(t)
	second := env.seedOrder(t)

	a, err := env.invoices.Generate(context.Background(), domain.GenerateInvoiceRequest{OrderID: first.Code})
	require.NoError(t, err)
	_, err = env.invoices.Generate(context.Background(), domain.GenerateInvoiceRequest{OrderID: second.Code})
	require.NoError(t, err)

	_, err = env.invoices.MarkPaid(context.Background(), a.Code, domain.MarkPaidRequest{})
	require.NoError(t, err)

	stats, err := env.invoices.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Total)
	assert.EqualValues(t, 1, stats.ByStatus[domain.StatusPaid])
	assert.EqualValues(t, 1, stats.ByStatus[domain.StatusPending])
	assert.True(t, stats.AmountPaid.Equal(decimal.RequireFromString("15.00")), "paid %s", stats.AmountPaid)
	assert.True(t, stats.AmountOwed.Equal(decimal.RequireFromString("15.00")), "owed %s", stats.AmountOwed)
}
