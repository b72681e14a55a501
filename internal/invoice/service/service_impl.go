package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/cityville/laundromat/internal/catalog/domain"
	"github.com/cityville/laundromat/internal/config"
	"github.com/cityville/laundromat/internal/invoice/domain"
	orderdomain "github.com/cityville/laundromat/internal/order/domain"
	"github.com/cityville/laundromat/internal/providers/pdf"
	"github.com/cityville/laundromat/internal/sequence"
	settingsdomain "github.com/cityville/laundromat/internal/settings/domain"
	userdomain "github.com/cityville/laundromat/internal/user/domain"
	"github.com/cityville/laundromat/pkg/db"
	"github.com/cityville/laundromat/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Config   config.Config
	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Codes    *sequence.Allocator
	Repo     domain.Repository
	Orders   orderdomain.Service
	Users    userdomain.Service
	Catalog  catalogdomain.CatalogService
	Settings settingsdomain.Service
	Renderer pdf.Renderer
}

type Service struct {
	cfg      config.Config
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	codes    *sequence.Allocator
	repo     domain.Repository
	orders   orderdomain.Service
	users    userdomain.Service
	catalog  catalogdomain.CatalogService
	settings settingsdomain.Service
	renderer pdf.Renderer
}

func New(p Params) domain.Service {
	return &Service{
		cfg:      p.Config,
		db:       p.DB,
		log:      p.Log.Named("invoice.service"),
		genID:    p.GenID,
		codes:    p.Codes,
		repo:     p.Repo,
		orders:   p.Orders,
		users:    p.Users,
		catalog:  p.Catalog,
		settings: p.Settings,
		renderer: p.Renderer,
	}
}

// Generate bills an order. One invoice per order: a second call for the
// same order fails with ErrAlreadyInvoiced. The amount mirrors the order's
// derived total at this moment; later order edits do not touch it.
func (s *Service) Generate(ctx context.Context, req domain.GenerateInvoiceRequest) (*domain.Invoice, error) {
	order, err := s.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByOrder(ctx, s.db, order.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrAlreadyInvoiced
	}

	code, err := s.codes.Allocate(ctx, sequence.KindInvoice, "invoices", "code")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	inv := &domain.Invoice{
		ID:         s.genID.Generate(),
		Code:       code,
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Status:     domain.StatusPending,
		Subtotal:   order.Amount,
		Tax:        decimal.Zero,
		Amount:     order.Amount,
		Currency:   s.cfg.Currency,
		IssuedAt:   now,
		DueDate:    now.AddDate(0, 0, s.cfg.InvoiceDueDays),
		Notes:      strings.TrimSpace(req.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Insert(ctx, s.db, inv); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrAlreadyInvoiced
		}
		return nil, err
	}

	s.log.Info("invoice generated",
		zap.String("code", code),
		zap.String("order", order.Code),
		zap.String("amount", inv.Amount.String()),
	)
	return inv, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	return s.find(ctx, id)
}

func (s *Service) GetByOrder(ctx context.Context, orderID string) (*domain.Invoice, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	inv, err := s.repo.FindByOrder(ctx, s.db, order.ID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrInvoiceNotFound
	}
	return inv, nil
}

func (s *Service) List(ctx context.Context, f domain.ListInvoiceFilter) ([]domain.Invoice, *pagination.PageInfo, error) {
	f.Pagination = f.Pagination.Normalize()
	invoices, total, err := s.repo.List(ctx, s.db, f)
	if err != nil {
		return nil, nil, err
	}
	info := f.Pagination.Info(total)
	return invoices, &info, nil
}

func (s *Service) MarkPaid(ctx context.Context, id string, req domain.MarkPaidRequest) (*domain.Invoice, error) {
	inv, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status == domain.StatusPaid {
		return nil, domain.ErrAlreadyPaid
	}

	now := time.Now().UTC()
	paidAt := now
	if req.PaidAt != nil {
		paidAt = req.PaidAt.UTC()
	}
	inv.Status = domain.StatusPaid
	inv.PaidAt = &paidAt
	if strings.TrimSpace(req.Notes) != "" {
		inv.Notes = strings.TrimSpace(req.Notes)
	}
	inv.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, inv); err != nil {
		return nil, err
	}

	s.log.Info("invoice paid", zap.String("code", inv.Code))
	return inv, nil
}

func (s *Service) Void(ctx context.Context, id string) (*domain.Invoice, error) {
	inv, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status == domain.StatusPaid {
		return nil, domain.ErrAlreadyPaid
	}
	inv.Status = domain.StatusVoid
	inv.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// RenderPDF lays out the invoice with the shop header from settings and
// the customer's billing details.
func (s *Service) RenderPDF(ctx context.Context, id string) ([]byte, error) {
	inv, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.GetByID(ctx, inv.OrderID.String())
	if err != nil {
		return nil, err
	}
	customer, err := s.users.GetByID(ctx, inv.CustomerID.String())
	if err != nil {
		return nil, err
	}
	shop, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	doc := pdf.InvoiceDocument{
		BusinessName:    shop.BusinessName,
		BusinessAddress: shop.Address,
		BusinessPhone:   shop.Phone,
		InvoiceNumber:   inv.Code,
		OrderNumber:     order.Code,
		Status:          string(inv.Status),
		IssueDate:       inv.IssuedAt.Format("2006-01-02"),
		DueDate:         inv.DueDate.Format("2006-01-02"),
		BillToName:      customer.FullName(),
		BillToAddress:   customer.Address,
		BillToPhone:     customer.Phone,
		Subtotal:        money(inv.Subtotal, inv.Currency),
		Tax:             money(inv.Tax, inv.Currency),
		Total:           money(inv.Amount, inv.Currency),
	}
	for _, line := range order.Lines {
		description := line.SpecialInstructions
		if entry, err := s.catalog.GetByID(ctx, line.ServiceID.String()); err == nil {
			description = entry.Name
		}
		doc.Lines = append(doc.Lines, pdf.InvoiceLine{
			Description: description,
			Quantity:    line.Quantity.String(),
			UnitPrice:   money(line.UnitPrice, inv.Currency),
			Amount:      money(line.TotalPrice, inv.Currency),
		})
	}

	return s.renderer.RenderInvoice(ctx, doc)
}

// SweepOverdue flips pending invoices past their due date to overdue. The
// scheduler runs this hourly.
func (s *Service) SweepOverdue(ctx context.Context) (int64, error) {
	return s.repo.MarkOverdue(ctx, s.db, time.Now().UTC())
}

func (s *Service) Stats(ctx context.Context) (*domain.InvoiceStats, error) {
	byStatus, err := s.repo.CountByStatus(ctx, s.db)
	if err != nil {
		return nil, err
	}
	owed, err := s.repo.SumAmountByStatus(ctx, s.db, domain.StatusPending, domain.StatusOverdue)
	if err != nil {
		return nil, err
	}
	paid, err := s.repo.SumAmountByStatus(ctx, s.db, domain.StatusPaid)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, n := range byStatus {
		total += n
	}
	return &domain.InvoiceStats{
		Total:      total,
		ByStatus:   byStatus,
		AmountOwed: owed,
		AmountPaid: paid,
	}, nil
}

// find resolves an invoice by surrogate ID or by its public INV code.
func (s *Service) find(ctx context.Context, id string) (*domain.Invoice, error) {
	trimmed := strings.TrimSpace(id)
	if strings.HasPrefix(trimmed, "INV-") {
		inv, err := s.repo.FindByCode(ctx, s.db, trimmed)
		if err != nil {
			return nil, err
		}
		if inv == nil {
			return nil, domain.ErrInvoiceNotFound
		}
		return inv, nil
	}
	parsed, err := snowflake.ParseString(trimmed)
	if err != nil || parsed == 0 {
		return nil, domain.ErrInvoiceNotFound
	}
	inv, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrInvoiceNotFound
	}
	return inv, nil
}

func money(v decimal.Decimal, currency string) string {
	return v.StringFixed(2) + " " + currency
}
