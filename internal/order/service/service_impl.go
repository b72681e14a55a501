package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/internal/order/domain"
	"github.com/cityville/laundromat/internal/order/lifecycle"
	"github.com/cityville/laundromat/internal/order/totals"
	"github.com/cityville/laundromat/internal/sequence"
	"github.com/cityville/laundromat/pkg/db"
	"github.com/cityville/laundromat/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Codes  *sequence.Allocator
	Repo   domain.Repository
	Pricer domain.Pricer
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	codes  *sequence.Allocator
	repo   domain.Repository
	pricer domain.Pricer
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("order.service"),
		genID:  p.GenID,
		codes:  p.Codes,
		repo:   p.Repo,
		pricer: p.Pricer,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error) {
	customerID, err := parseID(req.CustomerID)
	if err != nil {
		return nil, domain.ErrCustomerRequired
	}

	var assignedTo *snowflake.ID
	if strings.TrimSpace(req.AssignedToID) != "" {
		id, err := parseID(req.AssignedToID)
		if err != nil {
			return nil, err
		}
		assignedTo = &id
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:                  s.genID.Generate(),
		CustomerID:          customerID,
		AssignedToID:        assignedTo,
		Status:              lifecycle.StatusPending,
		CurrentStage:        lifecycle.StageOrderPlaced,
		Amount:              decimal.Zero,
		Items:               decimal.Zero,
		Progress:            lifecycle.ProgressFor(lifecycle.StageOrderPlaced),
		PickupDate:          req.PickupDate,
		EstimatedDelivery:   req.EstimatedDelivery,
		SpecialInstructions: strings.TrimSpace(req.SpecialInstructions),
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	lines := make([]*domain.LineItem, 0, len(req.Lines))
	for _, reqLine := range req.Lines {
		line, err := s.buildLine(ctx, order.ID, reqLine.ServiceID, reqLine.Quantity, reqLine.UnitPrice, reqLine.SpecialInstructions, now)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	amount, items := totals.OrderTotals(lineValues(lines))
	order.Amount = amount
	order.Items = items

	code, err := s.codes.Allocate(ctx, sequence.KindOrder, "orders", "code")
	if err != nil {
		return nil, err
	}
	order.Code = code

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, order); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return sequence.ErrDuplicateIdentifier
			}
			return err
		}
		for _, line := range lines {
			if err := s.repo.InsertLine(ctx, tx, line); err != nil {
				return err
			}
		}
		return s.seedTimeline(ctx, tx, order.ID, now)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order created",
		zap.String("code", order.Code),
		zap.String("customer_id", customerID.String()),
		zap.Int("lines", len(lines)),
	)

	return s.reload(ctx, order.ID)
}

// seedTimeline writes the two opening rows every order starts with: the
// placement itself, already completed, and the pickup waiting to happen.
func (s *Service) seedTimeline(ctx context.Context, tx *gorm.DB, orderID snowflake.ID, now time.Time) error {
	placed := &domain.TimelineEntry{
		ID:        s.genID.Generate(),
		OrderID:   orderID,
		Stage:     "Order Placed",
		Completed: true,
		IsCurrent: false,
		Timestamp: &now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertTimeline(ctx, tx, placed); err != nil {
		return err
	}
	pickup := &domain.TimelineEntry{
		ID:        s.genID.Generate(),
		OrderID:   orderID,
		Stage:     "Pickup Scheduled",
		Completed: false,
		IsCurrent: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.repo.InsertTimeline(ctx, tx, pickup)
}

func (s *Service) buildLine(ctx context.Context, orderID snowflake.ID, serviceID string, quantity, unitPrice decimal.Decimal, instructions string, now time.Time) (*domain.LineItem, error) {
	svcID, err := parseID(serviceID)
	if err != nil {
		return nil, err
	}
	if !quantity.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return nil, domain.ErrInvalidUnitPrice
	}
	if unitPrice.IsZero() {
		unitPrice, err = s.pricer.UnitPrice(ctx, svcID)
		if err != nil {
			return nil, err
		}
	}
	return &domain.LineItem{
		ID:                  s.genID.Generate(),
		OrderID:             orderID,
		ServiceID:           svcID,
		Quantity:            quantity,
		UnitPrice:           unitPrice,
		TotalPrice:          totals.LineTotal(quantity, unitPrice),
		SpecialInstructions: strings.TrimSpace(instructions),
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) List(ctx context.Context, f domain.ListOrderFilter) ([]domain.Order, *pagination.PageInfo, error) {
	f.Pagination = f.Pagination.Normalize()
	orders, total, err := s.repo.List(ctx, s.db, f)
	if err != nil {
		return nil, nil, err
	}
	info := f.Pagination.Info(total)
	return orders, &info, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateOrderRequest) (*domain.Order, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.AssignedToID != nil {
		if strings.TrimSpace(*req.AssignedToID) == "" {
			order.AssignedToID = nil
		} else {
			staffID, err := parseID(*req.AssignedToID)
			if err != nil {
				return nil, err
			}
			order.AssignedToID = &staffID
		}
	}
	if req.PickupDate != nil {
		order.PickupDate = req.PickupDate
	}
	if req.EstimatedDelivery != nil {
		order.EstimatedDelivery = req.EstimatedDelivery
	}
	if req.DeliveryDate != nil {
		order.DeliveryDate = req.DeliveryDate
	}
	if req.SpecialInstructions != nil {
		order.SpecialInstructions = strings.TrimSpace(*req.SpecialInstructions)
	}
	order.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, order); err != nil {
		return nil, err
	}
	return s.reload(ctx, order.ID)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	order, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.Delete(ctx, tx, order.ID)
	})
}

// UpdateStage moves the order to the requested stage and rolls the derived
// state forward: status, progress bar, timeline rows, and the delivery
// timestamp once the order reaches delivered.
func (s *Service) UpdateStage(ctx context.Context, id string, req domain.UpdateStageRequest) (*domain.StageResult, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	status, progress, effects, err := lifecycle.Transition(lifecycle.Stage(req.Stage), now)
	if err != nil {
		return nil, err
	}

	order.CurrentStage = lifecycle.Stage(req.Stage)
	order.Status = status
	order.Progress = progress
	order.UpdatedAt = now
	if order.CurrentStage == lifecycle.StageDelivered && order.DeliveryDate == nil {
		order.DeliveryDate = &now
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if effects.CloseCurrent {
			if err := s.repo.CloseCurrentTimeline(ctx, tx, order.ID, effects.ClosedAt); err != nil {
				return err
			}
		}
		entry := &domain.TimelineEntry{
			ID:        s.genID.Generate(),
			OrderID:   order.ID,
			Stage:     string(effects.Open.Stage),
			Completed: effects.Open.Completed,
			IsCurrent: effects.Open.IsCurrent,
			Timestamp: effects.Open.Timestamp,
			Notes:     strings.TrimSpace(req.Notes),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.InsertTimeline(ctx, tx, entry); err != nil {
			return err
		}
		return s.repo.Update(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order stage updated",
		zap.String("code", order.Code),
		zap.String("stage", string(order.CurrentStage)),
		zap.String("status", string(status)),
		zap.Int("progress", progress),
	)

	reloaded, err := s.reload(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return &domain.StageResult{Order: reloaded, Status: status, Progress: progress}, nil
}

// Recalculate recomputes the order's amount and item count from its line
// items and persists the result.
func (s *Service) Recalculate(ctx context.Context, id string) (*domain.Totals, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	t, err := s.recalculate(ctx, s.db, order)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) recalculate(ctx context.Context, tx *gorm.DB, order *domain.Order) (*domain.Totals, error) {
	lines, err := s.repo.ListLines(ctx, tx, order.ID)
	if err != nil {
		return nil, err
	}
	values := make([]totals.Line, 0, len(lines))
	for _, l := range lines {
		values = append(values, totals.Line{Quantity: l.Quantity, UnitPrice: l.UnitPrice, TotalPrice: l.TotalPrice})
	}
	amount, items := totals.OrderTotals(values)
	order.Amount = amount
	order.Items = items
	order.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, tx, order); err != nil {
		return nil, err
	}
	return &domain.Totals{Amount: amount, Items: items}, nil
}

func (s *Service) AddLine(ctx context.Context, req domain.AddLineRequest) (*domain.LineItem, error) {
	order, err := s.find(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	line, err := s.buildLine(ctx, order.ID, req.ServiceID, req.Quantity, req.UnitPrice, req.SpecialInstructions, now)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertLine(ctx, tx, line); err != nil {
			return err
		}
		_, err := s.recalculate(ctx, tx, order)
		return err
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (s *Service) GetLine(ctx context.Context, id string) (*domain.LineItem, error) {
	lineID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	line, err := s.repo.FindLineByID(ctx, s.db, lineID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, domain.ErrLineNotFound
	}
	return line, nil
}

// UpdateLine applies the requested changes, recomputes the line total from
// quantity and unit price, then recomputes the parent order's totals. The
// two recomputations are separate, ordered steps inside one transaction.
func (s *Service) UpdateLine(ctx context.Context, id string, req domain.UpdateLineRequest) (*domain.LineItem, error) {
	line, err := s.GetLine(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Quantity != nil {
		if !req.Quantity.IsPositive() {
			return nil, domain.ErrInvalidQuantity
		}
		line.Quantity = *req.Quantity
	}
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidUnitPrice
		}
		line.UnitPrice = *req.UnitPrice
	}
	if req.SpecialInstructions != nil {
		line.SpecialInstructions = strings.TrimSpace(*req.SpecialInstructions)
	}
	line.TotalPrice = totals.LineTotal(line.Quantity, line.UnitPrice)
	line.UpdatedAt = time.Now().UTC()

	order, err := s.repo.FindByID(ctx, s.db, line.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.UpdateLine(ctx, tx, line); err != nil {
			return err
		}
		_, err := s.recalculate(ctx, tx, order)
		return err
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (s *Service) DeleteLine(ctx context.Context, id string) error {
	line, err := s.GetLine(ctx, id)
	if err != nil {
		return err
	}
	order, err := s.repo.FindByID(ctx, s.db, line.OrderID)
	if err != nil {
		return err
	}
	if order == nil {
		return domain.ErrOrderNotFound
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeleteLine(ctx, tx, line.ID); err != nil {
			return err
		}
		_, err := s.recalculate(ctx, tx, order)
		return err
	})
}

func (s *Service) Timeline(ctx context.Context, orderID string) ([]domain.TimelineEntry, error) {
	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListTimeline(ctx, s.db, order.ID)
}

func (s *Service) Stats(ctx context.Context) (*domain.OrderStats, error) {
	byStatus, err := s.repo.CountByStatus(ctx, s.db)
	if err != nil {
		return nil, err
	}
	byStage, err := s.repo.CountByStage(ctx, s.db)
	if err != nil {
		return nil, err
	}
	open, err := s.repo.SumAmountByStatus(ctx, s.db, lifecycle.StatusPending, lifecycle.StatusProcessing)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, n := range byStatus {
		total += n
	}
	return &domain.OrderStats{
		Total:      total,
		ByStatus:   byStatus,
		ByStage:    byStage,
		AmountOpen: open,
	}, nil
}

// AccountStats is the customer-facing slice of the pipeline: their own
// counts, completed spend, and five most recent orders.
func (s *Service) AccountStats(ctx context.Context, customerID snowflake.ID) (*domain.AccountStats, error) {
	byStatus, err := s.repo.CountByStatusForCustomer(ctx, s.db, customerID)
	if err != nil {
		return nil, err
	}
	spent, err := s.repo.SumAmountForCustomer(ctx, s.db, customerID, lifecycle.StatusCompleted)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.ListRecent(ctx, s.db, customerID, 5)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, n := range byStatus {
		total += n
	}
	return &domain.AccountStats{
		Total:      total,
		ByStatus:   byStatus,
		TotalSpent: spent,
		Recent:     recent,
	}, nil
}

// find resolves an order by surrogate ID or by its public ORD code.
func (s *Service) find(ctx context.Context, id string) (*domain.Order, error) {
	trimmed := strings.TrimSpace(id)
	if strings.HasPrefix(trimmed, "ORD-") {
		order, err := s.repo.FindByCode(ctx, s.db, trimmed)
		if err != nil {
			return nil, err
		}
		if order == nil {
			return nil, domain.ErrOrderNotFound
		}
		return order, nil
	}
	parsed, err := parseID(trimmed)
	if err != nil {
		return nil, domain.ErrOrderNotFound
	}
	order, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (s *Service) reload(ctx context.Context, id snowflake.ID) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrOrderNotFound
	}
	return id, nil
}

func lineValues(lines []*domain.LineItem) []totals.Line {
	values := make([]totals.Line, 0, len(lines))
	for _, l := range lines {
		values = append(values, totals.Line{Quantity: l.Quantity, UnitPrice: l.UnitPrice, TotalPrice: l.TotalPrice})
	}
	return values
}
