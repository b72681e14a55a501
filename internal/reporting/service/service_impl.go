package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/cityville/laundromat/internal/order/domain"
	"github.com/cityville/laundromat/internal/reporting/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// completedOrdersLimit caps the dashboard's recent-completions list.
const completedOrdersLimit = 10

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("reporting.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) FinancialSummary(ctx context.Context) (*domain.FinancialSummary, error) {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)

	revenue, err := s.repo.MonthRevenue(ctx, s.db, monthStart, nextMonth)
	if err != nil {
		return nil, err
	}
	pendingAmount, err := s.repo.PendingAmount(ctx, s.db)
	if err != nil {
		return nil, err
	}
	completed, pending, total, err := s.repo.OrderCounts(ctx, s.db)
	if err != nil {
		return nil, err
	}

	return &domain.FinancialSummary{
		MonthlyRevenue:  revenue,
		PendingPayments: pendingAmount,
		CompletedOrders: completed,
		PendingOrders:   pending,
		TotalOrders:     total,
	}, nil
}

func (s *Service) CompletedOrders(ctx context.Context) ([]orderdomain.Order, error) {
	return s.repo.LatestCompleted(ctx, s.db, completedOrdersLimit)
}

func (s *Service) MonthlyAnalytics(ctx context.Context, months int) (*domain.MonthlyAnalytics, error) {
	if months <= 0 {
		months = 12
	}
	summaries, err := s.repo.ListSummaries(ctx, s.db, months)
	if err != nil {
		return nil, err
	}
	return &domain.MonthlyAnalytics{Months: summaries}, nil
}

// Rollup recomputes one month's summary from the orders table and persists
// it. Re-running a month overwrites its row, so the job is safe to repeat.
func (s *Service) Rollup(ctx context.Context, year int, month time.Month) (*domain.RevenueSummary, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	revenue, completed, total, items, err := s.repo.MonthAggregates(ctx, s.db, from, to)
	if err != nil {
		return nil, err
	}

	summary, err := s.repo.FindSummary(ctx, s.db, year, int(month))
	if err != nil {
		return nil, err
	}
	if summary == nil {
		summary = &domain.RevenueSummary{
			ID:    s.genID.Generate(),
			Year:  year,
			Month: int(month),
		}
	}
	summary.Revenue = revenue
	summary.OrdersCompleted = completed
	summary.OrdersTotal = total
	summary.ItemsProcessed = items
	summary.GeneratedAt = time.Now().UTC()

	if err := s.repo.SaveSummary(ctx, s.db, summary); err != nil {
		return nil, err
	}

	s.log.Info("revenue rollup written",
		zap.Int("year", year),
		zap.Int("month", int(month)),
		zap.String("revenue", revenue.String()),
	)
	return summary, nil
}
