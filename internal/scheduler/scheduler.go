// Package scheduler runs the recurring maintenance jobs: revenue rollups,
// overdue invoice sweeps, and session token purges.
package scheduler

import (
	"context"
	"time"

	authdomain "github.com/cityville/laundromat/internal/auth/domain"
	invoicedomain "github.com/cityville/laundromat/internal/invoice/domain"
	"github.com/cityville/laundromat/internal/observability/metrics"
	reportingdomain "github.com/cityville/laundromat/internal/reporting/domain"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log       *zap.Logger
	Metrics   *metrics.JobMetrics
	Reporting reportingdomain.Service
	Invoices  invoicedomain.Service
	Auth      authdomain.Service
}

// Scheduler owns the cron runner. Jobs are registered at construction and
// started through the fx lifecycle.
type Scheduler struct {
	cron      *cron.Cron
	log       *zap.Logger
	metrics   *metrics.JobMetrics
	reporting reportingdomain.Service
	invoices  invoicedomain.Service
	auth      authdomain.Service
}

func New(p Params) (*Scheduler, error) {
	s := &Scheduler{
		cron:      cron.New(),
		log:       p.Log.Named("scheduler"),
		metrics:   p.Metrics,
		reporting: p.Reporting,
		invoices:  p.Invoices,
		auth:      p.Auth,
	}

	jobs := []struct {
		name string
		spec string
		run  func(context.Context) error
	}{
		{"revenue_rollup", "30 0 * * *", s.runRevenueRollup},
		{"invoice_overdue_sweep", "0 * * * *", s.runOverdueSweep},
		{"token_purge", "15 3 * * *", s.runTokenPurge},
	}
	for _, job := range jobs {
		job := job
		_, err := s.cron.AddFunc(job.spec, func() { s.execute(job.name, job.run) })
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) execute(name string, run func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	err := run(ctx)
	s.metrics.RecordJob(name, err, time.Since(start))
	if err != nil {
		s.log.Error("job failed", zap.String("job", name), zap.Error(err))
		return
	}
	s.log.Debug("job finished",
		zap.String("job", name),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// runRevenueRollup rewrites the current month's summary. On the first day
// of a month it also finalizes the month that just ended.
func (s *Scheduler) runRevenueRollup(ctx context.Context) error {
	now := time.Now().UTC()
	if now.Day() == 1 {
		previous := now.AddDate(0, 0, -1)
		if _, err := s.reporting.Rollup(ctx, previous.Year(), previous.Month()); err != nil {
			return err
		}
	}
	_, err := s.reporting.Rollup(ctx, now.Year(), now.Month())
	return err
}

func (s *Scheduler) runOverdueSweep(ctx context.Context) error {
	n, err := s.invoices.SweepOverdue(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Info("invoices marked overdue", zap.Int64("count", n))
	}
	return nil
}

func (s *Scheduler) runTokenPurge(ctx context.Context) error {
	n, err := s.auth.PurgeExpired(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Info("expired tokens purged", zap.Int64("count", n))
	}
	return nil
}
