package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/eggspire/monitor/internal/config"
	"github.com/eggspire/monitor/internal/service/report"
)

// Scheduler runs the report retention sweep. Read paths already hide
// expired ledger entries; the sweep is what eventually reclaims the rows
// and any files left behind by crashes between rendering and cleanup.
type Scheduler struct {
	cron      *cron.Cron
	reportSvc *report.Service
	cfg       config.ReportsConfig
	logger    *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.ReportsConfig, reportSvc *report.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:      cron.New(),
		reportSvc: reportSvc,
		cfg:       cfg,
		logger:    logger,
	}
}

// Start registers the sweep job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.SweepSchedule))

	if _, err := s.cron.AddFunc(s.cfg.SweepSchedule, s.sweepExpiredReports); err != nil {
		s.logger.Error("failed to schedule retention sweep", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) sweepExpiredReports() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	reaped, err := s.reportSvc.SweepExpired(ctx)
	if err != nil {
		s.logger.Error("retention sweep failed", zap.Error(err))
		return
	}

	s.logger.Info("retention sweep completed", zap.Int("reaped", reaped))
}
