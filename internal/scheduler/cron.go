package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/amaumene/repertoire/internal/metrics"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Refresher repeats the current search
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	refresh Refresher
	timeout time.Duration
	metrics *metrics.Collector
	logger  *logrus.Logger
	entryID cron.EntryID
}

// NewScheduler creates a new scheduler refreshing the list on spec
func NewScheduler(spec string, refresh Refresher, timeout time.Duration, collector *metrics.Collector, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		spec:    spec,
		refresh: refresh,
		timeout: timeout,
		metrics: collector,
		logger:  logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.WithField("schedule", s.spec).Info("Starting scheduler")

	id, err := s.cron.AddFunc(s.spec, s.runRefresh)
	if err != nil {
		return fmt.Errorf("failed to add refresh job: %w", err)
	}
	s.entryID = id

	s.cron.Start()
	s.logger.Info("Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running refresh to finish
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
}

// Next returns the time of the next scheduled refresh
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entryID).Next
}

// runRefresh executes the refresh job
func (s *Scheduler) runRefresh() {
	s.logger.Debug("Running scheduled refresh")

	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.refresh.Refresh(ctx); err != nil {
		s.logger.WithError(err).Error("Refresh job failed")
		s.metrics.ObserveRefresh(false)
		return
	}
	s.metrics.ObserveRefresh(true)
	s.logger.Debug("Refresh job completed successfully")
}
