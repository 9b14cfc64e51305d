package sync

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler triggers periodic sync cycles on a cron schedule. It is the
// opportunistic counterpart to the connectivity-restored trigger: even on a
// stable connection, pending writes get flushed within one interval.
type Scheduler struct {
	schedule string
	manager  *Manager
	network  Notifier
	logger   *zap.Logger
	cron     *cron.Cron
}

// NewScheduler creates a scheduler for the given cron expression
// (e.g. "@every 5m").
func NewScheduler(schedule string, manager *Manager, network Notifier, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		schedule: schedule,
		manager:  manager,
		network:  network,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start registers the job and starts the cron runner.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.trigger)
	if err != nil {
		s.logger.Error("failed to schedule sync job",
			zap.String("schedule", s.schedule), zap.Error(err))
		return err
	}
	s.logger.Info("sync scheduler started", zap.String("schedule", s.schedule))
	s.cron.Start()
	return nil
}

// Stop stops the cron runner; a cycle already in flight finishes on its own.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	s.logger.Info("sync scheduler stopped")
}

func (s *Scheduler) trigger() {
	if !s.network.Reachable() {
		s.logger.Debug("scheduled sync skipped, network unreachable")
		return
	}
	if !s.manager.TrySync(context.Background()) {
		s.logger.Debug("scheduled sync skipped, cycle already running")
	}
}
