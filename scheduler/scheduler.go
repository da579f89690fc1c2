package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/gods-bracket/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const defaultRunTimeout = 10 * time.Minute

// Rebuilder is the part of the snapshot service the scheduler drives.
type Rebuilder interface {
	Build(ctx context.Context, year int) (*services.BuildResult, error)
}

// Scheduler periodically rebuilds the snapshot of one tournament year.
type Scheduler struct {
	cron       *cron.Cron
	rebuilder  Rebuilder
	year       int
	logger     *logrus.Logger
	runTimeout time.Duration
}

func New(rebuilder Rebuilder, year int, logger *logrus.Logger) *Scheduler {
	c := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(logger)),
		cron.WithChain(cron.Recover(cron.VerbosePrintfLogger(logger))),
	)
	return &Scheduler{
		cron:       c,
		rebuilder:  rebuilder,
		year:       year,
		logger:     logger,
		runTimeout: defaultRunTimeout,
	}
}

// Start registers the rebuild job under a standard five-field cron spec
// (or a descriptor such as "@every 15m") and starts the scheduler.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(context.Background()) }); err != nil {
		return fmt.Errorf("invalid rebuild schedule %q: %w", spec, err)
	}
	s.cron.Start()
	s.logger.WithFields(logrus.Fields{"schedule": spec, "year": s.year}).Info("Snapshot rebuild scheduler started")
	return nil
}

// Stop halts scheduling and waits for a running job, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop().Done()
	select {
	case <-done:
		s.logger.Info("Snapshot rebuild scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("Snapshot rebuild scheduler stop timed out with a job still running")
	}
}

// RunOnce performs a single rebuild. Failures are logged, never returned.
func (s *Scheduler) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	log := s.logger.WithField("year", s.year)
	result, err := s.rebuilder.Build(ctx, s.year)
	switch {
	case errors.Is(err, services.ErrRebuildInProgress):
		log.Info("Skipping scheduled rebuild, another build is running")
	case err != nil:
		log.WithError(err).Error("Scheduled rebuild failed")
	default:
		log.WithFields(logrus.Fields{
			"run_id":        result.RunID,
			"status":        result.Snapshot.Status,
			"league_errors": len(result.Snapshot.LeagueErrors),
			"duration":      result.Duration.String(),
		}).Info("Scheduled rebuild finished")
	}
}
