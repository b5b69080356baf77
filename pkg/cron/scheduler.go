// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/ledgerline/statements/pkg/storage"
)

// StatementChecker reports whether a statement still exists.
type StatementChecker interface {
	StatementExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron       *cron.Cron
	files      storage.Storage
	statements StatementChecker
	logger     *slog.Logger
}

// NewScheduler creates a new job scheduler.
func NewScheduler(files storage.Storage, statements StatementChecker, logger *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:       c,
		files:      files,
		statements: statements,
		logger:     logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	// Orphaned upload sweep: runs daily at 3:00 AM
	_, err := s.cron.AddFunc("0 3 * * *", s.sweepOrphanedUploads)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the orphan sweep (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.sweepOrphanedUploads()
}

// sweepOrphanedUploads deletes stored files whose statement row is gone.
func (s *Scheduler) sweepOrphanedUploads() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	s.logger.Info("starting orphaned upload sweep")

	infos, err := s.files.List(ctx)
	if err != nil {
		s.logger.Error("failed to list stored files", slog.Any("error", err))
		return
	}

	removed := 0
	for _, info := range infos {
		exists, err := s.statements.StatementExists(ctx, info.StatementID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			s.logger.Error("failed to check statement",
				slog.String("statement_id", info.StatementID.String()),
				slog.Any("error", err),
			)
			continue
		}
		if exists {
			continue
		}
		if err := s.files.Delete(ctx, info.StatementID); err != nil {
			s.logger.Error("failed to delete orphaned file",
				slog.String("statement_id", info.StatementID.String()),
				slog.Any("error", err),
			)
			continue
		}
		removed++
	}

	s.logger.Info("orphaned upload sweep finished",
		slog.Int("files", len(infos)),
		slog.Int("removed", removed),
	)
}
