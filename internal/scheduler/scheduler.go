package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/rubbank/rubbank-api/internal/domain"
)

type ledger interface {
	ListDue(ctx context.Context) ([]domain.Transfer, error)
	ExecuteScheduled(ctx context.Context, t domain.Transfer) (domain.TransferStatus, error)
}

// Scheduler runs the periodic sweep that settles due scheduled transfers.
type Scheduler struct {
	cron     *cron.Cron
	ledger   ledger
	logger   *slog.Logger
	schedule string
}

func New(l ledger, logger *slog.Logger, schedule string) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:     c,
		ledger:   l,
		logger:   logger,
		schedule: schedule,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.RunSweep); err != nil {
		return fmt.Errorf("Start: %w", err)
	}
	s.cron.Start()
	s.logger.Info("scheduled transfer sweep registered", "schedule", s.schedule)
	return nil
}

// Stop halts the cron loop; the returned context is done once any running
// sweep has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunSweep executes every due scheduled transfer sequentially. Each
// transfer settles independently: one failure is logged and the sweep
// moves on to the next.
func (s *Scheduler) RunSweep() {
	ctx := context.Background()
	s.logger.Info("starting scheduled transfer sweep")

	due, err := s.ledger.ListDue(ctx)
	if err != nil {
		s.logger.Error("failed to list due transfers", "error", err)
		return
	}

	var done, canceled, failed int
	for _, t := range due {
		status, err := s.ledger.ExecuteScheduled(ctx, t)
		if err != nil {
			failed++
			s.logger.Error("scheduled transfer failed",
				"transfer_id", t.ID, "error", err)
			continue
		}

		switch status {
		case domain.TransferStatusDone:
			done++
		case domain.TransferStatusCanceled:
			canceled++
		}
		s.logger.Info("scheduled transfer settled",
			"transfer_id", t.ID, "status", status)
	}

	s.logger.Info("scheduled transfer sweep finished",
		"due", len(due), "done", done, "canceled", canceled, "failed", failed)
}
