package scheduler

import (
	"context"

	"github.com/shopman/backend/internal/application/finance"
	"go.uber.org/zap"
)

// BillSweeper re-derives supplier bill statuses for bills past their due date
type BillSweeper interface {
	SweepOverdueBills(ctx context.Context, dryRun bool) (*finance.SweepResult, error)
}

// OverdueSweepJob marks open supplier bills overdue once their due date passes
type OverdueSweepJob struct {
	sweeper BillSweeper
	logger  *zap.Logger
}

func NewOverdueSweepJob(sweeper BillSweeper, logger *zap.Logger) *OverdueSweepJob {
	return &OverdueSweepJob{sweeper: sweeper, logger: logger}
}

func (j *OverdueSweepJob) Name() string { return "overdue_bill_sweep" }

func (j *OverdueSweepJob) Run(ctx context.Context) error {
	res, err := j.sweeper.SweepOverdueBills(ctx, false)
	if err != nil {
		return err
	}
	j.logger.Info("overdue bill sweep complete",
		zap.Time("day", res.Day),
		zap.Int("examined", res.Examined),
		zap.Int("changed", res.Changed),
	)
	return nil
}
