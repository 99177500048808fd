package ports

import (
	"context"
	"time"
)

// SweepSummary reports one scheduled reset run.
type SweepSummary struct {
	TextReset    int
	BonusGranted int
	Failed       int
}

// SweepService runs the periodic credit maintenance pass: floor depleted
// text balances and grant the per-period yearly bonus. Runs are idempotent,
// so overlapping or repeated executions for the same period are safe.
type SweepService interface {
	Run(ctx context.Context, now time.Time) (*SweepSummary, error)
}
