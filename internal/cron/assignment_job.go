package cron

import (
	"context"
	"fmt"

	"github.com/numdinkushi/vunalet-backend/internal/assignment"
	"github.com/numdinkushi/vunalet-backend/pkg/logger"
)

// autoAssignRunner is the slice of the assignment engine the job needs.
type autoAssignRunner interface {
	AutoAssignExpired(ctx context.Context) (assignment.Result, error)
}

// AssignmentJob hands orders with lapsed claim windows to the engine on
// every worker cycle.
type AssignmentJob struct {
	engine autoAssignRunner
	logg   *logger.Logger
}

// NewAssignmentJob wires the sweep job.
func NewAssignmentJob(engine autoAssignRunner, logg *logger.Logger) (*AssignmentJob, error) {
	if engine == nil {
		return nil, fmt.Errorf("assignment engine required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &AssignmentJob{engine: engine, logg: logg}, nil
}

// Name identifies the job in logs and metrics.
func (j *AssignmentJob) Name() string {
	return "auto-assign-expired-orders"
}

// Run performs one sweep. A run with nothing expired is a cheap no-op.
func (j *AssignmentJob) Run(ctx context.Context) error {
	result, err := j.engine.AutoAssignExpired(ctx)
	if err != nil {
		return fmt.Errorf("auto-assign expired orders: %w", err)
	}
	ctx = j.logg.WithFields(ctx, map[string]any{
		"assigned":      result.AssignedCount,
		"total_expired": result.TotalExpiredCount,
	})
	j.logg.Info(ctx, "assignment sweep finished")
	return nil
}
