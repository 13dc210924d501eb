package repositories

import (
	"context"

	"github.com/profitlens/job_costing_app/internal/core/domain"
)

// OverrideRepositoryFacade stores the append-only cost override history.
type OverrideRepositoryFacade interface {
	// SaveOverride appends an override audit record. Records are never
	// updated or deleted.
	SaveOverride(ctx context.Context, override domain.CostOverride) error

	// FindOverridesByJobID returns a job's override history, newest first.
	FindOverridesByJobID(ctx context.Context, jobID string) ([]domain.CostOverride, error)
}
