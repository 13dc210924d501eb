package repositories

import (
	"context"
	"time"

	"github.com/profitlens/job_costing_app/internal/core/domain"
)

// ExternalRepositoryFacade provides read access to figures synced from the
// connected accounting system.
type ExternalRepositoryFacade interface {
	// FindCostRecordsByJobIDs returns external cost records for many jobs,
	// keyed by job ID. Jobs without records are absent from the map.
	FindCostRecordsByJobIDs(ctx context.Context, jobIDs []string) (map[string][]domain.ExternalCostRecord, error)

	// FindPnLSummary returns the external P&L summary covering [from, to].
	// Returns apperrors.ErrNotFound when no sync has produced one; callers
	// treat that as "external system unavailable", not a failure.
	FindPnLSummary(ctx context.Context, from, to time.Time) (*domain.ExternalPnL, error)
}
