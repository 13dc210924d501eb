package repositories

import (
	"context"
	"time"

	"github.com/profitlens/job_costing_app/internal/core/domain"
)

// JobRepositoryFacade provides access to job records.
type JobRepositoryFacade interface {
	// FindJobByID retrieves a job by its ID. Returns apperrors.ErrNotFound if missing.
	FindJobByID(ctx context.Context, jobID string) (*domain.Job, error)

	// FindJobsByIDs retrieves multiple jobs, keyed by ID. Missing IDs are
	// simply absent from the map.
	FindJobsByIDs(ctx context.Context, jobIDs []string) (map[string]domain.Job, error)

	// ListJobsByIssueDate retrieves jobs issued in [from, to], paginated by an
	// opaque cursor token ordered by issue date then creation time.
	ListJobsByIssueDate(ctx context.Context, from, to time.Time, limit int, nextToken *string) ([]domain.Job, *string, error)

	// UpdateJobCost writes a job's stored cost snapshot, source tag, and
	// override flag. The Cost Resolver and the override path are the only
	// callers; a nil snapshot clears the stored cost.
	UpdateJobCost(ctx context.Context, jobID string, snapshot *domain.CostSnapshot, source *domain.CostSource, overridden bool, updatedBy string, updatedAt time.Time) error
}
