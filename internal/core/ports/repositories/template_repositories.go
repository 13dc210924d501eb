package repositories

import (
	"context"

	"github.com/profitlens/job_costing_app/internal/core/domain"
)

// TemplateRepositoryFacade provides read access to cost templates and their
// usages. Templates are reference data owned by the template library.
type TemplateRepositoryFacade interface {
	// FindTemplateByID retrieves a template. Returns apperrors.ErrNotFound if missing.
	FindTemplateByID(ctx context.Context, templateID string) (*domain.CostTemplate, error)

	// FindTemplatesByIDs retrieves multiple templates, keyed by ID.
	FindTemplatesByIDs(ctx context.Context, templateIDs []string) (map[string]domain.CostTemplate, error)

	// FindUsagesByJobID returns a job's template usages.
	FindUsagesByJobID(ctx context.Context, jobID string) ([]domain.TemplateUsage, error)

	// FindUsagesByJobIDs returns template usages for many jobs at once,
	// keyed by job ID.
	FindUsagesByJobIDs(ctx context.Context, jobIDs []string) (map[string][]domain.TemplateUsage, error)
}
