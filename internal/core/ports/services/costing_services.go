package services

import (
	"context"

	"github.com/profitlens/job_costing_app/internal/core/domain"
	"github.com/profitlens/job_costing_app/internal/dto"
)

// CostResolverSvcFacade resolves a single effective cost per job from
// whichever evidence sources exist.
type CostResolverSvcFacade interface {
	// ResolveEffectiveCost picks the effective cost for one job using the
	// precedence chain manual_override > external_real_cost >
	// transaction_linked > stored_actual > template_estimate > none.
	// Missing data is a valid result (source none, amount 0), never an error.
	ResolveEffectiveCost(ctx context.Context, job *domain.Job) (domain.ResolvedCost, error)

	// ResolveJobs resolves a batch of jobs. Lookup tables (allocations,
	// external records, template usages) are fetched once for the whole batch.
	ResolveJobs(ctx context.Context, jobs []domain.Job) (map[string]domain.ResolvedCost, error)

	// ResolveAndStore resolves a job and persists the resulting snapshot and
	// source tag on the job record.
	ResolveAndStore(ctx context.Context, jobID string, actorID string) (*domain.ResolvedCost, error)

	// ApplyOverride records a manual cost correction: validates the split,
	// appends an audit record, and marks the job manually overridden.
	ApplyOverride(ctx context.Context, jobID string, req dto.OverrideRequest, actorID string) (*domain.CostOverride, error)

	// ClearOverride drops the override flag so resolution falls through to
	// the next applicable source.
	ClearOverride(ctx context.Context, jobID string, actorID string) error

	// OverrideHistory returns a job's override audit trail, newest first.
	OverrideHistory(ctx context.Context, jobID string) ([]domain.CostOverride, error)
}
