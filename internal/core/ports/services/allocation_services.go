package services

import (
	"context"

	"github.com/profitlens/job_costing_app/internal/core/domain"
	"github.com/profitlens/job_costing_app/internal/dto"
)

// AllocationLedgerSvcFacade owns the transaction-to-job allocation relation
// and enforces the no-double-counting invariant.
type AllocationLedgerSvcFacade interface {
	// Allocate attributes part of a transaction's amount to a job. The amount
	// is derived from the percentage when only a percentage is given. Rejects
	// with *apperrors.OverAllocationError when the attempt would exceed the
	// transaction's remaining capacity.
	Allocate(ctx context.Context, transactionID string, req dto.AllocateRequest, actorID string) (*domain.Allocation, error)

	// Unlink removes an allocation and recomputes the job's stored cost total.
	Unlink(ctx context.Context, allocationID string) error

	// AllocationsForTransaction lists a transaction's allocations with job
	// display fields.
	AllocationsForTransaction(ctx context.Context, transactionID string) ([]domain.AllocationDetail, error)

	// AllocationsForJob lists a job's allocations with transaction display fields.
	AllocationsForJob(ctx context.Context, jobID string) ([]domain.AllocationDetail, error)

	// AllocationSummary reports total allocated, remaining capacity, and
	// whether the transaction is fully allocated.
	AllocationSummary(ctx context.Context, transactionID string) (*domain.AllocationSummary, error)
}
