package repositories

import (
	"context"

	"github.com/profitlens/job_costing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AllocationRepositoryFacade owns the transaction-to-job allocation relation.
//
// UpsertAllocation and DeleteAllocation are the only write paths. Both
// recompute the owning job's stored cost total from the job's remaining
// allocation magnitudes (skipped while the job is manually overridden), so
// side effects stay confined to the allocation and the allocation-derived
// fields on the job.
type AllocationRepositoryFacade interface {
	// UpsertAllocation inserts or updates an allocation. The over-allocation
	// check (sum of other allocations + new amount vs transaction magnitude,
	// within domain.AllocationEpsilon) and the write happen as one atomic
	// unit against current state: the implementation must re-read the sum
	// under a lock or transaction, never trust a caller-supplied sum.
	// Returns *apperrors.OverAllocationError on rejection.
	UpsertAllocation(ctx context.Context, allocation domain.Allocation) error

	// DeleteAllocation removes an allocation and recomputes the job total.
	DeleteAllocation(ctx context.Context, allocationID string) error

	// FindAllocationByID retrieves a single allocation.
	FindAllocationByID(ctx context.Context, allocationID string) (*domain.Allocation, error)

	// FindAllocationsByTransactionID returns allocations for a transaction
	// joined with each job's display fields.
	FindAllocationsByTransactionID(ctx context.Context, transactionID string) ([]domain.AllocationDetail, error)

	// FindAllocationsByJobID returns allocations for a job joined with each
	// transaction's display fields.
	FindAllocationsByJobID(ctx context.Context, jobID string) ([]domain.AllocationDetail, error)

	// SumAllocationsForTransaction returns the total allocated magnitude for
	// a transaction.
	SumAllocationsForTransaction(ctx context.Context, transactionID string) (decimal.Decimal, error)

	// SumAllocationsForJobs returns each job's total allocated magnitude,
	// keyed by job ID. Jobs with no allocations are absent from the map.
	SumAllocationsForJobs(ctx context.Context, jobIDs []string) (map[string]decimal.Decimal, error)
}
