package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/profitlens/job_costing_app/internal/apperrors"
	"github.com/profitlens/job_costing_app/internal/core/domain"
	portsrepo "github.com/profitlens/job_costing_app/internal/core/ports/repositories"
	portssvc "github.com/profitlens/job_costing_app/internal/core/ports/services"
	"github.com/profitlens/job_costing_app/internal/dto"
)

var (
	ErrAmountOrPercentage = errors.New("exactly one of amount or percentage must be provided")
	ErrNonPositiveAmount  = errors.New("allocation amount must be positive")
	ErrPercentageRange    = errors.New("allocation percentage must be between 0 and 100")
)

var percentBase = decimal.NewFromInt(100)

// allocationService implements the Allocation Ledger. It is the only writer
// of the transaction-to-job allocation relation.
type allocationService struct {
	BaseService
	allocationRepo  portsrepo.AllocationRepositoryFacade
	transactionRepo portsrepo.TransactionRepositoryFacade
	jobRepo         portsrepo.JobRepositoryFacade
}

// NewAllocationService creates a new Allocation Ledger service.
func NewAllocationService(
	allocationRepo portsrepo.AllocationRepositoryFacade,
	transactionRepo portsrepo.TransactionRepositoryFacade,
	jobRepo portsrepo.JobRepositoryFacade,
) portssvc.AllocationLedgerSvcFacade {
	return &allocationService{
		allocationRepo:  allocationRepo,
		transactionRepo: transactionRepo,
		jobRepo:         jobRepo,
	}
}

var _ portssvc.AllocationLedgerSvcFacade = (*allocationService)(nil)

// Allocate attributes part of a transaction's amount to a job.
//
// The over-allocation check happens inside the repository's atomic upsert, not
// here: two concurrent requests against the same transaction must never both
// pass a check computed from a stale sum. This method only validates the
// request shape and derives the amount.
func (s *allocationService) Allocate(ctx context.Context, transactionID string, req dto.AllocateRequest, actorID string) (*domain.Allocation, error) {
	if transactionID == "" || req.JobID == "" {
		return nil, fmt.Errorf("%w: transaction and job identifiers are required", apperrors.ErrValidation)
	}
	if (req.Amount == nil) == (req.Percentage == nil) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrAmountOrPercentage)
	}

	txn, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find transaction for allocation", slog.String("transaction_id", transactionID))
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}

	if _, err := s.jobRepo.FindJobByID(ctx, req.JobID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find job for allocation", slog.String("job_id", req.JobID))
		}
		return nil, fmt.Errorf("failed to find job %s: %w", req.JobID, err)
	}

	magnitude := txn.Magnitude()

	var amount decimal.Decimal
	var percentage *decimal.Decimal
	if req.Amount != nil {
		amount = req.Amount.Abs()
		if !magnitude.IsZero() {
			pct := amount.Div(magnitude).Mul(percentBase)
			percentage = &pct
		}
	} else {
		if req.Percentage.IsNegative() || req.Percentage.GreaterThan(percentBase) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrPercentageRange)
		}
		amount = magnitude.Mul(*req.Percentage).Div(percentBase)
		percentage = req.Percentage
	}

	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrNonPositiveAmount)
	}

	now := time.Now().UTC()
	allocation := domain.Allocation{
		AllocationID:  uuid.NewString(),
		TransactionID: transactionID,
		JobID:         req.JobID,
		Amount:        amount,
		Percentage:    percentage,
		Notes:         req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.allocationRepo.UpsertAllocation(ctx, allocation); err != nil {
		var overErr *apperrors.OverAllocationError
		if errors.As(err, &overErr) {
			s.LogWarn(ctx, "Allocation rejected: over-allocation",
				slog.String("transaction_id", transactionID),
				slog.String("job_id", req.JobID),
				slog.String("attempted", overErr.Attempted.String()),
				slog.String("current_total", overErr.CurrentTotal.String()),
				slog.String("capacity", overErr.Capacity.String()))
			return nil, err
		}
		s.LogError(ctx, err, "Failed to save allocation", slog.String("transaction_id", transactionID), slog.String("job_id", req.JobID))
		return nil, fmt.Errorf("failed to save allocation: %w", err)
	}

	s.LogInfo(ctx, "Allocation created",
		slog.String("allocation_id", allocation.AllocationID),
		slog.String("transaction_id", transactionID),
		slog.String("job_id", req.JobID),
		slog.String("amount", amount.String()))
	return &allocation, nil
}

// Unlink removes an allocation; the repository recomputes the job total.
func (s *allocationService) Unlink(ctx context.Context, allocationID string) error {
	if allocationID == "" {
		return fmt.Errorf("%w: allocation identifier is required", apperrors.ErrValidation)
	}
	if err := s.allocationRepo.DeleteAllocation(ctx, allocationID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to delete allocation", slog.String("allocation_id", allocationID))
		}
		return fmt.Errorf("failed to delete allocation %s: %w", allocationID, err)
	}
	s.LogInfo(ctx, "Allocation removed", slog.String("allocation_id", allocationID))
	return nil
}

// AllocationsForTransaction lists a transaction's allocations.
func (s *allocationService) AllocationsForTransaction(ctx context.Context, transactionID string) ([]domain.AllocationDetail, error) {
	if _, err := s.transactionRepo.FindTransactionByID(ctx, transactionID); err != nil {
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	details, err := s.allocationRepo.FindAllocationsByTransactionID(ctx, transactionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list allocations for transaction", slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	return details, nil
}

// AllocationsForJob lists a job's allocations.
func (s *allocationService) AllocationsForJob(ctx context.Context, jobID string) ([]domain.AllocationDetail, error) {
	if _, err := s.jobRepo.FindJobByID(ctx, jobID); err != nil {
		return nil, fmt.Errorf("failed to find job %s: %w", jobID, err)
	}
	details, err := s.allocationRepo.FindAllocationsByJobID(ctx, jobID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list allocations for job", slog.String("job_id", jobID))
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	return details, nil
}

// AllocationSummary reports a transaction's allocated and remaining capacity.
func (s *allocationService) AllocationSummary(ctx context.Context, transactionID string) (*domain.AllocationSummary, error) {
	txn, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}

	total, err := s.allocationRepo.SumAllocationsForTransaction(ctx, transactionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum allocations", slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to sum allocations: %w", err)
	}

	magnitude := txn.Magnitude()
	remaining := magnitude.Sub(total)
	return &domain.AllocationSummary{
		TransactionID:  transactionID,
		TotalAllocated: total,
		Remaining:      remaining,
		FullyAllocated: remaining.Abs().LessThanOrEqual(domain.AllocationEpsilon) || remaining.IsNegative(),
	}, nil
}
