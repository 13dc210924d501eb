package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/profitlens/job_costing_app/internal/apperrors"
	"github.com/profitlens/job_costing_app/internal/core/domain"
	portsrepo "github.com/profitlens/job_costing_app/internal/core/ports/repositories"
	"github.com/profitlens/job_costing_app/internal/models"
)

type PgxAllocationRepository struct {
	BaseRepository
}

// newPgxAllocationRepository creates a new repository for allocation data.
func newPgxAllocationRepository(pool *pgxpool.Pool) portsrepo.AllocationRepositoryFacade {
	return &PgxAllocationRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.AllocationRepositoryFacade = (*PgxAllocationRepository)(nil)

func toModelAllocation(d domain.Allocation) models.Allocation {
	return models.Allocation{
		AllocationID:  d.AllocationID,
		TransactionID: d.TransactionID,
		JobID:         d.JobID,
		Amount:        d.Amount,
		Percentage:    d.Percentage,
		Notes:         d.Notes,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainAllocation(m models.Allocation) domain.Allocation {
	return domain.Allocation{
		AllocationID:  m.AllocationID,
		TransactionID: m.TransactionID,
		JobID:         m.JobID,
		Amount:        m.Amount,
		Percentage:    m.Percentage,
		Notes:         m.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

// UpsertAllocation inserts or updates an allocation after re-checking the
// transaction's capacity under a row lock. The check and the write commit as
// one unit, so concurrent allocations against the same transaction serialize
// on the lock and the invariant holds against current state.
func (r *PgxAllocationRepository) UpsertAllocation(ctx context.Context, allocation domain.Allocation) error {
	m := toModelAllocation(allocation)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	// Lock the transaction row first; all allocation writes for one bank
	// transaction funnel through this lock.
	var txnAmount decimal.Decimal
	err = tx.QueryRow(ctx, `SELECT amount FROM transactions WHERE transaction_id = $1 FOR UPDATE;`, m.TransactionID).Scan(&txnAmount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to lock transaction %s: %w", m.TransactionID, err)
	}

	var otherSum decimal.Decimal
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM allocations
		WHERE transaction_id = $1 AND allocation_id <> $2;
	`, m.TransactionID, m.AllocationID).Scan(&otherSum)
	if err != nil {
		return fmt.Errorf("failed to sum existing allocations for transaction %s: %w", m.TransactionID, err)
	}

	if domain.ExceedsAllocationCapacity(txnAmount, otherSum, m.Amount) {
		return &apperrors.OverAllocationError{
			TransactionID: m.TransactionID,
			Attempted:     m.Amount,
			CurrentTotal:  otherSum,
			Capacity:      txnAmount.Abs(),
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO allocations (allocation_id, transaction_id, job_id, amount, percentage, notes, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (allocation_id) DO UPDATE
		SET amount = EXCLUDED.amount, percentage = EXCLUDED.percentage, notes = EXCLUDED.notes,
		    last_updated_at = EXCLUDED.last_updated_at, last_updated_by = EXCLUDED.last_updated_by;
	`,
		m.AllocationID,
		m.TransactionID,
		m.JobID,
		m.Amount,
		m.Percentage,
		m.Notes,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert allocation %s: %w", m.AllocationID, err)
	}

	if err := recomputeJobCost(ctx, tx, m.JobID, m.LastUpdatedBy, m.LastUpdatedAt); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// DeleteAllocation removes an allocation and recomputes the owning job's
// allocation-derived cost inside the same transaction.
func (r *PgxAllocationRepository) DeleteAllocation(ctx context.Context, allocationID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	var jobID string
	err = tx.QueryRow(ctx, `DELETE FROM allocations WHERE allocation_id = $1 RETURNING job_id;`, allocationID).Scan(&jobID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to delete allocation %s: %w", allocationID, err)
	}

	if err := recomputeJobCost(ctx, tx, jobID, "", time.Now().UTC()); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// recomputeJobCost refreshes a job's stored cost from its remaining
// allocation magnitudes. Manually overridden jobs keep their override; jobs
// whose allocations vanished drop back to no stored cost unless some other
// source wrote the snapshot.
func recomputeJobCost(ctx context.Context, tx pgx.Tx, jobID string, updatedBy string, updatedAt time.Time) error {
	var overridden bool
	err := tx.QueryRow(ctx, `SELECT manually_overridden FROM jobs WHERE job_id = $1 FOR UPDATE;`, jobID).Scan(&overridden)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to lock job %s: %w", jobID, err)
	}
	if overridden {
		return nil
	}

	var sum decimal.Decimal
	var count int
	err = tx.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0), COUNT(*) FROM allocations WHERE job_id = $1;`, jobID).Scan(&sum, &count)
	if err != nil {
		return fmt.Errorf("failed to sum allocations for job %s: %w", jobID, err)
	}

	if updatedBy == "" {
		updatedBy = "system"
	}

	if count == 0 {
		_, err = tx.Exec(ctx, `
			UPDATE jobs
			SET cost_total = NULL, cost_data_source = NULL, last_updated_at = $2, last_updated_by = $3
			WHERE job_id = $1 AND cost_data_source = $4;
		`, jobID, updatedAt, updatedBy, string(domain.SourceTransactionLink))
		if err != nil {
			return fmt.Errorf("failed to clear allocation-derived cost for job %s: %w", jobID, err)
		}
		return nil
	}

	_, err = tx.Exec(ctx, `
		UPDATE jobs
		SET cost_total = $2, cost_data_source = $3, last_updated_at = $4, last_updated_by = $5
		WHERE job_id = $1;
	`, jobID, sum, string(domain.SourceTransactionLink), updatedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to update allocation-derived cost for job %s: %w", jobID, err)
	}
	return nil
}

// FindAllocationByID retrieves a single allocation.
func (r *PgxAllocationRepository) FindAllocationByID(ctx context.Context, allocationID string) (*domain.Allocation, error) {
	query := `
		SELECT allocation_id, transaction_id, job_id, amount, percentage, notes, created_at, created_by, last_updated_at, last_updated_by
		FROM allocations
		WHERE allocation_id = $1;
	`
	var m models.Allocation
	err := r.Pool.QueryRow(ctx, query, allocationID).Scan(
		&m.AllocationID,
		&m.TransactionID,
		&m.JobID,
		&m.Amount,
		&m.Percentage,
		&m.Notes,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find allocation by ID %s: %w", allocationID, err)
	}
	domainAlloc := toDomainAllocation(m)
	return &domainAlloc, nil
}

const allocationDetailColumns = `
	a.allocation_id, a.transaction_id, a.job_id, a.amount, a.percentage, a.notes,
	a.created_at, a.created_by, a.last_updated_at, a.last_updated_by,
	t.name, t.amount, j.client_name, j.revenue`

func scanAllocationDetail(rows pgx.Rows) (domain.AllocationDetail, error) {
	var m models.Allocation
	var detail domain.AllocationDetail
	err := rows.Scan(
		&m.AllocationID,
		&m.TransactionID,
		&m.JobID,
		&m.Amount,
		&m.Percentage,
		&m.Notes,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&detail.TransactionName,
		&detail.TransactionAmount,
		&detail.JobClientName,
		&detail.JobRevenue,
	)
	if err != nil {
		return domain.AllocationDetail{}, err
	}
	detail.Allocation = toDomainAllocation(m)
	return detail, nil
}

// FindAllocationsByTransactionID returns allocations for a transaction joined
// with job display fields.
func (r *PgxAllocationRepository) FindAllocationsByTransactionID(ctx context.Context, transactionID string) ([]domain.AllocationDetail, error) {
	query := `
		SELECT ` + allocationDetailColumns + `
		FROM allocations a
		JOIN transactions t ON t.transaction_id = a.transaction_id
		JOIN jobs j ON j.job_id = a.job_id
		WHERE a.transaction_id = $1
		ORDER BY a.created_at ASC;
	`
	return r.queryAllocationDetails(ctx, query, transactionID)
}

// FindAllocationsByJobID returns allocations for a job joined with
// transaction display fields.
func (r *PgxAllocationRepository) FindAllocationsByJobID(ctx context.Context, jobID string) ([]domain.AllocationDetail, error) {
	query := `
		SELECT ` + allocationDetailColumns + `
		FROM allocations a
		JOIN transactions t ON t.transaction_id = a.transaction_id
		JOIN jobs j ON j.job_id = a.job_id
		WHERE a.job_id = $1
		ORDER BY a.created_at ASC;
	`
	return r.queryAllocationDetails(ctx, query, jobID)
}

func (r *PgxAllocationRepository) queryAllocationDetails(ctx context.Context, query string, arg interface{}) ([]domain.AllocationDetail, error) {
	rows, err := r.Pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocation details: %w", err)
	}
	defer rows.Close()

	details := make([]domain.AllocationDetail, 0)
	for rows.Next() {
		detail, err := scanAllocationDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan allocation detail row: %w", err)
		}
		details = append(details, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating allocation detail rows: %w", err)
	}
	return details, nil
}

// SumAllocationsForTransaction returns the total allocated magnitude for a
// transaction.
func (r *PgxAllocationRepository) SumAllocationsForTransaction(ctx context.Context, transactionID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM allocations WHERE transaction_id = $1;
	`, transactionID).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum allocations for transaction %s: %w", transactionID, err)
	}
	return sum, nil
}

// SumAllocationsForJobs returns each job's total allocated magnitude.
func (r *PgxAllocationRepository) SumAllocationsForJobs(ctx context.Context, jobIDs []string) (map[string]decimal.Decimal, error) {
	if len(jobIDs) == 0 {
		return map[string]decimal.Decimal{}, nil
	}

	rows, err := r.Pool.Query(ctx, `
		SELECT job_id, COALESCE(SUM(amount), 0)
		FROM allocations
		WHERE job_id = ANY($1)
		GROUP BY job_id;
	`, jobIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to sum allocations by job: %w", err)
	}
	defer rows.Close()

	sums := make(map[string]decimal.Decimal)
	for rows.Next() {
		var jobID string
		var sum decimal.Decimal
		if err := rows.Scan(&jobID, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan allocation sum row: %w", err)
		}
		sums[jobID] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating allocation sum rows: %w", err)
	}
	return sums, nil
}
