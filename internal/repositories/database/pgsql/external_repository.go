package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/profitlens/job_costing_app/internal/apperrors"
	"github.com/profitlens/job_costing_app/internal/core/domain"
	portsrepo "github.com/profitlens/job_costing_app/internal/core/ports/repositories"
	"github.com/profitlens/job_costing_app/internal/models"
)

type PgxExternalRepository struct {
	pool *pgxpool.Pool
}

// newPgxExternalRepository creates a new repository over the synced
// accounting-system tables.
func newPgxExternalRepository(pool *pgxpool.Pool) portsrepo.ExternalRepositoryFacade {
	return &PgxExternalRepository{pool: pool}
}

var _ portsrepo.ExternalRepositoryFacade = (*PgxExternalRepository)(nil)

// FindCostRecordsByJobIDs returns external cost records for many jobs.
func (r *PgxExternalRepository) FindCostRecordsByJobIDs(ctx context.Context, jobIDs []string) (map[string][]domain.ExternalCostRecord, error) {
	if len(jobIDs) == 0 {
		return map[string][]domain.ExternalCostRecord{}, nil
	}

	query := `
		SELECT record_id, job_id, total_cost, basis, synced_at
		FROM external_cost_records
		WHERE job_id = ANY($1)
		ORDER BY job_id, synced_at ASC;
	`
	rows, err := r.pool.Query(ctx, query, jobIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query external cost records: %w", err)
	}
	defer rows.Close()

	recordsMap := make(map[string][]domain.ExternalCostRecord)
	for rows.Next() {
		var m models.ExternalCostRecord
		if err := rows.Scan(&m.RecordID, &m.JobID, &m.TotalCost, &m.Basis, &m.SyncedAt); err != nil {
			return nil, fmt.Errorf("failed to scan external cost record row: %w", err)
		}
		recordsMap[m.JobID] = append(recordsMap[m.JobID], domain.ExternalCostRecord{
			RecordID:  m.RecordID,
			JobID:     m.JobID,
			TotalCost: m.TotalCost,
			Basis:     domain.CostBasis(m.Basis),
			SyncedAt:  m.SyncedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating external cost record rows: %w", err)
	}
	return recordsMap, nil
}

// FindPnLSummary returns the most recently synced external P&L summary whose
// range covers [from, to]. apperrors.ErrNotFound means no sync has produced
// one yet.
func (r *PgxExternalRepository) FindPnLSummary(ctx context.Context, from, to time.Time) (*domain.ExternalPnL, error) {
	query := `
		SELECT summary_id, from_date, to_date, total_income, total_cost, total_expenses, net_income, synced_at
		FROM external_pnl_summaries
		WHERE from_date <= $1 AND to_date >= $2
		ORDER BY synced_at DESC
		LIMIT 1;
	`
	var m models.ExternalPnLSummary
	err := r.pool.QueryRow(ctx, query, from, to).Scan(
		&m.SummaryID,
		&m.FromDate,
		&m.ToDate,
		&m.TotalIncome,
		&m.TotalCost,
		&m.TotalExpenses,
		&m.NetIncome,
		&m.SyncedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find external P&L summary: %w", err)
	}

	return &domain.ExternalPnL{
		TotalIncome:   m.TotalIncome,
		TotalCost:     m.TotalCost,
		TotalExpenses: m.TotalExpenses,
		NetIncome:     m.NetIncome,
		From:          m.FromDate,
		To:            m.ToDate,
	}, nil
}
