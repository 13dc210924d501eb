package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/profitlens/job_costing_app/internal/apperrors"
	"github.com/profitlens/job_costing_app/internal/core/domain"
	portsrepo "github.com/profitlens/job_costing_app/internal/core/ports/repositories"
	"github.com/profitlens/job_costing_app/internal/models"
)

type PgxOverrideRepository struct {
	pool *pgxpool.Pool
}

// newPgxOverrideRepository creates a new repository for cost override audit data.
func newPgxOverrideRepository(pool *pgxpool.Pool) portsrepo.OverrideRepositoryFacade {
	return &PgxOverrideRepository{pool: pool}
}

var _ portsrepo.OverrideRepositoryFacade = (*PgxOverrideRepository)(nil)

func toModelOverride(d domain.CostOverride) models.CostOverride {
	return models.CostOverride{
		OverrideID:     d.OverrideID,
		JobID:          d.JobID,
		PreviousCost:   d.PreviousCost,
		NewCost:        d.NewCost,
		PreviousProfit: d.PreviousProfit,
		NewProfit:      d.NewProfit,
		Reason:         d.Reason,
		Method:         d.Method,
		CreatedAt:      d.CreatedAt,
		CreatedBy:      d.CreatedBy,
	}
}

// SaveOverride appends an override audit record.
func (r *PgxOverrideRepository) SaveOverride(ctx context.Context, override domain.CostOverride) error {
	m := toModelOverride(override)

	query := `
		INSERT INTO cost_overrides (override_id, job_id, previous_cost, new_cost, previous_profit, new_profit, reason, method, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.pool.Exec(ctx, query,
		m.OverrideID,
		m.JobID,
		m.PreviousCost,
		m.NewCost,
		m.PreviousProfit,
		m.NewProfit,
		m.Reason,
		m.Method,
		m.CreatedAt,
		m.CreatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: override with ID %s already exists", apperrors.ErrDuplicate, m.OverrideID)
		}
		return fmt.Errorf("failed to save override %s: %w", m.OverrideID, err)
	}
	return nil
}

// FindOverridesByJobID returns a job's override history, newest first.
func (r *PgxOverrideRepository) FindOverridesByJobID(ctx context.Context, jobID string) ([]domain.CostOverride, error) {
	query := `
		SELECT override_id, job_id, previous_cost, new_cost, previous_profit, new_profit, reason, method, created_at, created_by
		FROM cost_overrides
		WHERE job_id = $1
		ORDER BY created_at DESC;
	`
	rows, err := r.pool.Query(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query overrides for job %s: %w", jobID, err)
	}
	defer rows.Close()

	overrides := make([]domain.CostOverride, 0)
	for rows.Next() {
		var m models.CostOverride
		err := rows.Scan(
			&m.OverrideID,
			&m.JobID,
			&m.PreviousCost,
			&m.NewCost,
			&m.PreviousProfit,
			&m.NewProfit,
			&m.Reason,
			&m.Method,
			&m.CreatedAt,
			&m.CreatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan override row: %w", err)
		}
		overrides = append(overrides, domain.CostOverride{
			OverrideID:     m.OverrideID,
			JobID:          m.JobID,
			PreviousCost:   m.PreviousCost,
			NewCost:        m.NewCost,
			PreviousProfit: m.PreviousProfit,
			NewProfit:      m.NewProfit,
			Reason:         m.Reason,
			Method:         m.Method,
			CreatedAt:      m.CreatedAt,
			CreatedBy:      m.CreatedBy,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating override rows: %w", err)
	}
	return overrides, nil
}
