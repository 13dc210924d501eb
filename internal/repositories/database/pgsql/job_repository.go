package pgsql

import (
	"context"
	"database/sql"
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
	"github.com/profitlens/job_costing_app/internal/utils/pagination"
)

type PgxJobRepository struct {
	pool *pgxpool.Pool
}

// newPgxJobRepository creates a new repository for job data.
func newPgxJobRepository(pool *pgxpool.Pool) portsrepo.JobRepositoryFacade {
	return &PgxJobRepository{pool: pool}
}

var _ portsrepo.JobRepositoryFacade = (*PgxJobRepository)(nil)

const jobColumns = `job_id, client_name, revenue, issue_date, service_type, status,
	cost_materials, cost_labor, cost_overhead, cost_total, cost_data_source,
	manually_overridden, externally_sourced, synced_cost_total,
	created_at, created_by, last_updated_at, last_updated_by`

// Helper to convert models.Job from DB to domain.Job
func toDomainJob(m models.Job) domain.Job {
	d := domain.Job{
		JobID:              m.JobID,
		ClientName:         m.ClientName,
		Revenue:            m.Revenue,
		IssueDate:          m.IssueDate,
		ServiceType:        m.ServiceType,
		Status:             domain.JobStatus(m.Status),
		ManuallyOverridden: m.ManuallyOverridden,
		ExternallySourced:  m.ExternallySourced,
		SyncedCostTotal:    m.SyncedCostTotal,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
	if m.CostTotal != nil {
		snapshot := domain.CostSnapshot{Total: *m.CostTotal}
		if m.CostMaterials != nil {
			snapshot.Materials = *m.CostMaterials
		}
		if m.CostLabor != nil {
			snapshot.Labor = *m.CostLabor
		}
		if m.CostOverhead != nil {
			snapshot.Overhead = *m.CostOverhead
		}
		d.Cost = &snapshot
	}
	if m.CostDataSource != nil {
		source := domain.CostSource(*m.CostDataSource)
		d.CostDataSource = &source
	}
	return d
}

func scanJobRow(row pgx.Row) (models.Job, error) {
	var m models.Job
	var serviceType sql.NullString
	err := row.Scan(
		&m.JobID,
		&m.ClientName,
		&m.Revenue,
		&m.IssueDate,
		&serviceType,
		&m.Status,
		&m.CostMaterials,
		&m.CostLabor,
		&m.CostOverhead,
		&m.CostTotal,
		&m.CostDataSource,
		&m.ManuallyOverridden,
		&m.ExternallySourced,
		&m.SyncedCostTotal,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return models.Job{}, err
	}
	if serviceType.Valid {
		m.ServiceType = serviceType.String
	}
	return m, nil
}

// FindJobByID retrieves a job by its ID.
func (r *PgxJobRepository) FindJobByID(ctx context.Context, jobID string) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE job_id = $1;`

	m, err := scanJobRow(r.pool.QueryRow(ctx, query, jobID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find job by ID %s: %w", jobID, err)
	}

	domainJob := toDomainJob(m)
	return &domainJob, nil
}

// FindJobsByIDs retrieves multiple jobs by their IDs.
func (r *PgxJobRepository) FindJobsByIDs(ctx context.Context, jobIDs []string) (map[string]domain.Job, error) {
	if len(jobIDs) == 0 {
		return map[string]domain.Job{}, nil
	}

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE job_id = ANY($1);`

	rows, err := r.pool.Query(ctx, query, jobIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs by IDs: %w", err)
	}
	defer rows.Close()

	jobsMap := make(map[string]domain.Job)
	for rows.Next() {
		m, err := scanJobRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job row during batch fetch: %w", err)
		}
		jobsMap[m.JobID] = toDomainJob(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job rows during batch fetch: %w", err)
	}
	return jobsMap, nil
}

// ListJobsByIssueDate retrieves jobs issued in [from, to], paginated by an
// opaque token over (issue_date, created_at).
func (r *PgxJobRepository) ListJobsByIssueDate(ctx context.Context, from, to time.Time, limit int, nextToken *string) ([]domain.Job, *string, error) {
	if limit <= 0 {
		limit = 100
	}

	args := []interface{}{from, to}
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE issue_date >= $1 AND issue_date <= $2`

	if nextToken != nil && *nextToken != "" {
		issueDate, createdAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		query += ` AND (issue_date, created_at) > ($3, $4)`
		args = append(args, issueDate, createdAt)
	}

	// Fetch one extra row to know whether another page exists.
	query += fmt.Sprintf(` ORDER BY issue_date ASC, created_at ASC LIMIT %d;`, limit+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query jobs by issue date: %w", err)
	}
	defer rows.Close()

	jobs := make([]domain.Job, 0, limit)
	for rows.Next() {
		m, err := scanJobRow(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan job row during list: %w", err)
		}
		jobs = append(jobs, toDomainJob(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating job rows during list: %w", err)
	}

	var token *string
	if len(jobs) > limit {
		jobs = jobs[:limit]
		last := jobs[len(jobs)-1]
		t := pagination.EncodeToken(last.IssueDate, last.CreatedAt)
		token = &t
	}
	return jobs, token, nil
}

// UpdateJobCost writes a job's stored cost snapshot, source tag, and override
// flag. A nil snapshot clears the stored cost columns.
func (r *PgxJobRepository) UpdateJobCost(ctx context.Context, jobID string, snapshot *domain.CostSnapshot, source *domain.CostSource, overridden bool, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE jobs
		SET cost_materials = $2, cost_labor = $3, cost_overhead = $4, cost_total = $5,
		    cost_data_source = $6, manually_overridden = $7,
		    last_updated_at = $8, last_updated_by = $9
		WHERE job_id = $1;
	`

	var materials, labor, overhead, total *decimal.Decimal
	if snapshot != nil {
		materials = &snapshot.Materials
		labor = &snapshot.Labor
		overhead = &snapshot.Overhead
		total = &snapshot.Total
	}
	var sourceStr *string
	if source != nil {
		s := string(*source)
		sourceStr = &s
	}

	tag, err := r.pool.Exec(ctx, query, jobID, materials, labor, overhead, total, sourceStr, overridden, updatedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to update cost for job %s: %w", jobID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
