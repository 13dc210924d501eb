package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/profitlens/job_costing_app/internal/apperrors"
	"github.com/profitlens/job_costing_app/internal/core/domain"
	portsrepo "github.com/profitlens/job_costing_app/internal/core/ports/repositories"
	"github.com/profitlens/job_costing_app/internal/models"
)

type PgxTemplateRepository struct {
	pool *pgxpool.Pool
}

// newPgxTemplateRepository creates a new repository for cost template data.
func newPgxTemplateRepository(pool *pgxpool.Pool) portsrepo.TemplateRepositoryFacade {
	return &PgxTemplateRepository{pool: pool}
}

var _ portsrepo.TemplateRepositoryFacade = (*PgxTemplateRepository)(nil)

func toDomainTemplate(m models.CostTemplate) domain.CostTemplate {
	return domain.CostTemplate{
		TemplateID:         m.TemplateID,
		Name:               m.Name,
		Type:               m.Type,
		EstimatedMaterials: m.EstimatedMaterials,
		EstimatedLabor:     m.EstimatedLabor,
		EstimatedOverhead:  m.EstimatedOverhead,
		TargetPrice:        m.TargetPrice,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func toDomainUsage(m models.TemplateUsage) domain.TemplateUsage {
	return domain.TemplateUsage{
		UsageID:         m.UsageID,
		JobID:           m.JobID,
		TemplateID:      m.TemplateID,
		ActualMaterials: m.ActualMaterials,
		ActualLabor:     m.ActualLabor,
		ActualOverhead:  m.ActualOverhead,
		ActualPrice:     m.ActualPrice,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const templateColumns = `template_id, name, type, estimated_materials, estimated_labor, estimated_overhead, target_price,
	created_at, created_by, last_updated_at, last_updated_by`

func scanTemplateRow(row pgx.Row) (models.CostTemplate, error) {
	var m models.CostTemplate
	var templateType sql.NullString
	err := row.Scan(
		&m.TemplateID,
		&m.Name,
		&templateType,
		&m.EstimatedMaterials,
		&m.EstimatedLabor,
		&m.EstimatedOverhead,
		&m.TargetPrice,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return models.CostTemplate{}, err
	}
	if templateType.Valid {
		m.Type = templateType.String
	}
	return m, nil
}

// FindTemplateByID retrieves a template by its ID.
func (r *PgxTemplateRepository) FindTemplateByID(ctx context.Context, templateID string) (*domain.CostTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM cost_templates WHERE template_id = $1;`

	m, err := scanTemplateRow(r.pool.QueryRow(ctx, query, templateID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find template by ID %s: %w", templateID, err)
	}
	domainTmpl := toDomainTemplate(m)
	return &domainTmpl, nil
}

// FindTemplatesByIDs retrieves multiple templates by their IDs.
func (r *PgxTemplateRepository) FindTemplatesByIDs(ctx context.Context, templateIDs []string) (map[string]domain.CostTemplate, error) {
	if len(templateIDs) == 0 {
		return map[string]domain.CostTemplate{}, nil
	}

	query := `SELECT ` + templateColumns + ` FROM cost_templates WHERE template_id = ANY($1);`

	rows, err := r.pool.Query(ctx, query, templateIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates by IDs: %w", err)
	}
	defer rows.Close()

	templatesMap := make(map[string]domain.CostTemplate)
	for rows.Next() {
		m, err := scanTemplateRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template row during batch fetch: %w", err)
		}
		templatesMap[m.TemplateID] = toDomainTemplate(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating template rows during batch fetch: %w", err)
	}
	return templatesMap, nil
}

const usageColumns = `usage_id, job_id, template_id, actual_materials, actual_labor, actual_overhead, actual_price,
	created_at, created_by, last_updated_at, last_updated_by`

func scanUsageRow(rows pgx.Rows) (models.TemplateUsage, error) {
	var m models.TemplateUsage
	err := rows.Scan(
		&m.UsageID,
		&m.JobID,
		&m.TemplateID,
		&m.ActualMaterials,
		&m.ActualLabor,
		&m.ActualOverhead,
		&m.ActualPrice,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindUsagesByJobID returns a job's template usages.
func (r *PgxTemplateRepository) FindUsagesByJobID(ctx context.Context, jobID string) ([]domain.TemplateUsage, error) {
	query := `SELECT ` + usageColumns + ` FROM template_usages WHERE job_id = $1 ORDER BY created_at ASC;`

	rows, err := r.pool.Query(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query template usages for job %s: %w", jobID, err)
	}
	defer rows.Close()

	usages := make([]domain.TemplateUsage, 0)
	for rows.Next() {
		m, err := scanUsageRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template usage row: %w", err)
		}
		usages = append(usages, toDomainUsage(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating template usage rows: %w", err)
	}
	return usages, nil
}

// FindUsagesByJobIDs returns template usages for many jobs at once.
func (r *PgxTemplateRepository) FindUsagesByJobIDs(ctx context.Context, jobIDs []string) (map[string][]domain.TemplateUsage, error) {
	if len(jobIDs) == 0 {
		return map[string][]domain.TemplateUsage{}, nil
	}

	query := `SELECT ` + usageColumns + ` FROM template_usages WHERE job_id = ANY($1) ORDER BY job_id, created_at ASC;`

	rows, err := r.pool.Query(ctx, query, jobIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query template usages by job IDs: %w", err)
	}
	defer rows.Close()

	usagesMap := make(map[string][]domain.TemplateUsage)
	for rows.Next() {
		m, err := scanUsageRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template usage row during batch fetch: %w", err)
		}
		usagesMap[m.JobID] = append(usagesMap[m.JobID], toDomainUsage(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating template usage rows during batch fetch: %w", err)
	}
	return usagesMap, nil
}
