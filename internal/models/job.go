package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Job represents a priced unit of work as stored.
// Cost columns are nullable: they stay NULL until the resolver or an override
// writes a snapshot.
type Job struct {
	JobID       string          `db:"job_id"`
	ClientName  string          `db:"client_name"`
	Revenue     decimal.Decimal `db:"revenue"`
	IssueDate   time.Time       `db:"issue_date"`
	ServiceType string          `db:"service_type"` // Nullable
	Status      string          `db:"status"`

	CostMaterials  *decimal.Decimal `db:"cost_materials"`
	CostLabor      *decimal.Decimal `db:"cost_labor"`
	CostOverhead   *decimal.Decimal `db:"cost_overhead"`
	CostTotal      *decimal.Decimal `db:"cost_total"`
	CostDataSource *string          `db:"cost_data_source"`

	ManuallyOverridden bool             `db:"manually_overridden"`
	ExternallySourced  bool             `db:"externally_sourced"`
	SyncedCostTotal    *decimal.Decimal `db:"synced_cost_total"`

	AuditFields
}
