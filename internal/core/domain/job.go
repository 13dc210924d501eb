package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JobStatus is the lifecycle state of a job. The engine treats it as opaque.
type JobStatus string

const (
	JobDraft   JobStatus = "DRAFT"
	JobSent    JobStatus = "SENT"
	JobPaid    JobStatus = "PAID"
	JobOverdue JobStatus = "OVERDUE"
)

// CostSnapshot is the stored materials/labor/overhead breakdown for a job.
// Total is authoritative; the split fields may be zero when the source only
// provided a total (e.g. summed transaction allocations).
type CostSnapshot struct {
	Materials decimal.Decimal `json:"materials"`
	Labor     decimal.Decimal `json:"labor"`
	Overhead  decimal.Decimal `json:"overhead"`
	Total     decimal.Decimal `json:"total"`
}

// Job represents a priced unit of work (an invoice) whose profitability is tracked.
// Stored-cost fields are mutated only by the Cost Resolver or an explicit
// manual override; the engine never deletes jobs.
type Job struct {
	JobID       string          `json:"jobID"` // Primary Key (UUID)
	ClientName  string          `json:"clientName"`
	Revenue     decimal.Decimal `json:"revenue"` // >= 0
	IssueDate   time.Time       `json:"issueDate"`
	ServiceType string          `json:"serviceType,omitempty"` // Nullable label
	Status      JobStatus       `json:"status"`

	// Cost snapshot written back by the resolver; nil until first resolution.
	Cost           *CostSnapshot `json:"cost,omitempty"`
	CostDataSource *CostSource   `json:"costDataSource,omitempty"`

	ManuallyOverridden bool `json:"manuallyOverridden"`

	// ExternallySourced marks jobs that originated from the connected
	// accounting system. SyncedCostTotal holds the cost figure at the time of
	// the last sync so reconciliation can isolate post-sync local edits.
	ExternallySourced bool             `json:"externallySourced"`
	SyncedCostTotal   *decimal.Decimal `json:"syncedCostTotal,omitempty"`

	AuditFields
}

// StoredCostTotal returns the stored total cost when the snapshot exists.
func (j *Job) StoredCostTotal() *decimal.Decimal {
	if j.Cost == nil {
		return nil
	}
	t := j.Cost.Total
	return &t
}
