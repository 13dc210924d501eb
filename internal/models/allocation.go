package models

import "github.com/shopspring/decimal"

// Allocation attributes a slice of one transaction's amount to one job.
type Allocation struct {
	AllocationID  string           `db:"allocation_id"`
	TransactionID string           `db:"transaction_id"`
	JobID         string           `db:"job_id"`
	Amount        decimal.Decimal  `db:"amount"`
	Percentage    *decimal.Decimal `db:"percentage"` // Nullable
	Notes         string           `db:"notes"`
	AuditFields
}
