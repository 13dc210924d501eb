package domain

import "github.com/shopspring/decimal"

// Allocation attributes a portion of one bank transaction's amount to one job.
// Invariant: for every transaction, the sum of its allocation magnitudes never
// exceeds the transaction magnitude plus AllocationEpsilon.
type Allocation struct {
	AllocationID  string           `json:"allocationID"` // Primary Key (UUID)
	TransactionID string           `json:"transactionID"`
	JobID         string           `json:"jobID"`
	Amount        decimal.Decimal  `json:"amount"`               // Magnitude allocated, always > 0
	Percentage    *decimal.Decimal `json:"percentage,omitempty"` // Of the transaction magnitude
	Notes         string           `json:"notes,omitempty"`
	AuditFields
}

// ExceedsAllocationCapacity reports whether attributing attempted on top of
// the transaction's other allocations would push the total past the
// transaction magnitude plus AllocationEpsilon. The ledger calls this between
// its locked reads and the write so the decision reflects committed state.
func ExceedsAllocationCapacity(transactionAmount, otherSum, attempted decimal.Decimal) bool {
	capacity := transactionAmount.Abs().Add(AllocationEpsilon)
	return otherSum.Add(attempted).GreaterThan(capacity)
}

// AllocationDetail is an allocation joined with its counterpart's display fields,
// used by the read paths and ad-hoc reporting.
type AllocationDetail struct {
	Allocation
	TransactionName   string          `json:"transactionName,omitempty"`
	TransactionAmount decimal.Decimal `json:"transactionAmount"`
	JobClientName     string          `json:"jobClientName,omitempty"`
	JobRevenue        decimal.Decimal `json:"jobRevenue"`
}

// AllocationSummary describes how much of a transaction has been attributed.
type AllocationSummary struct {
	TransactionID  string          `json:"transactionID"`
	TotalAllocated decimal.Decimal `json:"totalAllocated"`
	Remaining      decimal.Decimal `json:"remaining"`
	FullyAllocated bool            `json:"fullyAllocated"`
}
