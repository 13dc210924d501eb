package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostBasis is the external accounting system's own trust indicator for a
// synced cost figure.
type CostBasis string

const (
	// BasisItemPurchaseCost means unit cost x quantity from the accounting
	// system's item catalog. Treated as a real cost.
	BasisItemPurchaseCost CostBasis = "item_purchase_cost"
	// BasisExpenseClassification means the figure was derived from
	// expense-account classification heuristics. Not a real cost.
	BasisExpenseClassification CostBasis = "expense_classification"
)

// IsReal reports whether the basis marks the figure as an actual cost rather
// than a heuristic.
func (b CostBasis) IsReal() bool {
	return b == BasisItemPurchaseCost
}

// ExternalCostRecord is a per-job cost figure supplied by the accounting-sync
// collaborator. Read-only input to the Cost Resolver.
type ExternalCostRecord struct {
	RecordID  string          `json:"recordID"` // Primary Key (UUID)
	JobID     string          `json:"jobID"`
	TotalCost decimal.Decimal `json:"totalCost"`
	Basis     CostBasis       `json:"basis"`
	SyncedAt  time.Time       `json:"syncedAt"`
}

// ExternalPnL is the external accounting system's profit-and-loss summary for
// a date range. Consumed only by the Reconciliation Module.
type ExternalPnL struct {
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalCost     decimal.Decimal `json:"totalCost"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetIncome     decimal.Decimal `json:"netIncome"`
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
}
