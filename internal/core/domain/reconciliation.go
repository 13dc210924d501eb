package domain

import "github.com/shopspring/decimal"

// PnLTotals is a revenue/cost/profit triple used on both sides of a
// reconciliation.
type PnLTotals struct {
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
}

// ReconciliationBreakdown explains how the merged totals were assembled.
type ReconciliationBreakdown struct {
	ExternalJobs       int             `json:"externalJobs"`
	InternalOnlyJobs   int             `json:"internalOnlyJobs"`
	EditedAfterSync    int             `json:"editedAfterSync"`
	EditDeltaCost      decimal.Decimal `json:"editDeltaCost"`
	InternalOnlyTotals PnLTotals       `json:"internalOnlyTotals"`
}

// Discrepancy is the external-minus-merged difference per axis, with a
// human-readable note when non-zero.
type Discrepancy struct {
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Note    string          `json:"note,omitempty"`
}

// Recommendation states which side's numbers to prefer and why.
type Recommendation struct {
	PreferExternal bool            `json:"preferExternal"`
	CoveragePct    decimal.Decimal `json:"coveragePct"` // Share of jobs with high-quality cost data
	Message        string          `json:"message"`
}

// ReconciliationReport merges the external P&L with internally computed totals.
// External is nil when the accounting collaborator was unavailable; merged then
// falls back to the internal-only totals.
type ReconciliationReport struct {
	External       *PnLTotals              `json:"external,omitempty"`
	Internal       PnLTotals               `json:"internal"`
	Merged         PnLTotals               `json:"merged"`
	Breakdown      ReconciliationBreakdown `json:"breakdown"`
	Discrepancy    Discrepancy             `json:"discrepancy"`
	Recommendation Recommendation          `json:"recommendation"`
}
