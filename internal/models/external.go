package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExternalCostRecord is a per-job cost figure synced from the accounting system.
type ExternalCostRecord struct {
	RecordID  string          `db:"record_id"`
	JobID     string          `db:"job_id"`
	TotalCost decimal.Decimal `db:"total_cost"`
	Basis     string          `db:"basis"`
	SyncedAt  time.Time       `db:"synced_at"`
}

// ExternalPnLSummary is a cached P&L summary for a synced date range.
type ExternalPnLSummary struct {
	SummaryID     string          `db:"summary_id"`
	FromDate      time.Time       `db:"from_date"`
	ToDate        time.Time       `db:"to_date"`
	TotalIncome   decimal.Decimal `db:"total_income"`
	TotalCost     decimal.Decimal `db:"total_cost"`
	TotalExpenses decimal.Decimal `db:"total_expenses"`
	NetIncome     decimal.Decimal `db:"net_income"`
	SyncedAt      time.Time       `db:"synced_at"`
}
