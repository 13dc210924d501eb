package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostOverride is one append-only override audit row.
type CostOverride struct {
	OverrideID     string           `db:"override_id"`
	JobID          string           `db:"job_id"`
	PreviousCost   *decimal.Decimal `db:"previous_cost"`
	NewCost        decimal.Decimal  `db:"new_cost"`
	PreviousProfit *decimal.Decimal `db:"previous_profit"`
	NewProfit      decimal.Decimal  `db:"new_profit"`
	Reason         string           `db:"reason"`
	Method         string           `db:"method"`
	CreatedAt      time.Time        `db:"created_at"`
	CreatedBy      string           `db:"created_by"`
}
