package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostOverride is an append-only audit record of a manual cost correction.
// The job's current override state is the ManuallyOverridden flag plus the
// latest stored cost snapshot; this history is never rewritten.
type CostOverride struct {
	OverrideID     string           `json:"overrideID"` // Primary Key (UUID)
	JobID          string           `json:"jobID"`
	PreviousCost   *decimal.Decimal `json:"previousCost,omitempty"`
	NewCost        decimal.Decimal  `json:"newCost"`
	PreviousProfit *decimal.Decimal `json:"previousProfit,omitempty"`
	NewProfit      decimal.Decimal  `json:"newProfit"`
	Reason         string           `json:"reason"`
	Method         string           `json:"method,omitempty"` // e.g. "manual_entry", "receipt_total"
	CreatedAt      time.Time        `json:"createdAt"`
	CreatedBy      string           `json:"createdBy"`
}
