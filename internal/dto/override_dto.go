package dto

import (
	"time"

	"github.com/profitlens/job_costing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// OverrideRequest records a manual cost correction on a job. When the split
// fields are present their sum must match NewTotal within the allocation
// epsilon.
type OverrideRequest struct {
	NewTotal  decimal.Decimal  `json:"newTotal" binding:"gte=0"`
	Materials *decimal.Decimal `json:"materials,omitempty" binding:"omitempty,gte=0"`
	Labor     *decimal.Decimal `json:"labor,omitempty" binding:"omitempty,gte=0"`
	Overhead  *decimal.Decimal `json:"overhead,omitempty" binding:"omitempty,gte=0"`
	Reason    string           `json:"reason" binding:"required"`
	Method    string           `json:"method,omitempty"`
}

// OverrideResponse is the presentation form of an override audit record.
type OverrideResponse struct {
	OverrideID     string           `json:"overrideID"`
	JobID          string           `json:"jobID"`
	PreviousCost   *decimal.Decimal `json:"previousCost,omitempty"`
	NewCost        decimal.Decimal  `json:"newCost"`
	PreviousProfit *decimal.Decimal `json:"previousProfit,omitempty"`
	NewProfit      decimal.Decimal  `json:"newProfit"`
	Reason         string           `json:"reason"`
	Method         string           `json:"method,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// ToOverrideResponse converts an override audit record for presentation.
func ToOverrideResponse(o *domain.CostOverride) OverrideResponse {
	resp := OverrideResponse{
		OverrideID: o.OverrideID,
		JobID:      o.JobID,
		NewCost:    o.NewCost.Round(2),
		NewProfit:  o.NewProfit.Round(2),
		Reason:     o.Reason,
		Method:     o.Method,
		CreatedAt:  o.CreatedAt,
	}
	if o.PreviousCost != nil {
		prev := o.PreviousCost.Round(2)
		resp.PreviousCost = &prev
	}
	if o.PreviousProfit != nil {
		prev := o.PreviousProfit.Round(2)
		resp.PreviousProfit = &prev
	}
	return resp
}
