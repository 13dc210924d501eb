package dto

import (
	"github.com/profitlens/job_costing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AllocateRequest attributes part of a transaction's amount to a job.
// Exactly one of Amount or Percentage must be provided; when only Percentage
// is given the amount is derived from the transaction magnitude.
type AllocateRequest struct {
	JobID      string           `json:"jobID" binding:"required"`
	Amount     *decimal.Decimal `json:"amount,omitempty" binding:"omitempty,gt=0"`
	Percentage *decimal.Decimal `json:"percentage,omitempty" binding:"omitempty,gte=0,lte=100"`
	Notes      string           `json:"notes,omitempty"`
}

// AllocationResponse is the presentation form of an allocation.
type AllocationResponse struct {
	AllocationID  string           `json:"allocationID"`
	TransactionID string           `json:"transactionID"`
	JobID         string           `json:"jobID"`
	Amount        decimal.Decimal  `json:"amount"`
	Percentage    *decimal.Decimal `json:"percentage,omitempty"`
	Notes         string           `json:"notes,omitempty"`
}

// AllocationDetailResponse joins an allocation with counterpart display fields.
type AllocationDetailResponse struct {
	AllocationResponse
	TransactionName   string          `json:"transactionName,omitempty"`
	TransactionAmount decimal.Decimal `json:"transactionAmount"`
	JobClientName     string          `json:"jobClientName,omitempty"`
	JobRevenue        decimal.Decimal `json:"jobRevenue"`
}

// AllocationSummaryResponse reports how much of a transaction is attributed.
type AllocationSummaryResponse struct {
	TransactionID  string          `json:"transactionID"`
	TotalAllocated decimal.Decimal `json:"totalAllocated"`
	Remaining      decimal.Decimal `json:"remaining"`
	FullyAllocated bool            `json:"fullyAllocated"`
}

// ToAllocationResponse rounds amounts at the presentation boundary.
func ToAllocationResponse(a *domain.Allocation) AllocationResponse {
	resp := AllocationResponse{
		AllocationID:  a.AllocationID,
		TransactionID: a.TransactionID,
		JobID:         a.JobID,
		Amount:        a.Amount.Round(2),
		Notes:         a.Notes,
	}
	if a.Percentage != nil {
		pct := a.Percentage.Round(2)
		resp.Percentage = &pct
	}
	return resp
}

// ToAllocationDetailResponses converts joined allocation rows.
func ToAllocationDetailResponses(details []domain.AllocationDetail) []AllocationDetailResponse {
	out := make([]AllocationDetailResponse, len(details))
	for i, d := range details {
		out[i] = AllocationDetailResponse{
			AllocationResponse: ToAllocationResponse(&d.Allocation),
			TransactionName:    d.TransactionName,
			TransactionAmount:  d.TransactionAmount.Round(2),
			JobClientName:      d.JobClientName,
			JobRevenue:         d.JobRevenue.Round(2),
		}
	}
	return out
}

// ToAllocationSummaryResponse converts a domain allocation summary.
func ToAllocationSummaryResponse(s *domain.AllocationSummary) AllocationSummaryResponse {
	return AllocationSummaryResponse{
		TransactionID:  s.TransactionID,
		TotalAllocated: s.TotalAllocated.Round(2),
		Remaining:      s.Remaining.Round(2),
		FullyAllocated: s.FullyAllocated,
	}
}
