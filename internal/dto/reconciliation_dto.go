package dto

import (
	"github.com/profitlens/job_costing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PnLTotalsResponse is a rounded revenue/cost/profit triple.
type PnLTotalsResponse struct {
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
}

// ReconciliationResponse is the reconciliation reporting surface.
type ReconciliationResponse struct {
	External *PnLTotalsResponse `json:"external,omitempty"`
	Internal PnLTotalsResponse  `json:"internal"`
	Merged   PnLTotalsResponse  `json:"merged"`
	Breakdown struct {
		ExternalJobs     int             `json:"externalJobs"`
		InternalOnlyJobs int             `json:"internalOnlyJobs"`
		EditedAfterSync  int             `json:"editedAfterSync"`
		EditDeltaCost    decimal.Decimal `json:"editDeltaCost"`
	} `json:"breakdown"`
	Discrepancy struct {
		Revenue decimal.Decimal `json:"revenue"`
		Cost    decimal.Decimal `json:"cost"`
		Note    string          `json:"note,omitempty"`
	} `json:"discrepancy"`
	Recommendation struct {
		PreferExternal bool            `json:"preferExternal"`
		CoveragePct    decimal.Decimal `json:"coveragePct"`
		Message        string          `json:"message"`
	} `json:"recommendation"`
}

func toPnLTotalsResponse(t domain.PnLTotals) PnLTotalsResponse {
	return PnLTotalsResponse{
		Revenue: t.Revenue.Round(2),
		Cost:    t.Cost.Round(2),
		Profit:  t.Profit.Round(2),
	}
}

// ToReconciliationResponse rounds a reconciliation report for presentation.
func ToReconciliationResponse(report *domain.ReconciliationReport) ReconciliationResponse {
	resp := ReconciliationResponse{
		Internal: toPnLTotalsResponse(report.Internal),
		Merged:   toPnLTotalsResponse(report.Merged),
	}
	if report.External != nil {
		ext := toPnLTotalsResponse(*report.External)
		resp.External = &ext
	}
	resp.Breakdown.ExternalJobs = report.Breakdown.ExternalJobs
	resp.Breakdown.InternalOnlyJobs = report.Breakdown.InternalOnlyJobs
	resp.Breakdown.EditedAfterSync = report.Breakdown.EditedAfterSync
	resp.Breakdown.EditDeltaCost = report.Breakdown.EditDeltaCost.Round(2)
	resp.Discrepancy.Revenue = report.Discrepancy.Revenue.Round(2)
	resp.Discrepancy.Cost = report.Discrepancy.Cost.Round(2)
	resp.Discrepancy.Note = report.Discrepancy.Note
	resp.Recommendation.PreferExternal = report.Recommendation.PreferExternal
	resp.Recommendation.CoveragePct = report.Recommendation.CoveragePct.Round(2)
	resp.Recommendation.Message = report.Recommendation.Message
	return resp
}
