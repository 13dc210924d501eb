package dto

import (
	"github.com/profitlens/job_costing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CostSpikeResponse flags a job whose effective cost overran its estimate.
type CostSpikeResponse struct {
	JobID      string          `json:"jobID"`
	ClientName string          `json:"clientName"`
	Estimate   decimal.Decimal `json:"estimate"`
	Effective  decimal.Decimal `json:"effective"`
	OverrunPct decimal.Decimal `json:"overrunPct"`
}

// TemplatePerformanceResponse reports a template's average margin.
type TemplatePerformanceResponse struct {
	TemplateID    string          `json:"templateID"`
	TemplateName  string          `json:"templateName"`
	UsageCount    int             `json:"usageCount"`
	AverageMargin decimal.Decimal `json:"averageMargin"`
}

// AlertReportResponse is the margin alert surface.
type AlertReportResponse struct {
	LowMarginJobs            []JobProfitabilityResponse    `json:"lowMarginJobs"`
	NegativeProfitJobs       []JobProfitabilityResponse    `json:"negativeProfitJobs"`
	TotalRevenueLost         decimal.Decimal               `json:"totalRevenueLost"`
	CostSpikes               []CostSpikeResponse           `json:"costSpikes"`
	UnderperformingTemplates []TemplatePerformanceResponse `json:"underperformingTemplates"`
	DecliningTrend           bool                          `json:"decliningTrend"`
	MissingCostData          []string                      `json:"missingCostData"`
	Recommendations          []string                      `json:"recommendations"`
}

// ToAlertReportResponse rounds an alert report for presentation.
func ToAlertReportResponse(report *domain.MarginAlertReport) AlertReportResponse {
	resp := AlertReportResponse{
		LowMarginJobs:      make([]JobProfitabilityResponse, len(report.LowMarginJobs)),
		NegativeProfitJobs: make([]JobProfitabilityResponse, len(report.NegativeProfitJobs)),
		TotalRevenueLost:   report.TotalRevenueLost.Round(2),
		CostSpikes:         make([]CostSpikeResponse, len(report.CostSpikes)),
		UnderperformingTemplates: make([]TemplatePerformanceResponse,
			len(report.UnderperformingTemplates)),
		DecliningTrend:  report.DecliningTrend,
		MissingCostData: report.MissingCostData,
		Recommendations: report.Recommendations,
	}
	for i := range report.LowMarginJobs {
		resp.LowMarginJobs[i] = ToJobProfitabilityResponse(&report.LowMarginJobs[i])
	}
	for i := range report.NegativeProfitJobs {
		resp.NegativeProfitJobs[i] = ToJobProfitabilityResponse(&report.NegativeProfitJobs[i])
	}
	for i, s := range report.CostSpikes {
		resp.CostSpikes[i] = CostSpikeResponse{
			JobID:      s.JobID,
			ClientName: s.ClientName,
			Estimate:   s.Estimate.Round(2),
			Effective:  s.Effective.Round(2),
			OverrunPct: s.OverrunPct.Round(2),
		}
	}
	for i, t := range report.UnderperformingTemplates {
		resp.UnderperformingTemplates[i] = TemplatePerformanceResponse{
			TemplateID:    t.TemplateID,
			TemplateName:  t.TemplateName,
			UsageCount:    t.UsageCount,
			AverageMargin: t.AverageMargin.Round(2),
		}
	}
	return resp
}
