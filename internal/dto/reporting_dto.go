package dto

import (
	"github.com/profitlens/job_costing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// GroupKey selects the grouping dimension for aggregate reports.
type GroupKey string

const (
	GroupByServiceType GroupKey = "serviceType"
	GroupByTemplate    GroupKey = "template"
	GroupByPeriod      GroupKey = "period"
)

// Valid reports whether the key is one of the supported dimensions.
func (k GroupKey) Valid() bool {
	switch k {
	case GroupByServiceType, GroupByTemplate, GroupByPeriod:
		return true
	}
	return false
}

// MarginAlertOptions tunes the alert thresholds.
type MarginAlertOptions struct {
	MarginThreshold       decimal.Decimal `json:"marginThreshold"`
	CostSpikeThresholdPct decimal.Decimal `json:"costSpikeThresholdPct"`
	DecliningTrendWindow  int             `json:"decliningTrendWindow"`
}

// CostResponse is the cost block of a per-job profitability object.
type CostResponse struct {
	Effective decimal.Decimal `json:"effective"`
	Source    string          `json:"source"`
	Quality   string          `json:"quality"`
}

// JobProfitabilityResponse is the per-job profitability contract.
type JobProfitabilityResponse struct {
	JobID            string           `json:"jobID"`
	ClientName       string           `json:"clientName"`
	ServiceType      string           `json:"serviceType,omitempty"`
	Revenue          decimal.Decimal  `json:"revenue"`
	Cost             CostResponse     `json:"cost"`
	Profit           decimal.Decimal  `json:"profit"`
	Margin           decimal.Decimal  `json:"margin"`
	Estimate         *decimal.Decimal `json:"estimate,omitempty"`
	EstimateVariance *decimal.Decimal `json:"estimateVariance,omitempty"`
	Warnings         []string         `json:"warnings,omitempty"`
}

// ProfitGroupResponse is one aggregate report row.
type ProfitGroupResponse struct {
	Key               string          `json:"key"`
	Revenue           decimal.Decimal `json:"revenue"`
	Cost              decimal.Decimal `json:"cost"`
	Profit            decimal.Decimal `json:"profit"`
	Margin            decimal.Decimal `json:"margin"`
	MeanJobMargin     decimal.Decimal `json:"meanJobMargin"`
	MedianJobMargin   decimal.Decimal `json:"medianJobMargin"`
	Count             int             `json:"count"`
	CountWithCostData int             `json:"countWithCostData"`
}

// AggregateReportResponse is the aggregate reporting surface.
type AggregateReportResponse struct {
	Groups  []ProfitGroupResponse `json:"groups"`
	Summary struct {
		TotalJobs        int             `json:"totalJobs"`
		JobsWithCostData int             `json:"jobsWithCostData"`
		AverageMargin    decimal.Decimal `json:"averageMargin"`
		MedianMargin     decimal.Decimal `json:"medianMargin"`
	} `json:"summary"`
}

// ToJobProfitabilityResponse rounds a per-job profitability object for
// presentation.
func ToJobProfitabilityResponse(p *domain.JobProfitability) JobProfitabilityResponse {
	resp := JobProfitabilityResponse{
		JobID:       p.JobID,
		ClientName:  p.ClientName,
		ServiceType: p.ServiceType,
		Revenue:     p.Revenue.Round(2),
		Cost: CostResponse{
			Effective: p.Cost.Amount.Round(2),
			Source:    string(p.Cost.Source),
			Quality:   string(p.Cost.Quality),
		},
		Profit:   p.Profit.Round(2),
		Margin:   p.Margin.Round(2),
		Warnings: p.Cost.Warnings,
	}
	if p.Cost.Estimate != nil {
		est := p.Cost.Estimate.Round(2)
		resp.Estimate = &est
	}
	if p.Cost.Variance != nil {
		v := p.Cost.Variance.Round(2)
		resp.EstimateVariance = &v
	}
	return resp
}

// ToAggregateReportResponse rounds an aggregate report for presentation.
func ToAggregateReportResponse(report *domain.AggregateReport) AggregateReportResponse {
	resp := AggregateReportResponse{
		Groups: make([]ProfitGroupResponse, len(report.Groups)),
	}
	for i, g := range report.Groups {
		resp.Groups[i] = ProfitGroupResponse{
			Key:               g.Key,
			Revenue:           g.Revenue.Round(2),
			Cost:              g.Cost.Round(2),
			Profit:            g.Profit.Round(2),
			Margin:            g.Margin.Round(2),
			MeanJobMargin:     g.MeanJobMargin.Round(2),
			MedianJobMargin:   g.MedianJobMargin.Round(2),
			Count:             g.Count,
			CountWithCostData: g.CountWithCostData,
		}
	}
	resp.Summary.TotalJobs = report.Summary.TotalJobs
	resp.Summary.JobsWithCostData = report.Summary.JobsWithCostData
	resp.Summary.AverageMargin = report.Summary.AverageMargin.Round(2)
	resp.Summary.MedianMargin = report.Summary.MedianMargin.Round(2)
	return resp
}
