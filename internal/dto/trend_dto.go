package dto

import (
	"github.com/profitlens/job_costing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PeriodRowResponse is one period's aggregate in a trend report.
type PeriodRowResponse struct {
	Period  string          `json:"period"`
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
	Margin  decimal.Decimal `json:"margin"`
	Count   int             `json:"count"`
}

// GrowthRateResponse is one period's growth vs its predecessor.
type GrowthRateResponse struct {
	Period           string          `json:"period"`
	RevenueGrowthPct decimal.Decimal `json:"revenueGrowthPct"`
	ProfitGrowthPct  decimal.Decimal `json:"profitGrowthPct"`
}

// TrendReportResponse is the trend reporting surface.
type TrendReportResponse struct {
	Granularity    string               `json:"granularity"`
	Periods        []PeriodRowResponse  `json:"periods"`
	GrowthRates    []GrowthRateResponse `json:"growthRates"`
	TrendDirection string               `json:"trendDirection"`
}

// ExpensePeriodRowResponse is one period's ledger-derived expense total.
type ExpensePeriodRowResponse struct {
	Period string          `json:"period"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

// ToExpenseTrendResponse rounds an expense trend series for presentation.
func ToExpenseTrendResponse(series []domain.ExpensePeriodRow) []ExpensePeriodRowResponse {
	out := make([]ExpensePeriodRowResponse, len(series))
	for i, row := range series {
		out[i] = ExpensePeriodRowResponse{
			Period: row.Period,
			Amount: row.Amount.Round(2),
			Count:  row.Count,
		}
	}
	return out
}

// ToTrendReportResponse rounds a trend report for presentation.
func ToTrendReportResponse(report *domain.TrendReport) TrendReportResponse {
	resp := TrendReportResponse{
		Granularity:    string(report.Granularity),
		Periods:        make([]PeriodRowResponse, len(report.Periods)),
		GrowthRates:    make([]GrowthRateResponse, len(report.GrowthRates)),
		TrendDirection: string(report.Direction),
	}
	for i, p := range report.Periods {
		resp.Periods[i] = PeriodRowResponse{
			Period:  p.Period,
			Revenue: p.Revenue.Round(2),
			Cost:    p.Cost.Round(2),
			Profit:  p.Profit.Round(2),
			Margin:  p.Margin.Round(2),
			Count:   p.Count,
		}
	}
	for i, g := range report.GrowthRates {
		resp.GrowthRates[i] = GrowthRateResponse{
			Period:           g.Period,
			RevenueGrowthPct: g.RevenueGrowthPct.Round(2),
			ProfitGrowthPct:  g.ProfitGrowthPct.Round(2),
		}
	}
	return resp
}
