package domain

import "github.com/shopspring/decimal"

// PeriodGranularity selects the calendar bucket for trend analysis.
// It is a configuration choice, never auto-detected.
type PeriodGranularity string

const (
	GranularityMonth   PeriodGranularity = "month"   // YYYY-MM
	GranularityQuarter PeriodGranularity = "quarter" // YYYY-Qn
	GranularityYear    PeriodGranularity = "year"    // YYYY
)

// TrendDirection is the coarse classification of a recent series movement.
type TrendDirection string

const (
	TrendGrowing   TrendDirection = "growing"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// PeriodRow is one period's aggregate in a trend series, ordered ascending.
type PeriodRow struct {
	Period  string          `json:"period"` // Bucket key, e.g. "2025-03", "2025-Q1", "2025"
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
	Margin  decimal.Decimal `json:"margin"`
	Count   int             `json:"count"`
}

// GrowthRate is the period-over-period percentage change for one period.
// Growth is 0, not infinite, when the prior period's value was 0.
type GrowthRate struct {
	Period           string          `json:"period"`
	RevenueGrowthPct decimal.Decimal `json:"revenueGrowthPct"`
	ProfitGrowthPct  decimal.Decimal `json:"profitGrowthPct"`
}

// TrendReport is the full trend reporting surface.
type TrendReport struct {
	Granularity PeriodGranularity `json:"granularity"`
	Periods     []PeriodRow       `json:"periods"`
	GrowthRates []GrowthRate      `json:"growthRates"`
	Direction   TrendDirection    `json:"trendDirection"`
}

// ExpensePeriodRow is one period's ledger-derived expense total.
type ExpensePeriodRow struct {
	Period string          `json:"period"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}
