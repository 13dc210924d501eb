package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JobProfitability is the per-job reporting object derived from a resolved cost.
type JobProfitability struct {
	JobID       string          `json:"jobID"`
	ClientName  string          `json:"clientName"`
	ServiceType string          `json:"serviceType,omitempty"`
	IssueDate   time.Time       `json:"issueDate"`
	Revenue     decimal.Decimal `json:"revenue"`
	Cost        ResolvedCost    `json:"cost"`
	Profit      decimal.Decimal `json:"profit"`
	Margin      decimal.Decimal `json:"margin"` // Percent of revenue; 0 when revenue is 0
}

// ProfitGroup is one row of an aggregate profitability report.
// Margin is groupProfit / groupRevenue, not an average of job margins, so
// small jobs cannot skew the aggregate. Mean/median of the individual margins
// are carried separately for low/high-margin reporting.
type ProfitGroup struct {
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

// AggregateSummary rolls an aggregate report up into headline figures.
type AggregateSummary struct {
	TotalJobs        int             `json:"totalJobs"`
	JobsWithCostData int             `json:"jobsWithCostData"`
	AverageMargin    decimal.Decimal `json:"averageMargin"`
	MedianMargin     decimal.Decimal `json:"medianMargin"`
}

// AggregateReport groups per-job profitability by an arbitrary key.
type AggregateReport struct {
	Groups  []ProfitGroup    `json:"groups"`
	Summary AggregateSummary `json:"summary"`
}

// CostSpike flags a job whose effective cost overran its template estimate.
type CostSpike struct {
	JobID      string          `json:"jobID"`
	ClientName string          `json:"clientName"`
	Estimate   decimal.Decimal `json:"estimate"`
	Effective  decimal.Decimal `json:"effective"`
	OverrunPct decimal.Decimal `json:"overrunPct"`
}

// TemplatePerformance reports a template's average margin across its usages.
type TemplatePerformance struct {
	TemplateID    string          `json:"templateID"`
	TemplateName  string          `json:"templateName"`
	UsageCount    int             `json:"usageCount"`
	AverageMargin decimal.Decimal `json:"averageMargin"`
}

// MarginAlertReport is the structured alert set for margin monitoring.
// MissingCostData is informational: those jobs lack evidence, they are not
// known to be performing badly.
type MarginAlertReport struct {
	LowMarginJobs            []JobProfitability    `json:"lowMarginJobs"`
	NegativeProfitJobs       []JobProfitability    `json:"negativeProfitJobs"`
	TotalRevenueLost         decimal.Decimal       `json:"totalRevenueLost"`
	CostSpikes               []CostSpike           `json:"costSpikes"`
	UnderperformingTemplates []TemplatePerformance `json:"underperformingTemplates"`
	DecliningTrend           bool                  `json:"decliningTrend"`
	MissingCostData          []string              `json:"missingCostData"` // Job IDs
	Recommendations          []string              `json:"recommendations"`
}
