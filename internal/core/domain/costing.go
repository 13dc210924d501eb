package domain

import "github.com/shopspring/decimal"

// CostSource identifies which kind of evidence produced a job's effective cost.
// The order of the constants is the resolver's precedence order, highest first.
type CostSource string

const (
	SourceManualOverride   CostSource = "manual_override"
	SourceExternalRealCost CostSource = "external_real_cost"
	SourceTransactionLink  CostSource = "transaction_linked"
	SourceStoredActual     CostSource = "stored_actual"
	SourceTemplateEstimate CostSource = "template_estimate"
	SourceNone             CostSource = "none"
)

// QualityTier is a trust ranking for an effective cost figure.
type QualityTier string

const (
	QualityExcellent QualityTier = "excellent"
	QualityGood      QualityTier = "good"
	QualityFair      QualityTier = "fair"
	QualityNone      QualityTier = "none"
)

// QualityForSource maps a cost source onto its quality tier.
// Override and external real costs are the most trustworthy, linked
// transactions and previously stored actuals next, template estimates are
// estimates only, and "none" means no cost evidence at all.
func QualityForSource(source CostSource) QualityTier {
	switch source {
	case SourceManualOverride, SourceExternalRealCost:
		return QualityExcellent
	case SourceTransactionLink, SourceStoredActual:
		return QualityGood
	case SourceTemplateEstimate:
		return QualityFair
	default:
		return QualityNone
	}
}

// ResolvedCost is the Cost Resolver's answer for a single job.
type ResolvedCost struct {
	JobID   string          `json:"jobID"`
	Amount  decimal.Decimal `json:"amount"`
	Source  CostSource      `json:"source"`
	Quality QualityTier     `json:"quality"`
	// Estimate is the summed template-usage estimate when the job has usages.
	Estimate *decimal.Decimal `json:"estimate,omitempty"`
	// Variance is effective cost minus estimate; nil when either side is missing.
	Variance    *decimal.Decimal `json:"variance,omitempty"`
	VariancePct *decimal.Decimal `json:"variancePct,omitempty"`
	// Warnings lists malformed records that were skipped during resolution.
	Warnings []string `json:"warnings,omitempty"`
}

// HasCostData reports whether the resolution found any cost evidence.
func (r ResolvedCost) HasCostData() bool {
	return r.Source != SourceNone
}
