package domain

import "github.com/shopspring/decimal"

// CostTemplate ("blueprint") is a reusable cost/price estimate pattern.
// Read-only reference data supplied by the template library.
type CostTemplate struct {
	TemplateID         string          `json:"templateID"` // Primary Key (UUID)
	Name               string          `json:"name"`
	Type               string          `json:"type,omitempty"`
	EstimatedMaterials decimal.Decimal `json:"estimatedMaterials"`
	EstimatedLabor     decimal.Decimal `json:"estimatedLabor"`
	EstimatedOverhead  decimal.Decimal `json:"estimatedOverhead"`
	TargetPrice        decimal.Decimal `json:"targetPrice"`
	AuditFields
}

// EstimatedTotal is the template's full estimated cost.
func (t *CostTemplate) EstimatedTotal() decimal.Decimal {
	return t.EstimatedMaterials.Add(t.EstimatedLabor).Add(t.EstimatedOverhead)
}

// TemplateUsage links a job to one application of a cost template. The actual
// fields default to the template's estimate and may be overridden per use for
// variance tracking. A job may have zero, one, or many usages.
type TemplateUsage struct {
	UsageID    string `json:"usageID"` // Primary Key (UUID)
	JobID      string `json:"jobID"`
	TemplateID string `json:"templateID"`

	ActualMaterials *decimal.Decimal `json:"actualMaterials,omitempty"`
	ActualLabor     *decimal.Decimal `json:"actualLabor,omitempty"`
	ActualOverhead  *decimal.Decimal `json:"actualOverhead,omitempty"`
	ActualPrice     *decimal.Decimal `json:"actualPrice,omitempty"`
	AuditFields
}

// EstimatedTotalFor returns the usage's estimate, preferring per-use actuals
// over the template's figures field by field.
func (u *TemplateUsage) EstimatedTotalFor(tmpl *CostTemplate) decimal.Decimal {
	materials := tmpl.EstimatedMaterials
	if u.ActualMaterials != nil {
		materials = *u.ActualMaterials
	}
	labor := tmpl.EstimatedLabor
	if u.ActualLabor != nil {
		labor = *u.ActualLabor
	}
	overhead := tmpl.EstimatedOverhead
	if u.ActualOverhead != nil {
		overhead = *u.ActualOverhead
	}
	return materials.Add(labor).Add(overhead)
}
