package models

import "github.com/shopspring/decimal"

// CostTemplate is a reusable cost/price estimate pattern row.
type CostTemplate struct {
	TemplateID         string          `db:"template_id"`
	Name               string          `db:"name"`
	Type               string          `db:"type"`
	EstimatedMaterials decimal.Decimal `db:"estimated_materials"`
	EstimatedLabor     decimal.Decimal `db:"estimated_labor"`
	EstimatedOverhead  decimal.Decimal `db:"estimated_overhead"`
	TargetPrice        decimal.Decimal `db:"target_price"`
	AuditFields
}

// TemplateUsage links a job to one application of a template.
type TemplateUsage struct {
	UsageID         string           `db:"usage_id"`
	JobID           string           `db:"job_id"`
	TemplateID      string           `db:"template_id"`
	ActualMaterials *decimal.Decimal `db:"actual_materials"`
	ActualLabor     *decimal.Decimal `db:"actual_labor"`
	ActualOverhead  *decimal.Decimal `db:"actual_overhead"`
	ActualPrice     *decimal.Decimal `db:"actual_price"`
	AuditFields
}
