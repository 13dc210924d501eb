package services

import (
	"context"
	"time"

	"github.com/profitlens/job_costing_app/internal/core/domain"
	"github.com/profitlens/job_costing_app/internal/dto"
	"github.com/shopspring/decimal"
)

// ProfitabilitySvcFacade derives profit, margin, and variance figures from
// resolved costs and aggregates them across job sets.
type ProfitabilitySvcFacade interface {
	// JobProfitability computes revenue, effective cost, profit, and margin
	// for one job.
	JobProfitability(ctx context.Context, jobID string) (*domain.JobProfitability, error)

	// ProfitabilityForJobs computes per-job profitability for a batch using a
	// single resolution pass.
	ProfitabilityForJobs(ctx context.Context, jobs []domain.Job) ([]domain.JobProfitability, error)

	// ProfitabilityForRange loads jobs issued in [from, to] and computes
	// their profitability.
	ProfitabilityForRange(ctx context.Context, from, to time.Time) ([]domain.JobProfitability, error)

	// Aggregate groups jobs issued in [from, to] by the given key and sums
	// revenue/cost/profit per group.
	Aggregate(ctx context.Context, from, to time.Time, groupBy dto.GroupKey) (*domain.AggregateReport, error)

	// LowMarginJobs filters jobs below the margin threshold. Jobs without
	// cost data are excluded, never treated as 100% margin.
	LowMarginJobs(profs []domain.JobProfitability, threshold decimal.Decimal) []domain.JobProfitability

	// HighMarginJobs returns the top jobs by margin.
	HighMarginJobs(profs []domain.JobProfitability, limit int) []domain.JobProfitability

	// NegativeProfitJobs returns loss-making jobs, most negative first, and
	// the total revenue lost across them.
	NegativeProfitJobs(profs []domain.JobProfitability) ([]domain.JobProfitability, decimal.Decimal)

	// MarginAlerts produces the structured alert set for jobs issued in
	// [from, to].
	MarginAlerts(ctx context.Context, from, to time.Time, opts dto.MarginAlertOptions) (*domain.MarginAlertReport, error)
}
