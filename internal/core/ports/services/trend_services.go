package services

import (
	"context"
	"time"

	"github.com/profitlens/job_costing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TrendSvcFacade buckets jobs and ledger-derived expenses into calendar
// periods and classifies growth.
type TrendSvcFacade interface {
	// TrendReport builds the full period series, growth rates, and direction
	// for jobs issued in [from, to].
	TrendReport(ctx context.Context, from, to time.Time, granularity domain.PeriodGranularity) (*domain.TrendReport, error)

	// PeriodSeries buckets per-job profitability into ascending periods with
	// the same aggregation semantics as the Profitability Calculator.
	PeriodSeries(profs []domain.JobProfitability, granularity domain.PeriodGranularity) []domain.PeriodRow

	// GrowthRates computes period-over-period revenue and profit growth.
	// Growth is exactly 0 when the prior period's value was 0.
	GrowthRates(series []domain.PeriodRow) []domain.GrowthRate

	// TrendDirection compares the mean of the latest three periods against
	// the preceding three.
	TrendDirection(series []domain.PeriodRow) domain.TrendDirection

	// DecliningMarginAlert reports whether margins declined by more than
	// declineThresholdPct absolute points between the halves of the lookback
	// window. Requires at least six observations.
	DecliningMarginAlert(margins []decimal.Decimal, lookback int, declineThresholdPct decimal.Decimal) bool

	// ExpenseTrend buckets ledger expense transactions dated in [from, to]
	// into periods.
	ExpenseTrend(ctx context.Context, from, to time.Time, granularity domain.PeriodGranularity) ([]domain.ExpensePeriodRow, error)
}
