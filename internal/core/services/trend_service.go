package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/profitlens/job_costing_app/internal/apperrors"
	"github.com/profitlens/job_costing_app/internal/core/domain"
	portsrepo "github.com/profitlens/job_costing_app/internal/core/ports/repositories"
	portssvc "github.com/profitlens/job_costing_app/internal/core/ports/services"
	"github.com/profitlens/job_costing_app/internal/utils/analytics"
)

// trendService buckets jobs and ledger expenses into calendar periods.
type trendService struct {
	BaseService
	transactionRepo portsrepo.TransactionRepositoryFacade
	profitability   portssvc.ProfitabilitySvcFacade
}

// NewTrendService creates a new trend service.
func NewTrendService(
	transactionRepo portsrepo.TransactionRepositoryFacade,
	profitability portssvc.ProfitabilitySvcFacade,
) portssvc.TrendSvcFacade {
	return &trendService{
		transactionRepo: transactionRepo,
		profitability:   profitability,
	}
}

var _ portssvc.TrendSvcFacade = (*trendService)(nil)

func validGranularity(g domain.PeriodGranularity) bool {
	switch g {
	case domain.GranularityMonth, domain.GranularityQuarter, domain.GranularityYear:
		return true
	}
	return false
}

// TrendReport builds the full period series, growth rates, and direction for
// jobs issued in [from, to].
func (s *trendService) TrendReport(ctx context.Context, from, to time.Time, granularity domain.PeriodGranularity) (*domain.TrendReport, error) {
	if !validGranularity(granularity) {
		return nil, fmt.Errorf("%w: unsupported granularity %q", apperrors.ErrValidation, granularity)
	}

	profs, err := s.profitability.ProfitabilityForRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	series := s.PeriodSeries(profs, granularity)
	report := &domain.TrendReport{
		Granularity: granularity,
		Periods:     series,
		GrowthRates: s.GrowthRates(series),
		Direction:   s.TrendDirection(series),
	}

	s.LogInfo(ctx, "Trend report built",
		slog.String("granularity", string(granularity)),
		slog.Int("periods", len(series)),
		slog.String("direction", string(report.Direction)))
	return report, nil
}

// PeriodSeries buckets per-job profitability into ascending calendar periods.
// Period margin comes from the period sums, matching the aggregate report.
// Periods with no jobs do not appear; the series is sparse by design of the
// bucket keys, which sort chronologically as strings.
func (s *trendService) PeriodSeries(profs []domain.JobProfitability, granularity domain.PeriodGranularity) []domain.PeriodRow {
	buckets := make(map[string]*domain.PeriodRow)
	for _, p := range profs {
		key := analytics.PeriodKey(p.IssueDate, granularity)
		row, ok := buckets[key]
		if !ok {
			row = &domain.PeriodRow{Period: key}
			buckets[key] = row
		}
		row.Revenue = row.Revenue.Add(p.Revenue)
		row.Cost = row.Cost.Add(p.Cost.Amount)
		row.Profit = row.Profit.Add(p.Profit)
		row.Count++
	}

	series := make([]domain.PeriodRow, 0, len(buckets))
	for _, row := range buckets {
		row.Margin = analytics.Margin(row.Profit, row.Revenue)
		series = append(series, *row)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Period < series[j].Period })
	return series
}

// GrowthRates computes period-over-period growth. The first period has no
// predecessor and is skipped.
func (s *trendService) GrowthRates(series []domain.PeriodRow) []domain.GrowthRate {
	if len(series) < 2 {
		return []domain.GrowthRate{}
	}
	rates := make([]domain.GrowthRate, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		rates = append(rates, domain.GrowthRate{
			Period:           series[i].Period,
			RevenueGrowthPct: analytics.GrowthPct(series[i].Revenue, series[i-1].Revenue),
			ProfitGrowthPct:  analytics.GrowthPct(series[i].Profit, series[i-1].Profit),
		})
	}
	return rates
}

// TrendDirection classifies the revenue series movement.
func (s *trendService) TrendDirection(series []domain.PeriodRow) domain.TrendDirection {
	revenues := make([]decimal.Decimal, len(series))
	for i, row := range series {
		revenues[i] = row.Revenue
	}
	return analytics.TrendDirection(revenues)
}

// DecliningMarginAlert reports a half-over-half margin decline within the
// lookback window.
func (s *trendService) DecliningMarginAlert(margins []decimal.Decimal, lookback int, declineThresholdPct decimal.Decimal) bool {
	return analytics.DecliningMargin(margins, lookback, declineThresholdPct)
}

// ExpenseTrend buckets ledger expense transactions dated in [from, to] into
// periods by transaction magnitude.
func (s *trendService) ExpenseTrend(ctx context.Context, from, to time.Time, granularity domain.PeriodGranularity) ([]domain.ExpensePeriodRow, error) {
	if !validGranularity(granularity) {
		return nil, fmt.Errorf("%w: unsupported granularity %q", apperrors.ErrValidation, granularity)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end precedes range start", apperrors.ErrValidation)
	}

	transactions, err := s.transactionRepo.ListExpenseTransactions(ctx, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to list expense transactions")
		return nil, fmt.Errorf("failed to list expense transactions: %w", err)
	}

	buckets := make(map[string]*domain.ExpensePeriodRow)
	for i := range transactions {
		t := &transactions[i]
		if !t.IsExpense() {
			continue
		}
		key := analytics.PeriodKey(t.Date, granularity)
		row, ok := buckets[key]
		if !ok {
			row = &domain.ExpensePeriodRow{Period: key}
			buckets[key] = row
		}
		row.Amount = row.Amount.Add(t.Magnitude())
		row.Count++
	}

	series := make([]domain.ExpensePeriodRow, 0, len(buckets))
	for _, row := range buckets {
		series = append(series, *row)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Period < series[j].Period })
	return series, nil
}
