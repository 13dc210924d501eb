package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/profitlens/job_costing_app/internal/apperrors"
	"github.com/profitlens/job_costing_app/internal/core/domain"
	portssvc "github.com/profitlens/job_costing_app/internal/core/ports/services"
	"github.com/profitlens/job_costing_app/internal/core/services"
)

type TrendServiceTestSuite struct {
	suite.Suite
	mockJobRepo         *MockJobRepository
	mockTransactionRepo *MockTransactionRepository
	mockAllocationRepo  *MockAllocationRepository
	mockTemplateRepo    *MockTemplateRepository
	mockOverrideRepo    *MockOverrideRepository
	mockExternalRepo    *MockExternalRepository
	service             portssvc.TrendSvcFacade
}

func (suite *TrendServiceTestSuite) SetupTest() {
	suite.mockJobRepo = new(MockJobRepository)
	suite.mockTransactionRepo = new(MockTransactionRepository)
	suite.mockAllocationRepo = new(MockAllocationRepository)
	suite.mockTemplateRepo = new(MockTemplateRepository)
	suite.mockOverrideRepo = new(MockOverrideRepository)
	suite.mockExternalRepo = new(MockExternalRepository)
	costing := services.NewCostingService(
		suite.mockJobRepo,
		suite.mockAllocationRepo,
		suite.mockTemplateRepo,
		suite.mockOverrideRepo,
		suite.mockExternalRepo,
	)
	profitability := services.NewProfitabilityService(suite.mockJobRepo, suite.mockTemplateRepo, costing)
	suite.service = services.NewTrendService(suite.mockTransactionRepo, profitability)
}

func trendProf(revenue, cost string, issue time.Time) domain.JobProfitability {
	rev := decimal.RequireFromString(revenue)
	c := decimal.RequireFromString(cost)
	profit := rev.Sub(c)
	return domain.JobProfitability{
		JobID:     uuid.NewString(),
		IssueDate: issue,
		Revenue:   rev,
		Cost:      domain.ResolvedCost{Amount: c, Source: domain.SourceStoredActual},
		Profit:    profit,
	}
}

func (suite *TrendServiceTestSuite) TestPeriodSeries_MonthlyBuckets() {
	profs := []domain.JobProfitability{
		trendProf("1000.00", "600.00", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)),
		trendProf("2000.00", "1000.00", time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)),
		trendProf("1500.00", "900.00", time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)),
	}

	series := suite.service.PeriodSeries(profs, domain.GranularityMonth)

	suite.Require().Len(series, 2)
	suite.Equal("2025-01", series[0].Period)
	suite.Equal(2, series[0].Count)
	suite.True(series[0].Revenue.Equal(decimal.RequireFromString("3000.00")))
	suite.True(series[0].Profit.Equal(decimal.RequireFromString("1400.00")))
	// Period margin comes from the period sums: 1400 / 3000.
	suite.True(series[0].Margin.Sub(decimal.RequireFromString("46.67")).Abs().LessThan(decimal.RequireFromString("0.01")))
	suite.Equal("2025-02", series[1].Period)
	suite.Equal(1, series[1].Count)
}

func (suite *TrendServiceTestSuite) TestPeriodSeries_QuarterlyBuckets() {
	profs := []domain.JobProfitability{
		trendProf("1000.00", "500.00", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)),
		trendProf("1000.00", "500.00", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)),
		trendProf("1000.00", "500.00", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)),
	}

	series := suite.service.PeriodSeries(profs, domain.GranularityQuarter)

	suite.Require().Len(series, 2)
	suite.Equal("2025-Q1", series[0].Period)
	suite.Equal(2, series[0].Count)
	suite.Equal("2025-Q3", series[1].Period)
}

func (suite *TrendServiceTestSuite) TestGrowthRates_SkipsFirstPeriod() {
	series := []domain.PeriodRow{
		{Period: "2025-01", Revenue: decimal.RequireFromString("1000"), Profit: decimal.RequireFromString("400")},
		{Period: "2025-02", Revenue: decimal.RequireFromString("1500"), Profit: decimal.RequireFromString("500")},
		{Period: "2025-03", Revenue: decimal.RequireFromString("1200"), Profit: decimal.RequireFromString("300")},
	}

	rates := suite.service.GrowthRates(series)

	suite.Require().Len(rates, 2)
	suite.Equal("2025-02", rates[0].Period)
	suite.True(rates[0].RevenueGrowthPct.Equal(decimal.RequireFromString("50")))
	suite.True(rates[0].ProfitGrowthPct.Equal(decimal.RequireFromString("25")))
	suite.Equal("2025-03", rates[1].Period)
	suite.True(rates[1].RevenueGrowthPct.Equal(decimal.RequireFromString("-20")))
}

func (suite *TrendServiceTestSuite) TestGrowthRates_ZeroPriorPeriod() {
	series := []domain.PeriodRow{
		{Period: "2025-01"},
		{Period: "2025-02", Revenue: decimal.RequireFromString("1500")},
	}

	rates := suite.service.GrowthRates(series)

	suite.Require().Len(rates, 1)
	// Growth from a zero base reads as exactly zero, never an infinity.
	suite.True(rates[0].RevenueGrowthPct.IsZero())
}

func (suite *TrendServiceTestSuite) TestTrendDirection_Growing() {
	series := make([]domain.PeriodRow, 6)
	for i := range series {
		series[i] = domain.PeriodRow{Revenue: decimal.NewFromInt(int64(1000 + i*200))}
	}

	suite.Equal(domain.TrendGrowing, suite.service.TrendDirection(series))
}

func (suite *TrendServiceTestSuite) TestTrendDirection_ShortSeriesIsStable() {
	series := []domain.PeriodRow{
		{Revenue: decimal.RequireFromString("5000")},
		{Revenue: decimal.RequireFromString("100")},
	}

	suite.Equal(domain.TrendStable, suite.service.TrendDirection(series))
}

func (suite *TrendServiceTestSuite) TestDecliningMarginAlert() {
	margins := []decimal.Decimal{
		decimal.RequireFromString("40"),
		decimal.RequireFromString("38"),
		decimal.RequireFromString("36"),
		decimal.RequireFromString("34"),
		decimal.RequireFromString("30"),
		decimal.RequireFromString("25"),
	}

	suite.True(suite.service.DecliningMarginAlert(margins, 0, decimal.RequireFromString("5")))
	suite.False(suite.service.DecliningMarginAlert(margins, 0, decimal.RequireFromString("10")))
}

func (suite *TrendServiceTestSuite) TestTrendReport_InvalidGranularity() {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := suite.service.TrendReport(context.Background(), from, from.AddDate(1, 0, 0), domain.PeriodGranularity("week"))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TrendServiceTestSuite) TestTrendReport_EndToEnd() {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)

	january := rangeJob(uuid.NewString(), "plumbing", "1000.00", time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	february := rangeJob(uuid.NewString(), "plumbing", "2000.00", time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC))

	suite.mockJobRepo.On("ListJobsByIssueDate", mock.Anything, from, to, 200, (*string)(nil)).
		Return([]domain.Job{january, february}, nil, nil).Once()
	suite.mockAllocationRepo.On("SumAllocationsForJobs", mock.Anything, mock.Anything).Return(map[string]decimal.Decimal{
		january.JobID:  decimal.RequireFromString("600.00"),
		february.JobID: decimal.RequireFromString("1000.00"),
	}, nil)
	suite.mockExternalRepo.On("FindCostRecordsByJobIDs", mock.Anything, mock.Anything).Return(map[string][]domain.ExternalCostRecord{}, nil)
	suite.mockTemplateRepo.On("FindUsagesByJobIDs", mock.Anything, mock.Anything).Return(map[string][]domain.TemplateUsage{}, nil)

	report, err := suite.service.TrendReport(context.Background(), from, to, domain.GranularityMonth)

	suite.Require().NoError(err)
	suite.Require().Len(report.Periods, 2)
	suite.Require().Len(report.GrowthRates, 1)
	suite.True(report.GrowthRates[0].RevenueGrowthPct.Equal(decimal.RequireFromString("100")))
	suite.Equal(domain.TrendStable, report.Direction)
}

func (suite *TrendServiceTestSuite) TestExpenseTrend_BucketsByMagnitude() {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)

	suite.mockTransactionRepo.On("ListExpenseTransactions", mock.Anything, from, to).Return([]domain.Transaction{
		{
			TransactionID: uuid.NewString(),
			Amount:        decimal.RequireFromString("-300.00"),
			Date:          time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			TransactionID: uuid.NewString(),
			Amount:        decimal.RequireFromString("-200.00"),
			Date:          time.Date(2025, 1, 18, 0, 0, 0, 0, time.UTC),
		},
		{
			TransactionID: uuid.NewString(),
			Amount:        decimal.RequireFromString("-150.00"),
			Date:          time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC),
		},
	}, nil).Once()

	series, err := suite.service.ExpenseTrend(context.Background(), from, to, domain.GranularityMonth)

	suite.Require().NoError(err)
	suite.Require().Len(series, 2)
	suite.Equal("2025-01", series[0].Period)
	suite.Equal(2, series[0].Count)
	suite.True(series[0].Amount.Equal(decimal.RequireFromString("500.00")))
	suite.True(series[1].Amount.Equal(decimal.RequireFromString("150.00")))
}

func (suite *TrendServiceTestSuite) TestExpenseTrend_RejectsInvertedRange() {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := suite.service.ExpenseTrend(context.Background(), from, from.AddDate(0, -1, 0), domain.GranularityMonth)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestTrendServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TrendServiceTestSuite))
}
