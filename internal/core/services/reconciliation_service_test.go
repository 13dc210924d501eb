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

type ReconciliationServiceTestSuite struct {
	suite.Suite
	mockJobRepo        *MockJobRepository
	mockAllocationRepo *MockAllocationRepository
	mockTemplateRepo   *MockTemplateRepository
	mockOverrideRepo   *MockOverrideRepository
	mockExternalRepo   *MockExternalRepository
	service            portssvc.ReconciliationSvcFacade

	from time.Time
	to   time.Time
}

func (suite *ReconciliationServiceTestSuite) SetupTest() {
	suite.mockJobRepo = new(MockJobRepository)
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
	suite.service = services.NewReconciliationService(suite.mockJobRepo, suite.mockExternalRepo, profitability)

	suite.from = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.to = time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
}

// syncedJob builds an externally sourced job whose stored cost snapshot may
// have drifted from the figure recorded at sync time.
func syncedJob(revenue, storedCost, syncedCost string) domain.Job {
	job := rangeJob(uuid.NewString(), "plumbing", revenue, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	job.ExternallySourced = true
	stored := decimal.RequireFromString(storedCost)
	source := domain.SourceStoredActual
	job.Cost = &domain.CostSnapshot{Total: stored}
	job.CostDataSource = &source
	synced := decimal.RequireFromString(syncedCost)
	job.SyncedCostTotal = &synced
	return job
}

func (suite *ReconciliationServiceTestSuite) expectJobs(jobs ...domain.Job) {
	byID := make(map[string]domain.Job, len(jobs))
	for _, j := range jobs {
		byID[j.JobID] = j
	}
	suite.mockJobRepo.On("ListJobsByIssueDate", mock.Anything, suite.from, suite.to, 200, (*string)(nil)).
		Return(jobs, nil, nil).Once()
	suite.mockJobRepo.On("FindJobsByIDs", mock.Anything, mock.Anything).Return(byID, nil).Once()
	suite.mockAllocationRepo.On("SumAllocationsForJobs", mock.Anything, mock.Anything).Return(map[string]decimal.Decimal{}, nil)
	suite.mockExternalRepo.On("FindCostRecordsByJobIDs", mock.Anything, mock.Anything).Return(map[string][]domain.ExternalCostRecord{}, nil)
	suite.mockTemplateRepo.On("FindUsagesByJobIDs", mock.Anything, mock.Anything).Return(map[string][]domain.TemplateUsage{}, nil)
}

func (suite *ReconciliationServiceTestSuite) TestReconcile_MergedCombinesAllThreeParts() {
	// External side knows one synced job; a second job exists only locally,
	// and the synced job's cost was edited up by 100.00 after the sync.
	synced := syncedJob("5000.00", "3100.00", "3000.00")

	internalOnly := rangeJob(uuid.NewString(), "electrical", "2000.00", time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC))
	stored := decimal.RequireFromString("1200.00")
	source := domain.SourceStoredActual
	internalOnly.Cost = &domain.CostSnapshot{Total: stored}
	internalOnly.CostDataSource = &source

	suite.expectJobs(synced, internalOnly)
	suite.mockExternalRepo.On("FindPnLSummary", mock.Anything, suite.from, suite.to).Return(&domain.ExternalPnL{
		TotalIncome: decimal.RequireFromString("5000.00"),
		TotalCost:   decimal.RequireFromString("3000.00"),
		NetIncome:   decimal.RequireFromString("2000.00"),
	}, nil).Once()

	report, err := suite.service.Reconcile(context.Background(), suite.from, suite.to)

	suite.Require().NoError(err)
	suite.Require().NotNil(report.External)

	suite.Equal(1, report.Breakdown.ExternalJobs)
	suite.Equal(1, report.Breakdown.InternalOnlyJobs)
	suite.Equal(1, report.Breakdown.EditedAfterSync)
	suite.True(report.Breakdown.EditDeltaCost.Equal(decimal.RequireFromString("100.00")))

	// Merged revenue 5000 + 2000; merged cost 3000 + 1200 + 100.
	suite.True(report.Merged.Revenue.Equal(decimal.RequireFromString("7000.00")))
	suite.True(report.Merged.Cost.Equal(decimal.RequireFromString("4300.00")))
	suite.True(report.Merged.Profit.Equal(decimal.RequireFromString("2700.00")))

	suite.True(report.Internal.Revenue.Equal(decimal.RequireFromString("7000.00")))
	suite.True(report.Internal.Cost.Equal(decimal.RequireFromString("4300.00")))

	suite.True(report.Discrepancy.Revenue.Equal(decimal.RequireFromString("-2000.00")))
	suite.NotEmpty(report.Discrepancy.Note)
}

func (suite *ReconciliationServiceTestSuite) TestReconcile_NoExternalSummaryFallsBackToInternal() {
	job := rangeJob(uuid.NewString(), "plumbing", "1000.00", time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC))
	stored := decimal.RequireFromString("600.00")
	source := domain.SourceStoredActual
	job.Cost = &domain.CostSnapshot{Total: stored}
	job.CostDataSource = &source

	suite.expectJobs(job)
	suite.mockExternalRepo.On("FindPnLSummary", mock.Anything, suite.from, suite.to).Return(nil, apperrors.ErrNotFound).Once()

	report, err := suite.service.Reconcile(context.Background(), suite.from, suite.to)

	suite.Require().NoError(err)
	suite.Nil(report.External)
	suite.True(report.Merged.Revenue.Equal(report.Internal.Revenue))
	suite.True(report.Merged.Cost.Equal(report.Internal.Cost))
	suite.False(report.Recommendation.PreferExternal)
}

func (suite *ReconciliationServiceTestSuite) TestReconcile_PrefersExternalOnCloseAgreement() {
	// Fully synced, unedited job: merged equals external exactly and the one
	// job carries good-quality cost data, so coverage is 100 percent.
	synced := syncedJob("5000.00", "3000.00", "3000.00")

	suite.expectJobs(synced)
	suite.mockExternalRepo.On("FindPnLSummary", mock.Anything, suite.from, suite.to).Return(&domain.ExternalPnL{
		TotalIncome: decimal.RequireFromString("5000.00"),
		TotalCost:   decimal.RequireFromString("3000.00"),
		NetIncome:   decimal.RequireFromString("2000.00"),
	}, nil).Once()

	report, err := suite.service.Reconcile(context.Background(), suite.from, suite.to)

	suite.Require().NoError(err)
	suite.True(report.Recommendation.PreferExternal)
	suite.True(report.Recommendation.CoveragePct.Equal(decimal.RequireFromString("100")))
}

func (suite *ReconciliationServiceTestSuite) TestReconcile_LargeDiscrepancyBlocksExternalPreference() {
	// The cost was edited up by 500.00 after the sync, pushing the merged
	// total well past the agreement tolerance.
	synced := syncedJob("5000.00", "3500.00", "3000.00")

	suite.expectJobs(synced)
	suite.mockExternalRepo.On("FindPnLSummary", mock.Anything, suite.from, suite.to).Return(&domain.ExternalPnL{
		TotalIncome: decimal.RequireFromString("5000.00"),
		TotalCost:   decimal.RequireFromString("3000.00"),
		NetIncome:   decimal.RequireFromString("2000.00"),
	}, nil).Once()

	report, err := suite.service.Reconcile(context.Background(), suite.from, suite.to)

	suite.Require().NoError(err)
	suite.True(report.Discrepancy.Cost.Equal(decimal.RequireFromString("-500.00")))
	suite.False(report.Recommendation.PreferExternal)
}

func (suite *ReconciliationServiceTestSuite) TestReconcile_LowCoverageMessage() {
	// Four jobs, none with cost evidence: coverage 0 percent.
	jobs := make([]domain.Job, 4)
	for i := range jobs {
		jobs[i] = rangeJob(uuid.NewString(), "hvac", "1000.00", time.Date(2025, 1, 5+i, 0, 0, 0, 0, time.UTC))
	}

	suite.expectJobs(jobs...)
	suite.mockExternalRepo.On("FindPnLSummary", mock.Anything, suite.from, suite.to).Return(nil, apperrors.ErrNotFound).Once()

	report, err := suite.service.Reconcile(context.Background(), suite.from, suite.to)

	suite.Require().NoError(err)
	suite.True(report.Recommendation.CoveragePct.IsZero())
	suite.Contains(report.Recommendation.Message, "needs improvement")
}

func (suite *ReconciliationServiceTestSuite) TestReconcile_RejectsInvertedRange() {
	_, err := suite.service.Reconcile(context.Background(), suite.to, suite.from)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestReconciliationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}
