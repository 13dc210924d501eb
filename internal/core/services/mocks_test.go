package services_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/profitlens/job_costing_app/internal/core/domain"
)

// --- Mock JobRepository ---
type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) FindJobByID(ctx context.Context, jobID string) (*domain.Job, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobRepository) FindJobsByIDs(ctx context.Context, jobIDs []string) (map[string]domain.Job, error) {
	args := m.Called(ctx, jobIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Job), args.Error(1)
}

func (m *MockJobRepository) ListJobsByIssueDate(ctx context.Context, from, to time.Time, limit int, nextToken *string) ([]domain.Job, *string, error) {
	args := m.Called(ctx, from, to, limit, nextToken)
	var jobs []domain.Job
	if args.Get(0) != nil {
		jobs = args.Get(0).([]domain.Job)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return jobs, token, args.Error(2)
}

func (m *MockJobRepository) UpdateJobCost(ctx context.Context, jobID string, snapshot *domain.CostSnapshot, source *domain.CostSource, overridden bool, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, jobID, snapshot, source, overridden, updatedBy, updatedAt)
	return args.Error(0)
}

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListExpenseTransactions(ctx context.Context, from, to time.Time) ([]domain.Transaction, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

// --- Mock AllocationRepository ---
type MockAllocationRepository struct {
	mock.Mock
}

func (m *MockAllocationRepository) UpsertAllocation(ctx context.Context, allocation domain.Allocation) error {
	args := m.Called(ctx, allocation)
	return args.Error(0)
}

func (m *MockAllocationRepository) DeleteAllocation(ctx context.Context, allocationID string) error {
	args := m.Called(ctx, allocationID)
	return args.Error(0)
}

func (m *MockAllocationRepository) FindAllocationByID(ctx context.Context, allocationID string) (*domain.Allocation, error) {
	args := m.Called(ctx, allocationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Allocation), args.Error(1)
}

func (m *MockAllocationRepository) FindAllocationsByTransactionID(ctx context.Context, transactionID string) ([]domain.AllocationDetail, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AllocationDetail), args.Error(1)
}

func (m *MockAllocationRepository) FindAllocationsByJobID(ctx context.Context, jobID string) ([]domain.AllocationDetail, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AllocationDetail), args.Error(1)
}

func (m *MockAllocationRepository) SumAllocationsForTransaction(ctx context.Context, transactionID string) (decimal.Decimal, error) {
	args := m.Called(ctx, transactionID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockAllocationRepository) SumAllocationsForJobs(ctx context.Context, jobIDs []string) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, jobIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

// --- Mock TemplateRepository ---
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) FindTemplateByID(ctx context.Context, templateID string) (*domain.CostTemplate, error) {
	args := m.Called(ctx, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CostTemplate), args.Error(1)
}

func (m *MockTemplateRepository) FindTemplatesByIDs(ctx context.Context, templateIDs []string) (map[string]domain.CostTemplate, error) {
	args := m.Called(ctx, templateIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.CostTemplate), args.Error(1)
}

func (m *MockTemplateRepository) FindUsagesByJobID(ctx context.Context, jobID string) ([]domain.TemplateUsage, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TemplateUsage), args.Error(1)
}

func (m *MockTemplateRepository) FindUsagesByJobIDs(ctx context.Context, jobIDs []string) (map[string][]domain.TemplateUsage, error) {
	args := m.Called(ctx, jobIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.TemplateUsage), args.Error(1)
}

// --- Mock OverrideRepository ---
type MockOverrideRepository struct {
	mock.Mock
}

func (m *MockOverrideRepository) SaveOverride(ctx context.Context, override domain.CostOverride) error {
	args := m.Called(ctx, override)
	return args.Error(0)
}

func (m *MockOverrideRepository) FindOverridesByJobID(ctx context.Context, jobID string) ([]domain.CostOverride, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CostOverride), args.Error(1)
}

// --- Mock ExternalRepository ---
type MockExternalRepository struct {
	mock.Mock
}

func (m *MockExternalRepository) FindCostRecordsByJobIDs(ctx context.Context, jobIDs []string) (map[string][]domain.ExternalCostRecord, error) {
	args := m.Called(ctx, jobIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.ExternalCostRecord), args.Error(1)
}

func (m *MockExternalRepository) FindPnLSummary(ctx context.Context, from, to time.Time) (*domain.ExternalPnL, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExternalPnL), args.Error(1)
}
