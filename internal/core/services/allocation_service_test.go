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
	"github.com/profitlens/job_costing_app/internal/dto"
)

type AllocationServiceTestSuite struct {
	suite.Suite
	mockAllocationRepo  *MockAllocationRepository
	mockTransactionRepo *MockTransactionRepository
	mockJobRepo         *MockJobRepository
	service             portssvc.AllocationLedgerSvcFacade
}

func (suite *AllocationServiceTestSuite) SetupTest() {
	suite.mockAllocationRepo = new(MockAllocationRepository)
	suite.mockTransactionRepo = new(MockTransactionRepository)
	suite.mockJobRepo = new(MockJobRepository)
	suite.service = services.NewAllocationService(
		suite.mockAllocationRepo,
		suite.mockTransactionRepo,
		suite.mockJobRepo,
	)
}

func testTransaction(id string, amount string) *domain.Transaction {
	return &domain.Transaction{
		TransactionID: id,
		Amount:        decimal.RequireFromString(amount),
		Date:          time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Name:          "Materials wholesaler",
	}
}

func testJob(id string) *domain.Job {
	return &domain.Job{
		JobID:      id,
		ClientName: "Acme Builders",
		Revenue:    decimal.RequireFromString("5000.00"),
		IssueDate:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:     domain.JobSent,
	}
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func (suite *AllocationServiceTestSuite) TestAllocate_ByAmount() {
	ctx := context.Background()
	txnID := uuid.NewString()
	jobID := uuid.NewString()

	suite.mockTransactionRepo.On("FindTransactionByID", ctx, txnID).Return(testTransaction(txnID, "-3200.00"), nil).Once()
	suite.mockJobRepo.On("FindJobByID", ctx, jobID).Return(testJob(jobID), nil).Once()
	suite.mockAllocationRepo.On("UpsertAllocation", ctx, mock.MatchedBy(func(a domain.Allocation) bool {
		return a.TransactionID == txnID &&
			a.JobID == jobID &&
			a.Amount.Equal(decimal.RequireFromString("1600.00")) &&
			a.Percentage != nil && a.Percentage.Equal(decimal.RequireFromString("50"))
	})).Return(nil).Once()

	allocation, err := suite.service.Allocate(ctx, txnID, dto.AllocateRequest{
		JobID:  jobID,
		Amount: decPtr("1600.00"),
	}, "tester")

	suite.Require().NoError(err)
	suite.Require().NotNil(allocation)
	suite.True(allocation.Amount.Equal(decimal.RequireFromString("1600.00")))
	suite.Equal("tester", allocation.CreatedBy)

	suite.mockAllocationRepo.AssertExpectations(suite.T())
}

func (suite *AllocationServiceTestSuite) TestAllocate_ByPercentage() {
	ctx := context.Background()
	txnID := uuid.NewString()
	jobID := uuid.NewString()

	suite.mockTransactionRepo.On("FindTransactionByID", ctx, txnID).Return(testTransaction(txnID, "-3200.00"), nil).Once()
	suite.mockJobRepo.On("FindJobByID", ctx, jobID).Return(testJob(jobID), nil).Once()
	suite.mockAllocationRepo.On("UpsertAllocation", ctx, mock.MatchedBy(func(a domain.Allocation) bool {
		// 50% of |-3200.00| = 1600.00
		return a.Amount.Equal(decimal.RequireFromString("1600.00"))
	})).Return(nil).Once()

	allocation, err := suite.service.Allocate(ctx, txnID, dto.AllocateRequest{
		JobID:      jobID,
		Percentage: decPtr("50"),
	}, "tester")

	suite.Require().NoError(err)
	suite.True(allocation.Amount.Equal(decimal.RequireFromString("1600.00")))
}

func (suite *AllocationServiceTestSuite) TestAllocate_OverAllocationRejected() {
	ctx := context.Background()
	txnID := uuid.NewString()
	jobBID := uuid.NewString()

	// 1600.00 already attributed elsewhere; 1700.00 more would exceed
	// 3200.00 + 0.01.
	suite.mockTransactionRepo.On("FindTransactionByID", ctx, txnID).Return(testTransaction(txnID, "-3200.00"), nil).Once()
	suite.mockJobRepo.On("FindJobByID", ctx, jobBID).Return(testJob(jobBID), nil).Once()
	suite.mockAllocationRepo.On("UpsertAllocation", ctx, mock.Anything).Return(&apperrors.OverAllocationError{
		TransactionID: txnID,
		Attempted:     decimal.RequireFromString("1700.00"),
		CurrentTotal:  decimal.RequireFromString("1600.00"),
		Capacity:      decimal.RequireFromString("3200.00"),
	}).Once()

	_, err := suite.service.Allocate(ctx, txnID, dto.AllocateRequest{
		JobID:  jobBID,
		Amount: decPtr("1700.00"),
	}, "tester")

	suite.Require().Error(err)
	var overErr *apperrors.OverAllocationError
	suite.Require().ErrorAs(err, &overErr)
	suite.True(overErr.Attempted.Equal(decimal.RequireFromString("1700.00")))
	suite.True(overErr.CurrentTotal.Equal(decimal.RequireFromString("1600.00")))
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AllocationServiceTestSuite) TestAllocate_BothAmountAndPercentage() {
	ctx := context.Background()

	_, err := suite.service.Allocate(ctx, uuid.NewString(), dto.AllocateRequest{
		JobID:      uuid.NewString(),
		Amount:     decPtr("100.00"),
		Percentage: decPtr("10"),
	}, "tester")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAllocationRepo.AssertNotCalled(suite.T(), "UpsertAllocation", mock.Anything, mock.Anything)
}

func (suite *AllocationServiceTestSuite) TestAllocate_NeitherAmountNorPercentage() {
	ctx := context.Background()

	_, err := suite.service.Allocate(ctx, uuid.NewString(), dto.AllocateRequest{JobID: uuid.NewString()}, "tester")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AllocationServiceTestSuite) TestAllocate_PercentageOutOfRange() {
	ctx := context.Background()
	txnID := uuid.NewString()
	jobID := uuid.NewString()

	suite.mockTransactionRepo.On("FindTransactionByID", ctx, txnID).Return(testTransaction(txnID, "-3200.00"), nil).Once()
	suite.mockJobRepo.On("FindJobByID", ctx, jobID).Return(testJob(jobID), nil).Once()

	_, err := suite.service.Allocate(ctx, txnID, dto.AllocateRequest{
		JobID:      jobID,
		Percentage: decPtr("120"),
	}, "tester")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AllocationServiceTestSuite) TestAllocate_TransactionNotFound() {
	ctx := context.Background()
	txnID := uuid.NewString()

	suite.mockTransactionRepo.On("FindTransactionByID", ctx, txnID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.Allocate(ctx, txnID, dto.AllocateRequest{
		JobID:  uuid.NewString(),
		Amount: decPtr("100.00"),
	}, "tester")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AllocationServiceTestSuite) TestAllocationSummary_FullyAllocated() {
	ctx := context.Background()
	txnID := uuid.NewString()

	suite.mockTransactionRepo.On("FindTransactionByID", ctx, txnID).Return(testTransaction(txnID, "-3200.00"), nil).Once()
	suite.mockAllocationRepo.On("SumAllocationsForTransaction", ctx, txnID).Return(decimal.RequireFromString("3200.00"), nil).Once()

	summary, err := suite.service.AllocationSummary(ctx, txnID)

	suite.Require().NoError(err)
	suite.True(summary.TotalAllocated.Equal(decimal.RequireFromString("3200.00")))
	suite.True(summary.Remaining.IsZero())
	suite.True(summary.FullyAllocated)
}

func (suite *AllocationServiceTestSuite) TestAllocationSummary_PartiallyAllocated() {
	ctx := context.Background()
	txnID := uuid.NewString()

	suite.mockTransactionRepo.On("FindTransactionByID", ctx, txnID).Return(testTransaction(txnID, "-3200.00"), nil).Once()
	suite.mockAllocationRepo.On("SumAllocationsForTransaction", ctx, txnID).Return(decimal.RequireFromString("1600.00"), nil).Once()

	summary, err := suite.service.AllocationSummary(ctx, txnID)

	suite.Require().NoError(err)
	suite.True(summary.Remaining.Equal(decimal.RequireFromString("1600.00")))
	suite.False(summary.FullyAllocated)
}

func (suite *AllocationServiceTestSuite) TestUnlink_Success() {
	ctx := context.Background()
	allocationID := uuid.NewString()

	suite.mockAllocationRepo.On("DeleteAllocation", ctx, allocationID).Return(nil).Once()

	err := suite.service.Unlink(ctx, allocationID)

	suite.Require().NoError(err)
	suite.mockAllocationRepo.AssertExpectations(suite.T())
}

func TestAllocationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AllocationServiceTestSuite))
}
