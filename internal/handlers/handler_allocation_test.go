package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/profitlens/job_costing_app/internal/apperrors"
	"github.com/profitlens/job_costing_app/internal/core/domain"
	portssvc "github.com/profitlens/job_costing_app/internal/core/ports/services"
	"github.com/profitlens/job_costing_app/internal/dto"
	"github.com/profitlens/job_costing_app/internal/middleware"
)

// --- Mock AllocationService ---
type MockAllocationService struct {
	mock.Mock
}

func (m *MockAllocationService) Allocate(ctx context.Context, transactionID string, req dto.AllocateRequest, actorID string) (*domain.Allocation, error) {
	args := m.Called(ctx, transactionID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Allocation), args.Error(1)
}
func (m *MockAllocationService) Unlink(ctx context.Context, allocationID string) error {
	args := m.Called(ctx, allocationID)
	return args.Error(0)
}
func (m *MockAllocationService) AllocationsForTransaction(ctx context.Context, transactionID string) ([]domain.AllocationDetail, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AllocationDetail), args.Error(1)
}
func (m *MockAllocationService) AllocationsForJob(ctx context.Context, jobID string) ([]domain.AllocationDetail, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AllocationDetail), args.Error(1)
}
func (m *MockAllocationService) AllocationSummary(ctx context.Context, transactionID string) (*domain.AllocationSummary, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AllocationSummary), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.AllocationLedgerSvcFacade = (*MockAllocationService)(nil)

// --- Test Suite ---
type AllocationHandlerTestSuite struct {
	suite.Suite
	router                *gin.Engine
	mockAllocationService *MockAllocationService
}

func (suite *AllocationHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	registerValidations()
	suite.router = gin.New()
	suite.router.Use(middleware.ActorMiddleware())

	suite.mockAllocationService = new(MockAllocationService)

	v1 := suite.router.Group("/api/v1")
	registerAllocationRoutes(v1, suite.mockAllocationService)
}

func (suite *AllocationHandlerTestSuite) TestCreateAllocation_Success() {
	transactionID := uuid.NewString()
	jobID := uuid.NewString()
	amount := decimal.RequireFromString("1600.00")
	pct := decimal.RequireFromString("50")

	expected := &domain.Allocation{
		AllocationID:  uuid.NewString(),
		TransactionID: transactionID,
		JobID:         jobID,
		Amount:        amount,
		Percentage:    &pct,
		AuditFields: domain.AuditFields{
			CreatedAt: time.Now().UTC(),
			CreatedBy: middleware.DefaultActor,
		},
	}

	suite.mockAllocationService.On("Allocate",
		mock.Anything,
		transactionID,
		mock.MatchedBy(func(req dto.AllocateRequest) bool {
			return req.JobID == jobID && req.Amount != nil && req.Amount.Equal(amount)
		}),
		middleware.DefaultActor,
	).Return(expected, nil).Once()

	body, _ := json.Marshal(gin.H{"jobID": jobID, "amount": "1600.00"})
	url := fmt.Sprintf("/api/v1/transactions/%s/allocations", transactionID)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusCreated, w.Code)

	var responseBody dto.AllocationResponse
	err := json.Unmarshal(w.Body.Bytes(), &responseBody)
	suite.NoError(err, "Failed to unmarshal response body")
	suite.Equal(expected.AllocationID, responseBody.AllocationID)
	suite.True(responseBody.Amount.Equal(amount))

	suite.mockAllocationService.AssertExpectations(suite.T())
}

func (suite *AllocationHandlerTestSuite) TestCreateAllocation_OverAllocatedReturnsConflict() {
	transactionID := uuid.NewString()
	jobID := uuid.NewString()

	suite.mockAllocationService.On("Allocate", mock.Anything, transactionID, mock.Anything, mock.Anything).
		Return(nil, &apperrors.OverAllocationError{
			TransactionID: transactionID,
			Attempted:     decimal.RequireFromString("1700.00"),
			CurrentTotal:  decimal.RequireFromString("1600.00"),
			Capacity:      decimal.RequireFromString("3200.00"),
		}).Once()

	body, _ := json.Marshal(gin.H{"jobID": jobID, "amount": "1700.00"})
	url := fmt.Sprintf("/api/v1/transactions/%s/allocations", transactionID)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusConflict, w.Code)

	var responseBody map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &responseBody)
	suite.NoError(err, "Failed to unmarshal response body")
	suite.Equal(transactionID, responseBody["transactionID"])
	suite.Equal("1700", responseBody["attempted"])
	suite.Equal("3200", responseBody["capacity"])
}

func (suite *AllocationHandlerTestSuite) TestCreateAllocation_ValidationErrorReturnsBadRequest() {
	transactionID := uuid.NewString()

	suite.mockAllocationService.On("Allocate", mock.Anything, transactionID, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: exactly one of amount or percentage must be provided", apperrors.ErrValidation)).Once()

	body, _ := json.Marshal(gin.H{"jobID": uuid.NewString(), "amount": "100.00", "percentage": "10"})
	url := fmt.Sprintf("/api/v1/transactions/%s/allocations", transactionID)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AllocationHandlerTestSuite) TestGetAllocationSummary_Success() {
	transactionID := uuid.NewString()

	suite.mockAllocationService.On("AllocationSummary", mock.Anything, transactionID).Return(&domain.AllocationSummary{
		TransactionID:  transactionID,
		TotalAllocated: decimal.RequireFromString("3200.00"),
		Remaining:      decimal.Zero,
		FullyAllocated: true,
	}, nil).Once()

	url := fmt.Sprintf("/api/v1/transactions/%s/allocations/summary", transactionID)
	req, _ := http.NewRequest(http.MethodGet, url, nil)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)

	var responseBody dto.AllocationSummaryResponse
	err := json.Unmarshal(w.Body.Bytes(), &responseBody)
	suite.NoError(err, "Failed to unmarshal response body")
	suite.True(responseBody.FullyAllocated)
	suite.True(responseBody.Remaining.IsZero())
}

func (suite *AllocationHandlerTestSuite) TestDeleteAllocation_NotFound() {
	allocationID := uuid.NewString()

	suite.mockAllocationService.On("Unlink", mock.Anything, allocationID).Return(apperrors.ErrNotFound).Once()

	url := fmt.Sprintf("/api/v1/allocations/%s", allocationID)
	req, _ := http.NewRequest(http.MethodDelete, url, nil)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *AllocationHandlerTestSuite) TestDeleteAllocation_Success() {
	allocationID := uuid.NewString()

	suite.mockAllocationService.On("Unlink", mock.Anything, allocationID).Return(nil).Once()

	url := fmt.Sprintf("/api/v1/allocations/%s", allocationID)
	req, _ := http.NewRequest(http.MethodDelete, url, nil)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusNoContent, w.Code)
}

func TestAllocationHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AllocationHandlerTestSuite))
}
