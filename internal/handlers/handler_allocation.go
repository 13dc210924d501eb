package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/profitlens/job_costing_app/internal/apperrors"
	portssvc "github.com/profitlens/job_costing_app/internal/core/ports/services"
	"github.com/profitlens/job_costing_app/internal/dto"
	"github.com/profitlens/job_costing_app/internal/middleware"
)

// allocationHandler handles HTTP requests for transaction-to-job allocations
type allocationHandler struct {
	allocationService portssvc.AllocationLedgerSvcFacade
}

// newAllocationHandler creates a new allocationHandler
func newAllocationHandler(as portssvc.AllocationLedgerSvcFacade) *allocationHandler {
	return &allocationHandler{
		allocationService: as,
	}
}

// registerAllocationRoutes registers allocation routes under transactions,
// jobs, and the flat allocation collection
func registerAllocationRoutes(rg *gin.RouterGroup, allocationService portssvc.AllocationLedgerSvcFacade) {
	h := newAllocationHandler(allocationService)

	transactionGroup := rg.Group("/transactions/:transactionID/allocations")
	{
		transactionGroup.POST("", h.createAllocation)
		transactionGroup.GET("", h.listTransactionAllocations)
		transactionGroup.GET("/summary", h.getAllocationSummary)
	}

	rg.DELETE("/allocations/:allocationID", h.deleteAllocation)
	rg.GET("/jobs/:jobID/allocations", h.listJobAllocations)
}

// createAllocation godoc
// @Summary Allocate part of a transaction to a job
// @Description Attributes a portion of a bank transaction's amount to a job. Exactly one of amount or percentage must be provided.
// @Tags allocations
// @Accept json
// @Produce json
// @Param transactionID path string true "Transaction ID"
// @Param allocation body dto.AllocateRequest true "Allocation details"
// @Success 201 {object} dto.AllocationResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Transaction or job not found"
// @Failure 409 {object} map[string]interface{} "Transaction over-allocated"
// @Failure 500 {object} map[string]string "Failed to create allocation"
// @Router /transactions/{transactionID}/allocations [post]
func (h *allocationHandler) createAllocation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	var req dto.AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid allocation request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	actorID := middleware.GetActorFromContext(c)
	allocation, err := h.allocationService.Allocate(c.Request.Context(), transactionID, req, actorID)
	if err != nil {
		var overAlloc *apperrors.OverAllocationError
		switch {
		case errors.As(err, &overAlloc):
			logger.Warn("Allocation rejected: transaction over-allocated",
				slog.String("transaction_id", transactionID),
				slog.String("attempted", overAlloc.Attempted.String()))
			c.JSON(http.StatusConflict, gin.H{
				"error":         overAlloc.Error(),
				"attempted":     overAlloc.Attempted,
				"currentTotal":  overAlloc.CurrentTotal,
				"capacity":      overAlloc.Capacity,
				"transactionID": overAlloc.TransactionID,
			})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction or job not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create allocation", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create allocation"})
		}
		return
	}

	logger.Info("Allocation created",
		slog.String("allocation_id", allocation.AllocationID),
		slog.String("transaction_id", transactionID),
		slog.String("job_id", allocation.JobID))
	c.JSON(http.StatusCreated, dto.ToAllocationResponse(allocation))
}

// listTransactionAllocations godoc
// @Summary List a transaction's allocations
// @Description Returns all allocations of a transaction joined with job display fields
// @Tags allocations
// @Produce json
// @Param transactionID path string true "Transaction ID"
// @Success 200 {array} dto.AllocationDetailResponse
// @Failure 500 {object} map[string]string "Failed to list allocations"
// @Router /transactions/{transactionID}/allocations [get]
func (h *allocationHandler) listTransactionAllocations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	details, err := h.allocationService.AllocationsForTransaction(c.Request.Context(), transactionID)
	if err != nil {
		logger.Error("Failed to list transaction allocations", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list allocations"})
		return
	}
	c.JSON(http.StatusOK, dto.ToAllocationDetailResponses(details))
}

// getAllocationSummary godoc
// @Summary Summarize a transaction's allocation state
// @Description Reports total allocated, remaining capacity, and whether the transaction is fully allocated
// @Tags allocations
// @Produce json
// @Param transactionID path string true "Transaction ID"
// @Success 200 {object} dto.AllocationSummaryResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to summarize allocations"
// @Router /transactions/{transactionID}/allocations/summary [get]
func (h *allocationHandler) getAllocationSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	summary, err := h.allocationService.AllocationSummary(c.Request.Context(), transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
			return
		}
		logger.Error("Failed to summarize allocations", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to summarize allocations"})
		return
	}
	c.JSON(http.StatusOK, dto.ToAllocationSummaryResponse(summary))
}

// deleteAllocation godoc
// @Summary Remove an allocation
// @Description Unlinks an allocation and recomputes the job's allocation-derived cost
// @Tags allocations
// @Produce json
// @Param allocationID path string true "Allocation ID"
// @Success 204 "Allocation removed"
// @Failure 404 {object} map[string]string "Allocation not found"
// @Failure 500 {object} map[string]string "Failed to remove allocation"
// @Router /allocations/{allocationID} [delete]
func (h *allocationHandler) deleteAllocation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	allocationID := c.Param("allocationID")

	if err := h.allocationService.Unlink(c.Request.Context(), allocationID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Allocation not found"})
			return
		}
		logger.Error("Failed to remove allocation", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove allocation"})
		return
	}

	logger.Info("Allocation removed", slog.String("allocation_id", allocationID))
	c.Status(http.StatusNoContent)
}

// listJobAllocations godoc
// @Summary List a job's allocations
// @Description Returns all allocations attributed to a job joined with transaction display fields
// @Tags allocations
// @Produce json
// @Param jobID path string true "Job ID"
// @Success 200 {array} dto.AllocationDetailResponse
// @Failure 500 {object} map[string]string "Failed to list allocations"
// @Router /jobs/{jobID}/allocations [get]
func (h *allocationHandler) listJobAllocations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	jobID := c.Param("jobID")

	details, err := h.allocationService.AllocationsForJob(c.Request.Context(), jobID)
	if err != nil {
		logger.Error("Failed to list job allocations", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list allocations"})
		return
	}
	c.JSON(http.StatusOK, dto.ToAllocationDetailResponses(details))
}
