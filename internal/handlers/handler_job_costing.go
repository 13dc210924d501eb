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

// jobCostingHandler handles per-job costing and profitability requests
type jobCostingHandler struct {
	costingService       portssvc.CostResolverSvcFacade
	profitabilityService portssvc.ProfitabilitySvcFacade
}

// newJobCostingHandler creates a new jobCostingHandler
func newJobCostingHandler(cs portssvc.CostResolverSvcFacade, ps portssvc.ProfitabilitySvcFacade) *jobCostingHandler {
	return &jobCostingHandler{
		costingService:       cs,
		profitabilityService: ps,
	}
}

// registerJobCostingRoutes registers per-job costing routes
func registerJobCostingRoutes(rg *gin.RouterGroup, costingService portssvc.CostResolverSvcFacade, profitabilityService portssvc.ProfitabilitySvcFacade) {
	h := newJobCostingHandler(costingService, profitabilityService)

	jobGroup := rg.Group("/jobs/:jobID")
	{
		jobGroup.GET("/profitability", h.getJobProfitability)
		jobGroup.POST("/cost/resolve", h.resolveAndStoreCost)
		jobGroup.POST("/override", h.applyOverride)
		jobGroup.DELETE("/override", h.clearOverride)
		jobGroup.GET("/overrides", h.listOverrides)
	}
}

// getJobProfitability godoc
// @Summary Get one job's profitability
// @Description Resolves the job's effective cost and derives profit and margin
// @Tags jobs
// @Produce json
// @Param jobID path string true "Job ID"
// @Success 200 {object} dto.JobProfitabilityResponse
// @Failure 404 {object} map[string]string "Job not found"
// @Failure 500 {object} map[string]string "Failed to compute profitability"
// @Router /jobs/{jobID}/profitability [get]
func (h *jobCostingHandler) getJobProfitability(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	jobID := c.Param("jobID")

	prof, err := h.profitabilityService.JobProfitability(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		logger.Error("Failed to compute job profitability", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute profitability"})
		return
	}
	c.JSON(http.StatusOK, dto.ToJobProfitabilityResponse(prof))
}

// resolveAndStoreCost godoc
// @Summary Re-resolve and store a job's effective cost
// @Description Runs the cost resolution chain for the job and persists actual-cost outcomes
// @Tags jobs
// @Produce json
// @Param jobID path string true "Job ID"
// @Success 200 {object} dto.CostResponse
// @Failure 404 {object} map[string]string "Job not found"
// @Failure 500 {object} map[string]string "Failed to resolve cost"
// @Router /jobs/{jobID}/cost/resolve [post]
func (h *jobCostingHandler) resolveAndStoreCost(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	jobID := c.Param("jobID")

	actorID := middleware.GetActorFromContext(c)
	resolved, err := h.costingService.ResolveAndStore(c.Request.Context(), jobID, actorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		logger.Error("Failed to resolve job cost", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve cost"})
		return
	}
	c.JSON(http.StatusOK, dto.CostResponse{
		Effective: resolved.Amount.Round(2),
		Source:    string(resolved.Source),
		Quality:   string(resolved.Quality),
	})
}

// applyOverride godoc
// @Summary Apply a manual cost override
// @Description Records a manual cost correction and flags the job as overridden
// @Tags jobs
// @Accept json
// @Produce json
// @Param jobID path string true "Job ID"
// @Param override body dto.OverrideRequest true "Override details"
// @Success 201 {object} dto.OverrideResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Job not found"
// @Failure 500 {object} map[string]string "Failed to apply override"
// @Router /jobs/{jobID}/override [post]
func (h *jobCostingHandler) applyOverride(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	jobID := c.Param("jobID")

	var req dto.OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid override request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	actorID := middleware.GetActorFromContext(c)
	override, err := h.costingService.ApplyOverride(c.Request.Context(), jobID, req, actorID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to apply override", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply override"})
		}
		return
	}

	logger.Info("Override applied",
		slog.String("job_id", jobID),
		slog.String("override_id", override.OverrideID))
	c.JSON(http.StatusCreated, dto.ToOverrideResponse(override))
}

// clearOverride godoc
// @Summary Clear a manual cost override
// @Description Drops the override flag so cost resolution falls through to the next source
// @Tags jobs
// @Produce json
// @Param jobID path string true "Job ID"
// @Success 204 "Override cleared"
// @Failure 404 {object} map[string]string "Job not found"
// @Failure 409 {object} map[string]string "Job is not overridden"
// @Failure 500 {object} map[string]string "Failed to clear override"
// @Router /jobs/{jobID}/override [delete]
func (h *jobCostingHandler) clearOverride(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	jobID := c.Param("jobID")

	actorID := middleware.GetActorFromContext(c)
	if err := h.costingService.ClearOverride(c.Request.Context(), jobID, actorID); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		case errors.Is(err, apperrors.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to clear override", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear override"})
		}
		return
	}

	logger.Info("Override cleared", slog.String("job_id", jobID))
	c.Status(http.StatusNoContent)
}

// listOverrides godoc
// @Summary List a job's override history
// @Description Returns the append-only override audit trail, newest first
// @Tags jobs
// @Produce json
// @Param jobID path string true "Job ID"
// @Success 200 {array} dto.OverrideResponse
// @Failure 500 {object} map[string]string "Failed to list overrides"
// @Router /jobs/{jobID}/overrides [get]
func (h *jobCostingHandler) listOverrides(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	jobID := c.Param("jobID")

	overrides, err := h.costingService.OverrideHistory(c.Request.Context(), jobID)
	if err != nil {
		logger.Error("Failed to list overrides", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list overrides"})
		return
	}

	responses := make([]dto.OverrideResponse, len(overrides))
	for i := range overrides {
		responses[i] = dto.ToOverrideResponse(&overrides[i])
	}
	c.JSON(http.StatusOK, responses)
}
