package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/profitlens/job_costing_app/internal/apperrors"
	"github.com/profitlens/job_costing_app/internal/core/domain"
	portssvc "github.com/profitlens/job_costing_app/internal/core/ports/services"
	"github.com/profitlens/job_costing_app/internal/dto"
	"github.com/profitlens/job_costing_app/internal/middleware"
)

const dateFormat = "2006-01-02"

// reportingHandler handles aggregate reporting requests
type reportingHandler struct {
	profitabilityService  portssvc.ProfitabilitySvcFacade
	trendService          portssvc.TrendSvcFacade
	reconciliationService portssvc.ReconciliationSvcFacade
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(ps portssvc.ProfitabilitySvcFacade, ts portssvc.TrendSvcFacade, rs portssvc.ReconciliationSvcFacade) *reportingHandler {
	return &reportingHandler{
		profitabilityService:  ps,
		trendService:          ts,
		reconciliationService: rs,
	}
}

// registerReportingRoutes registers routes for aggregate reports
func registerReportingRoutes(
	rg *gin.RouterGroup,
	profitabilityService portssvc.ProfitabilitySvcFacade,
	trendService portssvc.TrendSvcFacade,
	reconciliationService portssvc.ReconciliationSvcFacade,
) {
	h := newReportingHandler(profitabilityService, trendService, reconciliationService)

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.GET("/profitability", h.getProfitabilityReport)
		reportingGroup.GET("/trends", h.getTrendReport)
		reportingGroup.GET("/trends/expenses", h.getExpenseTrend)
		reportingGroup.GET("/alerts", h.getMarginAlerts)
		reportingGroup.GET("/reconciliation", h.getReconciliation)
	}
}

// parseDateRange reads from/to query params. Defaults to the trailing twelve
// months ending today.
func parseDateRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.AddDate(-1, 0, 0)
	to := now

	if fromStr := c.Query("from"); fromStr != "" {
		parsed, err := time.Parse(dateFormat, fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid from date, use YYYY-MM-DD")
		}
		from = parsed
	}
	if toStr := c.Query("to"); toStr != "" {
		parsed, err := time.Parse(dateFormat, toStr)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid to date, use YYYY-MM-DD")
		}
		to = parsed
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("to date precedes from date")
	}
	return from, to, nil
}

// getProfitabilityReport godoc
// @Summary Aggregate profitability report
// @Description Groups jobs issued in the date range and sums revenue, cost, and profit per group
// @Tags reports
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)" default(one year ago)
// @Param to query string false "End date (YYYY-MM-DD)" default(today)
// @Param group_by query string false "Grouping dimension: serviceType, template, or period" default(serviceType)
// @Success 200 {object} dto.AggregateReportResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to build report"
// @Router /reports/profitability [get]
func (h *reportingHandler) getProfitabilityReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	from, to, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	groupBy := dto.GroupKey(c.DefaultQuery("group_by", string(dto.GroupByServiceType)))

	report, err := h.profitabilityService.Aggregate(c.Request.Context(), from, to, groupBy)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to build profitability report", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	c.JSON(http.StatusOK, dto.ToAggregateReportResponse(report))
}

// getTrendReport godoc
// @Summary Period trend report
// @Description Buckets jobs into calendar periods with growth rates and a direction classification
// @Tags reports
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)" default(one year ago)
// @Param to query string false "End date (YYYY-MM-DD)" default(today)
// @Param granularity query string false "Period granularity: month, quarter, or year" default(month)
// @Success 200 {object} dto.TrendReportResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to build report"
// @Router /reports/trends [get]
func (h *reportingHandler) getTrendReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	from, to, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	granularity := domain.PeriodGranularity(c.DefaultQuery("granularity", string(domain.GranularityMonth)))

	report, err := h.trendService.TrendReport(c.Request.Context(), from, to, granularity)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to build trend report", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	c.JSON(http.StatusOK, dto.ToTrendReportResponse(report))
}

// getExpenseTrend godoc
// @Summary Ledger expense trend
// @Description Buckets expense transactions into calendar periods
// @Tags reports
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)" default(one year ago)
// @Param to query string false "End date (YYYY-MM-DD)" default(today)
// @Param granularity query string false "Period granularity: month, quarter, or year" default(month)
// @Success 200 {array} dto.ExpensePeriodRowResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to build report"
// @Router /reports/trends/expenses [get]
func (h *reportingHandler) getExpenseTrend(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	from, to, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	granularity := domain.PeriodGranularity(c.DefaultQuery("granularity", string(domain.GranularityMonth)))

	series, err := h.trendService.ExpenseTrend(c.Request.Context(), from, to, granularity)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to build expense trend", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	c.JSON(http.StatusOK, dto.ToExpenseTrendResponse(series))
}

// getMarginAlerts godoc
// @Summary Margin alert report
// @Description Flags low-margin jobs, losses, cost spikes, underperforming templates, and declining trends
// @Tags reports
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)" default(one year ago)
// @Param to query string false "End date (YYYY-MM-DD)" default(today)
// @Param margin_threshold query number false "Low-margin threshold percentage" default(30)
// @Param cost_spike_pct query number false "Cost spike threshold percentage" default(20)
// @Param declining_trend_window query integer false "Declining-trend lookback in jobs" default(whole range)
// @Success 200 {object} dto.AlertReportResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to build report"
// @Router /reports/alerts [get]
func (h *reportingHandler) getMarginAlerts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	from, to, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := dto.MarginAlertOptions{}
	if s := c.Query("margin_threshold"); s != "" {
		threshold, err := decimal.NewFromString(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid margin_threshold"})
			return
		}
		opts.MarginThreshold = threshold
	}
	if s := c.Query("cost_spike_pct"); s != "" {
		threshold, err := decimal.NewFromString(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cost_spike_pct"})
			return
		}
		opts.CostSpikeThresholdPct = threshold
	}
	if s := c.Query("declining_trend_window"); s != "" {
		window, err := strconv.Atoi(s)
		if err != nil || window < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid declining_trend_window"})
			return
		}
		opts.DecliningTrendWindow = window
	}

	report, err := h.profitabilityService.MarginAlerts(c.Request.Context(), from, to, opts)
	if err != nil {
		logger.Error("Failed to build margin alerts", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	c.JSON(http.StatusOK, dto.ToAlertReportResponse(report))
}

// getReconciliation godoc
// @Summary Reconciliation report
// @Description Merges the external P&L with internally computed totals for the date range
// @Tags reports
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)" default(one year ago)
// @Param to query string false "End date (YYYY-MM-DD)" default(today)
// @Success 200 {object} dto.ReconciliationResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to build report"
// @Router /reports/reconciliation [get]
func (h *reportingHandler) getReconciliation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	from, to, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.reconciliationService.Reconcile(c.Request.Context(), from, to)
	if err != nil {
		logger.Error("Failed to build reconciliation report", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	c.JSON(http.StatusOK, dto.ToReconciliationResponse(report))
}
