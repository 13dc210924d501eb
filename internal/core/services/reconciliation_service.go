package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/profitlens/job_costing_app/internal/apperrors"
	"github.com/profitlens/job_costing_app/internal/core/domain"
	portsrepo "github.com/profitlens/job_costing_app/internal/core/ports/repositories"
	portssvc "github.com/profitlens/job_costing_app/internal/core/ports/services"
)

var (
	// agreementTolerance is the absolute dollar discrepancy under which the
	// two sides are considered to agree.
	agreementTolerance = decimal.NewFromInt(100)

	// highCoverageThreshold is the minimum share of jobs with high-quality
	// cost data before external figures are preferred outright.
	highCoverageThreshold = decimal.NewFromInt(80)

	goodCoverageThreshold = decimal.NewFromInt(50)
	fairCoverageThreshold = decimal.NewFromInt(25)
)

// reconciliationService merges externally reported P&L figures with
// internally computed totals.
type reconciliationService struct {
	BaseService
	jobRepo       portsrepo.JobRepositoryFacade
	externalRepo  portsrepo.ExternalRepositoryFacade
	profitability portssvc.ProfitabilitySvcFacade
}

// NewReconciliationService creates a new reconciliation service.
func NewReconciliationService(
	jobRepo portsrepo.JobRepositoryFacade,
	externalRepo portsrepo.ExternalRepositoryFacade,
	profitability portssvc.ProfitabilitySvcFacade,
) portssvc.ReconciliationSvcFacade {
	return &reconciliationService{
		jobRepo:       jobRepo,
		externalRepo:  externalRepo,
		profitability: profitability,
	}
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

// Reconcile merges the external P&L for [from, to] with internal job totals.
// The merged view trusts the external side for the jobs it knows about, adds
// the jobs it cannot know about, and corrects for local edits made after the
// last sync.
func (s *reconciliationService) Reconcile(ctx context.Context, from, to time.Time) (*domain.ReconciliationReport, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end precedes range start", apperrors.ErrValidation)
	}

	profs, err := s.profitability.ProfitabilityForRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	jobIDs := make([]string, len(profs))
	for i, p := range profs {
		jobIDs[i] = p.JobID
	}
	jobs, err := s.jobRepo.FindJobsByIDs(ctx, jobIDs)
	if err != nil {
		s.LogError(ctx, err, "Failed to load jobs for reconciliation")
		return nil, fmt.Errorf("failed to load jobs: %w", err)
	}

	report := &domain.ReconciliationReport{}
	highQuality := 0
	for _, p := range profs {
		report.Internal.Revenue = report.Internal.Revenue.Add(p.Revenue)
		report.Internal.Cost = report.Internal.Cost.Add(p.Cost.Amount)

		switch p.Cost.Quality {
		case domain.QualityExcellent, domain.QualityGood:
			highQuality++
		}

		job, ok := jobs[p.JobID]
		if !ok || !job.ExternallySourced {
			report.Breakdown.InternalOnlyJobs++
			report.Breakdown.InternalOnlyTotals.Revenue = report.Breakdown.InternalOnlyTotals.Revenue.Add(p.Revenue)
			report.Breakdown.InternalOnlyTotals.Cost = report.Breakdown.InternalOnlyTotals.Cost.Add(p.Cost.Amount)
			continue
		}

		report.Breakdown.ExternalJobs++
		if stored := job.StoredCostTotal(); stored != nil && job.SyncedCostTotal != nil && !stored.Equal(*job.SyncedCostTotal) {
			report.Breakdown.EditedAfterSync++
			report.Breakdown.EditDeltaCost = report.Breakdown.EditDeltaCost.Add(stored.Sub(*job.SyncedCostTotal))
		}
	}
	report.Internal.Profit = report.Internal.Revenue.Sub(report.Internal.Cost)
	report.Breakdown.InternalOnlyTotals.Profit = report.Breakdown.InternalOnlyTotals.Revenue.Sub(report.Breakdown.InternalOnlyTotals.Cost)

	external, err := s.externalRepo.FindPnLSummary(ctx, from, to)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to fetch external P&L")
			return nil, fmt.Errorf("failed to fetch external P&L: %w", err)
		}
		// No sync has produced a summary; report internal figures alone.
		s.LogWarn(ctx, "External P&L unavailable, reporting internal totals only")
		report.Merged = report.Internal
	} else {
		report.External = &domain.PnLTotals{
			Revenue: external.TotalIncome,
			Cost:    external.TotalCost,
			Profit:  external.NetIncome,
		}
		report.Merged.Revenue = external.TotalIncome.Add(report.Breakdown.InternalOnlyTotals.Revenue)
		report.Merged.Cost = external.TotalCost.
			Add(report.Breakdown.InternalOnlyTotals.Cost).
			Add(report.Breakdown.EditDeltaCost)
		report.Merged.Profit = report.Merged.Revenue.Sub(report.Merged.Cost)

		report.Discrepancy.Revenue = report.External.Revenue.Sub(report.Merged.Revenue)
		report.Discrepancy.Cost = report.External.Cost.Sub(report.Merged.Cost)
		if !report.Discrepancy.Revenue.IsZero() || !report.Discrepancy.Cost.IsZero() {
			report.Discrepancy.Note = fmt.Sprintf(
				"external differs from merged by %s revenue and %s cost",
				report.Discrepancy.Revenue.Round(2).String(),
				report.Discrepancy.Cost.Round(2).String())
		}
	}

	report.Recommendation = s.recommend(report, len(profs), highQuality)

	s.LogInfo(ctx, "Reconciliation report built",
		slog.Bool("external_available", report.External != nil),
		slog.Int("external_jobs", report.Breakdown.ExternalJobs),
		slog.Int("internal_only_jobs", report.Breakdown.InternalOnlyJobs),
		slog.Int("edited_after_sync", report.Breakdown.EditedAfterSync))
	return report, nil
}

// recommend states which side's numbers to trust. External wins only when the
// sides agree closely and most jobs carry high-quality cost data; otherwise
// the message is banded by coverage.
func (s *reconciliationService) recommend(report *domain.ReconciliationReport, totalJobs, highQuality int) domain.Recommendation {
	coverage := decimal.Zero
	if totalJobs > 0 {
		coverage = decimal.NewFromInt(int64(highQuality)).
			Div(decimal.NewFromInt(int64(totalJobs))).
			Mul(percentBase)
	}
	rec := domain.Recommendation{CoveragePct: coverage}

	if report.External != nil {
		discrepancy := report.Discrepancy.Revenue.Abs().Add(report.Discrepancy.Cost.Abs())
		if discrepancy.LessThan(agreementTolerance) && coverage.GreaterThan(highCoverageThreshold) {
			rec.PreferExternal = true
			rec.Message = "external and internal figures agree closely with excellent cost coverage; external totals are reliable"
			return rec
		}
	}

	switch {
	case coverage.GreaterThanOrEqual(highCoverageThreshold):
		rec.Message = "internal figures have excellent cost coverage; prefer the merged totals"
	case coverage.GreaterThanOrEqual(goodCoverageThreshold):
		rec.Message = "internal figures have good cost coverage; merged totals are usable but verify the gaps"
	case coverage.GreaterThanOrEqual(fairCoverageThreshold):
		rec.Message = "internal cost coverage is fair; merged totals understate costs for uncovered jobs"
	default:
		rec.Message = "internal cost coverage needs improvement; link transactions or sync costs before trusting these totals"
	}
	return rec
}
