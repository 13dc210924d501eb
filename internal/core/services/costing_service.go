package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/profitlens/job_costing_app/internal/apperrors"
	"github.com/profitlens/job_costing_app/internal/core/domain"
	portsrepo "github.com/profitlens/job_costing_app/internal/core/ports/repositories"
	portssvc "github.com/profitlens/job_costing_app/internal/core/ports/services"
	"github.com/profitlens/job_costing_app/internal/dto"
)

var (
	ErrOverrideSplitMismatch = errors.New("override split does not sum to the new total")
	ErrNotOverridden         = errors.New("job is not manually overridden")
)

// costingService implements the Cost Resolver: one effective cost per job,
// tagged with the source that produced it and a trust tier.
type costingService struct {
	BaseService
	jobRepo        portsrepo.JobRepositoryFacade
	allocationRepo portsrepo.AllocationRepositoryFacade
	templateRepo   portsrepo.TemplateRepositoryFacade
	overrideRepo   portsrepo.OverrideRepositoryFacade
	externalRepo   portsrepo.ExternalRepositoryFacade
}

// NewCostingService creates a new Cost Resolver service.
func NewCostingService(
	jobRepo portsrepo.JobRepositoryFacade,
	allocationRepo portsrepo.AllocationRepositoryFacade,
	templateRepo portsrepo.TemplateRepositoryFacade,
	overrideRepo portsrepo.OverrideRepositoryFacade,
	externalRepo portsrepo.ExternalRepositoryFacade,
) portssvc.CostResolverSvcFacade {
	return &costingService{
		jobRepo:        jobRepo,
		allocationRepo: allocationRepo,
		templateRepo:   templateRepo,
		overrideRepo:   overrideRepo,
		externalRepo:   externalRepo,
	}
}

var _ portssvc.CostResolverSvcFacade = (*costingService)(nil)

// costLookups is the evidence gathered for a resolution pass. It is built
// once per batch and discarded afterwards; never cached across requests.
type costLookups struct {
	allocationSums map[string]decimal.Decimal
	external       map[string][]domain.ExternalCostRecord
	usages         map[string][]domain.TemplateUsage
	templates      map[string]domain.CostTemplate
}

func (s *costingService) buildLookups(ctx context.Context, jobIDs []string) (*costLookups, error) {
	sums, err := s.allocationRepo.SumAllocationsForJobs(ctx, jobIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to sum allocations: %w", err)
	}
	external, err := s.externalRepo.FindCostRecordsByJobIDs(ctx, jobIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch external cost records: %w", err)
	}
	usages, err := s.templateRepo.FindUsagesByJobIDs(ctx, jobIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch template usages: %w", err)
	}

	templateIDs := make([]string, 0)
	seen := make(map[string]struct{})
	for _, jobUsages := range usages {
		for _, u := range jobUsages {
			if _, ok := seen[u.TemplateID]; !ok {
				seen[u.TemplateID] = struct{}{}
				templateIDs = append(templateIDs, u.TemplateID)
			}
		}
	}
	templates := make(map[string]domain.CostTemplate)
	if len(templateIDs) > 0 {
		templates, err = s.templateRepo.FindTemplatesByIDs(ctx, templateIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch templates: %w", err)
		}
	}

	return &costLookups{
		allocationSums: sums,
		external:       external,
		usages:         usages,
		templates:      templates,
	}, nil
}

// estimateTotal sums a job's template-usage estimates. Usages referencing a
// missing template are skipped and reported, never fatal.
func estimateTotal(job *domain.Job, lookups *costLookups, warnings *[]string) *decimal.Decimal {
	usages := lookups.usages[job.JobID]
	if len(usages) == 0 {
		return nil
	}
	total := decimal.Zero
	counted := 0
	for _, u := range usages {
		tmpl, ok := lookups.templates[u.TemplateID]
		if !ok {
			*warnings = append(*warnings, fmt.Sprintf("usage %s references missing template %s", u.UsageID, u.TemplateID))
			continue
		}
		total = total.Add(u.EstimatedTotalFor(&tmpl))
		counted++
	}
	if counted == 0 {
		return nil
	}
	return &total
}

// resolve applies the precedence chain to one job using pre-fetched evidence.
// Missing data is a valid outcome, never an error.
func (s *costingService) resolve(job *domain.Job, lookups *costLookups) domain.ResolvedCost {
	resolved := domain.ResolvedCost{JobID: job.JobID, Amount: decimal.Zero, Source: domain.SourceNone}
	warnings := []string{}

	estimate := estimateTotal(job, lookups, &warnings)
	externalCost := latestRealExternalCost(lookups.external[job.JobID], &warnings)

	switch {
	case job.ManuallyOverridden && job.Cost != nil:
		resolved.Amount = job.Cost.Total
		resolved.Source = domain.SourceManualOverride

	case externalCost != nil:
		resolved.Amount = *externalCost
		resolved.Source = domain.SourceExternalRealCost

	case hasPositiveSum(lookups.allocationSums, job.JobID, &warnings):
		resolved.Amount = lookups.allocationSums[job.JobID]
		resolved.Source = domain.SourceTransactionLink

	case job.Cost != nil:
		resolved.Amount = job.Cost.Total
		resolved.Source = domain.SourceStoredActual

	case estimate != nil:
		resolved.Amount = *estimate
		resolved.Source = domain.SourceTemplateEstimate
	}

	resolved.Quality = domain.QualityForSource(resolved.Source)
	resolved.Estimate = estimate

	// Variance only compares an actual against an estimate; an estimate has
	// nothing of its own to vary from.
	if estimate != nil && resolved.Source != domain.SourceTemplateEstimate && resolved.Source != domain.SourceNone {
		variance := resolved.Amount.Sub(*estimate)
		resolved.Variance = &variance
		if !estimate.IsZero() {
			pct := variance.Div(*estimate).Mul(percentBase)
			resolved.VariancePct = &pct
		}
	}

	resolved.Warnings = warnings
	return resolved
}

// latestRealExternalCost returns the most recently synced real-basis cost,
// nil when only heuristic figures exist.
func latestRealExternalCost(records []domain.ExternalCostRecord, warnings *[]string) *decimal.Decimal {
	var best *domain.ExternalCostRecord
	for i := range records {
		r := &records[i]
		if !r.Basis.IsReal() {
			continue
		}
		if r.TotalCost.IsNegative() {
			*warnings = append(*warnings, fmt.Sprintf("external cost record %s has negative total", r.RecordID))
			continue
		}
		if best == nil || r.SyncedAt.After(best.SyncedAt) {
			best = r
		}
	}
	if best == nil {
		return nil
	}
	return &best.TotalCost
}

func hasPositiveSum(sums map[string]decimal.Decimal, jobID string, warnings *[]string) bool {
	sum, ok := sums[jobID]
	if !ok || sum.IsZero() {
		return false
	}
	if sum.IsNegative() {
		*warnings = append(*warnings, fmt.Sprintf("job %s has a negative allocation sum", jobID))
		return false
	}
	return true
}

// ResolveEffectiveCost resolves a single job.
func (s *costingService) ResolveEffectiveCost(ctx context.Context, job *domain.Job) (domain.ResolvedCost, error) {
	lookups, err := s.buildLookups(ctx, []string{job.JobID})
	if err != nil {
		s.LogError(ctx, err, "Failed to gather cost evidence", slog.String("job_id", job.JobID))
		return domain.ResolvedCost{}, err
	}
	resolved := s.resolve(job, lookups)
	for _, w := range resolved.Warnings {
		s.LogWarn(ctx, "Skipped malformed record during cost resolution", slog.String("job_id", job.JobID), slog.String("detail", w))
	}
	return resolved, nil
}

// ResolveJobs resolves a batch with one evidence fetch for the whole set.
// Jobs never affect each other's resolution, so the loop has no ordering
// requirements.
func (s *costingService) ResolveJobs(ctx context.Context, jobs []domain.Job) (map[string]domain.ResolvedCost, error) {
	if len(jobs) == 0 {
		return map[string]domain.ResolvedCost{}, nil
	}
	jobIDs := make([]string, len(jobs))
	for i, j := range jobs {
		jobIDs[i] = j.JobID
	}
	lookups, err := s.buildLookups(ctx, jobIDs)
	if err != nil {
		s.LogError(ctx, err, "Failed to gather cost evidence for batch", slog.Int("job_count", len(jobs)))
		return nil, err
	}

	results := make(map[string]domain.ResolvedCost, len(jobs))
	for i := range jobs {
		resolved := s.resolve(&jobs[i], lookups)
		for _, w := range resolved.Warnings {
			s.LogWarn(ctx, "Skipped malformed record during cost resolution", slog.String("job_id", jobs[i].JobID), slog.String("detail", w))
		}
		results[jobs[i].JobID] = resolved
	}
	return results, nil
}

// ResolveAndStore resolves a job and writes the outcome back to the job
// record. Only actual costs are persisted as the stored snapshot: a template
// estimate must never be laundered into a stored actual by a later pass.
func (s *costingService) ResolveAndStore(ctx context.Context, jobID string, actorID string) (*domain.ResolvedCost, error) {
	job, err := s.jobRepo.FindJobByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to find job %s: %w", jobID, err)
	}

	resolved, err := s.ResolveEffectiveCost(ctx, job)
	if err != nil {
		return nil, err
	}

	if resolved.Source == domain.SourceExternalRealCost || resolved.Source == domain.SourceTransactionLink {
		snapshot := &domain.CostSnapshot{Total: resolved.Amount}
		if job.Cost != nil {
			snapshot.Materials = job.Cost.Materials
			snapshot.Labor = job.Cost.Labor
			snapshot.Overhead = job.Cost.Overhead
		}
		source := resolved.Source
		if err := s.jobRepo.UpdateJobCost(ctx, jobID, snapshot, &source, job.ManuallyOverridden, actorID, time.Now().UTC()); err != nil {
			s.LogError(ctx, err, "Failed to store resolved cost", slog.String("job_id", jobID))
			return nil, fmt.Errorf("failed to store resolved cost: %w", err)
		}
		s.LogInfo(ctx, "Stored resolved cost",
			slog.String("job_id", jobID),
			slog.String("source", string(resolved.Source)),
			slog.String("amount", resolved.Amount.String()))
	}

	return &resolved, nil
}

// ApplyOverride records a manual cost correction and flags the job.
func (s *costingService) ApplyOverride(ctx context.Context, jobID string, req dto.OverrideRequest, actorID string) (*domain.CostOverride, error) {
	if req.Reason == "" {
		return nil, fmt.Errorf("%w: an override reason is required", apperrors.ErrValidation)
	}
	if req.NewTotal.IsNegative() {
		return nil, fmt.Errorf("%w: override total must not be negative", apperrors.ErrValidation)
	}

	job, err := s.jobRepo.FindJobByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to find job %s: %w", jobID, err)
	}

	snapshot := domain.CostSnapshot{Total: req.NewTotal}
	if req.Materials != nil || req.Labor != nil || req.Overhead != nil {
		if req.Materials != nil {
			snapshot.Materials = *req.Materials
		}
		if req.Labor != nil {
			snapshot.Labor = *req.Labor
		}
		if req.Overhead != nil {
			snapshot.Overhead = *req.Overhead
		}
		splitSum := snapshot.Materials.Add(snapshot.Labor).Add(snapshot.Overhead)
		if splitSum.Sub(req.NewTotal).Abs().GreaterThan(domain.AllocationEpsilon) {
			return nil, fmt.Errorf("%w: %s: split sums to %s, total is %s",
				apperrors.ErrValidation, ErrOverrideSplitMismatch, splitSum.String(), req.NewTotal.String())
		}
	}

	now := time.Now().UTC()
	override := domain.CostOverride{
		OverrideID: uuid.NewString(),
		JobID:      jobID,
		NewCost:    req.NewTotal,
		NewProfit:  job.Revenue.Sub(req.NewTotal),
		Reason:     req.Reason,
		Method:     req.Method,
		CreatedAt:  now,
		CreatedBy:  actorID,
	}
	if prev := job.StoredCostTotal(); prev != nil {
		override.PreviousCost = prev
		prevProfit := job.Revenue.Sub(*prev)
		override.PreviousProfit = &prevProfit
	}

	if err := s.overrideRepo.SaveOverride(ctx, override); err != nil {
		s.LogError(ctx, err, "Failed to save override record", slog.String("job_id", jobID))
		return nil, fmt.Errorf("failed to save override: %w", err)
	}

	source := domain.SourceManualOverride
	if err := s.jobRepo.UpdateJobCost(ctx, jobID, &snapshot, &source, true, actorID, now); err != nil {
		s.LogError(ctx, err, "Failed to apply override to job", slog.String("job_id", jobID))
		return nil, fmt.Errorf("failed to apply override: %w", err)
	}

	s.LogInfo(ctx, "Cost override applied",
		slog.String("job_id", jobID),
		slog.String("override_id", override.OverrideID),
		slog.String("new_total", req.NewTotal.String()))
	return &override, nil
}

// ClearOverride drops the override flag and the overridden snapshot so
// resolution falls through to the next applicable source.
func (s *costingService) ClearOverride(ctx context.Context, jobID string, actorID string) error {
	job, err := s.jobRepo.FindJobByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to find job %s: %w", jobID, err)
	}
	if !job.ManuallyOverridden {
		return fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrNotOverridden)
	}
	if err := s.jobRepo.UpdateJobCost(ctx, jobID, nil, nil, false, actorID, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to clear override", slog.String("job_id", jobID))
		return fmt.Errorf("failed to clear override: %w", err)
	}
	s.LogInfo(ctx, "Cost override cleared", slog.String("job_id", jobID))
	return nil
}

// OverrideHistory returns a job's override audit trail, newest first.
func (s *costingService) OverrideHistory(ctx context.Context, jobID string) ([]domain.CostOverride, error) {
	overrides, err := s.overrideRepo.FindOverridesByJobID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch override history: %w", err)
	}
	return overrides, nil
}
