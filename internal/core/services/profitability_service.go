package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/profitlens/job_costing_app/internal/apperrors"
	"github.com/profitlens/job_costing_app/internal/core/domain"
	portsrepo "github.com/profitlens/job_costing_app/internal/core/ports/repositories"
	portssvc "github.com/profitlens/job_costing_app/internal/core/ports/services"
	"github.com/profitlens/job_costing_app/internal/dto"
	"github.com/profitlens/job_costing_app/internal/utils/analytics"
)

const (
	// rangePageSize is the page size used when walking a date range.
	rangePageSize = 200

	// untemplatedGroupKey buckets jobs with no template usage in
	// template-grouped reports.
	untemplatedGroupKey = "untemplated"
)

var (
	defaultMarginThreshold    = decimal.NewFromInt(30)
	defaultCostSpikePct       = decimal.NewFromInt(20)
	defaultDecliningThreshold = decimal.NewFromInt(5)
)

// profitabilityService derives profit and margin figures from resolved costs.
type profitabilityService struct {
	BaseService
	jobRepo      portsrepo.JobRepositoryFacade
	templateRepo portsrepo.TemplateRepositoryFacade
	costing      portssvc.CostResolverSvcFacade
}

// NewProfitabilityService creates a new profitability service.
func NewProfitabilityService(
	jobRepo portsrepo.JobRepositoryFacade,
	templateRepo portsrepo.TemplateRepositoryFacade,
	costing portssvc.CostResolverSvcFacade,
) portssvc.ProfitabilitySvcFacade {
	return &profitabilityService{
		jobRepo:      jobRepo,
		templateRepo: templateRepo,
		costing:      costing,
	}
}

var _ portssvc.ProfitabilitySvcFacade = (*profitabilityService)(nil)

func buildProfitability(job *domain.Job, cost domain.ResolvedCost) domain.JobProfitability {
	profit := job.Revenue.Sub(cost.Amount)
	return domain.JobProfitability{
		JobID:       job.JobID,
		ClientName:  job.ClientName,
		ServiceType: job.ServiceType,
		IssueDate:   job.IssueDate,
		Revenue:     job.Revenue,
		Cost:        cost,
		Profit:      profit,
		Margin:      analytics.Margin(profit, job.Revenue),
	}
}

// JobProfitability computes revenue, effective cost, profit, and margin for
// one job.
func (s *profitabilityService) JobProfitability(ctx context.Context, jobID string) (*domain.JobProfitability, error) {
	job, err := s.jobRepo.FindJobByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to find job %s: %w", jobID, err)
	}
	cost, err := s.costing.ResolveEffectiveCost(ctx, job)
	if err != nil {
		return nil, err
	}
	prof := buildProfitability(job, cost)
	return &prof, nil
}

// ProfitabilityForJobs computes per-job profitability for a batch using a
// single resolution pass. Output order follows the input order.
func (s *profitabilityService) ProfitabilityForJobs(ctx context.Context, jobs []domain.Job) ([]domain.JobProfitability, error) {
	resolved, err := s.costing.ResolveJobs(ctx, jobs)
	if err != nil {
		return nil, err
	}
	profs := make([]domain.JobProfitability, 0, len(jobs))
	for i := range jobs {
		profs = append(profs, buildProfitability(&jobs[i], resolved[jobs[i].JobID]))
	}
	return profs, nil
}

// ProfitabilityForRange walks jobs issued in [from, to] page by page.
func (s *profitabilityService) ProfitabilityForRange(ctx context.Context, from, to time.Time) ([]domain.JobProfitability, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end precedes range start", apperrors.ErrValidation)
	}

	var all []domain.JobProfitability
	var token *string
	for {
		jobs, next, err := s.jobRepo.ListJobsByIssueDate(ctx, from, to, rangePageSize, token)
		if err != nil {
			s.LogError(ctx, err, "Failed to list jobs for range")
			return nil, fmt.Errorf("failed to list jobs: %w", err)
		}
		profs, err := s.ProfitabilityForJobs(ctx, jobs)
		if err != nil {
			return nil, err
		}
		all = append(all, profs...)
		if next == nil {
			break
		}
		token = next
	}
	return all, nil
}

// groupKeyFor maps a job's profitability row onto its group bucket.
func (s *profitabilityService) groupKeysFor(profs []domain.JobProfitability, groupBy dto.GroupKey, templateNames map[string]string) map[string]string {
	keys := make(map[string]string, len(profs))
	for _, p := range profs {
		switch groupBy {
		case dto.GroupByServiceType:
			key := p.ServiceType
			if key == "" {
				key = "unclassified"
			}
			keys[p.JobID] = key
		case dto.GroupByPeriod:
			keys[p.JobID] = analytics.PeriodKey(p.IssueDate, domain.GranularityMonth)
		case dto.GroupByTemplate:
			if name, ok := templateNames[p.JobID]; ok {
				keys[p.JobID] = name
			} else {
				keys[p.JobID] = untemplatedGroupKey
			}
		}
	}
	return keys
}

// templateNamesForJobs maps each job to the name of its first template usage.
func (s *profitabilityService) templateNamesForJobs(ctx context.Context, jobIDs []string) (map[string]string, error) {
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

	names := make(map[string]string)
	for jobID, jobUsages := range usages {
		if len(jobUsages) == 0 {
			continue
		}
		if tmpl, ok := templates[jobUsages[0].TemplateID]; ok {
			names[jobID] = tmpl.Name
		}
	}
	return names, nil
}

// Aggregate groups jobs issued in [from, to] and sums revenue, cost, and
// profit per group. Group margin is derived from the group sums so a small
// job cannot skew it; mean and median of the individual job margins ride
// along for distribution reporting.
func (s *profitabilityService) Aggregate(ctx context.Context, from, to time.Time, groupBy dto.GroupKey) (*domain.AggregateReport, error) {
	if !groupBy.Valid() {
		return nil, fmt.Errorf("%w: unsupported group key %q", apperrors.ErrValidation, groupBy)
	}

	profs, err := s.ProfitabilityForRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	var templateNames map[string]string
	if groupBy == dto.GroupByTemplate {
		jobIDs := make([]string, len(profs))
		for i, p := range profs {
			jobIDs[i] = p.JobID
		}
		templateNames, err = s.templateNamesForJobs(ctx, jobIDs)
		if err != nil {
			return nil, err
		}
	}
	keys := s.groupKeysFor(profs, groupBy, templateNames)

	grouped := make(map[string][]domain.JobProfitability)
	for _, p := range profs {
		key := keys[p.JobID]
		grouped[key] = append(grouped[key], p)
	}

	report := &domain.AggregateReport{Groups: make([]domain.ProfitGroup, 0, len(grouped))}
	allMargins := make([]decimal.Decimal, 0, len(profs))
	for key, members := range grouped {
		group := domain.ProfitGroup{Key: key, Count: len(members)}
		margins := make([]decimal.Decimal, 0, len(members))
		for _, p := range members {
			group.Revenue = group.Revenue.Add(p.Revenue)
			group.Cost = group.Cost.Add(p.Cost.Amount)
			group.Profit = group.Profit.Add(p.Profit)
			if p.Cost.HasCostData() {
				group.CountWithCostData++
				margins = append(margins, p.Margin)
			}
		}
		group.Margin = analytics.Margin(group.Profit, group.Revenue)
		group.MeanJobMargin = analytics.Mean(margins)
		group.MedianJobMargin = analytics.Median(margins)
		allMargins = append(allMargins, margins...)
		report.Groups = append(report.Groups, group)
	}
	sort.Slice(report.Groups, func(i, j int) bool { return report.Groups[i].Key < report.Groups[j].Key })

	report.Summary.TotalJobs = len(profs)
	report.Summary.JobsWithCostData = len(allMargins)
	report.Summary.AverageMargin = analytics.Mean(allMargins)
	report.Summary.MedianMargin = analytics.Median(allMargins)

	s.LogInfo(ctx, "Aggregate report built",
		slog.String("group_by", string(groupBy)),
		slog.Int("jobs", report.Summary.TotalJobs),
		slog.Int("groups", len(report.Groups)))
	return report, nil
}

// LowMarginJobs filters jobs below the margin threshold. Jobs without cost
// data are excluded: an unknown cost is not a 100% margin.
func (s *profitabilityService) LowMarginJobs(profs []domain.JobProfitability, threshold decimal.Decimal) []domain.JobProfitability {
	low := make([]domain.JobProfitability, 0)
	for _, p := range profs {
		if !p.Cost.HasCostData() {
			continue
		}
		if p.Margin.LessThan(threshold) {
			low = append(low, p)
		}
	}
	sort.Slice(low, func(i, j int) bool { return low[i].Margin.LessThan(low[j].Margin) })
	return low
}

// HighMarginJobs returns the top jobs by margin, best first.
func (s *profitabilityService) HighMarginJobs(profs []domain.JobProfitability, limit int) []domain.JobProfitability {
	high := make([]domain.JobProfitability, 0, len(profs))
	for _, p := range profs {
		if p.Cost.HasCostData() {
			high = append(high, p)
		}
	}
	sort.Slice(high, func(i, j int) bool { return high[i].Margin.GreaterThan(high[j].Margin) })
	if limit > 0 && len(high) > limit {
		high = high[:limit]
	}
	return high
}

// NegativeProfitJobs returns loss-making jobs, worst first, with the summed
// loss across them.
func (s *profitabilityService) NegativeProfitJobs(profs []domain.JobProfitability) ([]domain.JobProfitability, decimal.Decimal) {
	negative := make([]domain.JobProfitability, 0)
	lost := decimal.Zero
	for _, p := range profs {
		if !p.Cost.HasCostData() {
			continue
		}
		if p.Profit.IsNegative() {
			negative = append(negative, p)
			lost = lost.Add(p.Profit.Abs())
		}
	}
	sort.Slice(negative, func(i, j int) bool { return negative[i].Profit.LessThan(negative[j].Profit) })
	return negative, lost
}

// MarginAlerts builds the structured alert set for jobs issued in [from, to].
func (s *profitabilityService) MarginAlerts(ctx context.Context, from, to time.Time, opts dto.MarginAlertOptions) (*domain.MarginAlertReport, error) {
	if opts.MarginThreshold.IsZero() {
		opts.MarginThreshold = defaultMarginThreshold
	}
	if opts.CostSpikeThresholdPct.IsZero() {
		opts.CostSpikeThresholdPct = defaultCostSpikePct
	}

	profs, err := s.ProfitabilityForRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	report := &domain.MarginAlertReport{
		LowMarginJobs: s.LowMarginJobs(profs, opts.MarginThreshold),
	}
	report.NegativeProfitJobs, report.TotalRevenueLost = s.NegativeProfitJobs(profs)
	report.CostSpikes = costSpikes(profs, opts.CostSpikeThresholdPct)

	underperforming, err := s.underperformingTemplates(ctx, profs, opts.MarginThreshold)
	if err != nil {
		return nil, err
	}
	report.UnderperformingTemplates = underperforming

	// Margin history ordered by issue date, oldest first, feeding the
	// declining-trend check.
	byDate := make([]domain.JobProfitability, 0, len(profs))
	for _, p := range profs {
		if p.Cost.HasCostData() {
			byDate = append(byDate, p)
		}
	}
	sort.Slice(byDate, func(i, j int) bool { return byDate[i].IssueDate.Before(byDate[j].IssueDate) })
	margins := make([]decimal.Decimal, len(byDate))
	for i, p := range byDate {
		margins[i] = p.Margin
	}
	report.DecliningTrend = analytics.DecliningMargin(margins, opts.DecliningTrendWindow, defaultDecliningThreshold)

	for _, p := range profs {
		if !p.Cost.HasCostData() {
			report.MissingCostData = append(report.MissingCostData, p.JobID)
		}
	}

	report.Recommendations = buildRecommendations(report, opts)

	s.LogInfo(ctx, "Margin alert report built",
		slog.Int("low_margin", len(report.LowMarginJobs)),
		slog.Int("negative_profit", len(report.NegativeProfitJobs)),
		slog.Int("cost_spikes", len(report.CostSpikes)),
		slog.Bool("declining_trend", report.DecliningTrend))
	return report, nil
}

// costSpikes flags jobs whose effective cost overran the template estimate by
// more than thresholdPct. Only jobs carrying both an actual and an estimate
// qualify.
func costSpikes(profs []domain.JobProfitability, thresholdPct decimal.Decimal) []domain.CostSpike {
	spikes := make([]domain.CostSpike, 0)
	for _, p := range profs {
		if p.Cost.VariancePct == nil {
			continue
		}
		if p.Cost.VariancePct.GreaterThan(thresholdPct) {
			spikes = append(spikes, domain.CostSpike{
				JobID:      p.JobID,
				ClientName: p.ClientName,
				Estimate:   *p.Cost.Estimate,
				Effective:  p.Cost.Amount,
				OverrunPct: *p.Cost.VariancePct,
			})
		}
	}
	sort.Slice(spikes, func(i, j int) bool { return spikes[i].OverrunPct.GreaterThan(spikes[j].OverrunPct) })
	return spikes
}

// underperformingTemplates reports templates whose average job margin across
// their usages fell below the threshold.
func (s *profitabilityService) underperformingTemplates(ctx context.Context, profs []domain.JobProfitability, threshold decimal.Decimal) ([]domain.TemplatePerformance, error) {
	jobIDs := make([]string, 0, len(profs))
	marginByJob := make(map[string]decimal.Decimal, len(profs))
	for _, p := range profs {
		if !p.Cost.HasCostData() {
			continue
		}
		jobIDs = append(jobIDs, p.JobID)
		marginByJob[p.JobID] = p.Margin
	}
	if len(jobIDs) == 0 {
		return []domain.TemplatePerformance{}, nil
	}

	usages, err := s.templateRepo.FindUsagesByJobIDs(ctx, jobIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch template usages: %w", err)
	}

	marginsByTemplate := make(map[string][]decimal.Decimal)
	for jobID, jobUsages := range usages {
		margin, ok := marginByJob[jobID]
		if !ok {
			continue
		}
		counted := make(map[string]struct{})
		for _, u := range jobUsages {
			// A job using the same template twice still contributes once.
			if _, dup := counted[u.TemplateID]; dup {
				continue
			}
			counted[u.TemplateID] = struct{}{}
			marginsByTemplate[u.TemplateID] = append(marginsByTemplate[u.TemplateID], margin)
		}
	}
	if len(marginsByTemplate) == 0 {
		return []domain.TemplatePerformance{}, nil
	}

	templateIDs := make([]string, 0, len(marginsByTemplate))
	for id := range marginsByTemplate {
		templateIDs = append(templateIDs, id)
	}
	templates, err := s.templateRepo.FindTemplatesByIDs(ctx, templateIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch templates: %w", err)
	}

	under := make([]domain.TemplatePerformance, 0)
	for id, margins := range marginsByTemplate {
		avg := analytics.Mean(margins)
		if !avg.LessThan(threshold) {
			continue
		}
		perf := domain.TemplatePerformance{
			TemplateID:    id,
			UsageCount:    len(margins),
			AverageMargin: avg,
		}
		if tmpl, ok := templates[id]; ok {
			perf.TemplateName = tmpl.Name
		}
		under = append(under, perf)
	}
	sort.Slice(under, func(i, j int) bool { return under[i].AverageMargin.LessThan(under[j].AverageMargin) })
	return under, nil
}

func buildRecommendations(report *domain.MarginAlertReport, opts dto.MarginAlertOptions) []string {
	recs := make([]string, 0)
	if n := len(report.NegativeProfitJobs); n > 0 {
		recs = append(recs, fmt.Sprintf("%d job(s) are loss-making with %s in total losses; review their pricing or costs", n, report.TotalRevenueLost.Round(2).String()))
	}
	if n := len(report.LowMarginJobs); n > 0 {
		recs = append(recs, fmt.Sprintf("%d job(s) fall below the %s%% margin threshold", n, opts.MarginThreshold.String()))
	}
	if n := len(report.CostSpikes); n > 0 {
		recs = append(recs, fmt.Sprintf("%d job(s) overran their estimates by more than %s%%; check the underlying templates", n, opts.CostSpikeThresholdPct.String()))
	}
	for _, t := range report.UnderperformingTemplates {
		recs = append(recs, fmt.Sprintf("template %q averages a %s%% margin across %d use(s); consider repricing it", t.TemplateName, t.AverageMargin.Round(2).String(), t.UsageCount))
	}
	if report.DecliningTrend {
		recs = append(recs, "overall margins are trending down across recent jobs")
	}
	if n := len(report.MissingCostData); n > 0 {
		recs = append(recs, fmt.Sprintf("%d job(s) have no cost data; link transactions or apply templates to improve coverage", n))
	}
	return recs
}
