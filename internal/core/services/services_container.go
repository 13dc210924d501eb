package services

import (
	portsrepo "github.com/profitlens/job_costing_app/internal/core/ports/repositories"
	portssvc "github.com/profitlens/job_costing_app/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Allocation = NewAllocationService(
		repos.AllocationRepo,
		repos.TransactionRepo,
		repos.JobRepo,
	)

	// The Cost Resolver feeds every reporting service, so it comes first.
	container.Costing = NewCostingService(
		repos.JobRepo,
		repos.AllocationRepo,
		repos.TemplateRepo,
		repos.OverrideRepo,
		repos.ExternalRepo,
	)

	container.Profitability = NewProfitabilityService(repos.JobRepo, repos.TemplateRepo, container.Costing)
	container.Trend = NewTrendService(repos.TransactionRepo, container.Profitability)
	container.Reconciliation = NewReconciliationService(repos.JobRepo, repos.ExternalRepo, container.Profitability)

	return container
}
