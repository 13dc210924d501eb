package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	JobRepo         JobRepositoryFacade
	TransactionRepo TransactionRepositoryFacade
	AllocationRepo  AllocationRepositoryFacade
	TemplateRepo    TemplateRepositoryFacade
	OverrideRepo    OverrideRepositoryFacade
	ExternalRepo    ExternalRepositoryFacade
}
