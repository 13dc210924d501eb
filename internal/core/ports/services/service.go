package services

// ServiceContainer bundles all engine service facades for injection into the
// HTTP layer.
type ServiceContainer struct {
	Allocation     AllocationLedgerSvcFacade
	Costing        CostResolverSvcFacade
	Profitability  ProfitabilitySvcFacade
	Trend          TrendSvcFacade
	Reconciliation ReconciliationSvcFacade
}
