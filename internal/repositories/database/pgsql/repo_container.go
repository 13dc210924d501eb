package pgsql

import (
	portsrepo "github.com/profitlens/job_costing_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		JobRepo:         newPgxJobRepository(dbPool),
		TransactionRepo: newPgxTransactionRepository(dbPool),
		AllocationRepo:  newPgxAllocationRepository(dbPool),
		TemplateRepo:    newPgxTemplateRepository(dbPool),
		OverrideRepo:    newPgxOverrideRepository(dbPool),
		ExternalRepo:    newPgxExternalRepository(dbPool),
	}
}
