package services

import (
	"context"
	"time"

	"github.com/profitlens/job_costing_app/internal/core/domain"
)

// ReconciliationSvcFacade merges externally reported P&L figures with
// internally computed totals.
type ReconciliationSvcFacade interface {
	// Reconcile merges the external P&L for [from, to] with internal job
	// totals, isolating post-sync local edits. A missing external P&L is a
	// graceful degradation, not an error.
	Reconcile(ctx context.Context, from, to time.Time) (*domain.ReconciliationReport, error)
}
