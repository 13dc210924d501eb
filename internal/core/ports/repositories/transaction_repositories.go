package repositories

import (
	"context"
	"time"

	"github.com/profitlens/job_costing_app/internal/core/domain"
)

// TransactionRepositoryFacade provides read access to bank transactions.
// Transactions are imported by the bank-sync collaborator; this engine never
// writes them.
type TransactionRepositoryFacade interface {
	// FindTransactionByID retrieves a transaction by its ID. Returns
	// apperrors.ErrNotFound if missing.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListExpenseTransactions retrieves money-out transactions dated within
	// [from, to] whose category does not mark them as revenue.
	ListExpenseTransactions(ctx context.Context, from, to time.Time) ([]domain.Transaction, error)
}
