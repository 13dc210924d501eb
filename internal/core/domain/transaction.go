package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RevenueCategory is the category label the categorization collaborator uses
// for income. Everything else with a negative amount is a candidate expense.
const RevenueCategory = "Revenue"

// Transaction is a bank transaction supplied by the bank-sync collaborator.
// Negative amounts are money out (expenses), positive amounts are money in.
// Immutable from this engine's perspective except for the allocation relation.
type Transaction struct {
	TransactionID string          `json:"transactionID"` // Primary Key (UUID)
	Amount        decimal.Decimal `json:"amount"`        // Signed
	Date          time.Time       `json:"date"`
	Name          string          `json:"name"`               // Merchant / free text
	Category      *string         `json:"category,omitempty"` // Owned by the categorization engine
	AuditFields
}

// IsExpense reports whether the transaction represents money leaving the
// account that is not categorized as revenue.
func (t *Transaction) IsExpense() bool {
	if t.Category != nil && *t.Category == RevenueCategory {
		return false
	}
	return t.Amount.IsNegative()
}

// Magnitude returns the absolute transaction amount.
func (t *Transaction) Magnitude() decimal.Decimal {
	return t.Amount.Abs()
}
