package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a bank transaction row. Negative amounts are money out.
type Transaction struct {
	TransactionID string          `db:"transaction_id"`
	Amount        decimal.Decimal `db:"amount"`
	Date          time.Time       `db:"date"`
	Name          string          `db:"name"`
	Category      *string         `db:"category"` // Nullable
	AuditFields
}
