package apperrors

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OverAllocationError is returned when an allocation attempt would push a
// transaction's allocated total past its amount. It carries the numbers the
// caller needs to correct the request.
type OverAllocationError struct {
	TransactionID string
	Attempted     decimal.Decimal
	CurrentTotal  decimal.Decimal
	Capacity      decimal.Decimal
}

func (e *OverAllocationError) Error() string {
	remaining := e.Capacity.Sub(e.CurrentTotal)
	return fmt.Sprintf("over-allocation for transaction %s: attempted %s with %s already allocated of %s (remaining %s)",
		e.TransactionID, e.Attempted.String(), e.CurrentTotal.String(), e.Capacity.String(), remaining.String())
}

// Unwrap lets callers match over-allocation as a validation error.
func (e *OverAllocationError) Unwrap() error {
	return ErrValidation
}
