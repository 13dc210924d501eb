package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestExceedsAllocationCapacity(t *testing.T) {
	txn := decimal.RequireFromString("-3200.00")
	existing := decimal.RequireFromString("1600.00")

	t.Run("FillsRemainingCapacity", func(t *testing.T) {
		attempted := decimal.RequireFromString("1600.00")
		assert.False(t, ExceedsAllocationCapacity(txn, existing, attempted))
	})

	t.Run("ExceedsRemainingCapacity", func(t *testing.T) {
		attempted := decimal.RequireFromString("1700.00")
		assert.True(t, ExceedsAllocationCapacity(txn, existing, attempted))
	})

	t.Run("RoundingSlackAccepted", func(t *testing.T) {
		// One cent over the magnitude sits exactly on capacity.
		attempted := decimal.RequireFromString("1600.01")
		assert.False(t, ExceedsAllocationCapacity(txn, existing, attempted))
	})

	t.Run("BeyondRoundingSlackRejected", func(t *testing.T) {
		attempted := decimal.RequireFromString("1600.02")
		assert.True(t, ExceedsAllocationCapacity(txn, existing, attempted))
	})

	t.Run("MagnitudeComparedForPositiveTransactions", func(t *testing.T) {
		income := decimal.RequireFromString("3200.00")
		assert.False(t, ExceedsAllocationCapacity(income, existing, decimal.RequireFromString("1600.00")))
		assert.True(t, ExceedsAllocationCapacity(income, existing, decimal.RequireFromString("1700.00")))
	})

	t.Run("FirstAllocationAgainstEmptyLedger", func(t *testing.T) {
		assert.False(t, ExceedsAllocationCapacity(txn, decimal.Zero, decimal.RequireFromString("3200.00")))
		assert.True(t, ExceedsAllocationCapacity(txn, decimal.Zero, decimal.RequireFromString("3300.00")))
	})
}
