package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/profitlens/job_costing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// PeriodKey derives the calendar bucket key for a date: "YYYY-MM" for months,
// "YYYY-Qn" for quarters, "YYYY" for years.
func PeriodKey(date time.Time, granularity domain.PeriodGranularity) string {
	switch granularity {
	case domain.GranularityQuarter:
		quarter := (int(date.Month())-1)/3 + 1
		return fmt.Sprintf("%04d-Q%d", date.Year(), quarter)
	case domain.GranularityYear:
		return fmt.Sprintf("%04d", date.Year())
	default:
		return date.Format("2006-01")
	}
}

// Margin computes profit as a percentage of revenue. Zero revenue yields a
// zero margin, never a division error.
func Margin(profit, revenue decimal.Decimal) decimal.Decimal {
	if !revenue.IsPositive() {
		return decimal.Zero
	}
	return profit.Div(revenue).Mul(oneHundred)
}

// GrowthPct computes the percentage change from previous to current.
// A zero previous value yields exactly 0, never an infinity.
func GrowthPct(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(oneHundred)
}

// Mean returns the arithmetic mean of the values, zero for an empty set.
func Mean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(values))))
}

// Median returns the middle of the sorted values; even-length sets average
// the two middle values. Zero for an empty set. The input is not modified.
func Median(values []decimal.Decimal) decimal.Decimal {
	n := len(values)
	if n == 0 {
		return decimal.Zero
	}
	sorted := make([]decimal.Decimal, n)
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })
	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2))
}

// TrendDirection compares the mean of the latest three values against the
// mean of the three before them. Any positive difference is growing, any
// negative difference declining; a tie or fewer than six values is stable.
func TrendDirection(values []decimal.Decimal) domain.TrendDirection {
	if len(values) < 6 {
		return domain.TrendStable
	}
	recent := Mean(values[len(values)-3:])
	previous := Mean(values[len(values)-6 : len(values)-3])
	switch {
	case recent.GreaterThan(previous):
		return domain.TrendGrowing
	case recent.LessThan(previous):
		return domain.TrendDeclining
	default:
		return domain.TrendStable
	}
}

// minDecliningSample is the smallest margin history worth evaluating; below
// this the halves are too noisy to compare.
const minDecliningSample = 6

// DecliningMargin reports whether the mean margin of the second half of the
// lookback window fell below the first half by more than threshold absolute
// percentage points.
func DecliningMargin(margins []decimal.Decimal, lookback int, threshold decimal.Decimal) bool {
	window := margins
	if lookback > 0 && len(margins) > lookback {
		window = margins[len(margins)-lookback:]
	}
	if len(window) < minDecliningSample {
		return false
	}
	half := len(window) / 2
	firstHalf := Mean(window[:half])
	secondHalf := Mean(window[half:])
	return firstHalf.Sub(secondHalf).GreaterThan(threshold)
}
