package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/profitlens/job_costing_app/internal/core/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decs(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = dec(v)
	}
	return out
}

func TestPeriodKey(t *testing.T) {
	date := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "2025-08", PeriodKey(date, domain.GranularityMonth))
	assert.Equal(t, "2025-Q3", PeriodKey(date, domain.GranularityQuarter))
	assert.Equal(t, "2025", PeriodKey(date, domain.GranularityYear))

	january := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-Q1", PeriodKey(january, domain.GranularityQuarter))
}

func TestMargin(t *testing.T) {
	assert.True(t, Margin(dec("2000"), dec("5000")).Equal(dec("40")))
	assert.True(t, Margin(dec("-500"), dec("1000")).Equal(dec("-50")))
	assert.True(t, Margin(dec("100"), decimal.Zero).IsZero())
	assert.True(t, Margin(dec("100"), dec("-200")).IsZero())
}

func TestGrowthPct(t *testing.T) {
	assert.True(t, GrowthPct(dec("150"), dec("100")).Equal(dec("50")))
	assert.True(t, GrowthPct(dec("75"), dec("100")).Equal(dec("-25")))

	// A zero prior period reports exactly zero growth, never an infinity.
	assert.True(t, GrowthPct(dec("150"), decimal.Zero).IsZero())
}

func TestMean(t *testing.T) {
	assert.True(t, Mean(decs("10", "20", "30")).Equal(dec("20")))
	assert.True(t, Mean(nil).IsZero())
}

func TestMedian_OddLength(t *testing.T) {
	assert.True(t, Median(decs("30", "10", "20")).Equal(dec("20")))
}

func TestMedian_EvenLength(t *testing.T) {
	// Mid-pair average: (20 + 30) / 2.
	assert.True(t, Median(decs("40", "10", "30", "20")).Equal(dec("25")))
}

func TestMedian_DoesNotMutateInput(t *testing.T) {
	values := decs("30", "10", "20")
	Median(values)
	assert.True(t, values[0].Equal(dec("30")))
}

func TestTrendDirection(t *testing.T) {
	assert.Equal(t, domain.TrendGrowing, TrendDirection(decs("10", "10", "10", "20", "20", "20")))
	assert.Equal(t, domain.TrendDeclining, TrendDirection(decs("20", "20", "20", "10", "10", "10")))
	assert.Equal(t, domain.TrendStable, TrendDirection(decs("10", "10", "10", "10", "10", "10")))

	// Fewer than six observations is always stable.
	assert.Equal(t, domain.TrendStable, TrendDirection(decs("50", "10", "5")))
}

func TestDecliningMargin(t *testing.T) {
	threshold := dec("5")

	// 38 average falling to 29.67 is a decline of more than five points.
	assert.True(t, DecliningMargin(decs("40", "38", "36", "34", "30", "25"), 0, threshold))

	// A two point drop stays under the threshold.
	assert.False(t, DecliningMargin(decs("40", "40", "40", "38", "38", "38"), 0, threshold))

	// Too few observations to split.
	assert.False(t, DecliningMargin(decs("40", "20"), 0, threshold))

	// Lookback trims older history before comparing halves.
	history := decs("90", "90", "90", "40", "38", "36", "34", "30", "25")
	assert.True(t, DecliningMargin(history, 6, threshold))
}

func TestDecliningMargin_ImprovingMargins(t *testing.T) {
	assert.False(t, DecliningMargin(decs("25", "30", "34", "36", "38", "40"), 0, dec("5")))
}
