package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPriceLineBaseline(t *testing.T) {
	got := PriceLine(10, 100, 9, 9)
	require.Equal(t, 1000.00, got.Amount)
	require.Equal(t, 90.00, got.CGSTAmount)
	require.Equal(t, 90.00, got.SGSTAmount)
	require.Equal(t, 1180.00, got.Total)
}

func TestPriceLineDefaultsTaxPercents(t *testing.T) {
	got := PriceLine(10, 100, -1, -1)
	require.Equal(t, 90.00, got.CGSTAmount)
	require.Equal(t, 90.00, got.SGSTAmount)
}

func TestPriceLineRoundsPerStep(t *testing.T) {
	// amount 10.05, 9% tax = 0.9045 which rounds to 0.90 per step.
	// A round-once scheme would give 10.05*1.18 = 11.859 -> 11.86;
	// the per-step scheme must give 11.85.
	got := PriceLine(1, 10.05, 9, 9)
	require.Equal(t, 10.05, got.Amount)
	require.Equal(t, 0.90, got.CGSTAmount)
	require.Equal(t, 0.90, got.SGSTAmount)
	require.Equal(t, 11.85, got.Total)
}

func TestPriceLineHalfAwayFromZero(t *testing.T) {
	// 0.125 must round up to 0.13, not banker's-round down to 0.12.
	require.Equal(t, 0.13, Round2(0.125))
	require.Equal(t, -0.13, Round2(-0.125))
}

func TestPriceLineTotalMatchesStepIdentity(t *testing.T) {
	cases := []struct {
		qty, rate, cgst, sgst float64
	}{
		{10, 100, 9, 9},
		{7, 13.37, 9, 9},
		{2.5, 99.99, 6, 6},
		{1, 0.01, 9, 9},
		{0, 500, 9, 9},
	}
	for _, c := range cases {
		got := PriceLine(c.qty, c.rate, c.cgst, c.sgst)
		amount := Round2(c.qty * c.rate)
		want := Round2(amount + Round2(amount*c.cgst/100) + Round2(amount*c.sgst/100))
		require.Equal(t, want, got.Total, "qty=%v rate=%v", c.qty, c.rate)
	}
}

func TestSumLines(t *testing.T) {
	lines := []LineAmounts{
		PriceLine(10, 100, 9, 9),
		PriceLine(1, 10.05, 9, 9),
	}
	totals := SumLines(lines)
	require.Equal(t, 1010.05, totals.TotalAmount)
	require.Equal(t, 181.80, totals.TaxAmount)
	require.Equal(t, 1191.85, totals.GrandTotal)
}
