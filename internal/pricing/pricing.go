// Package pricing computes line and document monetary totals.
//
// Rounding happens after every arithmetic step, to two decimals,
// half-away-from-zero. Summing already-rounded per-line totals can differ
// by a paisa from a round-once scheme; three independent call paths rely
// on the totals agreeing, so the per-step scheme is load-bearing.
package pricing

import "math"

// DefaultGSTPercent is applied when a caller leaves a tax percent unset.
// Overridden at startup when DEFAULT_GST_PERCENT is configured.
var DefaultGSTPercent = 9.0

// LineAmounts holds the computed monetary values for one document line.
type LineAmounts struct {
	Amount     float64
	CGSTAmount float64
	SGSTAmount float64
	Total      float64
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// PriceLine turns quantity, unit rate and tax percents into line amounts.
// Negative tax percents select the policy default.
func PriceLine(qty, rate, cgstPct, sgstPct float64) LineAmounts {
	if cgstPct < 0 {
		cgstPct = DefaultGSTPercent
	}
	if sgstPct < 0 {
		sgstPct = DefaultGSTPercent
	}
	amount := Round2(qty * rate)
	cgst := Round2(amount * cgstPct / 100)
	sgst := Round2(amount * sgstPct / 100)
	return LineAmounts{
		Amount:     amount,
		CGSTAmount: cgst,
		SGSTAmount: sgst,
		Total:      Round2(amount + cgst + sgst),
	}
}

// DocumentTotals sums already-rounded line amounts into document figures.
// The sums are re-rounded only to strip floating-point summation noise.
type DocumentTotals struct {
	TotalAmount float64
	TaxAmount   float64
	GrandTotal  float64
}

// SumLines aggregates line amounts into document totals.
func SumLines(lines []LineAmounts) DocumentTotals {
	var totals DocumentTotals
	for _, l := range lines {
		totals.TotalAmount += l.Amount
		totals.TaxAmount += l.CGSTAmount + l.SGSTAmount
		totals.GrandTotal += l.Total
	}
	totals.TotalAmount = Round2(totals.TotalAmount)
	totals.TaxAmount = Round2(totals.TaxAmount)
	totals.GrandTotal = Round2(totals.GrandTotal)
	return totals
}
