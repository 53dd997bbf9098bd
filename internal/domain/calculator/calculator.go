// Package calculator holds the transaction-entry arithmetic shared by every
// purchase, sale and return form: line discounts and totals, the draft
// total and remaining payment, and batch allocation reconciliation.
package calculator

import (
	"github.com/sangkips/materials-console/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Round2 rounds half away from zero to two decimal places
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Format2 renders d with exactly two decimal places
func Format2(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// LineFigures are the derived values of one line item
type LineFigures struct {
	DiscountPerUnit decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
}

// ComputeLine derives discount per unit, line discount and line total from
// the raw quantity, rate and discount percentage:
//
//	discount_per_unit = round2(rate * pct / 100)
//	discount          = round2(discount_per_unit * quantity)
//	total             = round2(quantity * rate - discount)
func ComputeLine(quantity, rate, pct string) LineFigures {
	q := Parse(quantity)
	r := Parse(rate)
	p := Parse(ClampPercentage(pct))

	perUnit := Round2(r.Mul(p).Div(hundred))
	discount := Round2(perUnit.Mul(q))
	total := Round2(q.Mul(r).Sub(discount))

	return LineFigures{
		DiscountPerUnit: perUnit,
		Discount:        discount,
		Total:           total,
	}
}

// Recompute refreshes the derived fields of line from its raw inputs
func Recompute(line *entity.LineItem) {
	f := ComputeLine(line.Quantity, line.PerUnitRate, line.DiscountPercentage)
	line.DiscountPerUnit = Format2(f.DiscountPerUnit)
	line.Discount = Format2(f.Discount)
	line.TotalAmount = Format2(f.Total)
}

// SumTotals returns round2 of the sum of line totals
func SumTotals(lines []entity.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(Parse(line.TotalAmount))
	}
	return Round2(sum)
}

// Remaining returns round2(total - paid). A negative result is a credit in
// favour of the counterparty.
func Remaining(total, paid decimal.Decimal) decimal.Decimal {
	return Round2(total.Sub(paid))
}

// RecomputeDraft refreshes every line and the draft-level totals
func RecomputeDraft(d *entity.TransactionDraft) {
	for i := range d.Lines {
		Recompute(&d.Lines[i])
	}
	total := SumTotals(d.Lines)
	d.TotalAmount = Format2(total)
	d.RemainingPayment = Format2(Remaining(total, Parse(d.PaidAmount)))
}
