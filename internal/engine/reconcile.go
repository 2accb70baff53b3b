package engine

import (
	"github.com/shopspring/decimal"

	"github.com/loboISC/arrendamiento-sub000/internal/model"
)

// Reconciled is the aggregate derived from a contract's current item list.
// ItemGuaranteeSum keeps the raw item-level sum even when the quotation's
// guarantee takes precedence, so callers can surface a divergence.
type Reconciled struct {
	Subtotal         decimal.Decimal
	GuaranteeAmount  decimal.Decimal
	ItemGuaranteeSum decimal.Decimal
}

// Reconcile derives the authoritative subtotal and guarantee from the item
// list. The subtotal always comes from quantity times unit price, never from
// a stored line total, so a stale manual override cannot leak into the
// aggregate. A guarantee supplied by the originating quotation wins over the
// item-level sum. Empty input yields zero aggregates.
func Reconcile(items []model.ContractItem, quotationGuarantee *decimal.Decimal) Reconciled {
	subtotal := decimal.Zero
	guaranteeSum := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(lineAmount(item))
		if item.Guarantee.IsPositive() {
			guaranteeSum = guaranteeSum.Add(item.Guarantee)
		}
	}

	out := Reconciled{
		Subtotal:         subtotal,
		GuaranteeAmount:  guaranteeSum,
		ItemGuaranteeSum: guaranteeSum,
	}
	if quotationGuarantee != nil {
		out.GuaranteeAmount = *quotationGuarantee
	}
	return out
}

// RecomputeLineTotals refreshes derived line totals in place. Manually
// overridden totals are preserved verbatim until the line is edited again.
func RecomputeLineTotals(items []model.ContractItem) {
	for i := range items {
		if items[i].ManualTotal {
			continue
		}
		items[i].LineTotal = lineAmount(items[i])
	}
}

func lineAmount(item model.ContractItem) decimal.Decimal {
	qty := item.Quantity
	if qty < 0 {
		qty = 0
	}
	price := item.UnitPrice
	if price.IsNegative() {
		price = decimal.Zero
	}
	return price.Mul(decimal.NewFromInt(int64(qty)))
}
