package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/loboISC/arrendamiento-sub000/internal/engine"
	"github.com/loboISC/arrendamiento-sub000/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestReconcile_SubtotalIgnoresStoredLineTotals(t *testing.T) {
	items := []model.ContractItem{
		{Description: "Andamio marco", Quantity: 4, UnitPrice: dec("250.00"), LineTotal: dec("9999.99"), ManualTotal: true},
		{Description: "Travesaño", Quantity: 10, UnitPrice: dec("35.50"), LineTotal: dec("1.00")},
	}

	rec := engine.Reconcile(items, nil)

	// 4*250 + 10*35.50, independent of whatever line totals were stored.
	require.True(t, rec.Subtotal.Equal(dec("1355.00")), "got %s", rec.Subtotal)
}

func TestReconcile_EmptyInputYieldsZeroAggregates(t *testing.T) {
	rec := engine.Reconcile(nil, nil)

	require.True(t, rec.Subtotal.IsZero())
	require.True(t, rec.GuaranteeAmount.IsZero())
	require.True(t, rec.ItemGuaranteeSum.IsZero())
}

func TestReconcile_GuaranteeSumsItems(t *testing.T) {
	items := []model.ContractItem{
		{Quantity: 1, UnitPrice: dec("100"), Guarantee: dec("50")},
		{Quantity: 2, UnitPrice: dec("200"), Guarantee: dec("75.25")},
	}

	rec := engine.Reconcile(items, nil)

	require.True(t, rec.GuaranteeAmount.Equal(dec("125.25")))
}

func TestReconcile_QuotationGuaranteeTakesPrecedence(t *testing.T) {
	items := []model.ContractItem{
		{Quantity: 1, UnitPrice: dec("100"), Guarantee: dec("50")},
		{Quantity: 1, UnitPrice: dec("100"), Guarantee: dec("60")},
	}
	quoted := dec("300")

	rec := engine.Reconcile(items, &quoted)

	require.True(t, rec.GuaranteeAmount.Equal(quoted))
	// The raw item sum stays visible so a divergence can be surfaced.
	require.True(t, rec.ItemGuaranteeSum.Equal(dec("110")))
}

func TestReconcile_NegativeInputsCoerceToZero(t *testing.T) {
	items := []model.ContractItem{
		{Quantity: -3, UnitPrice: dec("100")},
		{Quantity: 2, UnitPrice: dec("-50")},
		{Quantity: 2, UnitPrice: dec("10"), Guarantee: dec("-5")},
	}

	rec := engine.Reconcile(items, nil)

	require.True(t, rec.Subtotal.Equal(dec("20")), "got %s", rec.Subtotal)
	require.True(t, rec.GuaranteeAmount.IsZero())
}

func TestRecomputeLineTotals_PreservesManualOverride(t *testing.T) {
	items := []model.ContractItem{
		{Quantity: 3, UnitPrice: dec("10"), LineTotal: dec("25"), ManualTotal: true},
		{Quantity: 3, UnitPrice: dec("10"), LineTotal: dec("999")},
	}

	engine.RecomputeLineTotals(items)

	require.True(t, items[0].LineTotal.Equal(dec("25")), "manual total must stay verbatim")
	require.True(t, items[1].LineTotal.Equal(dec("30")))
}
