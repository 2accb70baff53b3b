package engine_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/loboISC/arrendamiento-sub000/internal/engine"
	"github.com/loboISC/arrendamiento-sub000/internal/model"
)

func newController() *engine.TotalsController {
	return engine.NewTotalsController(
		engine.NewStatusCalculator(0.20, 0.80),
		engine.NewProrationEngine(taxRate16()),
	)
}

// rentalContract covers a 10-day rental: one line of 10 x 100 = 1000
// subtotal, 16% tax, no discount, daily rate 100.
func rentalContract() *model.Contract {
	return &model.Contract{
		ID:        uuid.New(),
		Number:    "CT-2025-0001",
		ClientID:  uuid.New(),
		StartDate: date(2025, time.February, 19),
		EndDate:   date(2025, time.March, 1),
		Status:    "Activo",
		DailyRate: dec("100"),
		Items: []model.ContractItem{
			{Key: "AND-01", Description: "Andamio estándar", Quantity: 10, UnitPrice: dec("100"), Guarantee: dec("200")},
		},
	}
}

func TestRecompute_DerivesFinancialsAndStatus(t *testing.T) {
	ctrl := newController()
	contract := rentalContract()
	today := date(2025, time.February, 20)

	proj, err := ctrl.Recompute(contract, engine.NewProrationSession(), today)
	require.NoError(t, err)

	require.True(t, proj.Financials.Subtotal.Equal(dec("1000")))
	require.True(t, proj.Financials.Tax.Equal(dec("160")))
	require.True(t, proj.Financials.Total.Equal(dec("1160")))
	require.True(t, proj.Financials.GuaranteeAmount.Equal(dec("200")))
	require.Equal(t, 10, proj.DaysTotal)
	require.Equal(t, model.StateActive, proj.Status.State)
	require.Equal(t, 9, proj.Status.DaysRemaining)
	require.False(t, proj.Extended)
}

func TestRecompute_DiscountEntersTotal(t *testing.T) {
	ctrl := newController()
	contract := rentalContract()
	contract.Financials.Discount = dec("100")

	proj, err := ctrl.Recompute(contract, nil, date(2025, time.February, 20))
	require.NoError(t, err)

	// total = subtotal - discount + tax
	require.True(t, proj.Financials.Total.Equal(dec("1060")), "got %s", proj.Financials.Total)
}

func TestRecompute_ManualLineTotalPreservedButSubtotalDerived(t *testing.T) {
	ctrl := newController()
	contract := rentalContract()
	contract.Items[0].LineTotal = dec("555")
	contract.Items[0].ManualTotal = true

	proj, err := ctrl.Recompute(contract, nil, date(2025, time.February, 20))
	require.NoError(t, err)

	require.True(t, contract.Items[0].LineTotal.Equal(dec("555")))
	require.True(t, proj.Financials.Subtotal.Equal(dec("1000")))
}

func TestSetExtension_AppliesAndForcesStatus(t *testing.T) {
	ctrl := newController()
	contract := rentalContract()
	session := engine.NewProrationSession()
	today := date(2025, time.February, 20)

	proj, err := ctrl.SetExtension(contract, session, true, 5, today)
	require.NoError(t, err)

	require.True(t, proj.Financials.Subtotal.Equal(dec("1500")))
	require.True(t, proj.Financials.Tax.Equal(dec("240")))
	require.True(t, proj.Financials.Total.Equal(dec("1740")))
	require.Equal(t, 15, proj.DaysTotal)
	require.Equal(t, date(2025, time.March, 6), proj.EndDate)
	require.Equal(t, model.StateActiveWithExtension, proj.Status.State)
	require.True(t, proj.Extended)
	require.Equal(t, 5, proj.ExtraDays)
}

func TestSetExtension_ZeroExtraDaysRevertsStatusToDates(t *testing.T) {
	ctrl := newController()
	contract := rentalContract()
	session := engine.NewProrationSession()
	today := date(2025, time.February, 20)

	proj, err := ctrl.SetExtension(contract, session, true, 0, today)
	require.NoError(t, err)

	require.False(t, proj.Extended)
	require.Equal(t, model.StateActive, proj.Status.State)
	require.True(t, proj.Financials.Total.Equal(dec("1160")))
	require.Equal(t, date(2025, time.March, 1), proj.EndDate)
}

func TestEditDuringOpenExtensionDoesNotMoveBase(t *testing.T) {
	ctrl := newController()
	contract := rentalContract()
	session := engine.NewProrationSession()
	today := date(2025, time.February, 20)

	_, err := ctrl.SetExtension(contract, session, true, 5, today)
	require.NoError(t, err)

	// Item edit while the extension is open: reconciliation runs but the
	// live base snapshot must stay untouched.
	contract.Items[0].Quantity = 20
	proj, err := ctrl.Recompute(contract, session, today)
	require.NoError(t, err)

	require.True(t, proj.Financials.Subtotal.Equal(dec("1500")), "projection still derives from the captured base")
	require.True(t, session.State().BaseSubtotal.Equal(dec("1000")))
}

func TestSetExtension_DeactivateRestoresPreActivationValues(t *testing.T) {
	ctrl := newController()
	contract := rentalContract()
	session := engine.NewProrationSession()
	today := date(2025, time.February, 20)

	before, err := ctrl.Recompute(contract, session, today)
	require.NoError(t, err)
	contract.Financials = before.Financials
	contract.EndDate = before.EndDate

	_, err = ctrl.SetExtension(contract, session, true, 5, today)
	require.NoError(t, err)
	// Items drift while the extension is open; restoration must still use
	// the stored base, not re-derive from the drifted items.
	contract.Items[0].Quantity = 99

	proj, err := ctrl.SetExtension(contract, session, false, 0, today)
	require.NoError(t, err)

	require.Equal(t, before.Financials.Subtotal.String(), proj.Financials.Subtotal.String())
	require.Equal(t, before.Financials.Tax.String(), proj.Financials.Tax.String())
	require.Equal(t, before.Financials.Total.String(), proj.Financials.Total.String())
	require.Equal(t, before.EndDate, proj.EndDate)
	require.Equal(t, before.EndDate, contract.EndDate)
	require.False(t, session.Active())
}

func TestRebaseAfterDeactivationPicksUpFreshValues(t *testing.T) {
	ctrl := newController()
	contract := rentalContract()
	session := engine.NewProrationSession()
	today := date(2025, time.February, 20)

	_, err := ctrl.SetExtension(contract, session, true, 5, today)
	require.NoError(t, err)
	_, err = ctrl.SetExtension(contract, session, false, 0, today)
	require.NoError(t, err)

	// New edit session: the next inactive recompute captures a fresh base.
	contract.Items[0].Quantity = 20
	_, err = ctrl.Recompute(contract, session, today)
	require.NoError(t, err)
	require.True(t, session.State().BaseSubtotal.Equal(dec("2000")))

	proj, err := ctrl.SetExtension(contract, session, true, 2, today)
	require.NoError(t, err)
	require.True(t, proj.Financials.Subtotal.Equal(dec("2200")), "extension builds on the fresh base, got %s", proj.Financials.Subtotal)
}

func TestRecompute_ExpiredContractReportsConcludedWithZeroDaysRemaining(t *testing.T) {
	ctrl := newController()
	contract := rentalContract()
	today := date(2025, time.April, 1)

	proj, err := ctrl.Recompute(contract, nil, today)
	require.NoError(t, err)

	require.Equal(t, model.StateConcluded, proj.Status.State)
	require.Equal(t, 0, proj.Status.DaysRemaining, "never expose a negative remaining-days count")
}
