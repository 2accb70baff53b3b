package engine_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/loboISC/arrendamiento-sub000/internal/engine"
)

func taxRate16() decimal.Decimal { return dec("0.16") }

// capturedSession returns a session rebased on the canonical scenario:
// 10 base days, subtotal 1000, tax 160, total 1160, ending 2025-03-01.
func capturedSession(t *testing.T) *engine.ProrationSession {
	t.Helper()
	s := engine.NewProrationSession()
	ok := s.Rebase(dec("1000"), dec("160"), dec("1160"), date(2025, time.March, 1), 10)
	require.True(t, ok)
	return s
}

func TestExtend_ScenarioWithDailyRate(t *testing.T) {
	eng := engine.NewProrationEngine(taxRate16())
	s := capturedSession(t)

	require.NoError(t, eng.Activate(s, 5))
	ext, err := eng.Extend(s, dec("100"))
	require.NoError(t, err)

	require.True(t, ext.Extended)
	require.True(t, ext.SubtotalExtra.Equal(dec("500")), "got %s", ext.SubtotalExtra)
	require.True(t, ext.TaxExtra.Equal(dec("80")), "got %s", ext.TaxExtra)
	require.True(t, ext.TotalExtra.Equal(dec("580")), "got %s", ext.TotalExtra)
	require.True(t, ext.Subtotal.Equal(dec("1500")))
	require.True(t, ext.Tax.Equal(dec("240")))
	require.True(t, ext.Total.Equal(dec("1740")))
	require.Equal(t, 15, ext.DaysTotal)
	require.Equal(t, date(2025, time.March, 6), ext.EndDate)
}

func TestExtend_FallsBackToBaseSubtotalPerDay(t *testing.T) {
	eng := engine.NewProrationEngine(taxRate16())
	s := capturedSession(t)

	require.NoError(t, eng.Activate(s, 5))
	ext, err := eng.Extend(s, decimal.Zero)
	require.NoError(t, err)

	// 1000 / 10 days = 100 per day, same numbers as the explicit rate.
	require.True(t, ext.SubtotalExtra.Equal(dec("500")))
	require.True(t, ext.Total.Equal(dec("1740")))
}

func TestExtend_ZeroBaseDaysNeverDivides(t *testing.T) {
	eng := engine.NewProrationEngine(taxRate16())
	s := engine.NewProrationSession()
	require.True(t, s.Rebase(dec("1000"), dec("160"), dec("1160"), date(2025, time.March, 1), 0))

	require.NoError(t, eng.Activate(s, 5))
	ext, err := eng.Extend(s, decimal.Zero)
	require.NoError(t, err)

	require.True(t, ext.SubtotalExtra.IsZero())
	require.True(t, ext.Total.Equal(dec("1160")))
	require.Equal(t, 5, ext.DaysTotal)
}

func TestExtend_MissingBaseEndDateLeavesDateUnset(t *testing.T) {
	eng := engine.NewProrationEngine(taxRate16())
	s := engine.NewProrationSession()
	require.True(t, s.Rebase(dec("1000"), dec("160"), dec("1160"), time.Time{}, 10))

	require.NoError(t, eng.Activate(s, 3))
	ext, err := eng.Extend(s, dec("100"))
	require.NoError(t, err)

	require.True(t, ext.EndDate.IsZero())
	require.True(t, ext.Extended)
}

func TestActivate_NegativeExtraDaysClampsToZero(t *testing.T) {
	eng := engine.NewProrationEngine(taxRate16())
	s := capturedSession(t)

	require.NoError(t, eng.Activate(s, -4))
	require.Equal(t, 0, s.State().ExtraDays)

	ext, err := eng.Extend(s, dec("100"))
	require.NoError(t, err)
	require.False(t, ext.Extended)
	require.True(t, ext.Total.Equal(dec("1160")))
}

func TestActivate_WithoutBaseSnapshotFails(t *testing.T) {
	eng := engine.NewProrationEngine(taxRate16())
	s := engine.NewProrationSession()

	require.ErrorIs(t, eng.Activate(s, 5), engine.ErrNoBaseSnapshot)
	_, err := eng.Extend(s, dec("100"))
	require.ErrorIs(t, err, engine.ErrNoBaseSnapshot)
}

func TestRebase_RefusedWhileExtensionOpen(t *testing.T) {
	eng := engine.NewProrationEngine(taxRate16())
	s := capturedSession(t)
	require.NoError(t, eng.Activate(s, 5))

	require.False(t, s.Rebase(dec("999"), dec("1"), dec("1000"), date(2025, time.April, 1), 3))

	st := s.State()
	require.True(t, st.BaseSubtotal.Equal(dec("1000")), "live base must not be overwritten")
	require.Equal(t, 10, st.BaseDays)
	require.Equal(t, date(2025, time.March, 1), st.BaseEndDate)
}

func TestDeactivate_RestoresStoredBaseVerbatim(t *testing.T) {
	eng := engine.NewProrationEngine(taxRate16())
	s := capturedSession(t)
	require.NoError(t, eng.Activate(s, 5))

	restored := eng.Deactivate(s)

	// The literal stored values, not recomputed ones.
	require.Equal(t, "1000", restored.BaseSubtotal.String())
	require.Equal(t, "160", restored.BaseTax.String())
	require.Equal(t, "1160", restored.BaseTotal.String())
	require.Equal(t, date(2025, time.March, 1), restored.BaseEndDate)
	require.Equal(t, 10, restored.BaseDays)
	require.False(t, s.Active())
}

func TestProration_ActivateThenDeactivateIsIdempotent(t *testing.T) {
	eng := engine.NewProrationEngine(taxRate16())
	s := capturedSession(t)
	before := s.State()

	require.NoError(t, eng.Activate(s, 0))
	restored := eng.Deactivate(s)

	require.Equal(t, before.BaseSubtotal.String(), restored.BaseSubtotal.String())
	require.Equal(t, before.BaseTax.String(), restored.BaseTax.String())
	require.Equal(t, before.BaseTotal.String(), restored.BaseTotal.String())
	require.Equal(t, before.BaseEndDate, restored.BaseEndDate)
	require.Equal(t, before.BaseDays, restored.BaseDays)
}

func TestAddDays_CalendarAdditionAcrossDSTChange(t *testing.T) {
	// A timestamp in a DST-shifting zone must still move by whole calendar
	// days.
	loc, err := time.LoadLocation("America/Mexico_City")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	base := time.Date(2016, time.April, 2, 23, 0, 0, 0, loc) // DST started April 3 2016

	got := engine.AddDays(base, 5)
	require.Equal(t, date(2016, time.April, 7), got)
}
