package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/loboISC/arrendamiento-sub000/internal/model"
)

// ProrationSession holds one contract's extension edit state. The base
// snapshot is captured while no extension is open and never overwritten
// during one, so deactivation can restore the exact pre-extension values.
type ProrationSession struct {
	state    model.ProrationState
	captured bool
}

func NewProrationSession() *ProrationSession {
	return &ProrationSession{}
}

func (s *ProrationSession) Active() bool   { return s.state.Active }
func (s *ProrationSession) Captured() bool { return s.captured }

// State returns a copy of the session's proration state.
func (s *ProrationSession) State() model.ProrationState { return s.state }

// Rebase captures a fresh base snapshot from current contract values.
// Refused while an extension is open: a live base must never be overwritten.
func (s *ProrationSession) Rebase(subtotal, tax, total decimal.Decimal, endDate time.Time, baseDays int) bool {
	if s.state.Active {
		return false
	}
	s.state = model.ProrationState{
		BaseDays:     baseDays,
		BaseSubtotal: subtotal,
		BaseTax:      tax,
		BaseTotal:    total,
		BaseEndDate:  DateOnly(endDate),
	}
	s.captured = true
	return true
}

// ProrationEngine computes reversible contract extensions. The tax rate is
// supplied at construction; the engine never assumes a jurisdiction.
type ProrationEngine struct {
	taxRate decimal.Decimal
}

func NewProrationEngine(taxRate decimal.Decimal) *ProrationEngine {
	if taxRate.IsNegative() {
		taxRate = decimal.Zero
	}
	return &ProrationEngine{taxRate: taxRate}
}

func (e *ProrationEngine) TaxRate() decimal.Decimal { return e.taxRate }

// Activate opens (or updates) an extension on the session. Negative extra
// days clamp to zero. Activating without a captured base is a caller
// sequencing bug and fails with ErrNoBaseSnapshot.
func (e *ProrationEngine) Activate(s *ProrationSession, extraDays int) error {
	if !s.captured {
		return ErrNoBaseSnapshot
	}
	if extraDays < 0 {
		extraDays = 0
	}
	s.state.Active = true
	s.state.ExtraDays = extraDays
	return nil
}

// Deactivate closes the session and returns the stored base snapshot so the
// caller can restore the contract verbatim. The base is returned as stored,
// never re-derived.
func (e *ProrationEngine) Deactivate(s *ProrationSession) model.ProrationState {
	s.state.Active = false
	s.state.ExtraDays = 0
	return s.state
}

// Extension is the schedule and totals of a contract under an extension.
type Extension struct {
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	SubtotalExtra decimal.Decimal
	TaxExtra      decimal.Decimal
	TotalExtra    decimal.Decimal
	EndDate       time.Time
	DaysTotal     int
	Extended      bool
}

// Extend computes totals and schedule for the session's current extra days.
// With zero extra days the base values come back unchanged and Extended is
// false. A missing base end date leaves the end date unset rather than
// failing.
func (e *ProrationEngine) Extend(s *ProrationSession, dailyRate decimal.Decimal) (Extension, error) {
	if !s.captured {
		return Extension{}, ErrNoBaseSnapshot
	}

	st := s.state
	ext := Extension{
		Subtotal:  st.BaseSubtotal,
		Tax:       st.BaseTax,
		Total:     st.BaseTotal,
		EndDate:   st.BaseEndDate,
		DaysTotal: st.BaseDays,
	}
	if st.ExtraDays <= 0 {
		return ext, nil
	}

	unit := e.unitDayPrice(dailyRate, st)
	days := decimal.NewFromInt(int64(st.ExtraDays))

	ext.SubtotalExtra = unit.Mul(days)
	ext.TaxExtra = ext.SubtotalExtra.Mul(e.taxRate).Round(2)
	ext.TotalExtra = ext.SubtotalExtra.Add(ext.TaxExtra)
	ext.Subtotal = st.BaseSubtotal.Add(ext.SubtotalExtra)
	ext.Tax = st.BaseTax.Add(ext.TaxExtra)
	ext.Total = st.BaseTotal.Add(ext.TotalExtra)
	ext.DaysTotal = st.BaseDays + st.ExtraDays
	if !st.BaseEndDate.IsZero() {
		ext.EndDate = AddDays(st.BaseEndDate, st.ExtraDays)
	}
	ext.Extended = true
	return ext, nil
}

// unitDayPrice prefers the contract's daily rate and falls back to the base
// subtotal spread over the base days. Zero base days resolve to zero, never
// a division error.
func (e *ProrationEngine) unitDayPrice(dailyRate decimal.Decimal, st model.ProrationState) decimal.Decimal {
	if dailyRate.IsPositive() {
		return dailyRate
	}
	if st.BaseDays <= 0 {
		return decimal.Zero
	}
	return st.BaseSubtotal.Div(decimal.NewFromInt(int64(st.BaseDays)))
}
