package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/loboISC/arrendamiento-sub000/internal/model"
)

// TotalsController runs the single recompute pipeline invoked on every edit:
// reconcile items, rebase the proration session when no extension edit is in
// flight, apply the extension when one is, then derive the display status.
// Callers never talk to the reconciler, proration engine or status
// calculator directly.
type TotalsController struct {
	status    StatusCalculator
	proration *ProrationEngine
	taxRate   decimal.Decimal
}

func NewTotalsController(status StatusCalculator, proration *ProrationEngine) *TotalsController {
	return &TotalsController{
		status:    status,
		proration: proration,
		taxRate:   proration.TaxRate(),
	}
}

// Projection is the consolidated result of one recompute cycle, used both
// for rendering and for persistence.
type Projection struct {
	Financials model.ContractFinancials
	EndDate    time.Time
	DaysTotal  int
	Extended   bool
	ExtraDays  int
	Status     model.StatusProjection
}

// Recompute runs the full pipeline over the contract's current state.
// Line totals are refreshed in place; the session, when inactive, re-captures
// its base from the reconciled values so stale bases never survive across
// edit sessions.
func (c *TotalsController) Recompute(contract *model.Contract, session *ProrationSession, today time.Time) (Projection, error) {
	RecomputeLineTotals(contract.Items)
	rec := Reconcile(contract.Items, contract.QuotationGuarantee)

	fin := contract.Financials
	fin.Subtotal = rec.Subtotal
	fin.Tax = rec.Subtotal.Mul(c.taxRate).Round(2)
	fin.GuaranteeAmount = rec.GuaranteeAmount
	fin.Total = fin.Subtotal.Sub(fin.Discount).Add(fin.Tax)

	endDate := DateOnly(contract.EndDate)
	daysTotal := contractDays(contract.StartDate, contract.EndDate)
	extended := false
	extraDays := 0
	sessionOwnsStatus := false

	if session != nil {
		if !session.Active() {
			session.Rebase(fin.Subtotal, fin.Tax, fin.Total, endDate, daysTotal)
		} else {
			ext, err := c.proration.Extend(session, contract.DailyRate)
			if err != nil {
				return Projection{}, err
			}
			fin.Subtotal = ext.Subtotal
			fin.Tax = ext.Tax
			fin.Total = ext.Total
			if !ext.EndDate.IsZero() {
				endDate = ext.EndDate
			}
			daysTotal = ext.DaysTotal
			extended = ext.Extended
			extraDays = session.State().ExtraDays
			sessionOwnsStatus = true
		}
	}

	var status StatusResult
	switch {
	case extended:
		status = ForState(model.StateActiveWithExtension)
	case sessionOwnsStatus:
		// Open session with zero extra days: the stored label may still say
		// extension, but the session owns that flag now, so derive purely
		// from the unmodified base dates.
		status = c.status.Compute("", contract.StartDate, endDate, today)
	default:
		status = c.status.Compute(contract.Status, contract.StartDate, endDate, today)
	}

	return Projection{
		Financials: fin,
		EndDate:    endDate,
		DaysTotal:  daysTotal,
		Extended:   extended,
		ExtraDays:  extraDays,
		Status: model.StatusProjection{
			State:         status.State,
			ColorToken:    status.ColorToken,
			IconToken:     status.IconToken,
			DaysRemaining: daysRemaining(endDate, today),
		},
	}, nil
}

// SetExtension opens, updates or closes the extension session and returns
// the resulting projection. Deactivation restores the stored base snapshot
// verbatim onto the contract instead of re-deriving it.
func (c *TotalsController) SetExtension(contract *model.Contract, session *ProrationSession, active bool, extraDays int, today time.Time) (Projection, error) {
	if active {
		if !session.Captured() {
			// First activation: capture the base from current reconciled
			// values before the extension opens.
			if _, err := c.Recompute(contract, session, today); err != nil {
				return Projection{}, err
			}
		}
		if err := c.proration.Activate(session, extraDays); err != nil {
			return Projection{}, err
		}
		return c.Recompute(contract, session, today)
	}

	restored := c.proration.Deactivate(session)
	if session.Captured() {
		contract.Financials.Subtotal = restored.BaseSubtotal
		contract.Financials.Tax = restored.BaseTax
		contract.Financials.Total = restored.BaseTotal
		if !restored.BaseEndDate.IsZero() {
			contract.EndDate = restored.BaseEndDate
		}
	}

	status := c.status.Compute("", contract.StartDate, contract.EndDate, today)
	return Projection{
		Financials: contract.Financials,
		EndDate:    DateOnly(contract.EndDate),
		DaysTotal:  contractDays(contract.StartDate, contract.EndDate),
		Status: model.StatusProjection{
			State:         status.State,
			ColorToken:    status.ColorToken,
			IconToken:     status.IconToken,
			DaysRemaining: daysRemaining(contract.EndDate, today),
		},
	}, nil
}

// Status derives the display tuple from a contract's stored fields alone,
// without touching items or session state. Used for list views where item
// rows are not loaded.
func (c *TotalsController) Status(contract *model.Contract, today time.Time) model.StatusProjection {
	status := c.status.Compute(contract.Status, contract.StartDate, contract.EndDate, today)
	return model.StatusProjection{
		State:         status.State,
		ColorToken:    status.ColorToken,
		IconToken:     status.IconToken,
		DaysRemaining: daysRemaining(contract.EndDate, today),
	}
}

func contractDays(start, end time.Time) int {
	days := DaysBetween(start, end)
	if days < 0 {
		return 0
	}
	return days
}

func daysRemaining(end, today time.Time) int {
	if end.IsZero() || today.IsZero() {
		return 0
	}
	remaining := DaysBetween(today, end)
	if remaining < 0 {
		return 0
	}
	return remaining
}
