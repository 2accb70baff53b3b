package engine

import (
	"strings"
	"time"

	"github.com/loboISC/arrendamiento-sub000/internal/model"
)

const (
	defaultWarnThreshold     = 0.20
	defaultCriticalThreshold = 0.80
)

// StatusCalculator derives the display state of a contract from its dates,
// today's date and any manually stored label. It is a total function: garbage
// or missing dates degrade to Active unless an expiry comparison is possible.
type StatusCalculator struct {
	warnAt     float64
	criticalAt float64
}

// NewStatusCalculator builds a calculator with the progress fractions at
// which a contract moves to AboutToConclude and ImminentConclusion.
// Out-of-range thresholds fall back to the defaults.
func NewStatusCalculator(warnAt, criticalAt float64) StatusCalculator {
	if warnAt <= 0 || warnAt >= 1 {
		warnAt = defaultWarnThreshold
	}
	if criticalAt <= warnAt || criticalAt >= 1 {
		criticalAt = defaultCriticalThreshold
	}
	return StatusCalculator{warnAt: warnAt, criticalAt: criticalAt}
}

// StatusResult is the display tuple for a derived state.
type StatusResult struct {
	State      model.ContractState
	ColorToken string
	IconToken  string
}

// Compute resolves the display state. A stored extension label wins
// unconditionally, then a stored concluded label, then expiry by date, then
// the elapsed-progress bands (inclusive at both thresholds).
func (c StatusCalculator) Compute(stored string, startDate, endDate, today time.Time) StatusResult {
	if isExtensionLabel(stored) {
		return ForState(model.StateActiveWithExtension)
	}
	if isConcludedLabel(stored) {
		return ForState(model.StateConcluded)
	}

	start := DateOnly(startDate)
	end := DateOnly(endDate)
	now := DateOnly(today)

	if !end.IsZero() && !now.IsZero() && now.After(end) {
		return ForState(model.StateConcluded)
	}

	progress := progressFraction(start, end, now)
	switch {
	case progress < c.warnAt:
		return ForState(model.StateActive)
	case progress < c.criticalAt:
		return ForState(model.StateAboutToConclude)
	default:
		return ForState(model.StateImminentConclusion)
	}
}

// progressFraction maps today onto [0,1] within the contract period. Any
// undefined denominator resolves to 0 rather than NaN.
func progressFraction(start, end, now time.Time) float64 {
	if start.IsZero() || end.IsZero() || now.IsZero() {
		return 0
	}
	span := DaysBetween(start, end)
	if span <= 0 {
		return 0
	}
	elapsed := DaysBetween(start, now)
	if elapsed <= 0 {
		return 0
	}
	progress := float64(elapsed) / float64(span)
	if progress > 1 {
		return 1
	}
	return progress
}

// ForState returns the display tuple for a lifecycle state.
func ForState(state model.ContractState) StatusResult {
	switch state {
	case model.StateAboutToConclude:
		return StatusResult{State: state, ColorToken: "warning", IconToken: "fa-hourglass-half"}
	case model.StateImminentConclusion:
		return StatusResult{State: state, ColorToken: "danger", IconToken: "fa-triangle-exclamation"}
	case model.StateConcluded:
		return StatusResult{State: state, ColorToken: "secondary", IconToken: "fa-flag-checkered"}
	case model.StateActiveWithExtension:
		return StatusResult{State: state, ColorToken: "info", IconToken: "fa-calendar-plus"}
	default:
		return StatusResult{State: model.StateActive, ColorToken: "success", IconToken: "fa-circle-check"}
	}
}

func isExtensionLabel(stored string) bool {
	return strings.Contains(normalizeLabel(stored), "prorroga")
}

func isConcludedLabel(stored string) bool {
	return normalizeLabel(stored) == "concluido"
}

// normalizeLabel lowercases and strips accents so "Prórroga" and "prorroga"
// compare equal.
func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	replacer := strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u")
	return replacer.Replace(s)
}
