package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loboISC/arrendamiento-sub000/internal/engine"
	"github.com/loboISC/arrendamiento-sub000/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newCalc() engine.StatusCalculator {
	return engine.NewStatusCalculator(0.20, 0.80)
}

func TestComputeStatus_StoredExtensionLabelWins(t *testing.T) {
	calc := newCalc()

	for _, stored := range []string{"Prórroga", "prórroga", "PRORROGA", "Contrato en prórroga"} {
		got := calc.Compute(stored, date(2025, time.January, 1), date(2025, time.January, 11), date(2026, time.June, 1))
		assert.Equal(t, model.StateActiveWithExtension, got.State, "stored=%q", stored)
	}
}

func TestComputeStatus_StoredConcludedWins(t *testing.T) {
	calc := newCalc()

	got := calc.Compute("Concluido", date(2025, time.January, 1), date(2025, time.December, 31), date(2025, time.January, 2))
	require.Equal(t, model.StateConcluded, got.State)
}

func TestComputeStatus_ExpiryOverridesStoredValue(t *testing.T) {
	calc := newCalc()

	got := calc.Compute("Activo", date(2025, time.January, 1), date(2025, time.January, 11), date(2025, time.January, 12))
	require.Equal(t, model.StateConcluded, got.State)
}

func TestComputeStatus_ProgressBands(t *testing.T) {
	calc := newCalc()
	start := date(2025, time.January, 1)
	end := date(2025, time.January, 11) // 10-day span

	cases := []struct {
		name  string
		today time.Time
		want  model.ContractState
	}{
		{"before start", date(2024, time.December, 25), model.StateActive},
		{"ten percent", date(2025, time.January, 2), model.StateActive},
		{"twenty percent boundary", date(2025, time.January, 3), model.StateAboutToConclude},
		{"mid period", date(2025, time.January, 7), model.StateAboutToConclude},
		{"eighty percent boundary", date(2025, time.January, 9), model.StateImminentConclusion},
		{"last day", date(2025, time.January, 11), model.StateImminentConclusion},
		{"past end", date(2025, time.January, 12), model.StateConcluded},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := calc.Compute("", start, end, tc.today)
			assert.Equal(t, tc.want, got.State)
		})
	}
}

func TestComputeStatus_TotalOnMalformedDates(t *testing.T) {
	calc := newCalc()
	var zero time.Time

	// No end date: expiry cannot be judged, degrade to Active.
	assert.Equal(t, model.StateActive, calc.Compute("", date(2025, time.January, 1), zero, date(2025, time.June, 1)).State)
	// No dates at all.
	assert.Equal(t, model.StateActive, calc.Compute("", zero, zero, zero).State)
	// Inverted range: denominator is negative, progress must resolve to 0.
	assert.Equal(t, model.StateActive, calc.Compute("", date(2025, time.February, 1), date(2025, time.January, 20), date(2025, time.January, 15)).State)
	// Zero-length period: denominator is zero, never divide.
	assert.Equal(t, model.StateActive, calc.Compute("", date(2025, time.February, 1), date(2025, time.February, 1), date(2025, time.February, 1)).State)
}

func TestComputeStatus_MonotonicOverTime(t *testing.T) {
	calc := newCalc()
	start := date(2025, time.March, 1)
	end := date(2025, time.March, 31)

	rank := map[model.ContractState]int{
		model.StateActive:             0,
		model.StateAboutToConclude:    1,
		model.StateImminentConclusion: 2,
		model.StateConcluded:          3,
	}

	prev := -1
	for today := start; !today.After(end.AddDate(0, 0, 5)); today = today.AddDate(0, 0, 1) {
		got := calc.Compute("", start, end, today)
		r, ok := rank[got.State]
		require.True(t, ok, "unexpected state %s", got.State)
		require.GreaterOrEqual(t, r, prev, "status regressed at %s", today)
		prev = r
	}
}

func TestNewStatusCalculator_FallsBackOnBadThresholds(t *testing.T) {
	calc := engine.NewStatusCalculator(-1, 2)

	// Defaults 0.20/0.80: the boundary scenario must still hold.
	got := calc.Compute("", date(2025, time.January, 1), date(2025, time.January, 11), date(2025, time.January, 3))
	require.Equal(t, model.StateAboutToConclude, got.State)
}

func TestForState_Tokens(t *testing.T) {
	require.Equal(t, "success", engine.ForState(model.StateActive).ColorToken)
	require.Equal(t, "info", engine.ForState(model.StateActiveWithExtension).ColorToken)
	require.Equal(t, "secondary", engine.ForState(model.StateConcluded).ColorToken)
}
