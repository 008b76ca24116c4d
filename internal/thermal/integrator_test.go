package thermal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrate_Deterministic(t *testing.T) {
	a, err := Integrate(25, referenceConditions, 60, 0.01, false)
	require.NoError(t, err)
	b, err := Integrate(25, referenceConditions, 60, 0.01, false)
	require.NoError(t, err)

	// Bit-identical: the model has no randomness.
	assert.Equal(t, a.FinalTemperature, b.FinalTemperature)
}

func TestIntegrate_StepEqualsDuration(t *testing.T) {
	res, err := Integrate(25, referenceConditions, 60, 60, true)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Steps)
	require.Len(t, res.Trace, 2)
	assert.Equal(t, 0.0, res.Trace[0].TimeOffset)
	assert.Equal(t, 25.0, res.Trace[0].Temperature)
	assert.Equal(t, 60.0, res.Trace[1].TimeOffset)
	assert.Equal(t, res.FinalTemperature, res.Trace[1].Temperature)
}

func TestIntegrate_PartialFinalStepLandsExactly(t *testing.T) {
	// 10s is not a multiple of 0.3s: 34 steps, the last one 0.1s long.
	res, err := Integrate(25, referenceConditions, 10, 0.3, true)
	require.NoError(t, err)

	assert.Equal(t, 34, res.Steps)
	require.Len(t, res.Trace, 35)
	assert.Equal(t, 10.0, res.Trace[len(res.Trace)-1].TimeOffset)

	// The shrunken last step still converges to the full-grid answer.
	fine, err := Integrate(25, referenceConditions, 10, 0.001, false)
	require.NoError(t, err)
	assert.InDelta(t, fine.FinalTemperature, res.FinalTemperature, 1e-6)
}

func TestIntegrate_TraceStartsAtInitial(t *testing.T) {
	res, err := Integrate(40, referenceConditions, 5, 1, true)
	require.NoError(t, err)

	require.Len(t, res.Trace, 6)
	assert.Equal(t, TracePoint{TimeOffset: 0, Temperature: 40}, res.Trace[0])
}

func TestIntegrate_ApproachesEquilibrium(t *testing.T) {
	eq := Equilibrium(referenceConditions)

	// Ten hours is far beyond the relaxation time constant (~10 min).
	res, err := Integrate(25, referenceConditions, 36000, 1, false)
	require.NoError(t, err)
	assert.InDelta(t, eq, res.FinalTemperature, 1e-6)

	// Approach is monotone from below when starting under equilibrium.
	short, err := Integrate(25, referenceConditions, 60, 1, false)
	require.NoError(t, err)
	assert.Greater(t, res.FinalTemperature, short.FinalTemperature)
	assert.Less(t, res.FinalTemperature, eq+1e-9)
}

func TestIntegrate_InvalidParameters(t *testing.T) {
	cases := []struct {
		name     string
		initial  float64
		cond     Conditions
		duration float64
		step     float64
	}{
		{"zero duration", 25, referenceConditions, 0, 0.1},
		{"negative duration", 25, referenceConditions, -60, 0.1},
		{"zero step", 25, referenceConditions, 60, 0},
		{"negative step", 25, referenceConditions, 60, -1},
		{"step beyond duration", 25, referenceConditions, 60, 61},
		{"negative wind", 25, Conditions{WindSpeed: -1, CurrentIntensity: 300}, 60, 1},
		{"negative intensity", 25, Conditions{WindSpeed: 1, CurrentIntensity: -300}, 60, 1},
		{"non-finite initial", math.NaN(), referenceConditions, 60, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Integrate(tc.initial, tc.cond, tc.duration, tc.step, false)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestIntegrate_NumericOverflow(t *testing.T) {
	cond := Conditions{AmbientTemperature: 25, WindSpeed: 1, CurrentIntensity: 1e250}

	res, err := Integrate(25, cond, 60, 1, false)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNumericOverflow)
}

func TestChain_SeedsEachIntervalWithPreviousFinal(t *testing.T) {
	finals, err := Chain(25, referenceConditions, Intervals(3, 60), 0.1)
	require.NoError(t, err)
	require.Len(t, finals, 3)

	// Replaying by hand must give the same fold.
	temp := 25.0
	for i := 0; i < 3; i++ {
		res, err := Integrate(temp, referenceConditions, 60, 0.1, false)
		require.NoError(t, err)
		temp = res.FinalTemperature
		assert.Equal(t, temp, finals[i])
	}
}

func TestChain_RequiresIntervals(t *testing.T) {
	_, err := Chain(25, referenceConditions, nil, 0.1)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestChain_DiffersFromSingleShotButConverges(t *testing.T) {
	const (
		segments = 30
		segment  = 60.0
		total    = segments * segment
	)

	// Strong wind shortens the relaxation time constant, which makes the
	// per-step truncation error (and so the chained/single gap) measurable.
	cond := Conditions{AmbientTemperature: 25, WindSpeed: 40, CurrentIntensity: 300}

	gap := func(step float64) float64 {
		finals, err := Chain(25, cond, Intervals(segments, segment), step)
		require.NoError(t, err)
		single, err := Integrate(25, cond, total, step, false)
		require.NoError(t, err)
		return math.Abs(finals[segments-1] - single.FinalTemperature)
	}

	coarse := gap(7.0) // deliberately misaligned with the 60s segment length
	fine := gap(0.05)

	// The two modes are distinct at finite step size and converge as the
	// step shrinks.
	assert.Greater(t, coarse, 0.0)
	assert.Less(t, fine, coarse)
	assert.Less(t, fine, 1e-6)
}
