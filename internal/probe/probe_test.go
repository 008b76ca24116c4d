package probe

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnergyEstimator_Estimate(t *testing.T) {
	e := NewEnergyEstimator(100, 0.5)

	// 100 W for one hour is 0.1 kWh, at 0.5 kgCO2/kWh.
	energy, co2 := e.estimate(time.Hour)
	assert.InDelta(t, 0.1, energy, 1e-12)
	assert.InDelta(t, 0.05, co2, 1e-12)

	energy, co2 = e.estimate(0)
	assert.Zero(t, energy)
	assert.Zero(t, co2)
}

func TestEnergyEstimator_StopIsNonNegative(t *testing.T) {
	e := NewEnergyEstimator(65, 0.056)

	// Frozen clock: Stop before any time passes.
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return fixed }

	run := e.Start()
	m := run.Stop()
	assert.GreaterOrEqual(t, m.EnergyKWh, 0.0)
	assert.GreaterOrEqual(t, m.CO2Kg, 0.0)
	assert.GreaterOrEqual(t, m.Elapsed, time.Duration(0))
}

func TestEnergyEstimator_MoreComputationNoLessEnergy(t *testing.T) {
	e := NewEnergyEstimator(65, 0.056)

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return clock }

	short := e.Start()
	clock = clock.Add(10 * time.Millisecond)
	shortM := short.Stop()

	long := e.Start()
	clock = clock.Add(500 * time.Millisecond)
	longM := long.Stop()

	assert.GreaterOrEqual(t, longM.EnergyKWh, shortM.EnergyKWh)
	assert.GreaterOrEqual(t, longM.CO2Kg, shortM.CO2Kg)
}

func TestEnergyEstimator_RunsHaveDistinctIDs(t *testing.T) {
	e := NewEnergyEstimator(0, 0) // defaults kick in
	require.Greater(t, e.PowerWatts, 0.0)
	require.Greater(t, e.CarbonIntensity, 0.0)

	a, b := e.Start(), e.Start()
	assert.NotEqual(t, a.ID(), b.ID())
	assert.NotEqual(t, uuid.Nil, a.ID())
}
