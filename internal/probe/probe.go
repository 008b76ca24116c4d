// Package probe measures the resource cost of a single bounded unit of
// computation: elapsed wall time, energy drawn and CO2-equivalent emissions.
// Values are best-effort estimates; only non-negativity and monotone
// accumulation are contractual.
package probe

import (
	"time"

	"github.com/google/uuid"
)

// Measurement is the cost of one probed computation.
type Measurement struct {
	EnergyKWh float64
	CO2Kg     float64
	Elapsed   time.Duration
}

// Probe brackets a computation. Start before the work, Stop after.
type Probe interface {
	Start() Run
}

// Run is one in-flight measurement handle.
type Run interface {
	ID() uuid.UUID
	Stop() Measurement
}

// EnergyEstimator is a software probe: it attributes a configured constant
// power draw to the process for the duration of the run and converts the
// resulting energy to emissions with a grid carbon-intensity factor.
type EnergyEstimator struct {
	PowerWatts      float64 // assumed CPU package power while computing
	CarbonIntensity float64 // kgCO2 per kWh of the local grid

	now func() time.Time // test hook
}

// NewEnergyEstimator builds a probe with the given power draw (W) and grid
// carbon intensity (kgCO2/kWh). Non-positive inputs fall back to defaults
// roughly matching a mid-range server CPU on the western European grid.
func NewEnergyEstimator(powerWatts, carbonIntensity float64) *EnergyEstimator {
	if powerWatts <= 0 {
		powerWatts = 65
	}
	if carbonIntensity <= 0 {
		carbonIntensity = 0.056
	}
	return &EnergyEstimator{
		PowerWatts:      powerWatts,
		CarbonIntensity: carbonIntensity,
		now:             time.Now,
	}
}

// Start begins a measurement run.
func (e *EnergyEstimator) Start() Run {
	return &estimatorRun{
		id:      uuid.New(),
		probe:   e,
		started: e.clock(),
	}
}

func (e *EnergyEstimator) clock() time.Time {
	if e.now != nil {
		return e.now()
	}
	return time.Now()
}

func (e *EnergyEstimator) estimate(elapsed time.Duration) (energyKWh, co2Kg float64) {
	if elapsed < 0 {
		elapsed = 0
	}
	energyKWh = e.PowerWatts * elapsed.Hours() / 1000
	co2Kg = energyKWh * e.CarbonIntensity
	return energyKWh, co2Kg
}

type estimatorRun struct {
	id      uuid.UUID
	probe   *EnergyEstimator
	started time.Time
}

func (r *estimatorRun) ID() uuid.UUID { return r.id }

func (r *estimatorRun) Stop() Measurement {
	elapsed := r.probe.clock().Sub(r.started)
	if elapsed < 0 {
		elapsed = 0
	}
	energy, co2 := r.probe.estimate(elapsed)
	return Measurement{EnergyKWh: energy, CO2Kg: co2, Elapsed: elapsed}
}
