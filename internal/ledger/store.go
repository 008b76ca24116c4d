package ledger

import "context"

// State is a consistent snapshot of the global consumption ledger.
type State struct {
	EnergyUsed       float64   // kWh, cumulative
	CO2Emissions     float64   // kgCO2, cumulative
	EnergyUsedList   []float64 // per-call history, oldest first, windowed
	CO2EmissionsList []float64
}

// Store persists the ledger counters. It is the sole arbiter of consistency:
// Apply must be atomic with respect to concurrent Apply/Reset/Snapshot calls
// (no lost increments, no torn snapshots), and Snapshot must observe a single
// serialization point.
//
// Implemented by Redis (production) and an in-memory store (dev and tests).
type Store interface {
	// Apply adds every energy value to the cumulative energy counter and
	// every co2 value to the cumulative emissions counter, appending each
	// to the respective per-call history list, all in one atomic step.
	Apply(ctx context.Context, energies, co2s []float64) error

	// Snapshot returns the ledger state as of one serialization point.
	Snapshot(ctx context.Context) (*State, error)

	// Reset atomically zeroes the counters and clears the histories.
	Reset(ctx context.Context) error
}
