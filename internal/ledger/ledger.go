// Package ledger maintains the globally shared record of cumulative energy
// use and CO2 emissions across all simulation calls. The backing store is the
// sole source of truth; the service may run as multiple instances.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrStoreUnavailable marks a ledger operation that exhausted its bounded
// retries against an unreachable backing store. Callers surface it instead
// of retrying indefinitely.
var ErrStoreUnavailable = errors.New("consumption store unavailable")

const (
	defaultAttempts = 3
	defaultBackoff  = 50 * time.Millisecond
)

// Ledger wraps a Store with input validation and bounded retry/backoff for
// transient store failures. All methods are safe for unbounded concurrent
// use; atomicity is delegated to the store.
type Ledger struct {
	store    Store
	attempts int
	backoff  time.Duration
}

// New builds a ledger on top of the given store.
func New(store Store) *Ledger {
	return &Ledger{store: store, attempts: defaultAttempts, backoff: defaultBackoff}
}

// Record atomically adds one call's energy (kWh) and co2 (kgCO2) to the
// cumulative counters and appends them to the per-call histories.
func (l *Ledger) Record(ctx context.Context, energy, co2 float64) error {
	return l.RecordBatch(ctx, []float64{energy}, []float64{co2})
}

// RecordBatch records the per-interval costs of one chained run in a single
// atomic step: either every value lands or none does.
func (l *Ledger) RecordBatch(ctx context.Context, energies, co2s []float64) error {
	if len(energies) != len(co2s) {
		return fmt.Errorf("mismatched batch lengths: %d energies vs %d co2s", len(energies), len(co2s))
	}
	for i := range energies {
		if energies[i] < 0 || co2s[i] < 0 {
			return fmt.Errorf("consumption values must be non-negative, got energy=%g co2=%g",
				energies[i], co2s[i])
		}
	}
	return l.withRetry(ctx, func() error {
		return l.store.Apply(ctx, energies, co2s)
	})
}

// Snapshot returns a consistent read of the ledger state.
func (l *Ledger) Snapshot(ctx context.Context) (*State, error) {
	var state *State
	err := l.withRetry(ctx, func() error {
		var err error
		state, err = l.store.Snapshot(ctx)
		return err
	})
	return state, err
}

// Reset atomically zeroes all cumulative fields and clears the histories.
// A Record racing with Reset lands entirely before or entirely after it.
func (l *Ledger) Reset(ctx context.Context) error {
	return l.withRetry(ctx, func() error {
		return l.store.Reset(ctx)
	})
}

func (l *Ledger) withRetry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 1; attempt <= l.attempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			break
		}
		if attempt < l.attempts {
			time.Sleep(time.Duration(attempt) * l.backoff)
		}
	}
	return fmt.Errorf("%w: %d attempts failed, last error: %v", ErrStoreUnavailable, l.attempts, err)
}
