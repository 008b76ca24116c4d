package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger() *Ledger {
	l := New(NewMemoryStore(0))
	l.backoff = time.Millisecond
	return l
}

func TestLedger_RecordAccumulates(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	require.NoError(t, l.Record(ctx, 0.5, 0.1))
	require.NoError(t, l.Record(ctx, 0.25, 0.05))

	state, err := l.Snapshot(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, state.EnergyUsed, 1e-12)
	assert.InDelta(t, 0.15, state.CO2Emissions, 1e-12)
	assert.Equal(t, []float64{0.5, 0.25}, state.EnergyUsedList)
	assert.Equal(t, []float64{0.1, 0.05}, state.CO2EmissionsList)
}

func TestLedger_RejectsNegativeValues(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	assert.Error(t, l.Record(ctx, -1, 0))
	assert.Error(t, l.Record(ctx, 0, -1))

	state, err := l.Snapshot(ctx)
	require.NoError(t, err)
	assert.Zero(t, state.EnergyUsed)
	assert.Empty(t, state.EnergyUsedList)
}

func TestLedger_RecordBatchIsAtomic(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	// One negative value poisons the whole batch: nothing may land.
	err := l.RecordBatch(ctx, []float64{0.1, -0.2, 0.3}, []float64{0.01, 0.02, 0.03})
	assert.Error(t, err)

	state, err := l.Snapshot(ctx)
	require.NoError(t, err)
	assert.Zero(t, state.EnergyUsed)

	require.NoError(t, l.RecordBatch(ctx, []float64{0.1, 0.2}, []float64{0.01, 0.02}))
	state, err = l.Snapshot(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, state.EnergyUsed, 1e-12)
	assert.InDelta(t, 0.03, state.CO2Emissions, 1e-12)
}

func TestLedger_ConcurrentRecordsLoseNothing(t *testing.T) {
	// Identical per-call values make the float sum order-independent, so
	// the total can be asserted exactly.
	const energyPerCall, co2PerCall = 0.001, 0.0002

	for _, workers := range []int{10, 100, 1000} {
		workers := workers
		t.Run(fmt.Sprintf("%d writers", workers), func(t *testing.T) {
			ctx := context.Background()
			store := NewMemoryStore(workers + 1)
			l := New(store)

			var wg sync.WaitGroup
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					assert.NoError(t, l.Record(ctx, energyPerCall, co2PerCall))
				}()
			}
			wg.Wait()

			state, err := l.Snapshot(ctx)
			require.NoError(t, err)
			assert.Equal(t, float64(workers)*energyPerCall, state.EnergyUsed)
			assert.Equal(t, float64(workers)*co2PerCall, state.CO2Emissions)
			assert.Len(t, state.EnergyUsedList, workers)
			assert.Len(t, state.CO2EmissionsList, workers)
		})
	}
}

func TestLedger_ResetThenSnapshotIsZero(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	require.NoError(t, l.Record(ctx, 1.5, 0.3))
	require.NoError(t, l.Reset(ctx))

	state, err := l.Snapshot(ctx)
	require.NoError(t, err)
	assert.Zero(t, state.EnergyUsed)
	assert.Zero(t, state.CO2Emissions)
	assert.Empty(t, state.EnergyUsedList)
	assert.Empty(t, state.CO2EmissionsList)

	// Reset is idempotent.
	require.NoError(t, l.Reset(ctx))
	state, err = l.Snapshot(ctx)
	require.NoError(t, err)
	assert.Zero(t, state.EnergyUsed)
}

func TestLedger_RecordRacingResetNeverTearsState(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(2048)
	l := New(store)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = l.Record(ctx, 0.001, 0.0002)
		}()
		go func() {
			defer wg.Done()
			_ = l.Reset(ctx)
		}()
	}
	wg.Wait()

	// Whatever interleaving happened, counters and histories must agree:
	// every surviving record is fully present.
	state, err := l.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, float64(len(state.EnergyUsedList))*0.001, state.EnergyUsed)
	assert.Equal(t, float64(len(state.CO2EmissionsList))*0.0002, state.CO2Emissions)
}

func TestLedger_HistoryIsWindowed(t *testing.T) {
	ctx := context.Background()
	l := New(NewMemoryStore(5))

	for i := 0; i < 12; i++ {
		require.NoError(t, l.Record(ctx, float64(i), float64(i)/10))
	}

	state, err := l.Snapshot(ctx)
	require.NoError(t, err)
	// Totals keep everything, the history keeps the last 5.
	assert.InDelta(t, 66, state.EnergyUsed, 1e-9)
	assert.Equal(t, []float64{7, 8, 9, 10, 11}, state.EnergyUsedList)
}

type flakyStore struct {
	mu       sync.Mutex
	failures int
	inner    Store
}

func (f *flakyStore) Apply(ctx context.Context, energies, co2s []float64) error {
	f.mu.Lock()
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		return errors.New("connection refused")
	}
	f.mu.Unlock()
	return f.inner.Apply(ctx, energies, co2s)
}

func (f *flakyStore) Snapshot(ctx context.Context) (*State, error) { return f.inner.Snapshot(ctx) }
func (f *flakyStore) Reset(ctx context.Context) error              { return f.inner.Reset(ctx) }

func TestLedger_RetriesTransientStoreFailures(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{failures: 2, inner: NewMemoryStore(0)}
	l := New(store)
	l.backoff = time.Millisecond

	require.NoError(t, l.Record(ctx, 0.5, 0.1))

	state, err := l.Snapshot(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, state.EnergyUsed, 1e-12)
}

func TestLedger_SurfacesStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{failures: 100, inner: NewMemoryStore(0)}
	l := New(store)
	l.backoff = time.Millisecond

	err := l.Record(ctx, 0.5, 0.1)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
