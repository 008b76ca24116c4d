package ledger

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is the in-process Store used in development and tests. A
// single mutex is the serialization point, which gives the same atomicity
// guarantees as the Redis pipeline.
type MemoryStore struct {
	mu           sync.Mutex
	energyUsed   float64
	co2Emissions float64
	energyList   []float64
	co2List      []float64
	historyLimit int
}

// NewMemoryStore builds an empty in-memory store. historyLimit caps the
// per-call history lists; values < 1 fall back to 100.
func NewMemoryStore(historyLimit int) *MemoryStore {
	if historyLimit < 1 {
		historyLimit = 100
	}
	return &MemoryStore{historyLimit: historyLimit}
}

// Apply adds the deltas and appends to the histories under one lock.
func (s *MemoryStore) Apply(_ context.Context, energies, co2s []float64) error {
	if len(energies) != len(co2s) {
		return fmt.Errorf("mismatched batch lengths: %d energies vs %d co2s", len(energies), len(co2s))
	}
	if len(energies) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range energies {
		s.energyUsed += energies[i]
		s.co2Emissions += co2s[i]
		s.energyList = append(s.energyList, energies[i])
		s.co2List = append(s.co2List, co2s[i])
	}
	s.energyList = trimWindow(s.energyList, s.historyLimit)
	s.co2List = trimWindow(s.co2List, s.historyLimit)
	return nil
}

// Snapshot copies the state under the lock; callers own the returned slices.
func (s *MemoryStore) Snapshot(_ context.Context) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &State{
		EnergyUsed:       s.energyUsed,
		CO2Emissions:     s.co2Emissions,
		EnergyUsedList:   append([]float64{}, s.energyList...),
		CO2EmissionsList: append([]float64{}, s.co2List...),
	}, nil
}

// Reset zeroes everything under the lock.
func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.energyUsed = 0
	s.co2Emissions = 0
	s.energyList = nil
	s.co2List = nil
	return nil
}

func trimWindow(list []float64, limit int) []float64 {
	if len(list) <= limit {
		return list
	}
	return append([]float64{}, list[len(list)-limit:]...)
}
