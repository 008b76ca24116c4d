package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terminal-bench/cabletherm/internal/config"
	"github.com/terminal-bench/cabletherm/internal/ledger"
)

func TestBuildStore_EmptyRedisURLUsesMemoryStore(t *testing.T) {
	cfg := &config.Config{RedisURL: "", LedgerHistoryLimit: 10}

	store, err := buildStore(cfg)

	require.NoError(t, err)
	assert.IsType(t, &ledger.MemoryStore{}, store)
}

func TestBuildStore_FallbackReachableFromEnv(t *testing.T) {
	t.Setenv("REDIS_URL", "")

	cfg := config.Load()
	store, err := buildStore(cfg)

	require.NoError(t, err)
	assert.IsType(t, &ledger.MemoryStore{}, store)
}

func TestRunRecorder_NilRepositoryStaysNil(t *testing.T) {
	assert.Nil(t, runRecorder(nil))
}
