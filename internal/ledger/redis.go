package ledger

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keys, kept compatible with earlier deployments of the service.
const (
	keyEnergyUsed       = "energy_used"
	keyCO2Emissions     = "co2_emissions"
	keyEnergyUsedList   = "energy_used_list"
	keyCO2EmissionsList = "co2_emissions_list"
)

// RedisStore persists the ledger in Redis. Counter updates ride on
// INCRBYFLOAT and list appends on RPUSH inside a MULTI/EXEC pipeline, so a
// whole Apply lands atomically; LTRIM keeps the per-call histories windowed
// instead of growing without bound.
type RedisStore struct {
	client       *redis.Client
	historyLimit int64
}

// NewRedisStore connects to the Redis instance at url (redis://host:port
// form) and verifies the connection. historyLimit caps the per-call history
// lists; values < 1 fall back to 100.
func NewRedisStore(url string, historyLimit int) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	if historyLimit < 1 {
		historyLimit = 100
	}
	return &RedisStore{client: client, historyLimit: int64(historyLimit)}, nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Apply atomically adds the deltas and appends them to the history lists.
func (s *RedisStore) Apply(ctx context.Context, energies, co2s []float64) error {
	if len(energies) != len(co2s) {
		return fmt.Errorf("mismatched batch lengths: %d energies vs %d co2s", len(energies), len(co2s))
	}
	if len(energies) == 0 {
		return nil
	}

	var energyTotal, co2Total float64
	pipe := s.client.TxPipeline()
	for i := range energies {
		energyTotal += energies[i]
		co2Total += co2s[i]
		pipe.RPush(ctx, keyEnergyUsedList, formatFloat(energies[i]))
		pipe.RPush(ctx, keyCO2EmissionsList, formatFloat(co2s[i]))
	}
	pipe.IncrByFloat(ctx, keyEnergyUsed, energyTotal)
	pipe.IncrByFloat(ctx, keyCO2Emissions, co2Total)
	pipe.LTrim(ctx, keyEnergyUsedList, -s.historyLimit, -1)
	pipe.LTrim(ctx, keyCO2EmissionsList, -s.historyLimit, -1)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to apply ledger update: %w", err)
	}
	return nil
}

// Snapshot reads all four keys inside one MULTI/EXEC so the counters and
// histories belong to the same serialization point.
func (s *RedisStore) Snapshot(ctx context.Context) (*State, error) {
	pipe := s.client.TxPipeline()
	energyCmd := pipe.Get(ctx, keyEnergyUsed)
	co2Cmd := pipe.Get(ctx, keyCO2Emissions)
	energyListCmd := pipe.LRange(ctx, keyEnergyUsedList, 0, -1)
	co2ListCmd := pipe.LRange(ctx, keyCO2EmissionsList, 0, -1)

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	state := &State{}
	var err error
	if state.EnergyUsed, err = floatResult(energyCmd); err != nil {
		return nil, err
	}
	if state.CO2Emissions, err = floatResult(co2Cmd); err != nil {
		return nil, err
	}
	if state.EnergyUsedList, err = floatListResult(energyListCmd); err != nil {
		return nil, err
	}
	if state.CO2EmissionsList, err = floatListResult(co2ListCmd); err != nil {
		return nil, err
	}
	return state, nil
}

// Reset zeroes the counters and drops the histories atomically.
func (s *RedisStore) Reset(ctx context.Context) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, keyEnergyUsed, "0", 0)
	pipe.Set(ctx, keyCO2Emissions, "0", 0)
	pipe.Del(ctx, keyEnergyUsedList, keyCO2EmissionsList)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to reset ledger: %w", err)
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func floatResult(cmd *redis.StringCmd) (float64, error) {
	val, err := cmd.Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", cmd.Args()[1], err)
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt ledger value %q: %w", val, err)
	}
	return f, nil
}

func floatListResult(cmd *redis.StringSliceCmd) ([]float64, error) {
	vals, err := cmd.Result()
	if err == redis.Nil || len(vals) == 0 {
		return []float64{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", cmd.Args()[1], err)
	}
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt ledger list value %q: %w", v, err)
		}
		out = append(out, f)
	}
	return out, nil
}
