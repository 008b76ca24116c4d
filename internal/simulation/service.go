// Package simulation orchestrates the thermal integrator, the measurement
// probe, the consumption ledger and the request cache behind a single
// service API.
package simulation

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log"
	"math"
	"sync/atomic"

	"github.com/terminal-bench/cabletherm/internal/cache"
	"github.com/terminal-bench/cabletherm/internal/ledger"
	"github.com/terminal-bench/cabletherm/internal/models"
	"github.com/terminal-bench/cabletherm/internal/probe"
	"github.com/terminal-bench/cabletherm/internal/thermal"
)

// Options are per-call switches; use_cache is deliberately a request-scoped
// flag rather than ambient configuration.
type Options struct {
	UseCache     bool
	IncludeTrace bool
}

// RunRecorder persists computed simulation runs as operator-facing history.
// Implementations must tolerate best-effort use: failures are logged, never
// propagated to the caller.
type RunRecorder interface {
	SaveRun(ctx context.Context, run *models.SimulationRun) error
}

// ConsumptionListener is notified with a fresh ledger snapshot after every
// successful record, e.g. to feed live dashboards.
type ConsumptionListener interface {
	ConsumptionUpdated(state *ledger.State)
}

// Service answers single-point and multi-point simulation requests and keeps
// the shared consumption accounting honest.
type Service struct {
	ledger   *ledger.Ledger
	probe    probe.Probe
	cache    *cache.Cache
	runs     RunRecorder         // optional
	listener ConsumptionListener // optional

	dropped atomic.Int64
}

// New wires a service. cache, runs and listener may be nil: a nil cache
// disables memoization even when a request asks for it, a nil runs recorder
// disables history, a nil listener disables the live feed.
func New(l *ledger.Ledger, p probe.Probe, c *cache.Cache, runs RunRecorder, listener ConsumptionListener) *Service {
	return &Service{ledger: l, probe: p, cache: c, runs: runs, listener: listener}
}

// DroppedRecords reports how many completed simulations could not be
// recorded to the ledger because the store was unavailable. Exposed on the
// health endpoint so lost accounting is detectable.
func (s *Service) DroppedRecords() int64 {
	return s.dropped.Load()
}

// CacheStats exposes cache effectiveness, zero-valued when caching is off.
func (s *Service) CacheStats() cache.Stats {
	if s.cache == nil {
		return cache.Stats{}
	}
	return s.cache.Stats()
}

// SimulateSingle runs one probe-wrapped integration and records its cost.
// Cache hits bypass the probe and the ledger entirely and reuse the first
// call's result verbatim.
func (s *Service) SimulateSingle(ctx context.Context, params models.SimulationParameters, opt Options) (*models.SimulationResult, error) {
	if err := validate(params); err != nil {
		return nil, err
	}

	run := func() (any, error) {
		return s.computeSingle(ctx, params, opt.IncludeTrace)
	}

	if !opt.UseCache || s.cache == nil {
		v, err := run()
		if err != nil {
			return nil, err
		}
		return v.(*models.SimulationResult), nil
	}

	v, hit, err := s.cache.GetOrCompute(cacheKey("single", params, 1, opt.IncludeTrace), run)
	if err != nil {
		return nil, err
	}
	res := *v.(*models.SimulationResult)
	res.Cached = hit
	return &res, nil
}

// SimulateChained folds the integrator over n equal intervals, each seeded
// with the previous interval's final temperature and probed independently.
// The whole run is recorded to the ledger in one atomic batch; a failed
// interval aborts everything with nothing recorded.
func (s *Service) SimulateChained(ctx context.Context, params models.SimulationParameters, intervals int, opt Options) (*models.ChainedResult, error) {
	if err := validate(params); err != nil {
		return nil, err
	}
	if intervals < 1 {
		return nil, fmt.Errorf("%w: number of repetitions must be >= 1, got %d", thermal.ErrInvalidParameter, intervals)
	}

	run := func() (any, error) {
		return s.computeChained(ctx, params, intervals)
	}

	if !opt.UseCache || s.cache == nil {
		v, err := run()
		if err != nil {
			return nil, err
		}
		return v.(*models.ChainedResult), nil
	}

	v, hit, err := s.cache.GetOrCompute(cacheKey("chained", params, intervals, false), run)
	if err != nil {
		return nil, err
	}
	res := *v.(*models.ChainedResult)
	res.Cached = hit
	return &res, nil
}

// GlobalConsumption returns a consistent snapshot of the shared ledger.
func (s *Service) GlobalConsumption(ctx context.Context) (*ledger.State, error) {
	return s.ledger.Snapshot(ctx)
}

// ResetGlobalConsumption zeroes the shared ledger and returns the zeroed
// snapshot.
func (s *Service) ResetGlobalConsumption(ctx context.Context) (*ledger.State, error) {
	if err := s.ledger.Reset(ctx); err != nil {
		return nil, err
	}
	return s.ledger.Snapshot(ctx)
}

func (s *Service) computeSingle(ctx context.Context, params models.SimulationParameters, withTrace bool) (*models.SimulationResult, error) {
	cond := conditions(params)

	pr := s.probe.Start()
	res, err := thermal.Integrate(params.InitialCableTemperature, cond, params.Duration, params.TimeStep, withTrace)
	m := pr.Stop()
	if err != nil {
		// Aborted computation is never recorded, not even partially.
		return nil, err
	}

	out := &models.SimulationResult{
		FinalTemperature: res.FinalTemperature,
		Trace:            tracePoints(res.Trace),
		EnergyUsed:       m.EnergyKWh,
		CO2Emissions:     m.CO2Kg,
		ExecutionTime:    m.Elapsed.Seconds(),
	}

	s.record(ctx, []float64{m.EnergyKWh}, []float64{m.CO2Kg})
	s.saveRun(ctx, "single", params, 1, out.FinalTemperature, m.EnergyKWh, m.CO2Kg, out.ExecutionTime)
	return out, nil
}

func (s *Service) computeChained(ctx context.Context, params models.SimulationParameters, n int) (*models.ChainedResult, error) {
	cond := conditions(params)

	out := &models.ChainedResult{
		FinalTemperatures: make([]float64, 0, n),
		TimePoints:        make([]float64, 0, n),
		EnergyUsed:        make([]float64, 0, n),
		CO2Emissions:      make([]float64, 0, n),
		ExecutionTimes:    make([]float64, 0, n),
	}

	temp := params.InitialCableTemperature
	for _, iv := range thermal.Intervals(n, params.Duration) {
		pr := s.probe.Start()
		res, err := thermal.Integrate(temp, cond, iv.Duration, params.TimeStep, false)
		m := pr.Stop()
		if err != nil {
			return nil, fmt.Errorf("interval %d: %w", iv.Index, err)
		}
		temp = res.FinalTemperature

		out.FinalTemperatures = append(out.FinalTemperatures, temp)
		out.TimePoints = append(out.TimePoints, float64(iv.Index+1)*params.Duration)
		out.EnergyUsed = append(out.EnergyUsed, m.EnergyKWh)
		out.CO2Emissions = append(out.CO2Emissions, m.CO2Kg)
		out.ExecutionTimes = append(out.ExecutionTimes, m.Elapsed.Seconds())
		out.CumulativeEnergyUsed += m.EnergyKWh
		out.CumulativeCO2Emissions += m.CO2Kg
		out.CumulativeExecutionTime += m.Elapsed.Seconds()
	}

	s.record(ctx, out.EnergyUsed, out.CO2Emissions)
	s.saveRun(ctx, "chained", params, n, temp,
		out.CumulativeEnergyUsed, out.CumulativeCO2Emissions, out.CumulativeExecutionTime)
	return out, nil
}

// record accounts a completed computation. The caller may already be gone:
// a completed run must still land, so the record step detaches from request
// cancellation. Store failures are surfaced to operators via the dropped
// counter and the log, never to the simulation caller.
func (s *Service) record(ctx context.Context, energies, co2s []float64) {
	ctx = context.WithoutCancel(ctx)
	if err := s.ledger.RecordBatch(ctx, energies, co2s); err != nil {
		s.dropped.Add(1)
		log.Printf("ledger record failed, accounting lost: %v", err)
		return
	}
	if s.listener != nil {
		if state, err := s.ledger.Snapshot(ctx); err == nil {
			s.listener.ConsumptionUpdated(state)
		}
	}
}

func (s *Service) saveRun(ctx context.Context, kind string, params models.SimulationParameters, intervals int, finalTemp, energy, co2, execTime float64) {
	if s.runs == nil {
		return
	}
	run := &models.SimulationRun{
		Kind:                    kind,
		AmbientTemperature:      params.AmbientTemperature,
		WindSpeed:               params.WindSpeed,
		CurrentIntensity:        params.CurrentIntensity,
		InitialCableTemperature: params.InitialCableTemperature,
		Duration:                params.Duration,
		TimeStep:                params.TimeStep,
		Intervals:               intervals,
		FinalTemperature:        finalTemp,
		EnergyUsed:              energy,
		CO2Emissions:            co2,
		ExecutionTime:           execTime,
	}
	if err := s.runs.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		log.Printf("failed to save simulation run: %v", err)
	}
}

func validate(params models.SimulationParameters) error {
	switch {
	case params.Duration <= 0 || math.IsNaN(params.Duration) || math.IsInf(params.Duration, 0):
		return fmt.Errorf("%w: simulation_duration must be > 0, got %g", thermal.ErrInvalidParameter, params.Duration)
	case params.TimeStep <= 0 || math.IsNaN(params.TimeStep):
		return fmt.Errorf("%w: time_step must be > 0, got %g", thermal.ErrInvalidParameter, params.TimeStep)
	case params.TimeStep > params.Duration:
		return fmt.Errorf("%w: time_step %g exceeds simulation_duration %g", thermal.ErrInvalidParameter, params.TimeStep, params.Duration)
	case params.WindSpeed < 0 || math.IsNaN(params.WindSpeed):
		return fmt.Errorf("%w: wind_speed must be >= 0, got %g", thermal.ErrInvalidParameter, params.WindSpeed)
	case params.CurrentIntensity < 0 || math.IsNaN(params.CurrentIntensity):
		return fmt.Errorf("%w: current_intensity must be >= 0, got %g", thermal.ErrInvalidParameter, params.CurrentIntensity)
	case math.IsNaN(params.InitialCableTemperature) || math.IsInf(params.InitialCableTemperature, 0):
		return fmt.Errorf("%w: initial_cable_temperature must be finite", thermal.ErrInvalidParameter)
	case math.IsNaN(params.AmbientTemperature) || math.IsInf(params.AmbientTemperature, 0):
		return fmt.Errorf("%w: ambient_temperature must be finite", thermal.ErrInvalidParameter)
	}
	return nil
}

func conditions(params models.SimulationParameters) thermal.Conditions {
	return thermal.Conditions{
		AmbientTemperature: params.AmbientTemperature,
		WindSpeed:          params.WindSpeed,
		CurrentIntensity:   params.CurrentIntensity,
	}
}

func tracePoints(trace []thermal.TracePoint) []models.TracePoint {
	if trace == nil {
		return nil
	}
	out := make([]models.TracePoint, len(trace))
	for i, p := range trace {
		out[i] = models.TracePoint{TimeOffset: p.TimeOffset, Temperature: p.Temperature}
	}
	return out
}

// cacheKey fingerprints the exact float64 bit patterns of the parameter
// tuple: two requests hit the same entry only when their parameters are
// bit-identical.
func cacheKey(kind string, params models.SimulationParameters, intervals int, withTrace bool) string {
	h := sha256.New()
	h.Write([]byte(kind))

	var buf [8]byte
	for _, f := range []float64{
		params.AmbientTemperature,
		params.WindSpeed,
		params.CurrentIntensity,
		params.InitialCableTemperature,
		params.Duration,
		params.TimeStep,
	} {
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}
	binary.BigEndian.PutUint64(buf[:], uint64(intervals))
	h.Write(buf[:])
	if withTrace {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}

	return "sim:" + hex.EncodeToString(h.Sum(nil))
}
