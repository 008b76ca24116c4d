package models

import (
	"time"

	"github.com/google/uuid"
)

// Units attached to every numeric field exposed by the API.
const (
	TemperatureUnit = "°C"
	TimeUnit        = "s"
	EnergyUnit      = "kWh"
	CO2Unit         = "kgCO2"
)

// SimulationParameters fully determines a simulation output: the model is
// deterministic, so identical parameters yield identical results. Immutable
// per request.
type SimulationParameters struct {
	AmbientTemperature      float64 `json:"ambient_temperature"`       // °C
	WindSpeed               float64 `json:"wind_speed"`                // m/s, >= 0
	CurrentIntensity        float64 `json:"current_intensity"`         // A, >= 0
	InitialCableTemperature float64 `json:"initial_cable_temperature"` // °C
	Duration                float64 `json:"simulation_duration"`       // s, > 0
	TimeStep                float64 `json:"time_step"`                 // s, > 0, <= duration
}

// TracePoint is one sample of a temperature trajectory.
type TracePoint struct {
	TimeOffset  float64 `json:"time_offset"`
	Temperature float64 `json:"temperature"`
}

// SimulationResult is the outcome of one single-shot simulation together
// with its measured resource cost.
type SimulationResult struct {
	FinalTemperature float64      `json:"final_temperature"`
	Trace            []TracePoint `json:"temperature_trace,omitempty"`
	EnergyUsed       float64      `json:"energy_used"`    // kWh
	CO2Emissions     float64      `json:"co2_emissions"`  // kgCO2
	ExecutionTime    float64      `json:"execution_time"` // s
	Cached           bool         `json:"cached"`
}

// ChainedResult is the outcome of a chained multi-interval simulation. Lists
// are per interval, in order; cumulative fields are their sums.
type ChainedResult struct {
	FinalTemperatures       []float64 `json:"final_temperature_list"`
	TimePoints              []float64 `json:"time_points_list"` // s offsets of interval ends
	EnergyUsed              []float64 `json:"energy_used_list"`
	CO2Emissions            []float64 `json:"co2_emissions_list"`
	ExecutionTimes          []float64 `json:"execution_time"`
	CumulativeEnergyUsed    float64   `json:"cumulative_energy_used"`
	CumulativeCO2Emissions  float64   `json:"cumulative_co2_emissions"`
	CumulativeExecutionTime float64   `json:"cumulative_execution_time"`
	Cached                  bool      `json:"cached"`
}

// SimulationRun is the persisted record of one computed (non-cache-hit)
// simulation, kept as operator-facing history.
type SimulationRun struct {
	ID                      uuid.UUID `json:"id" db:"id"`
	Kind                    string    `json:"kind" db:"kind"` // "single" or "chained"
	AmbientTemperature      float64   `json:"ambient_temperature" db:"ambient_temperature"`
	WindSpeed               float64   `json:"wind_speed" db:"wind_speed"`
	CurrentIntensity        float64   `json:"current_intensity" db:"current_intensity"`
	InitialCableTemperature float64   `json:"initial_cable_temperature" db:"initial_cable_temperature"`
	Duration                float64   `json:"simulation_duration" db:"simulation_duration"`
	TimeStep                float64   `json:"time_step" db:"time_step"`
	Intervals               int       `json:"intervals" db:"intervals"` // 1 for single runs
	FinalTemperature        float64   `json:"final_temperature" db:"final_temperature"`
	EnergyUsed              float64   `json:"energy_used" db:"energy_used"`
	CO2Emissions            float64   `json:"co2_emissions" db:"co2_emissions"`
	ExecutionTime           float64   `json:"execution_time" db:"execution_time"`
	CreatedAt               time.Time `json:"created_at" db:"created_at"`
}
