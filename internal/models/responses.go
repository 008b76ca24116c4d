package models

// Response shapes mirror the public API: every numeric field carries an
// explicit unit string alongside the value.

// RootResponse greets callers of the API root.
type RootResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports liveness plus accounting-loss visibility for
// operators.
type HealthResponse struct {
	Status               string `json:"status"`
	DroppedLedgerRecords int64  `json:"dropped_ledger_records"`
}

// SimulationResponse is the slim single-run response: temperature and timing
// only, consumption recorded server-side.
type SimulationResponse struct {
	FinalTemperature     float64      `json:"final_temperature"`
	FinalTemperatureUnit string       `json:"final_temperature_unit"`
	TemperatureTrace     []TracePoint `json:"temperature_trace,omitempty"`
	ExecutionTime        float64      `json:"execution_time"`
	ExecutionTimeUnit    string       `json:"execution_time_unit"`
	Cached               bool         `json:"cached"`
}

// ConsumptionSimulationResponse is the single-run response including the
// measured energy cost of the computation.
type ConsumptionSimulationResponse struct {
	FinalTemperature     float64      `json:"final_temperature"`
	FinalTemperatureUnit string       `json:"final_temperature_unit"`
	TemperatureTrace     []TracePoint `json:"temperature_trace,omitempty"`
	EnergyUsed           float64      `json:"energy_used"`
	EnergyUsedUnit       string       `json:"energy_used_unit"`
	CO2Emissions         float64      `json:"co2_emissions"`
	CO2EmissionsUnit     string       `json:"co2_emissions_unit"`
	ExecutionTime        float64      `json:"execution_time"`
	ExecutionTimeUnit    string       `json:"execution_time_unit"`
	Cached               bool         `json:"cached"`
}

// MultipleSimulationResponse is the slim chained-run response.
type MultipleSimulationResponse struct {
	FinalTemperatureList    []float64 `json:"final_temperature_list"`
	FinalTemperatureUnit    string    `json:"final_temperature_unit"`
	TimePointsList          []float64 `json:"time_points_list"`
	TimePointsUnit          string    `json:"time_points_unit"`
	ExecutionTime           []float64 `json:"execution_time"`
	CumulativeExecutionTime float64   `json:"cumulative_execution_time"`
	ExecutionTimeUnit       string    `json:"execution_time_unit"`
	Cached                  bool      `json:"cached"`
}

// MultipleConsumptionSimulationResponse is the chained-run response including
// per-interval and cumulative consumption.
type MultipleConsumptionSimulationResponse struct {
	FinalTemperatureList    []float64 `json:"final_temperature_list"`
	FinalTemperatureUnit    string    `json:"final_temperature_unit"`
	TimePointsList          []float64 `json:"time_points_list"`
	TimePointsUnit          string    `json:"time_points_unit"`
	EnergyUsedList          []float64 `json:"energy_used_list"`
	CumulativeEnergyUsed    float64   `json:"cumulative_energy_used"`
	EnergyUsedUnit          string    `json:"energy_used_unit"`
	CO2EmissionsList        []float64 `json:"co2_emissions_list"`
	CumulativeCO2Emissions  float64   `json:"cumulative_co2_emissions"`
	CO2EmissionsUnit        string    `json:"co2_emissions_unit"`
	ExecutionTime           []float64 `json:"execution_time"`
	CumulativeExecutionTime float64   `json:"cumulative_execution_time"`
	ExecutionTimeUnit       string    `json:"execution_time_unit"`
	Cached                  bool      `json:"cached"`
}

// GlobalConsumptionResponse is the snapshot of the shared consumption ledger.
type GlobalConsumptionResponse struct {
	EnergyUsed       float64   `json:"energy_used"`
	EnergyUsedList   []float64 `json:"energy_used_list"`
	EnergyUsedUnit   string    `json:"energy_used_unit"`
	CO2Emissions     float64   `json:"co2_emissions"`
	CO2EmissionsList []float64 `json:"co2_emissions_list"`
	CO2EmissionsUnit string    `json:"co2_emissions_unit"`
}
