package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/terminal-bench/cabletherm/internal/ledger"
	"github.com/terminal-bench/cabletherm/internal/models"
	"github.com/terminal-bench/cabletherm/internal/simulation"
	"github.com/terminal-bench/cabletherm/internal/thermal"
)

// SimulationHandler handles simulation requests
type SimulationHandler struct {
	service *simulation.Service
}

// NewSimulationHandler creates a new simulation handler
func NewSimulationHandler(service *simulation.Service) *SimulationHandler {
	return &SimulationHandler{service: service}
}

// SimulationRequest carries the physical parameters of one run. Defaults
// describe a 300A cable in light wind at 25°C.
type SimulationRequest struct {
	AmbientTemperature      float64 `form:"ambient_temperature,default=25"`
	WindSpeed               float64 `form:"wind_speed,default=1"`
	CurrentIntensity        float64 `form:"current_intensity,default=300"`
	InitialCableTemperature float64 `form:"initial_cable_temperature,default=25"`
	SimulationDuration      float64 `form:"simulation_duration,default=60"`
	TimeStep                float64 `form:"time_step,default=0.001"`
	UseCache                bool    `form:"use_cache,default=false"`
	IncludeTrace            bool    `form:"include_trace,default=false"`
}

// ChainedSimulationRequest adds the interval count for chained runs.
type ChainedSimulationRequest struct {
	SimulationRequest
	NumberOfRepetition int `form:"number_of_repetition,default=30"`
}

func (r SimulationRequest) parameters() models.SimulationParameters {
	return models.SimulationParameters{
		AmbientTemperature:      r.AmbientTemperature,
		WindSpeed:               r.WindSpeed,
		CurrentIntensity:        r.CurrentIntensity,
		InitialCableTemperature: r.InitialCableTemperature,
		Duration:                r.SimulationDuration,
		TimeStep:                r.TimeStep,
	}
}

func (r SimulationRequest) options() simulation.Options {
	return simulation.Options{UseCache: r.UseCache, IncludeTrace: r.IncludeTrace}
}

// Single runs one simulation and returns the final temperature.
func (h *SimulationHandler) Single(c *gin.Context) {
	var req SimulationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	res, err := h.service.SimulateSingle(c.Request.Context(), req.parameters(), req.options())
	if err != nil {
		writeSimulationError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SimulationResponse{
		FinalTemperature:     res.FinalTemperature,
		FinalTemperatureUnit: models.TemperatureUnit,
		TemperatureTrace:     res.Trace,
		ExecutionTime:        res.ExecutionTime,
		ExecutionTimeUnit:    models.TimeUnit,
		Cached:               res.Cached,
	})
}

// SingleConsumption runs one simulation and returns the final temperature
// together with the measured cost of computing it.
func (h *SimulationHandler) SingleConsumption(c *gin.Context) {
	var req SimulationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	res, err := h.service.SimulateSingle(c.Request.Context(), req.parameters(), req.options())
	if err != nil {
		writeSimulationError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ConsumptionSimulationResponse{
		FinalTemperature:     res.FinalTemperature,
		FinalTemperatureUnit: models.TemperatureUnit,
		TemperatureTrace:     res.Trace,
		EnergyUsed:           res.EnergyUsed,
		EnergyUsedUnit:       models.EnergyUnit,
		CO2Emissions:         res.CO2Emissions,
		CO2EmissionsUnit:     models.CO2Unit,
		ExecutionTime:        res.ExecutionTime,
		ExecutionTimeUnit:    models.TimeUnit,
		Cached:               res.Cached,
	})
}

// Chained runs number_of_repetition back-to-back intervals and returns the
// per-interval final temperatures.
func (h *SimulationHandler) Chained(c *gin.Context) {
	var req ChainedSimulationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	res, err := h.service.SimulateChained(c.Request.Context(), req.parameters(), req.NumberOfRepetition, req.options())
	if err != nil {
		writeSimulationError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MultipleSimulationResponse{
		FinalTemperatureList:    res.FinalTemperatures,
		FinalTemperatureUnit:    models.TemperatureUnit,
		TimePointsList:          res.TimePoints,
		TimePointsUnit:          models.TimeUnit,
		ExecutionTime:           res.ExecutionTimes,
		CumulativeExecutionTime: res.CumulativeExecutionTime,
		ExecutionTimeUnit:       models.TimeUnit,
		Cached:                  res.Cached,
	})
}

// ChainedConsumption runs a chained simulation and returns per-interval and
// cumulative consumption alongside the temperatures.
func (h *SimulationHandler) ChainedConsumption(c *gin.Context) {
	var req ChainedSimulationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	res, err := h.service.SimulateChained(c.Request.Context(), req.parameters(), req.NumberOfRepetition, req.options())
	if err != nil {
		writeSimulationError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MultipleConsumptionSimulationResponse{
		FinalTemperatureList:    res.FinalTemperatures,
		FinalTemperatureUnit:    models.TemperatureUnit,
		TimePointsList:          res.TimePoints,
		TimePointsUnit:          models.TimeUnit,
		EnergyUsedList:          res.EnergyUsed,
		CumulativeEnergyUsed:    res.CumulativeEnergyUsed,
		EnergyUsedUnit:          models.EnergyUnit,
		CO2EmissionsList:        res.CO2Emissions,
		CumulativeCO2Emissions:  res.CumulativeCO2Emissions,
		CO2EmissionsUnit:        models.CO2Unit,
		ExecutionTime:           res.ExecutionTimes,
		CumulativeExecutionTime: res.CumulativeExecutionTime,
		ExecutionTimeUnit:       models.TimeUnit,
		Cached:                  res.Cached,
	})
}

// writeSimulationError maps domain errors to HTTP statuses: bad input is the
// caller's fault, a diverging integration is an unprocessable request, and a
// dead store is a server-side outage.
func writeSimulationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, thermal.ErrInvalidParameter):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, thermal.ErrNumericOverflow):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "consumption store unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
