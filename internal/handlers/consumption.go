package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/terminal-bench/cabletherm/internal/ledger"
	"github.com/terminal-bench/cabletherm/internal/models"
	"github.com/terminal-bench/cabletherm/internal/simulation"
)

// ConsumptionHandler exposes the shared consumption ledger.
type ConsumptionHandler struct {
	service *simulation.Service
}

// NewConsumptionHandler creates a new consumption handler
func NewConsumptionHandler(service *simulation.Service) *ConsumptionHandler {
	return &ConsumptionHandler{service: service}
}

// Global returns a consistent snapshot of accumulated consumption.
func (h *ConsumptionHandler) Global(c *gin.Context) {
	state, err := h.service.GlobalConsumption(c.Request.Context())
	if err != nil {
		writeSimulationError(c, err)
		return
	}
	c.JSON(http.StatusOK, consumptionResponse(state))
}

// Reset zeroes the ledger and returns the zeroed snapshot.
func (h *ConsumptionHandler) Reset(c *gin.Context) {
	state, err := h.service.ResetGlobalConsumption(c.Request.Context())
	if err != nil {
		writeSimulationError(c, err)
		return
	}
	c.JSON(http.StatusOK, consumptionResponse(state))
}

func consumptionResponse(state *ledger.State) models.GlobalConsumptionResponse {
	return models.GlobalConsumptionResponse{
		EnergyUsed:       state.EnergyUsed,
		EnergyUsedList:   state.EnergyUsedList,
		EnergyUsedUnit:   models.EnergyUnit,
		CO2Emissions:     state.CO2Emissions,
		CO2EmissionsList: state.CO2EmissionsList,
		CO2EmissionsUnit: models.CO2Unit,
	}
}
