package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/terminal-bench/cabletherm/internal/models"
	"github.com/terminal-bench/cabletherm/internal/simulation"
)

// SystemHandler serves the root greeting and the health check.
type SystemHandler struct {
	service *simulation.Service
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(service *simulation.Service) *SystemHandler {
	return &SystemHandler{service: service}
}

// Root greets API callers.
func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, models.RootResponse{
		Message: "Welcome to the cable temperature simulation API",
	})
}

// Health reports liveness. The dropped-record counter makes silently lost
// consumption accounting visible to operators.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:               "healthy",
		DroppedLedgerRecords: h.service.DroppedRecords(),
	})
}
