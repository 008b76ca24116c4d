package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/terminal-bench/cabletherm/internal/models"
)

// RunLister reads back persisted simulation runs.
type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]models.SimulationRun, error)
}

// RunHandler serves the operator-facing run history.
type RunHandler struct {
	runs RunLister
}

// NewRunHandler creates a new run handler
func NewRunHandler(runs RunLister) *RunHandler {
	return &RunHandler{runs: runs}
}

// List returns the most recent runs, newest first.
func (h *RunHandler) List(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = n
	}

	runs, err := h.runs.ListRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}
	if runs == nil {
		runs = []models.SimulationRun{}
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}
