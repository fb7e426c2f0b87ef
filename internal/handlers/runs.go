package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/canonical/sosreport-agent/internal/store"
)

// ListRuns returns the run history
// (GET /runs)
func (h *Handler) ListRuns(c *gin.Context) {
	runs, err := h.pipeline.Runs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// GetRun returns one run with its per-file outcomes
// (GET /runs/:id)
func (h *Handler) GetRun(c *gin.Context) {
	run, err := h.pipeline.Run(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}
