package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/canonical/sosreport-agent/api/v1"
	"github.com/canonical/sosreport-agent/internal/models"
	"github.com/canonical/sosreport-agent/internal/services"
)

// Collect runs sos collect against the resolved nodes
// (POST /collect)
func (h *Handler) Collect(c *gin.Context) {
	var req v1.CollectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: case-id is required"})
		return
	}

	reports, err := h.pipeline.Collect(c.Request.Context(), services.CollectRequest{
		CaseID: req.CaseID,
		Model:  req.ModelName,
		Selectors: models.Selectors{
			Apps:     models.ParseList(req.Apps),
			Units:    models.ParseList(req.Units),
			Machines: models.ParseList(req.Machines),
		},
		ExtraArgs: req.ExtraArgs,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if isRequestError(err) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, v1.CollectResponse{SosReports: reports})
}

// Upload ships collected reports to the intake server
// (POST /upload)
func (h *Handler) Upload(c *gin.Context) {
	var req v1.UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: case-id is required"})
		return
	}

	report, cleanupReport, err := h.pipeline.Upload(c.Request.Context(), req.CaseID, req.Cleanup)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{"success": report.Success, "upload": report}
	if cleanupReport != nil {
		resp["cleanup"] = cleanupReport
	}
	c.JSON(http.StatusOK, resp)
}

// Cleanup removes local reports
// (POST /cleanup)
func (h *Handler) Cleanup(c *gin.Context) {
	var req v1.CleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: case-id is required"})
		return
	}

	report, err := h.pipeline.Cleanup(c.Request.Context(), req.CaseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": report.Success, "cleanup": report})
}
