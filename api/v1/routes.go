package v1

import "github.com/gin-gonic/gin"

// ServerInterface is implemented by the handlers package.
type ServerInterface interface {
	// Collect runs sos collect against the resolved nodes
	// (POST /collect)
	Collect(c *gin.Context)
	// Upload ships collected reports to the intake server
	// (POST /upload)
	Upload(c *gin.Context)
	// Cleanup removes local reports
	// (POST /cleanup)
	Cleanup(c *gin.Context)
	// ListRuns returns the run history
	// (GET /runs)
	ListRuns(c *gin.Context)
	// GetRun returns one run with its per-file outcomes
	// (GET /runs/:id)
	GetRun(c *gin.Context)
}

func RegisterHandlers(router *gin.RouterGroup, si ServerInterface) {
	router.POST("/collect", si.Collect)
	router.POST("/upload", si.Upload)
	router.POST("/cleanup", si.Cleanup)
	router.GET("/runs", si.ListRuns)
	router.GET("/runs/:id", si.GetRun)
}
