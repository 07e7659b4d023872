// Package api exposes the procedure catalogue and stored analyses over HTTP.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the analysis routes under /api/v1
func NewRouter(h *AnalysisHandler, mode string) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestMetrics())
	if gin.Mode() == gin.DebugMode {
		r.Use(gin.Logger())
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		v1.GET("/procedures", h.ListProcedures)
		v1.POST("/procedures/:name/run", h.RunProcedure)
		v1.POST("/battery", h.RunBattery)
		v1.GET("/analyses", h.ListAnalyses)
		v1.GET("/analyses/:id", h.GetAnalysis)
		v1.GET("/analyses/:id/report", h.GetReport)
		v1.GET("/data/columns", h.ListColumns)
		v1.POST("/data/procedures/:name/run", h.RunOnData)
	}
	return r
}
