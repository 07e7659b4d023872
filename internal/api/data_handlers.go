package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stikpet/adapters/stats/catalogue"
	"stikpet/app"
	"stikpet/internal/errors"
	"stikpet/ports"
)

// DataRunRequest runs a procedure on columns of the loaded data file
type DataRunRequest struct {
	Columns app.ColumnSelection `json:"columns"`
	Params  catalogue.Params    `json:"params"`
}

// WithReader attaches the loaded data file
func (h *AnalysisHandler) WithReader(r ports.DataReader) *AnalysisHandler {
	h.reader = r
	return h
}

func (h *AnalysisHandler) needReader(c *gin.Context) bool {
	if h.reader == nil {
		h.fail(c, errors.NotFound("data file"))
		return false
	}
	return true
}

// ListColumns describes the loaded data file
func (h *AnalysisHandler) ListColumns(c *gin.Context) {
	if !h.needReader(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"columns": h.reader.Headers(),
		"rows":    h.reader.Rows(),
	})
}

// RunOnData runs one procedure on selected data file columns
func (h *AnalysisHandler) RunOnData(c *gin.Context) {
	if !h.needReader(c) {
		return
	}
	name := c.Param("name")
	var req DataRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errors.InvalidInput(err.Error()))
		return
	}
	in, err := app.BuildInput(h.reader, req.Columns, req.Params)
	if err != nil {
		h.fail(c, err)
		return
	}

	start := time.Now()
	res, err := h.service.Run(c.Request.Context(), name, in)
	if err != nil {
		observeRun(name, "error", time.Since(start))
		h.fail(c, err)
		return
	}
	observeRun(name, "ok", time.Since(start))
	c.JSON(http.StatusOK, res)
}
