package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stikpet/adapters/stats/catalogue"
	"stikpet/app"
	"stikpet/domain/analysis"
	"stikpet/internal"
	"stikpet/internal/errors"
	"stikpet/internal/report"
	"stikpet/ports"
)

// AnalysisHandler serves the procedure catalogue and stored analyses
type AnalysisHandler struct {
	service *app.AnalysisService
	logger  *internal.Logger
	reader  ports.DataReader
	alpha   float64
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service *app.AnalysisService, logger *internal.Logger, alpha float64) *AnalysisHandler {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisHandler{service: service, logger: logger.Named("api"), alpha: alpha}
}

// BatteryRequest asks for several procedures on one input
type BatteryRequest struct {
	Procedures []string        `json:"procedures" binding:"required,min=1"`
	Input      catalogue.Input `json:"input"`
}

func (h *AnalysisHandler) fail(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(errors.FromDomain(err)),
	})
}

// ListProcedures returns the catalogue, optionally filtered by kind
func (h *AnalysisHandler) ListProcedures(c *gin.Context) {
	kind := catalogue.Kind(c.Query("kind"))
	c.JSON(http.StatusOK, gin.H{"procedures": h.service.Catalogue().List(kind)})
}

// RunProcedure runs one named procedure on the posted input
func (h *AnalysisHandler) RunProcedure(c *gin.Context) {
	name := c.Param("name")
	var in catalogue.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		h.fail(c, errors.InvalidInput(err.Error()))
		return
	}

	start := time.Now()
	res, err := h.service.Run(c.Request.Context(), name, in)
	if err != nil {
		observeRun(name, "error", time.Since(start))
		h.fail(c, err)
		return
	}
	result := "ok"
	if res.Cached {
		result = "cached"
	}
	observeRun(name, result, time.Since(start))
	c.JSON(http.StatusOK, res)
}

// RunBattery runs several procedures on one input
func (h *AnalysisHandler) RunBattery(c *gin.Context) {
	var req BatteryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errors.InvalidInput(err.Error()))
		return
	}
	batterySize.Observe(float64(len(req.Procedures)))

	results, err := h.service.RunBattery(c.Request.Context(), req.Procedures, req.Input)
	if err != nil {
		h.fail(c, err)
		return
	}
	for _, r := range results {
		if r.Error != "" {
			procedureRuns.WithLabelValues(r.Procedure, "error").Inc()
		} else {
			procedureRuns.WithLabelValues(r.Procedure, "ok").Inc()
		}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ListAnalyses returns stored analyses, newest first
func (h *AnalysisHandler) ListAnalyses(c *gin.Context) {
	filter := analysis.Filter{
		Procedure: c.Query("procedure"),
		Kind:      c.Query("kind"),
	}
	var err error
	if filter.Limit, err = queryInt(c, "limit"); err != nil {
		h.fail(c, err)
		return
	}
	if filter.Offset, err = queryInt(c, "offset"); err != nil {
		h.fail(c, err)
		return
	}

	list, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analyses": list, "count": len(list)})
}

// GetAnalysis returns one stored analysis with its outcome
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	a, out, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis": a, "outcome": out})
}

// GetReport renders one stored analysis as Markdown or HTML
func (h *AnalysisHandler) GetReport(c *gin.Context) {
	a, out, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	title := "Analysis " + a.ID.String()
	md := report.Markdown([]report.Entry{{Analysis: a, Outcome: out}}, report.Options{Title: title, Alpha: h.alpha})

	switch c.DefaultQuery("format", "markdown") {
	case "markdown", "md":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
	case "html":
		c.Data(http.StatusOK, "text/html; charset=utf-8", report.HTML(md, title))
	default:
		h.fail(c, errors.InvalidInput("format must be markdown or html"))
	}
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.InvalidInput(key + " must be a non-negative integer")
	}
	return v, nil
}
