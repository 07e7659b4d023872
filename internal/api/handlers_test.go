package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stikpet/app"
	"stikpet/internal"
	"stikpet/internal/testkit"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	kit, err := testkit.NewTestKit()
	require.NoError(t, err)
	logger := internal.NewLogger(internal.LogLevelError)
	svc := app.NewAnalysisService(kit.Catalogue(), kit.Repository(), logger, app.AnalysisOptions{Alpha: 0.05})
	return NewRouter(NewAnalysisHandler(svc, logger, 0.05).WithReader(kit.Reader()), gin.TestMode)
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type runResponse struct {
	Analysis struct {
		ID string `json:"id"`
	} `json:"analysis"`
	Outcome struct {
		Procedure string `json:"procedure"`
		Estimate  *struct {
			Value float64 `json:"value"`
			N     int     `json:"n"`
		} `json:"estimate"`
	} `json:"outcome"`
}

func runMean(t *testing.T, r http.Handler) runResponse {
	t.Helper()
	w := do(r, http.MethodPost, "/api/v1/procedures/mean/run", `{"scale":[1,2,3,null,4]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res runResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestListProcedures(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/v1/procedures?kind=correlation", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Procedures []struct {
			Name string `json:"name"`
			Kind string `json:"kind"`
		} `json:"procedures"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Procedures)
	for _, p := range body.Procedures {
		assert.Equal(t, "correlation", p.Kind)
	}
}

func TestRunProcedure(t *testing.T) {
	r := newTestRouter(t)

	res := runMean(t, r)
	assert.Equal(t, "mean", res.Outcome.Procedure)
	require.NotNil(t, res.Outcome.Estimate)
	assert.InDelta(t, 2.5, res.Outcome.Estimate.Value, 1e-12)
	assert.Equal(t, 4, res.Outcome.Estimate.N)
	assert.NotEmpty(t, res.Analysis.ID)
}

func TestRunProcedureErrors(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"unknown procedure", "/api/v1/procedures/nope/run", `{"scale":[1,2]}`, http.StatusNotFound, "NOT_FOUND"},
		{"malformed body", "/api/v1/procedures/mean/run", `{"scale":`, http.StatusBadRequest, "INVALID_INPUT"},
		{"missing sigma", "/api/v1/procedures/z-one-sample/run", `{"scale":[1,2,3]}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad params", "/api/v1/procedures/mean/run", `{"scale":[1,2],"params":{"alternative":"sideways"}}`, http.StatusBadRequest, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body["code"])
		})
	}
}

func TestRunBattery(t *testing.T) {
	r := newTestRouter(t)

	body := `{"procedures":["mean","median","pearson"],"input":{"scale":[1,2,3,4]}}`
	w := do(r, http.MethodPost, "/api/v1/battery", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Results []struct {
			Procedure string `json:"procedure"`
			Error     string `json:"error"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Results, 3)
	assert.Empty(t, res.Results[0].Error)
	assert.Empty(t, res.Results[1].Error)
	assert.NotEmpty(t, res.Results[2].Error)

	w = do(r, http.MethodPost, "/api/v1/battery", `{"procedures":[],"input":{}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalysesAndReport(t *testing.T) {
	r := newTestRouter(t)
	res := runMean(t, r)

	w := do(r, http.MethodGet, "/api/v1/analyses?procedure=mean", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	w = do(r, http.MethodGet, "/api/v1/analyses/"+res.Analysis.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/v1/analyses/"+res.Analysis.ID+"/report", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, w.Body.String(), "## mean")
	assert.Contains(t, w.Body.String(), "| mean | 2.5 | 4 |")

	w = do(r, http.MethodGet, "/api/v1/analyses/"+res.Analysis.ID+"/report?format=html", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<table>")

	w = do(r, http.MethodGet, "/api/v1/analyses/"+res.Analysis.ID+"/report?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAnalysisErrors(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/v1/analyses/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/analyses/0190f5a4-7b7e-7c3a-9d2e-1a2b3c4d5e6f", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/v1/analyses?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDataEndpoints(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/v1/data/columns", "")
	require.Equal(t, http.StatusOK, w.Code)
	var cols struct {
		Columns []string `json:"columns"`
		Rows    int      `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cols))
	assert.Contains(t, cols.Columns, "pretest")
	assert.Equal(t, 120, cols.Rows)

	w = do(r, http.MethodPost, "/api/v1/data/procedures/pearson/run", `{"columns":{"scale":"pretest","scale2":"posttest"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Outcome struct {
			Correlation *struct {
				Coefficient float64 `json:"coefficient"`
			} `json:"correlation"`
		} `json:"outcome"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotNil(t, res.Outcome.Correlation)
	assert.Greater(t, res.Outcome.Correlation.Coefficient, 0.0)

	w = do(r, http.MethodPost, "/api/v1/data/procedures/pearson/run", `{"columns":{"scale":"nope","scale2":"posttest"}}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDataEndpointsWithoutFile(t *testing.T) {
	kit, err := testkit.NewTestKit()
	require.NoError(t, err)
	svc := app.NewAnalysisService(kit.Catalogue(), kit.Repository(), nil, app.AnalysisOptions{})
	r := NewRouter(NewAnalysisHandler(svc, nil, 0.05), gin.TestMode)

	w := do(r, http.MethodGet, "/api/v1/data/columns", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
