package http

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/augur-forecast/augur/internal/config"
	"github.com/augur-forecast/augur/internal/engine"
	"github.com/augur-forecast/augur/internal/present"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.RateLimit.Enabled = false
	return cfg
}

func newTestServer(cfg *config.Config) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(cfg, engine.NewAdditive(cfg.Forecast, logger), nil, logger).Routes()
}

func linearCSV(n int) string {
	var sb strings.Builder
	sb.WriteString("ds,y\n")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "%s,%d\n", start.AddDate(0, 0, i).Format(time.DateOnly), i+1)
	}
	return sb.String()
}

func multipartRequest(t *testing.T, target, file, period string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if file != "" {
		fw, err := mw.CreateFormFile(formFile, "example.csv")
		require.Nil(t, err)
		_, err = fw.Write([]byte(file))
		require.Nil(t, err)
	}
	if period != "" {
		require.Nil(t, mw.WriteField(formHorizon, period))
	}
	require.Nil(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) Problem {
	t.Helper()
	var p Problem
	require.Nil(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestIndex(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(testConfig()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	body := rec.Body.String()
	assert.Contains(t, body, `name="period"`)
	assert.Contains(t, body, `value="90"`)
	assert.NotContains(t, body, "Raw Data")
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestServer(testConfig())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, "/api/v1/forecast", linearCSV(10), "5"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `augur_forecasts_total{outcome="success"} 1`)
}

func TestForecastPage(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(testConfig()).ServeHTTP(rec, multipartRequest(t, "/forecast", linearCSV(10), "5"))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Raw Data")
	assert.Contains(t, body, "srcdoc=")
	assert.Contains(t, body, `download="augur.csv"`)
	assert.Contains(t, body, "data:text/csv;charset=utf-8;base64,")

	// table is sorted by ds descending
	assert.Less(t, strings.Index(body, "<td>2024-01-15</td>"), strings.Index(body, "<td>2024-01-01</td>"))
}

func TestForecastPageWarningsAndErrors(t *testing.T) {
	testData := map[string]struct {
		file     string
		period   string
		contains string
	}{
		"no file":        {period: "5", contains: "Please upload a file"},
		"missing column": {file: "ds,value\n2024-01-01,1\n2024-01-02,2\n", period: "5", contains: "missing required column"},
		"zero horizon":   {file: linearCSV(10), period: "0", contains: "invalid forecast horizon"},
		"text horizon":   {file: linearCSV(10), period: "ten", contains: "invalid forecast horizon"},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newTestServer(testConfig()).ServeHTTP(rec, multipartRequest(t, "/forecast", td.file, td.period))

			require.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			assert.Contains(t, body, td.contains)
			assert.Contains(t, body, `role="alert"`)
			assert.NotContains(t, body, "Raw Data")
		})
	}
}

func TestForecastAPIJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(testConfig()).ServeHTTP(rec, multipartRequest(t, "/api/v1/forecast", linearCSV(10), "5"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ForecastResponse
	require.Nil(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Horizon)
	assert.Equal(t, 10, resp.HistoryRows)
	require.Len(t, resp.Rows, 15)
	assert.Equal(t, "2024-01-15", resp.Rows[0].DS)
	assert.Equal(t, 14, resp.Rows[0].Index)
	assert.Greater(t, resp.Rows[0].YHat, 10.0)
}

func TestForecastAPIDefaultHorizon(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(testConfig()).ServeHTTP(rec, multipartRequest(t, "/api/v1/forecast", linearCSV(10), ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ForecastResponse
	require.Nil(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 90, resp.Horizon)
	assert.Len(t, resp.Rows, 100)
}

func TestForecastAPICSV(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(testConfig()).ServeHTTP(rec, multipartRequest(t, "/api/v1/forecast?format=csv", linearCSV(10), "5"))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, present.CSVContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="augur.csv"`, rec.Header().Get("Content-Disposition"))

	rows, err := present.ReadCSV(rec.Body)
	require.Nil(t, err)
	require.Len(t, rows, 15)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), rows[14].DS)
}

func TestForecastAPIXLSX(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(testConfig()).ServeHTTP(rec, multipartRequest(t, "/api/v1/forecast?format=xlsx", linearCSV(10), "5"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, present.XLSXContentType, rec.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(rec.Body)
	require.Nil(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetList()[0])
	require.Nil(t, err)
	assert.Len(t, rows, 16)
}

func TestForecastAPIErrors(t *testing.T) {
	testData := map[string]struct {
		target string
		file   string
		period string
		status int
		typ    string
	}{
		"missing file": {
			target: "/api/v1/forecast", period: "5",
			status: http.StatusBadRequest, typ: TypeMissingFile,
		},
		"zero horizon": {
			target: "/api/v1/forecast", file: linearCSV(10), period: "0",
			status: http.StatusBadRequest, typ: TypeInvalidHorizon,
		},
		"horizon above max": {
			target: "/api/v1/forecast", file: linearCSV(10), period: "3651",
			status: http.StatusBadRequest, typ: TypeInvalidHorizon,
		},
		"unknown format": {
			target: "/api/v1/forecast?format=parquet", file: linearCSV(10), period: "5",
			status: http.StatusBadRequest, typ: TypeInvalidFormat,
		},
		"missing column": {
			target: "/api/v1/forecast", file: "ds,value\n2024-01-01,1\n2024-01-02,2\n", period: "5",
			status: http.StatusUnprocessableEntity, typ: TypeInvalidInput,
		},
		"insufficient history": {
			target: "/api/v1/forecast", file: "ds,y\n2024-01-01,1\n2024-01-01,2\n", period: "5",
			status: http.StatusUnprocessableEntity, typ: TypeFitFailed,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newTestServer(testConfig()).ServeHTTP(rec, multipartRequest(t, td.target, td.file, td.period))

			require.Equal(t, td.status, rec.Code)
			p := decodeProblem(t, rec)
			assert.Equal(t, td.typ, p.Type)
			assert.Equal(t, td.status, p.Status)
			assert.NotEmpty(t, p.RequestID)
		})
	}
}

func TestForecastAPIPayloadTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MaxUploadBytes = 512

	rec := httptest.NewRecorder()
	newTestServer(cfg).ServeHTTP(rec, multipartRequest(t, "/api/v1/forecast", linearCSV(200), "5"))

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, TypePayloadTooLarge, decodeProblem(t, rec).Type)
}

func TestForecastRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}
	h := newTestServer(cfg)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, "/api/v1/forecast", "", "5"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, "/api/v1/forecast", "", "5"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, TypeRateLimit, decodeProblem(t, rec).Type)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// the page and health routes are not limited
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDPropagated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")

	rec := httptest.NewRecorder()
	newTestServer(testConfig()).ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get(RequestIDHeader))
}

func TestRecoverer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := RequestID(Recoverer(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, TypeInternal, decodeProblem(t, rec).Type)
}
