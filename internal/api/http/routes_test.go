package httpapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapi "bp-tracker-service/internal/api/http"
	"bp-tracker-service/internal/application/measurement"
	"bp-tracker-service/internal/application/stats"
	"bp-tracker-service/internal/infrastructure/repository/memory"
	"bp-tracker-service/internal/logging"
)

type measurementBody struct {
	ID         int64  `json:"id"`
	Systolic   int    `json:"systolic"`
	Diastolic  int    `json:"diastolic"`
	Pulse      *int   `json:"pulse"`
	MeasuredAt string `json:"measuredAt"`
	Status     string `json:"status"`
}

func newTestServer(t *testing.T, cfg httpapi.Config) *httpapi.Server {
	t.Helper()

	repo := memory.New()
	logger := logging.New("error", logging.WithWriter(io.Discard))
	return httpapi.NewServer(measurement.New(repo), stats.New(repo), logger, cfg)
}

func doJSON(t *testing.T, server http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	return rr
}

func createMeasurement(t *testing.T, server http.Handler, body map[string]any) measurementBody {
	t.Helper()

	rr := doJSON(t, server, http.MethodPost, "/api/measurements", body)
	require.Equal(t, http.StatusCreated, rr.Code, "body: %s", rr.Body.String())

	var created measurementBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	return created
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, httpapi.Config{})
	rr := doJSON(t, server, http.MethodGet, "/api/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	_, err := time.Parse(time.RFC3339Nano, body["time"])
	assert.NoError(t, err)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestCreateMeasurement(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, httpapi.Config{})
	created := createMeasurement(t, server, map[string]any{
		"systolic":   122,
		"diastolic":  81,
		"pulse":      64,
		"measuredAt": "2024-06-01T08:15:00Z",
	})

	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, 122, created.Systolic)
	assert.Equal(t, 81, created.Diastolic)
	require.NotNil(t, created.Pulse)
	assert.Equal(t, 64, *created.Pulse)
	assert.Equal(t, "prehypertension", created.Status)

	measuredAt, err := time.Parse(time.RFC3339Nano, created.MeasuredAt)
	require.NoError(t, err)
	assert.True(t, measuredAt.Equal(time.Date(2024, time.June, 1, 8, 15, 0, 0, time.UTC)))
}

func TestCreateMeasurementValidationErrors(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, httpapi.Config{})
	rr := doJSON(t, server, http.MethodPost, "/api/measurements", map[string]any{
		"systolic":  300,
		"diastolic": 80,
	})

	require.Equal(t, http.StatusBadRequest, rr.Code)

	var body struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, []string{"systolic must be between 40 and 260"}, body.Errors)
}

func TestCreateMeasurementMalformedBody(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, httpapi.Config{})
	req := httptest.NewRequest(http.MethodPost, "/api/measurements", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListMeasurementsClampsLimit(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, httpapi.Config{ListLimitDefault: 100, ListLimitCap: 2})
	for i := 0; i < 3; i++ {
		createMeasurement(t, server, map[string]any{
			"systolic":   120 + i,
			"diastolic":  80,
			"measuredAt": fmt.Sprintf("2024-06-0%dT08:00:00Z", i+1),
		})
	}

	rr := doJSON(t, server, http.MethodGet, "/api/measurements?limit=10000", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var body []measurementBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body, 2, "limit must be clamped to the cap")
	assert.Equal(t, 122, body[0].Systolic, "most recent measurement first")
}

func TestGetMeasurement(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, httpapi.Config{})
	created := createMeasurement(t, server, map[string]any{
		"systolic":  182,
		"diastolic": 80,
	})

	rr := doJSON(t, server, http.MethodGet, fmt.Sprintf("/api/measurements/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var body measurementBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, created.ID, body.ID)
	assert.Equal(t, "danger", body.Status)
}

func TestGetMeasurementNotFound(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, httpapi.Config{})

	for _, target := range []string{"/api/measurements/999", "/api/measurements/abc"} {
		rr := doJSON(t, server, http.MethodGet, target, nil)
		require.Equal(t, http.StatusNotFound, rr.Code, "target %s", target)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "Not found", body["error"])
	}
}

func TestUpdateMeasurement(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, httpapi.Config{})
	created := createMeasurement(t, server, map[string]any{
		"systolic":  122,
		"diastolic": 81,
		"pulse":     64,
	})

	rr := doJSON(t, server, http.MethodPatch, fmt.Sprintf("/api/measurements/%d", created.ID), map[string]any{
		"pulse": nil,
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var body measurementBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Nil(t, body.Pulse, "explicit null must clear pulse")
	assert.Equal(t, 122, body.Systolic)
}

func TestUpdateMeasurementWithoutFields(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, httpapi.Config{})
	created := createMeasurement(t, server, map[string]any{
		"systolic":  122,
		"diastolic": 81,
	})

	rr := doJSON(t, server, http.MethodPatch, fmt.Sprintf("/api/measurements/%d", created.ID), map[string]any{})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "No fields to update", body["error"])
}

func TestUpdateMeasurementNotFound(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, httpapi.Config{})
	rr := doJSON(t, server, http.MethodPatch, "/api/measurements/999", map[string]any{
		"systolic": 130,
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteMeasurementTwice(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, httpapi.Config{})
	created := createMeasurement(t, server, map[string]any{
		"systolic":  122,
		"diastolic": 81,
	})

	target := fmt.Sprintf("/api/measurements/%d", created.ID)

	rr := doJSON(t, server, http.MethodDelete, target, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())

	rr = doJSON(t, server, http.MethodDelete, target, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStatsSummary(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, httpapi.Config{})
	for i, systolic := range []int{120, 130, 140} {
		createMeasurement(t, server, map[string]any{
			"systolic":   systolic,
			"diastolic":  80,
			"measuredAt": fmt.Sprintf("2024-06-01T%02d:00:00Z", 8+i),
		})
	}

	rr := doJSON(t, server, http.MethodGet, "/api/stats/summary?range=day&limit=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Range string `json:"range"`
		Data  []struct {
			Count       int      `json:"count"`
			AvgSystolic float64  `json:"avgSystolic"`
			AvgPulse    *float64 `json:"avgPulse"`
			MinSystolic int      `json:"minSystolic"`
			MaxSystolic int      `json:"maxSystolic"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "day", body.Range)
	require.Len(t, body.Data, 1)
	assert.Equal(t, 3, body.Data[0].Count)
	assert.Equal(t, 130.0, body.Data[0].AvgSystolic)
	assert.Equal(t, 120, body.Data[0].MinSystolic)
	assert.Equal(t, 140, body.Data[0].MaxSystolic)
	assert.Nil(t, body.Data[0].AvgPulse)
}

func TestStatsSummaryUnknownRange(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, httpapi.Config{})
	rr := doJSON(t, server, http.MethodGet, "/api/stats/summary?range=decade", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Range string            `json:"range"`
		Data  []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "day", body.Range)
	assert.Empty(t, body.Data)
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, httpapi.Config{CORSOrigins: []string{"https://tracker.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/measurements", nil)
	req.Header.Set("Origin", "https://tracker.example")
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "https://tracker.example", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/api/measurements", nil)
	req.Header.Set("Origin", "https://other.example")
	rr = httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"), "unlisted origin must not be reflected")
}
