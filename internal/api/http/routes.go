package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"bp-tracker-service/internal/domain"
	"bp-tracker-service/internal/logging"
	"bp-tracker-service/internal/metrics"
)

// handler contains the HTTP handlers and shared dependencies for the REST
// API.
type handler struct {
	measurements domain.MeasurementService
	stats        domain.StatsService
	logger       *logging.Logger
	listDefault  int
	listCap      int
}

func registerRoutes(router chi.Router, h *handler) {
	router.Get("/health", h.handleHealth)
	router.Route("/measurements", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Patch("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
	router.Get("/stats/summary", h.handleStatsSummary)
}

type measurementResponse struct {
	ID         int64         `json:"id"`
	Systolic   int           `json:"systolic"`
	Diastolic  int           `json:"diastolic"`
	Pulse      *int          `json:"pulse"`
	MeasuredAt string        `json:"measuredAt"`
	Status     domain.Status `json:"status"`
}

type statsBucketResponse struct {
	Bucket       string   `json:"bucket"`
	Count        int      `json:"count"`
	AvgSystolic  float64  `json:"avgSystolic"`
	AvgDiastolic float64  `json:"avgDiastolic"`
	AvgPulse     *float64 `json:"avgPulse"`
	MinSystolic  int      `json:"minSystolic"`
	MaxSystolic  int      `json:"maxSystolic"`
	MinDiastolic int      `json:"minDiastolic"`
	MaxDiastolic int      `json:"maxDiastolic"`
}

type statsSummaryResponse struct {
	Range string                `json:"range"`
	Data  []statsBucketResponse `json:"data"`
}

type healthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type validationResponse struct {
	Errors []string `json:"errors"`
}

// serializeMeasurement derives the status tier every time; it is never
// read from storage.
func serializeMeasurement(m domain.Measurement) measurementResponse {
	return measurementResponse{
		ID:         m.ID,
		Systolic:   m.Systolic,
		Diastolic:  m.Diastolic,
		Pulse:      m.Pulse,
		MeasuredAt: m.MeasuredAt.UTC().Format(time.RFC3339Nano),
		Status:     domain.Classify(m.Systolic, m.Diastolic),
	}
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (h *handler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"), h.listDefault, h.listCap)

	result, err := h.measurements.List(r.Context(), limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	response := make([]measurementResponse, 0, len(result))
	for _, m := range result {
		response = append(response, serializeMeasurement(m))
	}
	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		h.writeError(w, http.StatusNotFound, "Not found")
		return
	}

	m, err := h.measurements.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, serializeMeasurement(m))
}

func (h *handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	attrs, ok := h.decodeBody(w, r)
	if !ok {
		return
	}

	m, err := h.measurements.Create(r.Context(), attrs)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	metrics.MeasurementsCreatedTotal.Inc()
	h.writeJSON(w, http.StatusCreated, serializeMeasurement(m))
}

func (h *handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		h.writeError(w, http.StatusNotFound, "Not found")
		return
	}

	attrs, ok := h.decodeBody(w, r)
	if !ok {
		return
	}

	m, err := h.measurements.Update(r.Context(), id, attrs)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, serializeMeasurement(m))
}

func (h *handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		h.writeError(w, http.StatusNotFound, "Not found")
		return
	}

	if err := h.measurements.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleStatsSummary(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	limit, _ := strconv.Atoi(params.Get("limit"))

	summary, err := h.stats.Summary(r.Context(), params.Get("range"), limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	data := make([]statsBucketResponse, 0, len(summary.Buckets))
	for _, b := range summary.Buckets {
		data = append(data, statsBucketResponse{
			Bucket:       b.Bucket.UTC().Format(time.RFC3339Nano),
			Count:        b.Count,
			AvgSystolic:  b.AvgSystolic,
			AvgDiastolic: b.AvgDiastolic,
			AvgPulse:     b.AvgPulse,
			MinSystolic:  b.MinSystolic,
			MaxSystolic:  b.MaxSystolic,
			MinDiastolic: b.MinDiastolic,
			MaxDiastolic: b.MaxDiastolic,
		})
	}
	h.writeJSON(w, http.StatusOK, statsSummaryResponse{
		Range: string(summary.Granularity),
		Data:  data,
	})
}

// decodeBody parses the request body into a raw attribute map. UseNumber
// keeps numeric fields distinguishable from strings for the validator.
func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()

	attrs := make(map[string]any)
	if err := decoder.Decode(&attrs); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return nil, false
	}
	return attrs, true
}

func (h *handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		h.writeJSON(w, http.StatusBadRequest, validationResponse{Errors: validation.Errors})
	case errors.Is(err, domain.ErrNoFields):
		h.writeError(w, http.StatusBadRequest, "No fields to update")
	case errors.Is(err, domain.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "Not found")
	default:
		h.logger.Error(r.Context(), "unhandled error", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Internal server error",
			Details: err.Error(),
		})
	}
}

func (h *handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseLimit(raw string, fallback, ceiling int) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		limit = fallback
	}
	if limit > ceiling {
		limit = ceiling
	}
	return limit
}
