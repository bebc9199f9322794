package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"

	"farmsight.dev/farmsight/internal/hub"
	"farmsight.dev/farmsight/internal/stats"
	"farmsight.dev/farmsight/internal/store"
	"farmsight.dev/farmsight/pkg/metrics"
)

// pigHistoryLimit caps the per-pig record history endpoints.
const pigHistoryLimit = 100

// Handlers serves the pull API. Everything here reads the same state the push
// pipeline reads; the endpoints exist for initial page loads and charting,
// the WebSocket keeps clients current afterwards.
type Handlers struct {
	db     *gorm.DB
	source *stats.Source
	hub    *hub.Hub
	logger *slog.Logger
}

// NewHandlers creates the HTTP handler set.
func NewHandlers(db *gorm.DB, source *stats.Source, h *hub.Hub, l *slog.Logger) *Handlers {
	return &Handlers{
		db:     db,
		source: source,
		hub:    h,
		logger: l,
	}
}

// Routes builds the HTTP mux.
func (h *Handlers) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /ws", h.handleWS)

	mux.HandleFunc("GET /api/stats", h.handleStats)
	mux.HandleFunc("GET /api/devices", h.handleDevices)
	mux.HandleFunc("GET /api/pigs", h.handlePigs)
	mux.HandleFunc("GET /api/pigs/analytics/time-series", h.handleTimeSeries)
	mux.HandleFunc("GET /api/pigs/analytics/summary", h.handlePigSummary)
	mux.HandleFunc("GET /api/devices/analytics/summary", h.handleDeviceSummary)
	mux.HandleFunc("GET /api/pigs/{id}/bcs", h.handlePigBCS)
	mux.HandleFunc("GET /api/pigs/{id}/posture", h.handlePigPosture)
	mux.HandleFunc("GET /api/temperature/analytics/summary", h.handleTemperatureSummary)

	return mux
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) handleWS(w http.ResponseWriter, r *http.Request) {
	hub.ServeWS(h.hub, w, r)
}

// handleStats computes a fresh snapshot on demand. It shares the exact code
// path of the broadcast pipeline, so pull and push can never disagree.
func (h *Handlers) handleStats(w http.ResponseWriter, r *http.Request) {
	in, err := h.source.Collect(r.Context())
	if err != nil {
		h.logger.Error("failed to collect stats inputs", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to retrieve statistics")
		return
	}
	h.respondJSON(w, http.StatusOK, stats.Compute(in))
}

func (h *Handlers) handleDevices(w http.ResponseWriter, r *http.Request) {
	var devices []store.Device
	if err := h.db.WithContext(r.Context()).Find(&devices).Error; err != nil {
		h.logger.Error("failed to read devices", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to retrieve devices")
		return
	}
	h.respondJSON(w, http.StatusOK, stats.TransformDevices(devices, time.Now()))
}

func (h *Handlers) handlePigs(w http.ResponseWriter, r *http.Request) {
	in, err := h.source.Collect(r.Context())
	if err != nil {
		h.logger.Error("failed to collect pig rows", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to retrieve pigs")
		return
	}
	h.respondJSON(w, http.StatusOK, stats.TransformPigs(in, time.Now()))
}

func (h *Handlers) handleTimeSeries(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = stats.PeriodDaily
	}

	buckets, err := h.source.TimeSeries(r.Context(), period, time.Now())
	if err != nil {
		if errors.Is(err, stats.ErrInvalidPeriod) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to build time series", "period", period, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to retrieve time series")
		return
	}
	h.respondJSON(w, http.StatusOK, buckets)
}

func (h *Handlers) handlePigSummary(w http.ResponseWriter, r *http.Request) {
	var pigs []store.Pig
	if err := h.db.WithContext(r.Context()).Where("active = ?", true).Find(&pigs).Error; err != nil {
		h.logger.Error("failed to read pigs", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to retrieve pig summary")
		return
	}
	h.respondJSON(w, http.StatusOK, stats.ComputePigSummary(pigs))
}

func (h *Handlers) handleDeviceSummary(w http.ResponseWriter, r *http.Request) {
	var devices []store.Device
	if err := h.db.WithContext(r.Context()).Find(&devices).Error; err != nil {
		h.logger.Error("failed to read devices", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to retrieve device summary")
		return
	}
	h.respondJSON(w, http.StatusOK, stats.ComputeDeviceSummary(devices))
}

func (h *Handlers) pigID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid pig id")
		return 0, false
	}
	return id, true
}

func (h *Handlers) handlePigBCS(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pigID(w, r)
	if !ok {
		return
	}

	var records []store.BCSRecord
	if err := h.db.WithContext(r.Context()).
		Where("pig_id = ?", id).
		Order("timestamp DESC").
		Limit(pigHistoryLimit).
		Find(&records).Error; err != nil {
		h.logger.Error("failed to read bcs records", "pig_id", id, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to retrieve bcs records")
		return
	}
	h.respondJSON(w, http.StatusOK, records)
}

func (h *Handlers) handlePigPosture(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pigID(w, r)
	if !ok {
		return
	}

	var records []store.PostureRecord
	if err := h.db.WithContext(r.Context()).
		Where("pig_id = ?", id).
		Order("timestamp DESC").
		Limit(pigHistoryLimit).
		Find(&records).Error; err != nil {
		h.logger.Error("failed to read posture records", "pig_id", id, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to retrieve posture records")
		return
	}
	h.respondJSON(w, http.StatusOK, records)
}

// temperatureSummary mirrors the historical analytics shape: min and max are
// null rather than 0 when no records exist.
type temperatureSummary struct {
	TotalRecords   int      `json:"totalRecords"`
	AvgTemperature float64  `json:"avgTemperature"`
	MinTemperature *float64 `json:"minTemperature"`
	MaxTemperature *float64 `json:"maxTemperature"`
}

func (h *Handlers) handleTemperatureSummary(w http.ResponseWriter, r *http.Request) {
	var records []store.TemperatureRecord
	if err := h.db.WithContext(r.Context()).Find(&records).Error; err != nil {
		h.logger.Error("failed to read temperature records", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to retrieve temperature summary")
		return
	}

	if len(records) == 0 {
		h.respondJSON(w, http.StatusOK, temperatureSummary{})
		return
	}

	sum := 0.0
	minTemp := records[0].Temperature
	maxTemp := records[0].Temperature
	for _, rec := range records {
		sum += rec.Temperature
		minTemp = math.Min(minTemp, rec.Temperature)
		maxTemp = math.Max(maxTemp, rec.Temperature)
	}

	avg := math.Round(sum/float64(len(records))*100) / 100
	h.respondJSON(w, http.StatusOK, temperatureSummary{
		TotalRecords:   len(records),
		AvgTemperature: avg,
		MinTemperature: &minTemp,
		MaxTemperature: &maxTemp,
	})
}
