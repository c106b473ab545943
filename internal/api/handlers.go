package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	gwebsocket "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Sethnnections/solar-monitoring-system/internal/auth"
	"github.com/Sethnnections/solar-monitoring-system/internal/config"
	"github.com/Sethnnections/solar-monitoring-system/internal/data"
	"github.com/Sethnnections/solar-monitoring-system/internal/pipeline"
	"github.com/Sethnnections/solar-monitoring-system/internal/processor"
	"github.com/Sethnnections/solar-monitoring-system/internal/storage"
	"github.com/Sethnnections/solar-monitoring-system/internal/websocket"
)

var upgrader = gwebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type APIHandler struct {
	pipe       *pipeline.Pipeline
	readings   storage.ReadingRepository
	alerts     storage.AlertRepository
	hub        *websocket.Hub
	auth       *auth.Manager
	thresholds config.ThresholdConfig
	logger     *zap.Logger
}

func NewAPIHandler(pipe *pipeline.Pipeline, readings storage.ReadingRepository, alerts storage.AlertRepository,
	hub *websocket.Hub, authManager *auth.Manager, thresholds config.ThresholdConfig, logger *zap.Logger) *APIHandler {
	return &APIHandler{
		pipe:       pipe,
		readings:   readings,
		alerts:     alerts,
		hub:        hub,
		auth:       authManager,
		thresholds: thresholds,
		logger:     logger,
	}
}

// HandleDataIngest receives one telemetry payload from a device.
func (h *APIHandler) HandleDataIngest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	reading, err := data.Parse(body, r.Header.Get("X-Device-ID"))
	if err != nil {
		h.logger.Warn("rejecting payload", zap.Error(err))
		http.Error(w, "Bad Request: "+err.Error(), http.StatusBadRequest)
		return
	}

	alerts, err := h.pipe.Ingest(r.Context(), reading)
	if err != nil {
		h.logger.Error("ingest failed", zap.String("device", reading.DeviceID), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    reading.Status,
		"isAnomaly": reading.IsAnomaly,
		"alerts":    len(alerts),
	})
}

// HandleLogin exchanges operator credentials for a JWT.
func (h *APIHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	ok, role, err := h.auth.AuthenticateUser(creds.Username, creds.Password)
	if err != nil || !ok {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.auth.GenerateJWT(creds.Username, role)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token, "role": role})
}

// HandleDevices lists known device ids.
func (h *APIHandler) HandleDevices(w http.ResponseWriter, r *http.Request) {
	ids, err := h.readings.DeviceIDs(r.Context())
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"devices": ids})
}

// HandleLatest returns a device's newest reading.
func (h *APIHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceID")
	reading, err := h.readings.GetLatest(r.Context(), deviceID)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if reading == nil {
		http.Error(w, "No readings for device", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, reading)
}

// HandleReadings returns raw readings in a time range, ascending.
func (h *APIHandler) HandleReadings(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceID")
	start, end, err := parseTimeRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	readings, err := h.readings.GetRange(r.Context(), deviceID, start, end)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"readings": readings, "count": len(readings)})
}

// HandleAggregate returns time-bucketed averages for a device.
func (h *APIHandler) HandleAggregate(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceID")
	start, end, err := parseTimeRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	interval := processor.ParseInterval(r.URL.Query().Get("interval"))

	readings, err := h.readings.GetRange(r.Context(), deviceID, start, end)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	buckets := processor.AggregateBuckets(readings, interval)
	respondJSON(w, http.StatusOK, map[string]interface{}{"interval": interval, "buckets": buckets})
}

// HandleSummary builds the full period summary for a device.
func (h *APIHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceID")
	start, end, err := parseTimeRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	readings, err := h.readings.GetRange(r.Context(), deviceID, start, end)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	report := processor.BuildPeriodSummary(deviceID, readings, start, end, h.thresholds)
	respondJSON(w, http.StatusOK, report)
}

// HandleTrend fits a linear trend over the hourly averages of one metric.
func (h *APIHandler) HandleTrend(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceID")
	start, end, err := parseTimeRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = "power"
	}

	readings, err := h.readings.GetRange(r.Context(), deviceID, start, end)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	buckets := processor.AggregateBuckets(readings, processor.IntervalHour)
	values := make([]float64, 0, len(buckets))
	for _, b := range buckets {
		switch metric {
		case "voltage":
			values = append(values, b.Voltage)
		case "current":
			values = append(values, b.Current)
		case "temperature":
			values = append(values, b.Temperature)
		case "power":
			values = append(values, b.Power)
		default:
			http.Error(w, "Unknown metric: "+metric, http.StatusBadRequest)
			return
		}
	}

	trend := processor.AnalyzeTrend(values)
	respondJSON(w, http.StatusOK, map[string]interface{}{"metric": metric, "samples": len(values), "trend": trend})
}

// HandleAlerts returns recent alerts, newest first.
func (h *APIHandler) HandleAlerts(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	alerts, err := h.alerts.Recent(r.Context(), limit)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts, "count": len(alerts)})
}

// HandleWebSocket upgrades the connection and registers the client with the
// hub, then seeds it with recent history.
func (h *APIHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &websocket.Client{Hub: h.hub, Conn: conn, Send: make(chan []byte, 256), Logger: h.logger}
	client.Hub.RegisterClient(client)

	go client.WritePump()
	go client.ReadPump()
	go h.sendInitialAlerts(client)
}

// sendInitialAlerts pushes recent alert history to a newly connected client.
func (h *APIHandler) sendInitialAlerts(client *websocket.Client) {
	alerts, err := h.alerts.Recent(context.Background(), 20)
	if err != nil || len(alerts) == 0 {
		return
	}

	messageBytes, err := json.Marshal(map[string]interface{}{
		"type":    "history",
		"payload": alerts,
	})
	if err != nil {
		return
	}

	select {
	case client.Send <- messageBytes:
	case <-time.After(5 * time.Second):
		h.logger.Warn("timeout sending alert history to websocket client")
	}
}

// parseTimeRange reads start/end query params (RFC3339), defaulting to the
// trailing 24 hours.
func parseTimeRange(r *http.Request) (time.Time, time.Time, error) {
	end := time.Now().UTC()
	start := end.Add(-24 * time.Hour)

	if raw := r.URL.Query().Get("start"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = t
	}
	return start, end, nil
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
