// Package http exposes the REST control surface: history, summaries,
// reminders, maintenance mode, fall-alarm reset, and report exports.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	alarmapp "healthwatch-cloud/internal/alarms/application"
	analyticsapp "healthwatch-cloud/internal/analytics/application"
	analytics "healthwatch-cloud/internal/analytics/domain"
	remapp "healthwatch-cloud/internal/reminders/application"
	reminders "healthwatch-cloud/internal/reminders/domain"
	"healthwatch-cloud/internal/reports"
	vitals "healthwatch-cloud/internal/vitals/domain"
)

const defaultHistoryLimit = 10

// Handler provides the JSON control surface over the running engine.
type Handler struct {
	store      vitals.ReadingStore
	aggregator *analyticsapp.Aggregator
	engine     *alarmapp.Engine
	reminders  *remapp.Service

	historyLimit int
	logger       *zap.Logger
}

// HandlerOption customizes the handler.
type HandlerOption func(*Handler)

// WithHistoryLimit overrides the default history page size.
func WithHistoryLimit(limit int) HandlerOption {
	return func(h *Handler) {
		if limit > 0 {
			h.historyLimit = limit
		}
	}
}

// NewHandler constructs the REST handler. store may be nil; history and
// export endpoints then answer 503.
func NewHandler(
	store vitals.ReadingStore,
	aggregator *analyticsapp.Aggregator,
	engine *alarmapp.Engine,
	reminderService *remapp.Service,
	logger *zap.Logger,
	opts ...HandlerOption,
) (*Handler, error) {
	if aggregator == nil {
		return nil, errors.New("api: nil aggregator")
	}
	if engine == nil {
		return nil, errors.New("api: nil alarm engine")
	}
	if reminderService == nil {
		return nil, errors.New("api: nil reminder service")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := &Handler{
		store:        store,
		aggregator:   aggregator,
		engine:       engine,
		reminders:    reminderService,
		historyLimit: defaultHistoryLimit,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(handler)
	}
	return handler, nil
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "no reading store configured")
		return
	}
	limit := h.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	readings, err := h.store.ListRecentReadings(r.Context(), limit)
	if err != nil {
		h.logger.Error("history query failed", zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, "reading store unavailable")
		return
	}
	if readings == nil {
		readings = []vitals.VitalReading{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"readings": readings})
}

func (h *Handler) handleRollingSummary(w http.ResponseWriter, r *http.Request) {
	buckets := h.aggregator.RollingSummary()
	if buckets == nil {
		buckets = []analytics.BucketSummary{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"buckets": buckets,
		"live":    h.aggregator.LiveBucket().Summary(),
	})
}

func (h *Handler) handleWindowSummary(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("window")
	if name == "" {
		name = analyticsapp.WindowMinute
	}
	lookback, slotWidth, err := analyticsapp.NamedWindow(name)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.aggregator.AggregateWindow(r.Context(), lookback, slotWidth)
	if err != nil {
		if errors.Is(err, vitals.ErrStoreUnavailable) {
			respondError(w, http.StatusServiceUnavailable, "reading store unavailable")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *Handler) handleListReminders(w http.ResponseWriter, r *http.Request) {
	list, err := h.reminders.List(r.Context())
	if err != nil {
		h.logger.Error("reminder list failed", zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, "reminder store unavailable")
		return
	}
	if list == nil {
		list = []reminders.Reminder{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"reminders": list})
}

type addReminderRequest struct {
	Medicine  string `json:"medicine"`
	TimeOfDay string `json:"time"`
}

func (h *Handler) handleAddReminder(w http.ResponseWriter, r *http.Request) {
	var req addReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	reminder, err := h.reminders.Add(r.Context(), req.Medicine, req.TimeOfDay)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, reminder)
}

func (h *Handler) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.reminders.Delete(r.Context(), id); err != nil {
		if errors.Is(err, reminders.ErrNotFound) {
			respondError(w, http.StatusNotFound, "reminder not found")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetMaintenance(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Snapshot())
}

type maintenanceRequest struct {
	Enabled bool `json:"enabled"`
}

func (h *Handler) handleSetMaintenance(w http.ResponseWriter, r *http.Request) {
	var req maintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	h.engine.SetMaintenance(req.Enabled)
	respondJSON(w, http.StatusOK, h.engine.Snapshot())
}

func (h *Handler) handleResetFall(w http.ResponseWriter, r *http.Request) {
	wasActive := h.engine.ResetFall(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{
		"was_active": wasActive,
		"state":      h.engine.Snapshot(),
	})
}

func (h *Handler) handleExportHistory(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "no reading store configured")
		return
	}
	since := time.Now().UTC().Add(-24 * time.Hour)
	readings, err := h.store.ListReadingsSince(r.Context(), since)
	if err != nil {
		h.logger.Error("history export query failed", zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, "reading store unavailable")
		return
	}
	data, err := reports.BuildHistoryXLSX(readings)
	if err != nil {
		h.logger.Error("history export render failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="vital-history.xlsx"`)
	_, _ = w.Write(data)
}

func (h *Handler) handleExportSummary(w http.ResponseWriter, r *http.Request) {
	data, err := reports.BuildRollingSummaryPDF(h.aggregator.RollingSummary(), time.Now())
	if err != nil {
		h.logger.Error("summary export render failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="rolling-summary.pdf"`)
	_, _ = w.Write(data)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
