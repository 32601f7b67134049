package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the REST surface, the metrics endpoint, and an optional
// websocket handler onto one mux.
func NewRouter(handler *Handler, socket http.Handler) *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/history", handler.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/summary/rolling", handler.handleRollingSummary).Methods(http.MethodGet)
	api.HandleFunc("/summary/window", handler.handleWindowSummary).Methods(http.MethodGet)

	api.HandleFunc("/reminders", handler.handleListReminders).Methods(http.MethodGet)
	api.HandleFunc("/reminders", handler.handleAddReminder).Methods(http.MethodPost)
	api.HandleFunc("/reminders/{id}", handler.handleDeleteReminder).Methods(http.MethodDelete)

	api.HandleFunc("/maintenance", handler.handleGetMaintenance).Methods(http.MethodGet)
	api.HandleFunc("/maintenance", handler.handleSetMaintenance).Methods(http.MethodPost, http.MethodPut)
	api.HandleFunc("/alarms/fall/reset", handler.handleResetFall).Methods(http.MethodPost)

	api.HandleFunc("/exports/history.xlsx", handler.handleExportHistory).Methods(http.MethodGet)
	api.HandleFunc("/exports/summary.pdf", handler.handleExportSummary).Methods(http.MethodGet)

	router.HandleFunc("/healthz", handler.handleHealthz).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	if socket != nil {
		router.Handle("/ws/{client}", socket)
	}
	return router
}
