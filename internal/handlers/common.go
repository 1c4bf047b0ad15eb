package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lehigh-university-libraries/omniscan/internal/capture"
	"github.com/lehigh-university-libraries/omniscan/internal/models"
	"github.com/lehigh-university-libraries/omniscan/internal/storage"
)

// Scanner is the scan coordinator as seen by the HTTP surface
type Scanner interface {
	Busy() bool
	SubmitManual(text string) (models.ScanEntry, error)
}

// StatusReporter exposes the capture loop status
type StatusReporter interface {
	Status() capture.Status
}

type Handler struct {
	history *storage.HistoryStore
	scanner Scanner
	capture StatusReporter
	// frames is nil unless frames are pushed over HTTP
	frames *capture.PushSource
}

func New(history *storage.HistoryStore, scanner Scanner, status StatusReporter, frames *capture.PushSource) *Handler {
	return &Handler{
		history: history,
		scanner: scanner,
		capture: status,
		frames:  frames,
	}
}

// Router wires every endpoint
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/history", h.HandleHistory).Methods("GET", "DELETE")
	r.HandleFunc("/api/history/{id}", h.HandleHistoryEntry).Methods("GET")
	r.HandleFunc("/api/scan", h.HandleScan).Methods("POST")
	r.HandleFunc("/api/frames", h.HandleFrames).Methods("POST")
	r.HandleFunc("/api/status", h.HandleStatus).Methods("GET")
	r.HandleFunc("/api/events", h.HandleEvents).Methods("GET")
	r.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	}).Methods("GET")
	return r
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message)
	} else {
		slog.Debug(message, "code", code)
	}
	http.Error(w, message, code)
}
