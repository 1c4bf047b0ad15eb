package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lehigh-university-libraries/omniscan/internal/scanner"
)

// HandleScan accepts manual entry. Submissions while a scan is in flight are
// rejected, never queued.
func (h *Handler) HandleScan(w http.ResponseWriter, r *http.Request) {
	var request struct {
		RawValue string `json:"raw_value"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := h.scanner.SubmitManual(request.RawValue)
	switch {
	case errors.Is(err, scanner.ErrEmptyInput):
		h.writeError(w, "raw_value is required", http.StatusBadRequest)
	case errors.Is(err, scanner.ErrBusy):
		h.writeError(w, "Scanner busy, try again shortly", http.StatusConflict)
	case errors.Is(err, scanner.ErrClosed):
		h.writeError(w, "Scanner shutting down", http.StatusServiceUnavailable)
	case err != nil:
		h.writeError(w, "Failed to submit scan: "+err.Error(), http.StatusInternalServerError)
	default:
		h.writeJSONStatus(w, http.StatusAccepted, entry)
	}
}
