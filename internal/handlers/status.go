package handlers

import (
	"net/http"

	"github.com/lehigh-university-libraries/omniscan/internal/capture"
)

func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	response := struct {
		Capture capture.Status `json:"capture"`
		Busy    bool           `json:"busy"`
		History int            `json:"history"`
	}{
		Capture: h.capture.Status(),
		Busy:    h.scanner.Busy(),
		History: h.history.Len(),
	}
	h.writeJSON(w, response)
}
