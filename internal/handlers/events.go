package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// HandleEvents streams history events as Server-Sent Events
func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	events, cancel := h.history.Subscribe(32)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				slog.Error("Unable to encode history event", "err", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
				slog.Debug("Event stream closed", "err", err)
				return
			}
			flusher.Flush()
		}
	}
}
