package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, h.history.List())
	case "DELETE":
		h.history.Clear()
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleHistoryEntry(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	entry, ok := h.history.Get(id)
	if !ok {
		h.writeError(w, "Entry not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, entry)
}
