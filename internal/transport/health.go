package transport

import "net/http"

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	snapshot := h.metrics.Snapshot()
	snapshot["status"] = "ok"
	writeJSON(w, http.StatusOK, snapshot)
}
