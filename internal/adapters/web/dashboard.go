package web

import "net/http"

// dashboard handles GET /api/dashboard/stats.
func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetDashboard(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, stats)
}
