package web

import "net/http"

// clientInventory handles GET /api/clients/{id}/inventory.
func (h *Handler) clientInventory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetClientInventory(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// clientInventorySummary handles GET /api/clients/{id}/inventory/summary.
func (h *Handler) clientInventorySummary(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetClientInventory(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Summary)
}

// currentStockReport handles GET /api/reports/current-stock.
func (h *Handler) currentStockReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetCurrentStockReport(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
