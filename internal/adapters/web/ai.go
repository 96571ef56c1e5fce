package web

import (
	"net/http"

	"consignment-manager/internal/app"
)

// parseCountSheet handles POST /api/ai/parse-count. The response is a
// review proposal; nothing is written until the caller submits counts.
func (h *Handler) parseCountSheet(w http.ResponseWriter, r *http.Request) {
	var req app.ParseCountSheetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.ParseCountSheet(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
