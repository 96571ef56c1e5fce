package web

import (
	"net/http"
	"strconv"
	"time"

	"consignment-manager/internal/core"
)

// listConsignments handles GET /api/consignments with optional filters:
// ?search= matches client name or CNPJ, ?status=, ?start_date= / ?end_date=
// (YYYY-MM-DD), ?client_id=.
func (h *Handler) listConsignments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := core.ConsignmentFilter{
		Search: q.Get("search"),
		Status: core.ConsignmentStatus(q.Get("status")),
	}
	if filter.Status != "" && !core.ValidConsignmentStatus(filter.Status) {
		writeError(w, r, "invalid status filter", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if v := q.Get("start_date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, r, "invalid start_date, want YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		filter.StartDate = &d
	}
	if v := q.Get("end_date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, r, "invalid end_date, want YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		// Inclusive through the end of the day.
		d = d.Add(24*time.Hour - time.Nanosecond)
		filter.EndDate = &d
	}
	if v := q.Get("client_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			writeError(w, r, "invalid client_id", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		filter.ClientID = id
	}

	consignments, err := h.svc.ListConsignments(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if consignments == nil {
		consignments = []core.ConsignmentWithDetails{}
	}
	writeJSON(w, consignments)
}

func (h *Handler) getConsignment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.GetConsignment(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, c)
}

func (h *Handler) createConsignment(w http.ResponseWriter, r *http.Request) {
	var input core.ConsignmentInput
	if !decodeJSON(w, r, &input) {
		return
	}
	c, err := h.svc.CreateConsignment(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, c)
}

func (h *Handler) updateConsignment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var input core.ConsignmentPatch
	if !decodeJSON(w, r, &input) {
		return
	}
	c, err := h.svc.UpdateConsignment(r.Context(), id, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, c)
}

func (h *Handler) deleteConsignment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteConsignment(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
