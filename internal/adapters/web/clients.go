package web

import (
	"net/http"

	"consignment-manager/internal/core"
)

// listClients handles GET /api/clients. Supports ?search= on name or CNPJ
// and ?include_inactive=true to see deactivated clients too.
func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	clients, err := h.svc.ListClients(r.Context(), search, includeInactive)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if clients == nil {
		clients = []core.Client{}
	}
	writeJSON(w, clients)
}

func (h *Handler) getClient(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	client, err := h.svc.GetClient(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, client)
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var input core.ClientInput
	if !decodeJSON(w, r, &input) {
		return
	}
	client, err := h.svc.CreateClient(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, client)
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var input core.ClientPatch
	if !decodeJSON(w, r, &input) {
		return
	}
	client, err := h.svc.UpdateClient(r.Context(), id, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, client)
}

func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteClient(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deactivateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	client, err := h.svc.DeactivateClient(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, client)
}

func (h *Handler) activateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	client, err := h.svc.ActivateClient(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, client)
}
