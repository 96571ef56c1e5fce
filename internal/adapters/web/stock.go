package web

import (
	"net/http"
	"strconv"

	"consignment-manager/internal/app"
	"consignment-manager/internal/core"
)

// clientStock handles GET /api/clients/{id}/stock.
func (h *Handler) clientStock(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	stock, err := h.svc.GetClientStock(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if stock == nil {
		stock = []core.ClientStockWithDetails{}
	}
	writeJSON(w, stock)
}

// getProductStock handles GET /api/clients/{id}/stock/{productID}.
func (h *Handler) getProductStock(w http.ResponseWriter, r *http.Request) {
	clientID, productID, ok := stockPairIDs(w, r)
	if !ok {
		return
	}
	stock, err := h.svc.GetProductStock(r.Context(), clientID, productID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, stock)
}

// updateProductStock handles PUT /api/clients/{id}/stock/{productID}, a
// manual correction to a ledger row.
func (h *Handler) updateProductStock(w http.ResponseWriter, r *http.Request) {
	clientID, productID, ok := stockPairIDs(w, r)
	if !ok {
		return
	}
	var patch core.ClientStockPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	stock, err := h.svc.UpdateProductStock(r.Context(), clientID, productID, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, stock)
}

// processCount handles POST /api/clients/{id}/stock/{productID}/count, the
// real-time count flow.
func (h *Handler) processCount(w http.ResponseWriter, r *http.Request) {
	clientID, productID, ok := stockPairIDs(w, r)
	if !ok {
		return
	}
	var body struct {
		CountedQuantity int `json:"counted_quantity"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.ProcessCount(r.Context(), app.ProcessCountRequest{
		ClientID:        clientID,
		ProductID:       productID,
		QuantityCounted: body.CountedQuantity,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// clientStockValue handles GET /api/clients/{id}/stock-value.
func (h *Handler) clientStockValue(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	value, err := h.svc.GetClientStockValue(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	type response struct {
		ClientID   int    `json:"client_id"`
		TotalValue string `json:"total_value"`
	}
	writeJSON(w, response{ClientID: id, TotalValue: value})
}

// clientStockAlerts handles GET /api/clients/{id}/stock/alerts.
func (h *Handler) clientStockAlerts(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	alerts, err := h.svc.GetLowStockAlerts(r.Context(), &id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if alerts == nil {
		alerts = []core.ClientStockWithDetails{}
	}
	writeJSON(w, alerts)
}

// lowStockAlerts handles GET /api/stock/alerts, optionally ?client_id=.
func (h *Handler) lowStockAlerts(w http.ResponseWriter, r *http.Request) {
	var clientID *int
	if v := r.URL.Query().Get("client_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			writeError(w, r, "invalid client_id", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		clientID = &id
	}
	alerts, err := h.svc.GetLowStockAlerts(r.Context(), clientID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if alerts == nil {
		alerts = []core.ClientStockWithDetails{}
	}
	writeJSON(w, alerts)
}

// setMinimumAlert handles PUT /api/clients/{id}/stock/{productID}/alert.
func (h *Handler) setMinimumAlert(w http.ResponseWriter, r *http.Request) {
	clientID, productID, ok := stockPairIDs(w, r)
	if !ok {
		return
	}
	var body struct {
		MinimumAlert int `json:"minimum_alert"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	stock, err := h.svc.SetMinimumAlert(r.Context(), app.MinimumAlertRequest{
		ClientID:     clientID,
		ProductID:    productID,
		MinimumAlert: body.MinimumAlert,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, stock)
}

// listStockCounts handles GET /api/stock-counts, optionally ?client_id=.
func (h *Handler) listStockCounts(w http.ResponseWriter, r *http.Request) {
	var clientID *int
	if v := r.URL.Query().Get("client_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			writeError(w, r, "invalid client_id", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		clientID = &id
	}
	counts, err := h.svc.ListStockCounts(r.Context(), clientID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if counts == nil {
		counts = []core.StockCount{}
	}
	writeJSON(w, counts)
}

func (h *Handler) getStockCount(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	sc, err := h.svc.GetStockCount(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, sc)
}

func (h *Handler) createStockCount(w http.ResponseWriter, r *http.Request) {
	var input core.StockCountInput
	if !decodeJSON(w, r, &input) {
		return
	}
	sc, err := h.svc.CreateStockCount(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, sc)
}

// createStockCountBatch handles POST /api/stock-counts/batch — a whole count
// sheet in one transaction.
func (h *Handler) createStockCountBatch(w http.ResponseWriter, r *http.Request) {
	var inputs []core.StockCountInput
	if !decodeJSON(w, r, &inputs) {
		return
	}
	counts, err := h.svc.CreateStockCountBatch(r.Context(), inputs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, counts)
}

func (h *Handler) updateStockCount(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var patch core.StockCountPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	sc, err := h.svc.UpdateStockCount(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, sc)
}

func (h *Handler) deleteStockCount(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteStockCount(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
