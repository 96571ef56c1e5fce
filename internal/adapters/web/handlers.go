package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"consignment-manager/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(1 << 20)) // 1 MiB

	r.Get("/api/health", h.health)
	r.Get("/api/dashboard/stats", h.dashboard)

	r.Route("/api/clients", func(r chi.Router) {
		r.Get("/", h.listClients)
		r.Post("/", h.createClient)
		r.Get("/{id}", h.getClient)
		r.Put("/{id}", h.updateClient)
		r.Delete("/{id}", h.deleteClient)
		r.Post("/{id}/deactivate", h.deactivateClient)
		r.Post("/{id}/activate", h.activateClient)
		r.Route("/{id}/stock", func(r chi.Router) {
			r.Get("/", h.clientStock)
			r.Get("/alerts", h.clientStockAlerts)
			r.Get("/{productID}", h.getProductStock)
			r.Put("/{productID}", h.updateProductStock)
			r.Post("/{productID}/count", h.processCount)
			r.Put("/{productID}/alert", h.setMinimumAlert)
		})
		r.Get("/{id}/stock-value", h.clientStockValue)
		r.Get("/{id}/inventory", h.clientInventory)
		r.Get("/{id}/inventory/summary", h.clientInventorySummary)
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Post("/", h.createProduct)
		r.Get("/{id}", h.getProduct)
		r.Put("/{id}", h.updateProduct)
		r.Delete("/{id}", h.deleteProduct)
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Get("/", h.listUsers)
		r.Post("/", h.createUser)
		r.Put("/{id}", h.updateUser)
		r.Post("/{id}/deactivate", h.deactivateUser)
	})

	r.Route("/api/consignments", func(r chi.Router) {
		r.Get("/", h.listConsignments)
		r.Post("/", h.createConsignment)
		r.Get("/{id}", h.getConsignment)
		r.Put("/{id}", h.updateConsignment)
		r.Delete("/{id}", h.deleteConsignment)
	})

	r.Get("/api/stock/alerts", h.lowStockAlerts)

	r.Route("/api/stock-counts", func(r chi.Router) {
		r.Get("/", h.listStockCounts)
		r.Post("/", h.createStockCount)
		r.Post("/batch", h.createStockCountBatch)
		r.Get("/{id}", h.getStockCount)
		r.Put("/{id}", h.updateStockCount)
		r.Delete("/{id}", h.deleteStockCount)
	})

	r.Get("/api/reports/current-stock", h.currentStockReport)

	r.Post("/api/ai/parse-count", h.parseCountSheet)

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// urlID extracts and parses the {id} URL parameter. On failure it writes a
// 400 response and returns false.
func urlID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, r, "invalid id", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// stockPairIDs extracts the {id} and {productID} URL parameters for
// client-scoped stock routes. On failure it writes a 400 response and
// returns false.
func stockPairIDs(w http.ResponseWriter, r *http.Request) (clientID, productID int, ok bool) {
	clientID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || clientID <= 0 {
		writeError(w, r, "invalid client id", "BAD_REQUEST", http.StatusBadRequest)
		return 0, 0, false
	}
	productID, err = strconv.Atoi(chi.URLParam(r, "productID"))
	if err != nil || productID <= 0 {
		writeError(w, r, "invalid product id", "BAD_REQUEST", http.StatusBadRequest)
		return 0, 0, false
	}
	return clientID, productID, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
