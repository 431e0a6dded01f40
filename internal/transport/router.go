package transport

import (
	"net/http"

	"vinestore-be/internal/access"
	"vinestore-be/internal/apperr"
	"vinestore-be/internal/category"
	"vinestore-be/internal/item"
	"vinestore-be/internal/metrics"
	"vinestore-be/internal/middleware"
	"vinestore-be/internal/order"
	"vinestore-be/internal/report"
	"vinestore-be/internal/storage"
	"vinestore-be/internal/user"

	"github.com/shopspring/decimal"
)

// Handler carries the services behind the HTTP surface.
type Handler struct {
	categories category.Service
	items      item.Service
	orders     order.Service
	reports    report.Service
	access     access.Service
	users      user.Service
	store      *storage.Store
	metrics    *metrics.Registry
}

func NewHandler(
	categories category.Service,
	items item.Service,
	orders order.Service,
	reports report.Service,
	accessSvc access.Service,
	users user.Service,
	store *storage.Store,
	reg *metrics.Registry,
) *Handler {
	return &Handler{
		categories: categories,
		items:      items,
		orders:     orders,
		reports:    reports,
		access:     accessSvc,
		users:      users,
		store:      store,
		metrics:    reg,
	}
}

// Routes builds the HTTP mux. Everything except login, access-request
// submission, permission verification, uploads and the health endpoint
// requires the orders permission.
func (h *Handler) Routes() *http.ServeMux {
	// Numbers in JSON stay numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true

	mux := http.NewServeMux()

	// Public surface.
	mux.HandleFunc("POST /login", h.handleLogin)
	mux.HandleFunc("GET /verify-permission", h.handleVerifyPermission)
	mux.HandleFunc("POST /access-requests", h.handleSubmitAccessRequest)
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(h.store.Dir()))))

	// Catalog.
	mux.HandleFunc("GET /categories", h.gated(h.handleListCategories))
	mux.HandleFunc("POST /categories", h.gated(h.handleCreateCategory))
	mux.HandleFunc("DELETE /categories", h.gated(h.handleDeleteCategory))

	mux.HandleFunc("GET /items", h.gated(h.handleListItems))
	mux.HandleFunc("POST /items", h.gated(h.handleCreateItem))
	mux.HandleFunc("PUT /items", h.gated(h.handleUpdateItem))
	mux.HandleFunc("DELETE /items", h.gated(h.handleDeleteItem))
	mux.HandleFunc("POST /upload-image", h.gated(h.handleUploadImage))

	// Orders and reports.
	mux.HandleFunc("GET /orders", h.gated(h.handleListOrders))
	mux.HandleFunc("POST /orders", h.gated(h.handleCreateOrder))
	mux.HandleFunc("PUT /orders", h.gated(h.handleSetPaymentStatus))
	mux.HandleFunc("PATCH /orders", h.gated(h.handleEditOrder))
	mux.HandleFunc("DELETE /orders", h.gated(h.handleDeleteOrder))
	mux.HandleFunc("GET /reports", h.gated(h.handleReport))

	// Administration.
	mux.HandleFunc("GET /access-requests", h.gated(h.handleListAccessRequests))
	mux.HandleFunc("POST /approve-request", h.gated(h.handleReviewAccessRequest))
	mux.HandleFunc("GET /users", h.gated(h.handleListUsers))
	mux.HandleFunc("POST /users", h.gated(h.handleCreateUser))
	mux.HandleFunc("PUT /users", h.gated(h.handleUpdateUser))

	return mux
}

// gated wraps a handler with the live permission check: a valid token whose
// account lost orders_permission is refused here, not just at login.
func (h *Handler) gated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.ExtractAccessToken(r)
		if token == "" {
			writeError(w, r, apperr.New(apperr.Auth, "authentication required"))
			return
		}
		if _, err := h.users.VerifyPermission(r.Context(), token); err != nil {
			writeError(w, r, err)
			return
		}
		next(w, r)
	}
}
