// Package httptransport implements the HTTP surface of the checkout
// service.
package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/storefront/checkout/internal/catalog"
	"github.com/storefront/checkout/internal/middleware"
	"github.com/storefront/checkout/internal/model"
)

type checkoutService interface {
	CreateOrder(ctx context.Context, productID int64) (model.CreateOrderResponse, error)
	CaptureOrder(ctx context.Context, externalOrderID string) (model.CaptureOrderResponse, error)
}

type productCatalog interface {
	All() []catalog.Product
}

type orderLister interface {
	List(ctx context.Context) ([]*model.Order, error)
}

// Handler routes HTTP requests to the checkout service.
type Handler struct {
	checkout       checkoutService
	catalog        productCatalog
	orders         orderLister
	log            *slog.Logger
	requestTimeout time.Duration
}

// New returns a Handler configured with the given collaborators and
// per-request timeout.
//
// It panics if checkout, catalog, or orders is nil. If requestTimeout
// is non-positive, a default timeout is applied.
func New(checkout checkoutService, cat productCatalog, orders orderLister, log *slog.Logger, requestTimeout time.Duration) *Handler {
	if checkout == nil || cat == nil || orders == nil {
		panic("httptransport.New: nil dependency")
	}
	if log == nil {
		log = slog.Default()
	}
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	return &Handler{
		checkout:       checkout,
		catalog:        cat,
		orders:         orders,
		log:            log,
		requestTimeout: requestTimeout,
	}
}

// Routes builds the chi router with the API surface consumed by the
// storefront frontend.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logging(h.log))
	r.Use(chimw.Recoverer)

	r.Get("/health", h.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.handleListProducts)
		r.Get("/orders", h.handleListOrders)
		r.Post("/paypal/create-order", h.handleCreateOrder)
		r.Post("/paypal/capture-order", h.handleCaptureOrder)
	})
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) handleListProducts(w http.ResponseWriter, _ *http.Request) {
	products := h.catalog.All()
	out := make([]model.ProductPayload, 0, len(products))
	for _, p := range products {
		out = append(out, model.ProductPayload{ID: p.ID, Name: p.Name, Price: model.Money{Decimal: p.Price}})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	orders, err := h.orders.List(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]model.OrderPayload, 0, len(orders))
	for _, o := range orders {
		out = append(out, model.OrderPayload{
			ID:              o.ID,
			ExternalOrderID: o.ExternalOrderID,
			ProductName:     o.ProductName,
			Amount:          model.Money{Decimal: o.Amount},
			CurrencyCode:    o.CurrencyCode,
			Status:          o.Status,
			CreatedAt:       o.CreatedAt,
			UpdatedAt:       o.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req model.CreateOrderRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorPayload{Message: "invalid JSON"})
		return
	}
	if req.ProductID == 0 {
		writeJSON(w, http.StatusBadRequest, model.ErrorPayload{Message: "productId is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	resp, err := h.checkout.CreateOrder(ctx, req.ProductID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCaptureOrder(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("orderId")

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	resp, err := h.checkout.CaptureOrder(ctx, orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeJSON writes v as a JSON response with the given status code.
// The Content-Type is set to application/json.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
