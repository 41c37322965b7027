package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/SantiagoTucci/circulo-matero/internal/cart"
	"github.com/SantiagoTucci/circulo-matero/internal/catalog"
	"github.com/SantiagoTucci/circulo-matero/internal/domain"
)

const maxQuantity = 99

// Carts hands out the live cart of a browser session.
type Carts interface {
	Get(ctx context.Context, sessionID string) (*cart.Store, error)
}

type CartHandler struct {
	carts   Carts
	catalog Catalog
	timeout time.Duration
}

func NewCartHandler(carts Carts, c Catalog, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		catalog: c,
		timeout: timeout,
	}
}

type CartLineDTO struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPrice      string `json:"unit_price"`
	EffectivePrice string `json:"effective_price"`
	LineTotal      string `json:"line_total"`
	Wholesale      bool   `json:"wholesale"`
}

type CartResponse struct {
	Lines          []CartLineDTO `json:"lines"`
	IsOpen         bool          `json:"is_open"`
	ItemCount      int           `json:"item_count"`
	Total          string        `json:"total"`
	TotalFormatted string        `json:"total_formatted"`
	Savings        string        `json:"savings"`
	LastModified   time.Time     `json:"last_modified"`
}

type AddItemRequest struct {
	ProductID string `json:"product_id"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type SetOpenRequest struct {
	Open bool `json:"open"`
}

func toCartResponse(state domain.CartState) CartResponse {
	lines := make([]CartLineDTO, 0, len(state.Lines))
	for _, l := range state.Lines {
		lines = append(lines, CartLineDTO{
			ProductID:      l.ProductID,
			Name:           l.Name,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice.StringFixed(2),
			EffectivePrice: l.EffectiveUnitPrice().StringFixed(2),
			LineTotal:      l.Total().StringFixed(2),
			Wholesale:      l.IsWholesale(),
		})
	}

	total := state.Total()
	return CartResponse{
		Lines:          lines,
		IsOpen:         state.IsOpen,
		ItemCount:      state.ItemCount(),
		Total:          total.StringFixed(2),
		TotalFormatted: domain.FormatPrice(total),
		Savings:        state.Savings().StringFixed(2),
		LastModified:   state.LastModified,
	}
}

// openCart resolves the session's cart, answering 503 when its saved copy
// cannot be read.
func openCart(w http.ResponseWriter, r *http.Request, carts Carts) (*cart.Store, bool) {
	store, err := carts.Get(r.Context(), getSessionID(r.Context()))
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to open cart", "error", err)
		respondError(w, http.StatusServiceUnavailable, "cart_unavailable", "Cart is temporarily unavailable, please retry")
		return nil, false
	}
	return store, true
}

func (h *CartHandler) store(w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	return openCart(w, r, h.carts)
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(store.Snapshot()))
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "product_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, err := h.catalog.Get(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "Product not found")
			return
		}
		slog.ErrorContext(ctx, "failed to get product", "product_id", req.ProductID, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to add item")
		return
	}

	store, ok := h.store(w, r)
	if !ok {
		return
	}
	store.AddItem(product)
	respondJSON(w, http.StatusOK, toCartResponse(store.Snapshot()))
}

// UpdateQuantity handles PUT /api/v1/cart/items/{product_id}. A quantity of
// zero removes the line.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if req.Quantity < 0 || req.Quantity > maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_request", "quantity must be between 0 and 99")
		return
	}

	store, ok := h.store(w, r)
	if !ok {
		return
	}
	store.SetQuantity(chi.URLParam(r, "product_id"), req.Quantity)
	respondJSON(w, http.StatusOK, toCartResponse(store.Snapshot()))
}

// RemoveItem handles DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	store.RemoveItem(chi.URLParam(r, "product_id"))
	respondJSON(w, http.StatusOK, toCartResponse(store.Snapshot()))
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	store.Clear()
	respondJSON(w, http.StatusOK, toCartResponse(store.Snapshot()))
}

// ToggleOpen handles POST /api/v1/cart/toggle
func (h *CartHandler) ToggleOpen(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	store.ToggleOpen()
	respondJSON(w, http.StatusOK, toCartResponse(store.Snapshot()))
}

// SetOpen handles PUT /api/v1/cart/open
func (h *CartHandler) SetOpen(w http.ResponseWriter, r *http.Request) {
	var req SetOpenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	store, ok := h.store(w, r)
	if !ok {
		return
	}
	store.SetOpen(req.Open)
	respondJSON(w, http.StatusOK, toCartResponse(store.Snapshot()))
}
