package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/SantiagoTucci/circulo-matero/internal/checkout"
	"github.com/SantiagoTucci/circulo-matero/internal/domain"
)

// Checkout submits the order held by a session's cart.
type Checkout interface {
	Submit(ctx context.Context, session string, c checkout.Cart, contact domain.Contact) (*domain.Order, error)
}

type CheckoutHandler struct {
	carts    Carts
	checkout Checkout
	timeout  time.Duration
}

func NewCheckoutHandler(carts Carts, c Checkout, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		carts:    carts,
		checkout: c,
		timeout:  timeout,
	}
}

type CheckoutRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type OrderResponse struct {
	Reference      string    `json:"reference"`
	Status         string    `json:"status"`
	Items          []string  `json:"items"`
	Total          string    `json:"total"`
	TotalFormatted string    `json:"total_formatted"`
	Savings        string    `json:"savings"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

func toOrderResponse(o *domain.Order) OrderResponse {
	items := make([]string, 0, len(o.Lines))
	for _, l := range o.Lines {
		items = append(items, l.Summary())
	}

	return OrderResponse{
		Reference:      o.Reference,
		Status:         "SUBMITTED",
		Items:          items,
		Total:          o.Total.StringFixed(2),
		TotalFormatted: domain.FormatPrice(o.Total),
		Savings:        o.Savings.StringFixed(2),
		SubmittedAt:    o.SubmittedAt,
	}
}

// Submit handles POST /api/v1/checkout
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	store, ok := openCart(w, r, h.carts)
	if !ok {
		return
	}
	session := getSessionID(r.Context())

	order, err := h.checkout.Submit(ctx, session, store, domain.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		h.handleError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *CheckoutHandler) handleError(ctx context.Context, w http.ResponseWriter, err error) {
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "Revisa los datos del formulario",
			Code:   "validation_failed",
			Fields: verr.Fields,
		})
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", "El carrito está vacío")
	case errors.Is(err, checkout.ErrSubmissionInProgress):
		respondError(w, http.StatusConflict, "submission_in_progress", "Ya estamos enviando tu pedido")
	case errors.Is(err, checkout.ErrSubmissionFailed):
		respondError(w, http.StatusBadGateway, "submission_failed", "Error al enviar el pedido. Intenta nuevamente.")
	default:
		slog.ErrorContext(ctx, "checkout failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to submit order")
	}
}
