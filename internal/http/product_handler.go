package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/SantiagoTucci/circulo-matero/internal/catalog"
	"github.com/SantiagoTucci/circulo-matero/internal/domain"
)

// Catalog is the read side of the product catalog.
type Catalog interface {
	List(ctx context.Context, category string) ([]domain.Product, error)
	Get(ctx context.Context, id string) (domain.Product, error)
}

type ProductHandler struct {
	catalog Catalog
	timeout time.Duration
}

func NewProductHandler(c Catalog, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: c,
		timeout: timeout,
	}
}

type ProductDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Price          string `json:"price"`
	PriceFormatted string `json:"price_formatted"`
	Category       string `json:"category"`
	ImageURL       string `json:"image_url,omitempty"`
}

type ListProductsResponse struct {
	Products []ProductDTO `json:"products"`
	Total    int          `json:"total"`
}

func toProductDTO(p domain.Product) ProductDTO {
	return ProductDTO{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price.StringFixed(2),
		PriceFormatted: domain.FormatPrice(p.Price),
		Category:       p.Category,
		ImageURL:       p.ImageURL,
	}
}

// ListProducts handles GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.List(ctx, r.URL.Query().Get("category"))
	if err != nil {
		slog.ErrorContext(ctx, "failed to list products", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to list products")
		return
	}

	dtos := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, toProductDTO(p))
	}

	respondJSON(w, http.StatusOK, ListProductsResponse{
		Products: dtos,
		Total:    len(dtos),
	})
}

// GetProduct handles GET /api/v1/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, err := h.catalog.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "Product not found")
			return
		}
		slog.ErrorContext(ctx, "failed to get product", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to get product")
		return
	}

	respondJSON(w, http.StatusOK, toProductDTO(product))
}
