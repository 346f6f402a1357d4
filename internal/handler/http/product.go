package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/transbarber/storefront/internal/models"
)

type ProductService interface {
	// ListProducts returns catalog, optionally filtered by category
	ListProducts(ctx context.Context, category string) ([]models.Product, error)
	// GetProduct returns single product
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	// CreateProduct adds product to catalog
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	// UpdateProduct edits product
	UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	// DeleteProduct removes product
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// ProductHandler represents HTTP handler for catalog requests
type ProductHandler struct {
	svc ProductService
}

// NewProductHandler creates new ProductHandler instance
func NewProductHandler(svc ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

type productResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	Category     string  `json:"category"`
	Stock        int32   `json:"stock"`
	ImageURL     string  `json:"image_url"`
	ShippingCost float64 `json:"shipping_cost"`
}

func toProductResponse(p *models.Product) productResponse {
	return productResponse{
		ID:           p.ID.String(),
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		Category:     p.Category,
		Stock:        p.Stock,
		ImageURL:     p.ImageURL,
		ShippingCost: p.ShippingCost,
	}
}

type productRequest struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	Category     string  `json:"category"`
	Stock        int32   `json:"stock"`
	ImageURL     string  `json:"image_url"`
	ShippingCost float64 `json:"shipping_cost"`
}

// ListProducts returns product catalog
// 200 — list returned;
// 500 — internal server error.
func (ph *ProductHandler) ListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := ph.svc.ListProducts(r.Context(), r.URL.Query().Get("category"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp := make([]productResponse, 0, len(products))
		for i := range products {
			resp = append(resp, toProductResponse(&products[i]))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(resp); err != nil {
			return
		}
	}
}

// GetProduct returns single product
// 200 — product returned;
// 400 — malformed id;
// 404 — product not found;
// 500 — internal server error.
func (ph *ProductHandler) GetProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		product, err := ph.svc.GetProduct(r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "product not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(toProductResponse(product)); err != nil {
			return
		}
	}
}

// CreateProduct adds catalog product, admin only
// 201 — product created;
// 400 — invalid product data;
// 401 — not authenticated; 403 — not admin;
// 500 — internal server error.
func (ph *ProductHandler) CreateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		product := models.Product{
			Name:         req.Name,
			Description:  req.Description,
			Price:        req.Price,
			Category:     req.Category,
			Stock:        req.Stock,
			ImageURL:     req.ImageURL,
			ShippingCost: req.ShippingCost,
		}

		created, err := ph.svc.CreateProduct(r.Context(), &product)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrValidation):
				http.Error(w, "invalid product data", http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)

		if err := json.NewEncoder(w).Encode(toProductResponse(created)); err != nil {
			return
		}
	}
}

// UpdateProduct edits catalog product, admin only
// 200 — product updated;
// 400 — invalid product data;
// 404 — product not found;
// 500 — internal server error.
func (ph *ProductHandler) UpdateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		var req productRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		product := models.Product{
			ID:           id,
			Name:         req.Name,
			Description:  req.Description,
			Price:        req.Price,
			Category:     req.Category,
			Stock:        req.Stock,
			ImageURL:     req.ImageURL,
			ShippingCost: req.ShippingCost,
		}

		updated, err := ph.svc.UpdateProduct(r.Context(), &product)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrValidation):
				http.Error(w, "invalid product data", http.StatusBadRequest)
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "product not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(toProductResponse(updated)); err != nil {
			return
		}
	}
}

// DeleteProduct removes catalog product, admin only
// 204 — product deleted;
// 404 — product not found;
// 500 — internal server error.
func (ph *ProductHandler) DeleteProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		if err := ph.svc.DeleteProduct(r.Context(), id); err != nil {
			switch {
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "product not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
