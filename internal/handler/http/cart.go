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

type CartService interface {
	// GetCart returns user cart items with product data
	GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	// AddItem adds product quantity to user cart
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int32) (*models.CartItem, error)
	// UpdateQuantity sets quantity of cart item
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int32) error
	// RemoveItem deletes cart item
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error
}

// CartHandler represents HTTP handler for cart requests
type CartHandler struct {
	svc CartService
}

// NewCartHandler creates new CartHandler instance
func NewCartHandler(svc CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

type cartItemResponse struct {
	ID        string           `json:"id"`
	ProductID string           `json:"product_id"`
	Quantity  int32            `json:"quantity"`
	Product   *productResponse `json:"product,omitempty"`
}

type cartResponse struct {
	Items    []cartItemResponse `json:"items"`
	Subtotal float64            `json:"subtotal"`
}

// GetCart returns caller cart
// 200 — cart returned;
// 401 — not authenticated;
// 500 — internal server error.
func (ch *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := ch.svc.GetCart(r.Context(), payload.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp := cartResponse{Items: []cartItemResponse{}}
		subtotal := 0.0
		for i := range items {
			item := cartItemResponse{
				ID:        items[i].ID.String(),
				ProductID: items[i].ProductID.String(),
				Quantity:  items[i].Quantity,
			}
			if items[i].Product != nil {
				pr := toProductResponse(items[i].Product)
				item.Product = &pr
				subtotal += items[i].Product.Price * float64(items[i].Quantity)
			}
			resp.Items = append(resp.Items, item)
		}
		resp.Subtotal = subtotal

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(resp); err != nil {
			return
		}
	}
}

type addCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

// AddItem adds product to caller cart
// 200 — item added;
// 400 — malformed request or quantity;
// 401 — not authenticated;
// 404 — product not found;
// 500 — internal server error.
func (ch *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req addCartItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		productID, err := uuid.Parse(req.ProductID)
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		item, err := ch.svc.AddItem(r.Context(), payload.UserID, productID, req.Quantity)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrValidation):
				http.Error(w, "invalid quantity", http.StatusBadRequest)
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "product not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		resp := cartItemResponse{
			ID:        item.ID.String(),
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			return
		}
	}
}

type updateCartItemRequest struct {
	Quantity int32 `json:"quantity"`
}

// UpdateItem sets quantity of caller cart item
// 200 — quantity updated;
// 400 — malformed request or quantity;
// 401 — not authenticated;
// 404 — item not found;
// 500 — internal server error.
func (ch *CartHandler) UpdateItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		itemID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		var req updateCartItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if err := ch.svc.UpdateQuantity(r.Context(), payload.UserID, itemID, req.Quantity); err != nil {
			switch {
			case errors.Is(err, models.ErrValidation):
				http.Error(w, "invalid quantity", http.StatusBadRequest)
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "cart item not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

// RemoveItem deletes caller cart item
// 204 — item removed;
// 401 — not authenticated;
// 404 — item not found;
// 500 — internal server error.
func (ch *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		itemID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		if err := ch.svc.RemoveItem(r.Context(), payload.UserID, itemID); err != nil {
			switch {
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "cart item not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
