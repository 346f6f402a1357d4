package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/transbarber/storefront/internal/models"
)

type OrderService interface {
	ListUserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	GetOrder(ctx context.Context, callerID, orderID uuid.UUID, admin bool) (*models.Order, error)
	ListAllOrders(ctx context.Context) ([]models.Order, error)
	ShipOrder(ctx context.Context, orderID uuid.UUID, trackingCode string) error
	MarkDelivered(ctx context.Context, orderID uuid.UUID) error
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
}

// OrderHandler represents HTTP handler for order requests
type OrderHandler struct {
	svc   OrderService
	roles RoleChecker
}

// NewOrderHandler creates new OrderHandler instance
func NewOrderHandler(svc OrderService, roles RoleChecker) *OrderHandler {
	return &OrderHandler{svc: svc, roles: roles}
}

type orderItemResponse struct {
	ProductID       string  `json:"product_id"`
	ProductName     string  `json:"product_name"`
	Quantity        int32   `json:"quantity"`
	PriceAtPurchase float64 `json:"price_at_purchase"`
}

type orderResponse struct {
	ID             string              `json:"id"`
	UserID         string              `json:"user_id,omitempty"`
	TotalAmount    float64             `json:"total_amount"`
	ShippingCost   float64             `json:"shipping_cost"`
	PaymentMethod  string              `json:"payment_method"`
	Status         string              `json:"status"`
	ShippingStatus string              `json:"shipping_status"`
	TrackingCode   *string             `json:"tracking_code,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	Items          []orderItemResponse `json:"items"`
}

func toOrderResponse(o *models.Order, includeUser bool) orderResponse {
	resp := orderResponse{
		ID:             o.ID.String(),
		TotalAmount:    o.TotalAmount,
		ShippingCost:   o.ShippingCost,
		PaymentMethod:  o.PaymentMethod,
		Status:         o.Status,
		ShippingStatus: o.ShippingStatus,
		TrackingCode:   o.TrackingCode,
		CreatedAt:      o.CreatedAt,
		Items:          []orderItemResponse{},
	}
	if includeUser {
		resp.UserID = o.UserID.String()
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ProductID:       item.ProductID.String(),
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
		})
	}
	return resp
}

// ListOrders returns caller orders, newest first
// 200 — list returned;
// 401 — not authenticated;
// 500 — internal server error.
func (oh *OrderHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orders, err := oh.svc.ListUserOrders(r.Context(), payload.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp := make([]orderResponse, 0, len(orders))
		for i := range orders {
			resp = append(resp, toOrderResponse(&orders[i], false))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(resp); err != nil {
			return
		}
	}
}

// GetOrder returns one order. Customers see only their own orders,
// admins see any.
// 200 — order returned;
// 400 — malformed order id;
// 401 — not authenticated;
// 403 — order belongs to another user;
// 404 — order not found;
// 500 — internal server error.
func (oh *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		// a token role claim is good for 24h, the store is the authority
		admin := false
		if payload.Role == models.RoleAdmin {
			admin, err = oh.roles.IsAdmin(r.Context(), payload.UserID)
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
		}

		order, err := oh.svc.GetOrder(r.Context(), payload.UserID, orderID, admin)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(toOrderResponse(order, admin)); err != nil {
			return
		}
	}
}

// ListAllOrders returns every order in the store, newest first. Admin only.
// 200 — list returned;
// 500 — internal server error.
func (oh *OrderHandler) ListAllOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := oh.svc.ListAllOrders(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp := make([]orderResponse, 0, len(orders))
		for i := range orders {
			resp = append(resp, toOrderResponse(&orders[i], true))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(resp); err != nil {
			return
		}
	}
}

type shipOrderRequest struct {
	TrackingCode string `json:"tracking_code"`
}

// ShipOrder marks order as shipped and notifies the customer. Admin only.
// 200 — order marked shipped;
// 400 — malformed request or order not confirmed;
// 404 — order not found;
// 500 — internal server error.
func (oh *OrderHandler) ShipOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		var req shipOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if err := oh.svc.ShipOrder(r.Context(), orderID, req.TrackingCode); err != nil {
			switch {
			case errors.Is(err, models.ErrValidation):
				http.Error(w, "order is not confirmed", http.StatusBadRequest)
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

// MarkDelivered marks shipped order as delivered. Admin only.
// 200 — order marked delivered;
// 400 — malformed order id or order not shipped;
// 404 — order not found;
// 500 — internal server error.
func (oh *OrderHandler) MarkDelivered() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		if err := oh.svc.MarkDelivered(r.Context(), orderID); err != nil {
			switch {
			case errors.Is(err, models.ErrValidation):
				http.Error(w, "order is not shipped", http.StatusBadRequest)
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

// DeleteOrder removes order and its items. Admin only.
// 204 — order removed;
// 400 — malformed order id;
// 404 — order not found;
// 500 — internal server error.
func (oh *OrderHandler) DeleteOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		if err := oh.svc.DeleteOrder(r.Context(), orderID); err != nil {
			switch {
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
