package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/transbarber/storefront/internal/models"
	"github.com/transbarber/storefront/internal/service"
)

type CheckoutService interface {
	Checkout(ctx context.Context, userID uuid.UUID, paymentMethod, cep string) (*service.CheckoutResult, error)
	ConfirmReturn(ctx context.Context, userID, orderID uuid.UUID, redirectStatus string) (string, error)
}

// CheckoutHandler represents HTTP handler for checkout requests
type CheckoutHandler struct {
	svc CheckoutService
}

// NewCheckoutHandler creates new CheckoutHandler instance
func NewCheckoutHandler(svc CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

type checkoutRequest struct {
	PaymentMethod string `json:"payment_method"`
	CEP           string `json:"cep"`
}

type checkoutResponse struct {
	OrderID     string  `json:"order_id"`
	Total       float64 `json:"total"`
	RedirectURL string  `json:"redirect_url"`
}

// Checkout creates pending order from caller cart and returns payment redirect
// 201 — order created, redirect URL returned;
// 400 — malformed request, unknown payment method or invalid CEP;
// 401 — not authenticated;
// 409 — cart is empty;
// 502 — payment provider unavailable;
// 500 — internal server error.
func (ch *CheckoutHandler) Checkout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req checkoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		result, err := ch.svc.Checkout(r.Context(), payload.UserID, req.PaymentMethod, req.CEP)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrInvalidPostalCode):
				http.Error(w, "bad request", http.StatusBadRequest)
			case errors.Is(err, models.ErrEmptyCart):
				http.Error(w, "cart is empty", http.StatusConflict)
			case errors.Is(err, models.ErrUpstreamFailure):
				http.Error(w, "payment provider unavailable", http.StatusBadGateway)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)

		resp := checkoutResponse{
			OrderID:     result.Order.ID.String(),
			Total:       result.Order.TotalAmount,
			RedirectURL: result.RedirectURL,
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			return
		}
	}
}

type confirmReturnRequest struct {
	OrderID       string `json:"order_id"`
	PaymentStatus string `json:"payment_status"`
}

type confirmReturnResponse struct {
	OrderID string `json:"order_id"`
	Action  string `json:"action"`
}

// ConfirmReturn reconciles order state from the browser redirect after payment.
// The webhook stays the source of truth; this is a best-effort accelerator.
// 200 — reconciliation applied (possibly a no-op);
// 400 — malformed request;
// 401 — not authenticated;
// 403 — order belongs to another user;
// 404 — order not found;
// 500 — internal server error.
func (ch *CheckoutHandler) ConfirmReturn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req confirmReturnRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		orderID, err := uuid.Parse(req.OrderID)
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		action, err := ch.svc.ConfirmReturn(r.Context(), payload.UserID, orderID, req.PaymentStatus)
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

		resp := confirmReturnResponse{OrderID: orderID.String(), Action: action}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			return
		}
	}
}
