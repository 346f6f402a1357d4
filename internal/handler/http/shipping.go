package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/transbarber/storefront/internal/models"
)

type ShippingQuoteService interface {
	Quote(ctx context.Context, cep string, declaredValue float64) (*models.ShippingQuote, error)
}

// ShippingHandler represents HTTP handler for shipping quote requests
type ShippingHandler struct {
	svc ShippingQuoteService
}

// NewShippingHandler creates new ShippingHandler instance
func NewShippingHandler(svc ShippingQuoteService) *ShippingHandler {
	return &ShippingHandler{svc: svc}
}

type shippingQuoteResponse struct {
	Cost        float64 `json:"cost"`
	Days        int     `json:"days"`
	ServiceName string  `json:"service_name"`
	Fallback    bool    `json:"fallback"`
}

// Quote returns shipping cost and delivery estimate for destination CEP
// 200 — quote returned (carrier or fallback table);
// 400 — malformed CEP;
// 500 — internal server error.
func (sh *ShippingHandler) Quote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cep := r.URL.Query().Get("cep")
		declaredValue := 0.0
		if v := r.URL.Query().Get("value"); v != "" {
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil || parsed < 0 {
				http.Error(w, "bad request", http.StatusBadRequest)
				return
			}
			declaredValue = parsed
		}

		quote, err := sh.svc.Quote(r.Context(), cep, declaredValue)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrInvalidPostalCode):
				http.Error(w, "invalid cep", http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		resp := shippingQuoteResponse{
			Cost:        quote.Cost,
			Days:        quote.Days,
			ServiceName: quote.ServiceName,
			Fallback:    quote.Fallback,
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			return
		}
	}
}
