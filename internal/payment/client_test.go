package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transbarber/storefront/internal/models"
)

func TestClient_GetPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		switch r.URL.Path {
		case "/v1/payments/12345":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":12345,"status":"approved","external_reference":"order-1","transaction_amount":177.90}`))
		case "/v1/payments/404404":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-token")

	p, err := client.GetPayment(context.Background(), "12345")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), p.ID)
	assert.Equal(t, StatusApproved, p.Status)
	assert.Equal(t, "order-1", p.ExternalReference)
	assert.Equal(t, 177.90, p.TransactionAmount)

	_, err = client.GetPayment(context.Background(), "404404")
	assert.ErrorIs(t, err, models.ErrDataNotFound)

	_, err = client.GetPayment(context.Background(), "boom")
	assert.ErrorIs(t, err, models.ErrUpstreamFailure)
}

func TestClient_SearchPaymentsByReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments/search", r.URL.Path)
		assert.Equal(t, "order-1", r.URL.Query().Get("external_reference"))
		assert.Equal(t, "date_created", r.URL.Query().Get("sort"))
		assert.Equal(t, "desc", r.URL.Query().Get("criteria"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"id":2,"status":"approved"},{"id":1,"status":"rejected"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-token")

	payments, err := client.SearchPaymentsByReference(context.Background(), "order-1")
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, int64(2), payments[0].ID)
	assert.Equal(t, StatusApproved, payments[0].Status)
}

func TestClient_CreatePreference(t *testing.T) {
	var got preferenceRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/checkout/preferences", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		err := json.NewDecoder(r.Body).Decode(&got)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"pref-1","init_point":"https://pay.example/pref-1"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-token")

	items := []PreferenceItem{
		{Title: "Clipper", Quantity: 1, UnitPrice: 120.00, CurrencyID: "BRL"},
	}
	pref, err := client.CreatePreference(context.Background(), "order-1", items,
		"buyer@example.com", models.PaymentMethodPix, "https://shop.example", "https://shop.example/api/webhooks/payment")
	require.NoError(t, err)
	assert.Equal(t, "pref-1", pref.ID)
	assert.Equal(t, "https://pay.example/pref-1", pref.InitPoint)

	assert.Equal(t, "order-1", got.ExternalReference)
	assert.Equal(t, "buyer@example.com", got.Payer.Email)
	assert.Equal(t, "approved", got.AutoReturn)
	assert.Contains(t, got.BackURLs.Success, "payment_status=approved")
	assert.Contains(t, got.BackURLs.Success, "order_id=order-1")
	assert.Equal(t, "https://shop.example/api/webhooks/payment", got.NotificationURL)

	// pix preference must shut out every card and ticket instrument
	excluded := make([]string, 0, len(got.PaymentMethods.ExcludedPaymentTypes))
	for _, e := range got.PaymentMethods.ExcludedPaymentTypes {
		excluded = append(excluded, e.ID)
	}
	assert.ElementsMatch(t, []string{"credit_card", "debit_card", "ticket", "atm", "prepaid_card"}, excluded)
	assert.Equal(t, 0, got.PaymentMethods.Installments)
}

func TestClient_CreatePreferenceInstallments(t *testing.T) {
	tests := []struct {
		name   string
		method string
		want   int
	}{
		{name: "single installment", method: models.PaymentMethodCredit1x, want: 1},
		{name: "twelve installments", method: models.PaymentMethodCredit12, want: 12},
		{name: "debit has none", method: models.PaymentMethodDebit, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, installmentsForMethod(tt.method))
		})
	}
}

func TestClient_CreatePreferenceUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-token")

	_, err := client.CreatePreference(context.Background(), "order-1", nil,
		"buyer@example.com", models.PaymentMethodPix, "https://shop.example", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrUpstreamFailure))
}
