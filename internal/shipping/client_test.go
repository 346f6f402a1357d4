package shipping

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transbarber/storefront/internal/models"
)

func TestClient_QuotePicksCheapestOption(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "01310100", r.URL.Query().Get("zip_code"))
		assert.Equal(t, "177.90", r.URL.Query().Get("item_price"))
		assert.Equal(t, defaultDimensions, r.URL.Query().Get("dimensions"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"name":"SEDEX","list_cost":31.40,"estimated_delivery_time":{"shipping":1}},
			{"name":"PAC","list_cost":18.20,"estimated_delivery_time":{"shipping":4}}
		]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")

	quote, err := client.Quote(context.Background(), "01310100", 177.90)
	require.NoError(t, err)
	assert.Equal(t, 18.20, quote.Cost)
	assert.Equal(t, 4, quote.Days)
	assert.Equal(t, "PAC", quote.ServiceName)
}

func TestClient_QuoteWrappedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"options":[{"display":"Mercado Envios","cost":21.50,"estimated_delivery_time":{"shipping":3}}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")

	quote, err := client.Quote(context.Background(), "13015000", 45.00)
	require.NoError(t, err)
	assert.Equal(t, 21.50, quote.Cost)
	assert.Equal(t, 3, quote.Days)
	assert.Equal(t, "Mercado Envios", quote.ServiceName)
}

func TestClient_QuoteNoOptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")

	_, err := client.Quote(context.Background(), "01310100", 45.00)
	assert.ErrorIs(t, err, models.ErrNoShippingOptions)
}

func TestClient_QuoteUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")

	_, err := client.Quote(context.Background(), "01310100", 45.00)
	assert.ErrorIs(t, err, models.ErrUpstreamFailure)
}
