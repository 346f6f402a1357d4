package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transbarber/storefront/internal/models"
	"github.com/transbarber/storefront/internal/service/mocks"
)

func TestNormalizeCEP(t *testing.T) {
	tests := []struct {
		name    string
		cep     string
		want    string
		wantErr error
	}{
		{name: "bare_digits", cep: "01310100", want: "01310100"},
		{name: "formatted", cep: "01310-100", want: "01310100"},
		{name: "with_spaces", cep: " 01310 100 ", want: "01310100"},
		{name: "too_short", cep: "0131010", wantErr: models.ErrInvalidPostalCode},
		{name: "too_long", cep: "013101000", wantErr: models.ErrInvalidPostalCode},
		{name: "empty", cep: "", wantErr: models.ErrInvalidPostalCode},
		{name: "letters_only", cep: "abcdefgh", wantErr: models.ErrInvalidPostalCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeCEP(tt.cep)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShippingService_QuoteUsesCarrier(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockRateClient(ctrl)
	client.EXPECT().Quote(gomock.Any(), "01310100", 165.0).
		Return(&models.ShippingQuote{Cost: 19.90, Days: 3, ServiceName: "Expresso"}, nil).Times(1)

	svc := NewShippingService(client)

	quote, err := svc.Quote(context.Background(), "01310-100", 165.0)
	require.NoError(t, err)
	assert.Equal(t, 19.90, quote.Cost)
	assert.Equal(t, 3, quote.Days)
	assert.False(t, quote.Fallback)
}

func TestShippingService_QuoteFallsBackOnCarrierError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockRateClient(ctrl)
	client.EXPECT().Quote(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("carrier timeout")).Times(1)

	svc := NewShippingService(client)

	quote, err := svc.Quote(context.Background(), "01310-100", 50.0)
	require.NoError(t, err)
	assert.True(t, quote.Fallback)
	assert.Equal(t, 12.90, quote.Cost)
	assert.Equal(t, 2, quote.Days)
}

func TestShippingService_QuoteRejectsMalformedCEP(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockRateClient(ctrl)
	client.EXPECT().Quote(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	svc := NewShippingService(client)

	_, err := svc.Quote(context.Background(), "123", 50.0)
	assert.ErrorIs(t, err, models.ErrInvalidPostalCode)
}
