package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transbarber/storefront/internal/handler/http/mocks"
	"github.com/transbarber/storefront/internal/models"
	"github.com/transbarber/storefront/internal/service"
)

func TestCheckoutHandler_Checkout(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	tests := []struct {
		name           string
		token          *models.TokenPayload
		body           string
		setup          func(t *testing.T) *mocks.MockCheckoutService
		wantStatusCode int
	}{
		{
			// 201 — order created and redirect URL returned
			name:  "valid_request_return_201",
			token: &models.TokenPayload{UserID: userID},
			body:  `{"payment_method":"pix","cep":"01310-100"}`,
			setup: func(t *testing.T) *mocks.MockCheckoutService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockCheckoutService(ctrl)
				svcMock.EXPECT().Checkout(gomock.Any(), userID, "pix", "01310-100").
					Return(&service.CheckoutResult{
						Order:       &models.Order{ID: orderID, TotalAmount: 177.90},
						RedirectURL: "https://pay.example/redirect",
					}, nil).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			// 400 — unknown payment method
			name:  "unknown_payment_method_return_400",
			token: &models.TokenPayload{UserID: userID},
			body:  `{"payment_method":"boleto","cep":"01310-100"}`,
			setup: func(t *testing.T) *mocks.MockCheckoutService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockCheckoutService(ctrl)
				svcMock.EXPECT().Checkout(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, models.ErrValidation).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			// 409 — empty cart
			name:  "empty_cart_return_409",
			token: &models.TokenPayload{UserID: userID},
			body:  `{"payment_method":"pix","cep":"01310-100"}`,
			setup: func(t *testing.T) *mocks.MockCheckoutService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockCheckoutService(ctrl)
				svcMock.EXPECT().Checkout(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, models.ErrEmptyCart).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusConflict,
		},
		{
			// 502 — payment provider down
			name:  "provider_unavailable_return_502",
			token: &models.TokenPayload{UserID: userID},
			body:  `{"payment_method":"pix","cep":"01310-100"}`,
			setup: func(t *testing.T) *mocks.MockCheckoutService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockCheckoutService(ctrl)
				svcMock.EXPECT().Checkout(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, models.ErrUpstreamFailure).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusBadGateway,
		},
		{
			// 401 — not authenticated
			name: "unauthorized_request_return_401",
			body: `{"payment_method":"pix","cep":"01310-100"}`,
			setup: func(t *testing.T) *mocks.MockCheckoutService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockCheckoutService(ctrl)
				svcMock.EXPECT().Checkout(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			ctx := context.WithValue(req.Context(), authPayloadKey, tt.token)

			handler := NewCheckoutHandler(tt.setup(t))
			handler.Checkout()(w, req.WithContext(ctx))

			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)

			if tt.wantStatusCode == http.StatusCreated {
				var resp checkoutResponse
				require.NoError(t, json.NewDecoder(res.Body).Decode(&resp))
				assert.Equal(t, orderID.String(), resp.OrderID)
				assert.Equal(t, 177.90, resp.Total)
				assert.Equal(t, "https://pay.example/redirect", resp.RedirectURL)
			}
		})
	}
}

func TestCheckoutHandler_ConfirmReturn(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	tests := []struct {
		name           string
		token          *models.TokenPayload
		body           string
		setup          func(t *testing.T) *mocks.MockCheckoutService
		wantStatusCode int
		wantAction     string
	}{
		{
			// 200 — redirect settles the order ahead of the webhook
			name:  "approved_redirect_return_200",
			token: &models.TokenPayload{UserID: userID},
			body:  `{"order_id":"` + orderID.String() + `","payment_status":"approved"}`,
			setup: func(t *testing.T) *mocks.MockCheckoutService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockCheckoutService(ctrl)
				svcMock.EXPECT().ConfirmReturn(gomock.Any(), userID, orderID, "approved").
					Return(service.ActionConfirmed, nil).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusOK,
			wantAction:     service.ActionConfirmed,
		},
		{
			// 200 — webhook already won, redirect is a safe no-op
			name:  "already_confirmed_return_200",
			token: &models.TokenPayload{UserID: userID},
			body:  `{"order_id":"` + orderID.String() + `","payment_status":"approved"}`,
			setup: func(t *testing.T) *mocks.MockCheckoutService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockCheckoutService(ctrl)
				svcMock.EXPECT().ConfirmReturn(gomock.Any(), userID, orderID, "approved").
					Return(service.ActionAlreadyConfirmed, nil).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusOK,
			wantAction:     service.ActionAlreadyConfirmed,
		},
		{
			// 403 — order belongs to another account
			name:  "foreign_order_return_403",
			token: &models.TokenPayload{UserID: userID},
			body:  `{"order_id":"` + orderID.String() + `","payment_status":"approved"}`,
			setup: func(t *testing.T) *mocks.MockCheckoutService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockCheckoutService(ctrl)
				svcMock.EXPECT().ConfirmReturn(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return("", models.ErrForbidden).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusForbidden,
		},
		{
			// 404 — order not found
			name:  "unknown_order_return_404",
			token: &models.TokenPayload{UserID: userID},
			body:  `{"order_id":"` + orderID.String() + `","payment_status":"approved"}`,
			setup: func(t *testing.T) *mocks.MockCheckoutService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockCheckoutService(ctrl)
				svcMock.EXPECT().ConfirmReturn(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return("", models.ErrDataNotFound).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			// 400 — malformed order id
			name:  "malformed_order_id_return_400",
			token: &models.TokenPayload{UserID: userID},
			body:  `{"order_id":"not-a-uuid","payment_status":"approved"}`,
			setup: func(t *testing.T) *mocks.MockCheckoutService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockCheckoutService(ctrl)
				svcMock.EXPECT().ConfirmReturn(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/checkout/return", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			ctx := context.WithValue(req.Context(), authPayloadKey, tt.token)

			handler := NewCheckoutHandler(tt.setup(t))
			handler.ConfirmReturn()(w, req.WithContext(ctx))

			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)

			if tt.wantStatusCode == http.StatusOK {
				var resp confirmReturnResponse
				require.NoError(t, json.NewDecoder(res.Body).Decode(&resp))
				assert.Equal(t, tt.wantAction, resp.Action)
			}
		})
	}
}
