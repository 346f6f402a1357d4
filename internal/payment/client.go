package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/transbarber/storefront/internal/models"
)

// payment provider statuses
const (
	StatusApproved    = "approved"
	StatusPending     = "pending"
	StatusInProcess   = "in_process"
	StatusAuthorized  = "authorized"
	StatusRejected    = "rejected"
	StatusCancelled   = "cancelled"
	StatusRefunded    = "refunded"
	StatusChargedBack = "charged_back"
)

// Payment is provider-side payment detail. The notification payload itself
// is never trusted, amounts and status come from here.
type Payment struct {
	ID                int64   `json:"id"`
	Status            string  `json:"status"`
	ExternalReference string  `json:"external_reference"`
	TransactionAmount float64 `json:"transaction_amount"`
}

// PreferenceItem is one checkout line
type PreferenceItem struct {
	Title      string  `json:"title"`
	Quantity   int32   `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type preferencePayer struct {
	Email string `json:"email"`
}

type preferenceBackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type excludedPaymentType struct {
	ID string `json:"id"`
}

type preferencePaymentMethods struct {
	ExcludedPaymentTypes []excludedPaymentType `json:"excluded_payment_types"`
	Installments         int                   `json:"installments,omitempty"`
}

type preferenceRequest struct {
	ExternalReference string                   `json:"external_reference"`
	Items             []PreferenceItem         `json:"items"`
	Payer             preferencePayer          `json:"payer"`
	BackURLs          preferenceBackURLs       `json:"back_urls"`
	AutoReturn        string                   `json:"auto_return"`
	BinaryMode        bool                     `json:"binary_mode"`
	NotificationURL   string                   `json:"notification_url,omitempty"`
	PaymentMethods    preferencePaymentMethods `json:"payment_methods"`
}

// Preference is created checkout preference with buyer redirect URLs
type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// instrument types excluded per storefront payment method selector
var excludedTypesByMethod = map[string][]string{
	models.PaymentMethodPix:      {"credit_card", "debit_card", "ticket", "atm", "prepaid_card"},
	models.PaymentMethodDebit:    {"credit_card", "ticket", "atm", "prepaid_card", "pix"},
	models.PaymentMethodCredit1x: {"debit_card", "ticket", "atm", "prepaid_card", "pix"},
	models.PaymentMethodCredit12: {"debit_card", "ticket", "atm", "prepaid_card", "pix"},
}

func installmentsForMethod(method string) int {
	switch method {
	case models.PaymentMethodCredit1x:
		return 1
	case models.PaymentMethodCredit12:
		return 12
	default:
		return 0
	}
}

// Client is payment provider HTTP client
type Client struct {
	client      *http.Client
	baseURL     string
	accessToken string
}

// NewClient creates new payment provider client
func NewClient(baseURL, accessToken string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     baseURL,
		accessToken: accessToken,
	}
}

// GetPayment fetches full payment detail by id
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	reqURL, err := url.JoinPath(c.baseURL, "v1", "payments", paymentID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		payment := Payment{}
		if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
			return nil, err
		}
		return &payment, nil
	case http.StatusNotFound:
		return nil, models.ErrDataNotFound
	default:
		return nil, fmt.Errorf("%w: payment lookup returned %d", models.ErrUpstreamFailure, resp.StatusCode)
	}
}

type searchResponse struct {
	Results []Payment `json:"results"`
}

// SearchPaymentsByReference returns payments created for external reference,
// newest first. Used by the pending payment sweeper.
func (c *Client) SearchPaymentsByReference(ctx context.Context, reference string) ([]Payment, error) {
	reqURL, err := url.JoinPath(c.baseURL, "v1", "payments", "search")
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(reqURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("external_reference", reference)
	q.Set("sort", "date_created")
	q.Set("criteria", "desc")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: payment search returned %d", models.ErrUpstreamFailure, resp.StatusCode)
	}

	search := searchResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, err
	}

	return search.Results, nil
}

// CreatePreference creates checkout preference and returns buyer redirect URLs
func (c *Client) CreatePreference(ctx context.Context, orderID string, items []PreferenceItem, payerEmail, method, frontendURL, notificationURL string) (*Preference, error) {
	excluded := make([]excludedPaymentType, 0, len(excludedTypesByMethod[method]))
	for _, id := range excludedTypesByMethod[method] {
		excluded = append(excluded, excludedPaymentType{ID: id})
	}

	prefReq := preferenceRequest{
		ExternalReference: orderID,
		Items:             items,
		Payer:             preferencePayer{Email: payerEmail},
		BackURLs: preferenceBackURLs{
			Success: fmt.Sprintf("%s/checkout?payment_status=approved&order_id=%s", frontendURL, orderID),
			Failure: fmt.Sprintf("%s/checkout?payment_status=rejected&order_id=%s", frontendURL, orderID),
			Pending: fmt.Sprintf("%s/checkout?payment_status=pending&order_id=%s", frontendURL, orderID),
		},
		AutoReturn:      "approved",
		NotificationURL: notificationURL,
		PaymentMethods: preferencePaymentMethods{
			ExcludedPaymentTypes: excluded,
			Installments:         installmentsForMethod(method),
		},
	}

	body, err := json.Marshal(prefReq)
	if err != nil {
		return nil, err
	}

	reqURL, err := url.JoinPath(c.baseURL, "checkout", "preferences")
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: preference creation returned %d", models.ErrUpstreamFailure, resp.StatusCode)
	}

	pref := Preference{}
	if err := json.NewDecoder(resp.Body).Decode(&pref); err != nil {
		return nil, err
	}

	return &pref, nil
}
