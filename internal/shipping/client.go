package shipping

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/transbarber/storefront/internal/models"
)

const defaultDimensions = "16x16x16,1000"

type carrierOption struct {
	Name                  string   `json:"name"`
	Display               string   `json:"display"`
	ListCost              *float64 `json:"list_cost"`
	Cost                  *float64 `json:"cost"`
	EstimatedDeliveryTime struct {
		Shipping int `json:"shipping"`
	} `json:"estimated_delivery_time"`
}

func (o carrierOption) price() float64 {
	if o.ListCost != nil {
		return *o.ListCost
	}
	if o.Cost != nil {
		return *o.Cost
	}
	return 0
}

// Client is carrier rate API client
type Client struct {
	client      *http.Client
	baseURL     string
	accessToken string
}

// NewClient creates new carrier rate client
func NewClient(baseURL, accessToken string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL:     baseURL,
		accessToken: accessToken,
	}
}

// Quote asks the carrier for rate options and returns the cheapest one
func (c *Client) Quote(ctx context.Context, cep string, declaredValue float64) (*models.ShippingQuote, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	q.Set("zip_code", cep)
	q.Set("item_price", strconv.FormatFloat(declaredValue, 'f', 2, 64))
	q.Set("dimensions", defaultDimensions)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: carrier rate API returned %d", models.ErrUpstreamFailure, resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	// the API answers either a bare array or {"options": [...]}
	options := []carrierOption{}
	if err := json.Unmarshal(raw, &options); err != nil {
		wrapped := struct {
			Options []carrierOption `json:"options"`
		}{}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, err
		}
		options = wrapped.Options
	}

	if len(options) == 0 {
		return nil, models.ErrNoShippingOptions
	}

	sort.Slice(options, func(i, j int) bool {
		return options[i].price() < options[j].price()
	})
	selected := options[0]

	name := selected.Name
	if name == "" {
		name = selected.Display
	}
	if name == "" {
		name = fallbackServiceName
	}

	return &models.ShippingQuote{
		Cost:        selected.price(),
		Days:        selected.EstimatedDeliveryTime.Shipping,
		ServiceName: name,
	}, nil
}
