package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/transbarber/storefront/internal/models"
)

var paymentLabels = map[string]string{
	models.PaymentMethodPix:      "PIX",
	models.PaymentMethodDebit:    "Cartão de Débito",
	models.PaymentMethodCredit1x: "Cartão de Crédito (1x)",
	models.PaymentMethodCredit12: "Cartão de Crédito (12x)",
}

// OrderEmail is data for order confirmation messages
type OrderEmail struct {
	OrderID       string
	CustomerEmail string
	CustomerName  string
	Items         []models.OrderItem
	Total         float64
	Shipping      float64
	TrackingCode  string
	PaymentMethod string
}

// ShippingEmail is data for shipped-order notification
type ShippingEmail struct {
	CustomerEmail string
	CustomerName  string
	OrderID       string
	TrackingCode  string
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Client is transactional email relay
type Client struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	from       string
	adminEmail string
}

// NewClient creates new email client
func NewClient(baseURL, apiKey, from, adminEmail string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:    baseURL,
		apiKey:     apiKey,
		from:       from,
		adminEmail: adminEmail,
	}
}

func (c *Client) send(ctx context.Context, to, subject, html string) error {
	body, err := json.Marshal(sendRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return err
	}

	reqURL, err := url.JoinPath(c.baseURL, "emails")
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: email provider returned %d", models.ErrUpstreamFailure, resp.StatusCode)
	}

	return nil
}

func itemsTable(items []models.OrderItem, shipping, total float64) string {
	var b strings.Builder
	b.WriteString(`<table width="100%" cellpadding="6" cellspacing="0" border="0"><tr><th align="left">Produto</th><th align="center">Qtd</th><th align="right">Valor</th></tr>`)
	for _, item := range items {
		fmt.Fprintf(&b, `<tr><td>%s</td><td align="center">%d</td><td align="right">R$ %.2f</td></tr>`,
			item.ProductName, item.Quantity, item.PriceAtPurchase*float64(item.Quantity))
	}
	fmt.Fprintf(&b, `<tr><td colspan="2">Frete</td><td align="right">R$ %.2f</td></tr>`, shipping)
	fmt.Fprintf(&b, `<tr><td colspan="2"><strong>Total</strong></td><td align="right"><strong>R$ %.2f</strong></td></tr>`, total)
	b.WriteString(`</table>`)
	return b.String()
}

// SendOrderConfirmation sends confirmation to the customer and a copy to the
// shop admin
func (c *Client) SendOrderConfirmation(ctx context.Context, email OrderEmail) error {
	label := paymentLabels[email.PaymentMethod]
	if label == "" {
		label = email.PaymentMethod
	}

	table := itemsTable(email.Items, email.Shipping, email.Total)

	customerHTML := fmt.Sprintf(
		`<h1>Pedido Confirmado!</h1>
<p>Obrigado pela sua compra, %s!</p>
<p>Código do pedido: <strong>#%s</strong><br>Pagamento: %s</p>
%s
<p>Seu pedido está sendo processado. Você receberá um email com o código de rastreio assim que for enviado.</p>`,
		email.CustomerName, email.TrackingCode, label, table)

	if err := c.send(ctx, email.CustomerEmail, "Pedido Confirmado - TransBarber", customerHTML); err != nil {
		return err
	}

	if c.adminEmail == "" {
		return nil
	}

	adminHTML := fmt.Sprintf(
		`<h1>Novo pedido recebido</h1>
<p>Cliente: %s (%s)<br>Pedido: #%s<br>Pagamento: %s</p>
%s`,
		email.CustomerName, email.CustomerEmail, email.TrackingCode, label, table)

	return c.send(ctx, c.adminEmail, "Novo Pedido - TransBarber", adminHTML)
}

// SendShippingNotification tells the customer the order left the warehouse
func (c *Client) SendShippingNotification(ctx context.Context, email ShippingEmail) error {
	html := fmt.Sprintf(
		`<h1>Pedido Enviado!</h1>
<p>Olá %s, seu pedido saiu para entrega.</p>
<p>Código de rastreio: <strong>%s</strong></p>
<p>Acompanhe o envio em Meus Pedidos.</p>`,
		email.CustomerName, email.TrackingCode)

	return c.send(ctx, email.CustomerEmail, "Pedido Enviado - TransBarber", html)
}
