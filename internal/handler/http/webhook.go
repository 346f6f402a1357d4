package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/transbarber/storefront/internal/logger"
	"github.com/transbarber/storefront/internal/service"
)

type NotificationService interface {
	ProcessNotification(ctx context.Context, topic, paymentID string) (*service.NotificationResult, error)
}

// WebhookHandler represents HTTP handler for payment provider notifications
type WebhookHandler struct {
	svc   NotificationService
	token string
}

// NewWebhookHandler creates new WebhookHandler instance. An empty token
// disables the shared-secret check.
func NewWebhookHandler(svc NotificationService, token string) *WebhookHandler {
	return &WebhookHandler{svc: svc, token: token}
}

// notificationBody covers the payload shapes the provider sends: the IPN
// form uses topic+id, the webhook form uses type/action+data.id.
type notificationBody struct {
	Type   string `json:"type"`
	Topic  string `json:"topic"`
	Action string `json:"action"`
	ID     any    `json:"id"`
	Data   struct {
		ID any `json:"id"`
	} `json:"data"`
}

// asString accepts payment ids sent either as JSON strings or numbers
func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatInt(int64(t), 10)
	default:
		return ""
	}
}

// topicOf normalizes the notification topic. Webhook deliveries carry an
// action like "payment.updated", IPN deliveries a bare topic.
func (b *notificationBody) topicOf(q map[string]string) string {
	for _, t := range []string{b.Type, b.Topic} {
		if t != "" {
			return t
		}
	}
	if strings.HasPrefix(b.Action, "payment.") {
		return "payment"
	}
	for _, k := range []string{"type", "topic"} {
		if q[k] != "" {
			return q[k]
		}
	}
	return ""
}

// paymentIDOf extracts the payment id from body or query
func (b *notificationBody) paymentIDOf(q map[string]string) string {
	if id := asString(b.Data.ID); id != "" {
		return id
	}
	if id := asString(b.ID); id != "" {
		return id
	}
	for _, k := range []string{"data.id", "id"} {
		if q[k] != "" {
			return q[k]
		}
	}
	return ""
}

type webhookResponse struct {
	OK            bool   `json:"ok"`
	OrderID       string `json:"order_id,omitempty"`
	PaymentID     string `json:"payment_id,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`
	Action        string `json:"action"`
}

// HandleNotification processes a payment provider notification. Every
// delivery that reaches the service layer is acknowledged with 200 even when
// it is irrelevant or references an unknown order, otherwise the provider
// retries it indefinitely. Only transient failures return 5xx so the
// provider retries later.
// 200 — notification acknowledged;
// 401 — shared-secret token mismatch;
// 500 — transient failure, provider should retry.
func (wh *WebhookHandler) HandleNotification() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if wh.token != "" && r.URL.Query().Get("token") != wh.token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		query := map[string]string{
			"type":    r.URL.Query().Get("type"),
			"topic":   r.URL.Query().Get("topic"),
			"data.id": r.URL.Query().Get("data.id"),
			"id":      r.URL.Query().Get("id"),
		}

		var body notificationBody
		// body may be empty on IPN deliveries, query params carry the data
		_ = json.NewDecoder(r.Body).Decode(&body)
		defer r.Body.Close()

		topic := body.topicOf(query)
		paymentID := body.paymentIDOf(query)

		result, err := wh.svc.ProcessNotification(r.Context(), topic, paymentID)
		if err != nil {
			logger.Log.Error("notification processing failed",
				zap.String("topic", topic), zap.String("payment", paymentID), zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		logger.Log.Info("notification processed",
			zap.String("topic", topic),
			zap.String("payment", paymentID),
			zap.String("action", result.Action),
			zap.Bool("ignored", result.Ignored),
			zap.String("reason", result.Reason))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		resp := webhookResponse{
			OK:            true,
			OrderID:       result.OrderID,
			PaymentID:     result.PaymentID,
			PaymentStatus: result.PaymentStatus,
			Action:        result.Action,
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			return
		}
	}
}
