package notify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"admissions/internal/constants"
	"admissions/pkg/circuitbreaker"
	"admissions/pkg/logging"
	"admissions/pkg/metrics"
)

const SignatureHeader = "X-Console-Signature"

type WebhookConfig struct {
	URL     string
	Secret  string
	Timeout time.Duration
}

// WebhookNotifier POSTs notifications as JSON. Bodies are signed with
// HMAC-SHA256 of the secret when one is configured.
type WebhookNotifier struct {
	client  *resty.Client
	url     string
	secret  []byte
	breaker *circuitbreaker.Wrapper
}

func NewWebhookNotifier(cfg WebhookConfig, breaker *circuitbreaker.Wrapper) *WebhookNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}
	if breaker == nil {
		breaker = circuitbreaker.NewWrapper(circuitbreaker.DefaultConfig("notification-webhook"))
	}
	return &WebhookNotifier{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("User-Agent", constants.ServiceName),
		url:     cfg.URL,
		secret:  []byte(cfg.Secret),
		breaker: breaker,
	}
}

func (w *WebhookNotifier) Notify(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	_, err = circuitbreaker.Do(ctx, w.breaker, func(ctx context.Context) (struct{}, error) {
		req := w.client.R().SetContext(ctx).SetBody(body)
		if len(w.secret) > 0 {
			req.SetHeader(SignatureHeader, Sign(w.secret, body))
		}
		if requestID := logging.GetRequestID(ctx); requestID != "" {
			req.SetHeader("X-Request-ID", requestID)
		}

		resp, err := req.Post(w.url)
		if err != nil {
			return struct{}{}, fmt.Errorf("webhook request failed: %w", err)
		}
		if resp.IsError() {
			return struct{}{}, fmt.Errorf("webhook returned %s", resp.Status())
		}
		return struct{}{}, nil
	})

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.IncNotificationSent("webhook", string(n.Variant), status)
	return err
}

// Sign returns the hex HMAC-SHA256 of body.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
