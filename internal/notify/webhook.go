package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"slices"
	"time"
)

// WebhookNotifier sends notifications to Slack/Discord webhooks.
type WebhookNotifier struct {
	notifyType string
	webhookURL string
	on         []string
	client     *http.Client
}

var _ Notifier = (*WebhookNotifier)(nil)

// NewWebhookNotifier creates a notifier for slack or discord webhooks.
// An empty on list subscribes to failures only.
func NewWebhookNotifier(notifyType, webhookURL string, on []string) *WebhookNotifier {
	if len(on) == 0 {
		on = []string{string(EventFail)}
	}
	return &WebhookNotifier{
		notifyType: notifyType,
		webhookURL: webhookURL,
		on:         on,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Wants reports whether the notifier subscribes to ev.
func (w *WebhookNotifier) Wants(ev Event) bool {
	return slices.Contains(w.on, "all") || slices.Contains(w.on, string(ev))
}

// Notify posts msg to the webhook when the notifier subscribes to ev.
func (w *WebhookNotifier) Notify(ctx context.Context, ev Event, msg string) error {
	if !w.Wants(ev) {
		return nil
	}

	var payload map[string]string
	switch w.notifyType {
	case "slack":
		payload = map[string]string{"text": msg}
	case "discord":
		payload = map[string]string{"content": msg}
	default:
		return fmt.Errorf("unsupported webhook notify type %q", w.notifyType)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("webhook returned status %s and body read failed: %w", resp.Status, readErr)
		}
		log.Printf("[notify] non-2xx response: status=%s body=%q", resp.Status, string(respBody))
		return fmt.Errorf("webhook returned status %s", resp.Status)
	}

	return nil
}
