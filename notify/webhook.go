// Package notify delivers strategy alerts to an outbound webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/avhal/scout/shared"
	"github.com/rs/zerolog"
)

// WebhookConfig represents the configuration for the webhook notifier.
type WebhookConfig struct {
	// URL is the webhook endpoint. When empty, payloads are logged instead
	// of posted.
	URL string
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// WebhookNotifier posts strategy alerts to a webhook endpoint as a
// Discord-style content message.
type WebhookNotifier struct {
	cfg   *WebhookConfig
	httpc http.Client
}

// Ensure the webhook notifier implements the AlertSink interface.
var _ shared.AlertSink = (*WebhookNotifier)(nil)

// NewWebhookNotifier initializes a new webhook notifier.
func NewWebhookNotifier(cfg *WebhookConfig) (*WebhookNotifier, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	if cfg.URL == "" {
		cfg.Logger.Warn().Msg("webhook url not set, alerts will only be logged")
	}

	return &WebhookNotifier{
		cfg:   cfg,
		httpc: http.Client{Timeout: time.Second * 5},
	}, nil
}

// formatContent builds the webhook message content for the provided alert.
func formatContent(alert *shared.AlertPayload) string {
	return fmt.Sprintf("**STRATEGY ALERT: %s**\nInstrument: %s\nTimeframe: %s\nCandle Time: %s\nSetup: %s",
		alert.Strategy, alert.Instrument, alert.Timeframe.String(),
		alert.Time.UTC().Format(time.RFC3339), alert.Reason)
}

// Notify delivers the provided alert payload to the configured webhook.
func (n *WebhookNotifier) Notify(ctx context.Context, alert *shared.AlertPayload) error {
	if n.cfg.URL == "" {
		n.cfg.Logger.Info().Str("strategy", alert.Strategy).Str("instrument", alert.Instrument).
			Str("timeframe", alert.Timeframe.String()).Time("candle", alert.Time).
			Str("reason", alert.Reason).Msg("alert (not sent)")
		return nil
	}

	body, err := json.Marshal(map[string]string{"content": formatContent(alert)})
	if err != nil {
		return fmt.Errorf("marshalling webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sending webhook: unexpected status %d", resp.StatusCode)
	}

	n.cfg.Logger.Info().Str("strategy", alert.Strategy).Msg("alert delivered")

	return nil
}
