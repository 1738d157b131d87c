package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/scopecraft/estimation-api/internal/logger"
	"github.com/scopecraft/estimation-api/internal/metrics"
	"github.com/scopecraft/estimation-api/internal/model"
)

// WebhookService delivers async estimation results to caller webhooks
type WebhookService struct {
	httpClient *http.Client
}

// NewWebhookService creates a new webhook service
func NewWebhookService() *WebhookService {
	// Timeout is controlled by the caller's context
	return &WebhookService{httpClient: &http.Client{}}
}

// SendReport delivers a successful estimation report
func (w *WebhookService) SendReport(ctx context.Context, webhookURL string, report *model.Report) error {
	return w.send(ctx, webhookURL, model.WebhookPayload{
		Success: true,
		Report:  report,
	})
}

// SendError delivers a calculation failure
func (w *WebhookService) SendError(ctx context.Context, webhookURL string, calcErr error) error {
	return w.send(ctx, webhookURL, model.WebhookPayload{
		Success: false,
		Error:   calcErr.Error(),
	})
}

func (w *WebhookService) send(ctx context.Context, webhookURL string, payload model.WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		metrics.Get().IncrementWebhooks(false)
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		metrics.Get().IncrementWebhooks(false)
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	metrics.Get().IncrementWebhooks(true)
	logger.Get(ctx).Info().
		Str("webhook_url", webhookURL).
		Bool("success", payload.Success).
		Msg("Webhook delivered")

	return nil
}
