package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/foxseedlab/otoshin/internal/webhook"
)

type HTTPNotifier struct {
	webhookURL string
	client     *http.Client
}

func NewHTTPNotifier(webhookURL string) webhook.Notifier {
	return &HTTPNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{},
	}
}

func (n *HTTPNotifier) NotifyDelivery(ctx context.Context, event webhook.DeliveryEvent) error {
	if n.webhookURL == "" {
		return nil
	}

	b, err := json.Marshal(event)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if !isHTTPSuccessStatus(resp.StatusCode) {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func isHTTPSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
