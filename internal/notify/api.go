package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ApiNotifier posts filing payloads to authority HTTP endpoints.
type ApiNotifier interface {
	Post(ctx context.Context, url string, payload any) error
}

// HTTPNotifier is the default JSON-over-HTTP implementation.
type HTTPNotifier struct {
	client *http.Client
}

// NewHTTPNotifier constructs the notifier with a bounded request timeout.
func NewHTTPNotifier() *HTTPNotifier {
	return &HTTPNotifier{client: &http.Client{Timeout: 10 * time.Second}}
}

// Post sends the payload as a JSON body.
func (n *HTTPNotifier) Post(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("authority api status=%d body=%s", resp.StatusCode, bytes.TrimSpace(b))
	}
	return nil
}
