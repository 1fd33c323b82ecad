// Package publish delivers roster updates to the downstream sink.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/matchlobby/voicebridge/internal/reconcile"
)

// Webhook POSTs every update as JSON to one configured target,
// attaching the shared Authorization header when set.
type Webhook struct {
	url    string
	auth   string
	client *http.Client
}

func NewWebhook(url, auth string, timeout time.Duration) *Webhook {
	return &Webhook{
		url:    url,
		auth:   auth,
		client: &http.Client{Timeout: timeout},
	}
}

func (w *Webhook) Publish(ctx context.Context, u reconcile.Update) error {
	body, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.auth != "" {
		req.Header.Set("Authorization", w.auth)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post update: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("sink responded %d", resp.StatusCode)
	}
	return nil
}

// Fanout publishes to several sinks. The first error wins but every
// sink still gets the update.
type Fanout []reconcile.Publisher

func (f Fanout) Publish(ctx context.Context, u reconcile.Update) error {
	var first error
	for _, p := range f {
		if err := p.Publish(ctx, u); err != nil && first == nil {
			first = err
		}
	}
	return first
}
