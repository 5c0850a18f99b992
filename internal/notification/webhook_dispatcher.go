package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// WebhookDispatcher posts notices as JSON to a mail relay.
type WebhookDispatcher struct {
	client *resty.Client
	url    string
	token  string
}

type webhookPayload struct {
	To      string `json:"to"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewWebhookDispatcher builds a dispatcher targeting url. token is sent as a
// bearer credential when non-empty.
func NewWebhookDispatcher(url, token string, timeout time.Duration) *WebhookDispatcher {
	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &WebhookDispatcher{client: client, url: url, token: token}
}

// Notify posts the rendered notice. Any non-2xx reply is an error.
func (d *WebhookDispatcher) Notify(ctx context.Context, notice Notice) error {
	if d.url == "" {
		return fmt.Errorf("webhook url not configured")
	}
	msg := Render(notice)
	req := d.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(webhookPayload{
			To:      notice.RecipientEmail,
			Name:    notice.RecipientName,
			Subject: msg.Subject,
			Body:    msg.Body,
		})
	if d.token != "" {
		req.SetAuthToken(d.token)
	}

	resp, err := req.Post(d.url)
	if err != nil {
		return fmt.Errorf("post notice: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("post notice: relay responded %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
