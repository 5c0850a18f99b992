package notification

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridDispatcher delivers notices through the SendGrid v3 mail API.
type SendGridDispatcher struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewSendGridDispatcher constructs a dispatcher sending as fromName <fromEmail>.
func NewSendGridDispatcher(apiKey, fromName, fromEmail string) *SendGridDispatcher {
	return &SendGridDispatcher{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromEmail),
	}
}

// Notify sends the rendered notice as a plain-text email.
func (d *SendGridDispatcher) Notify(ctx context.Context, notice Notice) error {
	msg := Render(notice)
	to := mail.NewEmail(notice.RecipientName, notice.RecipientEmail)
	email := mail.NewSingleEmail(d.from, msg.Subject, to, msg.Body, "")

	resp, err := d.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("send notice: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("send notice: sendgrid responded %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
