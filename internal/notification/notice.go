// Package notification delivers eligibility notices to selected students.
// Delivery is asynchronous and best effort: callers enqueue and move on.
package notification

import (
	"context"
	"fmt"
)

// Notice carries what a student needs to know after an eligible selection.
type Notice struct {
	RecipientEmail string `json:"recipient_email"`
	RecipientName  string `json:"recipient_name"`
	PositionTitle  string `json:"position_title"`
	CompanyName    string `json:"company_name"`
}

// Message is a rendered notice.
type Message struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Subject is used for every eligibility notice.
const Subject = "Co-op Eligibility Notification"

// Render builds the plain-text email for a notice.
func Render(n Notice) Message {
	body := fmt.Sprintf("Dear %s,\n\n"+
		"Congratulations! You have been selected for the position \"%s\" at %s and are ELIGIBLE for co-op credit.\n\n"+
		"Please log in to the Co-op Portal to indicate whether you would like to receive co-op credit for this internship.\n\n"+
		"Best regards,\n"+
		"Co-op Portal System", n.RecipientName, n.PositionTitle, n.CompanyName)
	return Message{Subject: Subject, Body: body}
}

// Dispatcher sends a single notice through a concrete channel.
type Dispatcher interface {
	Notify(ctx context.Context, notice Notice) error
}
