// Package notify delivers the admin email for a service request.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/servicedesk/backend/internal/model"
	"github.com/servicedesk/backend/pkg/sendgrid"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Notifier sends a single message. Every call is one attempt; callers decide
// what a failure means.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridNotifier sends mail through the SendGrid API from a verified sender.
type SendGridNotifier struct {
	client sendgrid.Client
	from   string
}

// NewSendGridNotifier creates a SendGridNotifier.
func NewSendGridNotifier(client sendgrid.Client, from string) *SendGridNotifier {
	return &SendGridNotifier{client: client, from: from}
}

func (n *SendGridNotifier) Send(ctx context.Context, msg Message) error {
	return n.client.Send(ctx, sendgrid.Mail{
		From:    n.from,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
}

// LogNotifier writes the message to the log instead of sending it.
type LogNotifier struct{}

func (LogNotifier) Send(ctx context.Context, msg Message) error {
	slog.InfoContext(ctx, "email (log notifier)", "to", msg.To, "subject", msg.Subject, "bytes", len(msg.HTML))
	return nil
}

var submissionTemplate = template.Must(template.New("submission").Parse(
	`<div style="font-family: Arial, sans-serif; padding: 20px; border: 1px solid #ddd;">
<h2 style="color: #333;">New Request from {{.FullName}}</h2>
<p>A new service request has been submitted through the form.</p>
<hr style="border: 0; border-top: 1px solid #eee;">
<p><strong>Contact Number:</strong> {{.ContactNumber}}</p>
<p><strong>Service Type:</strong> {{.ServiceType}}</p>
<p><strong>Project Description:</strong></p>
<div style="padding: 10px; border: 1px solid #ccc; background-color: #f9f9f9;">{{.ProjectDescription}}</div>
<p style="margin-top: 20px; font-size: 0.9em; color: #777;">Please log into the admin dashboard to review.</p>
</div>`))

// ComposeSubmission renders the admin notification for sub. User-supplied
// fields are HTML-escaped.
func ComposeSubmission(to string, sub *model.Submission) (Message, error) {
	var buf bytes.Buffer
	if err := submissionTemplate.Execute(&buf, sub); err != nil {
		return Message{}, fmt.Errorf("render submission email: %w", err)
	}
	return Message{
		To:      to,
		Subject: "New Service Request: " + sub.ServiceType,
		HTML:    buf.String(),
	}, nil
}

// SubmissionNotifier sends the admin email for one submission.
type SubmissionNotifier interface {
	NotifySubmission(ctx context.Context, sub *model.Submission) error
}

// AdminNotifier notifies the configured admin address about submissions.
type AdminNotifier struct {
	notifier  Notifier
	recipient string
}

// NewAdminNotifier creates an AdminNotifier sending to recipient.
func NewAdminNotifier(n Notifier, recipient string) *AdminNotifier {
	return &AdminNotifier{notifier: n, recipient: recipient}
}

var _ SubmissionNotifier = (*AdminNotifier)(nil)

// NotifySubmission composes and sends the admin email for sub.
func (a *AdminNotifier) NotifySubmission(ctx context.Context, sub *model.Submission) error {
	msg, err := ComposeSubmission(a.recipient, sub)
	if err != nil {
		return err
	}
	return a.notifier.Send(ctx, msg)
}
