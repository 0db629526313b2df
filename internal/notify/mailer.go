// Package notify sends the contact form to the organization's inbox.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/aws/aws-sdk-go-v2/aws"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// ErrDisabled is returned when no sender or recipient is configured.
var ErrDisabled = errors.New("contact mail not configured")

// ContactMessage is one contact form submission.
type ContactMessage struct {
	Name    string
	Email   string
	Subject string
	Message string
	Locale  string
}

// Mailer delivers contact form submissions.
type Mailer interface {
	SendContact(ctx context.Context, msg ContactMessage) error
}

type sesAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESMailer sends through Amazon SES. The submitter becomes Reply-To so
// staff can answer directly.
type SESMailer struct {
	client    sesAPI
	from      string
	recipient string
}

func NewSESMailer(cfg aws.Config, from, recipient string) *SESMailer {
	return &SESMailer{client: sesv2.NewFromConfig(cfg), from: from, recipient: recipient}
}

func (m *SESMailer) SendContact(ctx context.Context, msg ContactMessage) error {
	if m == nil || m.from == "" || m.recipient == "" {
		return ErrDisabled
	}
	subject := "Website contact: " + msg.Subject
	if msg.Subject == "" {
		subject = "Website contact from " + msg.Name
	}
	html, err := renderHTML(msg)
	if err != nil {
		return err
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.from),
		Destination:      &sestypes.Destination{ToAddresses: []string{m.recipient}},
		ReplyToAddresses: []string{msg.Email},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &sestypes.Body{
					Text: &sestypes.Content{Data: aws.String(renderText(msg)), Charset: aws.String("UTF-8")},
					Html: &sestypes.Content{Data: aws.String(html), Charset: aws.String("UTF-8")},
				},
			},
		},
	}
	if _, err := m.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func renderText(msg ContactMessage) string {
	return fmt.Sprintf("Name: %s\nEmail: %s\nLanguage: %s\n\n%s\n", msg.Name, msg.Email, msg.Locale, msg.Message)
}

var contactHTML = template.Must(template.New("contact").Parse(`<!DOCTYPE html>
<html lang="{{.Locale}}">
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #333;">
  <h2>New message from the website</h2>
  <p><strong>Name:</strong> {{.Name}}<br>
     <strong>Email:</strong> {{.Email}}<br>
     <strong>Language:</strong> {{.Locale}}</p>
  <p style="white-space: pre-wrap;">{{.Message}}</p>
</body>
</html>`))

func renderHTML(msg ContactMessage) (string, error) {
	var buf bytes.Buffer
	if err := contactHTML.Execute(&buf, msg); err != nil {
		return "", fmt.Errorf("render contact mail: %w", err)
	}
	return buf.String(), nil
}
