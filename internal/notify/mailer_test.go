package notify

import (
	"context"
	"errors"
	"testing"

	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	in  *sesv2.SendEmailInput
	err error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.in = in
	return &sesv2.SendEmailOutput{}, f.err
}

func TestSESMailer_SendContact(t *testing.T) {
	fake := &fakeSES{}
	m := &SESMailer{client: fake, from: "web@example.org", recipient: "team@example.org"}

	err := m.SendContact(context.Background(), ContactMessage{
		Name: "Max <script>", Email: "max@example.com", Subject: "Volunteering", Message: "Hallo!", Locale: "de",
	})
	require.NoError(t, err)
	require.NotNil(t, fake.in)
	assert.Equal(t, "web@example.org", *fake.in.FromEmailAddress)
	assert.Equal(t, []string{"team@example.org"}, fake.in.Destination.ToAddresses)
	assert.Equal(t, []string{"max@example.com"}, fake.in.ReplyToAddresses)
	assert.Equal(t, "Website contact: Volunteering", *fake.in.Content.Simple.Subject.Data)
	assert.Contains(t, *fake.in.Content.Simple.Body.Text.Data, "Hallo!")
	html := *fake.in.Content.Simple.Body.Html.Data
	assert.Contains(t, html, "Max &lt;script&gt;")
	assert.NotContains(t, html, "<script>")
}

func TestSESMailer_Errors(t *testing.T) {
	var disabled *SESMailer
	assert.ErrorIs(t, disabled.SendContact(context.Background(), ContactMessage{}), ErrDisabled)
	assert.ErrorIs(t, (&SESMailer{client: &fakeSES{}}).SendContact(context.Background(), ContactMessage{}), ErrDisabled)

	m := &SESMailer{client: &fakeSES{err: errors.New("throttled")}, from: "a@example.org", recipient: "b@example.org"}
	err := m.SendContact(context.Background(), ContactMessage{Name: "x", Email: "x@example.org"})
	assert.ErrorContains(t, err, "throttled")
}
