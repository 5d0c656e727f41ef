package email

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestNewMailer_providers(t *testing.T) {
	_, ok := NewMailer(MailerConfig{Provider: "noop"}, testLogger).(*noopMailer)
	assert.True(t, ok)
	_, ok = NewMailer(MailerConfig{Provider: "carrier-pigeon"}, testLogger).(*noopMailer)
	assert.True(t, ok)
	_, ok = NewMailer(MailerConfig{Provider: "ses", FromAddress: "a@b.c"}, testLogger).(*sesMailer)
	assert.True(t, ok)
}

func TestSESMailer_Send(t *testing.T) {
	client := &fakeSES{}
	m := &sesMailer{client: client, fromAddress: "no-reply@example.com", fromName: "Seminars", logger: testLogger}

	err := m.Send(context.Background(), "ana@example.com", "Hi", "<p>Hi</p>", "Hi")
	require.NoError(t, err)
	require.NotNil(t, client.input)
	assert.Equal(t, "Seminars <no-reply@example.com>", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"ana@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "<p>Hi</p>", aws.ToString(client.input.Message.Body.Html.Data))
	assert.Equal(t, "Hi", aws.ToString(client.input.Message.Body.Text.Data))
}

func TestSESMailer_Send_error(t *testing.T) {
	m := &sesMailer{client: &fakeSES{err: errors.New("throttled")}, fromAddress: "x@example.com", logger: testLogger}
	err := m.Send(context.Background(), "ana@example.com", "Hi", "", "Hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}
