package services

import (
	"context"
	"errors"
	"testing"

	"seminarrsvp/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	to, subject, html, text string
	err                     error
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	m.to, m.subject, m.html, m.text = to, subject, html, text
	return m.err
}

type fakeRenderer struct {
	name string
	err  error
}

func (r *fakeRenderer) Render(name string, data any) (string, string, string, error) {
	r.name = name
	if r.err != nil {
		return "", "", "", r.err
	}
	return "subject:" + name, "<p>" + name + "</p>", name, nil
}

func TestEmailService_SendSeminarInvitation(t *testing.T) {
	mailer := &fakeMailer{}
	renderer := &fakeRenderer{}
	svc := NewEmailService(mailer, renderer, testLogger())

	err := svc.SendSeminarInvitation(context.Background(), &domain.SeminarInvitationEmailData{Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "seminar_invitation", renderer.name)
	assert.Equal(t, "alice@example.com", mailer.to)
	assert.Equal(t, "subject:seminar_invitation", mailer.subject)
}

func TestEmailService_Errors(t *testing.T) {
	ctx := context.Background()

	svc := NewEmailService(&fakeMailer{}, &fakeRenderer{}, testLogger())
	assert.Error(t, svc.SendWelcomeMessage(ctx, nil))
	assert.Error(t, svc.SendSeminarInvitation(ctx, nil))

	svc = NewEmailService(&fakeMailer{}, &fakeRenderer{err: errors.New("no template")}, testLogger())
	err := svc.SendWelcomeMessage(ctx, &domain.WelcomeMessageEmailData{Email: "a@x.io"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render welcome template")

	svc = NewEmailService(&fakeMailer{err: errors.New("ses down")}, &fakeRenderer{}, testLogger())
	err = svc.SendWelcomeMessage(ctx, &domain.WelcomeMessageEmailData{Email: "a@x.io"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send welcome email")
}
