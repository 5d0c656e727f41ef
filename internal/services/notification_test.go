package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"seminarrsvp/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQR struct {
	err     error
	content string
}

func (f *fakeQR) Generate(content string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.content = content
	return "data:image/png;base64,QR", nil
}

type fakeSMS struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeSMS) Send(ctx context.Context, phone, msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, phone+"|"+msg)
	return f.err
}

type fakeEmailService struct {
	mu          sync.Mutex
	welcomes    []string
	invitations []*domain.SeminarInvitationEmailData
}

func (f *fakeEmailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.welcomes = append(f.welcomes, data.Email)
	return nil
}

func (f *fakeEmailService) SendSeminarInvitation(ctx context.Context, data *domain.SeminarInvitationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invitations = append(f.invitations, data)
	return nil
}

func TestRegistrationURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080/register/abc", RegistrationURL("http://localhost:8080/", "abc"))
	assert.Equal(t, "https://x.io/register/abc", RegistrationURL("https://x.io", "abc"))
}

func TestNotificationService(t *testing.T) {
	ctx := context.Background()
	qr := &fakeQR{}
	sms := &fakeSMS{err: errors.New("sns throttled")}
	email := &fakeEmailService{}
	notifier := NewNotifier(testLogger(), 1, 16, time.Second)
	svc := NewNotificationService(qr, sms, email, notifier, "https://x.io", testLogger())

	seminar := &domain.Seminar{ID: "sem-1", Title: "Go", Date: "2026-11-20", Time: "14:30"}
	withPhone := &domain.User{ID: "u1", Name: "Alice", Email: "alice@example.com", PhoneNumber: "+15550001"}
	noPhone := &domain.User{ID: "u2", Name: "Bob", Email: "bob@example.com"}

	dataURL, err := svc.GenerateQRArtifact(ctx, "https://x.io/register/sem-1")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,QR", dataURL)
	assert.Equal(t, "https://x.io/register/sem-1", qr.content)

	svc.SendAcceptanceNotice(withPhone, seminar)
	svc.SendAcceptanceNotice(noPhone, seminar)
	svc.SendInvitationNotices(seminar, []*domain.User{withPhone, noPhone})
	svc.SendWelcome(noPhone)
	require.NoError(t, notifier.Close(ctx))

	require.Len(t, sms.sent, 1, "only users with a phone number get an SMS")
	assert.Contains(t, sms.sent[0], "+15550001|")
	assert.Contains(t, sms.sent[0], `"Go"`)

	require.Len(t, email.invitations, 2)
	assert.Equal(t, "https://x.io/register/sem-1", email.invitations[0].RegistrationURL)
	assert.Equal(t, "bob@example.com", email.invitations[1].Email)
	assert.Equal(t, []string{"bob@example.com"}, email.welcomes)
}

func TestNotificationService_QRFailure(t *testing.T) {
	notifier := NewNotifier(testLogger(), 1, 1, time.Second)
	defer notifier.Close(context.Background())
	svc := NewNotificationService(&fakeQR{err: errors.New("too long")}, &fakeSMS{}, &fakeEmailService{}, notifier, "https://x.io", testLogger())

	_, err := svc.GenerateQRArtifact(context.Background(), "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate qr artifact")
}
