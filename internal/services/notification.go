package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"seminarrsvp/internal/domain"
)

// RegistrationURL is the public address encoded in a seminar's QR code.
func RegistrationURL(baseURL, seminarID string) string {
	return strings.TrimSuffix(baseURL, "/") + "/register/" + seminarID
}

type notificationService struct {
	qr       domain.QRGenerator
	sms      domain.SMSSender
	email    domain.EmailService
	notifier *Notifier
	baseURL  string
	logger   *slog.Logger
}

// NewNotificationService returns a dispatcher that renders QR codes inline and sends
// SMS and email through notifier.
func NewNotificationService(qr domain.QRGenerator, sms domain.SMSSender, email domain.EmailService, notifier *Notifier, baseURL string, logger *slog.Logger) domain.NotificationDispatcher {
	return &notificationService{
		qr:       qr,
		sms:      sms,
		email:    email,
		notifier: notifier,
		baseURL:  baseURL,
		logger:   logger,
	}
}

func (s *notificationService) GenerateQRArtifact(ctx context.Context, registrationURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dataURL, err := s.qr.Generate(registrationURL)
	if err != nil {
		return "", fmt.Errorf("generate qr artifact: %w", err)
	}
	return dataURL, nil
}

func (s *notificationService) SendAcceptanceNotice(user *domain.User, seminar *domain.Seminar) {
	if user == nil || seminar == nil {
		return
	}
	if user.PhoneNumber == "" {
		s.logger.Debug("no phone number, skipping acceptance sms", "user_id", user.ID, "seminar_id", seminar.ID)
		return
	}
	phone := user.PhoneNumber
	msg := fmt.Sprintf("Hi %s, you're confirmed for %q on %s at %s.", user.Name, seminar.Title, seminar.Date, seminar.Time)
	s.notifier.Enqueue("sms.acceptance", func(ctx context.Context) error {
		return s.sms.Send(ctx, phone, msg)
	})
}

func (s *notificationService) SendInvitationNotices(seminar *domain.Seminar, invitees []*domain.User) {
	if seminar == nil {
		return
	}
	url := RegistrationURL(s.baseURL, seminar.ID)
	for _, u := range invitees {
		data := &domain.SeminarInvitationEmailData{
			Email:           u.Email,
			Name:            u.Name,
			SeminarTitle:    seminar.Title,
			Date:            seminar.Date,
			Time:            seminar.Time,
			RegistrationURL: url,
		}
		s.notifier.Enqueue("email.invitation", func(ctx context.Context) error {
			return s.email.SendSeminarInvitation(ctx, data)
		})
	}
}

func (s *notificationService) SendWelcome(user *domain.User) {
	if user == nil {
		return
	}
	data := &domain.WelcomeMessageEmailData{Email: user.Email, Name: user.Name, Role: user.Role}
	s.notifier.Enqueue("email.welcome", func(ctx context.Context) error {
		return s.email.SendWelcomeMessage(ctx, data)
	})
}
