package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"seminarrsvp/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendWelcomeMessage sends a welcome email using the "welcome" template.
func (s *emailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	if data == nil {
		return errors.New("welcome message data is nil")
	}
	return s.send(ctx, "welcome", data.Email, data)
}

// SendSeminarInvitation sends the invitation email using the "seminar_invitation" template.
func (s *emailService) SendSeminarInvitation(ctx context.Context, data *domain.SeminarInvitationEmailData) error {
	if data == nil {
		return errors.New("seminar invitation data is nil")
	}
	return s.send(ctx, "seminar_invitation", data.Email, data)
}

func (s *emailService) send(ctx context.Context, template, to string, data any) error {
	subject, htmlBody, textBody, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("render %s template: %w", template, err)
	}
	if err := s.mailer.Send(ctx, to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("send %s email: %w", template, err)
	}
	s.logger.InfoContext(ctx, "email sent", "template", template, "to", to)
	return nil
}
