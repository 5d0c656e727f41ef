package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"seminarrsvp/internal/domain"
)

// maxConditionalAttempts bounds retries when a conditional update loses a race
// but the re-read state still allows the transition.
const maxConditionalAttempts = 3

type rsvpService struct {
	seminars       domain.SeminarRepository
	users          domain.UserRepository
	directory      domain.UserDirectory
	notifications  domain.NotificationDispatcher
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewRSVPService(
	seminars domain.SeminarRepository,
	users domain.UserRepository,
	directory domain.UserDirectory,
	notifications domain.NotificationDispatcher,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RSVPService {
	return &rsvpService{
		seminars:       seminars,
		users:          users,
		directory:      directory,
		notifications:  notifications,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// SendInvitations adds the attendee accounts behind emails to the seminar's invitees.
// Unknown emails are reported back, not treated as errors.
func (s *rsvpService) SendInvitations(ctx context.Context, seminarID, agentID string, emails []string) (*domain.InvitationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	normalized := normalizeEmails(emails)
	if len(normalized) == 0 {
		return nil, domain.NewValidationError("attendeeEmails must contain at least one email")
	}
	seminar, err := getOwnedSeminar(ctx, s.seminars, seminarID, agentID)
	if err != nil {
		return nil, err
	}
	users, err := s.directory.ResolveAttendees(ctx, normalized)
	if err != nil {
		return nil, err
	}

	found := make(map[string]struct{}, len(users))
	ids := make([]string, 0, len(users))
	for _, u := range users {
		found[u.Email] = struct{}{}
		ids = append(ids, u.ID)
	}
	unknown := make([]string, 0)
	for _, e := range normalized {
		if _, ok := found[e]; !ok {
			unknown = append(unknown, e)
		}
	}

	updated := seminar
	if len(ids) > 0 {
		updated, err = s.seminars.AddInvitees(ctx, seminarID, ids)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrSeminarNotFound
			}
			return nil, fmt.Errorf("add invitees: %w", err)
		}
	}

	invited := make([]string, 0, len(users))
	var newlyInvited []*domain.User
	for _, u := range users {
		if !updated.IsInvited(u.ID) {
			continue
		}
		invited = append(invited, u.Email)
		if !seminar.IsInvited(u.ID) {
			newlyInvited = append(newlyInvited, u)
		}
	}
	s.notifications.SendInvitationNotices(updated, newlyInvited)

	return &domain.InvitationResult{Seminar: updated, Invited: invited, UnknownEmails: unknown}, nil
}

// ListInvitations returns the seminars userID is invited to, projected for that attendee.
func (s *rsvpService) ListInvitations(ctx context.Context, userID string) ([]domain.AttendeeSeminar, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	seminars, err := s.seminars.ListByInvitee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return domain.ForAttendeeList(seminars, userID), nil
}

// GetInvitation returns the attendee view of the seminar when userID is invited to it or already attends it.
func (s *rsvpService) GetInvitation(ctx context.Context, seminarID, userID string) (*domain.AttendeeSeminar, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	seminar, err := getSeminar(ctx, s.seminars, seminarID)
	if err != nil {
		return nil, err
	}
	if !seminar.IsInvited(userID) && !seminar.IsAttendee(userID) {
		return nil, domain.ErrNotInvited
	}
	view := seminar.ForAttendee(userID)
	return &view, nil
}

func (s *rsvpService) RespondToInvitation(ctx context.Context, seminarID, userID string, response domain.RSVPResponse) (*domain.Seminar, error) {
	switch response {
	case domain.RSVPAccept:
		return s.AcceptInvitation(ctx, seminarID, userID)
	case domain.RSVPDecline:
		return s.DeclineInvitation(ctx, seminarID, userID)
	default:
		return nil, domain.NewValidationError(`response must be "accept" or "decline"`)
	}
}

// AcceptInvitation moves userID from invitees to attendees atomically. Registration on the
// user record and the SMS notice follow the commit and cannot fail the call.
func (s *rsvpService) AcceptInvitation(ctx context.Context, seminarID, userID string) (*domain.Seminar, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	seminar, err := s.conditional(ctx, seminarID, userID, s.seminars.AcceptInvitation, (*domain.Seminar).CheckAccept)
	if err != nil {
		return nil, err
	}
	s.recordRegistration(ctx, userID, seminar.ID)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "load user for acceptance notice failed", "user_id", userID, "err", err)
		return seminar, nil
	}
	s.notifications.SendAcceptanceNotice(user, seminar)
	return seminar, nil
}

func (s *rsvpService) DeclineInvitation(ctx context.Context, seminarID, userID string) (*domain.Seminar, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.conditional(ctx, seminarID, userID, s.seminars.DeclineInvitation, (*domain.Seminar).CheckDecline)
}

// Register adds userID to the attendees directly. Seminars with pending invitations admit invitees only.
func (s *rsvpService) Register(ctx context.Context, seminarID, userID string) (*domain.Seminar, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	seminar, err := s.conditional(ctx, seminarID, userID, s.seminars.Register, (*domain.Seminar).CheckRegister)
	if err != nil {
		return nil, err
	}
	s.recordRegistration(ctx, userID, seminar.ID)
	return seminar, nil
}

func (s *rsvpService) ListConfirmedSeminars(ctx context.Context, userID string) ([]domain.AttendeeSeminar, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	seminars, err := s.seminars.ListByAttendee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list confirmed seminars: %w", err)
	}
	return domain.ForAttendeeList(seminars, userID), nil
}

type conditionalUpdate func(ctx context.Context, seminarID, userID string) (*domain.Seminar, error)

// conditional runs update and, when its precondition did not hold, re-reads the seminar to
// name the failed precondition. If the re-read state would allow the transition the update
// lost a race and is retried; ErrConflict is returned once attempts run out.
func (s *rsvpService) conditional(ctx context.Context, seminarID, userID string, update conditionalUpdate, check func(*domain.Seminar, string) error) (*domain.Seminar, error) {
	for range maxConditionalAttempts {
		seminar, err := update(ctx, seminarID, userID)
		if err == nil {
			return seminar, nil
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrSeminarNotFound
		}
		if !errors.Is(err, domain.ErrConditionNotMet) {
			return nil, fmt.Errorf("update seminar: %w", err)
		}
		current, err := getSeminar(ctx, s.seminars, seminarID)
		if err != nil {
			return nil, err
		}
		if err := check(current, userID); err != nil {
			return nil, err
		}
	}
	return nil, domain.ErrConflict
}

func (s *rsvpService) recordRegistration(ctx context.Context, userID, seminarID string) {
	if err := s.directory.RecordRegistration(ctx, userID, seminarID); err != nil {
		s.logger.WarnContext(ctx, "record registration on user failed, needs reconciliation",
			"user_id", userID, "seminar_id", seminarID, "err", err)
	}
}
