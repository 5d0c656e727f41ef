package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"seminarrsvp/internal/domain"
)

type seminarService struct {
	seminars       domain.SeminarRepository
	users          domain.UserRepository
	notifications  domain.NotificationDispatcher
	logger         *slog.Logger
	baseURL        string
	contextTimeout time.Duration
}

func NewSeminarService(
	seminars domain.SeminarRepository,
	users domain.UserRepository,
	notifications domain.NotificationDispatcher,
	logger *slog.Logger,
	baseURL string,
	timeout time.Duration,
) domain.SeminarService {
	return &seminarService{
		seminars:       seminars,
		users:          users,
		notifications:  notifications,
		logger:         logger,
		baseURL:        baseURL,
		contextTimeout: timeout,
	}
}

func (s *seminarService) CreateSeminar(ctx context.Context, agentID string, in domain.SeminarInput) (*domain.Seminar, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if errs := in.Validate(); len(errs) > 0 {
		return nil, domain.NewValidationError(errs...)
	}
	now := time.Now()
	seminar := domain.NewSeminar(in, agentID, now, now)
	if err := s.seminars.Create(ctx, seminar); err != nil {
		return nil, fmt.Errorf("create seminar: %w", err)
	}
	return seminar, nil
}

func (s *seminarService) ListSeminars(ctx context.Context) ([]*domain.Seminar, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	seminars, err := s.seminars.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list seminars: %w", err)
	}
	return seminars, nil
}

func (s *seminarService) GetSeminar(ctx context.Context, id string) (*domain.Seminar, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return getSeminar(ctx, s.seminars, id)
}

func getSeminar(ctx context.Context, repo domain.SeminarRepository, id string) (*domain.Seminar, error) {
	seminar, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrSeminarNotFound
		}
		return nil, fmt.Errorf("get seminar: %w", err)
	}
	return seminar, nil
}

// getOwnedSeminar returns ErrForbidden when agentID does not own the seminar.
func getOwnedSeminar(ctx context.Context, repo domain.SeminarRepository, id, agentID string) (*domain.Seminar, error) {
	seminar, err := getSeminar(ctx, repo, id)
	if err != nil {
		return nil, err
	}
	if seminar.AgentID != agentID {
		return nil, domain.ErrForbidden
	}
	return seminar, nil
}

func (s *seminarService) UpdateSeminar(ctx context.Context, id, agentID string, patch domain.SeminarPatch) (*domain.Seminar, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if patch.IsEmpty() {
		return nil, domain.NewValidationError("no fields to update")
	}
	if errs := patch.Validate(); len(errs) > 0 {
		return nil, domain.NewValidationError(errs...)
	}
	if _, err := getOwnedSeminar(ctx, s.seminars, id, agentID); err != nil {
		return nil, err
	}
	updated, err := s.seminars.Update(ctx, id, patch)
	if err == nil {
		return updated, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrSeminarNotFound
	}
	if errors.Is(err, domain.ErrConditionNotMet) {
		current, gerr := getSeminar(ctx, s.seminars, id)
		if gerr != nil {
			return nil, gerr
		}
		return nil, domain.NewValidationError(fmt.Sprintf("capacity cannot be below the %d current attendees", len(current.Attendees)))
	}
	return nil, fmt.Errorf("update seminar: %w", err)
}

// DeleteSeminar removes the seminar, then drops it from users' registration lists on a best-effort basis.
func (s *seminarService) DeleteSeminar(ctx context.Context, id, agentID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := getOwnedSeminar(ctx, s.seminars, id, agentID); err != nil {
		return err
	}
	if err := s.seminars.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrSeminarNotFound
		}
		return fmt.Errorf("delete seminar: %w", err)
	}
	if err := s.users.RemoveRegisteredSeminar(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "remove deleted seminar from users failed, needs reconciliation", "seminar_id", id, "err", err)
	}
	return nil
}

// GenerateQRCode renders the registration URL as a QR data URL and stores it on the seminar.
func (s *seminarService) GenerateQRCode(ctx context.Context, id, agentID string) (*domain.Seminar, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := getOwnedSeminar(ctx, s.seminars, id, agentID); err != nil {
		return nil, "", err
	}
	url := RegistrationURL(s.baseURL, id)
	dataURL, err := s.notifications.GenerateQRArtifact(ctx, url)
	if err != nil {
		return nil, "", err
	}
	updated, err := s.seminars.Update(ctx, id, domain.SeminarPatch{QRCode: &dataURL})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", domain.ErrSeminarNotFound
		}
		return nil, "", fmt.Errorf("store qr code: %w", err)
	}
	return updated, url, nil
}

// ListSeminarsWithAttendees returns the agent's seminars with attendee names and emails resolved.
func (s *seminarService) ListSeminarsWithAttendees(ctx context.Context, agentID string) ([]*domain.SeminarWithAttendees, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	seminars, err := s.seminars.ListByAgent(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("list agent seminars: %w", err)
	}
	var ids []string
	seen := make(map[string]struct{})
	for _, sem := range seminars {
		for _, id := range sem.Attendees {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	byID := make(map[string]*domain.User, len(ids))
	if len(ids) > 0 {
		users, err := s.users.ListByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("resolve attendees: %w", err)
		}
		for _, u := range users {
			byID[u.ID] = u
		}
	}
	out := make([]*domain.SeminarWithAttendees, 0, len(seminars))
	for _, sem := range seminars {
		details := make([]domain.UserSummary, 0, len(sem.Attendees))
		for _, id := range sem.Attendees {
			if u, ok := byID[id]; ok {
				details = append(details, u.Summary())
			}
		}
		out = append(out, &domain.SeminarWithAttendees{Seminar: sem, AttendeeDetails: details})
	}
	return out, nil
}
