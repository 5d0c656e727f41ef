package services

import (
	"context"
	"fmt"
	"strings"

	"seminarrsvp/internal/domain"
)

type userDirectory struct {
	users domain.UserRepository
}

// NewUserDirectory returns a UserDirectory backed by the user repository.
func NewUserDirectory(users domain.UserRepository) domain.UserDirectory {
	return &userDirectory{users: users}
}

// ResolveAttendees returns existing attendee accounts for emails. Unknown emails and
// accounts with other roles are dropped.
func (d *userDirectory) ResolveAttendees(ctx context.Context, emails []string) ([]*domain.User, error) {
	normalized := normalizeEmails(emails)
	if len(normalized) == 0 {
		return []*domain.User{}, nil
	}
	users, err := d.users.ListByEmails(ctx, normalized, domain.RoleAttendee)
	if err != nil {
		return nil, fmt.Errorf("resolve attendees: %w", err)
	}
	return users, nil
}

func (d *userDirectory) RecordRegistration(ctx context.Context, userID, seminarID string) error {
	if err := d.users.AddRegisteredSeminar(ctx, userID, seminarID); err != nil {
		return fmt.Errorf("record registration: %w", err)
	}
	return nil
}

// normalizeEmails trims, lowercases and dedupes emails, keeping first-seen order.
func normalizeEmails(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
