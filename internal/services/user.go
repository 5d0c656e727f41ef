package services

import (
	"context"
	"fmt"
	"time"

	"seminarrsvp/internal/domain"
)

type userService struct {
	users          domain.UserRepository
	contextTimeout time.Duration
}

func NewUserService(users domain.UserRepository, timeout time.Duration) domain.UserService {
	return &userService{users: users, contextTimeout: timeout}
}

// ListUsers returns all users, or only those holding role when it is non-empty.
func (s *userService) ListUsers(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	users, err := s.users.List(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
