package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"seminarrsvp/internal/domain"
)

const minPasswordLen = 8

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type authService struct {
	users          domain.UserRepository
	hasher         domain.PasswordHasher
	issuer         domain.TokenIssuer
	notifications  domain.NotificationDispatcher
	tokenExpiry    time.Duration
	adminCode      string
	contextTimeout time.Duration
}

// NewAuthService creates an AuthService. An empty adminCode disables admin creation.
func NewAuthService(
	users domain.UserRepository,
	hasher domain.PasswordHasher,
	issuer domain.TokenIssuer,
	notifications domain.NotificationDispatcher,
	tokenExpiry time.Duration,
	adminCode string,
	timeout time.Duration,
) domain.AuthService {
	return &authService{
		users:          users,
		hasher:         hasher,
		issuer:         issuer,
		notifications:  notifications,
		tokenExpiry:    tokenExpiry,
		adminCode:      adminCode,
		contextTimeout: timeout,
	}
}

// SignUp creates an attendee or agent account. Role defaults to attendee.
func (s *authService) SignUp(ctx context.Context, in domain.SignUpInput) (*domain.User, error) {
	if in.Role == "" {
		in.Role = domain.RoleAttendee
	}
	if in.Role != domain.RoleAttendee && in.Role != domain.RoleAgent {
		return nil, domain.NewValidationError(`role must be "attendee" or "agent"`)
	}
	return s.createUser(ctx, in)
}

// CreateAdmin creates an admin account when adminCode matches the configured code.
func (s *authService) CreateAdmin(ctx context.Context, in domain.SignUpInput, adminCode string) (*domain.User, error) {
	if s.adminCode == "" || subtle.ConstantTimeCompare([]byte(adminCode), []byte(s.adminCode)) != 1 {
		return nil, domain.ErrForbidden
	}
	in.Role = domain.RoleAdmin
	return s.createUser(ctx, in)
}

func (s *authService) createUser(ctx context.Context, in domain.SignUpInput) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if errs := validateSignUp(in); len(errs) > 0 {
		return nil, domain.NewValidationError(errs...)
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(salt, in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := domain.NewUser(in.Email, in.Name, in.Role, strings.TrimSpace(in.PhoneNumber), now, now)
	user.PasswordHash = hash
	user.Salt = salt
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.notifications.SendWelcome(user)
	return user, nil
}

func validateSignUp(in domain.SignUpInput) []string {
	var errs []string
	if in.Name == "" {
		errs = append(errs, "name is required")
	}
	if in.Email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegexp.MatchString(in.Email) {
		errs = append(errs, "invalid email format")
	}
	if in.Password == "" {
		errs = append(errs, "password is required")
	} else if len(in.Password) < minPasswordLen {
		errs = append(errs, fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	return errs
}

// Login verifies credentials and issues an identity token. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, email, password string) (string, time.Time, *domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", time.Time{}, nil, domain.ErrInvalidCredentials
		}
		return "", time.Time{}, nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return "", time.Time{}, nil, domain.ErrInvalidCredentials
		}
		return "", time.Time{}, nil, err
	}
	token, expiresAt, err := s.issuer.Issue(user, s.tokenExpiry)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return token, expiresAt, user, nil
}
