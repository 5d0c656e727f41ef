package domain

import (
	"context"
	"strings"
	"time"
)

// Role is the single role a user holds.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleAgent    Role = "agent"
	RoleAttendee Role = "attendee"
)

// ParseRole normalises s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.TrimSpace(strings.ToLower(s)))
	switch r {
	case RoleAdmin, RoleAgent, RoleAttendee:
		return r, true
	}
	return "", false
}

// User represents a registered user
// swagger:model User
type User struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	Role               Role      `json:"role"`
	PhoneNumber        string    `json:"phoneNumber,omitempty"`
	RegisteredSeminars []string  `json:"registeredSeminars"`
	PasswordHash       string    `json:"-"`
	Salt               string    `json:"-"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// NewUser returns a new User with the given fields. ID is set by the repository on create.
func NewUser(email, name string, role Role, phoneNumber string, createdAt, updatedAt time.Time) *User {
	return &User{
		Email:              email,
		Name:               name,
		Role:               role,
		PhoneNumber:        phoneNumber,
		RegisteredSeminars: []string{},
		CreatedAt:          createdAt,
		UpdatedAt:          updatedAt,
	}
}

// UserSummary is the public projection of a user shown to seminar agents.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Summary returns the public projection of u.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// SignUpInput is the data needed to create an account.
type SignUpInput struct {
	Name        string
	Email       string
	Password    string
	Role        Role
	PhoneNumber string
}

// PasswordHasher handles salt generation, hashing, and verification.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues signed identity tokens for an authenticated user.
type TokenIssuer interface {
	Issue(user *User, expiry time.Duration) (token string, expiresAt time.Time, err error)
}

// TokenVerifier verifies a token and returns the principal it carries.
type TokenVerifier interface {
	Verify(token string) (*Principal, error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, role Role) ([]*User, error)
	ListByIDs(ctx context.Context, ids []string) ([]*User, error)
	ListByEmails(ctx context.Context, emails []string, role Role) ([]*User, error)
	AddRegisteredSeminar(ctx context.Context, userID, seminarID string) error
	RemoveRegisteredSeminar(ctx context.Context, seminarID string) error
}

// UserDirectory resolves invitees and keeps the per-user registration list in step with seminars.
type UserDirectory interface {
	ResolveAttendees(ctx context.Context, emails []string) ([]*User, error)
	RecordRegistration(ctx context.Context, userID, seminarID string) error
}

// AuthService covers account creation and login.
type AuthService interface {
	SignUp(ctx context.Context, in SignUpInput) (*User, error)
	CreateAdmin(ctx context.Context, in SignUpInput, adminCode string) (*User, error)
	Login(ctx context.Context, email, password string) (token string, expiresAt time.Time, user *User, err error)
}

// UserService is the admin view over the user directory.
type UserService interface {
	ListUsers(ctx context.Context, role Role) ([]*User, error)
}
