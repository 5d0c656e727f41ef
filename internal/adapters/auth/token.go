package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"seminarrsvp/internal/domain"
)

type jwtClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

type jwtIssuer struct {
	secret []byte
	now    Clock
}

// NewJWTIssuer returns a TokenIssuer that signs HS256 JWTs carrying the user's id, email, name and role.
func NewJWTIssuer(secret string, now Clock) domain.TokenIssuer {
	if now == nil {
		now = time.Now
	}
	return &jwtIssuer{secret: []byte(secret), now: now}
}

func (i *jwtIssuer) Issue(user *domain.User, expiry time.Duration) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(expiry)
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: user.Email,
		Name:  user.Name,
		Role:  string(user.Role),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

type jwtVerifier struct {
	secret []byte
	now    Clock
}

// NewJWTVerifier returns a TokenVerifier for tokens produced by NewJWTIssuer with the same secret.
func NewJWTVerifier(secret string, now Clock) domain.TokenVerifier {
	if now == nil {
		now = time.Now
	}
	return &jwtVerifier{secret: []byte(secret), now: now}
}

// Verify wraps every failure in domain.ErrUnauthenticated; an expired token yields domain.ErrTokenExpired.
func (v *jwtVerifier) Verify(tokenString string) (*domain.Principal, error) {
	claims := &jwtClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		if isExpired(err) {
			return nil, domain.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrUnauthenticated)
	}
	role, ok := domain.ParseRole(claims.Role)
	if !ok {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrUnauthenticated, claims.Role)
	}
	return &domain.Principal{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
		Role:   role,
	}, nil
}

func isExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
