package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seminarrsvp/internal/domain"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestJWTIssuer_Issue(t *testing.T) {
	secret := "test-secret"
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	issuer := NewJWTIssuer(secret, fixedClock(now))
	user := &domain.User{ID: "user-123", Email: "u@example.com", Name: "Ana", Role: domain.RoleAgent}

	token, expiresAt, err := issuer.Issue(user, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithTimeFunc(fixedClock(now)))
	require.NoError(t, err)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "u@example.com", claims.Email)
	assert.Equal(t, "Ana", claims.Name)
	assert.Equal(t, "agent", claims.Role)
}

func TestJWTVerifier_Verify(t *testing.T) {
	secret := "test-secret"
	issuedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	user := &domain.User{ID: "user-1", Email: "a@example.com", Name: "A", Role: domain.RoleAttendee}
	token, _, err := NewJWTIssuer(secret, fixedClock(issuedAt)).Issue(user, time.Hour)
	require.NoError(t, err)

	t.Run("valid token yields principal", func(t *testing.T) {
		v := NewJWTVerifier(secret, fixedClock(issuedAt.Add(59*time.Minute)))
		p, err := v.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, &domain.Principal{UserID: "user-1", Email: "a@example.com", Name: "A", Role: domain.RoleAttendee}, p)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		v := NewJWTVerifier(secret, fixedClock(issuedAt.Add(61*time.Minute)))
		_, err := v.Verify(token)
		require.ErrorIs(t, err, domain.ErrUnauthenticated)
		assert.ErrorIs(t, err, domain.ErrTokenExpired)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		v := NewJWTVerifier("other-secret", fixedClock(issuedAt))
		_, err := v.Verify(token)
		require.ErrorIs(t, err, domain.ErrUnauthenticated)
		assert.NotErrorIs(t, err, domain.ErrTokenExpired)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		v := NewJWTVerifier(secret, fixedClock(issuedAt))
		_, err := v.Verify("not.a.jwt")
		require.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}

func TestJWTVerifier_rejectsTokensWithoutExpiryOrRole(t *testing.T) {
	secret := "test-secret"
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	v := NewJWTVerifier(secret, fixedClock(now))

	sign := func(c jwtClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}

	noExp := sign(jwtClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}, Role: "agent"})
	_, err := v.Verify(noExp)
	require.ErrorIs(t, err, domain.ErrUnauthenticated)

	badRole := sign(jwtClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}, Role: "superuser"})
	_, err = v.Verify(badRole)
	require.ErrorIs(t, err, domain.ErrUnauthenticated)

	noSubject := sign(jwtClaims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}, Role: "agent"})
	_, err = v.Verify(noSubject)
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestJWTVerifier_rejectsOtherSigningMethods(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	c := jwtClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}, Role: "admin"}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, c).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTVerifier("test-secret", fixedClock(now)).Verify(unsigned)
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}
