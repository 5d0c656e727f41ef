package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	h "seminarrsvp/internal/delivery/http/helpers"
	"seminarrsvp/internal/domain"
)

type contextKey string

const principalKey contextKey = "principal"

// TokenCookieName is the cookie carrying the identity token.
const TokenCookieName = "token"

// SetPrincipal returns a context carrying p. Used by the gate and by tests.
func SetPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the verified caller, if present.
func PrincipalFromContext(ctx context.Context) (*domain.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*domain.Principal)
	return p, ok && p != nil
}

// Gate authenticates requests and checks them against an access policy.
type Gate struct {
	verifier domain.TokenVerifier
	policy   domain.AccessPolicy
}

func NewGate(verifier domain.TokenVerifier, policy domain.AccessPolicy) *Gate {
	return &Gate{verifier: verifier, policy: policy}
}

// Require wraps next so it only runs for callers allowed to perform op.
// Missing or invalid identity yields 401; a valid identity without the role yields 403.
func (g *Gate) Require(op domain.Operation, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "authentication required")
			return
		}
		principal, err := g.verifier.Verify(token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, domain.ErrTokenExpired) {
				msg = "token expired, please log in again"
			}
			h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, msg)
			return
		}
		if err := g.policy.Authorize(principal, op); err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "authentication required")
				return
			}
			h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "you do not have access to this resource")
			return
		}
		next(w, r.WithContext(SetPrincipal(r.Context(), principal)))
	}
}

// tokenFromRequest prefers the identity cookie and falls back to a Bearer header.
func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(TokenCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}
	return ""
}
