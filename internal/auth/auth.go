// Package auth consumes the external identity provider's tokens. Issuing
// tokens (registration, login, password hashing) happens elsewhere; this
// package only verifies a bearer token and exposes the principal it names.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Roles issued by the identity provider.
const (
	RoleAdmin  = "admin"
	RoleBidder = "bidder"
)

// Principal is the role-bearing identity extracted from a token.
type Principal struct {
	ID    string
	Email string
	Role  string
}

type contextKey string

const principalKey contextKey = "principal"

// FromContext returns the principal set by Middleware, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// ParseToken verifies an HS256 token and extracts the principal claims.
func ParseToken(tokenString, secret string) (Principal, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Principal{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Principal{}, fmt.Errorf("invalid token claims")
	}

	p := Principal{}
	if v, ok := claims["id"].(string); ok {
		p.ID = v
	}
	if v, ok := claims["email"].(string); ok {
		p.Email = v
	}
	if v, ok := claims["role"].(string); ok {
		p.Role = v
	}
	if p.Email == "" || p.Role == "" {
		return Principal{}, fmt.Errorf("token missing email or role claim")
	}
	return p, nil
}

// Middleware attaches the bearer principal to the request context when a
// valid token is present. Requests without a token pass through; route
// groups that need one use RequireRole.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if strings.HasPrefix(header, "Bearer ") {
				p, err := ParseToken(strings.TrimPrefix(header, "Bearer "), secret)
				if err != nil {
					http.Error(w, "Invalid token", http.StatusUnauthorized)
					return
				}
				r = r.WithContext(context.WithValue(r.Context(), principalKey, p))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole rejects requests whose principal is absent or carries a
// different role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := FromContext(r.Context())
			if !ok {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}
			if p.Role != role {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
