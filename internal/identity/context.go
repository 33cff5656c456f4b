// Package identity carries the signed-in user through request contexts.
package identity

import (
	"context"
	"errors"
	"strings"
)

// Role selects which parts of the platform a user sees.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// ParseRole accepts "student" or "admin" in any case. Blank input is a student.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case "", RoleStudent:
		return RoleStudent, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", ErrUnknownRole
	}
}

// Identity is the authenticated user.
type Identity struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

var (
	ErrUnknownRole     = errors.New("identity: unknown role")
	ErrInvalidToken    = errors.New("identity: invalid token")
	ErrMissingToken    = errors.New("identity: missing bearer token")
	ErrBadCredentials  = errors.New("identity: email and password are required")
	ErrSigningDisabled = errors.New("identity: signing secret not configured")
)

type ctxKey string

const identityKey ctxKey = "mindfulu.identity"

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext extracts the identity if present.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.Email != ""
}
