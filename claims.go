package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind discriminates the three token families. Kinds are additionally
// separated by secret, so the claim is informative rather than load-bearing.
type TokenKind = string

const (
	TokenKindActivation TokenKind = "activation"
	TokenKindAccess     TokenKind = "access"
	TokenKindRefresh    TokenKind = "refresh"
)

// ActivationClaims carry a pending registration plus the verification code.
// The code travels both inside the signed token and out-of-band via the
// notification gateway; redemption requires both.
type ActivationClaims struct {
	jwt.RegisteredClaims
	Pending PendingRegistration `json:"pending"`
	Code    string              `json:"code"`
}

// SessionClaims are the claims for access and refresh tokens.
type SessionClaims struct {
	jwt.RegisteredClaims
	UID      string    `json:"uid,omitempty"`
	UserRole string    `json:"role,omitempty"`
	Kind     TokenKind `json:"kind,omitempty"`
}

// UserID returns the user ID
func (c *SessionClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject
}

// Role returns the global role
func (c *SessionClaims) Role() string {
	return c.UserRole
}

// Expires returns the expiration time
func (c *SessionClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAtTime returns the issued at time
func (c *SessionClaims) IssuedAtTime() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
