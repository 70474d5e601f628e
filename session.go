package auth

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ Session = &SessionObject{}

// SessionObject is the serialized session snapshot. Login writes it into the
// SessionCache keyed by user id; the HTTP middleware rebuilds it from access
// token claims.
type SessionObject struct {
	UserID         string         `json:"user_id,omitempty"`
	Email          string         `json:"email,omitempty"`
	Role           string         `json:"role,omitempty"`
	Issuer         string         `json:"issuer,omitempty"`
	IssuedAt       *time.Time     `json:"issued_at,omitempty"`
	ExpirationDate *time.Time     `json:"expiration_date,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
}

func (s *SessionObject) GetUserID() string {
	return s.UserID
}

func (s *SessionObject) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(s.UserID)
}

// HasUserUUID reports whether the session carries a parseable user UUID.
func HasUserUUID(session Session) bool {
	if session == nil {
		return false
	}
	if _, err := session.GetUserUUID(); err != nil {
		return false
	}
	return true
}

func (s *SessionObject) GetEmail() string {
	return s.Email
}

func (s *SessionObject) GetRole() string {
	return s.Role
}

func (s *SessionObject) GetIssuer() string {
	return s.Issuer
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

func (s *SessionObject) GetData() map[string]any {
	return s.Data
}

// IsAtLeast checks if the session's role is at least the minimum required role
func (s *SessionObject) IsAtLeast(minRole UserRole) bool {
	role, ok := ParseRole(s.Role)
	if !ok {
		role = RoleGuest
	}
	return RoleAtLeast(role, minRole)
}

func (s SessionObject) String() string {
	issuedAt := "<nil>"
	if s.IssuedAt != nil {
		issuedAt = s.IssuedAt.Format(time.RFC1123)
	}
	return fmt.Sprintf(
		"user=%s email=%s role=%s iss=%s iat=%s",
		s.UserID,
		s.Email,
		s.Role,
		s.Issuer,
		issuedAt,
	)
}

// sessionFromClaims creates a SessionObject from verified access token claims.
func sessionFromClaims(claims *SessionClaims) (*SessionObject, error) {
	if claims == nil || claims.UserID() == "" {
		return nil, ErrTokenInvalid
	}

	issuedAt := claims.IssuedAtTime()
	expiresAt := claims.Expires()

	return &SessionObject{
		UserID:         claims.UserID(),
		Role:           claims.Role(),
		Issuer:         claims.RegisteredClaims.Issuer,
		IssuedAt:       &issuedAt,
		ExpirationDate: &expiresAt,
	}, nil
}

// sessionFromUser builds the snapshot that login mirrors into the cache.
func sessionFromUser(user *User, issuer string, issuedAt time.Time, expiresAt time.Time) *SessionObject {
	return &SessionObject{
		UserID:         user.ID.String(),
		Email:          user.Email,
		Role:           string(user.Role),
		Issuer:         issuer,
		IssuedAt:       &issuedAt,
		ExpirationDate: &expiresAt,
	}
}
