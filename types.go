package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an identity
type Identity interface {
	ID() string
	Username() string
	Email() string
	Role() string
}

// Session holds attributes that are part of an auth session
type Session interface {
	GetUserID() string
	GetUserUUID() (uuid.UUID, error)
	GetEmail() string
	GetRole() string
	GetIssuer() string
	GetIssuedAt() *time.Time
	GetData() map[string]any
}

// TokenCodec signs and verifies the three token kinds used by the account
// lifecycle. Each kind uses its own secret and TTL so a captured token of one
// kind can never be replayed as another.
type TokenCodec interface {
	IssueActivationToken(pending PendingRegistration) (token string, code string, err error)
	VerifyActivationToken(token string) (*PendingRegistration, string, error)
	IssueAccessToken(identity Identity) (string, error)
	IssueRefreshToken(identity Identity) (string, error)
	VerifyAccessToken(token string) (*SessionClaims, error)
	VerifyRefreshToken(token string) (*SessionClaims, error)
}

// UserStore is the narrow credential-store contract consumed by the account
// flows. The bun-backed Users repository satisfies it. Lookup by id is named
// FindByID because the embedded generic repository already claims GetByID
// with a criteria-taking signature.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Register(ctx context.Context, user *User) (*User, error)
}

// SessionCache holds server-side session snapshots keyed by user id. Writes
// are last-write-wins per key; a miss returns (nil, nil).
type SessionCache interface {
	Set(ctx context.Context, userID string, session *SessionObject) error
	Get(ctx context.Context, userID string) (*SessionObject, error)
	Delete(ctx context.Context, userID string) error
}

// Mailer dispatches out-of-band notifications, e.g. activation codes.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a templated outbound notification.
type Message struct {
	To       string
	Subject  string
	Template string
	Data     map[string]any
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
