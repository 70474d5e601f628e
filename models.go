package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleGuest is a guest role (ie. view)
	RoleGuest UserRole = "guest"
	// RoleUser is the default role for activated accounts
	RoleUser UserRole = "user"
	// RoleAdmin is an admin role
	RoleAdmin UserRole = "admin"
	// RoleOwner is the highest privileged role
	RoleOwner UserRole = "owner"
)

// UserStatus is the lifecycle status of an account.
type UserStatus = string

const (
	// UserStatusPending marks accounts that registered but never completed
	// activation. Durable users are created active; pending exists for
	// imports and admin-created records.
	UserStatusPending UserStatus = "pending"
	// UserStatusActive is the normal, authenticatable status.
	UserStatusActive UserStatus = "active"
	// UserStatusSuspended blocks authentication but is reversible.
	UserStatusSuspended UserStatus = "suspended"
	// UserStatusDisabled blocks authentication.
	UserStatusDisabled UserStatus = "disabled"
	// UserStatusArchived is terminal.
	UserStatusArchived UserStatus = "archived"
)

// User is the user model
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role           UserRole       `bun:"user_role,notnull" json:"user_role,omitempty"`
	Status         UserStatus     `bun:"status,notnull" json:"status,omitempty"`
	FirstName      string         `bun:"first_name" json:"first_name,omitempty"`
	LastName       string         `bun:"last_name" json:"last_name,omitempty"`
	Username       string         `bun:"username,notnull,unique" json:"username,omitempty"`
	ProfilePicture string         `bun:"profile_picture" json:"profile_picture,omitempty"`
	Email          string         `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone          string         `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash   string         `bun:"password_hash" json:"-"`
	EmailVerified  bool           `bun:"is_email_verified" json:"is_email_verified,omitempty"`
	SuspendedAt    *time.Time     `bun:"suspended_at,nullzero" json:"suspended_at,omitempty"`
	Metadata       map[string]any `bun:"metadata" json:"metadata,omitempty"`
	CreatedAt      *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureStatus backfills the status for records created before the column
// existed.
func (u *User) EnsureStatus() {
	if u.Status == "" {
		u.Status = UserStatusActive
	}
}

// AddMetadata will append information to a metadata attribute
func (u *User) AddMetadata(key string, val any) *User {
	if u.Metadata == nil {
		u.Metadata = make(map[string]any)
	}
	u.Metadata[key] = val
	return u
}

// PublicUser is the projection of a User that is safe to return to clients.
// It never carries the password hash.
type PublicUser struct {
	ID             string     `json:"id"`
	FirstName      string     `json:"first_name,omitempty"`
	LastName       string     `json:"last_name,omitempty"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone_number,omitempty"`
	Role           UserRole   `json:"user_role"`
	ProfilePicture string     `json:"profile_picture,omitempty"`
	EmailVerified  bool       `json:"is_email_verified"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
}

// Public returns the client-safe projection of the user.
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}

	return &PublicUser{
		ID:             u.ID.String(),
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Username:       u.Username,
		Email:          u.Email,
		Phone:          u.Phone,
		Role:           u.Role,
		ProfilePicture: u.ProfilePicture,
		EmailVerified:  u.EmailVerified,
		CreatedAt:      u.CreatedAt,
	}
}

// PendingRegistration is the transient payload produced at registration time.
// It is never persisted; its only carrier is the signed activation token and
// its lifetime is the token's TTL.
type PendingRegistration struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Password  string `json:"password"`
}
