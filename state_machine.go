package auth

import (
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeInvalidTransition = "INVALID_USER_STATE_TRANSITION"
	textCodeTerminalState     = "TERMINAL_USER_STATE"
)

// ErrInvalidTransition is returned when a requested status change is not allowed.
var ErrInvalidTransition = goerrors.New("invalid user state transition", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidTransition).
	WithCode(goerrors.CodeBadRequest)

// ErrTerminalState is returned when attempting to move away from a terminal status (e.g., archived).
var ErrTerminalState = goerrors.New("user state is terminal", goerrors.CategoryConflict).
	WithTextCode(textCodeTerminalState).
	WithCode(goerrors.CodeConflict)

// AccountStateMachine validates lifecycle transitions for users. Activation
// drives pending -> active; admin tooling drives the suspension and archival
// edges.
type AccountStateMachine struct {
	transitions map[UserStatus]map[UserStatus]struct{}
	now         func() time.Time
}

// StateMachineOption customizes state machine construction.
type StateMachineOption func(*AccountStateMachine)

// WithStateMachineClock injects a custom clock (useful for tests).
func WithStateMachineClock(clock func() time.Time) StateMachineOption {
	return func(sm *AccountStateMachine) {
		if clock != nil {
			sm.now = clock
		}
	}
}

// NewAccountStateMachine returns the default transition graph.
func NewAccountStateMachine(opts ...StateMachineOption) *AccountStateMachine {
	sm := &AccountStateMachine{
		transitions: map[UserStatus]map[UserStatus]struct{}{
			UserStatusPending: {
				UserStatusActive:   {},
				UserStatusDisabled: {},
			},
			UserStatusActive: {
				UserStatusSuspended: {},
				UserStatusDisabled:  {},
				UserStatusArchived:  {},
			},
			UserStatusSuspended: {
				UserStatusActive:   {},
				UserStatusDisabled: {},
			},
			UserStatusDisabled: {
				UserStatusArchived: {},
			},
		},
		now: time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(sm)
		}
	}

	return sm
}

// CanTransition reports whether from -> to is a valid edge.
func (sm *AccountStateMachine) CanTransition(from, to UserStatus) bool {
	if allowed, ok := sm.transitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}

// Transition applies the status change to the user in memory. Persistence is
// the caller's concern; the machine only guards the edges and timestamps.
func (sm *AccountStateMachine) Transition(user *User, target UserStatus) error {
	if user == nil {
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"target": target,
			"reason": "user is nil",
		})
	}

	user.EnsureStatus()
	from := user.Status

	if target == "" {
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"reason": "target status is empty",
		})
	}

	if from == target {
		return nil
	}

	if from == UserStatusArchived {
		return ErrTerminalState.WithMetadata(map[string]any{
			"from": from,
			"to":   target,
		})
	}

	if !sm.CanTransition(from, target) {
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"from": from,
			"to":   target,
		})
	}

	user.Status = target
	switch {
	case target == UserStatusSuspended:
		now := sm.now()
		user.SuspendedAt = &now
	case from == UserStatusSuspended:
		user.SuspendedAt = nil
	}

	return nil
}

// CurrentStatus returns the user's effective status.
func (sm *AccountStateMachine) CurrentStatus(user *User) UserStatus {
	if user == nil {
		return ""
	}
	user.EnsureStatus()
	return user.Status
}

// statusAuthError maps a non-authenticatable status to its auth error.
func statusAuthError(status UserStatus) error {
	switch status {
	case UserStatusSuspended:
		return ErrAccountSuspended
	case UserStatusDisabled, UserStatusArchived:
		return ErrAccountDisabled
	default:
		return nil
	}
}
