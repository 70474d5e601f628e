package auth_test

import (
	"testing"
	"time"

	auth "github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	sm := auth.NewAccountStateMachine()

	allowed := [][2]auth.UserStatus{
		{auth.UserStatusPending, auth.UserStatusActive},
		{auth.UserStatusActive, auth.UserStatusSuspended},
		{auth.UserStatusActive, auth.UserStatusDisabled},
		{auth.UserStatusSuspended, auth.UserStatusActive},
		{auth.UserStatusDisabled, auth.UserStatusArchived},
	}
	for _, pair := range allowed {
		assert.True(t, sm.CanTransition(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}

	denied := [][2]auth.UserStatus{
		{auth.UserStatusPending, auth.UserStatusSuspended},
		{auth.UserStatusArchived, auth.UserStatusActive},
		{auth.UserStatusSuspended, auth.UserStatusArchived},
	}
	for _, pair := range denied {
		assert.False(t, sm.CanTransition(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}
}

func TestTransition(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sm := auth.NewAccountStateMachine(auth.WithStateMachineClock(func() time.Time {
		return now
	}))

	t.Run("suspend stamps SuspendedAt", func(t *testing.T) {
		user := &auth.User{Status: auth.UserStatusActive}

		require.NoError(t, sm.Transition(user, auth.UserStatusSuspended))
		assert.Equal(t, auth.UserStatusSuspended, user.Status)
		require.NotNil(t, user.SuspendedAt)
		assert.Equal(t, now, *user.SuspendedAt)

		require.NoError(t, sm.Transition(user, auth.UserStatusActive))
		assert.Nil(t, user.SuspendedAt)
	})

	t.Run("archived is terminal", func(t *testing.T) {
		user := &auth.User{Status: auth.UserStatusDisabled}
		require.NoError(t, sm.Transition(user, auth.UserStatusArchived))

		err := sm.Transition(user, auth.UserStatusActive)
		require.Error(t, err)
		assertTextCode(t, err, "TERMINAL_USER_STATE")
	})

	t.Run("invalid transition is rejected", func(t *testing.T) {
		user := &auth.User{Status: auth.UserStatusPending}
		err := sm.Transition(user, auth.UserStatusSuspended)
		require.Error(t, err)
		assertTextCode(t, err, "INVALID_USER_STATE_TRANSITION")
		assert.Equal(t, auth.UserStatusPending, user.Status)
	})

	t.Run("empty status is treated as active", func(t *testing.T) {
		user := &auth.User{}
		assert.Equal(t, auth.UserStatusActive, sm.CurrentStatus(user))
		require.NoError(t, sm.Transition(user, auth.UserStatusSuspended))
	})
}
