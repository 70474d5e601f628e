package auth_test

import (
	"regexp"
	"testing"
	"time"

	auth "github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *auth.Config {
	return &auth.Config{
		ActivationSecret: "activation-secret-for-tests",
		AccessSecret:     "access-secret-for-tests",
		RefreshSecret:    "refresh-secret-for-tests",
		ActivationTTL:    10 * time.Minute,
		AccessTTL:        300 * time.Second,
		RefreshTTL:       1200 * time.Second,
		Issuer:           "go-accounts-test",
	}
}

type staticIdentity struct {
	id    string
	email string
	role  string
}

func (s staticIdentity) ID() string       { return s.id }
func (s staticIdentity) Username() string { return s.email }
func (s staticIdentity) Email() string    { return s.email }
func (s staticIdentity) Role() string     { return s.role }

func TestNewTokenCodec(t *testing.T) {
	t.Run("creates codec from valid config", func(t *testing.T) {
		codec, err := auth.NewTokenCodec(testConfig())
		require.NoError(t, err)
		assert.NotNil(t, codec)
	})

	t.Run("rejects nil config", func(t *testing.T) {
		_, err := auth.NewTokenCodec(nil)
		assert.Error(t, err)
	})

	t.Run("rejects shared secrets", func(t *testing.T) {
		cfg := testConfig()
		cfg.RefreshSecret = cfg.AccessSecret
		_, err := auth.NewTokenCodec(cfg)
		assert.Error(t, err)
	})
}

func TestActivationTokenRoundTrip(t *testing.T) {
	codec, err := auth.NewTokenCodec(testConfig())
	require.NoError(t, err)

	pending := auth.PendingRegistration{
		FirstName: "Alice",
		Email:     "a@x.com",
		Password:  "secret1",
	}

	token, code, err := codec.IssueActivationToken(pending)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	t.Run("code is a 4-digit numeric string", func(t *testing.T) {
		assert.Regexp(t, regexp.MustCompile(`^\d{4}$`), code)
	})

	t.Run("verification returns payload and embedded code", func(t *testing.T) {
		got, embedded, err := codec.VerifyActivationToken(token)
		require.NoError(t, err)
		assert.Equal(t, pending, *got)
		assert.Equal(t, code, embedded)
	})

	t.Run("tampered token fails as invalid", func(t *testing.T) {
		_, _, err := codec.VerifyActivationToken(token + "x")
		require.Error(t, err)
		assert.False(t, auth.IsTokenExpiredError(err))
	})

	t.Run("session secret cannot verify an activation token", func(t *testing.T) {
		_, err := codec.VerifyAccessToken(token)
		assert.Error(t, err)
	})
}

func TestActivationTokenExpiry(t *testing.T) {
	cfg := testConfig()

	issued := time.Now()
	clock := issued

	codec, err := auth.NewTokenCodec(cfg, auth.WithCodecClock(func() time.Time {
		return clock
	}))
	require.NoError(t, err)

	token, _, err := codec.IssueActivationToken(auth.PendingRegistration{
		Email:    "a@x.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	t.Run("valid within TTL", func(t *testing.T) {
		clock = issued.Add(cfg.ActivationTTL - time.Minute)
		_, _, err := codec.VerifyActivationToken(token)
		assert.NoError(t, err)
	})

	t.Run("expired after TTL regardless of code correctness", func(t *testing.T) {
		clock = issued.Add(cfg.ActivationTTL + time.Minute)
		_, _, err := codec.VerifyActivationToken(token)
		require.Error(t, err)
		assert.True(t, auth.IsTokenExpiredError(err))
	})
}

func TestSessionTokenRoundTrip(t *testing.T) {
	codec, err := auth.NewTokenCodec(testConfig())
	require.NoError(t, err)

	identity := staticIdentity{id: "5f1c", email: "a@x.com", role: auth.RoleUser}

	t.Run("access token round trips the user id", func(t *testing.T) {
		token, err := codec.IssueAccessToken(identity)
		require.NoError(t, err)

		claims, err := codec.VerifyAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, identity.id, claims.UserID())
		assert.Equal(t, auth.RoleUser, claims.Role())
		assert.Equal(t, auth.TokenKindAccess, claims.Kind)
	})

	t.Run("refresh token round trips the user id", func(t *testing.T) {
		token, err := codec.IssueRefreshToken(identity)
		require.NoError(t, err)

		claims, err := codec.VerifyRefreshToken(token)
		require.NoError(t, err)
		assert.Equal(t, identity.id, claims.UserID())
		assert.Equal(t, auth.TokenKindRefresh, claims.Kind)
	})

	t.Run("access token fails verification with refresh secret", func(t *testing.T) {
		token, err := codec.IssueAccessToken(identity)
		require.NoError(t, err)

		_, err = codec.VerifyRefreshToken(token)
		require.Error(t, err)
		assert.False(t, auth.IsTokenExpiredError(err))
	})

	t.Run("refresh token fails verification with access secret", func(t *testing.T) {
		token, err := codec.IssueRefreshToken(identity)
		require.NoError(t, err)

		_, err = codec.VerifyAccessToken(token)
		assert.Error(t, err)
	})

	t.Run("nil identity is rejected", func(t *testing.T) {
		_, err := codec.IssueAccessToken(nil)
		assert.Error(t, err)
	})
}

func TestAccessTokenExpiry(t *testing.T) {
	cfg := testConfig()

	issued := time.Now()
	clock := issued

	codec, err := auth.NewTokenCodec(cfg, auth.WithCodecClock(func() time.Time {
		return clock
	}))
	require.NoError(t, err)

	token, err := codec.IssueAccessToken(staticIdentity{id: "u1", role: auth.RoleUser})
	require.NoError(t, err)

	clock = issued.Add(cfg.AccessTTL + time.Second)
	_, err = codec.VerifyAccessToken(token)
	require.Error(t, err)
	assert.True(t, auth.IsTokenExpiredError(err))
}
