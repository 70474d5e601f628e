package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCacheKey(t *testing.T) {
	cache := NewRedisSessionCache(nil)
	assert.Equal(t, "auth:session:abc-123", cache.key("abc-123"))

	cache = NewRedisSessionCache(nil, WithSessionKeyPrefix("tenant:sessions"))
	assert.Equal(t, "tenant:sessions:abc-123", cache.key("abc-123"))
}

func TestRedisSessionCacheNilClient(t *testing.T) {
	ctx := context.Background()
	cache := NewRedisSessionCache(nil)

	assert.Error(t, cache.Set(ctx, "u1", &SessionObject{UserID: "u1"}))
	_, err := cache.Get(ctx, "u1")
	assert.Error(t, err)
	assert.Error(t, cache.Delete(ctx, "u1"))
}

func TestMemorySessionCache(t *testing.T) {
	ctx := context.Background()
	cache := NewMemorySessionCache()

	t.Run("miss returns nil nil", func(t *testing.T) {
		session, err := cache.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "u1", &SessionObject{UserID: "u1", Email: "a@x.com"}))

		session, err := cache.Get(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, "a@x.com", session.Email)
		assert.Equal(t, 1, cache.Len())
	})

	t.Run("last write wins per user", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "u1", &SessionObject{UserID: "u1", Email: "b@x.com"}))

		session, err := cache.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "b@x.com", session.Email)
		assert.Equal(t, 1, cache.Len())
	})

	t.Run("delete removes the entry", func(t *testing.T) {
		require.NoError(t, cache.Delete(ctx, "u1"))

		session, err := cache.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Nil(t, session)
		assert.Equal(t, 0, cache.Len())
	})
}
