package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"
)

// DefaultSessionKeyPrefix namespaces session entries in Redis.
const DefaultSessionKeyPrefix = "auth:session"

// RedisSessionCache stores session snapshots in Redis, one key per user,
// last-write-wins. Entries expire with the refresh-token TTL so a stale
// snapshot never outlives the last credential that references it.
type RedisSessionCache struct {
	rc     *redis.Client
	prefix string
	ttl    time.Duration
}

var _ SessionCache = (*RedisSessionCache)(nil)

// RedisSessionCacheOption customizes cache construction.
type RedisSessionCacheOption func(*RedisSessionCache)

// WithSessionKeyPrefix overrides the key namespace.
func WithSessionKeyPrefix(prefix string) RedisSessionCacheOption {
	return func(c *RedisSessionCache) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithSessionTTL overrides the entry TTL. Zero disables expiry.
func WithSessionTTL(ttl time.Duration) RedisSessionCacheOption {
	return func(c *RedisSessionCache) {
		c.ttl = ttl
	}
}

// NewRedisSessionCache creates a Redis-backed SessionCache.
func NewRedisSessionCache(rc *redis.Client, opts ...RedisSessionCacheOption) *RedisSessionCache {
	cache := &RedisSessionCache{
		rc:     rc,
		prefix: DefaultSessionKeyPrefix,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(cache)
		}
	}

	return cache
}

// NewRedisSessionCacheFromConfig dials Redis using the shared Config and sets
// the entry TTL to the refresh-token TTL.
func NewRedisSessionCacheFromConfig(cfg *Config, opts ...RedisSessionCacheOption) *RedisSessionCache {
	rc := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	opts = append([]RedisSessionCacheOption{WithSessionTTL(cfg.RefreshTTL)}, opts...)
	return NewRedisSessionCache(rc, opts...)
}

func (c *RedisSessionCache) key(userID string) string {
	return fmt.Sprintf("%s:%s", c.prefix, userID)
}

// Set overwrites the snapshot for the user.
func (c *RedisSessionCache) Set(ctx context.Context, userID string, session *SessionObject) error {
	if c.rc == nil {
		return goerrors.New("redis client is nil, cannot set session", goerrors.CategoryInternal)
	}

	bytes, err := json.Marshal(session)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to marshal session snapshot")
	}

	if err := c.rc.Set(ctx, c.key(userID), bytes, c.ttl).Err(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to write session snapshot")
	}

	return nil
}

// Get returns the snapshot for the user, or (nil, nil) on a miss.
func (c *RedisSessionCache) Get(ctx context.Context, userID string) (*SessionObject, error) {
	if c.rc == nil {
		return nil, goerrors.New("redis client is nil, cannot get session", goerrors.CategoryInternal)
	}

	result, err := c.rc.Get(ctx, c.key(userID)).Result()
	if err != nil {
		if goerrors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read session snapshot")
	}

	session := &SessionObject{}
	if err := json.Unmarshal([]byte(result), session); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to unmarshal session snapshot")
	}

	return session, nil
}

// Delete removes the snapshot for the user.
func (c *RedisSessionCache) Delete(ctx context.Context, userID string) error {
	if c.rc == nil {
		return goerrors.New("redis client is nil, cannot delete session", goerrors.CategoryInternal)
	}

	if err := c.rc.Del(ctx, c.key(userID)).Err(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete session snapshot")
	}

	return nil
}

// MemorySessionCache is a process-local SessionCache for tests and
// single-process deployments.
type MemorySessionCache struct {
	mu      sync.RWMutex
	entries map[string]*SessionObject
}

var _ SessionCache = (*MemorySessionCache)(nil)

// NewMemorySessionCache creates an empty in-memory cache.
func NewMemorySessionCache() *MemorySessionCache {
	return &MemorySessionCache{
		entries: map[string]*SessionObject{},
	}
}

func (c *MemorySessionCache) Set(_ context.Context, userID string, session *SessionObject) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = session
	return nil
}

func (c *MemorySessionCache) Get(_ context.Context, userID string) (*SessionObject, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	session, ok := c.entries[userID]
	if !ok {
		return nil, nil
	}
	return session, nil
}

func (c *MemorySessionCache) Delete(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	return nil
}

// Len reports the number of cached sessions.
func (c *MemorySessionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
