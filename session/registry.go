package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrSessionNotFound = errors.New("session not found")

// Registry remembers which user a live session id belongs to. Removing an
// entry revokes every token carrying that session id.
type Registry interface {
	Put(ctx context.Context, sid string, userID string, ttl time.Duration) error
	// Get returns ErrSessionNotFound for unknown or expired sessions.
	Get(ctx context.Context, sid string) (string, error)
	Delete(ctx context.Context, sid string) error
}

const (
	sessionKeyPrefix = "session"
	keyDelimiter     = "__"
)

type RedisRegistry struct {
	inner *redis.Client
}

// GetRedisRegistry connects to the redis instance configured by env and
// fails fast when it's not reachable.
func GetRedisRegistry(ctx context.Context) (*RedisRegistry, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
		Password: os.Getenv("REDIS_PASSWD"),
		DB:       0, // use default DB
	})
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		return nil, err
	}
	return NewRedisRegistry(redisClient), nil
}

func NewRedisRegistry(client *redis.Client) *RedisRegistry {
	return &RedisRegistry{inner: client}
}

func encodeSessionKey(sid string) (string, error) {
	if sid == "" || strings.Contains(sid, keyDelimiter) {
		return "", fmt.Errorf("invalid session id: %q", sid)
	}
	return sessionKeyPrefix + keyDelimiter + sid, nil
}

func (r *RedisRegistry) Put(ctx context.Context, sid string, userID string, ttl time.Duration) error {
	key, err := encodeSessionKey(sid)
	if err != nil {
		return err
	}
	return r.inner.Set(ctx, key, userID, ttl).Err()
}

func (r *RedisRegistry) Get(ctx context.Context, sid string) (string, error) {
	key, err := encodeSessionKey(sid)
	if err != nil {
		return "", ErrSessionNotFound
	}
	userID, err := r.inner.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrSessionNotFound
	}
	return userID, err
}

func (r *RedisRegistry) Delete(ctx context.Context, sid string) error {
	key, err := encodeSessionKey(sid)
	if err != nil {
		return nil
	}
	return r.inner.Del(ctx, key).Err()
}

type memoryEntry struct {
	userID    string
	expiresAt time.Time
}

// MemoryRegistry is an in process Registry for tests and single instance
// development runs. Expired entries are dropped on read and swept on every
// Put.
type MemoryRegistry struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{entries: map[string]memoryEntry{}, now: time.Now}
}

func (r *MemoryRegistry) Put(ctx context.Context, sid string, userID string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for id, e := range r.entries {
		if !now.Before(e.expiresAt) {
			delete(r.entries, id)
		}
	}
	r.entries[sid] = memoryEntry{userID: userID, expiresAt: now.Add(ttl)}
	return nil
}

func (r *MemoryRegistry) Get(ctx context.Context, sid string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sid]
	if !ok {
		return "", ErrSessionNotFound
	}
	if !r.now().Before(e.expiresAt) {
		delete(r.entries, sid)
		return "", ErrSessionNotFound
	}
	return e.userID, nil
}

func (r *MemoryRegistry) Delete(ctx context.Context, sid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, sid)
	return nil
}
