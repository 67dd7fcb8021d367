package auth

import (
	"context"
	"time"

	"threadvote/internal/config"
	"threadvote/internal/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	revokedKeyPrefix    = "session:revoked:"
	redisCommandTimeout = 2 * time.Second
)

// RevocationStore remembers logged-out session ids until their cookies would have expired.
type RevocationStore interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// RedisRevocations keeps revoked ids as keys with a TTL, shared by every process.
type RedisRevocations struct {
	client *redis.Client
}

func NewRedisRevocations(client *redis.Client) *RedisRevocations {
	return &RedisRevocations{client: client}
}

func (r *RedisRevocations) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, redisCommandTimeout)
	defer cancel()
	return r.client.Set(ctx, revokedKeyPrefix+sessionID, "1", ttl).Err()
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, redisCommandTimeout)
	defer cancel()
	n, err := r.client.Exists(ctx, revokedKeyPrefix+sessionID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryRevocations is the single-process fallback. Ids are forgotten only once they
// expire, and no id outlives maxAge, the longest a session cookie can be valid.
type MemoryRevocations struct {
	cache *utils.TTLCache
}

func NewMemoryRevocations(maxAge time.Duration) *MemoryRevocations {
	return &MemoryRevocations{cache: utils.NewTTLCache(maxAge)}
}

func (m *MemoryRevocations) Revoke(_ context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.cache.Set(sessionID, true, ttl)
	return nil
}

func (m *MemoryRevocations) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	return m.cache.Get(sessionID) != nil, nil
}

// NewRevocationStore uses Redis when an address is configured and reachable,
// otherwise an in-process cache. The returned close func releases the Redis client.
func NewRevocationStore(ctx context.Context, cfg config.RedisConfig, maxAge time.Duration, log *zap.Logger) (RevocationStore, func() error) {
	noop := func() error { return nil }
	if cfg.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.Addr,
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  3 * time.Second,
			ReadTimeout:  redisCommandTimeout,
			WriteTimeout: redisCommandTimeout,
		})
		pingCtx, cancel := context.WithTimeout(ctx, redisCommandTimeout)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			log.Info("session revocations stored in redis", zap.String("addr", cfg.Addr))
			return NewRedisRevocations(client), client.Close
		}
		log.Warn("redis unreachable, falling back to in-memory session revocations",
			zap.String("addr", cfg.Addr), zap.Error(err))
		_ = client.Close()
	}

	return NewMemoryRevocations(maxAge), noop
}
