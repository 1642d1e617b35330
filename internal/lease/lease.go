// Package lease provides short-lived per-club locks that keep two sync cycles
// of the same club from fetching the bank at once.
package lease

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"club-recon/pkg/logger"
)

// ErrHeld is returned when another holder owns the lease.
var ErrHeld = errors.New("lease held by another owner")

type Manager interface {
	// Acquire takes the lease for key and returns a release func.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// releaseScript deletes the key only when the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisManager struct {
	client *redis.Client
	prefix string
}

func NewRedisManager(client *redis.Client, prefix string) *RedisManager {
	return &RedisManager{client: client, prefix: prefix}
}

func (m *RedisManager) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	fullKey := m.prefix + key
	token := uuid.New().String()

	ok, err := m.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lease %s: %w", fullKey, err)
	}
	if !ok {
		return nil, ErrHeld
	}

	return func() {
		// release with a fresh context so a cancelled cycle still frees the lease
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		m.release(releaseCtx, fullKey, token)
	}, nil
}

// release frees fullKey if token still owns it. A failure is logged; the
// lease then lapses after its TTL.
func (m *RedisManager) release(ctx context.Context, fullKey, token string) error {
	err := releaseScript.Run(ctx, m.client, []string{fullKey}, token).Err()
	if err != nil {
		logger.GetLogger().WithError(err).WithField("lease", fullKey).Warn("Failed to release sync lease")
	}
	return err
}

// LocalManager keeps leases in process memory. It is used when Redis is not
// configured.
type LocalManager struct {
	mu     sync.Mutex
	leases map[string]time.Time
	now    func() time.Time
}

func NewLocalManager() *LocalManager {
	return &LocalManager{leases: make(map[string]time.Time), now: time.Now}
}

func (m *LocalManager) Acquire(_ context.Context, key string, ttl time.Duration) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if until, ok := m.leases[key]; ok && now.Before(until) {
		return nil, ErrHeld
	}
	until := now.Add(ttl)
	m.leases[key] = until

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.leases[key].Equal(until) {
			delete(m.leases, key)
		}
	}, nil
}
