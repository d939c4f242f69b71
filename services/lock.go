package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dapp_payroll/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Locker hands out exclusive leases. Acquire fails fast with
// ErrPayrollInProgress when the key is already held.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

func payrollLockKey(employeeDID, period string) string {
	return fmt.Sprintf("payroll:lock:%s:%s", employeeDID, period)
}

type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]struct{})}
}

func (m *MemoryLocker) Acquire(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, busy := m.held[key]; busy {
		return nil, ErrPayrollInProgress
	}
	m.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.held, key)
			m.mu.Unlock()
		})
	}, nil
}

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker leases keys across processes with SET NX PX. The TTL bounds how
// long a crashed holder blocks the key.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl}
}

func (r *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.New().String()
	ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lease %s: %w", key, err)
	}
	if !ok {
		return nil, ErrPayrollInProgress
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, r.client, []string{key}, token).Err(); err != nil {
			utils.Logger.Warn("Failed to release payroll lease", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

// NewLocker uses Redis when redisURL is set and reachable, otherwise an
// in-process lock. The returned close func releases the Redis client.
func NewLocker(ctx context.Context, redisURL string, ttl time.Duration) (Locker, func() error) {
	noop := func() error { return nil }
	if redisURL == "" {
		return NewMemoryLocker(), noop
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		utils.Logger.Warn("Invalid REDIS_URL, using in-memory payroll lock", zap.Error(err))
		return NewMemoryLocker(), noop
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		utils.Logger.Warn("Redis unavailable, using in-memory payroll lock", zap.Error(err))
		_ = client.Close()
		return NewMemoryLocker(), noop
	}

	utils.Logger.Info("Using Redis payroll lock", zap.String("addr", opts.Addr))
	return NewRedisLocker(client, ttl), client.Close
}
