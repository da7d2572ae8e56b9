package utils

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTicketLock serializes lifecycle mutations per ticket identity
// across processes using SETNX with a TTL, the same shape as seat
// locking. The TTL caps how long a crashed holder can block a ticket.
type RedisTicketLock struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewRedisTicketLock(redisClient *redis.Client, ttl time.Duration) *RedisTicketLock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisTicketLock{Redis: redisClient, TTL: ttl}
}

// Acquire takes the per-ticket lock. The returned func releases it.
func (l *RedisTicketLock) Acquire(ctx context.Context, ticketID string) (func(), error) {
	key := fmt.Sprintf("nft:lock:%s", ticketID)

	ok, err := l.Redis.SetNX(ctx, key, time.Now().Unix(), l.TTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire ticket lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("ticket %s is locked by another operation", ticketID)
	}

	return func() {
		l.Redis.Del(context.Background(), key)
	}, nil
}

// MemoryTicketLock is the in-process equivalent for tests and
// single-node development runs.
type MemoryTicketLock struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryTicketLock() *MemoryTicketLock {
	return &MemoryTicketLock{held: make(map[string]struct{})}
}

func (l *MemoryTicketLock) Acquire(_ context.Context, ticketID string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[ticketID]; busy {
		return nil, fmt.Errorf("ticket %s is locked by another operation", ticketID)
	}
	l.held[ticketID] = struct{}{}

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, ticketID)
	}, nil
}
