package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ukydev/fleet-insights/internal/models"
)

// DedupWindow is how long an alert for the same vehicle and kind is suppressed.
const DedupWindow = 5 * time.Minute

// Deduper decides whether an alert was already sent recently.
type Deduper interface {
	// Claim records the alert and reports whether it is new.
	Claim(ctx context.Context, vehicleCode string, kind models.AlertKind) (bool, error)
}

func dedupKey(vehicleCode string, kind models.AlertKind) string {
	return fmt.Sprintf("alert:%s:%s", vehicleCode, kind)
}

// RedisDeduper keeps dedup keys in Redis with a TTL.
type RedisDeduper struct {
	client *redis.Client
	window time.Duration
}

// NewRedisDeduper connects to Redis and verifies the connection.
func NewRedisDeduper(ctx context.Context, addr, password string, db int) (*RedisDeduper, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisDeduper{client: client, window: DedupWindow}, nil
}

// Claim sets the key only if absent so concurrent watchers agree on one sender.
func (r *RedisDeduper) Claim(ctx context.Context, vehicleCode string, kind models.AlertKind) (bool, error) {
	ok, err := r.client.SetNX(ctx, dedupKey(vehicleCode, kind), "1", r.window).Result()
	if err != nil {
		return false, fmt.Errorf("dedup claim failed: %w", err)
	}
	return ok, nil
}

// Close closes the Redis client.
func (r *RedisDeduper) Close() error {
	return r.client.Close()
}

// MemoryDeduper is an in-process Deduper used when Redis is not configured.
type MemoryDeduper struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	window time.Duration
	now    func() time.Time
}

// NewMemoryDeduper creates an in-process deduper.
func NewMemoryDeduper(window time.Duration) *MemoryDeduper {
	return &MemoryDeduper{seen: make(map[string]time.Time), window: window, now: time.Now}
}

// Claim reports whether the alert is new within the window.
func (m *MemoryDeduper) Claim(_ context.Context, vehicleCode string, kind models.AlertKind) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, exp := range m.seen {
		if !now.Before(exp) {
			delete(m.seen, k)
		}
	}
	key := dedupKey(vehicleCode, kind)
	if _, ok := m.seen[key]; ok {
		return false, nil
	}
	m.seen[key] = now.Add(m.window)
	return true, nil
}
