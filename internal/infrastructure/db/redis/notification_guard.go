package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const guardTTL = 24 * time.Hour

// NotificationGuard records notification attempts so each one is sent at
// most once, even across instances.
// Key format: notify:<kind>:<lead_id|event_id>
type NotificationGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewNotificationGuard(client *redis.Client) *NotificationGuard {
	return &NotificationGuard{client: client, ttl: guardTTL}
}

// Claim marks key as attempted. It returns false if key was already claimed.
func (g *NotificationGuard) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(key), "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("notification guard: %w", err)
	}
	return ok, nil
}

func (g *NotificationGuard) key(k string) string {
	return "notify:" + k
}
