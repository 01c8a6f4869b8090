package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestNotificationGuard_ClaimOnce(t *testing.T) {
	mr, client := newTestClient(t)
	g := NewNotificationGuard(client)
	ctx := context.Background()

	ok, err := g.Claim(ctx, "admin_notice:l1")
	if err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}
	ok, err = g.Claim(ctx, "admin_notice:l1")
	if err != nil || ok {
		t.Fatalf("second claim must be refused: ok=%v err=%v", ok, err)
	}
	ok, err = g.Claim(ctx, "visitor_confirmation:l1")
	if err != nil || !ok {
		t.Fatalf("other key: ok=%v err=%v", ok, err)
	}

	if ttl := mr.TTL("notify:admin_notice:l1"); ttl != guardTTL {
		t.Fatalf("expected ttl %s, got %s", guardTTL, ttl)
	}
}

func TestNotificationGuard_RedisDown(t *testing.T) {
	mr, client := newTestClient(t)
	g := NewNotificationGuard(client)
	mr.Close()

	ok, err := g.Claim(context.Background(), "lead_event:n1")
	if err == nil || ok {
		t.Fatalf("expected error without claim, got ok=%v err=%v", ok, err)
	}
}

func TestRateLimitStore_Allow(t *testing.T) {
	mr, client := newTestClient(t)
	s := NewRateLimitStore(client, "contact", 2, time.Minute)
	now := time.Date(2026, 3, 1, 10, 0, 10, 0, time.UTC)
	s.now = func() time.Time { return now }

	for i, want := range []bool{true, true, false, false} {
		got, err := s.Allow("10.0.0.1")
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("call %d: expected %v, got %v", i, want, got)
		}
	}

	if got, _ := s.Allow("10.0.0.2"); !got {
		t.Fatal("another client must have its own counter")
	}

	if ttl := mr.TTL(s.key("10.0.0.1", now)); ttl != time.Minute {
		t.Fatalf("expected window ttl 1m, got %s", ttl)
	}

	now = now.Add(time.Minute)
	if got, _ := s.Allow("10.0.0.1"); !got {
		t.Fatal("counter must reset in the next window")
	}
}

func TestRateLimitStore_FailsOpen(t *testing.T) {
	mr, client := newTestClient(t)
	s := NewRateLimitStore(client, "contact", 1, time.Minute)
	mr.Close()

	allowed, err := s.Allow("10.0.0.1")
	if !allowed {
		t.Fatal("requests must be allowed while redis is unreachable")
	}
	if err == nil {
		t.Fatal("expected the redis error to be reported")
	}
}
