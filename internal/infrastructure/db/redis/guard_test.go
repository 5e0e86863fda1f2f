package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestGuard(t *testing.T, ttl time.Duration) (*RegistrationGuard, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRegistrationGuard(client, ttl), srv
}

func TestGuardKey(t *testing.T) {
	if got := guardKey("alice@example.com"); got != "register:alice@example.com" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestNewRegistrationGuard_DefaultTTL(t *testing.T) {
	g := NewRegistrationGuard(nil, 0)
	if g.ttl != defaultGuardTTL {
		t.Fatalf("expected default ttl %v, got %v", defaultGuardTTL, g.ttl)
	}
}

func TestRegistrationGuard_AcquireRelease(t *testing.T) {
	g, srv := newTestGuard(t, time.Minute)
	ctx := context.Background()

	token, ok, err := g.Acquire(ctx, "alice@example.com")
	if err != nil || !ok || token == "" {
		t.Fatalf("first acquire: token=%q ok=%v err=%v", token, ok, err)
	}
	if ttl := srv.TTL("register:alice@example.com"); ttl != time.Minute {
		t.Fatalf("expected guard ttl of 1m, got %v", ttl)
	}

	if _, ok, err := g.Acquire(ctx, "alice@example.com"); err != nil || ok {
		t.Fatalf("second acquire should be refused: ok=%v err=%v", ok, err)
	}

	if err := g.Release(ctx, "alice@example.com", token); err != nil {
		t.Fatalf("release: %v", err)
	}
	if srv.Exists("register:alice@example.com") {
		t.Fatalf("guard key should be gone after release")
	}
	if _, ok, _ := g.Acquire(ctx, "alice@example.com"); !ok {
		t.Fatalf("email should be free after release")
	}
}

func TestRegistrationGuard_StaleReleaseKeepsNewHolder(t *testing.T) {
	g, srv := newTestGuard(t, time.Second)
	ctx := context.Background()

	stale, ok, err := g.Acquire(ctx, "alice@example.com")
	if err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}
	srv.FastForward(2 * time.Second)

	current, ok, err := g.Acquire(ctx, "alice@example.com")
	if err != nil || !ok {
		t.Fatalf("acquire after expiry: ok=%v err=%v", ok, err)
	}

	if err := g.Release(ctx, "alice@example.com", stale); err != nil {
		t.Fatalf("stale release: %v", err)
	}
	got, err := srv.Get("register:alice@example.com")
	if err != nil || got != current {
		t.Fatalf("current holder lost its guard: value=%q err=%v", got, err)
	}
}

func TestRegistrationGuard_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	g := NewRegistrationGuard(client, time.Second)

	_, ok, err := g.Acquire(context.Background(), "alice@example.com")
	if err == nil {
		t.Fatalf("expected error from unreachable redis")
	}
	if ok {
		t.Fatalf("acquire must not succeed on error")
	}
	if err := g.Release(context.Background(), "alice@example.com", "token"); err == nil {
		t.Fatalf("expected release error from unreachable redis")
	}
}
