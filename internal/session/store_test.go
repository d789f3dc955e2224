package session

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	if revoked, _ := s.IsRevoked(ctx, "a"); revoked {
		t.Fatal("IsRevoked(a) = true before Revoke")
	}
	if err := s.Revoke(ctx, "a", now.Add(time.Hour)); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if err := s.Revoke(ctx, "stale", now.Add(-time.Second)); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if revoked, _ := s.IsRevoked(ctx, "a"); !revoked {
		t.Error("IsRevoked(a) = false after Revoke")
	}
	if revoked, _ := s.IsRevoked(ctx, "stale"); revoked {
		t.Error("already-expired token should not be tracked")
	}

	now = now.Add(2 * time.Hour)
	if revoked, _ := s.IsRevoked(ctx, "a"); revoked {
		t.Error("IsRevoked(a) = true after the token expired")
	}
	if err := s.Revoke(ctx, "b", now.Add(time.Minute)); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want expired entries pruned", s.Len())
	}
}

func TestRedisStore_Unreachable(t *testing.T) {
	t.Parallel()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer func() { _ = client.Close() }()

	s := NewRedisStore(client)
	if _, err := s.IsRevoked(context.Background(), "x"); err == nil {
		t.Error("IsRevoked() against an unreachable server returned no error")
	}
	if err := s.Revoke(context.Background(), "x", time.Now().Add(-time.Minute)); err != nil {
		t.Errorf("Revoke() of an expired token should not touch Redis, got %v", err)
	}
}

func TestConnect_InvalidURL(t *testing.T) {
	t.Parallel()
	if _, err := Connect(context.Background(), "not a url"); err == nil {
		t.Error("Connect() with an invalid URL returned no error")
	}
}
