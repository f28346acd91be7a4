package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flocknet/flock/pkg/config"
)

func TestNamespaceKey(t *testing.T) {
	c := &Cache{}

	tests := []struct {
		key      string
		expected string
	}{
		{"revoked:abc", "flock:revoked:abc"},
		{"", "flock:"},
		{"already:namespaced", "flock:already:namespaced"},
	}

	for _, tt := range tests {
		if got := c.namespaceKey(tt.key); got != tt.expected {
			t.Errorf("namespaceKey(%q) = %q, want %q", tt.key, got, tt.expected)
		}
	}
}

func TestDisabledCacheIsNilAndSafe(t *testing.T) {
	c, err := New(&config.RedisConfig{Enabled: false})
	if err != nil {
		t.Fatalf("New with disabled cache: %v", err)
	}
	if c != nil {
		t.Fatal("disabled cache should be nil")
	}

	ctx := context.Background()

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("Get on nil cache = %v, want ErrCacheDisabled", err)
	}
	if err := c.Set(ctx, "k", "v", time.Minute); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("Set on nil cache = %v, want ErrCacheDisabled", err)
	}
	if err := c.Delete(ctx, "k"); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("Delete on nil cache = %v, want ErrCacheDisabled", err)
	}
	if _, err := c.Exists(ctx, "k"); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("Exists on nil cache = %v, want ErrCacheDisabled", err)
	}
	if err := c.Health(ctx); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("Health on nil cache = %v, want ErrCacheDisabled", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close on nil cache = %v, want nil", err)
	}
}

func TestNewRejectsMalformedURL(t *testing.T) {
	_, err := New(&config.RedisConfig{Enabled: true, URL: "not-a-redis-url"})
	if err == nil {
		t.Fatal("expected error for malformed URL")
	}
}
