package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestNewRedisCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := NewRedisCache(ctx, RedisOptions{Addr: "127.0.0.1:1"}); err == nil {
		t.Error("NewRedisCache should fail when Redis is unreachable")
	}
}

// TestRedisCache runs against a live server when TOPOVIZ_TEST_REDIS is set.
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("TOPOVIZ_TEST_REDIS")
	if addr == "" {
		t.Skip("TOPOVIZ_TEST_REDIS not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisOptions{Addr: addr, Prefix: "topoviz-test:"})
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry should be gone after Delete")
	}
}
