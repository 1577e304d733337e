package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestRedisCacheRetriesUntilContextExpires(t *testing.T) {
	// Nothing listens on port 1; every attempt fails fast with a
	// retryable connection error, so the backoff wait is what observes
	// the context deadline.
	c := &RedisCache{client: redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 10 * time.Millisecond,
		MaxRetries:  -1,
	})}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, found, err := c.Get(ctx, "k")
	if found {
		t.Error("Get() reported a hit from an unreachable backend")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Get() error = %v, want context.DeadlineExceeded from the retry wait", err)
	}

	ctx2, cancel2 := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel2()
	if err := c.Set(ctx2, "k", []byte("v"), 0); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Set() error = %v, want context.DeadlineExceeded from the retry wait", err)
	}
}
