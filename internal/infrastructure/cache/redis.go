package cache

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "juvenat:"

func OpenRedis(addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}

// Key namespaces a redis key, e.g. Key("idle", "42") -> "juvenat:idle:42".
func Key(parts ...string) string {
	return keyPrefix + strings.Join(parts, ":")
}
