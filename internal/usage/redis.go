package usage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Ame-28/AI-Vision-Analyzer/internal/identity"
	"github.com/Ame-28/AI-Vision-Analyzer/internal/storage"
)

// consumeScript performs check-then-increment as a single Redis call,
// which makes TryConsume linearizable per identity across gateway
// replicas. A negative limit means unlimited: always increment, always
// admit.
var consumeScript = redis.NewScript(`
local used = tonumber(redis.call('GET', KEYS[1]) or '0')
local limit = tonumber(ARGV[1])
if limit < 0 or used < limit then
	return {1, redis.call('INCR', KEYS[1])}
end
return {0, used}
`)

// Redis is the Store backed by a shared Redis instance, for running
// more than one gateway process against the same quota state.
type Redis struct {
	client *storage.RedisClient
}

var _ Store = (*Redis)(nil)

func NewRedis(client *storage.RedisClient) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Peek(ctx context.Context, id identity.Identity) (int64, error) {
	val, err := r.client.Client().Get(ctx, usageKey(id)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("usage: redis peek: %w", err)
	}
	return val, nil
}

func (r *Redis) TryConsume(ctx context.Context, id identity.Identity, limit int64) (Decision, error) {
	res, err := consumeScript.Run(ctx, r.client.Client(), []string{usageKey(id)}, limit).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("usage: redis consume: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("usage: redis consume: unexpected script reply %v", res)
	}

	return Decision{Admitted: res[0] == 1, Used: res[1]}, nil
}

func (r *Redis) Reset(ctx context.Context, id identity.Identity) error {
	if err := r.client.Del(ctx, usageKey(id)); err != nil {
		return fmt.Errorf("usage: redis reset: %w", err)
	}
	return nil
}

func usageKey(id identity.Identity) string {
	return fmt.Sprintf("usage:analyses:%s", id)
}
