package trust

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/agentralabs/agentic-identity/pkg/xerrors"
)

// UseCounter tracks a grant's current_uses across processes. The core
// trust engine never calls this itself — VerifyGrant takes currentUses as
// a plain argument (spec.md's non-goal: no revocation/use-count
// distribution network built into the core) — this is a storage-layer
// convenience a host may wire in front of VerifyGrant.
type UseCounter interface {
	Increment(ctx context.Context, trustID string) (uint64, error)
	Get(ctx context.Context, trustID string) (uint64, error)
}

// RedisUseCounter is an optional UseCounter backed by a single Redis
// integer key per trust grant. It is not a revocation feed — see
// spec.md §9 Open Question (1) — only a shared counter for max_uses
// enforcement when a grant is checked from more than one process.
type RedisUseCounter struct {
	client *redis.Client
	prefix string
}

// NewRedisUseCounter opens a use counter against an existing Redis client.
// prefix namespaces keys (e.g. "agentic-identity:uses:") so the counter can
// share a Redis instance with unrelated data.
func NewRedisUseCounter(client *redis.Client, prefix string) *RedisUseCounter {
	return &RedisUseCounter{client: client, prefix: prefix}
}

func (c *RedisUseCounter) key(trustID string) string {
	return c.prefix + trustID
}

// Increment atomically bumps and returns the new use count for trustID.
func (c *RedisUseCounter) Increment(ctx context.Context, trustID string) (uint64, error) {
	const op = "trust.RedisUseCounter.Increment"
	n, err := c.client.Incr(ctx, c.key(trustID)).Result()
	if err != nil {
		return 0, xerrors.Wrap(xerrors.KindStorage, op, err)
	}
	return uint64(n), nil
}

// Get returns the current use count for trustID, 0 if never incremented.
func (c *RedisUseCounter) Get(ctx context.Context, trustID string) (uint64, error) {
	const op = "trust.RedisUseCounter.Get"
	n, err := c.client.Get(ctx, c.key(trustID)).Uint64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, xerrors.Wrap(xerrors.KindStorage, op, err)
	}
	return n, nil
}
