// Package digestcache remembers the digest observed for every
// (namespace, epoch) so a later run can detect equivocation: the same
// height attested with a different digest.
package digestcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"plexi/internal/domain"
)

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// observeScript stores the digest if the slot is empty and returns
// whatever was there before, in one round trip.
var observeScript = redis.NewScript(`
local existing = redis.call("GET", KEYS[1])
if existing then
  return existing
end
redis.call("SET", KEYS[1], ARGV[1])
if tonumber(ARGV[2]) > 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return ""
`)

func NewRedisStore(addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{client: client, ttl: ttl}, nil
}

// Observe records the digest for (namespace, epoch). If a different
// digest was already recorded at that height it returns ErrEquivocation
// together with the previously seen digest.
func (s *RedisStore) Observe(ctx context.Context, namespace string, epoch domain.Epoch, digest domain.Digest) (domain.Digest, error) {
	key := fmt.Sprintf("plexi:seen:%s:%s", namespace, epoch)
	result, err := observeScript.Run(ctx, s.client, []string{key}, digest.String(), s.ttl.Milliseconds()).Text()
	if err != nil {
		return domain.Digest{}, err
	}
	if result == "" {
		return digest, nil
	}
	prior, err := domain.ParseDigest(result)
	if err != nil {
		return domain.Digest{}, fmt.Errorf("corrupt cache entry for %s: %w", key, err)
	}
	if !prior.Equal(digest) {
		return prior, fmt.Errorf("%w: %s epoch %s: saw %s, now %s",
			domain.ErrEquivocation, namespace, epoch, prior, digest)
	}
	return prior, nil
}
