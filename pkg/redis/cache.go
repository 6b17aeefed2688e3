package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"

	"github.com/designdrip/storefront-core/pkg/enums"
)

// Query cache keyed by user and topic. Entries embed a per-topic generation
// counter in their key, so invalidating a topic is a single INCR: stale
// entries become unreachable and age out via TTL instead of being scanned
// for and deleted.

// GetJSON loads a cached value into out. The boolean reports a cache hit.
func (c *Client) GetJSON(ctx context.Context, userID string, topic enums.CacheTopic, suffix string, out any) (bool, error) {
	if c.store == nil {
		return false, errors.New("redis client not initialized")
	}

	gen, err := c.generation(ctx, userID, topic)
	if err != nil {
		return false, err
	}

	raw, err := c.store.Get(ctx, c.cacheKey(userID, topic, gen, suffix)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get: %w", err)
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("cache decode: %w", err)
	}
	return true, nil
}

// SetJSON stores a value under the topic's current generation.
func (c *Client) SetJSON(ctx context.Context, userID string, topic enums.CacheTopic, suffix string, value any, ttl time.Duration) error {
	if c.store == nil {
		return errors.New("redis client not initialized")
	}

	gen, err := c.generation(ctx, userID, topic)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	return c.store.Set(ctx, c.cacheKey(userID, topic, gen, suffix), string(raw), ttl).Err()
}

// Invalidate bumps the generation of each topic for the user. Errors are
// aggregated so one failed topic does not mask the others.
func (c *Client) Invalidate(ctx context.Context, userID string, topics ...enums.CacheTopic) error {
	if c.store == nil {
		return errors.New("redis client not initialized")
	}

	var errs error
	for _, topic := range topics {
		if err := c.store.Incr(ctx, c.generationKey(userID, topic)).Err(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("invalidate %s: %w", topic, err))
		}
	}
	return errs
}

func (c *Client) generation(ctx context.Context, userID string, topic enums.CacheTopic) (int64, error) {
	raw, err := c.store.Get(ctx, c.generationKey(userID, topic)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache generation: %w", err)
	}
	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cache generation parse: %w", err)
	}
	return gen, nil
}

func (c *Client) generationKey(userID string, topic enums.CacheTopic) string {
	return c.buildKey(generationPrefix, userID, topic.String())
}

func (c *Client) cacheKey(userID string, topic enums.CacheTopic, gen int64, suffix string) string {
	return c.buildKey(cachePrefix, userID, topic.String(), "v"+strconv.FormatInt(gen, 10), suffix)
}
