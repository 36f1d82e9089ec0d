package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agriconnect/user-service/internal/core/domain"
	"github.com/agriconnect/user-service/internal/core/ports"
	"github.com/agriconnect/user-service/internal/pkg/metrics"
)

const defaultCacheTTL = 5 * time.Minute

var errGenerationMoved = errors.New("account invalidated since lookup")

// AccountCache stores JSON snapshots of accounts keyed by id.
// Key format: account:<id>, generation counter: account:<id>:gen
//
// Snapshots never include the password hash (domain.Account omits it from JSON).
type AccountCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.AccountCache = (*AccountCache)(nil)

// NewAccountCache creates an AccountCache. A non-positive ttl falls back to
// defaultCacheTTL.
func NewAccountCache(client *redis.Client, ttl time.Duration) *AccountCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &AccountCache{client: client, ttl: ttl}
}

// Get returns the cached account for id together with the current
// generation. A miss reports ok=false with a nil error.
func (c *AccountCache) Get(ctx context.Context, id string) (*domain.Account, int64, bool, error) {
	vals, err := c.client.MGet(ctx, c.key(id), c.genKey(id)).Result()
	if err != nil {
		metrics.AccountCacheTotal.WithLabelValues("error").Inc()
		return nil, 0, false, fmt.Errorf("cache get: %w", err)
	}

	gen, err := parseGeneration(vals[1])
	if err != nil {
		metrics.AccountCacheTotal.WithLabelValues("error").Inc()
		return nil, 0, false, err
	}

	data, ok := vals[0].(string)
	if !ok {
		metrics.AccountCacheTotal.WithLabelValues("miss").Inc()
		return nil, gen, false, nil
	}

	var a domain.Account
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		metrics.AccountCacheTotal.WithLabelValues("error").Inc()
		return nil, 0, false, fmt.Errorf("cache decode: %w", err)
	}
	metrics.AccountCacheTotal.WithLabelValues("hit").Inc()
	return &a, gen, true, nil
}

// Set stores a snapshot of account if its generation still equals gen. A
// moved generation is not an error; the snapshot is dropped.
func (c *AccountCache) Set(ctx context.Context, account *domain.Account, gen int64) error {
	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}

	genKey := c.genKey(account.ID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errGenerationMoved
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, c.key(account.ID), data, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case errors.Is(err, errGenerationMoved), errors.Is(err, redis.TxFailedErr):
		metrics.AccountCacheTotal.WithLabelValues("stale").Inc()
		return nil
	case err != nil:
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate drops the snapshot and advances the generation so that fills
// started before this call are discarded.
func (c *AccountCache) Invalidate(ctx context.Context, id string) error {
	genKey := c.genKey(id)
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, genKey)
		p.Expire(ctx, genKey, c.generationTTL())
		p.Del(ctx, c.key(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

func (c *AccountCache) key(id string) string {
	return "account:" + id
}

func (c *AccountCache) genKey(id string) string {
	return "account:" + id + ":gen"
}

// generationTTL outlives any snapshot so a counter never resets while a
// fill that observed it can still land.
func (c *AccountCache) generationTTL() time.Duration {
	return 2 * c.ttl
}

func parseGeneration(v any) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	gen, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cache generation %q: %w", s, err)
	}
	return gen, nil
}
