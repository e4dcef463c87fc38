package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	domain "github.com/donaldgifford/storefront/pkg/types"
)

const (
	keyPrefix   = "storefront:cart:"
	entryPrefix = "entry:"
	qtyPrefix   = "qty:"
)

// RedisStore is a Redis-backed Service. Each cart is one hash holding the
// entry JSON and its quantity counter; the whole cart expires after ttl of
// inactivity.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore. A zero ttl keeps carts forever.
func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Key returns the Redis key of an owner's cart.
func Key(owner string) string {
	return keyPrefix + owner
}

// AddToCart implements Service.
func (s *RedisStore) AddToCart(ctx context.Context, owner string, entry domain.CartEntry) error {
	qty := entry.Quantity
	entry.Quantity = 0
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cart entry: %w", err)
	}

	key := Key(owner)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, entryPrefix+entry.ID, data)
		pipe.HIncrBy(ctx, key, qtyPrefix+entry.ID, int64(qty))
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis add to cart %q: %w", key, err)
	}
	return nil
}

// Entries implements Service. Entries are ordered by ID.
func (s *RedisStore) Entries(ctx context.Context, owner string) ([]domain.CartEntry, error) {
	key := Key(owner)
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall %q: %w", key, err)
	}

	entries := make([]domain.CartEntry, 0, len(fields)/2)
	for field, val := range fields {
		id, ok := strings.CutPrefix(field, entryPrefix)
		if !ok {
			continue
		}

		var e domain.CartEntry
		if err := json.Unmarshal([]byte(val), &e); err != nil {
			return nil, fmt.Errorf("unmarshal cart entry %q: %w", id, err)
		}
		if q, ok := fields[qtyPrefix+id]; ok {
			n, err := strconv.Atoi(q)
			if err != nil {
				return nil, fmt.Errorf("parse quantity of %q: %w", id, err)
			}
			e.Quantity = n
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

// Clear implements Service.
func (s *RedisStore) Clear(ctx context.Context, owner string) error {
	key := Key(owner)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}
