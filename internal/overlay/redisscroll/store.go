// Package redisscroll keeps overlay scroll offsets in Redis so they survive
// a restart of the browsing session.
package redisscroll

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/pkg/database"
)

const defaultPrefix = "storefront:scroll:"

// Store implements overlay.ScrollStore on Redis. Offsets expire after ttl.
type Store struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// New creates a Store. A non-positive ttl keeps offsets until taken.
func New(client redis.UniversalClient, ttl time.Duration) *Store {
	return &Store{client: client, prefix: defaultPrefix, ttl: ttl}
}

// WithPrefix returns a copy of s that namespaces its keys under prefix.
func (s *Store) WithPrefix(prefix string) *Store {
	c := *s
	c.prefix = prefix
	return &c
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

func (s *Store) Save(ctx context.Context, key string, offset int) (err error) {
	ctx, end := database.TraceCommand(ctx, "scroll.save", "SET")
	defer func() { end(err) }()

	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err = s.client.Set(ctx, s.key(key), offset, ttl).Err(); err != nil {
		return fmt.Errorf("save scroll offset %s: %w", key, err)
	}
	return nil
}

func (s *Store) Take(ctx context.Context, key string) (offset int, ok bool, err error) {
	ctx, end := database.TraceCommand(ctx, "scroll.take", "GETDEL")
	defer func() { end(err) }()

	raw, err := s.client.GetDel(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("take scroll offset %s: %w", key, err)
	}

	offset, err = strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("parse scroll offset %s: %w", key, err)
	}
	return offset, true, nil
}

// Pending counts offsets that were saved and not yet taken.
func (s *Store) Pending(ctx context.Context) (n int, err error) {
	ctx, end := database.TraceCommand(ctx, "scroll.pending", "SCAN")
	defer func() { end(err) }()

	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err = iter.Err(); err != nil {
		return 0, fmt.Errorf("scan scroll offsets: %w", err)
	}
	return n, nil
}
