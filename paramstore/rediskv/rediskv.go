// Package rediskv implements paramstore.RemoteKV on top of a Redis client,
// polling for changes since Redis keyspace notifications are an optional
// server feature this backend does not require.
package rediskv

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/insight-platform/go-savant-core/config"
	"github.com/insight-platform/go-savant-core/paramstore"
)

const defaultPollInterval = 500 * time.Millisecond

// defaultScanRateLimit bounds how often scan() issues SCAN/GET round trips
// per second, so a burst of prefix-fetching callers can't flood the Redis
// server alongside the steady Watch poll loop.
const defaultScanRateLimit = rate.Limit(50)

// Client wraps a Redis client as a paramstore.RemoteKV, watching for
// changes by periodically scanning its key prefix and diffing against the
// last observed snapshot.
type Client struct {
	client       *redis.Client
	prefix       string
	pollInterval time.Duration
	limiter      *rate.Limiter
	leaseTTL     time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithPollInterval overrides the default scan interval used by Watch.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// WithScanRateLimit overrides the default rate at which scan() issues
// requests against the Redis server.
func WithScanRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(r, burst) }
}

// New wraps an already-configured Redis client under the given key prefix.
func New(client *redis.Client, prefix string, opts ...Option) *Client {
	c := &Client{
		client:       client,
		prefix:       prefix,
		pollInterval: defaultPollInterval,
		limiter:      rate.NewLimiter(defaultScanRateLimit, int(defaultScanRateLimit)),
		leaseTTL:     time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig dials a Redis client from cfg's first endpoint and wraps it
// under prefix, using cfg's lease TTL for leased writes.
func NewFromConfig(cfg config.ParameterStoreConfig, prefix string, opts ...Option) *Client {
	addr := ""
	if len(cfg.Endpoints) > 0 {
		addr = cfg.Endpoints[0]
	}
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: cfg.DialTimeout,
	})
	c := New(client, prefix, opts...)
	if cfg.LeaseTTL > 0 {
		c.leaseTTL = cfg.LeaseTTL
	}
	return c
}

func (c *Client) key(k string) string {
	return c.prefix + ":" + k
}

// Get fetches a single key, or every key under a prefix, from Redis.
func (c *Client) Get(ctx context.Context, spec paramstore.VarPathSpec) (map[string][]byte, error) {
	if !spec.Prefix {
		v, err := c.client.Get(ctx, c.key(spec.Key)).Bytes()
		if err != nil {
			if err == redis.Nil {
				return map[string][]byte{}, nil
			}
			return nil, err
		}
		return map[string][]byte{spec.Key: v}, nil
	}
	return c.scan(ctx, spec.Key)
}

func (c *Client) scan(ctx context.Context, prefix string) (map[string][]byte, error) {
	out := make(map[string][]byte)
	var cursor uint64
	pattern := c.key(prefix) + "*"
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			v, err := c.client.Get(ctx, k).Bytes()
			if err != nil {
				continue
			}
			out[c.stripPrefix(k)] = v
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return out, nil
}

func (c *Client) stripPrefix(k string) string {
	return strings.TrimPrefix(k, c.prefix+":")
}

// Set writes key=value, optionally with the client's lease TTL standing in
// for a lease (one hour by default, or config.ParameterStoreConfig.LeaseTTL
// for a Client built with NewFromConfig).
func (c *Client) Set(ctx context.Context, key string, value []byte, lease bool) error {
	ttl := time.Duration(0)
	if lease {
		ttl = c.leaseTTL
	}
	return c.client.Set(ctx, c.key(key), value, ttl).Err()
}

// DelKey removes a single key.
func (c *Client) DelKey(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}

// DelPrefix removes every key sharing prefix.
func (c *Client) DelPrefix(ctx context.Context, prefix string) error {
	matches, err := c.scan(ctx, prefix)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return nil
	}
	keys := make([]string, 0, len(matches))
	for k := range matches {
		keys = append(keys, c.key(k))
	}
	return c.client.Del(ctx, keys...).Err()
}

// Watch periodically scans the client's prefix, delivering Set
// notifications for keys that are new or changed since the previous scan
// and DelKey notifications for keys that disappeared. Watch blocks until
// ctx is cancelled.
func (c *Client) Watch(ctx context.Context, notify func(paramstore.WatchOp)) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	seen := make(map[string][]byte)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			current, err := c.scan(ctx, "")
			if err != nil {
				continue
			}
			for k, v := range current {
				if old, ok := seen[k]; !ok || string(old) != string(v) {
					notify(paramstore.WatchOp{Kind: paramstore.WatchSet, Key: k, Value: v})
				}
			}
			for k := range seen {
				if _, ok := current[k]; !ok {
					notify(paramstore.WatchOp{Kind: paramstore.WatchDelKey, Key: k})
				}
			}
			seen = current
		}
	}
}
