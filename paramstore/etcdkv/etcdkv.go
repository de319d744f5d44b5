// Package etcdkv implements paramstore.RemoteKV on top of an etcd v3
// client, matching the watched-KV mirror the parameter store wraps around a
// real cluster.
package etcdkv

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v5"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/insight-platform/go-savant-core/config"
	"github.com/insight-platform/go-savant-core/paramstore"
)

// Client wraps an etcd client as a paramstore.RemoteKV, reconnecting its
// watch stream with bounded exponential backoff on transient failures.
type Client struct {
	cli      *clientv3.Client
	prefix   string
	leaseTTL int64
}

// New wraps an already-configured etcd client under the given key prefix,
// using a 60s lease TTL for keys written with lease=true.
func New(cli *clientv3.Client, prefix string) *Client {
	return &Client{cli: cli, prefix: prefix, leaseTTL: 60}
}

// NewFromConfig dials an etcd client from cfg's endpoints and dial timeout
// and wraps it under prefix, applying cfg's lease TTL to leased writes.
func NewFromConfig(cfg config.ParameterStoreConfig, prefix string) (*Client, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("etcdkv: dialing etcd: %w", err)
	}
	ttl := int64(cfg.LeaseTTL.Seconds())
	if ttl <= 0 {
		ttl = 60
	}
	return &Client{cli: cli, prefix: prefix, leaseTTL: ttl}, nil
}

// Get fetches a single key, or every key under a prefix, from etcd.
func (c *Client) Get(ctx context.Context, spec paramstore.VarPathSpec) (map[string][]byte, error) {
	var opts []clientv3.OpOption
	if spec.Prefix {
		opts = append(opts, clientv3.WithPrefix())
	}
	resp, err := c.cli.Get(ctx, spec.Key, opts...)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		out[string(kv.Key)] = kv.Value
	}
	return out, nil
}

// Set writes key=value, optionally under a TTL-bearing lease.
func (c *Client) Set(ctx context.Context, key string, value []byte, lease bool) error {
	if !lease {
		_, err := c.cli.Put(ctx, key, string(value))
		return err
	}
	grant, err := c.cli.Grant(ctx, c.leaseTTL)
	if err != nil {
		return err
	}
	_, err = c.cli.Put(ctx, key, string(value), clientv3.WithLease(grant.ID))
	return err
}

// DelKey removes a single key.
func (c *Client) DelKey(ctx context.Context, key string) error {
	_, err := c.cli.Delete(ctx, key)
	return err
}

// DelPrefix removes every key sharing prefix.
func (c *Client) DelPrefix(ctx context.Context, prefix string) error {
	_, err := c.cli.Delete(ctx, prefix, clientv3.WithPrefix())
	return err
}

// Watch streams changes under the client's prefix to notify, reconnecting
// with bounded exponential backoff whenever the underlying watch channel
// closes unexpectedly. Watch blocks until ctx is cancelled or backoff gives
// up.
func (c *Client) Watch(ctx context.Context, notify func(paramstore.WatchOp)) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, c.watchOnce(ctx, notify)
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()))
	return err
}

// watchOnce runs a single watch session, returning nil only when ctx is
// cancelled (a permanent stop, not a retryable disconnect).
func (c *Client) watchOnce(ctx context.Context, notify func(paramstore.WatchOp)) error {
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := c.cli.Watch(watchCtx, c.prefix, clientv3.WithPrefix())
	for resp := range ch {
		if resp.Canceled {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("etcd watch canceled: %w", resp.Err())
		}
		for _, ev := range resp.Events {
			switch ev.Type {
			case clientv3.EventTypePut:
				notify(paramstore.WatchOp{Kind: paramstore.WatchSet, Key: string(ev.Kv.Key), Value: ev.Kv.Value})
			case clientv3.EventTypeDelete:
				notify(paramstore.WatchOp{Kind: paramstore.WatchDelKey, Key: string(ev.Kv.Key)})
			}
		}
	}
	if ctx.Err() != nil {
		return backoff.Permanent(ctx.Err())
	}
	return errors.New("etcd watch channel closed")
}
