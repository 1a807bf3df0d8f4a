package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Client wraps a go-redis universal client and a registry of preloaded
// server-side Lua scripts.
type Client struct {
	rdb goredis.UniversalClient

	mu      sync.RWMutex
	scripts map[string]*goredis.Script
}

// NewClient connects to one or more redis nodes. addrs is a comma separated
// list; a single address yields a plain client, several yield a cluster client.
func NewClient(addrs string) (*Client, error) {
	nodes := strings.Split(addrs, ",")
	rdb := goredis.NewUniversalClient(&goredis.UniversalOptions{Addrs: nodes})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb, scripts: make(map[string]*goredis.Script)}, nil
}

// GetClient exposes the underlying client for pipelines and plain commands.
func (c *Client) GetClient() goredis.UniversalClient { return c.rdb }

// LoadScriptFromContent registers a named Lua script for later RunScript calls.
func (c *Client) LoadScriptFromContent(name, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scripts[name] = goredis.NewScript(content)
	return nil
}

// RunScript executes a previously registered script. EVALSHA with automatic
// EVAL fallback is handled by go-redis.
func (c *Client) RunScript(ctx context.Context, name string, keys []string, args ...interface{}) (interface{}, error) {
	c.mu.RLock()
	script, ok := c.scripts[name]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("script %q is not loaded", name)
	}
	return script.Run(ctx, c.rdb, keys, args...).Result()
}

// SetNX sets key to value only if it does not exist. Returns true when the
// key was set by this call.
func (c *Client) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, key, value, ttl).Result()
}

// Get reads a string key. A missing key returns "" without an error.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	return val, err
}

// Set writes a string key with a TTL, overwriting any existing value.
func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// Del removes keys. Used to release reservations that should not stick.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

// Close releases the underlying connections.
func (c *Client) Close() error { return c.rdb.Close() }
