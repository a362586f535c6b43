package redis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Winan03/AeroFlash-app/pkg/retry"
	"github.com/redis/go-redis/v9"
)

// Nil is returned by reads of missing keys
const Nil = redis.Nil

// Config holds Redis connection configuration
type Config struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Connection attempts at startup
	MaxRetries    int
	RetryInterval time.Duration
}

// DefaultConfig returns default Redis configuration
func DefaultConfig() *Config {
	return &Config{
		Host:          "localhost",
		Port:          6379,
		PoolSize:      50,
		MinIdleConns:  5,
		DialTimeout:   5 * time.Second,
		ReadTimeout:   3 * time.Second,
		WriteTimeout:  3 * time.Second,
		MaxRetries:    3,
		RetryInterval: time.Second,
	}
}

// Addr returns the Redis address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Client wraps redis.Client with a registry of Lua scripts
type Client struct {
	client  redis.UniversalClient
	scripts sync.Map // name -> *redis.Script
}

// NewClient connects and pings with backoff
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	err := retry.Do(ctx, &retry.Config{
		MaxRetries:      cfg.MaxRetries,
		InitialInterval: cfg.RetryInterval,
		MaxInterval:     4 * cfg.RetryInterval,
		Multiplier:      1.5,
	}, func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr(), err)
	}

	return &Client{client: rdb}, nil
}

// Wrap adapts an existing go-redis client
func Wrap(rdb redis.UniversalClient) *Client {
	return &Client{client: rdb}
}

// Client returns the underlying go-redis client
func (c *Client) Client() redis.UniversalClient {
	return c.client
}

// Close closes the connection pool
func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck pings Redis with a short timeout
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	pong, err := c.client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	if pong != "PONG" {
		return fmt.Errorf("redis health check unexpected response: %s", pong)
	}
	return nil
}

// RegisterScript makes a Lua script callable by name
func (c *Client) RegisterScript(name, src string) {
	c.scripts.Store(name, redis.NewScript(src))
}

// LoadScripts pushes every registered script into the server script cache
func (c *Client) LoadScripts(ctx context.Context) error {
	var errs []string
	c.scripts.Range(func(key, value any) bool {
		if err := value.(*redis.Script).Load(ctx, c.client).Err(); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
		return true
	})
	if len(errs) > 0 {
		return fmt.Errorf("failed to load scripts: %s", strings.Join(errs, "; "))
	}
	return nil
}

// RunScript runs a registered script with EVALSHA, falling back to EVAL on NOSCRIPT
func (c *Client) RunScript(ctx context.Context, name string, keys []string, args ...interface{}) *redis.Cmd {
	v, ok := c.scripts.Load(name)
	if !ok {
		cmd := redis.NewCmd(ctx)
		cmd.SetErr(fmt.Errorf("script %s not registered", name))
		return cmd
	}
	return v.(*redis.Script).Run(ctx, c.client, keys, args...)
}

func (c *Client) Get(ctx context.Context, key string) *redis.StringCmd {
	return c.client.Get(ctx, key)
}

func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	return c.client.Set(ctx, key, value, ttl)
}

func (c *Client) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.BoolCmd {
	return c.client.SetNX(ctx, key, value, ttl)
}

func (c *Client) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	return c.client.Del(ctx, keys...)
}

func (c *Client) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	return c.client.Exists(ctx, keys...)
}

func (c *Client) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	return c.client.HGetAll(ctx, key)
}
