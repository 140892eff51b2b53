package redis

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Client wraps the redis connection.
type Client struct {
	Native *redis.Client
}

// Connect instantiates a redis client and verifies connectivity.
func Connect(addr, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Client{Native: client}, nil
}

// Close closes the redis connection.
func (c *Client) Close() error {
	if c == nil || c.Native == nil {
		return nil
	}
	return c.Native.Close()
}
