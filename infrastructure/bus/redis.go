package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/praxisops/praxis/domain/ops"
)

// Channel is the Redis pub/sub channel carrying integration events.
const Channel = "praxis.events"

// Redis publishes integration events as JSON envelopes on a Redis
// pub/sub channel.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis bus from a redis:// URL.
func NewRedis(url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Redis{client: redis.NewClient(opts)}, nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Publish sends the event envelope on the events channel.
func (b *Redis) Publish(ctx context.Context, event ops.BusEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal bus event %s: %w", event.Name, err)
	}
	if err := b.client.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish bus event %s: %w", event.Name, err)
	}
	return nil
}

// Close releases the Redis connection.
func (b *Redis) Close() error {
	return b.client.Close()
}
