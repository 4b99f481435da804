package pubsub

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Redis channel invalidation patterns travel on.
const DefaultChannel = "cache.clean"

// RedisPublisher broadcasts invalidation patterns over a Redis channel so
// cache listeners in other processes can flush their namespaces.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher creates a publisher on the given channel. An empty
// channel name falls back to DefaultChannel.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

// Publish sends the pattern as the message payload.
func (p *RedisPublisher) Publish(ctx context.Context, pattern string) error {
	return p.client.Publish(ctx, p.channel, pattern).Err()
}

// SubscribeRedis subscribes to invalidation patterns on the given channel
// and forwards each payload to the handler from a background goroutine.
// The returned close function tears the subscription down.
func SubscribeRedis(ctx context.Context, client *redis.Client, channel string, h Handler) (func() error, error) {
	if channel == "" {
		channel = DefaultChannel
	}
	sub := client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}
	go func() {
		for msg := range sub.Channel() {
			h(msg.Payload)
		}
	}()
	return sub.Close, nil
}
