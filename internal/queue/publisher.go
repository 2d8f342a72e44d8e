package queue

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// Publisher pushes events onto a stream. Publishing is best-effort for the
// callers: a lost event only delays a cache, it never loses data.
type Publisher interface {
	Publish(ctx context.Context, stream string, event FeedEvent) (messageID string, err error)
}

// RedisPublisher implements Publisher on Redis Streams.
type RedisPublisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) Publisher {
	return &RedisPublisher{client: client}
}

// Publish appends the event with XADD; "*" lets Redis assign the message id.
func (p *RedisPublisher) Publish(ctx context.Context, stream string, event FeedEvent) (string, error) {
	values, err := event.ToMap()
	if err != nil {
		return "", fmt.Errorf("serialize event: %w", err)
	}

	messageID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}).Result()
	if err != nil {
		log.Printf("[Publisher] Publish FAILED: stream=%s type=%s err=%v", stream, event.Type, err)
		return "", fmt.Errorf("xadd to stream: %w", err)
	}

	log.Printf("[Publisher] Publish OK: stream=%s type=%s msgID=%s", stream, event.Type, messageID)
	return messageID, nil
}
