package notify

import (
	"context"
	"fmt"

	"lejio/tracking/internal/domain"
)

type alertChannel interface {
	PublishAlert(ctx context.Context, payload []byte) error
}

// RedisPublisher publishes on the store's alert pub/sub channel.
type RedisPublisher struct {
	redis alertChannel
}

func NewRedisPublisher(redis alertChannel) *RedisPublisher {
	return &RedisPublisher{redis: redis}
}

func (p *RedisPublisher) Publish(ctx context.Context, alert domain.GeofenceAlert) error {
	body, err := Encode(alert)
	if err != nil {
		return err
	}
	if err := p.redis.PublishAlert(ctx, body); err != nil {
		return fmt.Errorf("redis publish alert: %w", err)
	}
	return nil
}
