package websocket

import (
	"context"
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"referralhub/pkg/cache"
	"referralhub/pkg/logger"
)

const relayChannel = "referralhub:live"

// RedisRelay fans live feed messages out to every server instance through a
// redis channel. Each instance publishes to redis and delivers what it
// receives to its own hub.
type RedisRelay struct {
	redis  *cache.RedisCache
	hub    *Hub
	logger *logger.Logger
}

func NewRedisRelay(redis *cache.RedisCache, hub *Hub, log *logger.Logger) *RedisRelay {
	return &RedisRelay{redis: redis, hub: hub, logger: log}
}

func (r *RedisRelay) Publish(ctx context.Context, orgID primitive.ObjectID, msgType string, data interface{}) {
	message := Message{
		Type:      msgType,
		OrgID:     orgID.Hex(),
		Timestamp: getCurrentTimestamp(),
		Data:      data,
	}

	if err := r.redis.Publish(ctx, relayChannel, message); err != nil {
		r.logger.WithError(err).Warn("Redis publish failed, delivering locally")
		r.hub.deliver(message)
	}
}

// Run forwards relayed messages to the local hub until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) {
	pubsub := r.redis.Subscribe(ctx, relayChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var message Message
			if err := json.Unmarshal([]byte(msg.Payload), &message); err != nil {
				r.logger.WithError(err).Warn("Dropping malformed relay message")
				continue
			}
			r.hub.deliver(message)
		}
	}
}

// NopPublisher discards every message. Used when the live feed is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, primitive.ObjectID, string, interface{}) {}
