package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"formpulse/pkg/logger"
)

// FeedChannel is the Redis pub/sub channel shared by all server instances
const FeedChannel = "formpulse:feed"

const publishTimeout = 2 * time.Second

// envelope is what travels between instances
type envelope struct {
	FormID     string   `json:"formId"`
	Disconnect bool     `json:"disconnect,omitempty"`
	Message    *Message `json:"message,omitempty"`
}

type relay struct {
	client *redis.Client
	pubsub *redis.PubSub
}

// EnableRedisRelay routes broadcasts through Redis so every instance delivers
// them to its own subscribers. Call before serving traffic.
func (h *Hub) EnableRedisRelay(ctx context.Context, client *redis.Client) error {
	pubsub := client.Subscribe(ctx, FeedChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return err
	}

	h.relay = &relay{client: client, pubsub: pubsub}
	go h.consume(pubsub.Channel())
	logger.Log.Info("live feed relay subscribed", zap.String("channel", FeedChannel))
	return nil
}

func (h *Hub) consume(ch <-chan *redis.Message) {
	for msg := range ch {
		var env envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			logger.Log.Warn("live feed relay message dropped", zap.Error(err))
			continue
		}
		if env.Disconnect {
			h.disconnectLocal(env.FormID)
			continue
		}
		if env.Message != nil {
			h.deliver(env.FormID, env.Message)
		}
	}
}

// publish reports whether the envelope reached Redis. Callers fall back to
// local delivery when it did not.
func (r *relay) publish(env envelope) bool {
	data, err := json.Marshal(env)
	if err != nil {
		logger.Log.Error("live feed relay encoding failed", zap.Error(err))
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := r.client.Publish(ctx, FeedChannel, data).Err(); err != nil {
		logger.Log.Warn("live feed relay publish failed, delivering locally", zap.Error(err))
		return false
	}
	return true
}

func (r *relay) close() {
	if err := r.pubsub.Close(); err != nil {
		logger.Log.Warn("live feed relay close failed", zap.Error(err))
	}
}
