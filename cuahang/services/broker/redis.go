package broker

import (
	"context"
	"strconv"
	"strings"

	"cuahang/cuahang/utils/logging"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const topicPrefix = "cuahang:user:"

// RedisRelay fans chat frames out across server instances. Deliver
// publishes to the user's topic; Run forwards every published frame to the
// sessions held by the local Hub.
type RedisRelay struct {
	client *redis.Client
	local  *Hub
}

func NewRedisRelay(client *redis.Client, local *Hub) *RedisRelay {
	return &RedisRelay{client: client, local: local}
}

func topic(userID int) string {
	return topicPrefix + strconv.Itoa(userID)
}

func userFromTopic(channel string) (int, bool) {
	if !strings.HasPrefix(channel, topicPrefix) {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimPrefix(channel, topicPrefix))
	return id, err == nil
}

func (r *RedisRelay) Deliver(ctx context.Context, userID int, channel string, payload any) error {
	frame, err := encodeEnvelope(channel, payload)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, topic(userID), frame).Err()
}

// Run blocks until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.PSubscribe(ctx, topicPrefix+"*")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	logging.AppLogger.Info("chat relay subscribed", zap.String("pattern", topicPrefix+"*"))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			userID, ok := userFromTopic(msg.Channel)
			if !ok {
				logging.ErrorLogger.Error("chat relay got unexpected topic", zap.String("topic", msg.Channel))
				continue
			}
			r.local.DeliverRaw(userID, []byte(msg.Payload))
		}
	}
}
