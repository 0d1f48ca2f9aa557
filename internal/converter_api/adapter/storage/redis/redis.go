package redis

import (
	"context"
	"github.com/goccy/go-json"
	"github.com/langowen/converter/internal/entities"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"log/slog"
	"net"
)

const DefaultChannel = "conversion_completed"

type Storage struct {
	rdb     *redis.Client
	channel string
}

func NewStorage(client *redis.Client, channel string) *Storage {
	if channel == "" {
		channel = DefaultChannel
	}

	return &Storage{
		rdb:     client,
		channel: channel,
	}
}

func InitStorage(ctx context.Context, options *redis.Options, channel string) (*Storage, error) {
	const op = "storage.redis.InitStorage"

	redisClient := redis.NewClient(options)

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		_ = redisClient.Close()
		return nil, errors.Wrap(err, op)
	}

	storage := NewStorage(redisClient, channel)

	return storage, nil
}

func (s *Storage) PublishConversion(ctx context.Context, conversion *entities.Conversion) error {
	const op = "storage.redis.PublishConversion"

	payload, err := json.Marshal(conversion)
	if err != nil {
		return errors.Wrap(err, op)
	}

	if err := s.rdb.Publish(ctx, s.channel, payload).Err(); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

// ListenConversions blocks until the next conversion is published on the
// channel.
func (s *Storage) ListenConversions(ctx context.Context) (*entities.Conversion, error) {
	const op = "storage.redis.ListenConversions"

	pubsub := s.rdb.Subscribe(ctx, s.channel)
	defer pubsub.Close()

	msg, err := pubsub.ReceiveMessage(ctx)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) {
			if netErr.Timeout() {
				return nil, entities.ErrRedisTimeout
			}
			return nil, entities.ErrRedisCanceled
		}
		return nil, errors.Wrap(err, op)
	}

	var conversion entities.Conversion
	if err := json.Unmarshal([]byte(msg.Payload), &conversion); err != nil {
		return nil, errors.Wrap(err, op)
	}

	slog.Debug("Received message", "channel", msg.Channel, "id", conversion.ID)

	return &conversion, nil
}

func (s *Storage) Close() error {
	return s.rdb.Close()
}
