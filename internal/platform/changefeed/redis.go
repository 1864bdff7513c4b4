package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// DefaultChannel is the pub/sub channel shared by every server instance.
const DefaultChannel = "dashboard:action-changes"

// RedisFeed distributes changes through Redis pub/sub so that every server
// instance behind a load balancer sees writes made by the others.
type RedisFeed struct {
	client  *redis.Client
	channel string
	logger  zerolog.Logger
}

// NewRedisFeed wraps an existing client. An empty channel uses DefaultChannel.
func NewRedisFeed(client *redis.Client, channel string, logger zerolog.Logger) *RedisFeed {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisFeed{client: client, channel: channel, logger: logger}
}

// NewRedisClient parses a redis:// URL and verifies the server responds.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (f *RedisFeed) Publish(ctx context.Context, ch Change) error {
	if ch.At.IsZero() {
		ch.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}
	if err := f.client.Publish(ctx, f.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

// Subscribe returns once the subscription is confirmed by the server, so a
// change published after Subscribe returns is always delivered.
func (f *RedisFeed) Subscribe(ctx context.Context) (<-chan Change, error) {
	ps := f.client.Subscribe(ctx, f.channel)
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", f.channel, err)
	}

	out := make(chan Change, subscriberBuffer)
	msgs := ps.Channel()
	go func() {
		defer close(out)
		defer ps.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ch Change
				if err := json.Unmarshal([]byte(msg.Payload), &ch); err != nil {
					f.logger.Warn().Err(err).Str("channel", f.channel).Msg("dropping malformed change")
					continue
				}
				select {
				case out <- ch:
				default:
				}
			}
		}
	}()
	return out, nil
}
