package changefeed

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub <-chan Change) Change {
	t.Helper()
	select {
	case ch, ok := <-sub:
		require.True(t, ok, "subscription closed early")
		return ch
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change")
	}
	return Change{}
}

func TestLocalFeed_FanOut(t *testing.T) {
	feed := NewLocalFeed()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := feed.Subscribe(ctx)
	require.NoError(t, err)
	b, err := feed.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, feed.Publish(ctx, Change{Type: TypeInsert, CountryCode: "NG"}))

	for _, sub := range []<-chan Change{a, b} {
		ch := receive(t, sub)
		assert.Equal(t, TypeInsert, ch.Type)
		assert.Equal(t, "NG", ch.CountryCode)
		assert.False(t, ch.At.IsZero())
	}
}

func TestLocalFeed_CancelClosesSubscription(t *testing.T) {
	feed := NewLocalFeed()
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := feed.Subscribe(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, feed.SubscriberCount())

	cancel()
	select {
	case _, ok := <-sub:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription not closed")
	}
	assert.Equal(t, 0, feed.SubscriberCount())
}

func TestLocalFeed_FullBufferDoesNotBlock(t *testing.T) {
	feed := NewLocalFeed()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err := feed.Subscribe(ctx)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			_ = feed.Publish(ctx, Change{Type: TypeUpdate, CountryCode: "NG"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), Change{}))
}

func setupRedisFeed(t *testing.T) (*miniredis.Miniredis, *RedisFeed) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisFeed(client, "", zerolog.Nop())
}

func TestRedisFeed_PublishSubscribe(t *testing.T) {
	_, feed := setupRedisFeed(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := feed.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, feed.Publish(ctx, Change{Type: TypeDelete, CountryCode: "GH", ItemID: "item-1"}))

	ch := receive(t, sub)
	assert.Equal(t, TypeDelete, ch.Type)
	assert.Equal(t, "GH", ch.CountryCode)
	assert.Equal(t, "item-1", ch.ItemID)
}

func TestRedisFeed_SkipsMalformedPayload(t *testing.T) {
	mr, feed := setupRedisFeed(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := feed.Subscribe(ctx)
	require.NoError(t, err)

	mr.Publish(DefaultChannel, "not json")
	require.NoError(t, feed.Publish(ctx, Change{Type: TypeClear, CountryCode: "NG"}))

	ch := receive(t, sub)
	assert.Equal(t, TypeClear, ch.Type)
}

func TestRedisFeed_CancelClosesSubscription(t *testing.T) {
	_, feed := setupRedisFeed(t)
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := feed.Subscribe(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-sub:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription not closed")
	}
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "://nope")
	assert.Error(t, err)
}

func TestNewRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	client.Close()
}
