// Package changefeed carries action-store change notifications from the
// writer to every interested subscriber. Delivery is best effort: a
// notification only says "something changed for this country", so a
// subscriber that misses one catches up on the next.
package changefeed

import (
	"context"
	"sync"
	"time"
)

// Change types.
const (
	TypeInsert = "insert"
	TypeUpdate = "update"
	TypeDelete = "delete"
	TypeClear  = "clear"
)

// Change describes one mutation of the action store.
type Change struct {
	Type        string    `json:"type"`
	CountryCode string    `json:"country_code"`
	ItemID      string    `json:"item_id,omitempty"`
	At          time.Time `json:"at"`
}

// Feed publishes changes and hands out subscriptions. A subscription's
// channel is closed once its context is cancelled.
type Feed interface {
	Publish(ctx context.Context, ch Change) error
	Subscribe(ctx context.Context) (<-chan Change, error)
}

// Publisher is the write half of a Feed.
type Publisher interface {
	Publish(ctx context.Context, ch Change) error
}

// NopPublisher drops every change.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Change) error { return nil }

const subscriberBuffer = 32

// LocalFeed fans changes out to in-process subscribers. Sends never block:
// a subscriber whose buffer is full misses the change.
type LocalFeed struct {
	mu   sync.RWMutex
	subs map[chan Change]struct{}
}

// NewLocalFeed creates an empty in-process feed.
func NewLocalFeed() *LocalFeed {
	return &LocalFeed{subs: make(map[chan Change]struct{})}
}

func (f *LocalFeed) Publish(_ context.Context, ch Change) error {
	if ch.At.IsZero() {
		ch.At = time.Now().UTC()
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for sub := range f.subs {
		select {
		case sub <- ch:
		default:
		}
	}
	return nil
}

func (f *LocalFeed) Subscribe(ctx context.Context) (<-chan Change, error) {
	sub := make(chan Change, subscriberBuffer)
	f.mu.Lock()
	f.subs[sub] = struct{}{}
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs, sub)
		close(sub)
		f.mu.Unlock()
	}()
	return sub, nil
}

// SubscriberCount returns the number of live subscriptions.
func (f *LocalFeed) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}
