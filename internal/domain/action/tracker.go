package action

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nmep/dashboard/internal/platform/changefeed"
)

// Source is the part of Service a Tracker needs.
type Source interface {
	List(ctx context.Context, countryCode string) ([]*Item, error)
	Generate(ctx context.Context, countryCode string) ([]*Item, error)
}

// TrackerState is a point-in-time copy of a Tracker.
type TrackerState struct {
	CountryCode string         `json:"country_code"`
	Items       []*Item        `json:"items"`
	Counts      map[Status]int `json:"counts"`
	Loading     bool           `json:"loading"`
	Generating  bool           `json:"generating"`
	Error       string         `json:"error,omitempty"`
	FetchedAt   time.Time      `json:"fetched_at,omitempty"`
}

// Tracker caches one country's action list and keeps it fresh by
// re-fetching on every change notification.
type Tracker struct {
	src     Source
	country string
	logger  zerolog.Logger

	mu         sync.RWMutex
	items      []*Item
	loading    bool
	generating bool
	lastErr    string
	fetchedAt  time.Time

	ready     chan struct{}
	readyOnce sync.Once
}

// NewTracker creates an empty tracker for countryCode.
func NewTracker(src Source, countryCode string, logger zerolog.Logger) *Tracker {
	return &Tracker{src: src, country: countryCode, logger: logger, ready: make(chan struct{})}
}

// Ready is closed once the first fetch has finished, whether or not it
// succeeded.
func (t *Tracker) Ready() <-chan struct{} { return t.ready }

// Refresh re-fetches the full list. On failure the previous list is kept and
// the error message recorded.
func (t *Tracker) Refresh(ctx context.Context) error {
	t.mu.Lock()
	t.loading = true
	t.mu.Unlock()

	items, err := t.src.List(ctx, t.country)
	defer t.readyOnce.Do(func() { close(t.ready) })

	t.mu.Lock()
	defer t.mu.Unlock()
	t.loading = false
	if err != nil {
		t.lastErr = UserMessage(err)
		return err
	}
	t.items = items
	t.lastErr = ""
	t.fetchedAt = time.Now().UTC()
	return nil
}

// Generate runs one generation. A second call while one is outstanding
// returns ErrGenerateInFlight without contacting the gateway.
func (t *Tracker) Generate(ctx context.Context) ([]*Item, error) {
	t.mu.Lock()
	if t.generating {
		t.mu.Unlock()
		return nil, ErrGenerateInFlight
	}
	t.generating = true
	t.lastErr = ""
	t.mu.Unlock()

	items, err := t.src.Generate(ctx, t.country)

	t.mu.Lock()
	t.generating = false
	if err != nil {
		t.lastErr = UserMessage(err)
	}
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return items, t.Refresh(ctx)
}

// State returns a copy of the tracker's state.
func (t *Tracker) State() TrackerState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	items := make([]*Item, len(t.items))
	for i, it := range t.items {
		items[i] = it.Clone()
	}
	return TrackerState{
		CountryCode: t.country,
		Items:       items,
		Counts:      CountByStatus(t.items),
		Loading:     t.loading,
		Generating:  t.generating,
		Error:       t.lastErr,
		FetchedAt:   t.fetchedAt,
	}
}

// Counts returns the number of cached items per status.
func (t *Tracker) Counts() map[Status]int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return CountByStatus(t.items)
}

// Run fetches once, then re-fetches on every change for the tracker's
// country until ctx is cancelled.
func (t *Tracker) Run(ctx context.Context, feed changefeed.Feed) error {
	changes, err := feed.Subscribe(ctx)
	if err != nil {
		return err
	}
	if err := t.Refresh(ctx); err != nil {
		t.logger.Warn().Err(err).Str("country", t.country).Msg("initial action fetch failed")
	}
	t.watch(ctx, changes)
	return ctx.Err()
}

func (t *Tracker) watch(ctx context.Context, changes <-chan changefeed.Change) {
	for ch := range changes {
		if ch.CountryCode != t.country {
			continue
		}
		if err := t.Refresh(ctx); err != nil {
			t.logger.Warn().Err(err).Str("country", t.country).Msg("action refresh failed")
		}
	}
}

// Trackers lazily starts one Tracker per country, each running until the
// context given to NewTrackers is cancelled.
type Trackers struct {
	ctx    context.Context
	src    Source
	feed   changefeed.Feed
	logger zerolog.Logger

	mu sync.Mutex
	m  map[string]*Tracker
}

// NewTrackers creates an empty registry.
func NewTrackers(ctx context.Context, src Source, feed changefeed.Feed, logger zerolog.Logger) *Trackers {
	return &Trackers{ctx: ctx, src: src, feed: feed, logger: logger, m: make(map[string]*Tracker)}
}

// For returns the tracker for countryCode, starting it on first use. Every
// caller blocks until the tracker's initial fetch completes.
func (ts *Trackers) For(countryCode string) *Tracker {
	ts.mu.Lock()
	t, ok := ts.m[countryCode]
	if !ok {
		t = NewTracker(ts.src, countryCode, ts.logger)
		ts.m[countryCode] = t
	}
	ts.mu.Unlock()

	if !ok {
		ts.start(t)
	}
	select {
	case <-t.Ready():
	case <-ts.ctx.Done():
	}
	return t
}

// start subscribes before the initial fetch so no change between the two is
// missed.
func (ts *Trackers) start(t *Tracker) {
	changes, err := ts.feed.Subscribe(ts.ctx)
	if err != nil {
		ts.logger.Error().Err(err).Str("country", t.country).Msg("action tracker cannot subscribe to changes")
	}
	if err := t.Refresh(ts.ctx); err != nil {
		ts.logger.Warn().Err(err).Str("country", t.country).Msg("initial action fetch failed")
	}
	if changes != nil {
		go t.watch(ts.ctx, changes)
	}
}

// StatusCounts implements the briefing's status source.
func (ts *Trackers) StatusCounts(_ context.Context, countryCode string) (map[Status]int, error) {
	return ts.For(countryCode).Counts(), nil
}
