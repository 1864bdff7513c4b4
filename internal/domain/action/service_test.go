package action

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nmep/dashboard/internal/platform/changefeed"
	"github.com/nmep/dashboard/internal/platform/gateway"
	"github.com/nmep/dashboard/internal/platform/retry"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

type mockGenerator struct {
	calls    int32
	sections gateway.Sections
	err      error
	started  chan struct{}
	release  chan struct{}
}

func (m *mockGenerator) GenerateActions(ctx context.Context, _ string) (gateway.Sections, error) {
	if atomic.AddInt32(&m.calls, 1) == 1 && m.started != nil {
		close(m.started)
	}
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return gateway.Sections{}, ctx.Err()
		}
	}
	return m.sections, m.err
}

type staticSource struct {
	err error
}

func (s staticSource) Summary(countryCode string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "Country: " + countryCode, nil
}

// flakyRepo fails ListByCountry a fixed number of times before delegating.
type flakyRepo struct {
	*MemoryRepo
	mu       sync.Mutex
	failures int
	calls    int
}

func (r *flakyRepo) ListByCountry(ctx context.Context, cc string) ([]*Item, error) {
	r.mu.Lock()
	r.calls++
	fail := r.calls <= r.failures
	r.mu.Unlock()
	if fail {
		return nil, errors.New("connection reset")
	}
	return r.MemoryRepo.ListByCountry(ctx, cc)
}

func sampleSections() gateway.Sections {
	return gateway.Sections{
		ShortTerm:  "- Distribute ITNs in Kano\n- Restock RDTs at PPMV outlets",
		MediumTerm: "- Expand SMC to three more states",
		LongTerm:   "- Integrate DHIS2 with the surveillance system",
	}
}

func fastPolicy() retry.Policy {
	return retry.Policy{Attempts: 3, Base: time.Millisecond, Cap: time.Millisecond}
}

func newTestService(gen Generator, repo Repository, feed changefeed.Publisher) *Service {
	return NewService(repo, gen, staticSource{}, feed, WithRetryPolicy(fastPolicy()), WithTimeouts(time.Second, time.Second))
}

// -----------------------------------------------------------------------------
// Generate
// -----------------------------------------------------------------------------

func TestGenerate_StoresItemsPerTimeline(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(&mockGenerator{sections: sampleSections()}, repo, nil)

	items, err := svc.Generate(context.Background(), "NG")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(items))
	}
	for _, it := range items {
		if it.Status != StatusPending {
			t.Errorf("expected pending, got %s", it.Status)
		}
		if it.Priority != PriorityFor(it.Timeline) {
			t.Errorf("%q: priority %s does not match timeline %s", it.Title, it.Priority, it.Timeline)
		}
	}

	stored, _ := repo.ListByCountry(context.Background(), "NG")
	if len(stored) != 4 {
		t.Fatalf("expected 4 stored items, got %d", len(stored))
	}
	if stored[0].Title != "Distribute ITNs in Kano" || stored[1].Title != "Restock RDTs at PPMV outlets" {
		t.Errorf("expected generated order preserved, got %q, %q", stored[0].Title, stored[1].Title)
	}
	if stored[3].Timeline != LongTerm {
		t.Errorf("expected long-term last, got %s", stored[3].Timeline)
	}
}

func TestGenerate_RateLimitedInsertsNothing(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(&mockGenerator{err: gateway.ErrRateLimited}, repo, nil)

	_, err := svc.Generate(context.Background(), "NG")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if UserMessage(err) != MsgRateLimited {
		t.Errorf("unexpected message %q", UserMessage(err))
	}
	if stored, _ := repo.ListByCountry(context.Background(), "NG"); len(stored) != 0 {
		t.Errorf("expected nothing stored, got %d", len(stored))
	}
}

func TestGenerate_QuotaExhausted(t *testing.T) {
	svc := newTestService(&mockGenerator{err: gateway.ErrQuotaExhausted}, NewMemoryRepo(), nil)
	_, err := svc.Generate(context.Background(), "NG")
	if !errors.Is(err, ErrQuotaExhausted) || UserMessage(err) != MsgQuota {
		t.Errorf("expected quota error, got %v", err)
	}
}

func TestGenerate_OtherGatewayFailure(t *testing.T) {
	svc := newTestService(&mockGenerator{err: &gateway.StatusError{Status: 500, Message: "boom"}}, NewMemoryRepo(), nil)
	_, err := svc.Generate(context.Background(), "NG")
	if !errors.Is(err, ErrGenerateFailed) || UserMessage(err) != MsgGenerateFail {
		t.Errorf("expected generic failure, got %v", err)
	}
}

func TestGenerate_NothingParsed(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(&mockGenerator{sections: gateway.Sections{ShortTerm: "- ok\n\n#"}}, repo, nil)
	_, err := svc.Generate(context.Background(), "NG")
	if !errors.Is(err, ErrNothingParsed) {
		t.Fatalf("expected ErrNothingParsed, got %v", err)
	}
	if stored, _ := repo.ListByCountry(context.Background(), "NG"); len(stored) != 0 {
		t.Errorf("expected nothing stored, got %d", len(stored))
	}
}

func TestGenerate_ContextFailure(t *testing.T) {
	gen := &mockGenerator{sections: sampleSections()}
	svc := NewService(NewMemoryRepo(), gen, staticSource{err: errors.New("no data")}, nil)
	if _, err := svc.Generate(context.Background(), "NG"); err == nil {
		t.Fatal("expected error")
	}
	if gen.calls != 0 {
		t.Errorf("gateway should not be called without context, got %d calls", gen.calls)
	}
}

func TestGenerate_ConcurrentCallsShareOneRequest(t *testing.T) {
	gen := &mockGenerator{
		sections: sampleSections(),
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	repo := NewMemoryRepo()
	svc := newTestService(gen, repo, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Generate(context.Background(), "NG")
			errs <- err
		}()
	}
	<-gen.started
	time.Sleep(50 * time.Millisecond)
	close(gen.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if gen.calls != 1 {
		t.Errorf("expected 1 gateway call, got %d", gen.calls)
	}
	if stored, _ := repo.ListByCountry(context.Background(), "NG"); len(stored) != 4 {
		t.Errorf("expected one batch of 4 items, got %d", len(stored))
	}
}

func TestGenerate_SurvivesCallerCancellation(t *testing.T) {
	gen := &mockGenerator{sections: sampleSections(), started: make(chan struct{}), release: make(chan struct{})}
	repo := NewMemoryRepo()
	svc := newTestService(gen, repo, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := svc.Generate(ctx, "NG")
		done <- err
	}()
	<-gen.started
	cancel()
	close(gen.release)

	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored, _ := repo.ListByCountry(context.Background(), "NG"); len(stored) != 4 {
		t.Errorf("expected generation to complete, got %d items", len(stored))
	}
}

func TestGenerate_PublishesInsert(t *testing.T) {
	feed := changefeed.NewLocalFeed()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, _ := feed.Subscribe(ctx)

	svc := newTestService(&mockGenerator{sections: sampleSections()}, NewMemoryRepo(), feed)
	if _, err := svc.Generate(context.Background(), "NG"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	select {
	case ch := <-changes:
		if ch.Type != changefeed.TypeInsert || ch.CountryCode != "NG" {
			t.Errorf("unexpected change %+v", ch)
		}
	case <-time.After(time.Second):
		t.Fatal("expected an insert notification")
	}
}

// -----------------------------------------------------------------------------
// List
// -----------------------------------------------------------------------------

func TestList_RetriesTransientFailures(t *testing.T) {
	repo := &flakyRepo{MemoryRepo: NewMemoryRepo(), failures: 2}
	repo.CreateBatch(context.Background(), []*Item{{CountryCode: "NG", Title: "Review stock", Timeline: ShortTerm, Status: StatusPending}})
	svc := newTestService(&mockGenerator{}, repo, nil)

	items, err := svc.List(context.Background(), "NG")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 item, got %d", len(items))
	}
	if repo.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", repo.calls)
	}
}

func TestList_GivesUp(t *testing.T) {
	repo := &flakyRepo{MemoryRepo: NewMemoryRepo(), failures: 10}
	svc := newTestService(&mockGenerator{}, repo, nil)
	if _, err := svc.List(context.Background(), "NG"); err == nil {
		t.Fatal("expected error")
	}
	if repo.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", repo.calls)
	}
}

func TestList_ScopedToCountry(t *testing.T) {
	repo := NewMemoryRepo()
	repo.CreateBatch(context.Background(), []*Item{
		{CountryCode: "NG", Title: "Nigeria action", Status: StatusPending},
		{CountryCode: "GH", Title: "Ghana action", Status: StatusPending},
	})
	svc := newTestService(&mockGenerator{}, repo, nil)
	items, _ := svc.List(context.Background(), "GH")
	if len(items) != 1 || items[0].Title != "Ghana action" {
		t.Errorf("expected only the Ghana item, got %+v", items)
	}
}

// -----------------------------------------------------------------------------
// Mutations
// -----------------------------------------------------------------------------

func seeded(t *testing.T, feed changefeed.Publisher) (*Service, *MemoryRepo, []*Item) {
	t.Helper()
	repo := NewMemoryRepo()
	svc := newTestService(&mockGenerator{sections: sampleSections()}, repo, feed)
	items, err := svc.Generate(context.Background(), "NG")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return svc, repo, items
}

func TestAdvance_PersistsAndReturnsUpdated(t *testing.T) {
	svc, repo, items := seeded(t, nil)
	it, err := svc.Advance(context.Background(), "NG", items[0].ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.Status != StatusInProgress {
		t.Errorf("expected in_progress, got %s", it.Status)
	}
	stored, _ := repo.GetByID(context.Background(), items[0].ID)
	if stored.Status != StatusInProgress {
		t.Errorf("expected stored in_progress, got %s", stored.Status)
	}
}

func TestAdvance_OtherCountryNotFound(t *testing.T) {
	svc, repo, items := seeded(t, nil)
	if _, err := svc.Advance(context.Background(), "GH", items[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	stored, _ := repo.GetByID(context.Background(), items[0].ID)
	if stored.Status != StatusPending {
		t.Errorf("item should be untouched, got %s", stored.Status)
	}
}

func TestMarkOffTrack_InvalidFromCompleted(t *testing.T) {
	svc, _, items := seeded(t, nil)
	id := items[0].ID
	svc.Advance(context.Background(), "NG", id)
	svc.Advance(context.Background(), "NG", id)
	if _, err := svc.MarkOffTrack(context.Background(), "NG", id); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestUpdateNotes_SetAndClear(t *testing.T) {
	svc, _, items := seeded(t, nil)
	it, err := svc.UpdateNotes(context.Background(), "NG", items[0].ID, "  waiting on procurement  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.Notes == nil || *it.Notes != "waiting on procurement" {
		t.Errorf("unexpected notes %v", it.Notes)
	}
	it, _ = svc.UpdateNotes(context.Background(), "NG", items[0].ID, "   ")
	if it.Notes != nil {
		t.Errorf("expected notes cleared, got %q", *it.Notes)
	}
}

func TestDelete_RemovesExactlyOne(t *testing.T) {
	svc, repo, items := seeded(t, nil)
	if err := svc.Delete(context.Background(), "NG", items[1].ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, _ := repo.ListByCountry(context.Background(), "NG")
	if len(stored) != 3 {
		t.Fatalf("expected 3 items left, got %d", len(stored))
	}
	for _, it := range stored {
		if it.ID == items[1].ID {
			t.Error("deleted item still present")
		}
	}
	if err := svc.Delete(context.Background(), "NG", uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClearAll(t *testing.T) {
	svc, repo, _ := seeded(t, nil)
	repo.CreateBatch(context.Background(), []*Item{{CountryCode: "GH", Title: "Ghana action"}})
	n, err := svc.ClearAll(context.Background(), "NG")
	if err != nil || n != 4 {
		t.Fatalf("expected 4 deleted, got %d (%v)", n, err)
	}
	if left, _ := repo.ListByCountry(context.Background(), "GH"); len(left) != 1 {
		t.Error("other countries should be untouched")
	}
}

func TestMutations_PublishChanges(t *testing.T) {
	feed := changefeed.NewLocalFeed()
	svc, _, items := seeded(t, feed)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, _ := feed.Subscribe(ctx)

	svc.Advance(context.Background(), "NG", items[0].ID)
	svc.Delete(context.Background(), "NG", items[1].ID)
	svc.ClearAll(context.Background(), "NG")

	want := []string{changefeed.TypeUpdate, changefeed.TypeDelete, changefeed.TypeClear}
	for i, typ := range want {
		select {
		case ch := <-changes:
			if ch.Type != typ {
				t.Errorf("change %d: expected %s, got %s", i, typ, ch.Type)
			}
		case <-time.After(time.Second):
			t.Fatalf("missing change %d", i)
		}
	}
}
