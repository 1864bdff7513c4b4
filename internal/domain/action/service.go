package action

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/nmep/dashboard/internal/platform/changefeed"
	"github.com/nmep/dashboard/internal/platform/gateway"
	"github.com/nmep/dashboard/internal/platform/retry"
)

var (
	ErrRateLimited      = errors.New("action generation rate limited")
	ErrQuotaExhausted   = errors.New("action generation quota exhausted")
	ErrGenerateFailed   = errors.New("action generation failed")
	ErrNothingParsed    = errors.New("no action items could be parsed from the response")
	ErrGenerateInFlight = errors.New("action generation already in progress")
)

// User-facing messages for generation failures.
const (
	MsgRateLimited  = "Rate limit exceeded. Please wait a moment and try again."
	MsgQuota        = "AI credits exhausted. Please add credits to continue."
	MsgGenerateFail = "Failed to generate actions. Please try again."
)

// UserMessage renders err for display next to the action tracker.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRateLimited):
		return MsgRateLimited
	case errors.Is(err, ErrQuotaExhausted):
		return MsgQuota
	case errors.Is(err, ErrGenerateFailed), errors.Is(err, ErrNothingParsed), errors.Is(err, ErrGenerateInFlight):
		return MsgGenerateFail
	default:
		return err.Error()
	}
}

// Generator produces recommendation sections from an indicator summary.
type Generator interface {
	GenerateActions(ctx context.Context, indicatorContext string) (gateway.Sections, error)
}

// ContextSource renders the indicator summary for a country.
type ContextSource interface {
	Summary(countryCode string) (string, error)
}

type Service struct {
	repo     Repository
	gen      Generator
	source   ContextSource
	changes  changefeed.Publisher
	logger   zerolog.Logger
	policy   retry.Policy
	readTO   time.Duration
	remoteTO time.Duration
	group    singleflight.Group
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) Option { return func(s *Service) { s.logger = l } }

// WithRetryPolicy overrides the read retry policy.
func WithRetryPolicy(p retry.Policy) Option { return func(s *Service) { s.policy = p } }

// WithTimeouts sets the per-call timeouts for store reads and gateway calls.
func WithTimeouts(read, remote time.Duration) Option {
	return func(s *Service) {
		if read > 0 {
			s.readTO = read
		}
		if remote > 0 {
			s.remoteTO = remote
		}
	}
}

func NewService(repo Repository, gen Generator, source ContextSource, changes changefeed.Publisher, opts ...Option) *Service {
	if changes == nil {
		changes = changefeed.NopPublisher{}
	}
	s := &Service{
		repo:     repo,
		gen:      gen,
		source:   source,
		changes:  changes,
		logger:   zerolog.Nop(),
		policy:   retry.DefaultPolicy(),
		readTO:   10 * time.Second,
		remoteTO: 20 * time.Second,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// List returns a country's items ordered by timeline, priority and creation
// time. Transient store failures are retried.
func (s *Service) List(ctx context.Context, countryCode string) ([]*Item, error) {
	ctx, cancel := context.WithTimeout(ctx, s.readTO)
	defer cancel()

	var items []*Item
	err := retry.Do(ctx, s.policy, func(ctx context.Context) error {
		var err error
		items, err = s.repo.ListByCountry(ctx, countryCode)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list actions for %s: %w", countryCode, err)
	}
	SortItems(items)
	return items, nil
}

// Generate asks the gateway for recommendations and stores them. Concurrent
// calls for the same country share one gateway request and its result.
func (s *Service) Generate(ctx context.Context, countryCode string) ([]*Item, error) {
	v, err, shared := s.group.Do(countryCode, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.remoteTO)
		defer cancel()
		return s.generate(callCtx, countryCode)
	})
	if shared {
		s.logger.Debug().Str("country", countryCode).Msg("joined in-flight action generation")
	}
	if err != nil {
		return nil, err
	}
	return v.([]*Item), nil
}

func (s *Service) generate(ctx context.Context, countryCode string) ([]*Item, error) {
	summary, err := s.source.Summary(countryCode)
	if err != nil {
		return nil, fmt.Errorf("build indicator context: %w", err)
	}

	sections, err := s.gen.GenerateActions(ctx, summary)
	if err != nil {
		s.logger.Warn().Err(err).Str("country", countryCode).Msg("action generation failed")
		return nil, classifyGatewayError(err)
	}

	items := s.itemsFromSections(countryCode, sections)
	if len(items) == 0 {
		return nil, ErrNothingParsed
	}
	if err := s.repo.CreateBatch(ctx, items); err != nil {
		return nil, fmt.Errorf("store generated actions: %w", err)
	}
	s.publish(ctx, changefeed.TypeInsert, countryCode, "")

	s.logger.Info().Str("country", countryCode).Int("items", len(items)).Msg("generated action items")
	return items, nil
}

func classifyGatewayError(err error) error {
	switch {
	case errors.Is(err, gateway.ErrRateLimited):
		return ErrRateLimited
	case errors.Is(err, gateway.ErrQuotaExhausted):
		return ErrQuotaExhausted
	default:
		return fmt.Errorf("%w: %v", ErrGenerateFailed, err)
	}
}

func (s *Service) itemsFromSections(countryCode string, sec gateway.Sections) []*Item {
	now := s.now()
	var items []*Item
	for _, part := range []struct {
		timeline Timeline
		markdown string
	}{
		{ShortTerm, sec.ShortTerm},
		{MediumTerm, sec.MediumTerm},
		{LongTerm, sec.LongTerm},
	} {
		for _, c := range ParseBullets(part.markdown) {
			// Offset creation times so items keep their generated order.
			created := now.Add(time.Duration(len(items)) * time.Microsecond)
			it := &Item{
				ID:          uuid.New(),
				CountryCode: countryCode,
				Timeline:    part.timeline,
				Title:       c.Title,
				Status:      StatusPending,
				Priority:    PriorityFor(part.timeline),
				CreatedAt:   created,
				UpdatedAt:   created,
			}
			if c.Description != "" {
				d := c.Description
				it.Description = &d
			}
			items = append(items, it)
		}
	}
	return items
}

// get loads an item and checks it belongs to countryCode.
func (s *Service) get(ctx context.Context, countryCode string, id uuid.UUID) (*Item, error) {
	it, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if it.CountryCode != countryCode {
		return nil, ErrNotFound
	}
	return it, nil
}

// Advance moves an item one step around the status cycle.
func (s *Service) Advance(ctx context.Context, countryCode string, id uuid.UUID) (*Item, error) {
	return s.mutate(ctx, countryCode, id, func(it *Item) error { return it.Advance(s.now()) })
}

// MarkOffTrack flags a pending or in-progress item.
func (s *Service) MarkOffTrack(ctx context.Context, countryCode string, id uuid.UUID) (*Item, error) {
	return s.mutate(ctx, countryCode, id, func(it *Item) error { return it.MarkOffTrack(s.now()) })
}

// UpdateNotes replaces an item's notes. Blank notes clear them.
func (s *Service) UpdateNotes(ctx context.Context, countryCode string, id uuid.UUID, notes string) (*Item, error) {
	return s.mutate(ctx, countryCode, id, func(it *Item) error {
		if n := strings.TrimSpace(notes); n != "" {
			it.Notes = &n
		} else {
			it.Notes = nil
		}
		it.UpdatedAt = s.now()
		return nil
	})
}

// mutate applies fn, waits for the write, then announces the change.
func (s *Service) mutate(ctx context.Context, countryCode string, id uuid.UUID, fn func(*Item) error) (*Item, error) {
	it, err := s.get(ctx, countryCode, id)
	if err != nil {
		return nil, err
	}
	if err := fn(it); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, it); err != nil {
		return nil, err
	}
	s.publish(ctx, changefeed.TypeUpdate, countryCode, it.ID.String())
	return it, nil
}

// Delete removes one item.
func (s *Service) Delete(ctx context.Context, countryCode string, id uuid.UUID) error {
	if _, err := s.get(ctx, countryCode, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, changefeed.TypeDelete, countryCode, id.String())
	return nil
}

// ClearAll removes every item for a country and returns how many went.
func (s *Service) ClearAll(ctx context.Context, countryCode string) (int64, error) {
	n, err := s.repo.DeleteByCountry(ctx, countryCode)
	if err != nil {
		return 0, err
	}
	s.publish(ctx, changefeed.TypeClear, countryCode, "")
	return n, nil
}

// publish failures are logged; the write they describe already succeeded.
func (s *Service) publish(ctx context.Context, typ, countryCode, itemID string) {
	err := s.changes.Publish(ctx, changefeed.Change{
		Type:        typ,
		CountryCode: countryCode,
		ItemID:      itemID,
		At:          s.now(),
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("country", countryCode).Str("type", typ).Msg("publish action change")
	}
}
