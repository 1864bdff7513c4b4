// Package briefing produces the daily audio briefing: a short spoken
// summary of a country's indicators and action progress, synthesized by the
// AI gateway and held as a short-lived blob behind a revocable URL.
package briefing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nmep/dashboard/internal/domain/action"
	"github.com/nmep/dashboard/internal/platform/blobstore"
	"github.com/nmep/dashboard/internal/platform/gateway"
)

var (
	ErrNotFound           = errors.New("briefing not found")
	ErrSynthesisFailed    = errors.New("briefing synthesis failed")
	ErrGatewayDisabled    = errors.New("audio briefing is not configured")
	ErrContextUnavailable = errors.New("briefing context unavailable")
)

// Briefing is a synthesized briefing and where to fetch its audio.
type Briefing struct {
	ID          string    `json:"id"`
	CountryCode string    `json:"country_code"`
	Text        string    `json:"text"`
	AudioURL    string    `json:"audio_url"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Synthesizer turns text into audio.
type Synthesizer interface {
	SynthesizeBriefing(ctx context.Context, text string) (gateway.Audio, error)
}

// ContextSource renders the indicator summary for a country.
type ContextSource interface {
	Summary(countryCode string) (string, error)
}

// StatusSource reports how many action items a country has per status.
type StatusSource interface {
	StatusCounts(ctx context.Context, countryCode string) (map[action.Status]int, error)
}

type Service struct {
	synth    Synthesizer
	source   ContextSource
	statuses StatusSource
	store    blobstore.Store
	logger   zerolog.Logger
	ttl      time.Duration
	timeout  time.Duration
	audioURL func(id string) string
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(l zerolog.Logger) Option { return func(s *Service) { s.logger = l } }

// WithTTL sets how long synthesized audio stays available.
func WithTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithTimeout bounds the gateway call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithAudioBasePath sets the path prefix audio URLs are built from.
func WithAudioBasePath(base string) Option {
	base = strings.TrimRight(base, "/")
	return func(s *Service) {
		s.audioURL = func(id string) string { return base + "/" + id + "/audio" }
	}
}

// NewService creates a briefing service. statuses may be nil, in which case
// the briefing omits action progress.
func NewService(synth Synthesizer, source ContextSource, statuses StatusSource, store blobstore.Store, opts ...Option) *Service {
	s := &Service{
		synth:    synth,
		source:   source,
		statuses: statuses,
		store:    store,
		logger:   zerolog.Nop(),
		ttl:      time.Hour,
		timeout:  20 * time.Second,
		now:      func() time.Time { return time.Now().UTC() },
	}
	WithAudioBasePath("/api/v1/briefings")(s)
	for _, o := range opts {
		o(s)
	}
	return s
}

// Compose builds the briefing script for a country.
func (s *Service) Compose(ctx context.Context, countryCode string) (string, error) {
	summary, err := s.source.Summary(countryCode)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrContextUnavailable, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Malaria programme briefing for %s.\n", s.now().Format("Monday 2 January 2006"))
	b.WriteString(summary)

	if s.statuses != nil {
		counts, err := s.statuses.StatusCounts(ctx, countryCode)
		if err != nil {
			s.logger.Warn().Err(err).Str("country", countryCode).Msg("briefing without action counts")
		} else {
			b.WriteString(progressLine(counts))
		}
	}
	return b.String(), nil
}

func progressLine(counts map[action.Status]int) string {
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return "No action items are being tracked.\n"
	}
	return fmt.Sprintf("Action tracker: %d items, %d completed, %d in progress, %d pending, %d off track.\n",
		total,
		counts[action.StatusCompleted],
		counts[action.StatusInProgress],
		counts[action.StatusPending],
		counts[action.StatusOffTrack])
}

// Create composes, synthesizes and stores a briefing.
func (s *Service) Create(ctx context.Context, countryCode string) (*Briefing, error) {
	text, err := s.Compose(ctx, countryCode)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	audio, err := s.synth.SynthesizeBriefing(callCtx, text)
	if err != nil {
		s.logger.Warn().Err(err).Str("country", countryCode).Msg("briefing synthesis failed")
		if errors.Is(err, gateway.ErrNotConfigured) {
			return nil, ErrGatewayDisabled
		}
		return nil, fmt.Errorf("%w: %w", ErrSynthesisFailed, err)
	}

	meta, err := s.store.Put(ctx, audio.ContentType, bytes.NewReader(audio.Data), s.ttl)
	if err != nil {
		return nil, fmt.Errorf("store briefing audio: %w", err)
	}

	s.logger.Info().
		Str("country", countryCode).
		Str("briefing_id", meta.ID).
		Int64("bytes", meta.Size).
		Msg("briefing created")

	return &Briefing{
		ID:          meta.ID,
		CountryCode: countryCode,
		Text:        text,
		AudioURL:    s.audioURL(meta.ID),
		ContentType: meta.ContentType,
		Size:        meta.Size,
		CreatedAt:   meta.CreatedAt,
		ExpiresAt:   meta.ExpiresAt,
	}, nil
}

// Audio opens a briefing's audio. The caller closes the reader.
func (s *Service) Audio(ctx context.Context, id string) (io.ReadCloser, *blobstore.Metadata, error) {
	rc, meta, err := s.store.Get(ctx, id)
	if errors.Is(err, blobstore.ErrBlobNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return rc, meta, nil
}

// Revoke deletes a briefing's audio so its URL stops working.
func (s *Service) Revoke(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, blobstore.ErrBlobNotFound) {
		return ErrNotFound
	}
	return err
}
