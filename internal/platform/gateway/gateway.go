// Package gateway is the client for the hosted generative-AI functions: the
// action-generation endpoint and the audio-briefing endpoint. Both take a
// bearer credential and a small JSON body.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

var (
	ErrNotConfigured     = errors.New("gateway: not configured")
	ErrRateLimited       = errors.New("gateway: rate limited")
	ErrQuotaExhausted    = errors.New("gateway: quota exhausted")
	ErrMalformedResponse = errors.New("gateway: malformed response")
)

// StatusError is any other non-2xx reply. Message carries the "error" field
// of the body when the gateway sent one.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("gateway: status %d", e.Status)
}

// Sections is the action-generation reply: one markdown bullet list per
// timeline.
type Sections struct {
	ShortTerm  string `json:"shortTerm"`
	MediumTerm string `json:"mediumTerm"`
	LongTerm   string `json:"longTerm"`
}

// Audio is a synthesized briefing.
type Audio struct {
	Data        []byte
	ContentType string
}

// Config locates the gateway.
type Config struct {
	BaseURL      string
	APIKey       string
	ActionsPath  string
	BriefingPath string
	Timeout      time.Duration
}

// Client calls the gateway. The zero-configured client (empty BaseURL)
// answers every call with ErrNotConfigured.
type Client struct {
	cfg    Config
	http   *resty.Client
	logger zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = resty.NewWithClient(hc)
	}
}

// New creates a gateway client.
func New(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	c := &Client{cfg: cfg, http: resty.New(), logger: zerolog.Nop()}
	for _, o := range opts {
		o(c)
	}
	c.http.
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json")
	return c
}

// Configured reports whether the client has somewhere to send requests.
func (c *Client) Configured() bool { return c.cfg.BaseURL != "" }

// GenerateActions sends the indicator context and returns the three
// recommendation sections. It is not retried.
func (c *Client) GenerateActions(ctx context.Context, indicatorContext string) (Sections, error) {
	if !c.Configured() {
		return Sections{}, ErrNotConfigured
	}
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetBody(map[string]string{"context": indicatorContext}).
		Post(c.cfg.ActionsPath)
	if err != nil {
		return Sections{}, fmt.Errorf("gateway: generate actions: %w", err)
	}
	c.logger.Debug().
		Str("path", c.cfg.ActionsPath).
		Int("status", resp.StatusCode()).
		Dur("latency", time.Since(start)).
		Msg("gateway call")
	if err := classify(resp); err != nil {
		return Sections{}, err
	}

	var out Sections
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return Sections{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return out, nil
}

// SynthesizeBriefing turns briefing text into audio.
func (c *Client) SynthesizeBriefing(ctx context.Context, text string) (Audio, error) {
	if !c.Configured() {
		return Audio{}, ErrNotConfigured
	}
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"text": text}).
		Post(c.cfg.BriefingPath)
	if err != nil {
		return Audio{}, fmt.Errorf("gateway: synthesize briefing: %w", err)
	}
	c.logger.Debug().
		Str("path", c.cfg.BriefingPath).
		Int("status", resp.StatusCode()).
		Int("bytes", len(resp.Body())).
		Dur("latency", time.Since(start)).
		Msg("gateway call")
	if err := classify(resp); err != nil {
		return Audio{}, err
	}
	if len(resp.Body()) == 0 {
		return Audio{}, fmt.Errorf("%w: empty audio payload", ErrMalformedResponse)
	}

	ct := resp.Header().Get("Content-Type")
	if ct == "" || strings.HasPrefix(ct, "application/json") {
		ct = "audio/mpeg"
	}
	return Audio{Data: resp.Body(), ContentType: ct}, nil
}

func classify(resp *resty.Response) error {
	switch code := resp.StatusCode(); {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusTooManyRequests:
		return ErrRateLimited
	case code == http.StatusPaymentRequired:
		return ErrQuotaExhausted
	default:
		var body struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(resp.Body(), &body)
		return &StatusError{Status: code, Message: body.Error}
	}
}
