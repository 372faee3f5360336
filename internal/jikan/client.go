package jikan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/malmirror/internal/domain"
	"github.com/varoOP/malmirror/internal/metrics"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.jikan.moe/v4"
	userAgent      = "malmirror"
)

// StatusError is returned for any non-2xx upstream response
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}

type userAgentTransport struct {
	Transport http.RoundTripper
	UserAgent string
}

func newUserAgentTransport(base http.RoundTripper) *userAgentTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &userAgentTransport{Transport: base, UserAgent: userAgent}
}

// RoundTrip sends a copy of req carrying the client headers
func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.UserAgent)
	r.Header.Set("Accept", "application/json")
	return t.Transport.RoundTrip(r)
}

// Client fetches single anime records from the Jikan v4 API. Every request
// waits on a shared limiter. Retries are left to the caller.
type Client struct {
	log     zerolog.Logger
	http    *http.Client
	baseURL string
	limiter *rate.Limiter
	metrics *metrics.Metrics
}

var _ domain.AnimeFetcher = (*Client)(nil)

func NewClient(log zerolog.Logger, cfg domain.JikanConfig, m *metrics.Metrics) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		log: log.With().Str("module", "jikan").Logger(),
		http: &http.Client{
			Timeout:   timeout,
			Transport: newUserAgentTransport(nil),
		},
		baseURL: baseURL,
		limiter: rate.NewLimiter(limit, 1),
		metrics: m,
	}
}

type animeEnvelope struct {
	Data *domain.Anime `json:"data"`
}

// FetchAnime requests <base>/anime/<id>. A 2xx response without a usable
// data object yields domain.ErrEmptyPayload.
func (c *Client) FetchAnime(ctx context.Context, malID int) (*domain.Anime, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter")
	}

	url := fmt.Sprintf("%s/anime/%d", c.baseURL, malID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	c.log.Trace().Str("url", url).Msg("fetching anime")

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.UpstreamRequest(0)
		return nil, errors.Wrap(err, "failed to fetch")
	}
	defer resp.Body.Close()

	c.metrics.UpstreamRequest(resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	var env animeEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal response")
	}

	if env.Data == nil || env.Data.MalID <= 0 {
		return nil, errors.Wrapf(domain.ErrEmptyPayload, "anime %d", malID)
	}

	return env.Data, nil
}
