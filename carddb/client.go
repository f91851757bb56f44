package carddb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/net/http2"
	"golang.org/x/time/rate"

	"github.com/screen2deck/screen2deck/corpus"
)

// NamedResult is the response shape of a single-card online lookup.
type NamedResult struct {
	Card      corpus.Card
	Ambiguous bool
}

// Client is the online CardDB collaborator: bulk catalogue downloads plus
// single-card and autocomplete lookups. The single-card and autocomplete
// lookups are paced through a shared rate.Limiter and protected by a
// circuit breaker, so a slow or failing upstream degrades gracefully
// instead of stalling every job; BulkFetch uses neither.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *circuitBreaker
}

// Config controls Client pacing and resilience.
type Config struct {
	BaseURL          string
	Timeout          time.Duration
	MinRequestGap    time.Duration
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// DefaultConfig mirrors the default online-CardDB configuration surface:
// 5s per-call timeout, a 120ms minimum gap between requests.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:          baseURL,
		Timeout:          5 * time.Second,
		MinRequestGap:    120 * time.Millisecond,
		BreakerThreshold: 5,
		BreakerCooldown:  30 * time.Second,
	}
}

// New constructs a Client. The transport is upgraded to HTTP/2 where the
// upstream supports it.
func New(cfg Config) *Client {
	transport := &http.Transport{}
	_ = http2.ConfigureTransport(transport)
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout, Transport: transport},
		limiter:    rate.NewLimiter(rate.Every(cfg.MinRequestGap), 1),
		breaker:    newCircuitBreaker(cfg.BreakerThreshold, cfg.BreakerCooldown),
	}
}

// BulkFetch streams the full card catalogue dump. The returned
// io.ReadCloser is handed directly to corpus.Corpus.Rebuild by the caller.
func (c *Client) BulkFetch(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/bulk/default-cards", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bulk fetch: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("bulk fetch: status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// Named performs a single-card online lookup, optionally using the
// upstream's fuzzy-search mode. It is paced by the shared rate limiter and
// short-circuited by the breaker when the upstream is unhealthy.
func (c *Client) Named(ctx context.Context, query string, fuzzy bool) (NamedResult, error) {
	if !c.breaker.allow() {
		return NamedResult{}, ErrBreakerOpen
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return NamedResult{}, err
	}

	param := "exact"
	if fuzzy {
		param = "fuzzy"
	}
	u := fmt.Sprintf("%s/cards/named?%s=%s", c.baseURL, param, url.QueryEscape(query))

	var out corpus.Card
	err := c.doWithRetry(ctx, u, &out)
	if err != nil {
		c.breaker.recordFailure()
		return NamedResult{}, err
	}
	c.breaker.recordSuccess()
	return NamedResult{Card: out}, nil
}

// Autocomplete returns prefix suggestions for a partial card name.
func (c *Client) Autocomplete(ctx context.Context, prefix string) ([]string, error) {
	if !c.breaker.allow() {
		return nil, ErrBreakerOpen
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/cards/autocomplete?q=%s", c.baseURL, url.QueryEscape(prefix))
	var out struct {
		Data []string `json:"data"`
	}
	if err := c.doWithRetry(ctx, u, &out); err != nil {
		c.breaker.recordFailure()
		return nil, err
	}
	c.breaker.recordSuccess()
	return out.Data, nil
}

func (c *Client) doWithRetry(ctx context.Context, u string, out interface{}) error {
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("carddb: transient status %d", resp.StatusCode)
		}
		if resp.StatusCode == http.StatusNotFound {
			return backoff.Permanent(ErrNotFound)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("carddb: status %d", resp.StatusCode))
		}
		return json.NewDecoder(resp.Body).Decode(out)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	return backoff.Retry(op, policy)
}
