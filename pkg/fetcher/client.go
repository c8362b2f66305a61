/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package fetcher is the resilient HTTP client shared by every vendor
// integration: bearer auth, bounded retry on throttling and server errors,
// and sequential next-link pagination.
package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/carverauto/serialsync/pkg/logger"
)

const (
	DefaultMaxRetries     = 5
	DefaultInitialBackoff = 5 * time.Second
	DefaultMaxBackoff     = 300 * time.Second
	defaultHTTPTimeout    = 60 * time.Second
	maxErrorBodyBytes     = 4096
)

//go:generate mockgen -destination=mock_fetcher.go -package=fetcher github.com/carverauto/serialsync/pkg/fetcher HTTPClient,TokenProvider

// HTTPClient defines the interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenProvider defines the interface for obtaining access tokens.
type TokenProvider interface {
	GetAccessToken(ctx context.Context) (string, error)
}

// tokenInvalidator is implemented by caching providers. A 401 drops the
// cached token and the request is sent once more.
type tokenInvalidator interface {
	InvalidateToken()
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the production Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RetryPolicy bounds the retry loop. MaxRetries is the number of attempts
// made against a throttled or failing endpoint before giving up.
type RetryPolicy struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryPolicy returns 5 attempts, 5s initial backoff, 300s ceiling.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:     DefaultMaxRetries,
		InitialBackoff: DefaultInitialBackoff,
		MaxBackoff:     DefaultMaxBackoff,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxRetries < 1 {
		p.MaxRetries = 1
	}

	if p.InitialBackoff <= 0 {
		p.InitialBackoff = DefaultInitialBackoff
	}

	if p.MaxBackoff <= 0 {
		p.MaxBackoff = DefaultMaxBackoff
	}

	if p.MaxBackoff < p.InitialBackoff {
		p.MaxBackoff = p.InitialBackoff
	}

	return p
}

// Client issues authenticated requests against one vendor API.
type Client struct {
	name       string
	httpClient HTTPClient
	tokens     TokenProvider
	policy     RetryPolicy
	sleep      Sleeper
	headers    map[string]string
	recorder   *Recorder
	logger     logger.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.policy = p.normalized() }
}

func WithSleeper(s Sleeper) Option {
	return func(c *Client) { c.sleep = s }
}

func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// WithRecorder routes per-call accounting into r. The HTTP client is wrapped
// with a MetricsHTTPClient so calls and failures are counted at the wire.
func WithRecorder(r *Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// New creates a Client. name identifies the vendor in logs, spans and
// metrics. A nil httpClient gets a plain net/http client with a timeout; a
// nil tokens provider sends no Authorization header.
func New(name string, httpClient HTTPClient, tokens TokenProvider, log logger.Logger, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}

	c := &Client{
		name:       name,
		httpClient: httpClient,
		tokens:     tokens,
		policy:     DefaultRetryPolicy(),
		sleep:      SleepContext,
		headers:    map[string]string{"Accept": "application/json"},
		logger:     log,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.recorder != nil {
		c.httpClient = NewMetricsHTTPClient(c.httpClient, name, c.recorder)
	}

	return c
}

// Name returns the vendor name the client was created with.
func (c *Client) Name() string {
	return c.name
}

type attemptResult int

const (
	attemptSuccess attemptResult = iota
	attemptRetryable
	attemptFatal
)

type attempt struct {
	result     attemptResult
	status     int
	body       []byte
	retryAfter time.Duration
	err        error
}

// Get is Do with GET and no body.
func (c *Client) Get(ctx context.Context, uri string) ([]byte, error) {
	return c.Do(ctx, http.MethodGet, uri, nil)
}

// Do sends one logical request, retrying 429 and 5xx responses. body, when
// non-nil, is JSON encoded. The raw response body is returned on 2xx.
func (c *Client) Do(ctx context.Context, method, uri string, body any) ([]byte, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	ctx, span := logger.GetTracer("serialsync/fetcher").Start(ctx, "fetcher.request",
		trace.WithAttributes(
			attribute.String("vendor", c.name),
			attribute.String("http.method", method),
			attribute.String("http.url", uri),
		))
	defer span.End()

	bo := &backoff.ExponentialBackOff{
		InitialInterval:     c.policy.InitialBackoff,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         c.policy.MaxBackoff,
	}
	bo.Reset()

	refreshed := false

	for attemptNo := 1; ; attemptNo++ {
		a := c.attempt(ctx, method, uri, payload)

		if a.status == http.StatusUnauthorized && !refreshed {
			if inv, ok := c.tokens.(tokenInvalidator); ok {
				refreshed = true
				inv.InvalidateToken()

				c.logger.Warn().
					Str("vendor", c.name).
					Str("uri", uri).
					Msg("Access token rejected, refreshing")

				// The refresh does not use up an attempt.
				attemptNo--

				continue
			}
		}

		switch a.result {
		case attemptSuccess:
			span.SetAttributes(attribute.Int("http.status_code", a.status), attribute.Int("attempts", attemptNo))
			return a.body, nil
		case attemptFatal:
			span.RecordError(a.err)
			span.SetStatus(codes.Error, a.err.Error())

			var se *StatusError
			if errors.As(a.err, &se) {
				se.Attempts = attemptNo
			}

			return nil, a.err
		case attemptRetryable:
		}

		if attemptNo >= c.policy.MaxRetries {
			err := &StatusError{
				Method:     method,
				URI:        uri,
				StatusCode: a.status,
				Body:       truncate(a.body),
				Attempts:   attemptNo,
				Exhausted:  true,
			}

			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())

			return nil, err
		}

		// The schedule advances on every retry even when the server's hint wins.
		wait := bo.NextBackOff()
		if a.retryAfter > 0 {
			// Retry-After wins over the schedule but never exceeds MaxBackoff.
			wait = min(a.retryAfter, c.policy.MaxBackoff)
		}

		c.logger.Warn().
			Str("vendor", c.name).
			Str("method", method).
			Str("uri", uri).
			Int("status", a.status).
			Int("attempt", attemptNo).
			Int("max_retries", c.policy.MaxRetries).
			Dur("wait", wait).
			Msg("Request throttled or failed, retrying")

		if c.recorder != nil {
			c.recorder.RecordRetry(c.name)
		}

		if err := c.sleep(ctx, wait); err != nil {
			return nil, fmt.Errorf("retry wait for %s %s: %w", method, uri, err)
		}
	}
}

func (c *Client) attempt(ctx context.Context, method, uri string, payload []byte) attempt {
	var reader io.Reader = http.NoBody
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, uri, reader)
	if err != nil {
		return attempt{result: attemptFatal, err: fmt.Errorf("failed to create request: %w", err)}
	}

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		token, err := c.tokens.GetAccessToken(ctx)
		if err != nil {
			return attempt{result: attemptFatal, err: fmt.Errorf("failed to get access token: %w", err)}
		}

		if token == "" {
			return attempt{result: attemptFatal, err: ErrEmptyToken}
		}

		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return attempt{result: attemptFatal, err: fmt.Errorf("%s %s: %w", method, uri, err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return attempt{result: attemptFatal, err: fmt.Errorf("failed to read response body: %w", err)}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return attempt{result: attemptSuccess, status: resp.StatusCode, body: body}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return attempt{
			result:     attemptRetryable,
			status:     resp.StatusCode,
			body:       body,
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
	default:
		return attempt{
			result: attemptFatal,
			status: resp.StatusCode,
			err: &StatusError{
				Method:     method,
				URI:        uri,
				StatusCode: resp.StatusCode,
				Body:       truncate(body),
			},
		}
	}
}

// parseRetryAfter understands both delta-seconds and HTTP-date forms. It
// returns zero when the header is absent or unusable.
func parseRetryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}

	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0
		}

		return time.Duration(secs) * time.Second
	}

	if at, err := http.ParseTime(v); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}

	return 0
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		payload, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}

		return payload, nil
	}
}

func truncate(body []byte) string {
	if len(body) > maxErrorBodyBytes {
		return string(body[:maxErrorBodyBytes]) + "...(truncated)"
	}

	return string(body)
}
