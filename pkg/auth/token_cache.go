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

package auth

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultRefreshSkew is how long before the reported expiry a token is refreshed.
	DefaultRefreshSkew = 5 * time.Minute
	// DefaultTokenTTL applies when the source reports no expiry.
	DefaultTokenTTL = 45 * time.Minute
)

// CachedTokenProvider wraps a TokenSource and caches the access token until
// shortly before it expires, so long runs refresh transparently.
type CachedTokenProvider struct {
	source TokenSource
	skew   time.Duration
	ttl    time.Duration
	now    func() time.Time

	mu     sync.RWMutex
	token  string
	expiry time.Time
}

// CacheOption configures a CachedTokenProvider.
type CacheOption func(*CachedTokenProvider)

// WithRefreshSkew overrides DefaultRefreshSkew.
func WithRefreshSkew(d time.Duration) CacheOption {
	return func(c *CachedTokenProvider) { c.skew = d }
}

// WithDefaultTTL overrides DefaultTokenTTL.
func WithDefaultTTL(d time.Duration) CacheOption {
	return func(c *CachedTokenProvider) { c.ttl = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) CacheOption {
	return func(c *CachedTokenProvider) { c.now = now }
}

// NewCachedTokenProvider creates a new cached token provider.
func NewCachedTokenProvider(source TokenSource, opts ...CacheOption) *CachedTokenProvider {
	c := &CachedTokenProvider{
		source: source,
		skew:   DefaultRefreshSkew,
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *CachedTokenProvider) valid() bool {
	return c.token != "" && c.now().Before(c.expiry)
}

// GetAccessToken returns a cached token if valid, otherwise fetches a new one.
func (c *CachedTokenProvider) GetAccessToken(ctx context.Context) (string, error) {
	c.mu.RLock()
	if c.valid() {
		token := c.token
		c.mu.RUnlock()

		return token, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// another goroutine may have refreshed while we waited
	if c.valid() {
		return c.token, nil
	}

	tok, err := c.source.FetchToken(ctx)
	if err != nil {
		return "", err
	}

	if tok.Value == "" {
		return "", errEmptyToken
	}

	expiry := tok.ExpiresAt
	if expiry.IsZero() {
		expiry = c.now().Add(c.ttl)
	}

	c.token = tok.Value
	c.expiry = expiry.Add(-c.skew)

	return c.token, nil
}

// InvalidateToken clears the cached token.
func (c *CachedTokenProvider) InvalidateToken() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = ""
	c.expiry = time.Time{}
}
