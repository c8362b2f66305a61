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
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const action1TokenPath = "/api/3.0/oauth2/token"

type action1TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Action1TokenSource exchanges Action1 API credentials for a bearer token.
type Action1TokenSource struct {
	client       *resty.Client
	clientID     string
	clientSecret string
	now          func() time.Time
}

// NewAction1TokenSource creates a token source against baseURL, e.g.
// https://app.action1.com. A nil httpClient uses resty's default transport.
func NewAction1TokenSource(baseURL, clientID, clientSecret string, httpClient *http.Client) *Action1TokenSource {
	var client *resty.Client
	if httpClient != nil {
		client = resty.NewWithClient(httpClient)
	} else {
		client = resty.New()
	}

	client.SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(30 * time.Second)

	return &Action1TokenSource{
		client:       client,
		clientID:     clientID,
		clientSecret: clientSecret,
		now:          time.Now,
	}
}

// FetchToken implements TokenSource.
func (a *Action1TokenSource) FetchToken(ctx context.Context) (Token, error) {
	var out action1TokenResponse

	resp, err := a.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"client_id":     a.clientID,
			"client_secret": a.clientSecret,
		}).
		SetResult(&out).
		ForceContentType("application/json").
		Post(action1TokenPath)
	if err != nil {
		return Token{}, fmt.Errorf("%w: action1: %w", errAuthFailed, err)
	}

	if resp.IsError() {
		return Token{}, fmt.Errorf("%w: action1: status %d: %s", errAuthFailed, resp.StatusCode(), resp.String())
	}

	if out.AccessToken == "" {
		return Token{}, errEmptyToken
	}

	tok := Token{Value: out.AccessToken}
	if out.ExpiresIn > 0 {
		tok.ExpiresAt = a.now().Add(time.Duration(out.ExpiresIn) * time.Second)
	}

	return tok, nil
}

// NewAction1TokenProvider returns a cached Action1 token provider.
func NewAction1TokenProvider(baseURL, clientID, clientSecret string, opts ...CacheOption) *CachedTokenProvider {
	return NewCachedTokenProvider(NewAction1TokenSource(baseURL, clientID, clientSecret, nil), opts...)
}
