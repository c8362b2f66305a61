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

// Package auth provides bearer token sources for the vendor APIs.
package auth

//go:generate mockgen -destination=mock_auth.go -package=auth github.com/carverauto/serialsync/pkg/auth TokenSource

import (
	"context"
	"errors"
	"time"
)

var (
	errEmptyToken = errors.New("token source returned an empty token")
	errAuthFailed = errors.New("authentication failed")
)

// TokenProvider returns a bearer token for the next request.
type TokenProvider interface {
	GetAccessToken(ctx context.Context) (string, error)
}

// Token is an access token with its expiry. A zero ExpiresAt means the
// source did not report one.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// TokenSource acquires a fresh token from an identity provider.
type TokenSource interface {
	FetchToken(ctx context.Context) (Token, error)
}

// StaticTokenProvider serves a long-lived API key, e.g. a Snipe-IT personal token.
type StaticTokenProvider string

// GetAccessToken returns the key, or an error when it is empty.
func (s StaticTokenProvider) GetAccessToken(_ context.Context) (string, error) {
	if s == "" {
		return "", errEmptyToken
	}

	return string(s), nil
}

// FetchToken returns the key with no expiry.
func (s StaticTokenProvider) FetchToken(ctx context.Context) (Token, error) {
	v, err := s.GetAccessToken(ctx)
	if err != nil {
		return Token{}, err
	}

	return Token{Value: v}, nil
}
