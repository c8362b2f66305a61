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
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCredential struct {
	scopes []string
	token  azcore.AccessToken
	err    error
}

func (f *fakeCredential) GetToken(_ context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	f.scopes = opts.Scopes

	return f.token, f.err
}

func TestAzureTokenSource(t *testing.T) {
	expires := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	cred := &fakeCredential{token: azcore.AccessToken{Token: "graph", ExpiresOn: expires}}

	tok, err := NewAzureTokenSource(cred).FetchToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "graph", tok.Value)
	assert.Equal(t, expires, tok.ExpiresAt)
	assert.Equal(t, []string{GraphScope}, cred.scopes)
}

func TestAzureTokenSource_Error(t *testing.T) {
	boom := errors.New("AADSTS7000215: invalid client secret")
	cred := &fakeCredential{err: boom}

	_, err := NewAzureTokenSource(cred, "api://custom/.default").FetchToken(context.Background())
	require.ErrorIs(t, err, errAuthFailed)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"api://custom/.default"}, cred.scopes)
}

func TestAction1TokenSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, action1TokenPath, r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "id-1", r.PostForm.Get("client_id"))
		assert.Equal(t, "secret-1", r.PostForm.Get("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"a1-token","token_type":"Bearer","expires_in":3600}`))
	}))
	defer server.Close()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	source := NewAction1TokenSource(server.URL, "id-1", "secret-1", server.Client())
	source.now = func() time.Time { return now }

	tok, err := source.FetchToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a1-token", tok.Value)
	assert.Equal(t, now.Add(time.Hour), tok.ExpiresAt)
}

func TestAction1TokenSource_NoContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"plain-token","expires_in":60}`))
	}))
	defer server.Close()

	tok, err := NewAction1TokenSource(server.URL, "id", "secret", server.Client()).FetchToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "plain-token", tok.Value)
}

func TestAction1TokenSource_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := NewAction1TokenSource(server.URL, "id", "bad", server.Client()).FetchToken(context.Background())
	require.ErrorIs(t, err, errAuthFailed)
	assert.Contains(t, err.Error(), "401")
}

func TestAction1TokenSource_EmptyToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":""}`))
	}))
	defer server.Close()

	_, err := NewAction1TokenSource(server.URL, "id", "secret", server.Client()).FetchToken(context.Background())
	require.ErrorIs(t, err, errEmptyToken)
}
