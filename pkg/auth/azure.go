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

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// GraphScope is the client-credentials scope for Microsoft Graph.
const GraphScope = "https://graph.microsoft.com/.default"

// AzureTokenSource fetches Entra ID tokens through an azcore credential.
type AzureTokenSource struct {
	cred   azcore.TokenCredential
	scopes []string
}

// NewAzureTokenSource wraps an existing credential. Scopes default to GraphScope.
func NewAzureTokenSource(cred azcore.TokenCredential, scopes ...string) *AzureTokenSource {
	if len(scopes) == 0 {
		scopes = []string{GraphScope}
	}

	return &AzureTokenSource{cred: cred, scopes: scopes}
}

// NewClientSecretCredential builds the app-registration credential shared by
// the token source and the Graph mail client.
func NewClientSecretCredential(tenantID, clientID, secret string) (azcore.TokenCredential, error) {
	cred, err := azidentity.NewClientSecretCredential(tenantID, clientID, secret, &azidentity.ClientSecretCredentialOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create client secret credential: %w", err)
	}

	return cred, nil
}

// FetchToken implements TokenSource.
func (a *AzureTokenSource) FetchToken(ctx context.Context) (Token, error) {
	tok, err := a.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: a.scopes})
	if err != nil {
		return Token{}, fmt.Errorf("%w: entra id: %w", errAuthFailed, err)
	}

	return Token{Value: tok.Token, ExpiresAt: tok.ExpiresOn}, nil
}

// NewAzureTokenProvider returns a cached Graph token provider for an app registration.
func NewAzureTokenProvider(tenantID, clientID, secret string, opts ...CacheOption) (*CachedTokenProvider, azcore.TokenCredential, error) {
	cred, err := NewClientSecretCredential(tenantID, clientID, secret)
	if err != nil {
		return nil, nil, err
	}

	return NewCachedTokenProvider(NewAzureTokenSource(cred), opts...), cred, nil
}
