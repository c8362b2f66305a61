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

package action1

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/serialsync/pkg/auth"
	"github.com/carverauto/serialsync/pkg/fetcher"
	"github.com/carverauto/serialsync/pkg/logger"
)

func TestListEndpoints(t *testing.T) {
	var base string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/3.0/endpoints/managed/org-1", r.URL.Path)
		assert.Equal(t, "Bearer a1", r.Header.Get("Authorization"))

		if r.URL.Query().Get("from") == "" {
			_, _ = io.WriteString(w, `{"items":[
				{"id":"e1","name":"WS-01","serial":"ABC123","OS":"Windows 11","last_seen":"2025-02-01T08:00:00Z"}
			],"next_page":"`+base+`/api/3.0/endpoints/managed/org-1?limit=100&from=100"}`)

			return
		}

		_, _ = io.WriteString(w, `{"items":[
			{"id":"e2","name":"WS-02","serial":"","OS":"Windows 10","last_seen":"2025-01-31_23-59-00"}
		],"next_page":""}`)
	}))
	defer server.Close()

	base = server.URL

	f := fetcher.New(Vendor, server.Client(), auth.StaticTokenProvider("a1"), logger.NewTestLogger())
	devices, err := New(f, server.URL, "org-1", logger.NewTestLogger()).ListEndpoints(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, devices, 2)

	assert.Equal(t, "ABC123", devices[0].SerialNumber)
	assert.Equal(t, "WS-01", devices[0].DisplayName)
	assert.Equal(t, Vendor, devices[0].Source)
	require.NotNil(t, devices[0].LastSync)
	require.NotNil(t, devices[1].LastSync)
	assert.Equal(t, 31, devices[1].LastSync.Day())
}

func TestListEndpoints_RequiresOrganization(t *testing.T) {
	f := fetcher.New(Vendor, nil, auth.StaticTokenProvider("a1"), logger.NewTestLogger())

	_, err := New(f, "", "", logger.NewTestLogger()).ListEndpoints(context.Background(), 0)
	require.ErrorIs(t, err, errNoOrganization)
}

func TestParseLastSeen(t *testing.T) {
	assert.Nil(t, parseLastSeen(""))
	assert.Nil(t, parseLastSeen("yesterday"))
	assert.NotNil(t, parseLastSeen("2025-01-31T23:59:00Z"))
	assert.NotNil(t, parseLastSeen("2025-01-31_23-59-00"))
}
