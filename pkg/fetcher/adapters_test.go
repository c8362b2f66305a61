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

package fetcher

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnipeITAdapter(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		body       string
		wantItems  int
		wantOffset string
	}{
		{
			name:       "first page of three",
			uri:        "https://snipe.example/api/v1/hardware?limit=2",
			body:       `{"total":5,"rows":[{"id":1},{"id":2}]}`,
			wantItems:  2,
			wantOffset: "2",
		},
		{
			name:       "middle page",
			uri:        "https://snipe.example/api/v1/hardware?limit=2&offset=2",
			body:       `{"total":5,"rows":[{"id":3},{"id":4}]}`,
			wantItems:  2,
			wantOffset: "4",
		},
		{
			name:      "last page",
			uri:       "https://snipe.example/api/v1/hardware?limit=2&offset=4",
			body:      `{"total":5,"rows":[{"id":5}]}`,
			wantItems: 1,
		},
		{
			name: "empty page never links onward",
			uri:  "https://snipe.example/api/v1/hardware?limit=2&offset=4",
			body: `{"total":9,"rows":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := SnipeITAdapter([]byte(tt.body), tt.uri)
			require.NoError(t, err)
			assert.Len(t, page.Items, tt.wantItems)

			if tt.wantOffset == "" {
				assert.Empty(t, page.Next)
				return
			}

			next, err := url.Parse(page.Next)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOffset, next.Query().Get("offset"))
			assert.Equal(t, "2", next.Query().Get("limit"))
		})
	}
}

func TestSnipeITAdapter_ErrorEnvelope(t *testing.T) {
	_, err := SnipeITAdapter([]byte(`{"status":"error","messages":"Unauthorized."}`), "https://snipe.example/api/v1/hardware")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unauthorized")
}

func TestGraphAdapter(t *testing.T) {
	page, err := GraphAdapter([]byte(`{"value":[{"id":"a"}],"@odata.nextLink":"https://graph/next"}`), "")
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, "https://graph/next", page.Next)
}

func TestAction1Adapter(t *testing.T) {
	page, err := Action1Adapter([]byte(`{"items":[{"id":"a"},{"id":"b"}],"next_page":""}`), "")
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Empty(t, page.Next)
}

func TestArrayAdapter(t *testing.T) {
	page, err := ArrayAdapter([]byte(`[{"id":1},{"id":2},{"id":3}]`), "")
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)

	_, err = ArrayAdapter([]byte(`{"id":1}`), "")
	require.ErrorIs(t, err, errNotAnArray)
}
