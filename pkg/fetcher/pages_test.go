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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID int `json:"id"`
}

func decodeItem(raw json.RawMessage) (item, error) {
	var it item
	err := json.Unmarshal(raw, &it)

	return it, err
}

// graphServer serves pages of pageSize items up to total, linked by @odata.nextLink.
func graphServer(t *testing.T, total, pageSize int, requests *atomic.Int32) *httptest.Server {
	t.Helper()

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		start, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		end := min(start+pageSize, total)

		values := make([]item, 0, end-start)
		for i := start; i < end; i++ {
			values = append(values, item{ID: i})
		}

		resp := map[string]any{"value": values}
		if end < total {
			resp["@odata.nextLink"] = fmt.Sprintf("%s/devices?skip=%d", server.URL, end)
		}

		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)

	return server
}

func TestCollectAll_FollowsNextLinks(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32

	server := graphServer(t, 250, 100, &requests)
	c := newTestClient(t, DefaultRetryPolicy(), (&recordingSleeper{}).sleep)

	items, err := CollectAll(context.Background(), c, server.URL+"/devices", GraphAdapter, 0, decodeItem)
	require.NoError(t, err)
	require.Len(t, items, 250)
	assert.Equal(t, 0, items[0].ID)
	assert.Equal(t, 249, items[249].ID)
	assert.Equal(t, int32(3), requests.Load())
}

func TestCollectAll_LimitCheckedAfterEachPage(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32

	server := graphServer(t, 1000, 100, &requests)
	c := newTestClient(t, DefaultRetryPolicy(), (&recordingSleeper{}).sleep)

	items, err := CollectAll(context.Background(), c, server.URL+"/devices", GraphAdapter, 150, decodeItem)
	require.NoError(t, err)
	assert.Len(t, items, 150)
	assert.Equal(t, int32(2), requests.Load(), "limit must stop the walk after the page that reached it")
}

func TestPages_YieldsWholePagesUnderLimit(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32

	server := graphServer(t, 1000, 100, &requests)
	c := newTestClient(t, DefaultRetryPolicy(), (&recordingSleeper{}).sleep)

	sizes := []int{}
	for page, err := range c.Pages(context.Background(), server.URL+"/devices", GraphAdapter, 150) {
		require.NoError(t, err)
		sizes = append(sizes, len(page.Items))
	}

	assert.Equal(t, []int{100, 100}, sizes)
}

func TestPages_StopsWhenConsumerBreaks(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32

	server := graphServer(t, 1000, 100, &requests)
	c := newTestClient(t, DefaultRetryPolicy(), (&recordingSleeper{}).sleep)

	for _, err := range c.Pages(context.Background(), server.URL+"/devices", GraphAdapter, 0) {
		require.NoError(t, err)
		break
	}

	assert.Equal(t, int32(1), requests.Load())
}

func TestPages_MalformedBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "<html>login</html>")
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, DefaultRetryPolicy(), (&recordingSleeper{}).sleep)

	_, err := CollectAll(context.Background(), c, server.URL, GraphAdapter, 0, decodeItem)
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestPages_SelfReferencingNextLink(t *testing.T) {
	t.Parallel()

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"value":           []item{{ID: 1}},
			"@odata.nextLink": server.URL + "/loop",
		})
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, DefaultRetryPolicy(), (&recordingSleeper{}).sleep)

	_, err := CollectAll(context.Background(), c, server.URL+"/loop", GraphAdapter, 0, decodeItem)
	require.ErrorIs(t, err, errPaginationLoop)
}

func TestPages_ErrorSurfacesFromMiddlePage(t *testing.T) {
	t.Parallel()

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/second" {
			http.Error(w, "nope", http.StatusUnauthorized)
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"value":           []item{{ID: 1}},
			"@odata.nextLink": server.URL + "/second",
		})
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, DefaultRetryPolicy(), (&recordingSleeper{}).sleep)

	items, err := CollectAll(context.Background(), c, server.URL+"/first", GraphAdapter, 0, decodeItem)
	require.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Nil(t, items)
}

func TestPages_CycleAcrossPages(t *testing.T) {
	t.Parallel()

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next := server.URL + "/b"
		if r.URL.Path == "/b" {
			next = server.URL + "/a"
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"value":           []item{{ID: 1}},
			"@odata.nextLink": next,
		})
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, DefaultRetryPolicy(), (&recordingSleeper{}).sleep)

	_, err := CollectAll(context.Background(), c, server.URL+"/a", GraphAdapter, 0, decodeItem)
	require.ErrorIs(t, err, errPaginationLoop)
}
