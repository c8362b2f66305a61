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
	"iter"
)

// Page is the vendor-neutral shape of one page of a collection.
type Page struct {
	Items []json.RawMessage
	// Next is the absolute URI of the following page, empty on the last page.
	Next string
}

// PageAdapter maps a raw response body into a Page. requestURI is the URI
// that produced the body, for vendors that page by offset.
type PageAdapter func(body []byte, requestURI string) (Page, error)

// Pages walks a paginated collection one page at a time. When limit > 0 the
// walk stops once at least limit items were yielded; the check runs after
// each page, so the last page is never cut short here.
func (c *Client) Pages(ctx context.Context, uri string, adapter PageAdapter, limit int) iter.Seq2[Page, error] {
	return func(yield func(Page, error) bool) {
		next := uri
		seen := 0
		visited := map[string]struct{}{}

		for next != "" {
			body, err := c.Get(ctx, next)
			if err != nil {
				yield(Page{}, err)
				return
			}

			page, err := adapter(body, next)
			if err != nil {
				yield(Page{}, fmt.Errorf("%w: %s: %w", ErrMalformedResponse, next, err))
				return
			}

			visited[next] = struct{}{}

			if _, ok := visited[page.Next]; ok {
				yield(Page{}, fmt.Errorf("%w: %s", errPaginationLoop, page.Next))
				return
			}

			seen += len(page.Items)

			c.logger.Debug().
				Str("vendor", c.name).
				Int("page_items", len(page.Items)).
				Int("total_so_far", seen).
				Msg("Fetched page")

			if !yield(page, nil) {
				return
			}

			if limit > 0 && seen >= limit {
				return
			}

			next = page.Next
		}
	}
}

// CollectAll drains Pages and decodes every item with decode. The result is
// truncated to limit when limit > 0.
func CollectAll[T any](
	ctx context.Context, c *Client, uri string, adapter PageAdapter, limit int, decode func(json.RawMessage) (T, error),
) ([]T, error) {
	var out []T

	for page, err := range c.Pages(ctx, uri, adapter, limit) {
		if err != nil {
			return nil, err
		}

		for _, raw := range page.Items {
			item, err := decode(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrMalformedResponse, c.name, err)
			}

			out = append(out, item)
		}
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}
