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
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
)

var errNotAnArray = errors.New("expected a JSON array")

// GraphAdapter reads Microsoft Graph collections: {"value": [...], "@odata.nextLink": "..."}.
func GraphAdapter(body []byte, _ string) (Page, error) {
	var env struct {
		Value    []json.RawMessage `json:"value"`
		NextLink string            `json:"@odata.nextLink"`
	}

	if err := json.Unmarshal(body, &env); err != nil {
		return Page{}, err
	}

	return Page{Items: env.Value, Next: env.NextLink}, nil
}

// Action1Adapter reads Action1 collections: {"items": [...], "next_page": "..."}.
func Action1Adapter(body []byte, _ string) (Page, error) {
	var env struct {
		Items    []json.RawMessage `json:"items"`
		NextPage string            `json:"next_page"`
	}

	if err := json.Unmarshal(body, &env); err != nil {
		return Page{}, err
	}

	return Page{Items: env.Items, Next: env.NextPage}, nil
}

// SnipeITAdapter reads Snipe-IT collections: {"total": N, "rows": [...]}.
// Snipe-IT pages by offset, so the next URI is derived from the request's
// offset and the reported total.
func SnipeITAdapter(body []byte, requestURI string) (Page, error) {
	var env struct {
		Total  int               `json:"total"`
		Rows   []json.RawMessage `json:"rows"`
		Status string            `json:"status"`
		// Messages is a string or an object depending on the endpoint.
		Messages json.RawMessage `json:"messages"`
	}

	if err := json.Unmarshal(body, &env); err != nil {
		return Page{}, err
	}

	if env.Status == "error" {
		return Page{}, errors.New("snipe-it error: " + string(env.Messages))
	}

	page := Page{Items: env.Rows}

	u, err := url.Parse(requestURI)
	if err != nil {
		return Page{}, err
	}

	q := u.Query()
	offset, _ := strconv.Atoi(q.Get("offset"))

	nextOffset := offset + len(env.Rows)
	if len(env.Rows) > 0 && nextOffset < env.Total {
		q.Set("offset", strconv.Itoa(nextOffset))
		u.RawQuery = q.Encode()
		page.Next = u.String()
	}

	return page, nil
}

// ArrayAdapter reads a bare JSON array as a single page.
func ArrayAdapter(body []byte, _ string) (Page, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return Page{}, errors.Join(errNotAnArray, err)
	}

	return Page{Items: items}, nil
}
