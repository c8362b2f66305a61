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

// Package action1 reads managed endpoints from the Action1 API.
package action1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/carverauto/serialsync/pkg/fetcher"
	"github.com/carverauto/serialsync/pkg/logger"
	"github.com/carverauto/serialsync/pkg/models"
)

const (
	// Vendor is the name used for logs, metrics and Device.Source.
	Vendor = "action1"
	// DefaultBaseURL is the North America Action1 tenant.
	DefaultBaseURL = "https://app.action1.com"

	endpointsPath = "/api/3.0/endpoints/managed/"
	pageSize      = 100
)

var errNoOrganization = errors.New("action1 organization id is required")

// lastSeenLayouts are tried in order; Action1 has used both forms.
var lastSeenLayouts = []string{time.RFC3339, "2006-01-02_15-04-05"}

// Endpoint is the subset of an Action1 managed endpoint the runbooks use.
type Endpoint struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Serial   string `json:"serial"`
	OS       string `json:"OS"`
	LastSeen string `json:"last_seen"`
	User     string `json:"user"`
}

// Client wraps a fetcher with Action1 endpoints.
type Client struct {
	fetcher *fetcher.Client
	baseURL string
	orgID   string
	logger  logger.Logger
}

// New creates a Client. An empty baseURL uses DefaultBaseURL.
func New(f *fetcher.Client, baseURL, orgID string, log logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		fetcher: f,
		baseURL: strings.TrimRight(baseURL, "/"),
		orgID:   orgID,
		logger:  log,
	}
}

// ListEndpoints returns every managed endpoint in the organization.
func (c *Client) ListEndpoints(ctx context.Context, limit int) ([]models.Device, error) {
	if c.orgID == "" {
		return nil, errNoOrganization
	}

	uri := fmt.Sprintf("%s%s%s?limit=%d", c.baseURL, endpointsPath, url.PathEscape(c.orgID), pageSize)

	devices, err := fetcher.CollectAll(ctx, c.fetcher, uri, fetcher.Action1Adapter, limit, decodeEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to list endpoints: %w", err)
	}

	c.logger.Info().Int("count", len(devices)).Msg("Fetched Action1 endpoints")

	return devices, nil
}

func decodeEndpoint(raw json.RawMessage) (models.Device, error) {
	var e Endpoint
	if err := json.Unmarshal(raw, &e); err != nil {
		return models.Device{}, err
	}

	return models.Device{
		ID:              e.ID,
		SerialNumber:    e.Serial,
		DisplayName:     e.Name,
		OperatingSystem: e.OS,
		LastSync:        parseLastSeen(e.LastSeen),
		Source:          Vendor,
	}, nil
}

func parseLastSeen(s string) *time.Time {
	if s == "" {
		return nil
	}

	for _, layout := range lastSeenLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return &ts
		}
	}

	return nil
}
