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

package intune

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/carverauto/serialsync/pkg/fetcher"
	"github.com/carverauto/serialsync/pkg/logger"
	"github.com/carverauto/serialsync/pkg/models"
)

// Client wraps a Graph fetcher with Intune endpoints.
type Client struct {
	fetcher *fetcher.Client
	baseURL string
	logger  logger.Logger
}

// New creates a Client. An empty baseURL uses DefaultBaseURL.
func New(f *fetcher.Client, baseURL string, log logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		fetcher: f,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log,
	}
}

// ListManagedDevices returns every Intune managed device, Value carrying the
// device category name.
func (c *Client) ListManagedDevices(ctx context.Context, limit int) ([]models.Device, error) {
	uri := c.baseURL + managedDevicesPath + "?$select=" + url.QueryEscape(managedDeviceSelect)

	devices, err := fetcher.CollectAll(ctx, c.fetcher, uri, fetcher.GraphAdapter, limit, decodeManagedDevice)
	if err != nil {
		return nil, fmt.Errorf("failed to list managed devices: %w", err)
	}

	c.logger.Info().Int("count", len(devices)).Msg("Fetched Intune managed devices")

	return devices, nil
}

func decodeManagedDevice(raw json.RawMessage) (models.Device, error) {
	var d ManagedDevice
	if err := json.Unmarshal(raw, &d); err != nil {
		return models.Device{}, err
	}

	return models.Device{
		ID:              d.ID,
		SerialNumber:    d.SerialNumber,
		DisplayName:     d.DeviceName,
		OperatingSystem: d.OperatingSystem,
		LastSync:        d.LastSyncDateTime,
		Ownership:       models.ParseOwnership(d.ManagedDeviceOwnerType),
		Value:           d.DeviceCategoryDisplayName,
		Source:          Vendor,
	}, nil
}

// ListAutopilotDevices returns every Autopilot identity, Value carrying the group tag.
func (c *Client) ListAutopilotDevices(ctx context.Context, limit int) ([]models.Device, error) {
	devices, err := fetcher.CollectAll(ctx, c.fetcher, c.baseURL+autopilotPath, fetcher.GraphAdapter, limit, decodeAutopilotDevice)
	if err != nil {
		return nil, fmt.Errorf("failed to list autopilot devices: %w", err)
	}

	c.logger.Info().Int("count", len(devices)).Msg("Fetched Autopilot device identities")

	return devices, nil
}

func decodeAutopilotDevice(raw json.RawMessage) (models.Device, error) {
	var d AutopilotDevice
	if err := json.Unmarshal(raw, &d); err != nil {
		return models.Device{}, err
	}

	return models.Device{
		ID:              d.ID,
		SerialNumber:    d.SerialNumber,
		DisplayName:     d.DisplayName,
		OperatingSystem: d.Model,
		LastSync:        d.LastContactedDateTime,
		Ownership:       models.OwnershipCorporate,
		Value:           d.GroupTag,
		Source:          Vendor,
	}, nil
}

// ListDeviceCategories returns the category id for every display name.
func (c *Client) ListDeviceCategories(ctx context.Context) (map[string]string, error) {
	decode := func(raw json.RawMessage) (DeviceCategory, error) {
		var cat DeviceCategory
		err := json.Unmarshal(raw, &cat)

		return cat, err
	}

	cats, err := fetcher.CollectAll(ctx, c.fetcher, c.baseURL+categoriesPath, fetcher.GraphAdapter, 0, decode)
	if err != nil {
		return nil, fmt.Errorf("failed to list device categories: %w", err)
	}

	out := make(map[string]string, len(cats))
	for _, cat := range cats {
		out[cat.DisplayName] = cat.ID
	}

	return out, nil
}
