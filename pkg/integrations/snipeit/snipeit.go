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

// Package snipeit reads hardware assets from the Snipe-IT REST API.
package snipeit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/serialsync/pkg/fetcher"
	"github.com/carverauto/serialsync/pkg/logger"
	"github.com/carverauto/serialsync/pkg/models"
)

const (
	// Vendor is the name used for logs, metrics and Device.Source.
	Vendor = "snipeit"

	hardwarePath = "/api/v1/hardware"
	// PageSize is the number of rows requested per page; Snipe-IT caps it at 500.
	PageSize = 500

	dateTimeLayout = "2006-01-02 15:04:05"
)

type namedRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type dateTime struct {
	DateTime  string `json:"datetime"`
	Formatted string `json:"formatted"`
}

// Hardware is the subset of a Snipe-IT hardware row the runbooks use.
type Hardware struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	AssetTag  string    `json:"asset_tag"`
	Serial    string    `json:"serial"`
	Category  *namedRef `json:"category"`
	Model     *namedRef `json:"model"`
	UpdatedAt *dateTime `json:"updated_at"`
}

// Client wraps a fetcher with Snipe-IT endpoints.
type Client struct {
	fetcher *fetcher.Client
	baseURL string
	logger  logger.Logger
}

// New creates a Client against baseURL, e.g. https://assets.example.com.
func New(f *fetcher.Client, baseURL string, log logger.Logger) *Client {
	return &Client{
		fetcher: f,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log,
	}
}

// ListHardware returns every hardware asset, Value carrying the category name.
func (c *Client) ListHardware(ctx context.Context, limit int) ([]models.Device, error) {
	uri := fmt.Sprintf("%s%s?limit=%d&offset=0", c.baseURL, hardwarePath, PageSize)

	devices, err := fetcher.CollectAll(ctx, c.fetcher, uri, fetcher.SnipeITAdapter, limit, decodeHardware)
	if err != nil {
		return nil, fmt.Errorf("failed to list hardware: %w", err)
	}

	c.logger.Info().Int("count", len(devices)).Msg("Fetched Snipe-IT hardware")

	return devices, nil
}

func decodeHardware(raw json.RawMessage) (models.Device, error) {
	var h Hardware
	if err := json.Unmarshal(raw, &h); err != nil {
		return models.Device{}, err
	}

	d := models.Device{
		ID:           strconv.Itoa(h.ID),
		SerialNumber: h.Serial,
		DisplayName:  h.Name,
		Ownership:    models.OwnershipCorporate,
		Source:       Vendor,
	}

	if h.Category != nil {
		d.Value = h.Category.Name
	}

	if h.Model != nil {
		d.OperatingSystem = h.Model.Name
	}

	if h.UpdatedAt != nil {
		if ts, err := time.Parse(dateTimeLayout, h.UpdatedAt.DateTime); err == nil {
			d.LastSync = &ts
		}
	}

	return d, nil
}
