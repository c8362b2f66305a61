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
	"net/http"
	"sync"
	"time"

	"github.com/carverauto/serialsync/pkg/logger"
	"github.com/carverauto/serialsync/pkg/models"
)

// Recorder collects per-vendor API accounting for the run summary.
type Recorder struct {
	mu     sync.Mutex
	logger logger.Logger
	stats  map[string]models.APIStats
}

// NewRecorder creates an empty Recorder.
func NewRecorder(log logger.Logger) *Recorder {
	return &Recorder{
		logger: log,
		stats:  make(map[string]models.APIStats),
	}
}

func (r *Recorder) RecordAPISuccess(vendor string, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.stats[vendor]
	s.Calls++
	s.Elapsed += models.Duration(duration)
	r.stats[vendor] = s
}

func (r *Recorder) RecordAPIFailure(vendor, endpoint string, statusCode int, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.stats[vendor]
	s.Calls++
	s.Failures++
	s.Elapsed += models.Duration(duration)
	r.stats[vendor] = s

	r.logger.Debug().
		Str("vendor", vendor).
		Str("endpoint", endpoint).
		Int("status_code", statusCode).
		Dur("duration", duration).
		Msg("API call failed")
}

func (r *Recorder) RecordRetry(vendor string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.stats[vendor]
	s.Retries++
	r.stats[vendor] = s
}

// Snapshot returns a copy of the collected stats.
func (r *Recorder) Snapshot() map[string]models.APIStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]models.APIStats, len(r.stats))
	for k, v := range r.stats {
		out[k] = v
	}

	return out
}

// MetricsHTTPClient wraps an HTTP client to collect API metrics
type MetricsHTTPClient struct {
	client   HTTPClient
	recorder *Recorder
	vendor   string
}

// NewMetricsHTTPClient creates a new HTTP client wrapper that collects metrics
func NewMetricsHTTPClient(client HTTPClient, vendor string, recorder *Recorder) *MetricsHTTPClient {
	return &MetricsHTTPClient{
		client:   client,
		recorder: recorder,
		vendor:   vendor,
	}
}

// Do executes an HTTP request and records metrics
func (m *MetricsHTTPClient) Do(req *http.Request) (*http.Response, error) {
	endpoint := req.URL.Path
	if endpoint == "" {
		endpoint = req.URL.String()
	}

	start := time.Now()

	resp, err := m.client.Do(req)
	duration := time.Since(start)

	if err != nil {
		m.recorder.RecordAPIFailure(m.vendor, endpoint, 0, duration)
		return resp, err
	}

	if resp.StatusCode >= 400 {
		m.recorder.RecordAPIFailure(m.vendor, endpoint, resp.StatusCode, duration)
	} else {
		m.recorder.RecordAPISuccess(m.vendor, duration)
	}

	return resp, err
}
