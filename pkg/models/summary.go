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

package models

import "time"

// Summary is the structured result of one successful run.
type Summary struct {
	RunID     string    `json:"run_id"`
	Runbook   string    `json:"runbook"`
	DryRun    bool      `json:"dry_run"`
	StartedAt time.Time `json:"started_at"`
	Duration  Duration  `json:"duration"`

	// SourceFiltered counts source records dropped by the runbook pre-filter;
	// they are not classified. TargetNoSerial counts target records excluded
	// from the index.
	SourceRecords    int `json:"source_records"`
	SourceFiltered   int `json:"source_filtered"`
	TargetRecords    int `json:"target_records"`
	TargetNoSerial   int `json:"target_no_serial"`
	TargetDuplicates int `json:"target_duplicates"`

	Total                int `json:"total"`
	SkippedNoSerial      int `json:"skipped_no_serial"`
	SkippedNoSourceValue int `json:"skipped_no_source_value"`
	NotFoundInTarget     int `json:"not_found_in_target"`
	Missing              int `json:"missing"`
	NoChange             int `json:"no_change"`
	NeedsUpdate          int `json:"needs_update"`

	Updated int `json:"updated"`
	Errors  int `json:"errors"`
	Batches int `json:"batches"`

	API map[string]APIStats `json:"api,omitempty"`
}

// APIStats is the per-vendor request accounting collected by the fetcher.
type APIStats struct {
	Calls    int      `json:"calls"`
	Failures int      `json:"failures"`
	Retries  int      `json:"retries"`
	Elapsed  Duration `json:"elapsed"`
}
