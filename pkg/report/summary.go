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

// Package report turns reconciliation results into summaries, HTML reports,
// emails and published events.
package report

//go:generate mockgen -destination=mock_report.go -package=report github.com/carverauto/serialsync/pkg/report Mailer,Publisher

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/carverauto/serialsync/pkg/index"
	"github.com/carverauto/serialsync/pkg/models"
)

// Meta is the run context that is not part of the Tally.
type Meta struct {
	RunID          string
	Runbook        string
	DryRun         bool
	StartedAt      time.Time
	FinishedAt     time.Time
	SourceRecords  int
	SourceFiltered int
	TargetRecords  int
	IndexStats     index.Stats
	API            map[string]models.APIStats
}

// Summarize builds the run summary. It is always produced, including for
// runs where every record was skipped.
func Summarize(tally models.Tally, meta Meta) models.Summary {
	return models.Summary{
		RunID:     meta.RunID,
		Runbook:   meta.Runbook,
		DryRun:    meta.DryRun,
		StartedAt: meta.StartedAt,
		Duration:  models.Duration(meta.FinishedAt.Sub(meta.StartedAt)),

		SourceRecords:    meta.SourceRecords,
		SourceFiltered:   meta.SourceFiltered,
		TargetRecords:    meta.TargetRecords,
		TargetNoSerial:   meta.IndexStats.NoSerial,
		TargetDuplicates: meta.IndexStats.Duplicates,

		Total:                tally.Total(),
		SkippedNoSerial:      tally.Count(models.OutcomeSkippedNoSerial),
		SkippedNoSourceValue: tally.Count(models.OutcomeSkippedNoSourceValue),
		NotFoundInTarget:     tally.Count(models.OutcomeNotFoundInTarget),
		Missing:              tally.Count(models.OutcomeMissing),
		NoChange:             tally.Count(models.OutcomeMatchedNoChange),
		NeedsUpdate:          tally.Count(models.OutcomeMatchedNeedsUpdate),

		Updated: tally.Updated,
		Errors:  tally.Errors,
		Batches: tally.Batches,

		API: meta.API,
	}
}

// WriteSummary writes s as a single JSON line.
func WriteSummary(w io.Writer, s *models.Summary) error {
	if err := json.NewEncoder(w).Encode(s); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	return nil
}
