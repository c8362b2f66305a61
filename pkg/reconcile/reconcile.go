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

// Package reconcile classifies source records against a target index.
package reconcile

import (
	"strings"

	"github.com/carverauto/serialsync/pkg/index"
	"github.com/carverauto/serialsync/pkg/models"
)

// Mode selects how a matched record is judged.
type Mode int

const (
	// ExistenceCheck only asks whether the source serial exists in the target.
	ExistenceCheck Mode = iota
	// AttributeSync compares the source Value against the target's.
	AttributeSync
)

func (m Mode) String() string {
	switch m {
	case ExistenceCheck:
		return "existence-check"
	case AttributeSync:
		return "attribute-sync"
	default:
		return "unknown"
	}
}

// Policy configures classification.
type Policy struct {
	Mode Mode
}

// Classify returns the single Outcome for rec. Rules are evaluated in order
// and the first match wins. Value comparison is exact and case-sensitive.
func Classify(rec models.Device, idx *index.Index, policy Policy) models.Outcome {
	if index.Normalize(rec.SerialNumber) == "" {
		return models.OutcomeSkippedNoSerial
	}

	if policy.Mode == AttributeSync && strings.TrimSpace(rec.Value) == "" {
		return models.OutcomeSkippedNoSourceValue
	}

	target, ok := idx.Lookup(rec.SerialNumber)
	if !ok {
		if policy.Mode == ExistenceCheck {
			return models.OutcomeMissing
		}

		return models.OutcomeNotFoundInTarget
	}

	if policy.Mode == ExistenceCheck || target.Value == rec.Value {
		return models.OutcomeMatchedNoChange
	}

	return models.OutcomeMatchedNeedsUpdate
}

// Classified is one source record and its outcome.
type Classified struct {
	Record  models.Device  `json:"record"`
	Outcome models.Outcome `json:"outcome"`
}

// Result is the output of Reconcile, all slices in source order.
type Result struct {
	Tally   models.Tally
	Changes []models.Change
	Notable []Classified
}

// Reconcile classifies every record in order. It never fails and never
// mutates its inputs.
func Reconcile(records []models.Device, idx *index.Index, policy Policy) Result {
	var res Result

	for _, rec := range records {
		outcome := Classify(rec, idx, policy)
		res.Tally.Add(outcome)

		switch outcome {
		case models.OutcomeMatchedNeedsUpdate:
			target, _ := idx.Lookup(rec.SerialNumber)
			res.Changes = append(res.Changes, models.Change{Source: rec, Target: target})
		case models.OutcomeMissing, models.OutcomeNotFoundInTarget:
			res.Notable = append(res.Notable, Classified{Record: rec, Outcome: outcome})
		case models.OutcomeSkippedNoSerial, models.OutcomeSkippedNoSourceValue, models.OutcomeMatchedNoChange:
		}
	}

	return res
}
