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

import "fmt"

// Outcome is the classification of a single source record. Every record
// produces exactly one Outcome.
type Outcome int

const (
	OutcomeSkippedNoSerial Outcome = iota
	OutcomeSkippedNoSourceValue
	OutcomeNotFoundInTarget
	// OutcomeMissing is the existence-check spelling of NotFoundInTarget: the
	// record is reported rather than skipped.
	OutcomeMissing
	OutcomeMatchedNoChange
	OutcomeMatchedNeedsUpdate

	outcomeCount
)

// Outcomes lists every Outcome in declaration order.
func Outcomes() []Outcome {
	out := make([]Outcome, 0, outcomeCount)
	for o := Outcome(0); o < outcomeCount; o++ {
		out = append(out, o)
	}

	return out
}

func (o Outcome) String() string {
	switch o {
	case OutcomeSkippedNoSerial:
		return "SkippedNoSerial"
	case OutcomeSkippedNoSourceValue:
		return "SkippedNoSourceValue"
	case OutcomeNotFoundInTarget:
		return "NotFoundInTarget"
	case OutcomeMissing:
		return "Missing"
	case OutcomeMatchedNoChange:
		return "Matched-NoChange"
	case OutcomeMatchedNeedsUpdate:
		return "Matched-NeedsUpdate"
	case outcomeCount:
	}

	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Notable reports whether the record belongs in the human-facing report.
func (o Outcome) Notable() bool {
	return o == OutcomeMissing || o == OutcomeNotFoundInTarget
}

// MarshalText lets Outcome act as a JSON map key and value.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
