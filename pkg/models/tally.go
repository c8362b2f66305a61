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

// Tally accumulates per-run counters. Each classification step adds exactly
// one Outcome; the action phase adds Updated/Errors. Tallies from different
// phases are combined with Merge.
type Tally struct {
	Outcomes [outcomeCount]int
	Updated  int
	Errors   int
	Batches  int
}

// Add records one classified record.
func (t *Tally) Add(o Outcome) {
	if o < 0 || o >= outcomeCount {
		return
	}

	t.Outcomes[o]++
}

// Count returns the number of records classified as o.
func (t *Tally) Count(o Outcome) int {
	if o < 0 || o >= outcomeCount {
		return 0
	}

	return t.Outcomes[o]
}

// Total is the number of classified records.
func (t *Tally) Total() int {
	total := 0
	for _, n := range t.Outcomes {
		total += n
	}

	return total
}

// Merge folds other into t.
func (t *Tally) Merge(other Tally) {
	for i, n := range other.Outcomes {
		t.Outcomes[i] += n
	}

	t.Updated += other.Updated
	t.Errors += other.Errors
	t.Batches += other.Batches
}
