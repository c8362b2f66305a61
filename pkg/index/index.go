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

// Package index builds serial-number lookups over a target collection.
package index

import (
	"strings"

	"github.com/carverauto/serialsync/pkg/models"
)

// Normalize derives the comparison key for a serial number: surrounding
// whitespace removed, upper-cased. Normalize(Normalize(s)) == Normalize(s).
func Normalize(serial string) string {
	return strings.ToUpper(strings.TrimSpace(serial))
}

// Stats describes what Build discarded.
type Stats struct {
	Records    int `json:"records"`
	NoSerial   int `json:"no_serial"`
	Duplicates int `json:"duplicates"`
}

// Index maps normalized serial numbers to a single target record. It is
// immutable once built.
type Index struct {
	byKey map[string]models.Device
}

// Build indexes records by normalized serial. Records with a blank serial are
// skipped. When two records share a serial the one with the strictly later
// LastSync wins; on equal or missing timestamps the first one seen is kept,
// so the result depends only on input order.
func Build(records []models.Device) (*Index, Stats) {
	idx := &Index{byKey: make(map[string]models.Device, len(records))}
	stats := Stats{Records: len(records)}

	for _, rec := range records {
		key := Normalize(rec.SerialNumber)
		if key == "" {
			stats.NoSerial++
			continue
		}

		existing, ok := idx.byKey[key]
		if !ok {
			idx.byKey[key] = rec
			continue
		}

		stats.Duplicates++

		if newer(rec, existing) {
			idx.byKey[key] = rec
		}
	}

	return idx, stats
}

func newer(candidate, existing models.Device) bool {
	if candidate.LastSync == nil || existing.LastSync == nil {
		return false
	}

	return candidate.LastSync.After(*existing.LastSync)
}

// Lookup returns the record indexed under serial, which is normalized first.
func (i *Index) Lookup(serial string) (models.Device, bool) {
	key := Normalize(serial)
	if key == "" {
		return models.Device{}, false
	}

	rec, ok := i.byKey[key]

	return rec, ok
}

// Contains reports whether serial is indexed.
func (i *Index) Contains(serial string) bool {
	_, ok := i.Lookup(serial)

	return ok
}

// Len is the number of distinct serials.
func (i *Index) Len() int {
	return len(i.byKey)
}
