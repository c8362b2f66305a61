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

package index

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/serialsync/pkg/models"
)

func ts(s string) *time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}

	return &t
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc123", "ABC123"},
		{"  abc123\t", "ABC123"},
		{"ABC123", "ABC123"},
		{"   ", ""},
		{"", ""},
		{"a b", "A B"},
	}

	for _, tt := range tests {
		got := Normalize(tt.in)
		assert.Equal(t, tt.want, got, "Normalize(%q)", tt.in)
		assert.Equal(t, got, Normalize(got), "idempotent for %q", tt.in)
	}
}

func TestBuild_LaterSyncWins(t *testing.T) {
	records := []models.Device{
		{ID: "old", SerialNumber: "SN001", LastSync: ts("2025-01-01")},
		{ID: "new", SerialNumber: "sn001 ", LastSync: ts("2025-02-01")},
	}

	idx, stats := Build(records)

	got, ok := idx.Lookup("SN001")
	require.True(t, ok)
	assert.Equal(t, "new", got.ID)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, 1, idx.Len())

	reversed, _ := Build([]models.Device{records[1], records[0]})
	got, _ = reversed.Lookup("SN001")
	assert.Equal(t, "new", got.ID, "later LastSync wins regardless of order")
}

func TestBuild_TiesKeepFirstSeen(t *testing.T) {
	tests := []struct {
		name    string
		records []models.Device
	}{
		{
			name: "equal timestamps",
			records: []models.Device{
				{ID: "first", SerialNumber: "X1", LastSync: ts("2025-01-01")},
				{ID: "second", SerialNumber: "X1", LastSync: ts("2025-01-01")},
			},
		},
		{
			name: "missing timestamps",
			records: []models.Device{
				{ID: "first", SerialNumber: "X1"},
				{ID: "second", SerialNumber: "X1"},
			},
		},
		{
			name: "only the later record has a timestamp",
			records: []models.Device{
				{ID: "first", SerialNumber: "X1"},
				{ID: "second", SerialNumber: "X1", LastSync: ts("2025-01-01")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, _ := Build(tt.records)
			got, ok := idx.Lookup("x1")
			require.True(t, ok)
			assert.Equal(t, "first", got.ID)
		})
	}
}

func TestBuild_SkipsBlankSerials(t *testing.T) {
	idx, stats := Build([]models.Device{
		{ID: "1", SerialNumber: ""},
		{ID: "2", SerialNumber: "   "},
		{ID: "3", SerialNumber: "ok"},
	})

	assert.Equal(t, 2, stats.NoSerial)
	assert.Equal(t, 3, stats.Records)
	assert.Equal(t, 1, idx.Len())
	assert.False(t, idx.Contains(""))
	assert.False(t, idx.Contains("  "))
	assert.True(t, idx.Contains(" OK "))
}

func TestBuild_DoesNotRewriteSerials(t *testing.T) {
	records := []models.Device{{ID: "1", SerialNumber: " abc "}}

	idx, _ := Build(records)
	got, _ := idx.Lookup("ABC")

	assert.Equal(t, " abc ", got.SerialNumber)
	assert.Equal(t, " abc ", records[0].SerialNumber)
}

func TestBuild_Deterministic(t *testing.T) {
	records := []models.Device{
		{ID: "a", SerialNumber: "S1", LastSync: ts("2025-01-01")},
		{ID: "b", SerialNumber: "S2"},
		{ID: "c", SerialNumber: "s1", LastSync: ts("2025-01-01")},
		{ID: "d", SerialNumber: "S3", LastSync: ts("2024-06-01")},
		{ID: "e", SerialNumber: "s3", LastSync: ts("2024-07-01")},
	}

	first, firstStats := Build(records)
	second, secondStats := Build(records)

	assert.Equal(t, firstStats, secondStats)
	assert.Equal(t, first.byKey, second.byKey)
}
