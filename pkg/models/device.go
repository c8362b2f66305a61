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

// Ownership mirrors Intune's managedDeviceOwnerType.
type Ownership int

const (
	OwnershipUnknown Ownership = iota
	OwnershipCorporate
	OwnershipPersonal
)

func (o Ownership) String() string {
	switch o {
	case OwnershipCorporate:
		return "Corporate"
	case OwnershipPersonal:
		return "Personal"
	case OwnershipUnknown:
		return "Unknown"
	default:
		return "Unknown"
	}
}

// ParseOwnership maps vendor spellings ("company", "corporate", "personal") to
// an Ownership. Anything unrecognised is OwnershipUnknown.
func ParseOwnership(s string) Ownership {
	switch s {
	case "company", "Company", "corporate", "Corporate":
		return OwnershipCorporate
	case "personal", "Personal":
		return OwnershipPersonal
	default:
		return OwnershipUnknown
	}
}

// Device is one physical asset as seen by one source system. It is a read-only
// snapshot for the duration of a run.
type Device struct {
	// ID is the vendor's own identifier, used to address writes.
	ID              string     `json:"id"`
	SerialNumber    string     `json:"serial_number"`
	DisplayName     string     `json:"display_name"`
	OperatingSystem string     `json:"operating_system,omitempty"`
	LastSync        *time.Time `json:"last_sync,omitempty"`
	Ownership       Ownership  `json:"ownership"`
	// Value is the attribute a runbook compares or propagates: a category
	// label or an Autopilot group tag.
	Value  string `json:"value,omitempty"`
	Source string `json:"source"`
}

// Change pairs a source record with the target record it should be written to.
type Change struct {
	Source Device `json:"source"`
	Target Device `json:"target"`
}

// Desired is the value the target should end up with.
func (c Change) Desired() string {
	return c.Source.Value
}
