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

package runbook

import (
	"context"

	"github.com/carverauto/serialsync/pkg/executor"
	"github.com/carverauto/serialsync/pkg/models"
	"github.com/carverauto/serialsync/pkg/reconcile"
)

// Runbook names, also used as CLI sub-commands.
const (
	MissingAssetsName = "missing-assets"
	Action1AuditName  = "action1-audit"
	CategorySyncName  = "category-sync"
	GroupTagSyncName  = "grouptag-sync"
)

// MissingAssets reports Intune devices whose serial is absent from Snipe-IT.
// Only corporate devices are expected in Snipe-IT unless includePersonal is set.
func MissingAssets(intuneDevices, snipeHardware Lister, includePersonal bool) Definition {
	def := Definition{
		Name:   MissingAssetsName,
		Policy: reconcile.Policy{Mode: reconcile.ExistenceCheck},
		Target: snipeHardware,
		Source: intuneDevices,
	}

	if !includePersonal {
		def.Filter = CorporateOnly
	}

	return def
}

// Action1Audit reports Action1 endpoints whose serial is absent from Snipe-IT.
func Action1Audit(endpoints, snipeHardware Lister) Definition {
	return Definition{
		Name:   Action1AuditName,
		Policy: reconcile.Policy{Mode: reconcile.ExistenceCheck},
		Target: snipeHardware,
		Source: endpoints,
	}
}

// CategoryResolver returns Intune category ids keyed by display name.
type CategoryResolver func(ctx context.Context) (map[string]string, error)

// CategorySync copies the Snipe-IT category of each asset to the Intune
// device category of the matching managed device. newUpdater receives the
// category table resolved once per run.
func CategorySync(
	snipeHardware, intuneDevices Lister, categories CategoryResolver, newUpdater func(map[string]string) executor.Updater,
) Definition {
	return Definition{
		Name:   CategorySyncName,
		Policy: reconcile.Policy{Mode: reconcile.AttributeSync},
		Target: intuneDevices,
		Source: snipeHardware,
		Updater: func(ctx context.Context) (executor.Updater, error) {
			table, err := categories(ctx)
			if err != nil {
				return nil, err
			}

			return newUpdater(table), nil
		},
	}
}

// GroupTagSync sets the Autopilot group tag from the Snipe-IT category.
// Only assets in one of the allowed categories are considered; tagMap maps a
// category to its group tag and categories without an entry map to themselves.
func GroupTagSync(snipeHardware, autopilotDevices Lister, updater executor.Updater, allowed []string, tagMap map[string]string) Definition {
	return Definition{
		Name:   GroupTagSyncName,
		Policy: reconcile.Policy{Mode: reconcile.AttributeSync},
		Target: autopilotDevices,
		Source: snipeHardware,
		Filter: func(devices []models.Device) []models.Device {
			return MapValues(FilterByValue(devices, allowed), tagMap)
		},
		Updater: func(context.Context) (executor.Updater, error) {
			return updater, nil
		},
	}
}

// CorporateOnly keeps corporate-owned devices.
func CorporateOnly(devices []models.Device) []models.Device {
	out := make([]models.Device, 0, len(devices))

	for _, d := range devices {
		if d.Ownership == models.OwnershipCorporate {
			out = append(out, d)
		}
	}

	return out
}

// FilterByValue keeps devices whose Value is in allowed. An empty allow-list
// keeps everything.
func FilterByValue(devices []models.Device, allowed []string) []models.Device {
	if len(allowed) == 0 {
		return devices
	}

	set := make(map[string]struct{}, len(allowed))
	for _, v := range allowed {
		set[v] = struct{}{}
	}

	out := make([]models.Device, 0, len(devices))

	for _, d := range devices {
		if _, ok := set[d.Value]; ok {
			out = append(out, d)
		}
	}

	return out
}

// MapValues returns copies of devices with Value translated through m.
func MapValues(devices []models.Device, m map[string]string) []models.Device {
	if len(m) == 0 {
		return devices
	}

	out := make([]models.Device, len(devices))

	for i, d := range devices {
		if mapped, ok := m[d.Value]; ok {
			d.Value = mapped
		}

		out[i] = d
	}

	return out
}
