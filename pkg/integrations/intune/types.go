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

// Package intune reads and writes Intune and Autopilot devices through
// Microsoft Graph.
package intune

import (
	"errors"
	"time"
)

const (
	// Vendor is the name used for logs, metrics and Device.Source.
	Vendor = "intune"
	// DefaultBaseURL is the Graph v1.0 endpoint.
	DefaultBaseURL = "https://graph.microsoft.com/v1.0"

	managedDevicesPath = "/deviceManagement/managedDevices"
	autopilotPath      = "/deviceManagement/windowsAutopilotDeviceIdentities"
	categoriesPath     = "/deviceManagement/deviceCategories"

	managedDeviceSelect = "id,deviceName,operatingSystem,serialNumber,lastSyncDateTime," +
		"managedDeviceOwnerType,deviceCategoryDisplayName"
)

var (
	errUnknownCategory = errors.New("no intune device category with that name")
	errEmptyGroupTag   = errors.New("group tag must not be empty")
)

// ManagedDevice is the subset of a Graph managedDevice the runbooks use.
type ManagedDevice struct {
	ID                        string     `json:"id"`
	DeviceName                string     `json:"deviceName"`
	OperatingSystem           string     `json:"operatingSystem"`
	SerialNumber              string     `json:"serialNumber"`
	LastSyncDateTime          *time.Time `json:"lastSyncDateTime"`
	ManagedDeviceOwnerType    string     `json:"managedDeviceOwnerType"`
	DeviceCategoryDisplayName string     `json:"deviceCategoryDisplayName"`
}

// AutopilotDevice is the subset of a windowsAutopilotDeviceIdentity the runbooks use.
type AutopilotDevice struct {
	ID                    string     `json:"id"`
	SerialNumber          string     `json:"serialNumber"`
	GroupTag              string     `json:"groupTag"`
	DisplayName           string     `json:"displayName"`
	Model                 string     `json:"model"`
	LastContactedDateTime *time.Time `json:"lastContactedDateTime"`
}

// DeviceCategory is an Intune device category.
type DeviceCategory struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}
