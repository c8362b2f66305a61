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

// Package version reports the serialsync build, injected at link time:
//
//	go build -ldflags "-X github.com/carverauto/serialsync/pkg/version.version=1.2.0"
package version

//nolint:gochecknoglobals // set via -ldflags
var (
	version = "dev"
	commit  = "unknown"
)

// GetVersion returns the release version, "dev" for local builds.
func GetVersion() string {
	return version
}

// GetFullVersion returns the version with the source commit, as shown by --version.
func GetFullVersion() string {
	return version + " (commit " + commit + ")"
}
