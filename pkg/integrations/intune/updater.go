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

package intune

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/carverauto/serialsync/pkg/models"
)

// CategoryUpdater sets the Intune device category of a managed device.
type CategoryUpdater struct {
	client     *Client
	categories map[string]string
}

// NewCategoryUpdater resolves categories by display name using the map
// returned by ListDeviceCategories.
func NewCategoryUpdater(client *Client, categories map[string]string) *CategoryUpdater {
	return &CategoryUpdater{client: client, categories: categories}
}

// Validate implements executor.Validator.
func (u *CategoryUpdater) Validate(change models.Change) error {
	if _, ok := u.categories[change.Desired()]; !ok {
		return fmt.Errorf("%w: %q", errUnknownCategory, change.Desired())
	}

	return nil
}

// Update implements executor.Updater.
func (u *CategoryUpdater) Update(ctx context.Context, change models.Change) error {
	if err := u.Validate(change); err != nil {
		return err
	}

	categoryID := u.categories[change.Desired()]

	uri := fmt.Sprintf("%s%s/%s/deviceCategory/$ref", u.client.baseURL, managedDevicesPath, url.PathEscape(change.Target.ID))
	body := map[string]string{
		"@odata.id": fmt.Sprintf("%s%s/%s", u.client.baseURL, categoriesPath, categoryID),
	}

	if _, err := u.client.fetcher.Do(ctx, http.MethodPut, uri, body); err != nil {
		return fmt.Errorf("failed to set category of %s: %w", change.Target.ID, err)
	}

	return nil
}

// GroupTagUpdater sets the group tag of an Autopilot device identity.
type GroupTagUpdater struct {
	client *Client
}

// NewGroupTagUpdater creates a GroupTagUpdater.
func NewGroupTagUpdater(client *Client) *GroupTagUpdater {
	return &GroupTagUpdater{client: client}
}

// Validate implements executor.Validator.
func (u *GroupTagUpdater) Validate(change models.Change) error {
	if change.Desired() == "" {
		return errEmptyGroupTag
	}

	return nil
}

// Update implements executor.Updater.
func (u *GroupTagUpdater) Update(ctx context.Context, change models.Change) error {
	if err := u.Validate(change); err != nil {
		return err
	}

	tag := change.Desired()

	uri := fmt.Sprintf("%s%s/%s/updateDeviceProperties", u.client.baseURL, autopilotPath, url.PathEscape(change.Target.ID))

	if _, err := u.client.fetcher.Do(ctx, http.MethodPost, uri, map[string]string{"groupTag": tag}); err != nil {
		return fmt.Errorf("failed to set group tag of %s: %w", change.Target.ID, err)
	}

	return nil
}
