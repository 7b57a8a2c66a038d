/**
 * Copyright 2025 Adobe. All rights reserved.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License. You may obtain a copy
 * of the License at http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under
 * the License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR REPRESENTATIONS
 * OF ANY KIND, either express or implied. See the License for the specific language
 * governing permissions and limitations under the License.
 */

package scenario

// Keys shared by the hooks and the steps
const (
	// Authentication / identity
	KeyCredentials = "credentials"
	KeyAuthToken   = "authToken"

	// API state
	KeyLastAPIResponse   = "lastApiResponse"
	KeyAPIClientRegistry = "apiClientRegistry"

	// Data lifecycle
	KeyDataRegistry  = "dataRegistry"
	KeyCreatedUserID = "createdUserId"

	// Scenario lifecycle
	KeyBrowserDriver    = "browserDriver"
	KeyUIBrowserStarted = "uiBrowserStarted"
	KeyScenarioID       = "scenarioId"
)

// DataRegistryOf returns the data registry of the scenario, creating it on first use
func DataRegistryOf(s *Store) (*DataRegistry, error) {
	return GetOrCreate(s, KeyDataRegistry, NewDataRegistry)
}

// ClientRegistryOf returns the API client registry of the scenario, creating it on first use
func ClientRegistryOf(s *Store) (*APIClientRegistry, error) {
	return GetOrCreate(s, KeyAPIClientRegistry, NewAPIClientRegistry)
}
