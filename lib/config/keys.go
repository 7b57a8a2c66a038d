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

package config

// Known configuration keys
const (
	UIBaseURL      = "ui.baseUrl"
	UIBrowser      = "ui.browser"
	UIImplicitWait = "ui.implicitWait" // seconds
	UIExplicitWait = "ui.explicitWait" // seconds
	UIHeadless     = "ui.headless"
	UIViewport     = "ui.viewport" // WIDTHxHEIGHT
	UICaptureDir   = "ui.captureDir"
	UIRecordVideo  = "ui.recordVideo"

	APIBaseURL   = "api.baseUrl"
	APITimeout   = "api.timeout" // milliseconds
	APIReportDir = "api.reportDir"

	AuthCredentialsFile = "auth.credentialsFile"

	MonitoringEnabled      = "monitoring.enabled"
	MonitoringOTLPEndpoint = "monitoring.otlpEndpoint"
	MonitoringSampleRate   = "monitoring.sampleRate"
)
