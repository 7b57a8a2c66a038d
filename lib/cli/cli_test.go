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

package cli

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cpmntech/vulcan/lib/auth"
	"github.com/cpmntech/vulcan/lib/config"
	"github.com/cpmntech/vulcan/lib/sandbox"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("VULCAN_CONFIG", "")

	cfg, err := loadConfig("", []string{"ui.browser=firefox"})
	if err != nil {
		t.Fatalf("ERROR: Absent default file should not fail: %v", err)
	}
	if v, _ := cfg.Get(config.UIBrowser); v != "firefox" {
		t.Errorf("Expected override to be applied, got: %q", v)
	}
	if config.Instance() != cfg {
		t.Error("Expected loaded configuration to become the instance")
	}

	if _, err := loadConfig(filepath.Join(t.TempDir(), "absent.properties"), nil); err == nil {
		t.Error("Expected explicit absent file to fail")
	}

	t.Setenv("VULCAN_CONFIG", filepath.Join(t.TempDir(), "absent.properties"))
	if _, err := loadConfig("", nil); err == nil {
		t.Error("Expected absent file from env to fail")
	}

	if _, err := loadConfig("", []string{"broken"}); err == nil {
		t.Error("Expected invalid override to fail")
	}
}

const passingFeature = `Feature: Health

  Scenario: Application is up
    When I call the API health endpoint
    Then the API response status should be 200
    And the API response body should contain "Swag Labs"
`

const failingFeature = `Feature: Users

  Scenario: Missing user
    When I request the user with id "42"
    Then the API response status should be 200
`

func writeSuite(t *testing.T, apiURL string, features map[string]string) (cfgPath, featuresDir string) {
	t.Helper()
	dir := t.TempDir()
	featuresDir = filepath.Join(dir, "features")
	if err := os.MkdirAll(filepath.Join(featuresDir, "api"), 0o755); err != nil {
		t.Fatalf("ERROR: Unable to create features dir: %v", err)
	}
	for name, content := range features {
		if err := os.WriteFile(filepath.Join(featuresDir, "api", name), []byte(content), 0o644); err != nil {
			t.Fatalf("ERROR: Unable to write feature: %v", err)
		}
	}
	cfgPath = filepath.Join(dir, "config.properties")
	props := "api.baseUrl = " + apiURL + "\napi.timeout = 5000\n"
	if err := os.WriteFile(cfgPath, []byte(props), 0o644); err != nil {
		t.Fatalf("ERROR: Unable to write config: %v", err)
	}
	return cfgPath, featuresDir
}

func newSandboxServer(t *testing.T) *httptest.Server {
	t.Helper()
	sb, err := sandbox.New(auth.NewRegistry(auth.Fixtures()...))
	if err != nil {
		t.Fatalf("ERROR: Unable to create sandbox: %v", err)
	}
	srv := httptest.NewServer(sb)
	t.Cleanup(srv.Close)
	return srv
}

func TestRunCommand(t *testing.T) {
	srv := newSandboxServer(t)

	t.Run("Passing suite", func(t *testing.T) {
		cfgPath, dir := writeSuite(t, srv.URL, map[string]string{"health.feature": passingFeature})
		var out bytes.Buffer
		status := Execute([]string{"run", "-v", "warn", "-c", cfgPath, "-f", "progress", "--no-colors", dir}, &out)
		if status != 0 {
			t.Errorf("Expected suite to pass, got status %d:\n%s", status, out.String())
		}
	})

	t.Run("Failing suite prints rerun command", func(t *testing.T) {
		cfgPath, dir := writeSuite(t, srv.URL, map[string]string{
			"health.feature": passingFeature,
			"users.feature":  failingFeature,
		})
		var out bytes.Buffer
		status := Execute([]string{"run", "-v", "warn", "-c", cfgPath, "-D", "api.timeout=3000", "-f", "progress", "--no-colors", dir}, &out)
		if status != 1 {
			t.Errorf("Expected failed status, got %d:\n%s", status, out.String())
		}
		expected := "vulcan run -c " + cfgPath + " -D api.timeout=3000 " + filepath.Join(dir, "api", "users.feature")
		if !strings.Contains(out.String(), expected) {
			t.Errorf("Expected rerun command %q in output:\n%s", expected, out.String())
		}
	})
}

func TestRunCommand_BadConfig(t *testing.T) {
	var out bytes.Buffer
	if status := Execute([]string{"run", "-c", filepath.Join(t.TempDir(), "absent.properties")}, &out); status != 1 {
		t.Errorf("Expected status 1 for absent config, got: %d", status)
	}
}
