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

package browser

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/cpmntech/vulcan/lib/config"
)

func TestResolveBrowser(t *testing.T) {
	tests := []struct {
		name    string
		expect  string
		wantErr bool
	}{
		{"chrome", Chromium, false},
		{" Chrome ", Chromium, false},
		{"chromium", Chromium, false},
		{"FIREFOX", Firefox, false},
		{"webkit", WebKit, false},
		{"ie", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := ResolveBrowser(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedBrowser) {
					t.Errorf("Expected ErrUnsupportedBrowser, got: %v", err)
				}
				return
			}
			if engine != tt.expect {
				t.Errorf("Expected %s, got: %s", tt.expect, engine)
			}
		})
	}
}

func TestParseViewport(t *testing.T) {
	if v, err := ParseViewport("1280x720"); err != nil || v.Width != 1280 || v.Height != 720 {
		t.Errorf("Expected 1280x720, got: %+v (%v)", v, err)
	}
	for _, bad := range []string{"", "1280", "0x10", "axb"} {
		if _, err := ParseViewport(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func TestOptionsFromConfig(t *testing.T) {
	t.Setenv("HEADFUL", "")
	t.Setenv("BROWSER", "")
	os.Unsetenv("BROWSER")

	cfg := config.New()
	cfg.Set(config.UIBrowser, "firefox")
	cfg.Set(config.UIImplicitWait, "5")
	cfg.Set(config.UIViewport, "800x600")

	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		t.Fatalf("ERROR: Unable to read options: %v", err)
	}
	if opts.Browser != "firefox" || opts.Timeout != 5*time.Second || !opts.Headless {
		t.Errorf("Unexpected options: %+v", opts)
	}
	if opts.Viewport.Width != 800 || opts.Viewport.Height != 600 {
		t.Errorf("Unexpected viewport: %+v", opts.Viewport)
	}

	t.Setenv("HEADFUL", "1")
	t.Setenv("BROWSER", "webkit")
	opts, _ = OptionsFromConfig(cfg)
	if opts.Headless || opts.Browser != "webkit" {
		t.Errorf("Expected env to override, got: %+v", opts)
	}

	if _, err := OptionsFromConfig(config.New()); !errors.Is(err, config.ErrNotFound) {
		t.Errorf("Expected missing implicit wait to fail, got: %v", err)
	}
}

func TestDriver_NotStarted(t *testing.T) {
	d := New(Options{Browser: "opera", Timeout: time.Second, CaptureDir: t.TempDir()})

	if d.IsInitialized() {
		t.Error("Expected driver not to be initialized")
	}
	if err := d.Quit(); err != nil {
		t.Errorf("Expected quit of not started driver to be no-op, got: %v", err)
	}
	if _, err := d.Screenshot("failed"); err == nil {
		t.Error("Expected screenshot to fail without browser")
	}
	if _, err := d.Page(context.Background()); !errors.Is(err, ErrUnsupportedBrowser) {
		t.Errorf("Expected ErrUnsupportedBrowser, got: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(Options{Browser: "chrome", Timeout: time.Second}).Page(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected canceled context error, got: %v", err)
	}
	if _, err := New(Options{Browser: "chrome"}).Page(context.Background()); err == nil {
		t.Error("Expected zero timeout to be rejected")
	}
}
