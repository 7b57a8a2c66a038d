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

// Package helper allows to run playwright WebUI tests against the Vulcan sandbox
package helper

import (
	"context"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/cpmntech/vulcan/lib/auth"
	"github.com/cpmntech/vulcan/lib/browser"
	"github.com/cpmntech/vulcan/lib/sandbox"
)

// DefaultTimeout of the page actions, the sandbox is local so it's short
const DefaultTimeout = 5 * time.Second

// session is the browser driver of the test
type session interface {
	Page(ctx context.Context) (playwright.Page, error)
	Engine() string
	Screenshot(name string) (string, error)
	Quit() error
}

// VPlaywright saves state of the browser and the sandbox for particular test
type VPlaywright struct {
	driver session
	page   playwright.Page
	server *httptest.Server

	captureDir string
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// NewPlaywright starts the sandbox and the browser, test is skipped when playwright is not installed
func NewPlaywright(tb testing.TB) (*VPlaywright, playwright.Page) {
	tb.Helper()

	users, err := auth.DefaultRegistry()
	if err != nil {
		tb.Fatalf("ERROR: Could not load users: %v", err)
	}
	sb, err := sandbox.New(users)
	if err != nil {
		tb.Fatalf("ERROR: Could not create sandbox: %v", err)
	}
	vp := &VPlaywright{
		server:     httptest.NewServer(sb),
		captureDir: filepath.Join(os.TempDir(), "vulcan-webtests", unsafeName.ReplaceAllString(tb.Name(), "_")),
	}
	tb.Cleanup(vp.server.Close)

	name, hasEnv := os.LookupEnv("BROWSER")
	if !hasEnv {
		name = browser.Chromium
	}
	vp.driver = browser.New(browser.Options{
		Browser:     name,
		Headless:    os.Getenv("HEADFUL") == "",
		Timeout:     DefaultTimeout,
		Viewport:    browser.DefaultViewport,
		CaptureDir:  vp.captureDir,
		RecordVideo: true,
	})

	if vp.page, err = vp.driver.Page(context.Background()); err != nil {
		// Driver and browsers are downloaded by "vulcan install"
		tb.Skipf("WARNING: Playwright is not available: %v", err)
	}

	tb.Cleanup(func() {
		vp.Close(tb)
		vp.Cleanup(tb)
	})

	return vp, vp.page
}

// URL of the sandbox page
func (vp *VPlaywright) URL(p string) string {
	return vp.server.URL + path.Join("/", p)
}

// Open navigates to the sandbox page
func (vp *VPlaywright) Open(tb testing.TB, p string) {
	tb.Helper()
	if _, err := vp.page.Goto(vp.URL(p)); err != nil {
		tb.Fatalf("ERROR: Could not open %s: %v", p, err)
	}
}

// Run executes subtest with screenshots at start and end
func (vp *VPlaywright) Run(t *testing.T, name string, fn func(t *testing.T)) {
	t.Helper()

	t.Run(name, func(t *testing.T) {
		vp.Screenshot(t, "start")
		defer vp.Screenshot(t, "end")

		fn(t)
	})
}

// Screenshot takes a screenshot named after the subtest and phase
func (vp *VPlaywright) Screenshot(t *testing.T, phase string) {
	if _, err := vp.driver.Screenshot(path.Base(t.Name()) + "-" + phase); err != nil {
		t.Logf("WARNING: Could not take screenshot %s: %v", phase, err)
	}
}

// Close quits the browser and returns the engine it was running
func (vp *VPlaywright) Close(tb testing.TB) string {
	tb.Helper()
	// Quit resets the engine
	engine := vp.driver.Engine()
	tb.Log("INFO: Closing browser:", engine)
	if err := vp.driver.Quit(); err != nil {
		tb.Errorf("ERROR: Could not close browser %s: %v", engine, err)
	}
	return engine
}

// Cleanup removes the captures of passed test
func (vp *VPlaywright) Cleanup(tb testing.TB) {
	tb.Helper()

	if tb.Failed() {
		tb.Log("INFO: Keeping captures for checking:", vp.captureDir)
		return
	}
	os.RemoveAll(vp.captureDir)
}
