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

// Package browser runs playwright browsers for the UI scenarios
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/cpmntech/vulcan/lib/config"
	"github.com/cpmntech/vulcan/lib/log"
)

// ErrUnsupportedBrowser is returned for the browser names playwright can't run
var ErrUnsupportedBrowser = errors.New("unsupported browser")

// Browser engines
const (
	Chromium = "chromium"
	Firefox  = "firefox"
	WebKit   = "webkit"
)

// Options of the browser session
type Options struct {
	Browser     string        // chrome/chromium, firefox or webkit
	Headless    bool          // HEADFUL env forces headed mode
	Timeout     time.Duration // Default timeout of the actions and navigation
	Viewport    playwright.Size
	CaptureDir  string // Screenshots and videos location
	RecordVideo bool
}

// DefaultViewport is used when ui.viewport is not set
var DefaultViewport = playwright.Size{Width: 1920, Height: 1080}

// ResolveBrowser maps the configured browser name to playwright engine
func ResolveBrowser(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "chrome", "chromium", "":
		return Chromium, nil
	case "firefox":
		return Firefox, nil
	case "webkit", "safari":
		return WebKit, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedBrowser, name)
}

// ParseViewport reads WIDTHxHEIGHT string
func ParseViewport(value string) (playwright.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(value)), "x")
	if !ok {
		return playwright.Size{}, fmt.Errorf("invalid viewport %q, expected WIDTHxHEIGHT", value)
	}
	width, werr := strconv.Atoi(strings.TrimSpace(w))
	height, herr := strconv.Atoi(strings.TrimSpace(h))
	if werr != nil || herr != nil || width <= 0 || height <= 0 {
		return playwright.Size{}, fmt.Errorf("invalid viewport %q, expected WIDTHxHEIGHT", value)
	}
	return playwright.Size{Width: width, Height: height}, nil
}

// OptionsFromConfig reads the ui.* settings
// BROWSER env overrides ui.browser and HEADFUL env disables headless mode.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	opts := Options{
		Viewport:   DefaultViewport,
		CaptureDir: cfg.GetDefault(config.UICaptureDir, filepath.Join("target", "captures")),
	}

	name, hasEnv := os.LookupEnv("BROWSER")
	if !hasEnv {
		var err error
		if name, err = cfg.Get(config.UIBrowser); err != nil {
			return opts, err
		}
	}
	opts.Browser = name

	wait, err := cfg.GetInt(config.UIImplicitWait)
	if err != nil {
		return opts, err
	}
	opts.Timeout = time.Duration(wait) * time.Second

	if opts.Headless, err = cfg.GetBoolDefault(config.UIHeadless, true); err != nil {
		return opts, err
	}
	if os.Getenv("HEADFUL") != "" {
		opts.Headless = false
	}

	if cfg.IsSet(config.UIViewport) {
		if opts.Viewport, err = ParseViewport(cfg.GetDefault(config.UIViewport, "")); err != nil {
			return opts, err
		}
	}

	if opts.RecordVideo, err = cfg.GetBoolDefault(config.UIRecordVideo, false); err != nil {
		return opts, err
	}

	return opts, nil
}

// Driver is the browser session of a single scenario, started on the first Page request
type Driver struct {
	opts Options

	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page

	engine string
	step   int
}

// New creates driver, the browser is not started until Page is called
func New(opts Options) *Driver {
	return &Driver{opts: opts}
}

// Page returns the page of the session, starting the browser when needed
func (d *Driver) Page(ctx context.Context) (playwright.Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.page != nil {
		return d.page, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	engine, err := ResolveBrowser(d.opts.Browser)
	if err != nil {
		return nil, err
	}
	if d.opts.Timeout <= 0 {
		return nil, fmt.Errorf("browser timeout must be positive, got: %s", d.opts.Timeout)
	}

	logger := log.WithFunc("browser", "Page")
	logger.Info("Starting browser", "browser", engine, "headless", d.opts.Headless)

	if err = d.start(engine); err != nil {
		// Release whatever was started before the failure
		d.closeLocked()
		return nil, err
	}
	d.engine = engine

	return d.page, nil
}

func (d *Driver) start(engine string) (err error) {
	if d.pw, err = playwright.Run(); err != nil {
		return fmt.Errorf("could not start playwright: %w", err)
	}

	var browserType playwright.BrowserType
	switch engine {
	case Firefox:
		browserType = d.pw.Firefox
	case WebKit:
		browserType = d.pw.WebKit
	default:
		browserType = d.pw.Chromium
	}

	if d.browser, err = browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(d.opts.Headless),
	}); err != nil {
		return fmt.Errorf("could not launch %s: %w", engine, err)
	}

	viewport := d.opts.Viewport
	options := playwright.BrowserNewContextOptions{
		Viewport:          &viewport,
		IgnoreHttpsErrors: playwright.Bool(true),
	}
	if d.opts.RecordVideo {
		options.RecordVideo = &playwright.RecordVideo{Dir: d.CaptureDir("video")}
	}
	if d.context, err = d.browser.NewContext(options); err != nil {
		return fmt.Errorf("could not create browser context: %w", err)
	}

	ms := float64(d.opts.Timeout.Milliseconds())
	d.context.SetDefaultTimeout(ms)
	d.context.SetDefaultNavigationTimeout(ms)

	if d.page, err = d.context.NewPage(); err != nil {
		return fmt.Errorf("could not create page: %w", err)
	}
	return nil
}

// IsInitialized tells if the browser was started
func (d *Driver) IsInitialized() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.page != nil
}

// Engine returns the running browser engine, empty when not started
func (d *Driver) Engine() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine
}

// Quit closes the browser session, quitting not started driver does nothing
func (d *Driver) Quit() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	logger := log.WithFunc("browser", "Quit")
	if d.pw == nil {
		logger.Debug("Browser was not started")
		return nil
	}
	logger.Info("Closing browser", "browser", d.engine)
	return d.closeLocked()
}

func (d *Driver) closeLocked() error {
	var errs []error
	if d.context != nil {
		if err := d.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("could not close context: %w", err))
		}
	}
	if d.browser != nil {
		if err := d.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("could not close browser: %w", err))
		}
	}
	if d.pw != nil {
		if err := d.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("could not stop playwright: %w", err))
		}
	}
	d.page, d.context, d.browser, d.pw, d.engine = nil, nil, nil, nil, ""
	return errors.Join(errs...)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Screenshot stores PNG of the current page in the capture dir and returns its path
func (d *Driver) Screenshot(name string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.page == nil {
		return "", fmt.Errorf("browser is not started")
	}
	d.step++
	filename := fmt.Sprintf("%02d-%s.png", d.step, strings.Trim(unsafeChars.ReplaceAllString(name, "_"), "_"))
	out := d.CaptureDir("screenshots", filename)
	if _, err := d.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(out),
		FullPage: playwright.Bool(true),
	}); err != nil {
		return "", fmt.Errorf("could not take screenshot %s: %w", filename, err)
	}
	return out, nil
}

// CaptureDir returns path in the capture directory, parent dirs are created
func (d *Driver) CaptureDir(path ...string) string {
	out := filepath.Join(append([]string{d.opts.CaptureDir}, path...)...)
	os.MkdirAll(filepath.Dir(out), 0o755)
	return out
}

// Install downloads playwright driver and the browsers, all of them when none are given
func Install(browsers ...string) error {
	engines := make([]string, 0, len(browsers))
	for _, b := range browsers {
		engine, err := ResolveBrowser(b)
		if err != nil {
			return err
		}
		engines = append(engines, engine)
	}
	opts := &playwright.RunOptions{Verbose: true}
	if len(engines) > 0 {
		opts.Browsers = engines
	}
	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("could not install playwright: %w", err)
	}
	return nil
}
