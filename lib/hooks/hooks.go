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

// Package hooks prepares and tears down every scenario
//
// Before the scenario a fresh Store is put into the context and, for UI
// scenarios, the browser is opened on ui.baseUrl. After the scenario the
// teardown runs in fixed order: screenshot of failed UI scenario, cleanup of
// the created data, browser quit, API clients reset, metrics and store clear.
// Every teardown step is best-effort, its failure is logged and the next one
// still runs.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cpmntech/vulcan/lib/browser"
	"github.com/cpmntech/vulcan/lib/config"
	"github.com/cpmntech/vulcan/lib/log"
	"github.com/cpmntech/vulcan/lib/monitoring"
	"github.com/cpmntech/vulcan/lib/scenario"
)

// APITag marks the scenarios running without browser
const APITag = "@api"

// Browser is the part of the browser driver used by the hooks and the UI steps
type Browser interface {
	Page(ctx context.Context) (playwright.Page, error)
	IsInitialized() bool
	Engine() string
	Screenshot(name string) (string, error)
	Quit() error
}

// Hooks keep the scenario lifecycle, one instance serves the whole suite
type Hooks struct {
	cfg       *config.Config
	monitor   *monitoring.Monitor
	newDriver func(browser.Options) Browser

	mu     sync.Mutex
	failed []string
}

// New creates hooks using the configuration for the browser and the base URL
func New(cfg *config.Config, monitor *monitoring.Monitor) *Hooks {
	return &Hooks{
		cfg:     cfg,
		monitor: monitor,
		newDriver: func(opts browser.Options) Browser {
			return browser.New(opts)
		},
	}
}

// Register adds the hooks to the scenario context
func (h *Hooks) Register(sc *godog.ScenarioContext) {
	sc.Before(h.Before)
	sc.After(h.After)
}

// IsAPIScenario tells if scenario skips the browser: tagged @api or placed in features/api
func IsAPIScenario(tags []string, uri string) bool {
	if slices.Contains(tags, APITag) {
		return true
	}
	path := filepath.ToSlash(strings.ReplaceAll(uri, `\`, "/"))
	return strings.Contains(path, "/features/api/") ||
		strings.HasPrefix(path, "features/api/") ||
		strings.HasPrefix(path, "api/")
}

func tagNames(sc *godog.Scenario) []string {
	names := make([]string, 0, len(sc.Tags))
	for _, t := range sc.Tags {
		names = append(names, t.Name)
	}
	return names
}

// run holds the lifecycle details of the running scenario
type run struct {
	api   bool
	start time.Time
	span  trace.Span
}

type runKey struct{}

// Before creates the scenario store and opens the browser for UI scenarios
func (h *Hooks) Before(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
	logger := log.WithFunc("hooks", "Before")

	store := scenario.NewStore()
	id := uuid.NewString()
	store.Put(scenario.KeyScenarioID, id)
	ctx = scenario.IntoContext(ctx, store)

	api := IsAPIScenario(tagNames(sc), sc.Uri)
	ctx, span := h.monitor.StartSpan(ctx, "scenario: "+sc.Name,
		trace.WithAttributes(monitoring.ScenarioAttrs(sc.Name, sc.Uri, api)...))
	ctx = context.WithValue(ctx, runKey{}, &run{api: api, start: time.Now(), span: span})

	logger.Info("Starting scenario", "scenario", sc.Name, "uri", sc.Uri, "id", id, "api", api)

	if api {
		logger.Info("API scenario, browser setup skipped")
		store.Put(scenario.KeyUIBrowserStarted, false)
		return ctx, nil
	}

	store.Put(scenario.KeyUIBrowserStarted, true)
	if err := h.openBrowser(ctx, store); err != nil {
		logger.Error("Unable to prepare browser", "scenario", sc.Name, "err", err)
		return ctx, err
	}
	return ctx, nil
}

func (h *Hooks) openBrowser(ctx context.Context, store *scenario.Store) error {
	opts, err := browser.OptionsFromConfig(h.cfg)
	if err != nil {
		return err
	}
	baseURL, err := h.cfg.Get(config.UIBaseURL)
	if err != nil {
		return err
	}

	driver := h.newDriver(opts)
	store.Put(scenario.KeyBrowserDriver, driver)

	page, err := driver.Page(ctx)
	if err != nil {
		return err
	}
	h.monitor.Metrics().RecordBrowserSession(ctx, driver.Engine())

	log.WithFunc("hooks", "openBrowser").Info("Opening base URL", "url", baseURL)
	if _, err = page.Goto(baseURL); err != nil {
		return fmt.Errorf("unable to open %s: %w", baseURL, err)
	}
	return nil
}

// After tears the scenario down, the scenario error is kept as is
func (h *Hooks) After(ctx context.Context, sc *godog.Scenario, scErr error) (context.Context, error) {
	logger := log.WithFunc("hooks", "After")

	store, err := scenario.FromContext(ctx)
	if err != nil {
		logger.Warn("Scenario store is missing, nothing to tear down", "scenario", sc.Name)
		return ctx, nil
	}
	r, _ := ctx.Value(runKey{}).(*run)
	if r == nil {
		r = &run{api: IsAPIScenario(tagNames(sc), sc.Uri), start: time.Now(), span: trace.SpanFromContext(ctx)}
	}
	failed := scErr != nil && !errors.Is(scErr, godog.ErrSkip)

	if failed && !r.api {
		ctx = h.captureFailure(ctx, store, sc.Name)
	}
	h.cleanupData(ctx, store)
	h.quitBrowser(store)
	h.clearClients(store)

	h.monitor.Metrics().RecordScenario(ctx, !failed, time.Since(r.start), monitoring.ScenarioAttrs(sc.Name, sc.Uri, r.api)...)
	if failed {
		r.span.RecordError(scErr)
		r.span.SetStatus(codes.Error, scErr.Error())
		h.rememberFailure(sc.Uri)
		logger.Error("Scenario failed", "scenario", sc.Name, "err", scErr)
	} else {
		r.span.SetStatus(codes.Ok, "")
		logger.Info("Scenario passed", "scenario", sc.Name, "duration", time.Since(r.start))
	}
	r.span.End()

	store.Clear()
	return ctx, nil
}

// captureFailure stores screenshot of the page and attaches it to the report
func (*Hooks) captureFailure(ctx context.Context, store *scenario.Store, name string) context.Context {
	logger := log.WithFunc("hooks", "captureFailure")
	driver, found, err := scenario.GetOptional[Browser](store, scenario.KeyBrowserDriver)
	if err != nil || !found || !driver.IsInitialized() {
		logger.Debug("No browser to capture")
		return ctx
	}
	path, err := driver.Screenshot(name)
	if err != nil {
		logger.Error("Unable to take screenshot", "err", err)
		return ctx
	}
	logger.Info("Screenshot of failed scenario stored", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Unable to attach screenshot", "err", err)
		return ctx
	}
	return godog.Attach(ctx, godog.Attachment{Body: data, FileName: filepath.Base(path), MediaType: "image/png"})
}

func (h *Hooks) cleanupData(ctx context.Context, store *scenario.Store) {
	logger := log.WithFunc("hooks", "cleanupData")
	registry, found, err := scenario.GetOptional[*scenario.DataRegistry](store, scenario.KeyDataRegistry)
	if err != nil {
		logger.Error("Unable to get data registry", "err", err)
		return
	}
	if !found || registry.IsEmpty() {
		logger.Debug("No test data to clean up")
		return
	}

	executed, err := registry.CleanupAll(ctx)
	failures := 0
	if err != nil {
		failures = 1
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			failures = len(joined.Unwrap())
		}
		logger.Error("Test data cleanup finished with failures", "executed", executed, "failed", failures)
	}
	h.monitor.Metrics().RecordCleanup(ctx, executed, failures)
}

func (*Hooks) quitBrowser(store *scenario.Store) {
	logger := log.WithFunc("hooks", "quitBrowser")
	started, _, _ := scenario.GetOptional[bool](store, scenario.KeyUIBrowserStarted)
	driver, found, err := scenario.GetOptional[Browser](store, scenario.KeyBrowserDriver)
	if !started || !found || err != nil || !driver.IsInitialized() {
		logger.Info("No browser to quit")
		return
	}
	if err := driver.Quit(); err != nil {
		logger.Error("Unable to quit browser", "err", err)
	}
}

func (*Hooks) clearClients(store *scenario.Store) {
	registry, found, err := scenario.GetOptional[*scenario.APIClientRegistry](store, scenario.KeyAPIClientRegistry)
	if err != nil {
		log.WithFunc("hooks", "clearClients").Error("Unable to get API client registry", "err", err)
		return
	}
	if found {
		registry.Clear()
	}
}

func (h *Hooks) rememberFailure(uri string) {
	if uri == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if !slices.Contains(h.failed, uri) {
		h.failed = append(h.failed, uri)
	}
}

// Failed returns the sorted feature files with failed scenarios
func (h *Hooks) Failed() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := slices.Clone(h.failed)
	slices.Sort(out)
	return out
}
