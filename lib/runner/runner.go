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

// Package runner executes the feature files with godog
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/alessio/shellescape"
	"github.com/cucumber/godog"

	"github.com/cpmntech/vulcan/lib/auth"
	"github.com/cpmntech/vulcan/lib/config"
	"github.com/cpmntech/vulcan/lib/hooks"
	"github.com/cpmntech/vulcan/lib/log"
	"github.com/cpmntech/vulcan/lib/monitoring"
	"github.com/cpmntech/vulcan/lib/steps"
)

// DefaultPaths are used when no feature paths are given
var DefaultPaths = []string{"features"}

// Suite exit statuses, same as godog returns
const (
	StatusPassed  = 0
	StatusFailed  = 1
	StatusOptions = 2
)

// Options of the suite run
type Options struct {
	Paths         []string
	Tags          string
	Format        string // godog formatter, pretty by default
	ReportDir     string // cucumber.json and junit.xml are written here when set
	Concurrency   int
	Strict        bool
	Randomize     bool
	StopOnFailure bool
	NoColors      bool
	Output        io.Writer       // os.Stdout by default
	Features      []godog.Feature // in-memory features, run instead of the default paths
	TestingT      *testing.T      // reports scenarios as subtests under go test
}

// Runner wires hooks and steps into godog suite
type Runner struct {
	cfg     *config.Config
	monitor *monitoring.Monitor
	hooks   *hooks.Hooks
	steps   *steps.Steps
}

// New creates the runner
func New(cfg *config.Config, monitor *monitoring.Monitor, users *auth.Registry) *Runner {
	return &Runner{
		cfg:     cfg,
		monitor: monitor,
		hooks:   hooks.New(cfg, monitor),
		steps:   steps.New(cfg, users),
	}
}

// InitializeScenario registers hooks and steps, hooks first so they wrap the steps
func (r *Runner) InitializeScenario(sc *godog.ScenarioContext) {
	r.hooks.Register(sc)
	r.steps.Register(sc)
}

// Failed returns feature files with failed scenarios of the last run
func (r *Runner) Failed() []string {
	return r.hooks.Failed()
}

// Run executes the suite and returns godog exit status
func (r *Runner) Run(ctx context.Context, opts Options) int {
	logger := log.WithFunc("runner", "Run")

	godogOpts, err := r.godogOptions(ctx, opts)
	if err != nil {
		logger.Error("Invalid run options", "err", err)
		return StatusOptions
	}
	logger.Info("Running features", "paths", godogOpts.Paths, "tags", godogOpts.Tags, "format", godogOpts.Format,
		"concurrency", godogOpts.Concurrency)

	status := godog.TestSuite{
		Name:                "vulcan",
		ScenarioInitializer: r.InitializeScenario,
		Options:             godogOpts,
	}.Run()

	if failed := r.Failed(); len(failed) > 0 {
		logger.Warn("Features failed", "count", len(failed))
	}
	return status
}

func (r *Runner) godogOptions(ctx context.Context, opts Options) (*godog.Options, error) {
	paths := opts.Paths
	if len(paths) == 0 && len(opts.Features) == 0 {
		paths = DefaultPaths
	}
	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	format := opts.Format
	if format == "" {
		format = "pretty"
	}
	if opts.ReportDir != "" {
		if err := os.MkdirAll(opts.ReportDir, 0o755); err != nil {
			return nil, fmt.Errorf("unable to create report dir: %w", err)
		}
		format = strings.Join([]string{
			format,
			"cucumber:" + filepath.Join(opts.ReportDir, "cucumber.json"),
			"junit:" + filepath.Join(opts.ReportDir, "junit.xml"),
		}, ",")
	}
	if opts.Concurrency < 0 {
		return nil, fmt.Errorf("concurrency can't be negative: %d", opts.Concurrency)
	}

	o := &godog.Options{
		Format:          format,
		Output:          output,
		Paths:           paths,
		Tags:            opts.Tags,
		Strict:          opts.Strict,
		StopOnFailure:   opts.StopOnFailure,
		NoColors:        opts.NoColors,
		Concurrency:     opts.Concurrency,
		TestingT:        opts.TestingT,
		DefaultContext:  ctx,
		FeatureContents: opts.Features,
	}
	if opts.Randomize {
		// Negative value makes godog pick the seed and print it
		o.Randomize = -1
	}
	return o, nil
}

// RerunCommand prints shell command running only the failed features
func RerunCommand(program string, args []string, failed []string) string {
	if len(failed) == 0 {
		return ""
	}
	parts := append([]string{program, "run"}, args...)
	return shellescape.QuoteCommand(append(parts, failed...))
}

// MonitoringConfig reads the monitoring.* settings
func MonitoringConfig(cfg *config.Config) (*monitoring.Config, error) {
	mc := monitoring.DefaultConfig()

	enabled, err := cfg.GetBoolDefault(config.MonitoringEnabled, mc.Enabled)
	if err != nil {
		return nil, err
	}
	mc.Enabled = enabled
	mc.OTLPEndpoint = cfg.GetDefault(config.MonitoringOTLPEndpoint, mc.OTLPEndpoint)

	if cfg.IsSet(config.MonitoringSampleRate) {
		rate, err := cfg.Get(config.MonitoringSampleRate)
		if err != nil {
			return nil, err
		}
		if mc.SampleRate, err = strconv.ParseFloat(rate, 64); err != nil || mc.SampleRate < 0 || mc.SampleRate > 1 {
			return nil, fmt.Errorf("invalid %s %q, expected number in [0, 1]", config.MonitoringSampleRate, rate)
		}
	}
	return mc, nil
}
