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

// Package cli defines the vulcan commands
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cpmntech/vulcan/lib/auth"
	"github.com/cpmntech/vulcan/lib/browser"
	"github.com/cpmntech/vulcan/lib/build"
	"github.com/cpmntech/vulcan/lib/config"
	"github.com/cpmntech/vulcan/lib/log"
	"github.com/cpmntech/vulcan/lib/monitoring"
	"github.com/cpmntech/vulcan/lib/runner"
	"github.com/cpmntech/vulcan/lib/sandbox"
)

// ExitError carries the exit status of failed suite
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("suite finished with status %d", e.Code)
}

// Execute runs the command line and returns the process exit status
func Execute(args []string, stdout io.Writer) int {
	cmd := NewCommand(stdout)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		return 1
	}
	return 0
}

// NewCommand creates the root command with all the subcommands
func NewCommand(stdout io.Writer) *cobra.Command {
	var logVerbosity string
	var logFormat string
	var logTimestamp bool

	cmd := &cobra.Command{
		Use:           "vulcan",
		Short:         "Vulcan QA automation",
		Long:          `Runs Gherkin features against the web application and its API`,
		Version:       fmt.Sprintf("%s (%s)", build.Version, build.Time),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ /*cmd*/ *cobra.Command, _ /*args*/ []string) error {
			logCfg := log.DefaultConfig()
			logCfg.Level = logVerbosity
			logCfg.Format = logFormat
			logCfg.UseTimestamp = logTimestamp
			return log.Initialize(logCfg)
		},
	}
	cmd.SetOut(stdout)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&logVerbosity, "verbosity", "v", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&logFormat, "log-format", "console", "log format (console, json)")
	flags.BoolVar(&logTimestamp, "timestamp", true, "prepend timestamps for each log line")
	flags.Lookup("timestamp").NoOptDefVal = "false"

	cmd.AddCommand(newRunCommand(stdout), newSandboxCommand(), newInstallCommand())
	return cmd
}

// loadConfig reads the file given by flag or VULCAN_CONFIG, the default file is optional
func loadConfig(path string, overrides []string) (*config.Config, error) {
	logger := log.WithFunc("cli", "loadConfig")

	if path == "" {
		path = os.Getenv(config.EnvPrefix + "_CONFIG")
	}
	explicit := path != ""
	if !explicit {
		path = config.DefaultPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		logger.Warn("No configuration file found, using env and overrides only", "path", path)
		cfg = config.New()
	}
	if err := cfg.ApplyOverrides(overrides); err != nil {
		return nil, err
	}
	config.SetInstance(cfg)
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newRunCommand(stdout io.Writer) *cobra.Command {
	var cfgPath string
	var overrides []string
	opts := runner.Options{Output: stdout}

	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Run the features",
		Long:  `Runs feature files or directories, "features" when none are given`,
		RunE: func(_ /*cmd*/ *cobra.Command, args []string) (err error) {
			logger := log.WithFunc("cli", "run")
			logger.Info("Vulcan init...", "version", build.Version)

			cfg, err := loadConfig(cfgPath, overrides)
			if err != nil {
				logger.Error("Unable to load configuration", "err", err)
				return err
			}
			users, err := auth.LoadRegistry(cfg)
			if err != nil {
				logger.Error("Unable to load credentials", "err", err)
				return err
			}

			ctx, stop := signalContext()
			defer stop()

			monitoringConfig, err := runner.MonitoringConfig(cfg)
			if err != nil {
				return err
			}
			monitor, err := monitoring.Initialize(ctx, monitoringConfig)
			if err != nil {
				logger.Error("Unable to initialize monitoring", "err", err)
				return fmt.Errorf("unable to initialize monitoring: %w", err)
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := monitor.Shutdown(shutdownCtx); err != nil {
					logger.Error("Error shutting down monitoring", "err", err)
				}
			}()

			r := runner.New(cfg, monitor, users)
			opts.Paths = args
			status := r.Run(ctx, opts)
			if status == runner.StatusPassed {
				return nil
			}

			if failed := r.Failed(); len(failed) > 0 {
				fmt.Fprintf(stdout, "\nRerun the failed features with:\n  %s\n", runner.RerunCommand("vulcan", rerunArgs(cfgPath, overrides), failed))
			}
			return &ExitError{Code: status}
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfgPath, "cfg", "c", "", "properties configuration file (default config.properties)")
	flags.StringArrayVarP(&overrides, "define", "D", nil, "configuration override key=value, can be repeated")
	flags.StringVarP(&opts.Tags, "tags", "t", "", "run only scenarios matching tag expression")
	flags.StringVarP(&opts.Format, "format", "f", "pretty", "godog formatter (pretty, progress, cucumber, junit)")
	flags.IntVar(&opts.Concurrency, "concurrency", 1, "scenarios to run in parallel")
	flags.BoolVar(&opts.Strict, "strict", false, "fail the suite on pending or undefined steps")
	flags.BoolVar(&opts.Randomize, "random", false, "run scenarios in random order")
	flags.BoolVar(&opts.StopOnFailure, "stop-on-failure", false, "stop on the first failed scenario")
	flags.StringVar(&opts.ReportDir, "report-dir", "", "write cucumber.json and junit.xml reports to the directory")
	flags.BoolVar(&opts.NoColors, "no-colors", false, "disable ansi colors")

	return cmd
}

func rerunArgs(cfgPath string, overrides []string) []string {
	var args []string
	if cfgPath != "" {
		args = append(args, "-c", cfgPath)
	}
	for _, o := range overrides {
		args = append(args, "-D", o)
	}
	return args
}

func newSandboxCommand() *cobra.Command {
	var cfgPath string
	var addr string

	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Serve the demo shop and its API locally",
		RunE: func(_ /*cmd*/ *cobra.Command, _ /*args*/ []string) error {
			cfg, err := loadConfig(cfgPath, nil)
			if err != nil {
				return err
			}
			users, err := auth.LoadRegistry(cfg)
			if err != nil {
				return err
			}
			sb, err := sandbox.New(users)
			if err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()
			return sb.Run(ctx, addr)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfgPath, "cfg", "c", "", "properties configuration file, used for auth.credentialsFile")
	flags.StringVarP(&addr, "addr", "a", "127.0.0.1:8080", "address to listen on")
	return cmd
}

func newInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "install [browsers...]",
		Short: "Download playwright driver and browsers",
		Long:  `Downloads playwright driver and the given browsers (chromium, firefox, webkit), all of them when none are given`,
		RunE: func(_ /*cmd*/ *cobra.Command, args []string) error {
			logger := log.WithFunc("cli", "install")
			logger.Info("Installing browsers", "browsers", args)
			if err := browser.Install(args...); err != nil {
				logger.Error("Unable to install browsers", "err", err)
				return err
			}
			logger.Info("Browsers installed")
			return nil
		},
	}
}
