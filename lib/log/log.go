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

// Package log provides structured logging for the Vulcan framework
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"go.opentelemetry.io/contrib/bridges/otelslog"
)

type Level = slog.Level

const (
	LevelDebug Level = slog.LevelDebug
	LevelInfo  Level = slog.LevelInfo
	LevelWarn  Level = slog.LevelWarn
	LevelError Level = slog.LevelError
)

// Masked is written instead of values of sensitive attributes
const Masked = "<masked>"

var levels = []Level{LevelDebug, LevelInfo, LevelWarn, LevelError}

// Global logger instance
var (
	loggerMu sync.RWMutex
	logger   *slog.Logger

	otelHandler *otelslog.Handler
)

func init() {
	_ = Initialize(DefaultConfig())
}

// Config of the logging subsystem
type Config struct {
	Level        string    `json:"level"`         // Log level (debug, info, warn, error)
	Format       string    `json:"format"`        // Output format (console, json)
	UseTimestamp bool      `json:"use_timestamp"` // Include timestamp in logs
	UseColor     bool      `json:"use_color"`     // Allow colors when output is a terminal
	Output       io.Writer `json:"-"`             // Defaults to stdout
}

// DefaultConfig returns default logging configuration
func DefaultConfig() *Config {
	return &Config{
		Level:        "info",
		Format:       "console",
		UseTimestamp: true,
		UseColor:     true,
	}
}

// parseLevel converts string level to slog.Level
func parseLevel(levelStr string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown level %q", levelStr)
	}
}

// IsSensitiveKey tells if the value stored under the key should never reach the logs
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "password") || strings.Contains(k, "secret") || strings.Contains(k, "token")
}

// maskSensitive hides values of password/secret/token attributes
func maskSensitive(_ /*groups*/ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindGroup && IsSensitiveKey(a.Key) {
		return slog.String(a.Key, Masked)
	}
	return a
}

// Initialize sets up the global logger with the given configuration
func Initialize(config *Config) error {
	level, err := parseLevel(config.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", config.Level, err)
	}

	var output io.Writer = os.Stdout
	if config.Output != nil {
		output = config.Output
	}

	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: maskSensitive,
	}

	var handler slog.Handler
	if config.Format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		consoleHandler := NewConsoleHandler(output, opts)
		if !config.UseColor {
			consoleHandler.SetUseColor(false)
		}
		consoleHandler.SetUseTimestamp(config.UseTimestamp)
		handler = consoleHandler
	}

	loggerMu.Lock()
	logger = slog.New(handler)
	otelHandler = nil
	loggerMu.Unlock()

	return nil
}

// SetupOtelIntegration mirrors all the log records to OpenTelemetry
// It's called by the monitoring package when the log exporter is ready
func SetupOtelIntegration() {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if otelHandler != nil {
		return
	}
	otelHandler = otelslog.NewHandler("vulcan")
	logger = slog.New(&multiHandler{
		handlers: []slog.Handler{logger.Handler(), otelHandler},
	})
}

// multiHandler combines multiple slog.Handler implementations
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var lastErr error
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, r.Level) {
			continue
		}
		if err := handler.Handle(ctx, r.Clone()); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		newHandlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		newHandlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// GetLevel returns the lowest enabled logging level
func GetLevel() Level {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	for _, lvl := range levels {
		if logger.Handler().Enabled(context.Background(), lvl) {
			return lvl
		}
	}
	return LevelError
}

// Logger returns the current global logger
func Logger() *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// WithFunc provides a way to identify package and function executed
func WithFunc(pack, fun string) *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	if pack == "" {
		pack = "unknown"
	}
	if fun == "" {
		fun = "unknown"
	}
	return logger.With("pack", pack, "func", fun)
}
