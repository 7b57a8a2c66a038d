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

package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandler_BasicFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Info("test message")
	output := buf.String()

	if !strings.HasPrefix(output, "[") || !strings.Contains(output, "]") {
		t.Errorf("Expected timestamp in brackets, got: %s", output)
	}
	if !strings.Contains(output, "INF") {
		t.Errorf("Expected INF level, got: %s", output)
	}
	if !strings.Contains(output, `test message`) {
		t.Errorf("Expected 'test message', got: %s", output)
	}
}

func TestConsoleHandler_DebugTimestamp(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Debug("debug message")
	output := buf.String()

	// Debug level should include milliseconds
	if !strings.Contains(output, ".") {
		t.Errorf("Debug timestamp should include milliseconds, got: %s", output)
	}
}

func TestConsoleHandler_NoTimestamp(t *testing.T) {
	var buf bytes.Buffer
	handler := NewConsoleHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	handler.SetUseTimestamp(false)
	slog.New(handler).Info("no time")

	if !strings.HasPrefix(buf.String(), "INF no time") {
		t.Errorf("Expected line to start with level, got: %s", buf.String())
	}
}

func TestConsoleHandler_Attributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	logger.Info("test", "key1", "value1", "key2", 42, "element", "login button")
	output := buf.String()

	for _, want := range []string{"key1=value1", "key2=42", `element="login button"`} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q, got: %s", want, output)
		}
	}
}

func TestConsoleHandler_PackFunc(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	logger.With("pack", "ui", "func", "Click").Info("UI ACTION | click")
	output := buf.String()

	if !strings.Contains(output, "ui.Click") {
		t.Errorf("Expected 'ui.Click', got: %s", output)
	}
	if strings.Contains(output, "pack=") || strings.Contains(output, "func=") {
		t.Errorf("pack and func should not be printed as attributes, got: %s", output)
	}
}

func TestConsoleHandler_Groups(t *testing.T) {
	tests := []struct {
		name   string
		log    func(l *slog.Logger)
		expect []string
	}{
		{
			name:   "with group",
			log:    func(l *slog.Logger) { l.WithGroup("user").WithGroup("profile").Info("test", "name", "john") },
			expect: []string{"user.profile.name=john"},
		},
		{
			name:   "group attr",
			log:    func(l *slog.Logger) { l.Info("test", slog.Group("user", "name", "john", "age", 30)) },
			expect: []string{"user.name=john", "user.age=30"},
		},
		{
			name: "nested",
			log: func(l *slog.Logger) {
				l.WithGroup("request").Info("test", slog.Group("profile", "name", "john"), "status", "active")
			},
			expect: []string{"request.profile.name=john", "request.status=active"},
		},
		{
			name:   "empty group",
			log:    func(l *slog.Logger) { l.WithGroup("").Info("test", "key", "value") },
			expect: []string{" key=value"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(slog.New(NewConsoleHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))
			for _, want := range tt.expect {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("Expected %q, got: %s", want, buf.String())
				}
			}
		})
	}
}

func TestConsoleHandler_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected 4 lines, got %d", len(lines))
	}
	for i, lvl := range []string{"DBG", "INF", "WRN", "ERR"} {
		if !strings.Contains(lines[i], lvl) {
			t.Errorf("Expected %s level, got: %s", lvl, lines[i])
		}
	}
}

func TestConsoleHandler_ColorDisabled(t *testing.T) {
	var buf bytes.Buffer
	handler := NewConsoleHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	handler.SetUseColor(false)
	slog.New(handler).Info("test message")

	if strings.Contains(buf.String(), "\033[") {
		t.Errorf("Expected no color codes, got: %s", buf.String())
	}
}

func TestConsoleHandler_Enabled(t *testing.T) {
	handler := NewConsoleHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})

	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Info should be disabled when level is Warn")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Error("Error should be enabled when level is Warn")
	}
}

func TestInitialize_MasksSensitive(t *testing.T) {
	var buf bytes.Buffer
	if err := Initialize(&Config{Level: "debug", Format: "console", Output: &buf}); err != nil {
		t.Fatalf("Unable to initialize logger: %v", err)
	}
	defer Initialize(DefaultConfig())

	WithFunc("ui", "Type").Info("UI ACTION | type", "element", "password", "password", "secret_sauce", "authToken", "abc")
	output := buf.String()

	if strings.Contains(output, "secret_sauce") || strings.Contains(output, "abc") {
		t.Errorf("Sensitive value leaked to log: %s", output)
	}
	if !strings.Contains(output, "password="+Masked) {
		t.Errorf("Expected masked password, got: %s", output)
	}
	if !strings.Contains(output, "element=password") {
		t.Errorf("Expected element name to stay visible, got: %s", output)
	}
}

func TestInitialize_BadLevel(t *testing.T) {
	if err := Initialize(&Config{Level: "loud"}); err == nil {
		t.Error("Expected error on unknown level")
	}
	if GetLevel() != LevelInfo {
		t.Errorf("Expected level to stay info, got: %v", GetLevel())
	}
}
