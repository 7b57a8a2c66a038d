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
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorGray   = "\033[90m"
	ColorRed    = "\033[91m"
	ColorYellow = "\033[93m"
	ColorBlue   = "\033[94m"
	ColorCyan   = "\033[96m"
	ColorWhite  = "\033[97m"
	ColorDim    = "\033[2m"
)

// ConsoleHandler formats records as single human-readable lines:
//
//	[251019/142233+02] INF UI ACTION | click ui.Click element=login-button
type ConsoleHandler struct {
	opts   *slog.HandlerOptions
	writer io.Writer
	// Shared between derived handlers so lines never interleave
	mu *sync.Mutex

	useColor     bool
	useTimestamp bool
	isDebugLevel bool

	attrs  []slog.Attr
	groups []string
}

// NewConsoleHandler creates a new ConsoleHandler
func NewConsoleHandler(w io.Writer, opts *slog.HandlerOptions) *ConsoleHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}

	return &ConsoleHandler{
		opts:         opts,
		writer:       w,
		mu:           &sync.Mutex{},
		useColor:     isTerminal(w),
		useTimestamp: true,
		isDebugLevel: opts.Level != nil && opts.Level.Level() <= slog.LevelDebug,
	}
}

// isTerminal checks if the writer is a terminal (PTY)
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// SetUseColor enables or disables color output
func (h *ConsoleHandler) SetUseColor(useColor bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.useColor = useColor
}

// SetUseTimestamp enables or disables the leading timestamp
func (h *ConsoleHandler) SetUseTimestamp(useTimestamp bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.useTimestamp = useTimestamp
}

// Enabled reports whether the handler handles records at the given level
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle handles the Record
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	var buf strings.Builder

	pack, fun := h.extractPackFunc(r)

	if h.useTimestamp {
		layout := "060102/150405-07"
		if h.isDebugLevel {
			layout = "060102/150405.000-07"
		}
		buf.WriteString(h.colorize(ColorGray, "["+r.Time.Format(layout)+"]"))
		buf.WriteByte(' ')
	}
	buf.WriteString(h.colorizeLevel(r.Level, formatLevel(r.Level)))
	buf.WriteByte(' ')
	buf.WriteString(h.colorizeLevel(r.Level, r.Message))
	if pack != "" && fun != "" {
		buf.WriteByte(' ')
		buf.WriteString(h.colorize(ColorDim, pack+"."+fun))
	}

	for _, attr := range h.attrs {
		if attr.Key != "pack" && attr.Key != "func" {
			h.appendAttr(&buf, h.groups, attr)
		}
	}
	r.Attrs(func(a slog.Attr) bool {
		if a.Key != "pack" && a.Key != "func" {
			h.appendAttr(&buf, h.groups, a)
		}
		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, buf.String())
	return err
}

// extractPackFunc extracts pack and func from handler and record attributes
func (h *ConsoleHandler) extractPackFunc(r slog.Record) (pack, fun string) {
	pick := func(a slog.Attr) {
		switch a.Key {
		case "pack":
			pack = a.Value.String()
		case "func":
			fun = a.Value.String()
		}
	}
	for _, attr := range h.attrs {
		pick(attr)
	}
	r.Attrs(func(a slog.Attr) bool {
		pick(a)
		return true
	})
	return pack, fun
}

// appendAttr adds a single attribute to the buffer, groups are flattened with dots
func (h *ConsoleHandler) appendAttr(buf *strings.Builder, groups []string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if h.opts.ReplaceAttr != nil && attr.Value.Kind() != slog.KindGroup {
		attr = h.opts.ReplaceAttr(groups, attr)
	}
	if attr.Equal(slog.Attr{}) {
		return
	}

	if attr.Value.Kind() == slog.KindGroup {
		sub := groups
		if attr.Key != "" {
			sub = append(append([]string{}, groups...), attr.Key)
		}
		for _, a := range attr.Value.Group() {
			h.appendAttr(buf, sub, a)
		}
		return
	}

	buf.WriteByte(' ')
	for _, g := range groups {
		buf.WriteString(g)
		buf.WriteByte('.')
	}
	buf.WriteString(attr.Key)
	buf.WriteByte('=')
	buf.WriteString(formatValue(attr.Value))
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\n\"=") {
			return strconv.Quote(s)
		}
		return s
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	default:
		return fmt.Sprintf("%v", v.Any())
	}
}

// formatLevel formats the log level as a 3-character string
func formatLevel(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return "DBG"
	case level < slog.LevelWarn:
		return "INF"
	case level < slog.LevelError:
		return "WRN"
	default:
		return "ERR"
	}
}

// colorize applies color to text if colors are enabled
func (h *ConsoleHandler) colorize(color, text string) string {
	if !h.useColor {
		return text
	}
	return color + text + ColorReset
}

// colorizeLevel applies level-specific colors
func (h *ConsoleHandler) colorizeLevel(level slog.Level, text string) string {
	color := ColorWhite
	switch {
	case level < slog.LevelInfo:
		color = ColorCyan
	case level < slog.LevelWarn:
		color = ColorBlue
	case level < slog.LevelError:
		color = ColorYellow
	default:
		color = ColorRed
	}
	return h.colorize(color, text)
}

func (h *ConsoleHandler) clone() *ConsoleHandler {
	return &ConsoleHandler{
		opts:         h.opts,
		writer:       h.writer,
		mu:           h.mu,
		useColor:     h.useColor,
		useTimestamp: h.useTimestamp,
		isDebugLevel: h.isDebugLevel,
		attrs:        h.attrs,
		groups:       h.groups,
	}
}

// WithAttrs returns a new ConsoleHandler with the given attributes
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	nh := h.clone()
	nh.attrs = append(append(make([]slog.Attr, 0, len(h.attrs)+len(attrs)), h.attrs...), attrs...)
	return nh
}

// WithGroup returns a new ConsoleHandler with the given group
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := h.clone()
	nh.groups = append(append(make([]string, 0, len(h.groups)+1), h.groups...), name)
	return nh
}
