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

package monitoring

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the instruments of the test run
type Metrics struct {
	scenarios        metric.Int64Counter
	scenarioDuration metric.Float64Histogram
	cleanups         metric.Int64Counter
	cleanupFailures  metric.Int64Counter
	browserSessions  metric.Int64Counter
}

// NewMetrics creates all the instruments on the meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.scenarios, err = meter.Int64Counter("vulcan_scenarios_total",
		metric.WithDescription("Finished scenarios by status")); err != nil {
		return nil, fmt.Errorf("scenarios counter: %w", err)
	}
	if m.scenarioDuration, err = meter.Float64Histogram("vulcan_scenario_duration_seconds",
		metric.WithDescription("Scenario execution time"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("scenario duration histogram: %w", err)
	}
	if m.cleanups, err = meter.Int64Counter("vulcan_cleanups_total",
		metric.WithDescription("Executed cleanup actions")); err != nil {
		return nil, fmt.Errorf("cleanups counter: %w", err)
	}
	if m.cleanupFailures, err = meter.Int64Counter("vulcan_cleanup_failures_total",
		metric.WithDescription("Cleanup actions which returned error or panicked")); err != nil {
		return nil, fmt.Errorf("cleanup failures counter: %w", err)
	}
	if m.browserSessions, err = meter.Int64Counter("vulcan_browser_sessions_total",
		metric.WithDescription("Browsers launched for UI scenarios")); err != nil {
		return nil, fmt.Errorf("browser sessions counter: %w", err)
	}

	return m, nil
}

// RecordScenario records the result and the duration of the scenario
func (m *Metrics) RecordScenario(ctx context.Context, passed bool, duration time.Duration, attrs ...attribute.KeyValue) {
	if m == nil {
		return
	}
	status := "passed"
	if !passed {
		status = "failed"
	}
	withStatus := append(append([]attribute.KeyValue{}, attrs...), attribute.String("status", status))
	m.scenarios.Add(ctx, 1, metric.WithAttributes(withStatus...))
	m.scenarioDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(withStatus...))
}

// RecordCleanup records amount of executed and failed cleanup actions
func (m *Metrics) RecordCleanup(ctx context.Context, executed, failed int) {
	if m == nil {
		return
	}
	m.cleanups.Add(ctx, int64(executed))
	if failed > 0 {
		m.cleanupFailures.Add(ctx, int64(failed))
	}
}

// RecordBrowserSession counts launched browsers
func (m *Metrics) RecordBrowserSession(ctx context.Context, browser string) {
	if m == nil {
		return
	}
	m.browserSessions.Add(ctx, 1, metric.WithAttributes(attribute.String("browser", browser)))
}
