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

// Package ui contains page objects of the application under test
//
// Page objects never talk to the browser directly, all the interactions go
// through ElementActions which waits for the element state and logs the action.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/playwright-community/playwright-go"

	"github.com/cpmntech/vulcan/lib/config"
)

// pollInterval of the conditions playwright can't wait for natively
const pollInterval = 100 * time.Millisecond

// Page is the part of playwright.Page used by the page objects
type Page interface {
	Locator(selector string, options ...playwright.PageLocatorOptions) playwright.Locator
	Title() (string, error)
	URL() string
}

// TimeoutFromConfig returns ui.explicitWait or ui.implicitWait when it's not set
func TimeoutFromConfig(cfg *config.Config) (time.Duration, error) {
	key := config.UIExplicitWait
	if !cfg.IsSet(key) {
		key = config.UIImplicitWait
	}
	seconds, err := cfg.GetInt(key)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds) * time.Second, nil
}

// WaitUtils waits for the page and element conditions within the timeout
type WaitUtils struct {
	page    Page
	timeout time.Duration
}

// NewWaitUtils creates the waiter, page is required and timeout must be positive
func NewWaitUtils(page Page, timeout time.Duration) (*WaitUtils, error) {
	if page == nil {
		return nil, errors.New("page cannot be nil")
	}
	if timeout <= 0 {
		return nil, errors.New("timeout must be greater than zero")
	}
	return &WaitUtils{page: page, timeout: timeout}, nil
}

// Timeout of the waits
func (w *WaitUtils) Timeout() time.Duration {
	return w.timeout
}

// Page the waiter is attached to
func (w *WaitUtils) Page() Page {
	return w.page
}

func (w *WaitUtils) ms() *float64 {
	return playwright.Float(float64(w.timeout.Milliseconds()))
}

// WaitForVisible waits for the element to become visible
func (w *WaitUtils) WaitForVisible(loc playwright.Locator) (playwright.Locator, error) {
	if err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: w.ms(),
	}); err != nil {
		return nil, fmt.Errorf("element is not visible after %s: %w", w.timeout, err)
	}
	return loc, nil
}

// WaitForClickable waits for the element to become visible and enabled
func (w *WaitUtils) WaitForClickable(loc playwright.Locator) (playwright.Locator, error) {
	start := time.Now()
	if _, err := w.WaitForVisible(loc); err != nil {
		return nil, err
	}
	err := w.poll(w.timeout-time.Since(start), func() error {
		enabled, err := loc.IsEnabled()
		if err != nil {
			return err
		}
		if !enabled {
			return errors.New("element is disabled")
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("element is not clickable after %s: %w", w.timeout, err)
	}
	return loc, nil
}

// WaitForTitleContains waits for the page title to contain the text
func (w *WaitUtils) WaitForTitleContains(text string) error {
	var last string
	err := w.poll(w.timeout, func() error {
		title, err := w.page.Title()
		if err != nil {
			return err
		}
		last = title
		if !strings.Contains(title, text) {
			return fmt.Errorf("title %q doesn't contain %q", title, text)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("title %q doesn't contain %q after %s: %w", last, text, w.timeout, err)
	}
	return nil
}

// WaitForURLContains waits for the page URL to contain the text
func (w *WaitUtils) WaitForURLContains(text string) error {
	err := w.poll(w.timeout, func() error {
		if url := w.page.URL(); !strings.Contains(url, text) {
			return fmt.Errorf("url %q doesn't contain %q", url, text)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("url doesn't contain %q after %s: %w", text, w.timeout, err)
	}
	return nil
}

// poll runs the check until it passes or the timeout is reached
func (w *WaitUtils) poll(timeout time.Duration, check func() error) error {
	if timeout <= 0 {
		timeout = pollInterval
	}
	_, err := backoff.Retry(context.Background(), func() (struct{}, error) {
		return struct{}{}, check()
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(pollInterval)),
		backoff.WithMaxElapsedTime(timeout),
	)
	return err
}
