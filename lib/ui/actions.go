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

package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/cpmntech/vulcan/lib/log"
)

const unknownElement = "unknown-element"

// ElementActions performs logged interactions with the elements
type ElementActions struct {
	wait   *WaitUtils
	logger *slog.Logger
}

// NewElementActions creates actions on top of the waiter
func NewElementActions(wait *WaitUtils) (*ElementActions, error) {
	if wait == nil {
		return nil, errors.New("wait cannot be nil")
	}
	return &ElementActions{wait: wait, logger: log.WithFunc("ui", "ElementActions")}, nil
}

func normalizeName(name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return unknownElement
	}
	return name
}

// Click waits for the element to be clickable and clicks it
func (a *ElementActions) Click(loc playwright.Locator, name string) error {
	name = normalizeName(name)
	a.logger.Info(fmt.Sprintf("UI ACTION | click | element='%s'", name))
	if _, err := a.wait.WaitForClickable(loc); err != nil {
		return fmt.Errorf("click %s: %w", name, err)
	}
	if err := loc.Click(); err != nil {
		return fmt.Errorf("click %s: %w", name, err)
	}
	return nil
}

// Type replaces the element value, the value is masked in logs for sensitive element names
func (a *ElementActions) Type(loc playwright.Locator, name, value string) error {
	name = normalizeName(name)
	shown := value
	if log.IsSensitiveKey(name) {
		shown = log.Masked
	}
	a.logger.Info(fmt.Sprintf("UI ACTION | type | element='%s' | value=%s", name, shown))
	return a.fill(loc, name, value)
}

// TypeSensitive replaces the element value, the value is never logged
func (a *ElementActions) TypeSensitive(loc playwright.Locator, name, value string) error {
	name = normalizeName(name)
	a.logger.Info(fmt.Sprintf("UI ACTION | typeSensitive | element='%s' | value=%s", name, log.Masked))
	return a.fill(loc, name, value)
}

func (a *ElementActions) fill(loc playwright.Locator, name, value string) error {
	if _, err := a.wait.WaitForVisible(loc); err != nil {
		return fmt.Errorf("type into %s: %w", name, err)
	}
	if err := loc.Clear(); err != nil {
		return fmt.Errorf("clear %s: %w", name, err)
	}
	if err := loc.Fill(value); err != nil {
		return fmt.Errorf("type into %s: %w", name, err)
	}
	return nil
}

// GetText waits for the element and returns its visible text
func (a *ElementActions) GetText(loc playwright.Locator, name string) (string, error) {
	name = normalizeName(name)
	if _, err := a.wait.WaitForVisible(loc); err != nil {
		return "", fmt.Errorf("get text of %s: %w", name, err)
	}
	text, err := loc.InnerText()
	if err != nil {
		return "", fmt.Errorf("get text of %s: %w", name, err)
	}
	a.logger.Info(fmt.Sprintf("UI ACTION | getText | element='%s' | text='%s'", name, text))
	return text, nil
}

// IsDisplayed checks the element visibility right now, any error means not displayed
func (a *ElementActions) IsDisplayed(loc playwright.Locator, name string) bool {
	name = normalizeName(name)
	displayed, err := loc.IsVisible()
	if err != nil {
		a.logger.Info(fmt.Sprintf("UI ACTION | isDisplayed | element='%s' | displayed=false", name), "err", err)
		return false
	}
	a.logger.Info(fmt.Sprintf("UI ACTION | isDisplayed | element='%s' | displayed=%t", name, displayed))
	return displayed
}
