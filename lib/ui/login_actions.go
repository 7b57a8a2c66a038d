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
	"log/slog"

	"github.com/cpmntech/vulcan/lib/log"
)

// LoginActions is the high-level login flow
type LoginActions struct {
	page   *LoginPage
	logger *slog.Logger
}

// NewLoginActions creates the flow on top of the login page
func NewLoginActions(page *LoginPage) *LoginActions {
	return &LoginActions{page: page, logger: log.WithFunc("ui", "LoginActions")}
}

// Login submits the credentials on the login page
func (a *LoginActions) Login(username, password string) error {
	if a.page == nil {
		return errors.New("login page cannot be nil")
	}
	a.logger.Info("Logging in", "username", username)
	if err := a.page.LoginAs(username, password); err != nil {
		a.logger.Error("Login flow failed", "username", username, "err", err)
		return err
	}
	a.logger.Info("Login flow finished", "username", username)
	return nil
}

// AssertLoginFormVisible fails when the login form is not displayed
func AssertLoginFormVisible(page *LoginPage) error {
	log.WithFunc("ui", "AssertLoginFormVisible").Info("Asserting login form is visible")
	if page == nil || !page.IsLoginFormVisible() {
		return errors.New("Login form should be visible")
	}
	return nil
}
