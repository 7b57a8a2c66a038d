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

package steps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/cpmntech/vulcan/lib/config"
	"github.com/cpmntech/vulcan/lib/hooks"
	"github.com/cpmntech/vulcan/lib/scenario"
	"github.com/cpmntech/vulcan/lib/ui"
)

func pageOf(ctx context.Context) (playwright.Page, error) {
	store, err := storeOf(ctx)
	if err != nil {
		return nil, err
	}
	driver, err := scenario.Get[hooks.Browser](store, scenario.KeyBrowserDriver)
	if err != nil {
		return nil, fmt.Errorf("UI step in scenario without browser: %w", err)
	}
	return driver.Page(ctx)
}

func (s *Steps) loginPage(ctx context.Context) (*ui.LoginPage, error) {
	page, err := pageOf(ctx)
	if err != nil {
		return nil, err
	}
	timeout, err := ui.TimeoutFromConfig(s.cfg)
	if err != nil {
		return nil, err
	}
	return ui.NewLoginPage(page, timeout)
}

func (s *Steps) iAmOnTheLoginPage(ctx context.Context) error {
	page, err := pageOf(ctx)
	if err != nil {
		return err
	}
	baseURL, err := s.cfg.Get(config.UIBaseURL)
	if err != nil {
		return err
	}
	// Before hook already opened it, navigate only when some step left the page
	if page.URL() != baseURL {
		if _, err := page.Goto(baseURL); err != nil {
			return fmt.Errorf("unable to open login page: %w", err)
		}
	}
	login, err := s.loginPage(ctx)
	if err != nil {
		return err
	}
	_, err = login.Wait().WaitForVisible(page.Locator(ui.LoginButtonSelector))
	return err
}

func (s *Steps) iShouldSeeTheLoginForm(ctx context.Context) error {
	login, err := s.loginPage(ctx)
	if err != nil {
		return err
	}
	return ui.AssertLoginFormVisible(login)
}

func (s *Steps) iLogInAsTheUser(ctx context.Context, role string) error {
	creds, err := s.users.ByRole(role)
	if err != nil {
		return err
	}
	store, err := storeOf(ctx)
	if err != nil {
		return err
	}
	store.Put(scenario.KeyCredentials, creds)
	return s.iLogInWithUsernameAndPassword(ctx, creds.Username, creds.Password)
}

func (s *Steps) iLogInWithUsernameAndPassword(ctx context.Context, username, password string) error {
	login, err := s.loginPage(ctx)
	if err != nil {
		return err
	}
	return ui.NewLoginActions(login).Login(username, password)
}

func (s *Steps) iShouldSeeTheProductsPage(ctx context.Context) error {
	page, err := pageOf(ctx)
	if err != nil {
		return err
	}
	timeout, err := ui.TimeoutFromConfig(s.cfg)
	if err != nil {
		return err
	}
	inventory, err := ui.NewInventoryPage(page, timeout)
	if err != nil {
		return err
	}
	if !inventory.IsLoaded() {
		return errors.New("Products page should be displayed after login")
	}
	return nil
}

func (s *Steps) iShouldSeeTheLoginError(ctx context.Context, text string) error {
	login, err := s.loginPage(ctx)
	if err != nil {
		return err
	}
	msg, err := login.ErrorMessage()
	if err != nil {
		return err
	}
	if !strings.Contains(msg, text) {
		return fmt.Errorf("expected login error to contain %q, got: %q", text, msg)
	}
	return nil
}

func (s *Steps) thePageTitleShouldContain(ctx context.Context, text string) error {
	login, err := s.loginPage(ctx)
	if err != nil {
		return err
	}
	return login.Wait().WaitForTitleContains(text)
}
