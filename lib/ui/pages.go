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
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/cpmntech/vulcan/lib/log"
)

// BasePage holds what every page object needs
type BasePage struct {
	page    Page
	wait    *WaitUtils
	actions *ElementActions
	logger  *slog.Logger
}

// NewBasePage prepares waiter and actions for the page object
func NewBasePage(page Page, timeout time.Duration, name string) (*BasePage, error) {
	wait, err := NewWaitUtils(page, timeout)
	if err != nil {
		return nil, err
	}
	actions, err := NewElementActions(wait)
	if err != nil {
		return nil, err
	}
	p := &BasePage{
		page:    page,
		wait:    wait,
		actions: actions,
		logger:  log.WithFunc("ui", name),
	}
	p.logger.Debug(name + " initialized")
	return p, nil
}

// Wait returns the waiter of the page
func (p *BasePage) Wait() *WaitUtils {
	return p.wait
}

// Actions returns element actions of the page
func (p *BasePage) Actions() *ElementActions {
	return p.actions
}

func (p *BasePage) locate(selector string) playwright.Locator {
	return p.page.Locator(selector)
}

// PageTitle returns the title of the current page
func (p *BasePage) PageTitle() (string, error) {
	title, err := p.page.Title()
	if err != nil {
		return "", fmt.Errorf("unable to get page title: %w", err)
	}
	p.logger.Info(fmt.Sprintf("UI INFO | pageTitle='%s'", title))
	return title, nil
}

// Login page selectors
const (
	LoginUsernameSelector = "#user-name"
	LoginPasswordSelector = "#password"
	LoginButtonSelector   = "#login-button"
	LoginErrorSelector    = `[data-test="error"]`
)

// LoginPage is the entry page of the application
type LoginPage struct {
	*BasePage
	username playwright.Locator
	password playwright.Locator
	button   playwright.Locator
	errorMsg playwright.Locator
}

// NewLoginPage creates login page object
func NewLoginPage(page Page, timeout time.Duration) (*LoginPage, error) {
	base, err := NewBasePage(page, timeout, "LoginPage")
	if err != nil {
		return nil, err
	}
	return &LoginPage{
		BasePage: base,
		username: base.locate(LoginUsernameSelector),
		password: base.locate(LoginPasswordSelector),
		button:   base.locate(LoginButtonSelector),
		errorMsg: base.locate(LoginErrorSelector),
	}, nil
}

// EnterUsername types the username
func (p *LoginPage) EnterUsername(username string) error {
	return p.actions.Type(p.username, "usernameField", username)
}

// EnterPassword types the password, it never reaches the logs
func (p *LoginPage) EnterPassword(password string) error {
	return p.actions.TypeSensitive(p.password, "passwordField", password)
}

// ClickLogin submits the login form
func (p *LoginPage) ClickLogin() error {
	return p.actions.Click(p.button, "loginButton")
}

// IsLoginFormVisible checks username, password and button are displayed
func (p *LoginPage) IsLoginFormVisible() bool {
	return p.actions.IsDisplayed(p.username, "usernameField") &&
		p.actions.IsDisplayed(p.password, "passwordField") &&
		p.actions.IsDisplayed(p.button, "loginButton")
}

// LoginAs fills the form and submits it
func (p *LoginPage) LoginAs(username, password string) error {
	if err := p.EnterUsername(username); err != nil {
		return err
	}
	if err := p.EnterPassword(password); err != nil {
		return err
	}
	return p.ClickLogin()
}

// ErrorMessage returns the text of the login error banner
func (p *LoginPage) ErrorMessage() (string, error) {
	return p.actions.GetText(p.errorMsg, "loginError")
}

// Inventory page selectors
const (
	InventoryContainerSelector = "#inventory_container"
	InventoryTitleSelector     = ".title"
	InventoryTitle             = "Products"
)

// InventoryPage lists the products, shown after successful login
type InventoryPage struct {
	*BasePage
	container playwright.Locator
	title     playwright.Locator
}

// NewInventoryPage creates inventory page object
func NewInventoryPage(page Page, timeout time.Duration) (*InventoryPage, error) {
	base, err := NewBasePage(page, timeout, "InventoryPage")
	if err != nil {
		return nil, err
	}
	return &InventoryPage{
		BasePage:  base,
		container: base.locate(InventoryContainerSelector).First(),
		title:     base.locate(InventoryTitleSelector).First(),
	}, nil
}

// IsLoaded checks the inventory is displayed with the expected title
func (p *InventoryPage) IsLoaded() bool {
	// Page could still be loading after the login submit
	if _, err := p.wait.WaitForVisible(p.container); err != nil {
		p.logger.Debug("Inventory container did not appear", "err", err)
	}
	if !p.actions.IsDisplayed(p.container, "inventoryContainer") || !p.actions.IsDisplayed(p.title, "pageTitle") {
		return false
	}
	text, err := p.title.InnerText()
	if err != nil {
		p.logger.Debug("Unable to read inventory title", "err", err)
		return false
	}
	return text == InventoryTitle
}
