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

package helper

import (
	"strings"
	"testing"
	"time"

	pw "github.com/playwright-community/playwright-go"

	"github.com/cpmntech/vulcan/lib/ui"
)

// LoginPage creates login page object of the current page
func LoginPage(t *testing.T, page pw.Page) *ui.LoginPage {
	t.Helper()

	login, err := ui.NewLoginPage(page, DefaultTimeout)
	if err != nil {
		t.Fatalf("ERROR: Could not create login page: %v", err)
	}
	return login
}

// LoginUser logs in with given credentials and waits for the inventory
func LoginUser(t *testing.T, page pw.Page, username, password string) {
	t.Helper()

	if err := ui.NewLoginActions(LoginPage(t, page)).Login(username, password); err != nil {
		t.Fatalf("ERROR: Could not submit login form: %v", err)
	}

	if err := page.WaitForURL("**/inventory.html", pw.PageWaitForURLOptions{
		Timeout: pw.Float(float64(DefaultTimeout.Milliseconds())),
	}); err != nil {
		t.Fatalf("ERROR: Login failed for user %s: %v", username, err)
	}

	inventory, err := ui.NewInventoryPage(page, DefaultTimeout)
	if err != nil {
		t.Fatalf("ERROR: Could not create inventory page: %v", err)
	}
	if !inventory.IsLoaded() {
		t.Fatalf("ERROR: Inventory page not loaded after login")
	}

	t.Logf("INFO: Successfully logged in as %s", username)
}

// LogoutUser uses the logout link and waits for the login form
func LogoutUser(t *testing.T, page pw.Page) {
	t.Helper()

	if err := page.Locator("#logout_sidebar_link").Click(); err != nil {
		t.Fatalf("ERROR: Unable to click logout link: %v", err)
	}

	if err := ui.AssertLoginFormVisible(LoginPage(t, page)); err != nil {
		t.Fatalf("ERROR: Login page is not shown after logout: %v", err)
	}

	t.Log("INFO: Successfully logged out")
}

// WaitForElement waits for an element to be present on the page
func WaitForElement(t *testing.T, page pw.Page, selector string, timeout time.Duration) {
	t.Helper()

	if err := page.Locator(selector).WaitFor(pw.LocatorWaitForOptions{
		Timeout: pw.Float(float64(timeout.Milliseconds())),
	}); err != nil {
		t.Fatalf("ERROR: Element %s not found within timeout: %v", selector, err)
	}
}

// CheckElementExists checks if an element exists without failing the test
func CheckElementExists(t *testing.T, page pw.Page, selector string) bool {
	t.Helper()

	err := page.Locator(selector).WaitFor(pw.LocatorWaitForOptions{
		Timeout: pw.Float(float64(DefaultTimeout.Milliseconds())),
	})
	return err == nil
}

// ExpectLoginError checks the error banner of the login form
func ExpectLoginError(t *testing.T, page pw.Page, text string) {
	t.Helper()

	msg, err := LoginPage(t, page).ErrorMessage()
	if err != nil {
		t.Fatalf("ERROR: Login error is not displayed: %v", err)
	}
	if !strings.Contains(msg, text) {
		t.Fatalf("ERROR: Expected login error %q, got: %q", text, msg)
	}
}
