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
	"sync"

	"github.com/playwright-community/playwright-go"
)

var errNotVisible = errors.New("timeout: element is not visible")

// pwLocator keeps the embedded field from hiding the Locator method
type pwLocator = playwright.Locator

// fakeLocator implements the locator methods the page objects use
type fakeLocator struct {
	pwLocator

	mu       sync.Mutex
	visible  bool
	visErr   error
	enabled  func() bool
	text     string
	value    string
	clicks   int
	onClick  func()
	cleared  int
	failFill error
}

func (l *fakeLocator) WaitFor(...playwright.LocatorWaitForOptions) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.visible {
		return errNotVisible
	}
	return nil
}

func (l *fakeLocator) IsVisible(...playwright.LocatorIsVisibleOptions) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visible, l.visErr
}

func (l *fakeLocator) IsEnabled(...playwright.LocatorIsEnabledOptions) (bool, error) {
	if l.enabled == nil {
		return true, nil
	}
	return l.enabled(), nil
}

func (l *fakeLocator) Click(...playwright.LocatorClickOptions) error {
	l.mu.Lock()
	l.clicks++
	onClick := l.onClick
	l.mu.Unlock()
	if onClick != nil {
		onClick()
	}
	return nil
}

func (l *fakeLocator) Clear(...playwright.LocatorClearOptions) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cleared++
	l.value = ""
	return nil
}

func (l *fakeLocator) Fill(value string, _ ...playwright.LocatorFillOptions) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failFill != nil {
		return l.failFill
	}
	l.value = value
	return nil
}

func (l *fakeLocator) InnerText(...playwright.LocatorInnerTextOptions) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.visible {
		return "", errNotVisible
	}
	return l.text, nil
}

func (l *fakeLocator) First() playwright.Locator {
	return l
}

func (l *fakeLocator) setVisible(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.visible = v
}

// fakePage serves locators by selector
type fakePage struct {
	mu       sync.Mutex
	locators map[string]*fakeLocator
	title    string
	url      string
}

func newFakePage() *fakePage {
	return &fakePage{locators: map[string]*fakeLocator{}}
}

func (p *fakePage) Locator(selector string, _ ...playwright.PageLocatorOptions) playwright.Locator {
	return p.loc(selector)
}

func (p *fakePage) loc(selector string) *fakeLocator {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.locators[selector]
	if !ok {
		l = &fakeLocator{}
		p.locators[selector] = l
	}
	return l
}

func (p *fakePage) Title() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.title, nil
}

func (p *fakePage) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *fakePage) navigate(url, title string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url, p.title = url, title
}

// loginForm creates the page with login form rendered
func loginForm() *fakePage {
	p := newFakePage()
	p.title = "Swag Labs"
	p.url = "https://www.saucedemo.com/"
	for _, sel := range []string{LoginUsernameSelector, LoginPasswordSelector, LoginButtonSelector} {
		p.loc(sel).visible = true
	}
	return p
}

var _ playwright.Locator = (*fakeLocator)(nil)
