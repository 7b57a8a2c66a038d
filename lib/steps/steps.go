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

// Package steps contains the Gherkin step definitions of the UI and API features
package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/cpmntech/vulcan/lib/api"
	"github.com/cpmntech/vulcan/lib/auth"
	"github.com/cpmntech/vulcan/lib/config"
	"github.com/cpmntech/vulcan/lib/scenario"
)

// Steps share the configuration and the users, all the scenario state is in the context Store
type Steps struct {
	cfg   *config.Config
	users *auth.Registry
}

// New creates the step definitions
func New(cfg *config.Config, users *auth.Registry) *Steps {
	return &Steps{cfg: cfg, users: users}
}

// Register adds all the steps to the scenario context
func (s *Steps) Register(sc *godog.ScenarioContext) {
	// UI login
	sc.Step(`^I am on the login page$`, s.iAmOnTheLoginPage)
	sc.Step(`^I should see the login form$`, s.iShouldSeeTheLoginForm)
	sc.Step(`^I log in as the "([^"]*)" user$`, s.iLogInAsTheUser)
	sc.Step(`^I log in with username "([^"]*)" and password "([^"]*)"$`, s.iLogInWithUsernameAndPassword)
	sc.Step(`^I should see the products page$`, s.iShouldSeeTheProductsPage)
	sc.Step(`^I should see the login error "([^"]*)"$`, s.iShouldSeeTheLoginError)
	sc.Step(`^the page title should contain "([^"]*)"$`, s.thePageTitleShouldContain)

	// API health
	sc.Step(`^I call the API health endpoint$`, s.iCallTheAPIHealthEndpoint)
	sc.Step(`^the API response body should contain "([^"]*)"$`, s.theAPIResponseBodyShouldContain)

	// API users
	sc.Step(`^I request the user with id "([^"]*)"$`, s.iRequestTheUserWithID)
	sc.Step(`^I create a user named "([^"]*)" with job "([^"]*)"$`, s.iCreateAUserNamedWithJob)
	sc.Step(`^the API response status should be (\d+)$`, s.theAPIResponseStatusShouldBe)
	sc.Step(`^the API response field "([^"]*)" should be (-?\d+)$`, s.theAPIResponseFieldShouldBeInt)
	sc.Step(`^the API response field "([^"]*)" should be "([^"]*)"$`, s.theAPIResponseFieldShouldBeString)

	// API auth
	sc.Step(`^I authenticate via the API as the "([^"]*)" user$`, s.iAuthenticateViaTheAPIAsTheUser)
	sc.Step(`^the auth token should belong to the "([^"]*)" user$`, s.theAuthTokenShouldBelongToTheUser)
}

func storeOf(ctx context.Context) (*scenario.Store, error) {
	store, err := scenario.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("step is running outside of scenario hooks: %w", err)
	}
	return store, nil
}

// clientOf returns the API client of type T shared by the steps of the scenario
func clientOf[T any](ctx context.Context, create func() (T, error)) (T, error) {
	var zero T
	store, err := storeOf(ctx)
	if err != nil {
		return zero, err
	}
	registry, err := scenario.ClientRegistryOf(store)
	if err != nil {
		return zero, err
	}
	return scenario.ClientFor(registry, create)
}

func lastResponse(ctx context.Context) (*api.Response, error) {
	store, err := storeOf(ctx)
	if err != nil {
		return nil, err
	}
	resp, found, err := scenario.GetOptional[*api.Response](store, scenario.KeyLastAPIResponse)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("no API request was made in the scenario")
	}
	return resp, nil
}

func rememberResponse(ctx context.Context, resp *api.Response) error {
	store, err := storeOf(ctx)
	if err != nil {
		return err
	}
	store.Put(scenario.KeyLastAPIResponse, resp)
	return nil
}

func registerCleanup(ctx context.Context, name string, fn scenario.CleanupFunc) error {
	store, err := storeOf(ctx)
	if err != nil {
		return err
	}
	registry, err := scenario.DataRegistryOf(store)
	if err != nil {
		return err
	}
	return registry.RegisterCleanup(name, fn)
}
