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
	"fmt"
	"net/http"

	"github.com/cpmntech/vulcan/lib/api"
	"github.com/cpmntech/vulcan/lib/auth"
	"github.com/cpmntech/vulcan/lib/log"
	"github.com/cpmntech/vulcan/lib/scenario"
)

func (s *Steps) healthClient(ctx context.Context) (*api.HealthClient, error) {
	return clientOf(ctx, func() (*api.HealthClient, error) { return api.NewHealthClient(s.cfg) })
}

func (s *Steps) userClient(ctx context.Context) (*api.UserClient, error) {
	return clientOf(ctx, func() (*api.UserClient, error) { return api.NewUserClient(s.cfg) })
}

func (s *Steps) authClient(ctx context.Context) (*api.AuthClient, error) {
	return clientOf(ctx, func() (*api.AuthClient, error) { return api.NewAuthClient(s.cfg) })
}

func (s *Steps) iCallTheAPIHealthEndpoint(ctx context.Context) error {
	client, err := s.healthClient(ctx)
	if err != nil {
		return err
	}
	resp, err := client.GetRoot(ctx)
	if err != nil {
		return err
	}
	if err := rememberResponse(ctx, resp); err != nil {
		return err
	}
	// Health check creates nothing, the entry shows the cleanup runs for every API scenario
	return registerCleanup(ctx, "health check", func(context.Context) error {
		log.WithFunc("steps", "healthCleanup").Debug("Nothing to clean up after health check")
		return nil
	})
}

func (*Steps) theAPIResponseBodyShouldContain(ctx context.Context, text string) error {
	resp, err := lastResponse(ctx)
	if err != nil {
		return err
	}
	return api.AssertBodyContains(resp, text)
}

func (s *Steps) iRequestTheUserWithID(ctx context.Context, id string) error {
	client, err := s.userClient(ctx)
	if err != nil {
		return err
	}
	resp, err := client.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	return rememberResponse(ctx, resp)
}

func (s *Steps) iCreateAUserNamedWithJob(ctx context.Context, name, job string) error {
	client, err := s.userClient(ctx)
	if err != nil {
		return err
	}
	resp, err := client.CreateUser(ctx, name, job)
	if err != nil {
		return err
	}
	if err := rememberResponse(ctx, resp); err != nil {
		return err
	}
	if err := api.AssertStatusCode(resp, http.StatusCreated); err != nil {
		return err
	}

	id := resp.JSON("id").String()
	if id == "" {
		return fmt.Errorf("created user has no id: %s", resp.String())
	}
	store, err := storeOf(ctx)
	if err != nil {
		return err
	}
	store.Put(scenario.KeyCreatedUserID, id)

	return registerCleanup(ctx, "delete user "+id, func(ctx context.Context) error {
		resp, err := client.DeleteUser(ctx, id)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
			return fmt.Errorf("unexpected status %d deleting user %s", resp.StatusCode, id)
		}
		return nil
	})
}

func (*Steps) theAPIResponseStatusShouldBe(ctx context.Context, status int) error {
	resp, err := lastResponse(ctx)
	if err != nil {
		return err
	}
	return api.AssertStatusCode(resp, status)
}

func (*Steps) theAPIResponseFieldShouldBeInt(ctx context.Context, path string, expected int) error {
	resp, err := lastResponse(ctx)
	if err != nil {
		return err
	}
	return api.AssertJSONIntEquals(resp, path, expected)
}

func (*Steps) theAPIResponseFieldShouldBeString(ctx context.Context, path, expected string) error {
	resp, err := lastResponse(ctx)
	if err != nil {
		return err
	}
	return api.AssertJSONStringEquals(resp, path, expected)
}

func (s *Steps) iAuthenticateViaTheAPIAsTheUser(ctx context.Context, role string) error {
	creds, err := s.users.ByRole(role)
	if err != nil {
		return err
	}
	store, err := storeOf(ctx)
	if err != nil {
		return err
	}
	store.Put(scenario.KeyCredentials, creds)

	client, err := s.authClient(ctx)
	if err != nil {
		return err
	}
	resp, err := client.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		return err
	}
	if err := rememberResponse(ctx, resp); err != nil {
		return err
	}
	token, err := api.Token(resp)
	if err != nil {
		return err
	}
	store.Put(scenario.KeyAuthToken, token)
	return nil
}

func (s *Steps) theAuthTokenShouldBelongToTheUser(ctx context.Context, role string) error {
	store, err := storeOf(ctx)
	if err != nil {
		return err
	}
	token, err := scenario.Get[string](store, scenario.KeyAuthToken)
	if err != nil {
		return err
	}
	claims, err := auth.ParseTokenClaims(token)
	if err != nil {
		return err
	}
	expected, err := s.users.ByRole(role)
	if err != nil {
		return err
	}
	if claims.Subject != expected.Username {
		return fmt.Errorf("expected token of %s, got token of %s", expected.Username, claims.Subject)
	}
	return nil
}
