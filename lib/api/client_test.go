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

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	"github.com/cpmntech/vulcan/lib/config"
)

const testBaseURL = "https://reqres.test/api"

func testConfig() *config.Config {
	cfg := config.New()
	cfg.Set(config.APIBaseURL, testBaseURL+"/")
	cfg.Set(config.APITimeout, "2000")
	return cfg
}

// mockClient replaces transport of the client http.Client with httpmock
func mockClient(t *testing.T, c *BaseClient) *httpmock.MockTransport {
	t.Helper()
	mock := httpmock.NewMockTransport()
	c.HTTPClient().Transport = mock
	return mock
}

func TestNewBaseClient_Config(t *testing.T) {
	c, err := NewBaseClient(testConfig())
	if err != nil {
		t.Fatalf("ERROR: Unable to create client: %v", err)
	}
	if c.BaseURL() != testBaseURL {
		t.Errorf("Expected trailing slash to be trimmed, got: %s", c.BaseURL())
	}
	if c.HTTPClient().Timeout != 2*time.Second {
		t.Errorf("Expected 2s timeout, got: %s", c.HTTPClient().Timeout)
	}
	if got := c.URL("users/2"); got != testBaseURL+"/users/2" {
		t.Errorf("Unexpected url: %s", got)
	}

	cfg := testConfig()
	cfg.Set(config.APITimeout, "fast")
	if _, err := NewBaseClient(cfg); err == nil {
		t.Error("Expected error on non-integer timeout")
	}
	cfg.Set(config.APITimeout, "0")
	if _, err := NewBaseClient(cfg); err == nil {
		t.Error("Expected error on zero timeout")
	}
	if _, err := NewBaseClient(config.New()); !errors.Is(err, config.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got: %v", err)
	}
}

func TestUserClient_GetUserByID(t *testing.T) {
	c, err := NewUserClient(testConfig())
	if err != nil {
		t.Fatalf("ERROR: Unable to create client: %v", err)
	}
	mock := mockClient(t, c.BaseClient)

	mock.RegisterResponder(http.MethodGet, testBaseURL+"/users/2", func(req *http.Request) (*http.Response, error) {
		if req.Header.Get("Accept") != "application/json" || req.Header.Get("Content-Type") != "application/json" {
			return httpmock.NewStringResponse(http.StatusNotAcceptable, ""), nil
		}
		return httpmock.NewStringResponse(http.StatusOK, `{"data":{"id":2,"email":"janet.weaver@reqres.in"}}`), nil
	})
	mock.RegisterResponder(http.MethodGet, testBaseURL+"/users/23", httpmock.NewStringResponder(http.StatusNotFound, `{}`))

	resp, err := c.GetUserByID(context.Background(), "2")
	if err != nil {
		t.Fatalf("ERROR: Request failed: %v", err)
	}
	if err := AssertStatusCode(resp, http.StatusOK); err != nil {
		t.Error(err)
	}
	if err := AssertJSONIntEquals(resp, "data.id", 2); err != nil {
		t.Error(err)
	}
	if err := AssertJSONStringEquals(resp, "data.email", "janet.weaver@reqres.in"); err != nil {
		t.Error(err)
	}

	resp, err = c.GetUserByID(context.Background(), "23")
	if err != nil {
		t.Fatalf("ERROR: Request failed: %v", err)
	}
	if err := AssertStatusCode(resp, http.StatusNotFound); err != nil {
		t.Errorf("Expected non-2xx status not to be an error: %v", err)
	}
	if err := AssertJSONEquals(resp, `{ }`); err != nil {
		t.Error(err)
	}

	if _, err := c.GetUserByID(context.Background(), " "); err == nil {
		t.Error("Expected error on empty id")
	}

	if n := mock.GetCallCountInfo()["GET "+testBaseURL+"/users/2"]; n != 1 {
		t.Errorf("Expected 1 call, got: %d", n)
	}
}

func TestUserClient_CreateDelete(t *testing.T) {
	c, _ := NewUserClient(testConfig())
	mock := mockClient(t, c.BaseClient)

	mock.RegisterResponder(http.MethodPost, testBaseURL+"/users", func(req *http.Request) (*http.Response, error) {
		var in map[string]string
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			return httpmock.NewStringResponse(http.StatusBadRequest, err.Error()), nil
		}
		return httpmock.NewJsonResponse(http.StatusCreated, User{ID: "77", Name: in["name"], Job: in["job"]})
	})
	mock.RegisterResponder(http.MethodDelete, testBaseURL+"/users/77", httpmock.NewStringResponder(http.StatusNoContent, ""))

	resp, err := c.CreateUser(context.Background(), "morpheus", "leader")
	if err != nil {
		t.Fatalf("ERROR: Request failed: %v", err)
	}
	var user User
	if err := resp.Decode(&user); err != nil {
		t.Fatalf("ERROR: Unable to decode: %v", err)
	}
	if user.ID != "77" || user.Name != "morpheus" || user.Job != "leader" {
		t.Errorf("Unexpected user: %+v", user)
	}

	resp, err = c.DeleteUser(context.Background(), user.ID)
	if err != nil || resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204, got: %v (%v)", resp, err)
	}
}

func TestAuthClient_LoginBearer(t *testing.T) {
	c, _ := NewAuthClient(testConfig())
	mock := mockClient(t, c.BaseClient)

	mock.RegisterResponder(http.MethodPost, testBaseURL+"/login", httpmock.NewStringResponder(http.StatusOK, `{"token":"QpwL5tke4Pnpja7X4"}`))
	mock.RegisterResponder(http.MethodGet, testBaseURL+"/me", func(req *http.Request) (*http.Response, error) {
		if req.Header.Get("Authorization") != "Bearer QpwL5tke4Pnpja7X4" {
			return httpmock.NewStringResponse(http.StatusUnauthorized, `{"error":"no token"}`), nil
		}
		return httpmock.NewStringResponse(http.StatusOK, `{"ok":true}`), nil
	})

	resp, err := c.Login(context.Background(), "standard_user", "secret_sauce")
	if err != nil {
		t.Fatalf("ERROR: Login failed: %v", err)
	}
	token, err := Token(resp)
	if err != nil {
		t.Fatalf("ERROR: No token: %v", err)
	}

	c.SetAuthToken(token)
	resp, err = c.Get(context.Background(), "/me")
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Errorf("Expected bearer auth to be sent, got: %v (%v)", resp, err)
	}

	if _, err := Token(&Response{StatusCode: 400, Body: []byte(`{"error":"Missing password"}`)}); err == nil {
		t.Error("Expected error when token is missing")
	}
}

func TestBaseClient_TransportError(t *testing.T) {
	c, _ := NewHealthClient(testConfig())
	mock := mockClient(t, c.BaseClient)
	mock.RegisterResponder(http.MethodGet, testBaseURL+"/", httpmock.NewErrorResponder(errors.New("connection refused")))

	resp, err := c.GetRoot(context.Background())
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Expected transport error, got: %v", err)
	}
	if resp != nil {
		t.Errorf("Expected no response, got: %v", resp)
	}
}

func TestHealthClient_GetRoot(t *testing.T) {
	c, _ := NewHealthClient(testConfig())
	mock := mockClient(t, c.BaseClient)
	mock.RegisterResponder(http.MethodGet, testBaseURL+"/", func(req *http.Request) (*http.Response, error) {
		if req.Header.Get("Accept") != "text/html" {
			return httpmock.NewStringResponse(http.StatusNotAcceptable, ""), nil
		}
		return httpmock.NewStringResponse(http.StatusOK, "<html><title>Swag Labs</title></html>"), nil
	})

	resp, err := c.GetRoot(context.Background())
	if err != nil {
		t.Fatalf("ERROR: Request failed: %v", err)
	}
	if err := AssertBodyContains(resp, "Swag Labs"); err != nil {
		t.Error(err)
	}
	if err := AssertBodyContains(resp, "Checkout"); err == nil {
		t.Error("Expected missing text to fail")
	}
}

func TestAssertions_Nil(t *testing.T) {
	if err := AssertStatusCode(nil, 200); err == nil || err.Error() != "Response should not be null" {
		t.Errorf("Unexpected error: %v", err)
	}
	resp := &Response{StatusCode: 200, Body: []byte(`{"data":{"id":"abc"}}`)}
	if err := AssertJSONIntEquals(resp, "data.missing", 1); err == nil {
		t.Error("Expected missing path to fail")
	}
	if err := AssertJSONIntEquals(resp, "data.id", 1); err == nil {
		t.Error("Expected non-integer value to fail")
	}
	if err := AssertJSONEquals(resp, `{"data":{"id":"xyz"}}`); err == nil || !strings.Contains(err.Error(), "xyz") {
		t.Errorf("Expected diff in error, got: %v", err)
	}
}
