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
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/cpmntech/vulcan/lib/config"
)

// HealthClient checks the application is up
type HealthClient struct {
	*BaseClient
}

// NewHealthClient creates health client from the configuration
func NewHealthClient(cfg *config.Config) (*HealthClient, error) {
	base, err := NewBaseClient(cfg)
	if err != nil {
		return nil, err
	}
	return &HealthClient{BaseClient: base}, nil
}

// GetRoot requests the root page as HTML
func (c *HealthClient) GetRoot(ctx context.Context) (*Response, error) {
	c.logger.Info("Calling GET / for health check")
	return c.GetHTML(ctx, "/")
}

// UsersEndpoint is the users collection path
const UsersEndpoint = "/users/"

// User as it's created by the users endpoint
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Job       string `json:"job"`
	CreatedAt string `json:"createdAt"`
}

// UserClient manages the users
type UserClient struct {
	*BaseClient
}

// NewUserClient creates users client from the configuration
func NewUserClient(cfg *config.Config) (*UserClient, error) {
	base, err := NewBaseClient(cfg)
	if err != nil {
		return nil, err
	}
	return &UserClient{BaseClient: base}, nil
}

func userPath(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New("user id cannot be empty")
	}
	return UsersEndpoint + url.PathEscape(id), nil
}

// GetUserByID requests the user
func (c *UserClient) GetUserByID(ctx context.Context, id string) (*Response, error) {
	path, err := userPath(id)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Requesting user by id", "id", id, "path", path)
	return c.Get(ctx, path)
}

// CreateUser creates the user, the response contains its id
func (c *UserClient) CreateUser(ctx context.Context, name, job string) (*Response, error) {
	c.logger.Info("Creating user", "name", name, "job", job)
	return c.Post(ctx, strings.TrimSuffix(UsersEndpoint, "/"), map[string]string{"name": name, "job": job})
}

// DeleteUser removes the user
func (c *UserClient) DeleteUser(ctx context.Context, id string) (*Response, error) {
	path, err := userPath(id)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Deleting user", "id", id)
	return c.Delete(ctx, path)
}

// AuthClient logs in through the API
type AuthClient struct {
	*BaseClient
}

// NewAuthClient creates auth client from the configuration
func NewAuthClient(cfg *config.Config) (*AuthClient, error) {
	base, err := NewBaseClient(cfg)
	if err != nil {
		return nil, err
	}
	return &AuthClient{BaseClient: base}, nil
}

// Login posts the credentials, the token is in the "token" field of successful response
func (c *AuthClient) Login(ctx context.Context, username, password string) (*Response, error) {
	c.logger.Info("Logging in via API", "username", username)
	return c.Post(ctx, "/login", map[string]string{"username": username, "password": password})
}

// Token extracts the auth token from successful login response
func Token(resp *Response) (string, error) {
	if resp == nil {
		return "", errors.New("response is nil")
	}
	token := resp.JSON("token").String()
	if token == "" {
		return "", fmt.Errorf("no token in response with status %d: %s", resp.StatusCode, resp.String())
	}
	return token, nil
}
