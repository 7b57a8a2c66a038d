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

package auth

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/cpmntech/vulcan/lib/config"
	"github.com/cpmntech/vulcan/lib/log"
)

// Credentials of the test user, the password is never printed
type Credentials struct {
	Role     UserRole `yaml:"role"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
}

// String implements fmt.Stringer
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{role=%s, username=%s, password=%s}", c.Role, c.Username, log.Masked)
}

// LogValue implements slog.LogValuer
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("role", string(c.Role)),
		slog.String("username", c.Username),
	)
}

// Fixtures are the users available on the demo application
func Fixtures() []Credentials {
	return []Credentials{
		{Role: RoleStandard, Username: "standard_user", Password: "secret_sauce"},
		{Role: RoleAdministrator, Username: "admin_user", Password: "secret_sauce"},
		{Role: RoleLocked, Username: "locked_out_user", Password: "secret_sauce"},
		{Role: RoleProblem, Username: "problem_user", Password: "secret_sauce"},
		{Role: RolePerformance, Username: "performance_glitch_user", Password: "secret_sauce"},
	}
}

// envOverrides are read from VULCAN_<ROLE>_USERNAME and VULCAN_<ROLE>_PASSWORD
type envOverrides struct {
	StandardUsername      string `env:"STANDARD_USERNAME"`
	StandardPassword      string `env:"STANDARD_PASSWORD"`
	AdministratorUsername string `env:"ADMINISTRATOR_USERNAME"`
	AdministratorPassword string `env:"ADMINISTRATOR_PASSWORD"`
	LockedUsername        string `env:"LOCKED_USERNAME"`
	LockedPassword        string `env:"LOCKED_PASSWORD"`
	ProblemUsername       string `env:"PROBLEM_USERNAME"`
	ProblemPassword       string `env:"PROBLEM_PASSWORD"`
	PerformanceUsername   string `env:"PERFORMANCE_USERNAME"`
	PerformancePassword   string `env:"PERFORMANCE_PASSWORD"`
}

func (o *envOverrides) forRole(role UserRole) (username, password string) {
	switch role {
	case RoleStandard:
		return o.StandardUsername, o.StandardPassword
	case RoleAdministrator:
		return o.AdministratorUsername, o.AdministratorPassword
	case RoleLocked:
		return o.LockedUsername, o.LockedPassword
	case RoleProblem:
		return o.ProblemUsername, o.ProblemPassword
	case RolePerformance:
		return o.PerformanceUsername, o.PerformancePassword
	}
	return "", ""
}

// credentialsFile is the format of auth.credentialsFile
type credentialsFile struct {
	Users []Credentials `yaml:"users"`
}

// Registry of the test users, the first entry of a role wins
type Registry struct {
	mu      sync.RWMutex
	entries []Credentials
}

// NewRegistry creates registry with the given entries
func NewRegistry(entries ...Credentials) *Registry {
	return &Registry{entries: append([]Credentials{}, entries...)}
}

var (
	defaultRegistry     *Registry
	defaultRegistryErr  error
	defaultRegistryOnce sync.Once
)

// DefaultRegistry contains fixtures updated by the credentials file and env overrides
func DefaultRegistry() (*Registry, error) {
	defaultRegistryOnce.Do(func() {
		defaultRegistry, defaultRegistryErr = LoadRegistry(config.Instance())
	})
	return defaultRegistry, defaultRegistryErr
}

// LoadRegistry builds registry of the fixtures, auth.credentialsFile and env overrides
func LoadRegistry(cfg *config.Config) (*Registry, error) {
	r := NewRegistry(Fixtures()...)
	if path := cfg.GetDefault(config.AuthCredentialsFile, ""); path != "" {
		if err := r.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := r.ApplyEnv(); err != nil {
		return nil, err
	}
	return r, nil
}

// ByRole finds credentials for the role name in the default registry
func ByRole(roleName string) (Credentials, error) {
	r, err := DefaultRegistry()
	if err != nil {
		return Credentials{}, err
	}
	return r.ByRole(roleName)
}

// ByRole returns the first credentials with the role
func (r *Registry) ByRole(roleName string) (Credentials, error) {
	role, err := RoleFrom(roleName)
	if err != nil {
		return Credentials{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.entries {
		if c.Role == role {
			return c, nil
		}
	}
	return Credentials{}, fmt.Errorf("No credentials found for role: %s", roleName)
}

// Put replaces credentials of the same role or adds the new ones
func (r *Registry) Put(c Credentials) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		if r.entries[i].Role == c.Role {
			r.entries[i] = c
			return
		}
	}
	r.entries = append(r.entries, c)
}

// LoadFile reads users from the YAML file
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read credentials file: %w", err)
	}
	var f credentialsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("unable to parse credentials file %q: %w", path, err)
	}
	for _, c := range f.Users {
		role, err := RoleFrom(string(c.Role))
		if err != nil {
			return fmt.Errorf("credentials file %q: %w", path, err)
		}
		c.Role = role
		r.Put(c)
	}
	log.WithFunc("auth", "LoadFile").Debug("Credentials loaded", "path", path, "users", len(f.Users))
	return nil
}

// ApplyEnv overrides usernames and passwords from VULCAN_<ROLE>_USERNAME/PASSWORD env
func (r *Registry) ApplyEnv() error {
	var o envOverrides
	if err := env.ParseWithOptions(&o, env.Options{Prefix: config.EnvPrefix + "_"}); err != nil {
		return fmt.Errorf("unable to parse credentials env: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		username, password := o.forRole(r.entries[i].Role)
		if username != "" {
			r.entries[i].Username = username
		}
		if password != "" {
			r.entries[i].Password = password
		}
	}
	return nil
}

// ByUsername looks up the credentials of the user
func (r *Registry) ByUsername(username string) (Credentials, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.entries {
		if c.Username == username {
			return c, true
		}
	}
	return Credentials{}, false
}

// All returns copy of the registry entries
func (r *Registry) All() []Credentials {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Credentials{}, r.entries...)
}
