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
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cpmntech/vulcan/lib/config"
)

func TestRoleFrom(t *testing.T) {
	tests := []struct {
		name    string
		expect  UserRole
		wantErr bool
	}{
		{"standard", RoleStandard, false},
		{"  Administrator ", RoleAdministrator, false},
		{"LOCKED", RoleLocked, false},
		{"performance", RolePerformance, false},
		{"guest", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := RoleFrom(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownRole) {
					t.Errorf("Expected ErrUnknownRole, got: %v", err)
				}
				return
			}
			if err != nil || role != tt.expect {
				t.Errorf("Expected %s, got: %s (%v)", tt.expect, role, err)
			}
		})
	}
}

func TestRegistry_ByRole(t *testing.T) {
	r := NewRegistry(Fixtures()...)

	c, err := r.ByRole("standard")
	if err != nil {
		t.Fatalf("ERROR: Unable to find standard user: %v", err)
	}
	if c.Username != "standard_user" || c.Password != "secret_sauce" {
		t.Errorf("Unexpected standard credentials: %s", c)
	}

	if c, _ := r.ByRole("locked"); c.Username != "locked_out_user" {
		t.Errorf("Expected locked_out_user, got: %s", c.Username)
	}

	if _, err := r.ByRole("guest"); !errors.Is(err, ErrUnknownRole) {
		t.Errorf("Expected ErrUnknownRole, got: %v", err)
	}

	empty := NewRegistry(Credentials{Role: RoleStandard, Username: "u"})
	_, err = empty.ByRole("problem")
	if err == nil || !strings.Contains(err.Error(), "No credentials found for role: problem") {
		t.Errorf("Expected no credentials error, got: %v", err)
	}
}

func TestCredentials_Masked(t *testing.T) {
	c := Fixtures()[0]
	if strings.Contains(c.String(), c.Password) {
		t.Errorf("Password leaked by String: %s", c)
	}

	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("login", "user", c)
	if strings.Contains(buf.String(), c.Password) {
		t.Errorf("Password leaked by LogValue: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "user.username=standard_user") {
		t.Errorf("Expected username in log, got: %s", buf.String())
	}
}

func TestRegistry_ApplyEnv(t *testing.T) {
	t.Setenv("VULCAN_STANDARD_PASSWORD", "from-env")
	t.Setenv("VULCAN_PROBLEM_USERNAME", "env_problem")

	r := NewRegistry(Fixtures()...)
	if err := r.ApplyEnv(); err != nil {
		t.Fatalf("ERROR: Unable to apply env: %v", err)
	}

	if c, _ := r.ByRole("standard"); c.Password != "from-env" || c.Username != "standard_user" {
		t.Errorf("Expected password override only, got: %s / %q", c.Username, c.Password)
	}
	if c, _ := r.ByRole("problem"); c.Username != "env_problem" || c.Password != "secret_sauce" {
		t.Errorf("Expected username override only, got: %s", c.Username)
	}
}

func TestRegistry_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yaml")
	data := "users:\n  - role: administrator\n    username: root\n    password: toor\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("ERROR: Unable to write file: %v", err)
	}

	r := NewRegistry(Fixtures()...)
	if err := r.LoadFile(path); err != nil {
		t.Fatalf("ERROR: Unable to load file: %v", err)
	}
	if c, _ := r.ByRole("ADMINISTRATOR"); c.Username != "root" || c.Password != "toor" {
		t.Errorf("Expected file credentials, got: %s", c)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(bad, []byte("users:\n  - role: wizard\n"), 0o600)
	if err := r.LoadFile(bad); !errors.Is(err, ErrUnknownRole) {
		t.Errorf("Expected ErrUnknownRole for unknown role in file, got: %v", err)
	}
}

func TestToken_IssueParse(t *testing.T) {
	secret := []byte("test-secret")
	c := Fixtures()[0]

	token, err := IssueToken(secret, c, time.Minute)
	if err != nil {
		t.Fatalf("ERROR: Unable to issue token: %v", err)
	}

	claims, err := ParseTokenClaims(token)
	if err != nil {
		t.Fatalf("ERROR: Unable to parse token: %v", err)
	}
	if claims.Subject != "standard_user" || claims.Role != RoleStandard || claims.ID == "" {
		t.Errorf("Unexpected claims: %+v", claims)
	}

	if _, err := VerifyToken(secret, token); err != nil {
		t.Errorf("Expected token to be valid, got: %v", err)
	}
	if _, err := VerifyToken([]byte("other"), token); err == nil {
		t.Error("Expected verification to fail with other secret")
	}

	expired, _ := IssueToken(secret, c, -time.Minute)
	if _, err := VerifyToken(secret, expired); err == nil {
		t.Error("Expected expired token to be rejected")
	}

	if _, err := ParseTokenClaims("not-a-token"); err == nil {
		t.Error("Expected error on garbage token")
	}
}

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yaml")
	os.WriteFile(path, []byte("users:\n  - role: problem\n    username: qa_problem\n    password: qa\n"), 0o600)
	t.Setenv("VULCAN_PROBLEM_PASSWORD", "from-env")

	cfg := config.New()
	cfg.Set(config.AuthCredentialsFile, path)
	r, err := LoadRegistry(cfg)
	if err != nil {
		t.Fatalf("ERROR: Unable to load registry: %v", err)
	}
	if c, _ := r.ByRole("problem"); c.Username != "qa_problem" || c.Password != "from-env" {
		t.Errorf("Expected file user with env password, got: %s / %q", c.Username, c.Password)
	}
	if _, ok := r.ByUsername("standard_user"); !ok {
		t.Error("Expected fixtures to stay in registry")
	}

	cfg.Set(config.AuthCredentialsFile, filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := LoadRegistry(cfg); err == nil {
		t.Error("Expected missing credentials file to fail")
	}
}

func TestEnforcer(t *testing.T) {
	e, err := NewEnforcer()
	if err != nil {
		t.Fatalf("ERROR: Unable to create enforcer: %v", err)
	}

	tests := []struct {
		role   UserRole
		obj    string
		act    string
		expect bool
	}{
		{RoleStandard, ObjectShop, ActionLogin, true},
		{RolePerformance, ObjectUsers, ActionCreate, true},
		{RoleProblem, ObjectUsers, ActionDelete, false},
		{RoleAdministrator, ObjectUsers, ActionDelete, true},
		{RoleLocked, ObjectShop, ActionLogin, false},
		{RoleLocked, ObjectUsers, ActionRead, false},
	}
	for _, tt := range tests {
		if got := e.Allowed(tt.role, tt.obj, tt.act); got != tt.expect {
			t.Errorf("Expected %s %s %s to be %v, got: %v", tt.role, tt.act, tt.obj, tt.expect, got)
		}
	}

	if err := e.AddPolicy(string(RoleLocked), ObjectShop, ActionLogin); err != nil {
		t.Fatalf("ERROR: Unable to add policy: %v", err)
	}
	if !e.Allowed(RoleLocked, ObjectShop, ActionLogin) {
		t.Error("Expected added policy to allow login")
	}
	e.RemovePolicy(string(RoleLocked), ObjectShop, ActionLogin)
	if e.Allowed(RoleLocked, ObjectShop, ActionLogin) {
		t.Error("Expected removed policy to deny login")
	}
}

// The default registry is loaded once per process, so it's checked by this test only
func TestDefaultRegistry_ByRole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yaml")
	data := "users:\n  - role: administrator\n    username: root\n    password: toor\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("ERROR: Unable to write file: %v", err)
	}
	t.Setenv("VULCAN_LOCKED_PASSWORD", "from-env")

	cfg := config.New()
	cfg.Set(config.AuthCredentialsFile, path)
	config.SetInstance(cfg)

	if c, err := ByRole("administrator"); err != nil || c.Username != "root" || c.Password != "toor" {
		t.Errorf("Expected file credentials, got: %s (%v)", c, err)
	}
	if c, err := ByRole("locked"); err != nil || c.Password != "from-env" {
		t.Errorf("Expected env password of locked user, got: %v", err)
	}
	if _, err := ByRole("wizard"); !errors.Is(err, ErrUnknownRole) {
		t.Errorf("Expected ErrUnknownRole, got: %v", err)
	}

	first, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("ERROR: Unable to get default registry: %v", err)
	}
	if second, _ := DefaultRegistry(); first != second {
		t.Error("Expected default registry to be created once")
	}
}
