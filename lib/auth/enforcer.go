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
	"embed"
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/cpmntech/vulcan/lib/log"
)

//go:embed model.conf
var modelFS embed.FS

// Objects and actions of the demo application policy
const (
	ObjectShop  = "shop"
	ObjectUsers = "users"

	ActionLogin  = "login"
	ActionRead   = "read"
	ActionCreate = "create"
	ActionDelete = "delete"
)

// DefaultPolicy of the demo application, LOCKED role has no permissions at all
var DefaultPolicy = [][]string{
	{"CUSTOMER", ObjectShop, ActionLogin},
	{"CUSTOMER", ObjectUsers, ActionRead},
	{"CUSTOMER", ObjectUsers, ActionCreate},
	{string(RoleAdministrator), "*", "*"},
}

// DefaultGroups put the roles into the policy groups
var DefaultGroups = [][]string{
	{string(RoleStandard), "CUSTOMER"},
	{string(RoleProblem), "CUSTOMER"},
	{string(RolePerformance), "CUSTOMER"},
}

// Enforcer decides what the roles are allowed to do
type Enforcer struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
}

// NewEnforcer creates enforcer with the embedded model and the default policy
func NewEnforcer() (*Enforcer, error) {
	modelText, err := modelFS.ReadFile("model.conf")
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	m, err := model.NewModelFromString(string(modelText))
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}

	e := &Enforcer{enforcer: enforcer}
	for _, p := range DefaultPolicy {
		if err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, err
		}
	}
	for _, g := range DefaultGroups {
		if err := e.AddRoleToGroup(g[0], g[1]); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Allowed checks if the role can perform the action on the object
func (e *Enforcer) Allowed(role UserRole, obj, act string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	allowed, err := e.enforcer.Enforce(string(role), obj, act)
	if err != nil {
		log.WithFunc("auth", "Allowed").Error("Failed to check permission", "role", role, "obj", obj, "act", act, "err", err)
		return false
	}
	return allowed
}

// AddPolicy adds a new policy rule
func (e *Enforcer) AddPolicy(sub, obj, act string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.AddPolicy(sub, obj, act); err != nil {
		return fmt.Errorf("failed to add policy: %w", err)
	}
	return nil
}

// RemovePolicy removes a policy rule
func (e *Enforcer) RemovePolicy(sub, obj, act string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.RemovePolicy(sub, obj, act); err != nil {
		return fmt.Errorf("failed to remove policy: %w", err)
	}
	return nil
}

// AddRoleToGroup makes the role inherit permissions of the group
func (e *Enforcer) AddRoleToGroup(role, group string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.AddGroupingPolicy(role, group); err != nil {
		return fmt.Errorf("failed to add role to group: %w", err)
	}
	return nil
}
