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

// Package auth holds the test users and their roles
package auth

import (
	"errors"
	"fmt"
	"strings"
)

// UserRole is a logical role of the application user, independent of how the login happens
type UserRole string

const (
	RoleStandard      UserRole = "STANDARD"
	RoleAdministrator UserRole = "ADMINISTRATOR"
	RoleLocked        UserRole = "LOCKED"
	RoleProblem       UserRole = "PROBLEM"
	RolePerformance   UserRole = "PERFORMANCE"
)

// ErrUnknownRole is returned when role name doesn't match any of the roles
var ErrUnknownRole = errors.New("unknown user role")

// Roles lists all the known roles
var Roles = []UserRole{RoleStandard, RoleAdministrator, RoleLocked, RoleProblem, RolePerformance}

// RoleFrom converts the name into a role, case and surrounding spaces are ignored
func RoleFrom(name string) (UserRole, error) {
	role := UserRole(strings.ToUpper(strings.TrimSpace(name)))
	for _, r := range Roles {
		if r == role {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, name)
}

func (r UserRole) String() string {
	return string(r)
}
