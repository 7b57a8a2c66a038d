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

package scenario

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cpmntech/vulcan/lib/log"
)

// CleanupFunc removes the data created by the scenario
type CleanupFunc func(ctx context.Context) error

type cleanupAction struct {
	name string
	fn   CleanupFunc
}

// DataRegistry collects cleanup actions of the test data created during the scenario
type DataRegistry struct {
	mu      sync.Mutex
	actions []cleanupAction
}

// NewDataRegistry creates empty registry
func NewDataRegistry() *DataRegistry {
	return &DataRegistry{}
}

// RegisterCleanup adds the action to be executed on scenario teardown
func (r *DataRegistry) RegisterCleanup(name string, fn CleanupFunc) error {
	if fn == nil {
		return fmt.Errorf("cleanup action %q cannot be nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, cleanupAction{name: name, fn: fn})
	return nil
}

// CleanupAll executes the registered actions in reverse order of registration
// Failed actions are logged and don't prevent the others from running, their
// errors are joined into the returned error. The registry is empty afterwards.
func (r *DataRegistry) CleanupAll(ctx context.Context) (executed int, err error) {
	logger := log.WithFunc("scenario", "CleanupAll")

	var errs []error
	for {
		action, ok := r.pop()
		if !ok {
			break
		}
		executed++
		logger.Debug("Running cleanup action", "name", action.name)
		if aerr := runCleanup(ctx, action); aerr != nil {
			logger.Error("Cleanup action failed", "name", action.name, "err", aerr)
			errs = append(errs, aerr)
		}
	}
	return executed, errors.Join(errs...)
}

func (r *DataRegistry) pop() (cleanupAction, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.actions) == 0 {
		return cleanupAction{}, false
	}
	last := r.actions[len(r.actions)-1]
	r.actions = r.actions[:len(r.actions)-1]
	return last, true
}

func runCleanup(ctx context.Context, action cleanupAction) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("cleanup %q panicked: %v", action.name, rec)
		}
	}()
	if err = action.fn(ctx); err != nil {
		return fmt.Errorf("cleanup %q: %w", action.name, err)
	}
	return nil
}

// IsEmpty tells if there is nothing to clean up
func (r *DataRegistry) IsEmpty() bool {
	return r.Len() == 0
}

// Len returns amount of registered actions
func (r *DataRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.actions)
}
