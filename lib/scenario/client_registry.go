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
	"fmt"
	"reflect"
	"sync"
)

// APIClientRegistry keeps one API client per type for the scenario
type APIClientRegistry struct {
	mu      sync.Mutex
	clients map[reflect.Type]any
}

// NewAPIClientRegistry creates empty registry
func NewAPIClientRegistry() *APIClientRegistry {
	return &APIClientRegistry{clients: make(map[reflect.Type]any)}
}

// ClientFor returns the client of type T, it's created by supplier on the first request
func ClientFor[T any](r *APIClientRegistry, supplier func() (T, error)) (T, error) {
	var zero T
	if supplier == nil {
		return zero, fmt.Errorf("supplier for %s cannot be nil", reflect.TypeFor[T]())
	}

	typ := reflect.TypeFor[T]()

	if client, found, err := lookupClient[T](r, typ); found || err != nil {
		return client, err
	}

	// Supplier runs unlocked, it may request other clients of the registry
	created, err := supplier()
	if err != nil {
		return zero, fmt.Errorf("unable to create %s: %w", typ, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.clients[typ]; ok {
		// Concurrent request stored its client first
		return castClient[T](existing, typ)
	}
	r.clients[typ] = created
	return created, nil
}

func lookupClient[T any](r *APIClientRegistry, typ reflect.Type) (T, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.clients[typ]
	if !ok {
		var zero T
		return zero, false, nil
	}
	client, err := castClient[T](existing, typ)
	return client, true, err
}

func castClient[T any](existing any, typ reflect.Type) (T, error) {
	client, ok := existing.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("APIClientRegistry entry for %s is not of the expected type", typ)
	}
	return client, nil
}

// Clear drops all the clients
func (r *APIClientRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients = make(map[reflect.Type]any)
}

// Size returns amount of created clients
func (r *APIClientRegistry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}
