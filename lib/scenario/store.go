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

// Package scenario keeps the state of a single running scenario
//
// Each scenario gets its own Store which travels in the context.Context passed
// to the hooks and the steps, so concurrently executed scenarios never see each
// other's data.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var (
	// ErrKeyNotFound is returned when required key is not in the store
	ErrKeyNotFound = errors.New("ScenarioContext key not found")
	// ErrTypeMismatch is returned when the stored value has another type
	ErrTypeMismatch = errors.New("ScenarioContext value has unexpected type")
	// ErrNoStore is returned when the context doesn't carry a scenario store
	ErrNoStore = errors.New("no scenario store in context")
)

// Store is a scenario-scoped key/value storage
type Store struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewStore creates empty store
func NewStore() *Store {
	return &Store{values: make(map[string]any)}
}

type storeKey struct{}

// IntoContext embeds the store into the given context
func IntoContext(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, storeKey{}, s)
}

// FromContext extracts the store of the current scenario
func FromContext(ctx context.Context) (*Store, error) {
	if ctx != nil {
		if s, ok := ctx.Value(storeKey{}).(*Store); ok && s != nil {
			return s, nil
		}
	}
	return nil, ErrNoStore
}

// Put stores the value, existing value is replaced
func (s *Store) Put(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Contains checks if the key exists for the current scenario
func (s *Store) Contains(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return ok
}

// Remove deletes the key
func (s *Store) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// Clear removes all the values, the store stays usable
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]any)
}

// Len returns amount of stored keys
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

func (s *Store) lookup(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok && v != nil
}

func typeMismatch[T any](key string, value any) error {
	return fmt.Errorf("%w: key '%s' is %T, not of type %s", ErrTypeMismatch, key, value, reflect.TypeFor[T]())
}

// Get returns the required value of type T
func Get[T any](s *Store, key string) (T, error) {
	var zero T
	v, ok := s.lookup(key)
	if !ok {
		return zero, fmt.Errorf("%w '%s'", ErrKeyNotFound, key)
	}
	t, ok := v.(T)
	if !ok {
		return zero, typeMismatch[T](key, v)
	}
	return t, nil
}

// GetOptional returns the value of type T, found is false when the key is missing
func GetOptional[T any](s *Store, key string) (value T, found bool, err error) {
	v, ok := s.lookup(key)
	if !ok {
		return value, false, nil
	}
	t, ok := v.(T)
	if !ok {
		return value, true, typeMismatch[T](key, v)
	}
	return t, true, nil
}

// GetOrCreate returns the value of type T, when it's missing the supplier result is stored and returned
func GetOrCreate[T any](s *Store, key string, supplier func() T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.values[key]; ok && v != nil {
		t, ok := v.(T)
		if !ok {
			return t, typeMismatch[T](key, v)
		}
		return t, nil
	}
	created := supplier()
	s.values[key] = created
	return created, nil
}
