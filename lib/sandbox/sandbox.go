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

// Package sandbox is a small local copy of the demo shop and its REST API
//
// The framework runs its own feature suite and the browser tests against it,
// it's also exposed as "vulcan sandbox" to try the scenarios offline.
package sandbox

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cpmntech/vulcan/lib/auth"
	"github.com/cpmntech/vulcan/lib/crypt"
	"github.com/cpmntech/vulcan/lib/log"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second

	// SessionCookie keeps the logged in username, like the real shop does
	SessionCookie = "session-username"

	tokenTTL = time.Hour
)

// Sandbox serves the login and inventory pages and the users API
type Sandbox struct {
	router   chi.Router
	accounts map[string]account
	policy   *auth.Enforcer
	secret   []byte

	mu     sync.Mutex
	users  map[string]apiUser
	nextID int
}

// account is the shop user, only the password hash is kept
type account struct {
	creds auth.Credentials
	hash  crypt.Hash
}

func newAccounts(creds *auth.Registry) map[string]account {
	out := make(map[string]account)
	for _, c := range creds.All() {
		hash := crypt.NewHash(c.Password, nil)
		c.Password = ""
		out[c.Username] = account{creds: c, hash: hash}
	}
	return out
}

// New creates sandbox accepting the given users
func New(creds *auth.Registry) (*Sandbox, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("unable to generate token secret: %w", err)
	}

	policy, err := auth.NewEnforcer()
	if err != nil {
		return nil, fmt.Errorf("unable to create policy: %w", err)
	}

	s := &Sandbox{
		router:   chi.NewRouter(),
		accounts: newAccounts(creds),
		policy:   policy,
		secret:   secret,
		users:    seedUsers(),
		nextID:   100,
	}
	s.routes()
	return s, nil
}

func (s *Sandbox) routes() {
	r := s.router
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	// Shop
	r.Get("/", s.loginPage)
	r.Post("/", s.loginSubmit)
	r.Get("/inventory.html", s.inventoryPage)
	r.Get("/logout", s.logout)

	// API
	r.Post("/login", s.apiLogin)
	r.Route("/users", func(r chi.Router) {
		r.Use(s.authorizeUsers)
		r.Post("/", s.createUser)
		r.Get("/{id}", s.getUser)
		r.Delete("/{id}", s.deleteUser)
	})
}

// Policy of the roles, tests can change it
func (s *Sandbox) Policy() *auth.Enforcer {
	return s.policy
}

// Secret used to sign the API tokens
func (s *Sandbox) Secret() []byte {
	return s.secret
}

// ServeHTTP implements http.Handler
func (s *Sandbox) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves the sandbox on the address until the context is done
func (s *Sandbox) Run(ctx context.Context, addr string) error {
	logger := log.WithFunc("sandbox", "Run")
	srv := &http.Server{Addr: addr, Handler: s, ReadHeaderTimeout: readHeaderTimeout}

	cErr := make(chan error, 1)
	go func() {
		defer close(cErr)
		logger.Info("Serving sandbox", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed shutting down sandbox: %w", err)
		}
		logger.Info("Sandbox stopped")
		return nil
	case err := <-cErr:
		if err == nil {
			return nil
		}
		return fmt.Errorf("failed serving sandbox: %w", err)
	}
}

// requestLogger writes one debug line per request
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.WithFunc("sandbox", "request").Debug("Request served",
			"method", r.Method, "path", r.URL.Path, "status", ww.Status(), "duration", time.Since(start))
	})
}
