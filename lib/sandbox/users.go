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

package sandbox

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cpmntech/vulcan/lib/auth"
	"github.com/cpmntech/vulcan/lib/log"
)

type apiUser struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Name      string `json:"name,omitempty"`
	Job       string `json:"job,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

func seedUsers() map[string]apiUser {
	names := [][2]string{
		{"George", "Bluth"}, {"Janet", "Weaver"}, {"Emma", "Wong"}, {"Eve", "Holt"},
		{"Charles", "Morris"}, {"Tracey", "Ramos"}, {"Michael", "Lawson"}, {"Lindsay", "Ferguson"},
		{"Tobias", "Funke"}, {"Byron", "Fields"}, {"George", "Edwards"}, {"Rachel", "Howell"},
	}
	users := make(map[string]apiUser, len(names))
	for i, n := range names {
		id := i + 1
		users[strconv.Itoa(id)] = apiUser{
			ID:        id,
			Email:     strings.ToLower(n[0]+"."+n[1]) + "@reqres.in",
			FirstName: n[0],
			LastName:  n[1],
		}
	}
	return users
}

func (s *Sandbox) getUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	u, ok := s.users[id]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": u})
}

type createUserRequest struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

func (s *Sandbox) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.users[strconv.Itoa(id)] = apiUser{ID: id, Name: req.Name, Job: req.Job}
	s.mu.Unlock()

	log.WithFunc("sandbox", "createUser").Debug("User created", "id", id, "name", req.Name)
	writeJSON(w, http.StatusCreated, map[string]string{
		"id":        strconv.Itoa(id),
		"name":      req.Name,
		"job":       req.Job,
		"createdAt": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// deleteUser always succeeds, like the public service it mimics
func (s *Sandbox) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	delete(s.users, id)
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Sandbox) apiLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	switch {
	case req.Username == "":
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing username"})
		return
	case req.Password == "":
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing password"})
		return
	}

	c, msg := s.authenticate(req.Username, req.Password)
	if msg != "" {
		status := http.StatusUnauthorized
		if msg == MsgLockedOut {
			status = http.StatusForbidden
		}
		writeJSON(w, status, map[string]string{"error": strings.TrimPrefix(msg, "Epic sadface: ")})
		return
	}

	token, err := auth.IssueToken(s.secret, c, tokenTTL)
	if err != nil {
		log.WithFunc("sandbox", "apiLogin").Error("Unable to issue token", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Unable to issue token"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

var usersActions = map[string]string{
	http.MethodGet:    auth.ActionRead,
	http.MethodPost:   auth.ActionCreate,
	http.MethodDelete: auth.ActionDelete,
}

// authorizeUsers checks the role of bearer token, anonymous requests are served like on the public API
func (s *Sandbox) authorizeUsers(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unsupported authorization"})
			return
		}
		claims, err := auth.VerifyToken(s.secret, token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
			return
		}
		if !s.policy.Allowed(claims.Role, auth.ObjectUsers, usersActions[r.Method]) {
			log.WithFunc("sandbox", "authorizeUsers").Debug("Request denied", "user", claims.Subject, "role", claims.Role, "method", r.Method)
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "Forbidden"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithFunc("sandbox", "writeJSON").Error("Unable to write response", "err", err)
	}
}
