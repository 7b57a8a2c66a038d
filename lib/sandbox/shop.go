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
	"html/template"
	"net/http"

	"github.com/cpmntech/vulcan/lib/auth"
	"github.com/cpmntech/vulcan/lib/log"
)

// Messages shown in the error banner of the login form
const (
	MsgUsernameRequired = "Epic sadface: Username is required"
	MsgPasswordRequired = "Epic sadface: Password is required"
	MsgNoMatch          = "Epic sadface: Username and password do not match any user in this service"
	MsgLockedOut        = "Epic sadface: Sorry, this user has been locked out."
	MsgLoginRequired    = "Epic sadface: You can only access '/inventory.html' when you are logged in."
)

var loginTmpl = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Swag Labs</title></head>
<body>
<div class="login_logo">Swag Labs</div>
<form id="login_form" method="post" action="/">
  <input id="user-name" name="user-name" type="text" placeholder="Username" data-test="username" value="{{.Username}}">
  <input id="password" name="password" type="password" placeholder="Password" data-test="password">
  {{if .Error}}<h3 data-test="error">{{.Error}}</h3>{{end}}
  <input id="login-button" type="submit" value="Login" data-test="login-button">
</form>
</body>
</html>
`))

var inventoryTmpl = template.Must(template.New("inventory").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Swag Labs</title></head>
<body>
<div class="header_secondary_container"><span class="title" data-test="title">Products</span></div>
<a id="logout_sidebar_link" href="/logout">Logout</a>
<div id="inventory_container">
  <div class="inventory_list">
  {{range .Items}}<div class="inventory_item"><div class="inventory_item_name">{{.}}</div></div>
  {{end}}</div>
</div>
<div class="footer">Logged in as {{.Username}}</div>
</body>
</html>
`))

var inventoryItems = []string{
	"Sauce Labs Backpack",
	"Sauce Labs Bike Light",
	"Sauce Labs Bolt T-Shirt",
	"Sauce Labs Fleece Jacket",
	"Sauce Labs Onesie",
	"Test.allTheThings() T-Shirt (Red)",
}

type loginView struct {
	Username string
	Error    string
}

func (s *Sandbox) loginPage(w http.ResponseWriter, r *http.Request) {
	view := loginView{}
	if r.URL.Query().Get("redirect") != "" {
		view.Error = MsgLoginRequired
	}
	s.render(w, http.StatusOK, loginTmpl, view)
}

func (s *Sandbox) loginSubmit(w http.ResponseWriter, r *http.Request) {
	logger := log.WithFunc("sandbox", "loginSubmit")
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, loginTmpl, loginView{Error: MsgNoMatch})
		return
	}
	username, password := r.PostForm.Get("user-name"), r.PostForm.Get("password")

	c, msg := s.authenticate(username, password)
	if msg != "" {
		logger.Debug("Login rejected", "username", username, "reason", msg)
		s.render(w, http.StatusOK, loginTmpl, loginView{Username: username, Error: msg})
		return
	}

	logger.Debug("Login accepted", "user", c)
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: c.Username, Path: "/", HttpOnly: true})
	http.Redirect(w, r, "/inventory.html", http.StatusSeeOther)
}

func (s *Sandbox) inventoryPage(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		http.Redirect(w, r, "/?redirect=inventory", http.StatusSeeOther)
		return
	}
	if _, ok := s.accounts[cookie.Value]; !ok {
		http.Redirect(w, r, "/?redirect=inventory", http.StatusSeeOther)
		return
	}
	s.render(w, http.StatusOK, inventoryTmpl, struct {
		Username string
		Items    []string
	}{cookie.Value, inventoryItems})
}

func (s *Sandbox) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// authenticate returns the user or the message describing why login is not possible
func (s *Sandbox) authenticate(username, password string) (auth.Credentials, string) {
	switch {
	case username == "":
		return auth.Credentials{}, MsgUsernameRequired
	case password == "":
		return auth.Credentials{}, MsgPasswordRequired
	}
	a, ok := s.accounts[username]
	if !ok || !a.hash.IsEqual(password) {
		return auth.Credentials{}, MsgNoMatch
	}
	c := a.creds
	if !s.policy.Allowed(c.Role, auth.ObjectShop, auth.ActionLogin) {
		return auth.Credentials{}, MsgLockedOut
	}
	return c, ""
}

func (*Sandbox) render(w http.ResponseWriter, status int, tmpl *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		log.WithFunc("sandbox", "render").Error("Unable to render page", "template", tmpl.Name(), "err", err)
	}
}
