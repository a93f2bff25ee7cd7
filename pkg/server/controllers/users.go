/* Copyright 2025 NoteBazaar Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package controllers

import (
	"net/http"

	"github.com/notebazaar/notebazaar/pkg/server/app"
	"github.com/notebazaar/notebazaar/pkg/server/context"
	"github.com/notebazaar/notebazaar/pkg/server/log"
	"github.com/notebazaar/notebazaar/pkg/server/middleware"
	"github.com/notebazaar/notebazaar/pkg/server/presenters"
	"github.com/pkg/errors"
)

// NewUsers creates a new Users controller
func NewUsers(app *app.App) *Users {
	return &Users{
		app: app,
	}
}

// Users is a user controller
type Users struct {
	app *app.App
}

// RegistrationForm is the form data for registering
type RegistrationForm struct {
	Email                string `json:"email" schema:"email"`
	Password             string `json:"password" schema:"password"`
	PasswordConfirmation string `json:"password_confirmation" schema:"password_confirmation"`
	Name                 string `json:"name" schema:"name"`
	Role                 string `json:"role" schema:"role"`
}

// Create handles POST /register
func (u *Users) Create(w http.ResponseWriter, r *http.Request) {
	var form RegistrationForm
	if err := parseRequestData(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	user, err := u.app.CreateUser(app.CreateUserParams{
		Email:                form.Email,
		Password:             form.Password,
		PasswordConfirmation: form.PasswordConfirmation,
		Name:                 form.Name,
		Role:                 form.Role,
	})
	if err != nil {
		handleJSONError(w, err, "creating user")
		return
	}

	session, err := u.app.SignIn(&user)
	if err != nil {
		handleJSONError(w, err, "signing in a user")
		return
	}

	if err := u.app.SendWelcomeEmail(form.Email); err != nil {
		log.ErrorWrap(err, "sending welcome email")
	}

	setSessionCookie(w, session.Key, session.ExpiresAt)
	respondJSON(w, http.StatusCreated, struct {
		Key       string          `json:"key"`
		ExpiresAt int64           `json:"expires_at"`
		User      presenters.User `json:"user"`
	}{
		Key:       session.Key,
		ExpiresAt: session.ExpiresAt.Unix(),
		User:      presenters.PresentUser(user),
	})
}

// SigninForm is the form data for signing in
type SigninForm struct {
	Email    string `json:"email" schema:"email"`
	Password string `json:"password" schema:"password"`
}

// Login handles POST /signin
func (u *Users) Login(w http.ResponseWriter, r *http.Request) {
	var form SigninForm
	if err := parseRequestData(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	if form.Email == "" || form.Password == "" {
		handleJSONError(w, app.ErrLoginInvalid, "missing credentials")
		return
	}

	user, err := u.app.Authenticate(form.Email, form.Password)
	if err != nil {
		// do not reveal whether the account exists
		if errors.Cause(err) == app.ErrNotFound {
			err = app.ErrLoginInvalid
		}

		handleJSONError(w, err, "authenticating user")
		return
	}

	session, err := u.app.SignIn(user)
	if err != nil {
		handleJSONError(w, err, "signing in a user")
		return
	}

	setSessionCookie(w, session.Key, session.ExpiresAt)
	respondJSON(w, http.StatusOK, struct {
		Key       string          `json:"key"`
		ExpiresAt int64           `json:"expires_at"`
		User      presenters.User `json:"user"`
	}{
		Key:       session.Key,
		ExpiresAt: session.ExpiresAt.Unix(),
		User:      presenters.PresentUser(*user),
	})
}

// Logout handles POST /signout
func (u *Users) Logout(w http.ResponseWriter, r *http.Request) {
	key, err := middleware.GetCredential(r)
	if err != nil {
		handleJSONError(w, err, "getting credential")
		return
	}

	if key != "" {
		if err = u.app.DeleteSession(key); err != nil {
			handleJSONError(w, err, "deleting session")
			return
		}
	}

	unsetSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /me. It returns the profile and wallet of the
// authenticated user.
func (u *Users) Me(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		middleware.RespondUnauthorized(w)
		return
	}

	wallet, err := u.app.GetWallet(user.ID)
	if err != nil {
		handleJSONError(w, err, "getting wallet")
		return
	}

	respondJSON(w, http.StatusOK, struct {
		User   presenters.User   `json:"user"`
		Wallet presenters.Wallet `json:"wallet"`
	}{
		User:   presenters.PresentUser(*user),
		Wallet: presenters.PresentWallet(wallet),
	})
}

// resetTokenForm is the form data for requesting a password reset
type resetTokenForm struct {
	Email string `json:"email" schema:"email"`
}

// CreateResetToken handles POST /reset-token
func (u *Users) CreateResetToken(w http.ResponseWriter, r *http.Request) {
	var form resetTokenForm
	if err := parseRequestData(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	if err := u.app.CreateResetToken(form.Email); err != nil {
		handleJSONError(w, err, "creating reset token")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// passwordResetForm is the form data for resetting a password
type passwordResetForm struct {
	Token    string `json:"token" schema:"token"`
	Password string `json:"password" schema:"password"`
}

// PasswordReset handles PATCH /reset-password
func (u *Users) PasswordReset(w http.ResponseWriter, r *http.Request) {
	var form passwordResetForm
	if err := parseRequestData(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	if err := u.app.ResetPassword(form.Token, form.Password); err != nil {
		handleJSONError(w, err, "resetting password")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Leaderboard handles GET /leaderboard
func (u *Users) Leaderboard(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("by")
	limit := parseIntQuery(r, "limit")

	users, err := u.app.GetLeaderboard(kind, limit)
	if err != nil {
		handleJSONError(w, err, "getting leaderboard")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentLeaderboard(users))
}
