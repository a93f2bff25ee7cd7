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
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/schema"
	"github.com/notebazaar/notebazaar/pkg/server/app"
	"github.com/notebazaar/notebazaar/pkg/server/log"
	"github.com/notebazaar/notebazaar/pkg/server/middleware"
	"github.com/pkg/errors"
)

var formDecoder = schema.NewDecoder()

func init() {
	formDecoder.IgnoreUnknownKeys(true)
}

// parseRequestData decodes the request payload into the given destination.
// JSON bodies and URL-encoded forms are both supported.
func parseRequestData(r *http.Request, dst interface{}) error {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return errors.Wrap(err, "decoding json payload")
		}

		return nil
	}

	if err := r.ParseForm(); err != nil {
		return errors.Wrap(err, "parsing form")
	}
	if err := formDecoder.Decode(dst, r.PostForm); err != nil {
		return errors.Wrap(err, "decoding form payload")
	}

	return nil
}

// respondJSON responds with the JSON-encoding of the given value
func respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.ErrorWrap(err, "encoding response")
	}
}

type errResp struct {
	Error string `json:"error"`
}

// statusCodeForError maps application errors to HTTP status codes
func statusCodeForError(err error) int {
	cause := errors.Cause(err)

	var insufficientBalance app.InsufficientBalanceError
	var insufficientFunds app.InsufficientFundsError
	if errors.As(err, &insufficientBalance) || errors.As(err, &insufficientFunds) {
		return http.StatusPaymentRequired
	}

	switch cause {
	case app.ErrNotFound:
		return http.StatusNotFound
	case app.ErrLoginRequired, app.ErrLoginInvalid:
		return http.StatusUnauthorized
	case app.ErrInvalidTransition, app.ErrDuplicateEmail:
		return http.StatusConflict
	case app.ErrBelowMinimum, app.ErrInsufficientWalletBalance:
		return http.StatusUnprocessableEntity
	case app.ErrEmailRequired, app.ErrPasswordRequired, app.ErrPasswordTooShort,
		app.ErrPasswordConfirmationMismatch, app.ErrInvalidRole,
		app.ErrTitleRequired, app.ErrSubjectRequired, app.ErrInvalidPrice,
		app.ErrPasswordResetTokenExpired, app.ErrInvalidLeaderboard,
		app.ErrInvalidAmount:
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// handleJSONError logs the error and responds with a JSON error body
func handleJSONError(w http.ResponseWriter, err error, msg string) {
	statusCode := statusCodeForError(err)

	var respText string
	if statusCode >= 500 {
		log.ErrorWrap(err, msg)
		respText = "Internal server error"
	} else {
		respText = errors.Cause(err).Error()
	}

	respondJSON(w, statusCode, errResp{Error: respText})
}

func setSessionCookie(w http.ResponseWriter, key string, expiresAt time.Time) {
	cookie := http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    key,
		Expires:  expiresAt,
		Path:     "/",
		HttpOnly: true,
	}
	http.SetCookie(w, &cookie)
}

func unsetSessionCookie(w http.ResponseWriter) {
	cookie := http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(time.Hour * -24 * 30),
		Path:     "/",
		HttpOnly: true,
	}

	w.Header().Set("Cache-Control", "no-cache")
	http.SetCookie(w, &cookie)
}

// parseIntQuery parses an integer query parameter, returning 0 when absent
func parseIntQuery(r *http.Request, name string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}

	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}

	return val
}
