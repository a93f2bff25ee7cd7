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

	"github.com/gorilla/mux"
	"github.com/notebazaar/notebazaar/pkg/server/app"
	mw "github.com/notebazaar/notebazaar/pkg/server/middleware"
	"github.com/pkg/errors"
)

// Route represents a single route
type Route struct {
	Method    string
	Pattern   string
	Handler   http.HandlerFunc
	RateLimit bool
}

// RouteConfig is the configuration for routes
type RouteConfig struct {
	Controllers *Controllers
	APIRoutes   []Route

	// UploadDir, when non-empty, is served under /uploads/ for deployments
	// that store note files on the local filesystem.
	UploadDir string
}

// NewAPIRoutes returns a new api routes
func NewAPIRoutes(a *app.App, c *Controllers) []Route {
	ret := []Route{
		{"POST", "/signin", c.Users.Login, true},
		{"POST", "/signout", c.Users.Logout, true},
		{"GET", "/me", mw.Auth(a.DB, c.Users.Me), true},
		{"POST", "/reset-token", c.Users.CreateResetToken, true},
		{"PATCH", "/reset-password", c.Users.PasswordReset, true},
		{"GET", "/leaderboard", c.Users.Leaderboard, true},

		{"GET", "/notes", mw.OptionalAuth(a.DB, c.Notes.Index), true},
		{"POST", "/notes", mw.Auth(a.DB, c.Notes.Create), true},
		{"GET", "/notes/mine", mw.Auth(a.DB, c.Notes.Mine), true},
		{"GET", "/notes/{noteUUID}", mw.OptionalAuth(a.DB, c.Notes.Show), true},
		{"PATCH", "/notes/{noteUUID}/archive", mw.Auth(a.DB, c.Notes.Archive), true},

		{"POST", "/notes/{noteUUID}/view", mw.Auth(a.DB, c.Engagement.View), true},
		{"POST", "/notes/{noteUUID}/like", mw.Auth(a.DB, c.Engagement.Like), true},
		{"POST", "/notes/{noteUUID}/download", mw.Auth(a.DB, c.Engagement.Download), true},
		{"GET", "/transactions", mw.Auth(a.DB, c.Engagement.Transactions), true},

		{"POST", "/withdrawals", mw.Auth(a.DB, c.Withdrawals.Create), true},
		{"GET", "/withdrawals", mw.Auth(a.DB, c.Withdrawals.Index), true},

		{"GET", "/reviews/tasks", mw.Auth(a.DB, c.Reviews.Index), true},
		{"PATCH", "/reviews/tasks/{taskUUID}", mw.Auth(a.DB, c.Reviews.Decide), true},

		{"GET", "/admin/withdrawals", mw.Auth(a.DB, c.Withdrawals.Pending), true},
		{"PATCH", "/admin/withdrawals/{withdrawalUUID}/approve", mw.Auth(a.DB, c.Withdrawals.Approve), true},
		{"PATCH", "/admin/withdrawals/{withdrawalUUID}/reject", mw.Auth(a.DB, c.Withdrawals.Reject), true},
		{"PATCH", "/admin/withdrawals/{withdrawalUUID}/settle", mw.Auth(a.DB, c.Withdrawals.Settle), true},
		{"POST", "/admin/coins/grant", mw.Auth(a.DB, c.Withdrawals.Grant), true},
	}

	if !a.DisableRegistration {
		ret = append(ret, Route{"POST", "/register", c.Users.Create, true})
	}

	return ret
}

func registerRoutes(router *mux.Router, wrapper mw.Middleware, app *app.App, routes []Route) {
	for _, route := range routes {
		wrappedHandler := wrapper(route.Handler, app, route.RateLimit)

		router.
			Handle(route.Pattern, wrappedHandler).
			Methods(route.Method)
	}
}

// NewRouter creates and returns a new router
func NewRouter(app *app.App, rc RouteConfig) (http.Handler, error) {
	if err := app.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating the app parameters")
	}

	router := mux.NewRouter().StrictSlash(true)

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	registerRoutes(apiRouter, mw.APIMw, app, rc.APIRoutes)

	router.HandleFunc("/health", rc.Controllers.Health.Index).Methods("GET")

	router.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nAllow: /"))
	})

	if rc.UploadDir != "" {
		uploadHandler := http.StripPrefix("/uploads/", http.FileServer(http.Dir(rc.UploadDir)))
		router.PathPrefix("/uploads/").Handler(uploadHandler)
	}

	return mw.Global(router), nil
}
