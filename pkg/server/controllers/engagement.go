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
	"github.com/notebazaar/notebazaar/pkg/server/middleware"
	"github.com/notebazaar/notebazaar/pkg/server/presenters"
)

// NewEngagement creates a new Engagement controller
func NewEngagement(app *app.App, notes *Notes) *Engagement {
	return &Engagement{
		app:   app,
		notes: notes,
	}
}

// Engagement is a controller for views, likes and downloads
type Engagement struct {
	app   *app.App
	notes *Notes
}

// View handles POST /notes/{noteUUID}/view
func (e *Engagement) View(w http.ResponseWriter, r *http.Request) {
	note, ok := e.notes.getNoteForRequest(w, r)
	if !ok {
		return
	}

	user := context.User(r.Context())
	if user == nil {
		middleware.RespondUnauthorized(w)
		return
	}

	coinsEarned, err := e.app.RecordView(*user, note)
	if err != nil {
		handleJSONError(w, err, "recording view")
		return
	}

	respondJSON(w, http.StatusOK, struct {
		CoinsEarned int `json:"coins_earned"`
	}{
		CoinsEarned: coinsEarned,
	})
}

// Like handles POST /notes/{noteUUID}/like
func (e *Engagement) Like(w http.ResponseWriter, r *http.Request) {
	note, ok := e.notes.getNoteForRequest(w, r)
	if !ok {
		return
	}

	user := context.User(r.Context())
	if user == nil {
		middleware.RespondUnauthorized(w)
		return
	}

	liked, err := e.app.ToggleLike(*user, note)
	if err != nil {
		handleJSONError(w, err, "toggling like")
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Liked bool `json:"liked"`
	}{
		Liked: liked,
	})
}

// Download handles POST /notes/{noteUUID}/download
func (e *Engagement) Download(w http.ResponseWriter, r *http.Request) {
	note, ok := e.notes.getNoteForRequest(w, r)
	if !ok {
		return
	}

	user := context.User(r.Context())
	if user == nil {
		middleware.RespondUnauthorized(w)
		return
	}

	result, err := e.app.DownloadNote(*user, note)
	if err != nil {
		handleJSONError(w, err, "downloading note")
		return
	}

	respondJSON(w, http.StatusOK, struct {
		AlreadyDownloaded bool   `json:"already_downloaded"`
		UsedFreeDownload  bool   `json:"used_free_download"`
		CoinsSpent        int    `json:"coins_spent"`
		FreeDownloadsLeft int    `json:"free_downloads_left"`
		FileURL           string `json:"file_url"`
	}{
		AlreadyDownloaded: result.AlreadyDownloaded,
		UsedFreeDownload:  result.UsedFreeDownload,
		CoinsSpent:        result.CoinsSpent,
		FreeDownloadsLeft: result.FreeDownloadsLeft,
		FileURL:           result.FileURL,
	})
}

// Transactions handles GET /transactions. It returns the authenticated
// user's coin ledger.
func (e *Engagement) Transactions(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		middleware.RespondUnauthorized(w)
		return
	}

	transactions, total, err := e.app.GetTransactions(user.ID, parseIntQuery(r, "page"), parseIntQuery(r, "per_page"))
	if err != nil {
		handleJSONError(w, err, "getting transactions")
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Transactions []presenters.Transaction `json:"transactions"`
		Total        int64                    `json:"total"`
	}{
		Transactions: presenters.PresentTransactions(transactions),
		Total:        total,
	})
}
