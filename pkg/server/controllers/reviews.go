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
	"github.com/notebazaar/notebazaar/pkg/server/context"
	"github.com/notebazaar/notebazaar/pkg/server/database"
	"github.com/notebazaar/notebazaar/pkg/server/log"
	"github.com/notebazaar/notebazaar/pkg/server/permissions"
	"github.com/notebazaar/notebazaar/pkg/server/presenters"
)

// NewReviews creates a new Reviews controller
func NewReviews(app *app.App) *Reviews {
	return &Reviews{
		app: app,
	}
}

// Reviews is a controller for the review queue
type Reviews struct {
	app *app.App
}

// Index handles GET /reviews/tasks
func (c *Reviews) Index(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if !permissions.ReviewNotes(user) {
		respondJSON(w, http.StatusForbidden, errResp{Error: "reviewer access required"})
		return
	}

	tasks, err := c.app.GetOpenReviewTasks()
	if err != nil {
		handleJSONError(w, err, "getting review tasks")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentReviewTasks(tasks))
}

// DecisionForm is the form data for deciding a review task
type DecisionForm struct {
	Outcome  string `json:"outcome" schema:"outcome"`
	Comments string `json:"comments" schema:"comments"`
}

// Decide handles PATCH /reviews/tasks/{taskUUID}
func (c *Reviews) Decide(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if !permissions.ReviewNotes(user) {
		respondJSON(w, http.StatusForbidden, errResp{Error: "reviewer access required"})
		return
	}

	var form DecisionForm
	if err := parseRequestData(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	vars := mux.Vars(r)
	task, err := c.app.DecideReview(vars["taskUUID"], form.Outcome, *user, form.Comments)
	if err != nil {
		handleJSONError(w, err, "deciding review")
		return
	}

	c.notifyTopper(task)

	respondJSON(w, http.StatusOK, presenters.PresentReviewTask(task))
}

// notifyTopper emails the note owner about a terminal decision. Email
// failures do not fail the request.
func (c *Reviews) notifyTopper(task database.ReviewTask) {
	if task.Note.Status != database.NoteStatusPublished && task.Note.Status != database.NoteStatusRejected {
		return
	}

	if err := c.app.SendNoteDecisionEmail(task.Note.Topper, task.Note, task.Comments); err != nil {
		log.ErrorWrap(err, "sending note decision email")
	}
}
