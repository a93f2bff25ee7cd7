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
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/notebazaar/notebazaar/pkg/assert"
	"github.com/notebazaar/notebazaar/pkg/server/app"
	"github.com/notebazaar/notebazaar/pkg/server/database"
	"github.com/notebazaar/notebazaar/pkg/server/mailer"
	"github.com/notebazaar/notebazaar/pkg/server/testutils"
	"gorm.io/gorm"
)

func setupReviewTask(t *testing.T, db *gorm.DB, topper database.User, title string) (database.Note, database.ReviewTask) {
	note := database.Note{
		UUID:     testutils.MustUUID(t),
		TopperID: topper.ID,
		Title:    title,
		Subject:  "Physics",
		Status:   database.NoteStatusSubmitted,
	}
	testutils.MustExec(t, db.Save(&note), "preparing note")

	task := database.ReviewTask{
		UUID:   testutils.MustUUID(t),
		NoteID: note.ID,
		Status: database.ReviewStatusOpen,
	}
	testutils.MustExec(t, db.Save(&task), "preparing task")

	return note, task
}

func TestReviewTasksPermission(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	student := testutils.SetupUserData(db, "student@example.com", "pass1234", "student")

	a := app.NewTest()
	a.DB = db
	server := MustNewServer(t, &a)
	defer server.Close()

	req := testutils.MakeReq(server.URL, "GET", "/api/v1/reviews/tasks", "")
	res := testutils.HTTPAuthDo(t, db, req, student)

	assert.StatusCodeEquals(t, res, http.StatusForbidden, "")
}

func TestReviewTasks(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	topper := testutils.SetupUserData(db, "topper@example.com", "pass1234", "topper")
	reviewer := testutils.SetupUserData(db, "reviewer@example.com", "pass1234", "reviewer")
	_, task := setupReviewTask(t, db, topper, "Thermodynamics")

	a := app.NewTest()
	a.DB = db
	server := MustNewServer(t, &a)
	defer server.Close()

	req := testutils.MakeReq(server.URL, "GET", "/api/v1/reviews/tasks", "")
	res := testutils.HTTPAuthDo(t, db, req, reviewer)

	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	var payload []struct {
		UUID   string `json:"uuid"`
		Status string `json:"status"`
		Note   struct {
			Title string `json:"title"`
		} `json:"note"`
	}
	testutils.MustUnmarshalJSON(t, res, &payload)

	assert.Equalf(t, len(payload), 1, "task count mismatch")
	assert.Equal(t, payload[0].UUID, task.UUID, "task uuid mismatch")
	assert.Equal(t, payload[0].Status, database.ReviewStatusOpen, "task status mismatch")
	assert.Equal(t, payload[0].Note.Title, "Thermodynamics", "note title mismatch")
}

func TestDecideReviewApprove(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	topper := testutils.SetupUserData(db, "topper@example.com", "pass1234", "topper")
	reviewer := testutils.SetupUserData(db, "reviewer@example.com", "pass1234", "reviewer")
	note, task := setupReviewTask(t, db, topper, "Thermodynamics")

	emailBackend := testutils.MockEmailbackendImplementation{}
	a := app.NewTest()
	a.DB = db
	a.EmailBackend = &emailBackend
	server := MustNewServer(t, &a)
	defer server.Close()

	dat := url.Values{}
	dat.Set("outcome", "approved")
	dat.Set("comments", "Clear and well organized")
	req := testutils.MakeFormReq(server.URL, "PATCH", fmt.Sprintf("/api/v1/reviews/tasks/%s", task.UUID), dat)

	res := testutils.HTTPAuthDo(t, db, req, reviewer)

	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	var noteRecord database.Note
	testutils.MustExec(t, db.Where("id = ?", note.ID).First(&noteRecord), "finding note")
	assert.Equal(t, noteRecord.Status, database.NoteStatusPublished, "note status mismatch")
	assert.Equal(t, *noteRecord.ReviewerID, reviewer.ID, "reviewer id mismatch")

	var taskRecord database.ReviewTask
	testutils.MustExec(t, db.Where("id = ?", task.ID).First(&taskRecord), "finding task")
	assert.Equal(t, taskRecord.Status, database.ReviewStatusApproved, "task status mismatch")
	if taskRecord.DecidedAt == nil {
		t.Errorf("DecidedAt should be set")
	}

	// topper is notified
	assert.Equalf(t, len(emailBackend.Emails), 1, "email queue count mismatch")
	assert.Equal(t, emailBackend.Emails[0].TemplateType, mailer.EmailTypeNotePublished, "email template mismatch")
	assert.DeepEqual(t, emailBackend.Emails[0].To, []string{"topper@example.com"}, "email to mismatch")
}

func TestDecideReviewReject(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	topper := testutils.SetupUserData(db, "topper@example.com", "pass1234", "topper")
	reviewer := testutils.SetupUserData(db, "reviewer@example.com", "pass1234", "reviewer")
	note, task := setupReviewTask(t, db, topper, "Thermodynamics")

	emailBackend := testutils.MockEmailbackendImplementation{}
	a := app.NewTest()
	a.DB = db
	a.EmailBackend = &emailBackend
	server := MustNewServer(t, &a)
	defer server.Close()

	dat := url.Values{}
	dat.Set("outcome", "rejected")
	dat.Set("comments", "Sources are missing")
	req := testutils.MakeFormReq(server.URL, "PATCH", fmt.Sprintf("/api/v1/reviews/tasks/%s", task.UUID), dat)

	res := testutils.HTTPAuthDo(t, db, req, reviewer)

	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	var noteRecord database.Note
	testutils.MustExec(t, db.Where("id = ?", note.ID).First(&noteRecord), "finding note")
	assert.Equal(t, noteRecord.Status, database.NoteStatusRejected, "note status mismatch")
	assert.Equal(t, noteRecord.RejectionReason, "Sources are missing", "rejection reason mismatch")

	assert.Equalf(t, len(emailBackend.Emails), 1, "email queue count mismatch")
	assert.Equal(t, emailBackend.Emails[0].TemplateType, mailer.EmailTypeNoteRejected, "email template mismatch")
}

func TestDecideReviewChangesRequested(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	topper := testutils.SetupUserData(db, "topper@example.com", "pass1234", "topper")
	reviewer := testutils.SetupUserData(db, "reviewer@example.com", "pass1234", "reviewer")
	note, task := setupReviewTask(t, db, topper, "Thermodynamics")

	emailBackend := testutils.MockEmailbackendImplementation{}
	a := app.NewTest()
	a.DB = db
	a.EmailBackend = &emailBackend
	server := MustNewServer(t, &a)
	defer server.Close()

	dat := url.Values{}
	dat.Set("outcome", "changes_requested")
	dat.Set("comments", "Please add diagrams")
	req := testutils.MakeFormReq(server.URL, "PATCH", fmt.Sprintf("/api/v1/reviews/tasks/%s", task.UUID), dat)

	res := testutils.HTTPAuthDo(t, db, req, reviewer)

	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	var noteRecord database.Note
	testutils.MustExec(t, db.Where("id = ?", note.ID).First(&noteRecord), "finding note")
	assert.Equal(t, noteRecord.Status, database.NoteStatusSubmitted, "note status mismatch")

	// no terminal decision, no notification
	assert.Equalf(t, len(emailBackend.Emails), 0, "email queue count mismatch")
}

func TestDecideReviewPermission(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	topper := testutils.SetupUserData(db, "topper@example.com", "pass1234", "topper")
	_, task := setupReviewTask(t, db, topper, "Thermodynamics")

	a := app.NewTest()
	a.DB = db
	server := MustNewServer(t, &a)
	defer server.Close()

	dat := url.Values{}
	dat.Set("outcome", "approved")
	req := testutils.MakeFormReq(server.URL, "PATCH", fmt.Sprintf("/api/v1/reviews/tasks/%s", task.UUID), dat)

	// the topper cannot decide their own review
	res := testutils.HTTPAuthDo(t, db, req, topper)

	assert.StatusCodeEquals(t, res, http.StatusForbidden, "")

	var noteRecord database.Note
	testutils.MustExec(t, db.Where("topper_id = ?", topper.ID).First(&noteRecord), "finding note")
	assert.Equal(t, noteRecord.Status, database.NoteStatusSubmitted, "note status mismatch")
}
