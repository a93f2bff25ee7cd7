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

package app

import (
	"fmt"
	"testing"
	"time"

	"github.com/notebazaar/notebazaar/pkg/assert"
	"github.com/notebazaar/notebazaar/pkg/clock"
	"github.com/notebazaar/notebazaar/pkg/server/database"
	"github.com/notebazaar/notebazaar/pkg/server/testutils"
	"github.com/pkg/errors"
)

func TestDecideReview_Approve(t *testing.T) {
	serverTime := time.Date(2017, time.March, 14, 21, 15, 0, 0, time.UTC)
	mockClock := clock.NewMock()
	mockClock.SetNow(serverTime)

	db := testutils.InitMemoryDB(t)
	topper := testutils.SetupUserData(db, "topper@example.com", "pass1234", database.RoleTopper)
	reviewer := testutils.SetupUserData(db, "reviewer@example.com", "pass1234", database.RoleReviewer)

	note := database.Note{
		UUID:     testutils.MustUUID(t),
		TopperID: topper.ID,
		Title:    "Physics Class 12",
		Subject:  "physics",
		Status:   database.NoteStatusSubmitted,
	}
	testutils.MustExec(t, db.Save(&note), "preparing note")

	task := database.ReviewTask{
		UUID:   testutils.MustUUID(t),
		NoteID: note.ID,
		Status: database.ReviewStatusOpen,
	}
	testutils.MustExec(t, db.Save(&task), "preparing task")

	a := NewTest()
	a.DB = db
	a.Clock = mockClock

	updated, err := a.DecideReview(task.UUID, database.ReviewStatusApproved, reviewer, "looks good")
	if err != nil {
		t.Fatal(errors.Wrap(err, "deciding review"))
	}

	var noteRecord database.Note
	var taskRecord database.ReviewTask
	var topperRecord database.User
	testutils.MustExec(t, db.Where("id = ?", note.ID).First(&noteRecord), "finding note")
	testutils.MustExec(t, db.Where("id = ?", task.ID).First(&taskRecord), "finding task")
	testutils.MustExec(t, db.Where("id = ?", topper.ID).First(&topperRecord), "finding topper")

	assert.Equal(t, noteRecord.Status, database.NoteStatusPublished, "note status mismatch")
	assert.Equal(t, *noteRecord.ReviewerID, reviewer.ID, "note reviewer mismatch")
	if noteRecord.PublishedAt == nil {
		t.Fatal("PublishedAt should have been set")
	}
	assert.Equal(t, noteRecord.PublishedAt.Unix(), serverTime.Unix(), "PublishedAt mismatch")

	assert.Equal(t, taskRecord.Status, database.ReviewStatusApproved, "task status mismatch")
	assert.Equal(t, taskRecord.Comments, "looks good", "task comments mismatch")
	if taskRecord.DecidedAt == nil {
		t.Fatal("DecidedAt should have been set")
	}

	assert.Equal(t, topperRecord.Reputation, 1, "topper reputation mismatch")
	assert.Equal(t, updated.Status, database.ReviewStatusApproved, "returned status mismatch")
}

func TestDecideReview_Reject(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	topper := testutils.SetupUserData(db, "topper@example.com", "pass1234", database.RoleTopper)
	reviewer := testutils.SetupUserData(db, "reviewer@example.com", "pass1234", database.RoleReviewer)

	note := database.Note{
		UUID:     testutils.MustUUID(t),
		TopperID: topper.ID,
		Title:    "Physics Class 12",
		Subject:  "physics",
		Status:   database.NoteStatusSubmitted,
	}
	testutils.MustExec(t, db.Save(&note), "preparing note")

	task := database.ReviewTask{
		UUID:   testutils.MustUUID(t),
		NoteID: note.ID,
		Status: database.ReviewStatusOpen,
	}
	testutils.MustExec(t, db.Save(&task), "preparing task")

	a := NewTest()
	a.DB = db

	if _, err := a.DecideReview(task.UUID, database.ReviewStatusRejected, reviewer, "plagiarized content"); err != nil {
		t.Fatal(errors.Wrap(err, "deciding review"))
	}

	var noteRecord database.Note
	var taskRecord database.ReviewTask
	var topperRecord database.User
	testutils.MustExec(t, db.Where("id = ?", note.ID).First(&noteRecord), "finding note")
	testutils.MustExec(t, db.Where("id = ?", task.ID).First(&taskRecord), "finding task")
	testutils.MustExec(t, db.Where("id = ?", topper.ID).First(&topperRecord), "finding topper")

	assert.Equal(t, noteRecord.Status, database.NoteStatusRejected, "note status mismatch")
	assert.Equal(t, noteRecord.RejectionReason, "plagiarized content", "rejection reason mismatch")
	assert.Equal(t, taskRecord.Status, database.ReviewStatusRejected, "task status mismatch")
	assert.Equal(t, topperRecord.Reputation, 0, "reputation should not change on rejection")

	// the upload reward is not clawed back on rejection
	assert.Equal(t, topperRecord.CoinBalance, 0, "balance should be unchanged")
}

func TestDecideReview_ChangesRequested(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	topper := testutils.SetupUserData(db, "topper@example.com", "pass1234", database.RoleTopper)
	reviewer := testutils.SetupUserData(db, "reviewer@example.com", "pass1234", database.RoleReviewer)

	note := database.Note{
		UUID:     testutils.MustUUID(t),
		TopperID: topper.ID,
		Title:    "Physics Class 12",
		Subject:  "physics",
		Status:   database.NoteStatusSubmitted,
	}
	testutils.MustExec(t, db.Save(&note), "preparing note")

	task := database.ReviewTask{
		UUID:   testutils.MustUUID(t),
		NoteID: note.ID,
		Status: database.ReviewStatusOpen,
	}
	testutils.MustExec(t, db.Save(&task), "preparing task")

	a := NewTest()
	a.DB = db

	updated, err := a.DecideReview(task.UUID, database.ReviewStatusChangesRequested, reviewer, "add chapter 4")
	if err != nil {
		t.Fatal(errors.Wrap(err, "deciding review"))
	}

	var noteRecord database.Note
	var taskRecord database.ReviewTask
	testutils.MustExec(t, db.Where("id = ?", note.ID).First(&noteRecord), "finding note")
	testutils.MustExec(t, db.Where("id = ?", task.ID).First(&taskRecord), "finding task")

	assert.Equal(t, noteRecord.Status, database.NoteStatusSubmitted, "note should stay submitted")
	assert.Equal(t, taskRecord.Status, database.ReviewStatusChangesRequested, "task status mismatch")
	if taskRecord.DecidedAt != nil {
		t.Fatal("DecidedAt should not be set for a non-terminal decision")
	}

	// a task with changes requested can still be decided
	if _, err := a.DecideReview(task.UUID, database.ReviewStatusApproved, reviewer, ""); err != nil {
		t.Fatal(errors.Wrap(err, "deciding review after changes"))
	}

	testutils.MustExec(t, db.Where("id = ?", note.ID).First(&noteRecord), "finding note after approval")
	assert.Equal(t, noteRecord.Status, database.NoteStatusPublished, "note status mismatch after approval")
	assert.Equal(t, updated.Status, database.ReviewStatusChangesRequested, "returned status mismatch")
}

func TestDecideReview_Terminal(t *testing.T) {
	testCases := []struct {
		taskStatus string
	}{
		{taskStatus: database.ReviewStatusApproved},
		{taskStatus: database.ReviewStatusRejected},
	}

	for idx, tc := range testCases {
		func() {
			db := testutils.InitMemoryDB(t)
			topper := testutils.SetupUserData(db, "topper@example.com", "pass1234", database.RoleTopper)
			reviewer := testutils.SetupUserData(db, "reviewer@example.com", "pass1234", database.RoleReviewer)

			note := database.Note{
				UUID:     testutils.MustUUID(t),
				TopperID: topper.ID,
				Title:    "Physics Class 12",
				Subject:  "physics",
				Status:   database.NoteStatusPublished,
			}
			testutils.MustExec(t, db.Save(&note), fmt.Sprintf("preparing note for test case %d", idx))

			task := database.ReviewTask{
				UUID:   testutils.MustUUID(t),
				NoteID: note.ID,
				Status: tc.taskStatus,
			}
			testutils.MustExec(t, db.Save(&task), fmt.Sprintf("preparing task for test case %d", idx))

			a := NewTest()
			a.DB = db

			_, err := a.DecideReview(task.UUID, database.ReviewStatusApproved, reviewer, "")
			assert.Equal(t, err, ErrInvalidTransition, fmt.Sprintf("error mismatch for test case %d", idx))
		}()
	}
}

func TestGetOpenReviewTasks(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	topper := testutils.SetupUserData(db, "topper@example.com", "pass1234", database.RoleTopper)

	statuses := []string{
		database.ReviewStatusOpen,
		database.ReviewStatusApproved,
		database.ReviewStatusChangesRequested,
		database.ReviewStatusRejected,
	}
	for idx, status := range statuses {
		note := database.Note{
			UUID:     testutils.MustUUID(t),
			TopperID: topper.ID,
			Title:    fmt.Sprintf("Note %d", idx),
			Subject:  "math",
			Status:   database.NoteStatusSubmitted,
		}
		testutils.MustExec(t, db.Save(&note), fmt.Sprintf("preparing note %d", idx))

		task := database.ReviewTask{
			UUID:   testutils.MustUUID(t),
			NoteID: note.ID,
			Status: status,
		}
		testutils.MustExec(t, db.Save(&task), fmt.Sprintf("preparing task %d", idx))
	}

	a := NewTest()
	a.DB = db

	tasks, err := a.GetOpenReviewTasks()
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting open tasks"))
	}

	assert.Equal(t, len(tasks), 2, "open task count mismatch")
	for _, task := range tasks {
		assert.NotEqual(t, task.Note.Title, "", "task note should be preloaded")
	}
}
