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
	"github.com/notebazaar/notebazaar/pkg/server/database"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GetOpenReviewTasks returns tasks awaiting a decision, oldest first
func (a *App) GetOpenReviewTasks() ([]database.ReviewTask, error) {
	var tasks []database.ReviewTask
	err := a.DB.Preload("Note").Preload("Note.Topper").
		Where("status IN ?", []string{database.ReviewStatusOpen, database.ReviewStatusChangesRequested}).
		Order("created_at ASC, id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, errors.Wrap(err, "finding review tasks")
	}

	return tasks, nil
}

// GetReviewTask returns the review task with the given UUID
func (a *App) GetReviewTask(uuid string) (database.ReviewTask, error) {
	var task database.ReviewTask
	err := a.DB.Preload("Note").Preload("Note.Topper").Where("uuid = ?", uuid).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return database.ReviewTask{}, ErrNotFound
	}
	if err != nil {
		return database.ReviewTask{}, errors.Wrap(err, "finding review task")
	}

	return task, nil
}

// DecideReview applies a reviewer's decision to the task and its note in one
// transaction. Approving publishes the note, rejecting rejects it, and
// requesting changes keeps the note submitted but flags the task for the
// topper. A task that already has a terminal decision cannot be decided again.
func (a *App) DecideReview(taskUUID, outcome string, reviewer database.User, comments string) (database.ReviewTask, error) {
	task, err := a.GetReviewTask(taskUUID)
	if err != nil {
		return database.ReviewTask{}, err
	}

	if task.Status != database.ReviewStatusOpen && task.Status != database.ReviewStatusChangesRequested {
		return database.ReviewTask{}, ErrInvalidTransition
	}

	tx := a.DB.Begin()

	switch outcome {
	case database.ReviewStatusApproved:
		if err := a.publishNote(tx, task.Note, reviewer.ID); err != nil {
			tx.Rollback()
			return database.ReviewTask{}, err
		}
	case database.ReviewStatusRejected:
		if err := a.rejectNote(tx, task.Note, reviewer.ID, comments); err != nil {
			tx.Rollback()
			return database.ReviewTask{}, err
		}
	case database.ReviewStatusChangesRequested:
		// the note stays submitted
	default:
		tx.Rollback()
		return database.ReviewTask{}, errors.Errorf("unsupported review outcome %s", outcome)
	}

	updates := map[string]interface{}{
		"status":      outcome,
		"reviewer_id": reviewer.ID,
		"comments":    comments,
	}
	if outcome == database.ReviewStatusApproved || outcome == database.ReviewStatusRejected {
		updates["decided_at"] = a.Clock.Now()
	}

	res := tx.Model(&database.ReviewTask{}).
		Where("id = ? AND status IN ?", task.ID, []string{database.ReviewStatusOpen, database.ReviewStatusChangesRequested}).
		Updates(updates)
	if res.Error != nil {
		tx.Rollback()
		return database.ReviewTask{}, errors.Wrap(res.Error, "updating review task")
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return database.ReviewTask{}, ErrInvalidTransition
	}

	if err := tx.Commit().Error; err != nil {
		return database.ReviewTask{}, errors.Wrap(err, "committing transaction")
	}

	return a.GetReviewTask(taskUUID)
}
