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

	"github.com/notebazaar/notebazaar/pkg/server/database"
	"github.com/notebazaar/notebazaar/pkg/server/helpers"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// CreateNoteParams are the parameters for creating a note
type CreateNoteParams struct {
	Title       string
	Subject     string
	Description string
	FileURL     string
	Price       int
}

func validateCreateNoteParams(p CreateNoteParams) error {
	if p.Title == "" {
		return ErrTitleRequired
	}
	if p.Subject == "" {
		return ErrSubjectRequired
	}
	if p.Price < 0 {
		return ErrInvalidPrice
	}

	return nil
}

// CreateNote creates a note in the submitted state, credits the upload reward
// to the topper, and opens a review task. The three writes commit atomically.
func (a *App) CreateNote(user database.User, p CreateNoteParams) (database.Note, error) {
	if err := validateCreateNoteParams(p); err != nil {
		return database.Note{}, err
	}

	noteUUID, err := helpers.GenUUID()
	if err != nil {
		return database.Note{}, errors.Wrap(err, "generating note uuid")
	}
	taskUUID, err := helpers.GenUUID()
	if err != nil {
		return database.Note{}, errors.Wrap(err, "generating task uuid")
	}

	now := a.Clock.Now()

	tx := a.DB.Begin()

	note := database.Note{
		UUID:        noteUUID,
		TopperID:    user.ID,
		Title:       p.Title,
		Subject:     p.Subject,
		Description: p.Description,
		FileURL:     p.FileURL,
		Price:       p.Price,
		Status:      database.NoteStatusSubmitted,
		SubmittedAt: &now,
	}
	if err := tx.Create(&note).Error; err != nil {
		tx.Rollback()
		return database.Note{}, errors.Wrap(err, "creating note")
	}

	if err := a.AdjustBalance(tx, user.ID, UploadRewardCoins); err != nil {
		tx.Rollback()
		return database.Note{}, errors.Wrap(err, "crediting upload reward")
	}

	description := fmt.Sprintf("Earned %d coins for uploading notes", UploadRewardCoins)
	if err := a.RecordTransaction(tx, user.ID, database.TransactionTypeUploadReward, UploadRewardCoins, UploadRewardCoins, &note.ID, description); err != nil {
		tx.Rollback()
		return database.Note{}, errors.Wrap(err, "recording upload reward")
	}

	task := database.ReviewTask{
		UUID:   taskUUID,
		NoteID: note.ID,
		Status: database.ReviewStatusOpen,
	}
	if err := tx.Create(&task).Error; err != nil {
		tx.Rollback()
		return database.Note{}, errors.Wrap(err, "creating review task")
	}

	if err := tx.Commit().Error; err != nil {
		return database.Note{}, errors.Wrap(err, "committing transaction")
	}

	return note, nil
}

// publishNote transitions a submitted note to published within the given
// transaction and credits the topper a reputation point
func (a *App) publishNote(tx *gorm.DB, note database.Note, reviewerID int) error {
	if note.Status != database.NoteStatusSubmitted {
		return ErrInvalidTransition
	}

	now := a.Clock.Now()
	err := tx.Model(&database.Note{}).
		Where("id = ? AND status = ?", note.ID, database.NoteStatusSubmitted).
		Updates(map[string]interface{}{
			"status":       database.NoteStatusPublished,
			"published_at": now,
			"reviewer_id":  reviewerID,
		}).Error
	if err != nil {
		return errors.Wrap(err, "updating note")
	}

	err = tx.Model(&database.User{}).Where("id = ?", note.TopperID).
		Update("reputation", gorm.Expr("reputation + 1")).Error
	if err != nil {
		return errors.Wrap(err, "updating reputation")
	}

	return nil
}

// rejectNote transitions a submitted note to rejected within the given
// transaction
func (a *App) rejectNote(tx *gorm.DB, note database.Note, reviewerID int, reason string) error {
	if note.Status != database.NoteStatusSubmitted {
		return ErrInvalidTransition
	}

	err := tx.Model(&database.Note{}).
		Where("id = ? AND status = ?", note.ID, database.NoteStatusSubmitted).
		Updates(map[string]interface{}{
			"status":           database.NoteStatusRejected,
			"rejection_reason": reason,
			"reviewer_id":      reviewerID,
		}).Error
	if err != nil {
		return errors.Wrap(err, "updating note")
	}

	return nil
}

// ArchiveNote takes a published note out of circulation. The upload reward is
// not clawed back.
func (a *App) ArchiveNote(note database.Note) error {
	res := a.DB.Model(&database.Note{}).
		Where("id = ? AND status = ?", note.ID, database.NoteStatusPublished).
		Update("status", database.NoteStatusArchived)
	if res.Error != nil {
		return errors.Wrap(res.Error, "updating note")
	}
	if res.RowsAffected == 0 {
		return ErrInvalidTransition
	}

	return nil
}

// GetNote returns the note with the given UUID. The second return value
// indicates whether the note was found.
func (a *App) GetNote(uuid string) (database.Note, bool, error) {
	var note database.Note
	err := a.DB.Preload("Topper").Where("uuid = ?", uuid).First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return database.Note{}, false, nil
	}
	if err != nil {
		return database.Note{}, false, errors.Wrap(err, "finding note")
	}

	return note, true, nil
}

// GetNotesParams are the filters for listing notes
type GetNotesParams struct {
	Subject  string
	Status   string
	TopperID int
	Page     int
	PerPage  int
}

// GetNotes returns published notes matching the given filters, newest first.
// A non-empty Status filter overrides the published-only default. A TopperID
// filter scopes the listing to one topper's notes and lifts the published-only
// default, since it is used by owners listing their own notes.
func (a *App) GetNotes(p GetNotesParams) ([]database.Note, int64, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 || p.PerPage > 100 {
		p.PerPage = 25
	}

	conn := a.DB.Model(&database.Note{})

	if p.Status != "" {
		conn = conn.Where("status = ?", p.Status)
	} else if p.TopperID == 0 {
		conn = conn.Where("status = ?", database.NoteStatusPublished)
	}
	if p.Subject != "" {
		conn = conn.Where("subject = ?", p.Subject)
	}
	if p.TopperID != 0 {
		conn = conn.Where("topper_id = ?", p.TopperID)
	}

	var total int64
	if err := conn.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "counting notes")
	}

	var notes []database.Note
	err := conn.Preload("Topper").
		Order("created_at DESC, id DESC").
		Offset((p.Page - 1) * p.PerPage).
		Limit(p.PerPage).
		Find(&notes).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "finding notes")
	}

	return notes, total, nil
}

// Leaderboard kinds
const (
	// LeaderboardEarnings ranks toppers by lifetime coin earnings
	LeaderboardEarnings = "earnings"
	// LeaderboardReputation ranks toppers by reputation
	LeaderboardReputation = "reputation"
)

// GetLeaderboard returns the top toppers ranked by the given kind
func (a *App) GetLeaderboard(kind string, limit int) ([]database.User, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}

	var order string
	switch kind {
	case LeaderboardReputation:
		order = "reputation DESC, total_earned DESC"
	case LeaderboardEarnings, "":
		order = "total_earned DESC, reputation DESC"
	default:
		return nil, ErrInvalidLeaderboard
	}

	var users []database.User
	err := a.DB.Where("role = ?", database.RoleTopper).
		Order(order).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, errors.Wrap(err, "finding users")
	}

	return users, nil
}
