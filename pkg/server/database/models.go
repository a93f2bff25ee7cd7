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

package database

import (
	"time"
)

// Model is the base model definition
type Model struct {
	ID        int       `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// User is a model for a user
type User struct {
	Model
	UUID                  string     `json:"uuid" gorm:"uniqueIndex;type:text"`
	Email                 NullString `gorm:"index"`
	Password              NullString `json:"-"`
	Name                  string     `json:"name"`
	Role                  string     `json:"role" gorm:"index;default:student"`
	CoinBalance           int        `json:"coin_balance" gorm:"default:0"`
	FreeDownloadsLeft     int        `json:"free_downloads_left" gorm:"default:3"`
	LastFreeDownloadReset *time.Time `json:"-"`
	TotalEarned           int        `json:"total_earned" gorm:"default:0"`
	TotalSpent            int        `json:"total_spent" gorm:"default:0"`
	Reputation            int        `json:"reputation" gorm:"default:0"`
	LastLoginAt           *time.Time `json:"-"`
}

// Note is a model for an uploaded study note
type Note struct {
	Model
	UUID            string     `json:"uuid" gorm:"uniqueIndex;type:text"`
	TopperID        int        `json:"topper_id" gorm:"index"`
	Topper          User       `json:"topper" gorm:"foreignKey:TopperID"`
	ReviewerID      *int       `json:"reviewer_id" gorm:"index"`
	Title           string     `json:"title"`
	Subject         string     `json:"subject" gorm:"index"`
	Description     string     `json:"description"`
	FileURL         string     `json:"file_url"`
	Price           int        `json:"price" gorm:"default:0"`
	Status          string     `json:"status" gorm:"index;default:draft"`
	RejectionReason string     `json:"rejection_reason"`
	DownloadsCount  int        `json:"downloads_count" gorm:"default:0"`
	ViewsCount      int        `json:"views_count" gorm:"default:0"`
	LikesCount      int        `json:"likes_count" gorm:"default:0"`
	SubmittedAt     *time.Time `json:"submitted_at"`
	PublishedAt     *time.Time `json:"published_at"`
}

// Transaction is an immutable coin ledger entry. Rows are append-only; the sum
// of a user's CoinChange values equals the coin balance delta since signup.
type Transaction struct {
	Model
	UUID        string `json:"uuid" gorm:"uniqueIndex;type:text"`
	UserID      int    `json:"user_id" gorm:"index"`
	Type        string `json:"type" gorm:"index"`
	Amount      int    `json:"amount"`
	CoinChange  int    `json:"coin_change"`
	NoteID      *int   `json:"note_id" gorm:"index"`
	Description string `json:"description"`
}

// Download marks that a student has downloaded a note. At most one row exists
// per (student, note) pair.
type Download struct {
	Model
	StudentID        int       `json:"student_id" gorm:"index;uniqueIndex:idx_downloads_student_note"`
	NoteID           int       `json:"note_id" gorm:"index;uniqueIndex:idx_downloads_student_note"`
	CoinsSpent       int       `json:"coins_spent"`
	UsedFreeDownload bool      `json:"used_free_download"`
	DownloadedAt     time.Time `json:"downloaded_at"`
}

// NoteView records a view of a note by a user. CoinsEarned is non-zero only
// for views that awarded the daily view bonus.
type NoteView struct {
	Model
	UserID      int       `json:"user_id" gorm:"index"`
	NoteID      int       `json:"note_id" gorm:"index"`
	CoinsEarned int       `json:"coins_earned"`
	ViewedAt    time.Time `json:"viewed_at" gorm:"index"`
}

// NoteLike marks that a user likes a note
type NoteLike struct {
	Model
	UserID int `json:"user_id" gorm:"index;uniqueIndex:idx_note_likes_user_note"`
	NoteID int `json:"note_id" gorm:"index;uniqueIndex:idx_note_likes_user_note"`
}

// ReviewTask is an admin-facing task gating a submitted note
type ReviewTask struct {
	Model
	UUID       string     `json:"uuid" gorm:"uniqueIndex;type:text"`
	NoteID     int        `json:"note_id" gorm:"index"`
	Note       Note       `json:"note" gorm:"foreignKey:NoteID"`
	ReviewerID *int       `json:"reviewer_id" gorm:"index"`
	Status     string     `json:"status" gorm:"index;default:open"`
	Comments   string     `json:"comments"`
	DecidedAt  *time.Time `json:"decided_at"`
}

// WithdrawalRequest is a request to pay out earnings in rupees
type WithdrawalRequest struct {
	Model
	UUID        string     `json:"uuid" gorm:"uniqueIndex;type:text"`
	UserID      int        `json:"user_id" gorm:"index"`
	Amount      int        `json:"amount"`
	Coins       int        `json:"coins"`
	BankDetails string     `json:"-"`
	UpiID       string     `json:"-"`
	Status      string     `json:"status" gorm:"index;default:pending"`
	ProcessedBy *int       `json:"processed_by"`
	ProcessedAt *time.Time `json:"processed_at"`
}

// Token is a model for a token
type Token struct {
	Model
	UserID int    `gorm:"index"`
	Value  string `gorm:"index"`
	Type   string
	UsedAt *time.Time
}

// Session represents a user session
type Session struct {
	Model
	UserID     int    `gorm:"index"`
	Key        string `gorm:"index"`
	LastUsedAt time.Time
	ExpiresAt  time.Time
}
