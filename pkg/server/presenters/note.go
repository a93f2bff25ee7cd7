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

package presenters

import (
	"time"

	"github.com/notebazaar/notebazaar/pkg/server/database"
)

// Note is a result of PresentNote
type Note struct {
	UUID            string     `json:"uuid"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Title           string     `json:"title"`
	Subject         string     `json:"subject"`
	Description     string     `json:"description"`
	Price           int        `json:"price"`
	Status          string     `json:"status"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	DownloadsCount  int        `json:"downloads_count"`
	ViewsCount      int        `json:"views_count"`
	LikesCount      int        `json:"likes_count"`
	SubmittedAt     *time.Time `json:"submitted_at"`
	PublishedAt     *time.Time `json:"published_at"`
	Topper          NoteTopper `json:"topper"`
}

// NoteTopper is a nested topper for PresentNote
type NoteTopper struct {
	UUID       string `json:"uuid"`
	Name       string `json:"name"`
	Reputation int    `json:"reputation"`
}

// PresentNote presents note
func PresentNote(note database.Note) Note {
	return Note{
		UUID:            note.UUID,
		CreatedAt:       FormatTS(note.CreatedAt),
		UpdatedAt:       FormatTS(note.UpdatedAt),
		Title:           note.Title,
		Subject:         note.Subject,
		Description:     note.Description,
		Price:           note.Price,
		Status:          note.Status,
		RejectionReason: note.RejectionReason,
		DownloadsCount:  note.DownloadsCount,
		ViewsCount:      note.ViewsCount,
		LikesCount:      note.LikesCount,
		SubmittedAt:     formatTSPtr(note.SubmittedAt),
		PublishedAt:     formatTSPtr(note.PublishedAt),
		Topper: NoteTopper{
			UUID:       note.Topper.UUID,
			Name:       note.Topper.Name,
			Reputation: note.Topper.Reputation,
		},
	}
}

// PresentNotes presents notes
func PresentNotes(notes []database.Note) []Note {
	ret := []Note{}

	for _, note := range notes {
		p := PresentNote(note)
		ret = append(ret, p)
	}

	return ret
}
